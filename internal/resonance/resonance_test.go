package resonance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevenvo780/duetsim/internal/entity"
)

func moderateStats() entity.Stats {
	return entity.Stats{
		Hunger: 40, Sleepiness: 40, Loneliness: 40,
		Happiness: 60, Energy: 60, Boredom: 40,
		Money: 60, Health: 60,
	}
}

func highStats() entity.Stats {
	return entity.Stats{
		Hunger: 10, Sleepiness: 10, Loneliness: 10,
		Happiness: 80, Energy: 80, Boredom: 10,
		Money: 80, Health: 80,
	}
}

func TestClosenessMidpoint(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	assert.InDelta(t, 0.5, eng.Closeness(150), 1e-9,
		"closeness at the bond distance is the logistic midpoint")
}

func TestClosenessMonotonic(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	prev := eng.Closeness(0)
	for d := 25.0; d <= 600; d += 25 {
		c := eng.Closeness(d)
		assert.Less(t, c, prev, "closeness must fall as distance grows (d=%v)", d)
		assert.GreaterOrEqual(t, c, 0.0)
		assert.LessOrEqual(t, c, 1.0)
		prev = c
	}
}

func TestClosenessEdgeInputs(t *testing.T) {
	eng := NewEngine(DefaultConfig())

	assert.Equal(t, eng.Closeness(0), eng.Closeness(-10), "negative distances clamp to zero")
	assert.Equal(t, eng.Closeness(0), eng.Closeness(math.NaN()), "NaN distance clamps to zero")
	assert.Equal(t, 0.0, eng.Closeness(math.Inf(1)))
}

func TestUpdateSeparationAtLongRange(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	far := entity.Vec2{X: 0, Y: 0}
	away := entity.Vec2{X: 500, Y: 0}

	s := eng.Update(far, away, moderateStats(), moderateStats(), 50, 1000)

	assert.Negative(t, s.Change, "separation dominates gain at distance 500")
	assert.Equal(t, EffectSeparation, s.Effect)
}

func TestUpdateBondingAtShortRange(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	a := entity.Vec2{X: 100, Y: 100}
	b := entity.Vec2{X: 150, Y: 100}

	s := eng.Update(a, b, highStats(), highStats(), 10, 1000)

	assert.Positive(t, s.Change, "close well-off companions bond")
	assert.Equal(t, EffectBonding, s.Effect)
	assert.Greater(t, s.Closeness, 0.85)
}

func TestUpdateStressReducesGain(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	pos := entity.Vec2{X: 0, Y: 0}

	healthy := highStats()
	starving := highStats()
	starving.Hunger = 90 // critical pressure for both companions

	base := eng.Update(pos, pos, healthy, healthy, 90, 1000)
	stressed := eng.Update(pos, pos, starving, starving, 90, 1000)

	assert.Less(t, stressed.Change, base.Change,
		"critical stats must erode the bond relative to the healthy case")
}

func TestUpdateDeadband(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	pos := entity.Vec2{X: 0, Y: 0}

	// Zero elapsed time yields zero change, which sits inside the
	// dead-band and must read NEUTRAL.
	s := eng.Update(pos, pos, highStats(), highStats(), 50, 0)
	assert.Equal(t, 0.0, s.Change)
	assert.Equal(t, EffectNeutral, s.Effect)
}

func TestUpdateScalesWithDelta(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	a := entity.Vec2{X: 0, Y: 0}
	b := entity.Vec2{X: 50, Y: 0}

	half := eng.Update(a, b, highStats(), highStats(), 20, 500)
	full := eng.Update(a, b, highStats(), highStats(), 20, 1000)

	assert.InDelta(t, full.Change, 2*half.Change, 1e-3,
		"change is proportional to elapsed time")
}

func TestUpdateHostileInputs(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	bad := entity.Stats{
		Hunger: math.NaN(), Happiness: math.Inf(1), Energy: -500,
	}
	pos := entity.Vec2{X: math.NaN(), Y: 0}

	s := eng.Update(pos, pos, bad, bad, math.Inf(-1), math.NaN())

	require.False(t, math.IsNaN(s.Change), "hostile inputs must not leak NaN")
	require.False(t, math.IsInf(s.Change, 0))
	assert.GreaterOrEqual(t, s.Closeness, 0.0)
	assert.LessOrEqual(t, s.Closeness, 1.0)
}

func TestIntegrateClamps(t *testing.T) {
	assert.Equal(t, 100.0, Integrate(95, 50))
	assert.Equal(t, 0.0, Integrate(5, -50))
	assert.Equal(t, 52.5, Integrate(50, 2.5))
	assert.Equal(t, 0.0, Integrate(math.NaN(), math.Inf(1)))
}

func TestSaturationSlowsGain(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	pos := entity.Vec2{X: 0, Y: 0}

	low := eng.Update(pos, pos, highStats(), highStats(), 10, 1000)
	high := eng.Update(pos, pos, highStats(), highStats(), 90, 1000)

	assert.Greater(t, low.Change, high.Change,
		"gain shrinks as resonance approaches the cap")
}

func TestModifiersFor(t *testing.T) {
	eng := NewEngine(DefaultConfig())

	none := eng.ModifiersFor(0, 1)
	assert.Equal(t, 1.0, none.Happiness)
	assert.Equal(t, 1.0, none.LonelinessPenalty)

	full := eng.ModifiersFor(100, 1)
	assert.InDelta(t, 1.3, full.Happiness, 1e-9)
	assert.InDelta(t, 1.2, full.Energy, 1e-9)
	assert.InDelta(t, 1.15, full.Health, 1e-9)
	assert.InDelta(t, 0.5, full.LonelinessPenalty, 1e-9)

	// A strong bond at a distance confers nothing.
	distant := eng.ModifiersFor(100, 0)
	assert.Equal(t, 1.0, distant.Happiness)
}

func TestModifiersApply(t *testing.T) {
	eng := NewEngine(DefaultConfig())
	mods := eng.ModifiersFor(100, 1)

	s := entity.Stats{Happiness: 90, Energy: 95, Health: 50, Loneliness: 60}
	mods.Apply(&s)

	assert.Equal(t, 100.0, s.Happiness, "boosted stats stay clamped")
	assert.Equal(t, 100.0, s.Energy)
	assert.InDelta(t, 57.5, s.Health, 1e-9)
	assert.InDelta(t, 30.0, s.Loneliness, 1e-9)
}

func TestNewEngineSanitizesConfig(t *testing.T) {
	eng := NewEngine(Config{
		BondDistance:   -1,
		BondScale:      math.NaN(),
		BondRate:       -5,
		SeparationRate: math.Inf(1),
		StressRate:     -0.1,
	})

	def := DefaultConfig()
	assert.Equal(t, def, eng.cfg)
}
