package needs

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevenvo780/duetsim/internal/entity"
)

func newTestEntity() *entity.Entity {
	return entity.New(entity.RoleCircle, "Isa", entity.Personality{}, time.Unix(1_700_000_000, 0))
}

func TestPriorityUnknownActivity(t *testing.T) {
	m := NewModel()
	score := m.Priority(entity.Activity(200), entity.DefaultStats(), 0)
	assert.True(t, math.IsInf(score, -1), "unknown activities must never be sampleable")
}

func TestPriorityTracksUrgency(t *testing.T) {
	m := NewModel()

	tests := []struct {
		name     string
		activity entity.Activity
		stat     entity.StatName
		low, hi  float64
	}{
		{"resting relieves sleepiness", entity.ActivityResting, entity.StatSleepiness, 10, 90},
		{"socializing relieves loneliness", entity.ActivitySocializing, entity.StatLoneliness, 10, 90},
		{"exploring relieves boredom", entity.ActivityExploring, entity.StatBoredom, 10, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calm := entity.DefaultStats()
			calm.Add(tt.stat, tt.low-50) // push toward the low value
			urgent := entity.DefaultStats()
			urgent.Add(tt.stat, tt.hi)

			assert.Greater(t,
				m.Priority(tt.activity, urgent, 0),
				m.Priority(tt.activity, calm, 0),
				"higher pressure must raise the relieving activity's score")
		})
	}
}

func TestPriorityWorkingTracksMoney(t *testing.T) {
	m := NewModel()

	broke := entity.DefaultStats()
	broke.Money = 5
	rich := entity.DefaultStats()
	rich.Money = 95

	assert.Greater(t, m.Priority(entity.ActivityWorking, broke, 0),
		m.Priority(entity.ActivityWorking, rich, 0))
}

func TestPriorityMonotonyPenalty(t *testing.T) {
	m := NewModel()
	stats := entity.DefaultStats()

	fresh := m.Priority(entity.ActivityExploring, stats, 0)
	stale := m.Priority(entity.ActivityExploring, stats, 5*time.Minute)
	saturated := m.Priority(entity.ActivityExploring, stats, time.Hour)

	assert.Greater(t, fresh, stale)
	assert.InDelta(t, fresh-25, saturated, 1e-9, "monotony penalty caps at 25")
}

func TestEffectivenessBounds(t *testing.T) {
	m := NewModel()

	for _, act := range entity.Activities {
		eff := m.Effectiveness(act, entity.DefaultStats())
		assert.GreaterOrEqual(t, eff, 0.0, act.String())
		assert.LessOrEqual(t, eff, 1.0, act.String())
	}

	assert.Zero(t, m.Effectiveness(entity.Activity(200), entity.DefaultStats()))
}

func TestApplyBaselineDecay(t *testing.T) {
	m := NewModel()
	e := newTestEntity()
	e.Activity = entity.ActivityContemplating
	before := e.Stats

	m.Apply(e, 10*time.Second)

	assert.Greater(t, e.Stats.Hunger, before.Hunger, "hunger accumulates")
	assert.Greater(t, e.Stats.Loneliness, before.Loneliness)
	assert.False(t, e.Dead)
}

func TestApplyActivityEffects(t *testing.T) {
	m := NewModel()
	e := newTestEntity()
	e.Activity = entity.ActivityResting
	e.Stats.Sleepiness = 80
	e.Stats.Energy = 30

	m.Apply(e, 10*time.Second)

	assert.Less(t, e.Stats.Sleepiness, 80.0, "resting burns sleep pressure faster than it accrues")
	assert.Greater(t, e.Stats.Energy, 30.0)
}

func TestApplyStarvationErodesHealth(t *testing.T) {
	m := NewModel()
	e := newTestEntity()
	e.Stats.Hunger = 95
	health := e.Stats.Health

	m.Apply(e, 10*time.Second)

	assert.Less(t, e.Stats.Health, health)
}

func TestApplyComfortRestoresHealth(t *testing.T) {
	m := NewModel()
	e := newTestEntity()
	e.Activity = entity.ActivityMeditating
	e.Stats.Hunger = 10
	e.Stats.Sleepiness = 10
	e.Stats.Health = 50

	m.Apply(e, 10*time.Second)

	assert.Greater(t, e.Stats.Health, 50.0)
}

func TestApplyDeath(t *testing.T) {
	m := NewModel()
	e := newTestEntity()
	e.Stats.Health = 1
	e.Stats.Hunger = 100

	// Starvation drains 0.5 health/s; a few seconds finishes it.
	m.Apply(e, 10*time.Second)

	require.True(t, e.Dead)

	// A dead entity no longer changes.
	snapshot := e.Stats
	m.Apply(e, time.Minute)
	assert.Equal(t, snapshot, e.Stats)
}

func TestApplyIgnoresBadDeltas(t *testing.T) {
	m := NewModel()
	e := newTestEntity()
	before := e.Stats

	m.Apply(e, 0)
	m.Apply(e, -time.Second)
	m.Apply(nil, time.Second)

	assert.Equal(t, before, e.Stats)
}

func TestApplyRefreshesMood(t *testing.T) {
	m := NewModel()
	e := newTestEntity()
	e.Stats.Energy = 10

	m.Apply(e, time.Second)

	assert.Equal(t, entity.MoodTired, e.Mood)
}
