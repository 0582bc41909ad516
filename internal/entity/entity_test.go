package entity

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntity(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	e := New(RoleCircle, "Isa", Personality{SocialPreference: 1.5, RiskTolerance: -2}, now)

	assert.Equal(t, "circle", e.Role.String())
	assert.Equal(t, ActivityWandering, e.Activity)
	assert.Equal(t, 50.0, e.Resonance)
	assert.Equal(t, now, e.LastActivityChange)
	assert.False(t, e.Dead)

	// Out-of-range traits are clamped at construction.
	assert.Equal(t, 1.0, e.Personality.SocialPreference)
	assert.Equal(t, 0.0, e.Personality.RiskTolerance)
}

func TestDeriveMood(t *testing.T) {
	base := DefaultStats()

	tests := []struct {
		name   string
		mutate func(*Stats)
		want   Mood
	}{
		{"default is content", func(s *Stats) {}, MoodContent},
		{"low energy reads tired", func(s *Stats) { s.Energy = 10 }, MoodTired},
		{"heavy sleep pressure reads tired", func(s *Stats) { s.Sleepiness = 90 }, MoodTired},
		{"two critical stats read anxious", func(s *Stats) { s.Health = 10; s.Money = 10 }, MoodAnxious},
		{"low happiness reads sad", func(s *Stats) { s.Happiness = 20 }, MoodSad},
		{"isolation reads sad", func(s *Stats) { s.Loneliness = 80 }, MoodSad},
		{"high boredom reads bored", func(s *Stats) { s.Boredom = 80 }, MoodBored},
		{"high happiness and energy read excited", func(s *Stats) { s.Happiness = 85 }, MoodExcited},
		{"high happiness alone reads happy", func(s *Stats) { s.Happiness = 70; s.Energy = 50 }, MoodHappy},
		{"settled needs read calm", func(s *Stats) { s.Loneliness = 10; s.Boredom = 10; s.Sleepiness = 10 }, MoodCalm},
		{"exhaustion masks sadness", func(s *Stats) { s.Energy = 5; s.Happiness = 5 }, MoodTired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			assert.Equal(t, tt.want, DeriveMood(s))
		})
	}
}

func TestActivityCategories(t *testing.T) {
	social := 0
	restful := 0
	active := 0
	for _, a := range Activities {
		if a.IsSocial() {
			social++
		}
		if a.IsRestful() {
			restful++
		}
		if a.IsActive() {
			active++
		}
		assert.NotEqual(t, "unknown", a.String())
	}
	assert.Equal(t, 2, social)
	assert.Equal(t, 3, restful)
	assert.Equal(t, 3, active)

	assert.Equal(t, "unknown", Activity(200).String())
}

func TestStatsAddAndClamp(t *testing.T) {
	s := DefaultStats()
	s.Add(StatEnergy, 1000)
	assert.Equal(t, 100.0, s.Energy)
	s.Add(StatEnergy, -1000)
	assert.Equal(t, 0.0, s.Energy)

	s.Add(StatName("bogus"), 50) // ignored
	_, ok := s.Value(StatName("bogus"))
	assert.False(t, ok)

	s.Hunger = math.NaN()
	s.Happiness = math.Inf(1)
	s.Clamp()
	assert.Equal(t, 0.0, s.Hunger)
	assert.Equal(t, 0.0, s.Happiness)
}

func TestStatsValueCoversAllNames(t *testing.T) {
	s := DefaultStats()
	for _, name := range StatNames {
		_, ok := s.Value(name)
		require.True(t, ok, "stat %s must be addressable by name", name)
	}
}

func TestGoodnessOrientation(t *testing.T) {
	good := Stats{Happiness: 100, Energy: 100, Money: 100, Health: 100}
	assert.Equal(t, 1.0, good.Satisfaction(), "zero pressures and full reserves are fully satisfied")

	bad := Stats{Hunger: 100, Sleepiness: 100, Loneliness: 100, Boredom: 100}
	assert.Equal(t, 0.0, bad.Satisfaction())
}

func TestCriticalCount(t *testing.T) {
	s := DefaultStats()
	assert.Zero(t, s.CriticalCount(20))

	s.Hunger = 90 // pressure above 80 is critical
	s.Energy = 10 // reserve below 20 is critical
	assert.Equal(t, 2, s.CriticalCount(20))
}

func TestVariance(t *testing.T) {
	uniform := Stats{Happiness: 50, Energy: 50, Money: 50, Health: 50,
		Hunger: 50, Sleepiness: 50, Loneliness: 50, Boredom: 50}
	assert.Equal(t, 0.0, uniform.Variance())

	split := Stats{Happiness: 100, Energy: 100, Money: 100, Health: 100,
		Hunger: 100, Sleepiness: 100, Loneliness: 100, Boredom: 100}
	assert.InDelta(t, 0.25, split.Variance(), 1e-9,
		"half satisfied, half starved is the worst case")
}

func TestDistanceTo(t *testing.T) {
	a := Vec2{X: 0, Y: 0}
	b := Vec2{X: 3, Y: 4}
	assert.Equal(t, 5.0, a.DistanceTo(b))
	assert.Equal(t, 0.0, a.DistanceTo(a))
}
