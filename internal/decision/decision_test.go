package decision

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevenvo780/duetsim/internal/entity"
	"github.com/stevenvo780/duetsim/internal/entropy"
	"github.com/stevenvo780/duetsim/internal/needs"
)

func newTestEngine(cfg Config, seed int64) *Engine {
	return NewEngine(cfg, needs.NewModel(), entropy.NewSeeded(seed), slog.Default())
}

func newTestEntity(now time.Time) *entity.Entity {
	return entity.New(entity.RoleCircle, "Isa", entity.Personality{
		SocialPreference:    0.8,
		ActivityPersistence: 0.3,
		RiskTolerance:       0.6,
		EnergyEfficiency:    0.4,
	}, now)
}

func TestSampleGreedyAtZeroTemperature(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Temperature = 0
	g := newTestEngine(cfg, 1)

	candidates := []scored{
		{activity: entity.ActivityWandering, score: 10},
		{activity: entity.ActivityResting, score: 42},
		{activity: entity.ActivitySocializing, score: 30},
	}
	for i := 0; i < 50; i++ {
		assert.Equal(t, 1, g.sample(candidates), "zero temperature always picks the argmax")
	}
}

func TestSampleCoversCandidatesAtHighTemperature(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Temperature = 1000 // near-uniform
	g := newTestEngine(cfg, 7)

	candidates := []scored{
		{activity: entity.ActivityWandering, score: 10},
		{activity: entity.ActivityResting, score: 12},
		{activity: entity.ActivitySocializing, score: 11},
	}
	seen := make(map[int]int)
	for i := 0; i < 3000; i++ {
		seen[g.sample(candidates)]++
	}
	require.Len(t, seen, 3, "high temperature must visit every candidate")
	for idx, n := range seen {
		assert.Greater(t, n, 500, "candidate %d drawn too rarely for a near-uniform draw", idx)
	}
}

func TestSampleUniformOnIdenticalScores(t *testing.T) {
	g := newTestEngine(DefaultConfig(), 13)

	candidates := []scored{
		{activity: entity.ActivityWandering, score: 20},
		{activity: entity.ActivityResting, score: 20},
		{activity: entity.ActivitySocializing, score: 20},
		{activity: entity.ActivityExploring, score: 20},
	}
	counts := make([]int, len(candidates))
	const draws = 4000
	for i := 0; i < draws; i++ {
		counts[g.sample(candidates)]++
	}
	for i, n := range counts {
		// Expect draws/4 = 1000 each; allow a generous band.
		assert.InDelta(t, draws/4, n, 150, "candidate %d not drawn uniformly", i)
	}
}

func TestSampleFavorsHighScores(t *testing.T) {
	g := newTestEngine(DefaultConfig(), 99)

	candidates := []scored{
		{activity: entity.ActivityWandering, score: 10},
		{activity: entity.ActivityResting, score: 40},
	}
	wins := 0
	for i := 0; i < 1000; i++ {
		if g.sample(candidates) == 1 {
			wins++
		}
	}
	// exp(30/8) ≈ 42:1 odds for the stronger candidate.
	assert.Greater(t, wins, 900)
}

func TestDecideOpensInitialSession(t *testing.T) {
	now := time.Now()
	g := newTestEngine(DefaultConfig(), 3)
	e := newTestEntity(now)
	st := NewState()

	g.Decide(e, st, nil, now)

	require.NotNil(t, st.Session)
	assert.Equal(t, 0.5, st.Session.Effectiveness)
	assert.False(t, st.Session.StartedAt.IsZero())
}

func TestDecideRespectsInertiaGate(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	cfg.ChangeThreshold = 10_000 // nothing can clear this
	g := newTestEngine(cfg, 3)
	e := newTestEntity(now)
	st := NewState()

	for i := 0; i < 20; i++ {
		got := g.Decide(e, st, nil, now.Add(time.Duration(i)*time.Second))
		assert.Equal(t, entity.ActivityWandering, got, "an unclearable gate must never switch")
	}
	require.NotNil(t, st.Session)
	assert.Equal(t, entity.ActivityWandering, st.Session.Activity)
}

func TestDecideSwitchRestartsSession(t *testing.T) {
	now := time.Now()
	cfg := DefaultConfig()
	cfg.ChangeThreshold = -1000 // any candidate clears the gate
	cfg.Temperature = 0
	g := newTestEngine(cfg, 3)

	e := newTestEntity(now)
	e.Stats.Sleepiness = 95 // resting dominates
	e.Stats.Energy = 10
	st := NewState()
	g.Decide(e, st, nil, now) // switches into resting immediately

	require.Equal(t, entity.ActivityResting, e.Activity)
	firstID := st.Session.ID

	// Remove the sleep pressure and isolate the entity so socializing
	// dominates the next draw.
	e.Stats.Sleepiness = 0
	e.Stats.Energy = 100
	e.Stats.Loneliness = 100

	later := now.Add(5 * time.Second)
	got := g.Decide(e, st, nil, later)

	assert.Equal(t, entity.ActivitySocializing, got)
	assert.Equal(t, entity.ActivitySocializing, e.Activity)
	assert.Equal(t, later, e.LastActivityChange)
	require.NotNil(t, st.Session)
	assert.NotEqual(t, firstID, st.Session.ID, "a switch opens a fresh session")
	assert.Equal(t, entity.ActivitySocializing, st.Session.Activity)
}

func TestDecideDeadEntityUnchanged(t *testing.T) {
	now := time.Now()
	g := newTestEngine(DefaultConfig(), 3)
	e := newTestEntity(now)
	e.Dead = true
	st := NewState()

	got := g.Decide(e, st, nil, now)

	assert.Equal(t, entity.ActivityWandering, got)
	assert.Nil(t, st.Session, "dead entities never open sessions")
}

func TestInertiaComponents(t *testing.T) {
	now := time.Now()
	g := newTestEngine(DefaultConfig(), 3)
	e := newTestEntity(now)
	e.Personality.ActivityPersistence = 1.0

	sess := newSession(entity.ActivityResting, now, time.Minute)
	sess.Effectiveness = 0.9
	full := g.inertia(e, sess, now.Add(2*time.Minute))
	assert.InDelta(t, 0.9, full, 1e-9, "persistence 0.4 + full progress 0.3 + bonus 0.2")

	sess.Interruptions = 3
	interrupted := g.inertia(e, sess, now.Add(2*time.Minute))
	assert.InDelta(t, 0.75, interrupted, 1e-9)

	assert.InDelta(t, 0.4, g.inertia(e, nil, now), 1e-9, "no session leaves only the trait term")
}

func TestPlannedDurationStretchesWithPersistence(t *testing.T) {
	now := time.Now()
	g := newTestEngine(DefaultConfig(), 3)

	steady := newTestEntity(now)
	steady.Personality.ActivityPersistence = 1.0
	flighty := newTestEntity(now)
	flighty.Personality.ActivityPersistence = 0.0

	assert.Equal(t, 60*time.Second, g.plannedDuration(steady))
	assert.Equal(t, 30*time.Second, g.plannedDuration(flighty))
}

func TestHabitAdjustBounds(t *testing.T) {
	st := NewState()

	for i := 0; i < 30; i++ {
		st.adjustHabit(entity.ActivityResting, 0.9)
	}
	assert.Equal(t, habitMax, st.HabitBias(entity.ActivityResting))

	for i := 0; i < 60; i++ {
		st.adjustHabit(entity.ActivityWorking, 0.1)
	}
	assert.Equal(t, habitMin, st.HabitBias(entity.ActivityWorking))

	st.ClearHabits()
	assert.Zero(t, st.HabitBias(entity.ActivityResting))
}

func TestRefreshSessionSmooths(t *testing.T) {
	now := time.Now()
	g := newTestEngine(DefaultConfig(), 3)
	e := newTestEntity(now)
	st := NewState()
	st.Session = newSession(entity.ActivityResting, now, time.Minute)

	before := st.Session.Effectiveness
	g.RefreshSession(e, st)
	after := st.Session.Effectiveness

	sample := needs.NewModel().Effectiveness(entity.ActivityResting, e.Stats)
	assert.InDelta(t, before*0.8+sample*0.2, after, 1e-9)
}

func TestDeterministicWithSameSeed(t *testing.T) {
	run := func() []entity.Activity {
		now := time.Unix(1_700_000_000, 0)
		g := newTestEngine(DefaultConfig(), 42)
		e := newTestEntity(now)
		st := NewState()
		m := needs.NewModel()

		var history []entity.Activity
		for i := 0; i < 200; i++ {
			tick := now.Add(time.Duration(i) * time.Second)
			m.Apply(e, time.Second)
			g.RefreshSession(e, st)
			history = append(history, g.Decide(e, st, nil, tick))
		}
		return history
	}

	assert.Equal(t, run(), run(), "identical seeds replay identical decision sequences")
}

func TestRecordInterruption(t *testing.T) {
	st := NewState()
	st.RecordInterruption() // no session yet: no-op
	st.Session = newSession(entity.ActivityResting, time.Now(), time.Minute)
	st.RecordInterruption()
	st.RecordInterruption()
	assert.Equal(t, 2, st.Session.Interruptions)
}
