// Package needs implements the needs-decay model: per-second stat
// pressure, per-activity costs and recoveries, and the urgency scoring
// the decision engine builds on.
package needs

import (
	"math"
	"time"

	"github.com/stevenvo780/duetsim/internal/entity"
)

// Provider is the contract the decision engine depends on. Model is the
// default implementation; hosts with their own stat arithmetic can
// supply a replacement.
type Provider interface {
	// Priority scores how urgently the activity is needed given the
	// current stats and the time already spent in it.
	Priority(act entity.Activity, stats entity.Stats, timeIn time.Duration) float64

	// Effectiveness estimates, in [0, 1], how well the activity serves
	// the current stats.
	Effectiveness(act entity.Activity, stats entity.Stats) float64

	// Apply advances decay and the current activity's effects by dt.
	Apply(e *entity.Entity, dt time.Duration)
}

// effect holds per-second stat deltas for one activity.
type effect struct {
	hunger     float64
	sleepiness float64
	loneliness float64
	happiness  float64
	energy     float64
	boredom    float64
	money      float64
	health     float64
}

// activityEffects is the per-second cost/recovery table.
var activityEffects = map[entity.Activity]effect{
	entity.ActivityWandering:     {boredom: -0.5, energy: -0.3},
	entity.ActivityResting:       {sleepiness: -2.2, energy: 1.6, boredom: 0.4},
	entity.ActivityMeditating:    {sleepiness: -0.5, happiness: 0.3, energy: 0.5, boredom: -0.6},
	entity.ActivityContemplating: {happiness: 0.2, boredom: -0.4, loneliness: 0.1},
	entity.ActivitySocializing:   {loneliness: -2.5, happiness: 0.6, energy: -0.2},
	entity.ActivityDancing:       {loneliness: -1.2, happiness: 1.0, energy: -1.2, boredom: -2.0},
	entity.ActivityExploring:     {boredom: -1.6, energy: -0.8, hunger: 0.2},
	entity.ActivityExercising:    {health: 0.4, energy: -1.5, hunger: 0.3, boredom: -0.8},
	entity.ActivityWorking:       {money: 1.2, energy: -0.6, boredom: 0.5, loneliness: 0.2},
	entity.ActivityWriting:       {boredom: -1.0, happiness: 0.4, money: 0.2, loneliness: 0.3},
}

// baseline decay applied every second regardless of activity.
var baselineDecay = effect{
	hunger:     0.35,
	sleepiness: 0.25,
	loneliness: 0.30,
	happiness:  -0.10,
	boredom:    0.40,
}

// Model is the default arithmetic needs model.
type Model struct{}

// NewModel returns the default model.
func NewModel() *Model { return &Model{} }

// urgencyWeights ranks which pressures dominate scoring.
var urgencyWeights = map[entity.StatName]float64{
	entity.StatHunger:     1.2,
	entity.StatSleepiness: 1.1,
	entity.StatLoneliness: 1.0,
	entity.StatHappiness:  0.8,
	entity.StatEnergy:     1.1,
	entity.StatBoredom:    0.9,
	entity.StatMoney:      0.5,
	entity.StatHealth:     1.3,
}

// Priority scores an activity by how much it relieves the most urgent
// pressures, with a monotony penalty that grows with time spent in it.
// Scores land roughly in [0, 60] so mood and personality bonuses (up to
// ~15 each) can meaningfully reorder candidates.
func (m *Model) Priority(act entity.Activity, stats entity.Stats, timeIn time.Duration) float64 {
	eff, ok := activityEffects[act]
	if !ok {
		return math.Inf(-1)
	}

	score := 5.0 // small floor so idle activities stay sampleable
	score += relief(eff.hunger, urgency(stats.Hunger, true), entity.StatHunger)
	score += relief(eff.sleepiness, urgency(stats.Sleepiness, true), entity.StatSleepiness)
	score += relief(eff.loneliness, urgency(stats.Loneliness, true), entity.StatLoneliness)
	score += relief(eff.boredom, urgency(stats.Boredom, true), entity.StatBoredom)
	score += relief(eff.happiness, urgency(stats.Happiness, false), entity.StatHappiness)
	score += relief(eff.energy, urgency(stats.Energy, false), entity.StatEnergy)
	score += relief(eff.money, urgency(stats.Money, false), entity.StatMoney)
	score += relief(eff.health, urgency(stats.Health, false), entity.StatHealth)

	// Monotony: the longer an activity has run, the less it appeals.
	score -= math.Min(25, timeIn.Minutes()*3)

	return score
}

// urgency maps a stat to [0, 1] urgency. Pressures are urgent when
// high, reserves when low.
func urgency(value float64, pressure bool) float64 {
	value = entity.ClampStat(value)
	if pressure {
		return value / 100
	}
	return (100 - value) / 100
}

// relief converts a per-second rate against a pressure into score: only
// rates that push the stat the right way count.
func relief(rate, urg float64, name entity.StatName) float64 {
	w := urgencyWeights[name]
	// For pressures the table uses negative rates to relieve; for
	// reserves positive rates replenish. urgency is already oriented,
	// so the helping magnitude is what matters.
	var helping float64
	switch name {
	case entity.StatHunger, entity.StatSleepiness, entity.StatLoneliness, entity.StatBoredom:
		helping = -rate
	default:
		helping = rate
	}
	if helping <= 0 {
		return 0
	}
	return helping * urg * w * 10
}

// Effectiveness normalizes Priority (without monotony) into [0, 1].
func (m *Model) Effectiveness(act entity.Activity, stats entity.Stats) float64 {
	score := m.Priority(act, stats, 0)
	if math.IsInf(score, -1) || math.IsNaN(score) {
		return 0
	}
	return entity.Clamp01(score / 50)
}

// Apply advances the needs model by dt: baseline decay, the current
// activity's effects, health consequences, and mood refresh.
func (m *Model) Apply(e *entity.Entity, dt time.Duration) {
	if e == nil || e.Dead {
		return
	}
	sec := dt.Seconds()
	if sec <= 0 || math.IsNaN(sec) || math.IsInf(sec, 0) {
		return
	}

	applyEffect(&e.Stats, baselineDecay, sec)
	if eff, ok := activityEffects[e.Activity]; ok {
		applyEffect(&e.Stats, eff, sec)
	}

	// Starvation and exhaustion erode health; comfort restores it.
	switch {
	case e.Stats.Hunger > 90 || e.Stats.Energy < 5:
		e.Stats.Health -= 0.5 * sec
	case e.Stats.Hunger < 40 && e.Stats.Sleepiness < 40:
		e.Stats.Health += 0.05 * sec
	}

	e.Stats.Clamp()
	if e.Stats.Health <= 0 {
		e.Dead = true
	}
	e.RefreshMood()
}

func applyEffect(s *entity.Stats, eff effect, sec float64) {
	s.Hunger += eff.hunger * sec
	s.Sleepiness += eff.sleepiness * sec
	s.Loneliness += eff.loneliness * sec
	s.Happiness += eff.happiness * sec
	s.Energy += eff.energy * sec
	s.Boredom += eff.boredom * sec
	s.Money += eff.money * sec
	s.Health += eff.health * sec
}
