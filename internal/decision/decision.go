// Package decision implements activity selection: needs urgency shaped
// by mood and personality, temperature-controlled softmax sampling, an
// inertia gate against thrashing, and habit learning from completed
// activity sessions.
package decision

import (
	"log/slog"
	"math"
	"time"

	"github.com/stevenvo780/duetsim/internal/entity"
	"github.com/stevenvo780/duetsim/internal/entropy"
	"github.com/stevenvo780/duetsim/internal/needs"
)

// Config holds the tunable selection parameters.
type Config struct {
	// PersonalityInfluence scales trait bonuses, in [0, 1].
	PersonalityInfluence float64
	// Temperature is the softmax τ. Zero (or below) degenerates to a
	// greedy argmax.
	Temperature float64
	// ChangeThreshold is the base score a candidate must clear to
	// displace the current activity.
	ChangeThreshold float64
	// InertiaBonus is added to inertia while the running session is
	// going well.
	InertiaBonus float64
	// BaseSessionDuration anchors planned session length before the
	// persistence trait stretches it.
	BaseSessionDuration time.Duration
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		PersonalityInfluence: 0.6,
		Temperature:          8.0,
		ChangeThreshold:      12.0,
		InertiaBonus:         0.2,
		BaseSessionDuration:  30 * time.Second,
	}
}

// moodProfile is the fixed per-mood modifier row.
type moodProfile struct {
	activityChange     float64
	socialSeek         float64
	riskTaking         float64
	energyConservation float64
}

var moodProfiles = map[entity.Mood]moodProfile{
	entity.MoodContent: {activityChange: 0.5, socialSeek: 0.5, riskTaking: 0.5, energyConservation: 0.4},
	entity.MoodHappy:   {activityChange: 0.6, socialSeek: 0.8, riskTaking: 0.6, energyConservation: 0.2},
	entity.MoodExcited: {activityChange: 0.9, socialSeek: 0.7, riskTaking: 0.9, energyConservation: 0.1},
	entity.MoodCalm:    {activityChange: 0.3, socialSeek: 0.4, riskTaking: 0.3, energyConservation: 0.6},
	entity.MoodSad:     {activityChange: 0.4, socialSeek: 0.3, riskTaking: 0.2, energyConservation: 0.7},
	entity.MoodAnxious: {activityChange: 0.8, socialSeek: 0.2, riskTaking: 0.1, energyConservation: 0.8},
	entity.MoodTired:   {activityChange: 0.3, socialSeek: 0.2, riskTaking: 0.1, energyConservation: 1.0},
	entity.MoodBored:   {activityChange: 0.9, socialSeek: 0.6, riskTaking: 0.8, energyConservation: 0.2},
}

// Engine scores and samples activities for one entity at a time.
type Engine struct {
	cfg   Config
	needs needs.Provider
	rng   entropy.Source
	log   *slog.Logger
}

// NewEngine builds a decision engine around the given needs provider and
// randomness source.
func NewEngine(cfg Config, provider needs.Provider, rng entropy.Source, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	cfg.PersonalityInfluence = entity.Clamp01(cfg.PersonalityInfluence)
	return &Engine{cfg: cfg, needs: provider, rng: rng, log: log}
}

type scored struct {
	activity entity.Activity
	score    float64
}

// Decide picks the entity's next activity. It commits a switch (ending
// the running session and starting a new one) only when the sampled
// candidate clears the inertia gate; otherwise the current activity is
// retained untouched.
func (g *Engine) Decide(e *entity.Entity, st *State, companion *entity.Entity, now time.Time) entity.Activity {
	if e == nil {
		return entity.ActivityWandering
	}
	if e.Dead {
		return e.Activity
	}
	if st.Session == nil {
		// First call for this entity: open a session for whatever it
		// is already doing.
		st.Session = newSession(e.Activity, now, g.plannedDuration(e))
	}

	candidates := g.scoreAll(e, st, companion, now)
	if len(candidates) == 0 {
		return e.Activity
	}

	idx := g.sample(candidates)
	chosen := candidates[idx]

	if chosen.activity == e.Activity {
		return e.Activity
	}

	inertia := g.inertia(e, st.Session, now)
	gate := g.cfg.ChangeThreshold + 10*inertia
	if chosen.score <= gate {
		g.log.Debug("activity switch rejected by inertia",
			"entity", e.Role.String(),
			"candidate", chosen.activity.String(),
			"score", chosen.score,
			"gate", gate,
		)
		return e.Activity
	}

	g.commitSwitch(e, st, chosen.activity, now)
	return e.Activity
}

// scoreAll produces the candidate list. Non-finite base scores exclude
// the candidate instead of poisoning the softmax.
func (g *Engine) scoreAll(e *entity.Entity, st *State, companion *entity.Entity, now time.Time) []scored {
	mood := moodProfiles[e.Mood]
	hasCompanion := companion != nil && !companion.Dead
	influence := g.cfg.PersonalityInfluence
	timeIn := now.Sub(e.LastActivityChange)

	out := make([]scored, 0, len(entity.Activities))
	for _, act := range entity.Activities {
		elapsed := time.Duration(0)
		if act == e.Activity {
			elapsed = timeIn
		}
		score := g.needs.Priority(act, e.Stats, elapsed)
		if math.IsNaN(score) || math.IsInf(score, 0) {
			g.log.Debug("excluding candidate with non-finite score",
				"entity", e.Role.String(), "activity", act.String())
			continue
		}

		switch {
		case act.IsSocial():
			score += mood.socialSeek * 15
			if hasCompanion {
				score += e.Personality.SocialPreference * 15 * influence
			}
		case act.IsRestful():
			score += mood.energyConservation * 10
			score += e.Personality.EnergyEfficiency * 10 * influence
		case act.IsActive():
			score += mood.riskTaking * 8
			score += e.Personality.RiskTolerance * 8 * influence
		}

		score += st.HabitBias(act)
		out = append(out, scored{activity: act, score: score})
	}
	return out
}

// sample draws one candidate index via softmax with temperature. Scores
// are shifted by the max so exponents stay bounded. τ ≤ 0 is the greedy
// limit.
func (g *Engine) sample(candidates []scored) int {
	best := 0
	maxScore := math.Inf(-1)
	for i, c := range candidates {
		if c.score > maxScore {
			maxScore = c.score
			best = i
		}
	}
	tau := g.cfg.Temperature
	if tau <= 0 || math.IsNaN(tau) {
		return best
	}

	weights := make([]float64, len(candidates))
	total := 0.0
	for i, c := range candidates {
		w := math.Exp((c.score - maxScore) / tau)
		weights[i] = w
		total += w
	}
	if total <= 0 || math.IsNaN(total) {
		return best
	}

	r := g.rng.Float64() * total
	cum := 0.0
	for i, w := range weights {
		cum += w
		if r < cum {
			return i
		}
	}
	return len(candidates) - 1
}

// inertia measures how hard the current session resists displacement,
// in [0, 1]: persistence trait, session progress, a bonus while the
// session is effective, and a penalty once it keeps getting interrupted.
func (g *Engine) inertia(e *entity.Entity, sess *Session, now time.Time) float64 {
	v := 0.4 * e.Personality.ActivityPersistence

	if sess != nil {
		if sess.PlannedDuration > 0 {
			progress := now.Sub(sess.StartedAt).Seconds() / sess.PlannedDuration.Seconds()
			v += 0.3 * entity.Clamp01(progress)
		}
		if sess.Effectiveness > 0.7 {
			v += g.cfg.InertiaBonus
		}
		if sess.Interruptions > 2 {
			v -= 0.15
		}
	}
	return entity.Clamp01(v)
}

// commitSwitch finalizes the old session into habit bias and starts the
// new one.
func (g *Engine) commitSwitch(e *entity.Entity, st *State, next entity.Activity, now time.Time) {
	if sess := st.Session; sess != nil {
		satisfaction := 0.7*sess.Effectiveness + 0.3*g.rng.Float64()
		sess.Satisfaction = satisfaction
		st.adjustHabit(sess.Activity, satisfaction)
	}

	st.Session = newSession(next, now, g.plannedDuration(e))
	e.Activity = next
	e.LastActivityChange = now

	g.log.Debug("activity switched",
		"entity", e.Role.String(),
		"activity", next.String(),
		"planned", st.Session.PlannedDuration,
	)
}

func (g *Engine) plannedDuration(e *entity.Entity) time.Duration {
	base := g.cfg.BaseSessionDuration
	if base <= 0 {
		base = DefaultConfig().BaseSessionDuration
	}
	return time.Duration(float64(base) * (1 + e.Personality.ActivityPersistence))
}

// RefreshSession updates the running session's effectiveness from the
// current stats. Called once per logic tick.
func (g *Engine) RefreshSession(e *entity.Entity, st *State) {
	if st.Session == nil || e == nil {
		return
	}
	sample := g.needs.Effectiveness(st.Session.Activity, e.Stats)
	// Light smoothing keeps one odd tick from flipping the inertia
	// bonus on and off.
	st.Session.Effectiveness = st.Session.Effectiveness*0.8 + sample*0.2
}
