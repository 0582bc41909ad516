// Package entity provides the data model for the two companions: bounded
// stats, the activity and mood catalogs, and the personality profile that
// shapes decision making.
package entity

import (
	"math"
	"time"
)

// Role identifies one of the two fixed companions.
type Role uint8

const (
	RoleCircle Role = iota
	RoleSquare
)

// String returns the role's config/log name.
func (r Role) String() string {
	if r == RoleSquare {
		return "square"
	}
	return "circle"
}

// Activity enumerates everything a companion can be doing.
type Activity uint8

const (
	ActivityWandering Activity = iota
	ActivityResting
	ActivityMeditating
	ActivityContemplating
	ActivitySocializing
	ActivityDancing
	ActivityExploring
	ActivityExercising
	ActivityWorking
	ActivityWriting
)

// Activities lists every activity, in catalog order.
var Activities = []Activity{
	ActivityWandering, ActivityResting, ActivityMeditating,
	ActivityContemplating, ActivitySocializing, ActivityDancing,
	ActivityExploring, ActivityExercising, ActivityWorking,
	ActivityWriting,
}

var activityNames = [...]string{
	"wandering", "resting", "meditating", "contemplating",
	"socializing", "dancing", "exploring", "exercising",
	"working", "writing",
}

func (a Activity) String() string {
	if int(a) < len(activityNames) {
		return activityNames[a]
	}
	return "unknown"
}

// IsSocial reports whether the activity needs (or seeks) the companion.
func (a Activity) IsSocial() bool {
	return a == ActivitySocializing || a == ActivityDancing
}

// IsRestful reports whether the activity conserves or recovers energy.
func (a Activity) IsRestful() bool {
	return a == ActivityResting || a == ActivityMeditating || a == ActivityContemplating
}

// IsActive reports whether the activity is exploratory or physically
// demanding.
func (a Activity) IsActive() bool {
	return a == ActivityExploring || a == ActivityWandering || a == ActivityExercising
}

// Mood is the emotional state derived from stats each tick.
type Mood uint8

const (
	MoodContent Mood = iota
	MoodHappy
	MoodExcited
	MoodCalm
	MoodSad
	MoodAnxious
	MoodTired
	MoodBored
)

var moodNames = [...]string{
	"content", "happy", "excited", "calm", "sad", "anxious", "tired", "bored",
}

func (m Mood) String() string {
	if int(m) < len(moodNames) {
		return moodNames[m]
	}
	return "unknown"
}

// Personality holds the four fixed traits, each in [0, 1]. Immutable for
// the lifetime of an entity; loaded from configuration per role.
type Personality struct {
	SocialPreference    float64 `yaml:"social_preference" json:"social_preference"`
	ActivityPersistence float64 `yaml:"activity_persistence" json:"activity_persistence"`
	RiskTolerance       float64 `yaml:"risk_tolerance" json:"risk_tolerance"`
	EnergyEfficiency    float64 `yaml:"energy_efficiency" json:"energy_efficiency"`
}

// Clamped returns the profile with every trait forced into [0, 1].
func (p Personality) Clamped() Personality {
	p.SocialPreference = Clamp01(p.SocialPreference)
	p.ActivityPersistence = Clamp01(p.ActivityPersistence)
	p.RiskTolerance = Clamp01(p.RiskTolerance)
	p.EnergyEfficiency = Clamp01(p.EnergyEfficiency)
	return p
}

// Vec2 is a world position supplied by the host each tick.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance between two positions.
func (v Vec2) DistanceTo(o Vec2) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Entity is one of the two companions. Created once at simulation start
// and mutated every tick; never destroyed, only marked dead.
type Entity struct {
	Role        Role        `json:"role"`
	Name        string      `json:"name"`
	Position    Vec2        `json:"position"`
	Stats       Stats       `json:"stats"`
	Activity    Activity    `json:"activity"`
	Mood        Mood        `json:"mood"`
	Personality Personality `json:"personality"`

	// Resonance is logically shared with the partner but mirrored on
	// each entity for convenience. Bounded to [0, 100].
	Resonance float64 `json:"resonance"`

	LastActivityChange time.Time `json:"last_activity_change"`
	Dead               bool      `json:"dead"`
}

// New creates a living entity with moderate stats and the given profile.
func New(role Role, name string, p Personality, now time.Time) *Entity {
	return &Entity{
		Role:               role,
		Name:               name,
		Stats:              DefaultStats(),
		Activity:           ActivityWandering,
		Mood:               MoodContent,
		Personality:        p.Clamped(),
		Resonance:          50,
		LastActivityChange: now,
	}
}

// RefreshMood re-derives the mood from current stats.
func (e *Entity) RefreshMood() {
	e.Mood = DeriveMood(e.Stats)
}

// DeriveMood maps a stats snapshot to a mood. Evaluated most-pressing
// first so physical exhaustion masks everything else.
func DeriveMood(s Stats) Mood {
	switch {
	case s.Energy < 20 || s.Sleepiness > 80:
		return MoodTired
	case s.CriticalCount(20) >= 2:
		return MoodAnxious
	case s.Happiness < 30 || s.Loneliness > 75:
		return MoodSad
	case s.Boredom > 70:
		return MoodBored
	case s.Happiness > 80 && s.Energy > 65:
		return MoodExcited
	case s.Happiness > 65:
		return MoodHappy
	case s.Loneliness < 30 && s.Boredom < 40 && s.Sleepiness < 50:
		return MoodCalm
	default:
		return MoodContent
	}
}

// Clamp01 forces v into [0, 1], mapping NaN to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampStat forces v into the [0, 100] stat range, mapping non-finite
// values to the floor so they cannot poison downstream math.
func ClampStat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
