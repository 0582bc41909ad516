// Package emergence detects higher-order behavioral regimes across the
// needs, decision and resonance layers: pattern templates evaluated from
// generic conditions, feedback-loop predicates, and a set of smoothed
// system-wide metrics with bounded history.
package emergence

import (
	"fmt"
	"time"

	"github.com/stevenvo780/duetsim/internal/entity"
	"github.com/stevenvo780/duetsim/internal/world"
)

// EntityState is one companion's slice of the aggregate snapshot.
type EntityState struct {
	Role     entity.Role
	Stats    entity.Stats
	Activity entity.Activity
	Mood     entity.Mood
	Dead     bool
}

// Snapshot is the aggregate state a metrics tick evaluates against.
type Snapshot struct {
	Resonance float64 // 0–100
	Closeness float64 // 0–1
	TimeOfDay world.Phase
	Weather   world.Weather
	Entities  []EntityState
}

func (s Snapshot) byRole(r entity.Role) (EntityState, bool) {
	for _, e := range s.Entities {
		if e.Role == r {
			return e, true
		}
	}
	return EntityState{}, false
}

// Condition is one evaluable clause of a pattern template. Conditions
// carry their own weight so templates stay data, not control flow.
type Condition interface {
	Weight() float64
	Met(s Snapshot) bool
	Describe() string
}

// ResonanceRange is satisfied while resonance sits inside [Min, Max].
type ResonanceRange struct {
	Min, Max float64
}

func (c ResonanceRange) Weight() float64 { return 0.3 }

func (c ResonanceRange) Met(s Snapshot) bool {
	return s.Resonance >= c.Min && s.Resonance <= c.Max
}

func (c ResonanceRange) Describe() string {
	return fmt.Sprintf("resonance in [%.0f, %.0f]", c.Min, c.Max)
}

// TimeOfDayIn is satisfied during any of the listed phases.
type TimeOfDayIn struct {
	Phases []world.Phase
}

func (c TimeOfDayIn) Weight() float64 { return 0.2 }

func (c TimeOfDayIn) Met(s Snapshot) bool {
	for _, p := range c.Phases {
		if s.TimeOfDay == p {
			return true
		}
	}
	return false
}

func (c TimeOfDayIn) Describe() string {
	return fmt.Sprintf("time of day in %v", c.Phases)
}

// WeatherIn is satisfied under any of the listed weather tags.
type WeatherIn struct {
	Tags []world.Weather
}

func (c WeatherIn) Weight() float64 { return 0.2 }

func (c WeatherIn) Met(s Snapshot) bool {
	for _, t := range c.Tags {
		if s.Weather == t {
			return true
		}
	}
	return false
}

func (c WeatherIn) Describe() string {
	return fmt.Sprintf("weather in %v", c.Tags)
}

// NeedRange is satisfied while one entity's stat sits inside [Min, Max].
type NeedRange struct {
	Role     entity.Role
	Stat     entity.StatName
	Min, Max float64
}

func (c NeedRange) Weight() float64 { return 0.25 }

func (c NeedRange) Met(s Snapshot) bool {
	e, ok := s.byRole(c.Role)
	if !ok || e.Dead {
		return false
	}
	v, ok := e.Stats.Value(c.Stat)
	if !ok {
		return false
	}
	return v >= c.Min && v <= c.Max
}

func (c NeedRange) Describe() string {
	return fmt.Sprintf("%s %s in [%.0f, %.0f]", c.Role, c.Stat, c.Min, c.Max)
}

// StatEffect is a pattern's feedback into the needs layer: while the
// pattern is active, the stat drifts by Delta (scaled by pattern
// strength) every metrics tick.
type StatEffect struct {
	Stat  entity.StatName
	Delta float64
}

// PatternType classifies templates.
type PatternType string

const (
	PatternBehavioral    PatternType = "behavioral"
	PatternSocial        PatternType = "social"
	PatternEnvironmental PatternType = "environmental"
	PatternSystemic      PatternType = "systemic"
)

// Template describes one detectable regime. Templates with no explicit
// conditions fall back to the (complexity+coherence)/2 strength rule.
type Template struct {
	ID         string
	Name       string
	Type       PatternType
	Conditions []Condition
	Triggers   []string
	Effects    []StatEffect
}

// strength evaluates a template against a snapshot: the satisfied
// condition weight over the present condition weight, so a fully
// satisfied template always reads 1.0 regardless of how many clauses it
// carries.
func (t Template) strength(s Snapshot, m Metrics) float64 {
	if len(t.Conditions) == 0 {
		return entity.Clamp01((m.Complexity + m.Coherence) / 2)
	}
	present := 0.0
	satisfied := 0.0
	for _, c := range t.Conditions {
		if c == nil {
			continue
		}
		w := c.Weight()
		present += w
		if c.Met(s) {
			satisfied += w
		}
	}
	if present == 0 {
		return 0
	}
	return entity.Clamp01(satisfied / present)
}

// Pattern is a live detected instance of a template. At most one per
// template exists at a time.
type Pattern struct {
	ID         string        `json:"id"`
	TemplateID string        `json:"template_id"`
	Name       string        `json:"name"`
	Type       PatternType   `json:"type"`
	Strength   float64       `json:"strength"`
	Duration   time.Duration `json:"duration"`
	DetectedAt time.Time     `json:"detected_at"`

	belowSince time.Time // zero while strength holds above threshold
}

// LoopType classifies feedback loops.
type LoopType string

const (
	LoopPositive LoopType = "positive"
	LoopNegative LoopType = "negative"
)

// FeedbackLoop tracks one reinforcing or balancing relationship. Active
// follows the predicate with no extra cool-down.
type FeedbackLoop struct {
	ID             string    `json:"id"`
	Type           LoopType  `json:"type"`
	Strength       float64   `json:"strength"`
	Elements       []string  `json:"elements"`
	Active         bool      `json:"active"`
	LastActivation time.Time `json:"last_activation"`

	When func(s Snapshot, m Metrics) bool `json:"-"`
}
