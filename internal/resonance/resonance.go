// Package resonance computes the continuous pairwise bond between the
// two companions: a logistic closeness curve over distance, mood-driven
// gain, separation decay, and stress erosion, integrated into a bounded
// resonance value owned by the caller.
package resonance

import (
	"math"

	"github.com/stevenvo780/duetsim/internal/entity"
)

// Effect tags the direction of a resonance sample for UI feedback.
type Effect string

const (
	EffectBonding    Effect = "BONDING"
	EffectSeparation Effect = "SEPARATION"
	EffectNeutral    Effect = "NEUTRAL"
)

// deadband suppresses flapping between BONDING and SEPARATION on noise.
const deadband = 0.1

// criticalStatThreshold marks a stat as critical for the stress term.
const criticalStatThreshold = 20.0

// Config holds the tunable bonding parameters.
type Config struct {
	// BondDistance is the logistic midpoint: closeness is exactly 0.5
	// at this distance.
	BondDistance float64 `yaml:"bond_distance"`
	// BondScale controls the width of the transition band.
	BondScale float64 `yaml:"bond_scale"`

	// Per-second rates.
	BondRate       float64 `yaml:"bond_rate"`
	SeparationRate float64 `yaml:"separation_rate"`
	StressRate     float64 `yaml:"stress_rate"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		BondDistance:   150,
		BondScale:      50,
		BondRate:       2.0,
		SeparationRate: 1.5,
		StressRate:     0.5,
	}
}

// Sample is the per-tick result. Change integrates into the entity's
// resonance; the rest is transient.
type Sample struct {
	Change    float64 `json:"change"`
	Effect    Effect  `json:"effect"`
	Closeness float64 `json:"closeness"`
}

// Modifiers are the stat multipliers derived from the current bond.
// Multipliers apply multiplicatively each tick; the caller re-clamps.
type Modifiers struct {
	Happiness         float64 `json:"happiness"`
	Energy            float64 `json:"energy"`
	Health            float64 `json:"health"`
	LonelinessPenalty float64 `json:"loneliness_penalty"`
}

// Engine evaluates bonding dynamics. Stateless: resonance itself is a
// running integral owned by the entities.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine, falling back to defaults for invalid
// curve parameters.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if !(cfg.BondDistance > 0) || !isFinite(cfg.BondDistance) {
		cfg.BondDistance = def.BondDistance
	}
	if !(cfg.BondScale > 0) || !isFinite(cfg.BondScale) {
		cfg.BondScale = def.BondScale
	}
	if cfg.BondRate < 0 || !isFinite(cfg.BondRate) {
		cfg.BondRate = def.BondRate
	}
	if cfg.SeparationRate < 0 || !isFinite(cfg.SeparationRate) {
		cfg.SeparationRate = def.SeparationRate
	}
	if cfg.StressRate < 0 || !isFinite(cfg.StressRate) {
		cfg.StressRate = def.StressRate
	}
	return &Engine{cfg: cfg}
}

// Closeness maps distance to [0, 1] through a logistic curve centered
// at the bond distance. Negative or non-finite distances clamp to safe
// values instead of propagating.
func (g *Engine) Closeness(distance float64) float64 {
	if math.IsNaN(distance) || distance < 0 {
		distance = 0
	}
	if math.IsInf(distance, 1) {
		return 0
	}
	return 1 / (1 + math.Exp((distance-g.cfg.BondDistance)/g.cfg.BondScale))
}

// Update computes one resonance sample from both companions' positions
// and stats. The caller integrates Change into its resonance value.
func (g *Engine) Update(posA, posB entity.Vec2, statsA, statsB entity.Stats, current float64, deltaMs float64) Sample {
	current = entity.ClampStat(current)
	if math.IsNaN(deltaMs) || math.IsInf(deltaMs, 0) || deltaMs < 0 {
		deltaMs = 0
	}
	statsA.Clamp()
	statsB.Clamp()

	closeness := g.Closeness(sanitizeDistance(posA, posB))

	moodA := statsA.WellbeingAverage()
	moodB := statsB.WellbeingAverage()
	moodBonus := (moodA + moodB) / 2 / 100
	synergy := math.Max(0, 1-math.Abs(moodA-moodB)/100)

	level := current / 100
	gain := g.cfg.BondRate * closeness * moodBonus * synergy * (1 - level)
	separation := g.cfg.SeparationRate * (1 - closeness) * level
	stress := g.cfg.StressRate * float64(criticalCount(statsA, statsB)) * level

	change := round4((gain - separation - stress) * deltaMs / 1000)

	effect := EffectNeutral
	switch {
	case change > deadband:
		effect = EffectBonding
	case change < -deadband:
		effect = EffectSeparation
	}

	return Sample{Change: change, Effect: effect, Closeness: closeness}
}

// Integrate folds a sample's change into a resonance value, keeping it
// in [0, 100].
func Integrate(current, change float64) float64 {
	return entity.ClampStat(entity.ClampStat(current) + change)
}

// ModifiersFor derives the stat multipliers for the current bond.
func (g *Engine) ModifiersFor(resonance, closeness float64) Modifiers {
	resonance = entity.ClampStat(resonance)
	closeness = entity.Clamp01(closeness)
	effect := resonance / 100 * closeness
	return Modifiers{
		Happiness:         1 + effect*0.3,
		Energy:            1 + effect*0.2,
		Health:            1 + effect*0.15,
		LonelinessPenalty: 1 - effect*0.5,
	}
}

// Apply multiplies the modifiers into a stats snapshot and re-clamps.
func (m Modifiers) Apply(s *entity.Stats) {
	s.Happiness *= m.Happiness
	s.Energy *= m.Energy
	s.Health *= m.Health
	s.Loneliness *= m.LonelinessPenalty
	s.Clamp()
}

func criticalCount(a, b entity.Stats) int {
	return a.CriticalCount(criticalStatThreshold) + b.CriticalCount(criticalStatThreshold)
}

func sanitizeDistance(a, b entity.Vec2) float64 {
	d := a.DistanceTo(b)
	if math.IsNaN(d) || d < 0 {
		return 0
	}
	return d
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round4(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*10000) / 10000
}
