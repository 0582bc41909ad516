package emergence

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/stevenvo780/duetsim/internal/entity"
)

// Config holds the emergence engine's tunables.
type Config struct {
	// PatternInterval gates how often templates are re-evaluated.
	PatternInterval time.Duration
	// MetricsInterval gates how often the metrics smooth in a sample.
	MetricsInterval time.Duration
	// DetectionThreshold is the strength a template must reach to spawn
	// (or keep) a live pattern.
	DetectionThreshold float64
	// PersistenceWindow is how long a live pattern may sit below the
	// threshold before it is dropped.
	PersistenceWindow time.Duration
	// Smoothing is the metrics EMA alpha.
	Smoothing float64
	// HistorySize caps the metrics history ring.
	HistorySize int
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		PatternInterval:    2 * time.Second,
		MetricsInterval:    5 * time.Second,
		DetectionThreshold: 0.6,
		PersistenceWindow:  30 * time.Second,
		Smoothing:          0.1,
		HistorySize:        120,
	}
}

// Engine evaluates the template catalog and feedback loops against
// snapshots and maintains the smoothed system metrics.
type Engine struct {
	cfg       Config
	templates []Template
	loops     []*FeedbackLoop

	active  map[string]*Pattern // template ID → live instance
	metrics Metrics
	history []Metrics

	lastPatternCheck time.Time
	lastMetrics      time.Time
	log              *slog.Logger
}

// NewEngine builds an engine over the given catalog. Invalid config
// values fall back to defaults.
func NewEngine(cfg Config, templates []Template, loops []*FeedbackLoop, log *slog.Logger) *Engine {
	def := DefaultConfig()
	if cfg.PatternInterval <= 0 {
		cfg.PatternInterval = def.PatternInterval
	}
	if cfg.MetricsInterval <= 0 {
		cfg.MetricsInterval = def.MetricsInterval
	}
	if !(cfg.DetectionThreshold > 0 && cfg.DetectionThreshold <= 1) {
		cfg.DetectionThreshold = def.DetectionThreshold
	}
	if cfg.PersistenceWindow <= 0 {
		cfg.PersistenceWindow = def.PersistenceWindow
	}
	if !(cfg.Smoothing > 0 && cfg.Smoothing <= 1) {
		cfg.Smoothing = def.Smoothing
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = def.HistorySize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		cfg:       cfg,
		templates: templates,
		loops:     loops,
		active:    make(map[string]*Pattern),
		log:       log,
	}
}

// Update runs the periodic evaluations that are due at now. Safe to
// call every metrics tick; each layer gates itself on its own interval.
func (g *Engine) Update(s Snapshot, now time.Time) {
	if now.Sub(g.lastPatternCheck) >= g.cfg.PatternInterval || g.lastPatternCheck.IsZero() {
		elapsed := now.Sub(g.lastPatternCheck)
		if g.lastPatternCheck.IsZero() {
			elapsed = 0
		}
		g.checkPatterns(s, now, elapsed)
		g.updateLoops(s, now)
		g.lastPatternCheck = now
	}

	if now.Sub(g.lastMetrics) >= g.cfg.MetricsInterval || g.lastMetrics.IsZero() {
		g.updateMetrics(s)
		g.lastMetrics = now
	}
}

// checkPatterns advances the per-template state machine. Each template
// is evaluated independently; a bad template (empty ID, duplicate) is
// skipped with a log line rather than aborting the pass.
func (g *Engine) checkPatterns(s Snapshot, now time.Time, elapsed time.Duration) {
	seen := make(map[string]bool, len(g.templates))
	for _, t := range g.templates {
		if t.ID == "" || seen[t.ID] {
			g.log.Warn("skipping invalid pattern template", "id", t.ID, "name", t.Name)
			continue
		}
		seen[t.ID] = true

		strength := t.strength(s, g.metrics)
		inst := g.active[t.ID]

		if inst == nil {
			if strength >= g.cfg.DetectionThreshold {
				g.active[t.ID] = &Pattern{
					ID:         uuid.NewString(),
					TemplateID: t.ID,
					Name:       t.Name,
					Type:       t.Type,
					Strength:   strength,
					DetectedAt: now,
				}
				g.log.Info("pattern detected",
					"pattern", t.Name, "type", string(t.Type), "strength", strength)
			}
			continue
		}

		// Reinforce: smooth strength by simple average with the new
		// sample.
		inst.Strength = (inst.Strength + strength) / 2

		if strength >= g.cfg.DetectionThreshold {
			inst.Duration += elapsed
			inst.belowSince = time.Time{}
			continue
		}
		if inst.belowSince.IsZero() {
			inst.belowSince = now
		} else if now.Sub(inst.belowSince) > g.cfg.PersistenceWindow {
			delete(g.active, t.ID)
			g.log.Info("pattern dissolved",
				"pattern", t.Name, "held_for", inst.Duration)
		}
	}
}

// updateLoops flips each loop's active flag to follow its predicate.
func (g *Engine) updateLoops(s Snapshot, now time.Time) {
	for _, l := range g.loops {
		if l == nil || l.When == nil {
			continue
		}
		active := l.When(s, g.metrics)
		if active && !l.Active {
			l.LastActivation = now
			g.log.Debug("feedback loop activated", "loop", l.ID, "type", string(l.Type))
		}
		l.Active = active
	}
}

// updateMetrics smooths in one sample and appends it to the bounded
// history.
func (g *Engine) updateMetrics(s Snapshot) {
	sample := g.sampleMetrics(s)
	g.metrics = smooth(g.metrics, sample, g.cfg.Smoothing)

	g.history = append(g.history, g.metrics)
	if len(g.history) > g.cfg.HistorySize {
		g.history = g.history[len(g.history)-g.cfg.HistorySize:]
	}
}

// Metrics returns the current smoothed metrics.
func (g *Engine) Metrics() Metrics { return g.metrics }

// History returns a copy of the metrics history, oldest first.
func (g *Engine) History() []Metrics {
	out := make([]Metrics, len(g.history))
	copy(out, g.history)
	return out
}

// ActivePatterns returns the live patterns sorted by strength,
// strongest first.
func (g *Engine) ActivePatterns() []Pattern {
	out := make([]Pattern, 0, len(g.active))
	for _, p := range g.active {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strength > out[j].Strength })
	return out
}

// ActiveLoops returns the currently active feedback loops.
func (g *Engine) ActiveLoops() []FeedbackLoop {
	out := make([]FeedbackLoop, 0, len(g.loops))
	for _, l := range g.loops {
		if l != nil && l.Active {
			out = append(out, *l)
		}
	}
	return out
}

// ActiveEffects collects the stat feedback of every live pattern,
// scaled by its current strength. The tick driver applies these to the
// entities, closing the emergence → needs loop.
func (g *Engine) ActiveEffects() []StatEffect {
	var out []StatEffect
	for _, t := range g.templates {
		inst := g.active[t.ID]
		if inst == nil {
			continue
		}
		for _, e := range t.Effects {
			out = append(out, StatEffect{Stat: e.Stat, Delta: e.Delta * inst.Strength})
		}
	}
	return out
}

// statName re-exported check helper for catalog validation.
func validStat(name entity.StatName) bool {
	for _, n := range entity.StatNames {
		if n == name {
			return true
		}
	}
	return false
}
