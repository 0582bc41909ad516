// Package sim sequences the kernel each tick: needs decay, decisions,
// resonance, and (on its own cadence) emergence. There is exactly one
// logical writer; no locks are needed.
package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/stevenvo780/duetsim/internal/config"
	"github.com/stevenvo780/duetsim/internal/decision"
	"github.com/stevenvo780/duetsim/internal/emergence"
	"github.com/stevenvo780/duetsim/internal/entity"
	"github.com/stevenvo780/duetsim/internal/entropy"
	"github.com/stevenvo780/duetsim/internal/needs"
	"github.com/stevenvo780/duetsim/internal/resonance"
	"github.com/stevenvo780/duetsim/internal/telemetry"
	"github.com/stevenvo780/duetsim/internal/world"
)

// Event is a notable occurrence, kept in a bounded ring for the API.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "activity", "bond", "pattern", "death"
}

// maxEvents caps the event ring.
const maxEvents = 500

// Simulation holds the two companions and wires the kernel engines
// together.
type Simulation struct {
	Circle *entity.Entity
	Square *entity.Entity

	needs     needs.Provider
	decider   *decision.Engine
	states    map[entity.Role]*decision.State
	bond      *resonance.Engine
	emergence *emergence.Engine

	clock   world.Clock
	weather *world.WeatherProvider
	walker  *Walker
	rec     *telemetry.DB
	log     *slog.Logger

	maxStep time.Duration

	Tick        uint64
	Events      []Event
	LastSample  resonance.Sample
	lastWeather world.Weather
	started     time.Time
}

// New builds a simulation from configuration. rec may be nil (telemetry
// disabled).
func New(cfg *config.Config, rng entropy.Source, rec *telemetry.DB, log *slog.Logger) *Simulation {
	if log == nil {
		log = slog.Default()
	}
	now := time.Now()

	circleCfg := cfg.Entities["circle"]
	squareCfg := cfg.Entities["square"]
	circle := entity.New(entity.RoleCircle, circleCfg.Name, circleCfg.Personality, now)
	square := entity.New(entity.RoleSquare, squareCfg.Name, squareCfg.Personality, now)
	circle.Position = entity.Vec2{X: 400, Y: 500}
	square.Position = entity.Vec2{X: 600, Y: 500}

	model := needs.NewModel()
	s := &Simulation{
		Circle:  circle,
		Square:  square,
		needs:   model,
		decider: decision.NewEngine(cfg.DecisionConfig(), model, rng, log),
		states: map[entity.Role]*decision.State{
			entity.RoleCircle: decision.NewState(),
			entity.RoleSquare: decision.NewState(),
		},
		bond: resonance.NewEngine(cfg.Resonance),
		emergence: emergence.NewEngine(
			cfg.EmergenceConfig(),
			emergence.DefaultTemplates(),
			emergence.DefaultLoops(),
			log,
		),
		clock:       world.NewClock(now, cfg.DayLength()),
		weather:     world.NewWeatherProvider(cfg.Seed, now),
		walker:      NewWalker(rng),
		rec:         rec,
		log:         log,
		maxStep:     cfg.MaxStep(),
		lastWeather: world.WeatherClear,
		started:     now,
	}
	return s
}

// Entities returns both companions, circle first.
func (s *Simulation) Entities() []*entity.Entity {
	return []*entity.Entity{s.Circle, s.Square}
}

// Started returns when the simulation was created.
func (s *Simulation) Started() time.Time { return s.started }

// Emergence exposes the emergence engine for observation.
func (s *Simulation) Emergence() *emergence.Engine { return s.emergence }

// Clock exposes the sim clock.
func (s *Simulation) Clock() world.Clock { return s.clock }

// Weather returns the current weather tag.
func (s *Simulation) Weather() world.Weather { return s.lastWeather }

// SessionFor returns the open activity session for a role, nil before
// the first decision.
func (s *Simulation) SessionFor(role entity.Role) *decision.Session {
	if st, ok := s.states[role]; ok {
		return st.Session
	}
	return nil
}

// TickLogic advances the fast cadence by dt. A lagged dt is sub-stepped
// in bounded chunks, capped at three max steps total, so per-second
// rates never see a runaway delta.
func (s *Simulation) TickLogic(now time.Time, dt time.Duration) {
	s.Tick++
	if dt <= 0 {
		return
	}
	if limit := 3 * s.maxStep; dt > limit {
		s.log.Debug("clamping lagged tick", "elapsed", dt, "clamped_to", limit)
		dt = limit
	}
	for dt > 0 {
		step := dt
		if step > s.maxStep {
			step = s.maxStep
		}
		s.step(now, step)
		dt -= step
	}
}

// step runs one bounded logic step: needs → decision → resonance.
func (s *Simulation) step(now time.Time, dt time.Duration) {
	// Host harness: move the companions. In an embedding host this is
	// where externally supplied positions arrive instead.
	s.walker.Move(s.Circle, s.Square, dt)

	// Weather shifts interrupt running sessions.
	if w := s.weather.Current(now); w != s.lastWeather {
		if w == world.WeatherStorm {
			for _, st := range s.states {
				st.RecordInterruption()
			}
			s.emit("a storm rolls in", "weather")
		}
		s.lastWeather = w
	}

	for _, e := range s.Entities() {
		if e.Dead {
			continue
		}
		s.needs.Apply(e, dt)
		if e.Dead {
			s.emit(fmt.Sprintf("%s has died", e.Name), "death")
			s.log.Info("entity died", "entity", e.Role.String(), "name", e.Name)
			continue
		}

		st := s.states[e.Role]
		s.decider.RefreshSession(e, st)

		before := e.Activity
		companion := s.companionOf(e)
		s.decider.Decide(e, st, companion, now)
		if e.Activity != before {
			s.rec.RecordSwitch(s.Tick, e.Role.String(), before.String(), e.Activity.String())
			s.emit(fmt.Sprintf("%s switched from %s to %s", e.Name, before, e.Activity), "activity")
		}
	}

	s.updateResonance(dt)
}

// updateResonance runs the bonding model and pushes its multipliers
// back into both companions' stats.
func (s *Simulation) updateResonance(dt time.Duration) {
	prev := s.LastSample.Effect
	sample := s.bond.Update(
		s.Circle.Position, s.Square.Position,
		s.Circle.Stats, s.Square.Stats,
		s.Circle.Resonance,
		float64(dt.Milliseconds()),
	)

	value := resonance.Integrate(s.Circle.Resonance, sample.Change)
	s.Circle.Resonance = value
	s.Square.Resonance = value

	mods := s.bond.ModifiersFor(value, sample.Closeness)
	for _, e := range s.Entities() {
		if !e.Dead {
			mods.Apply(&e.Stats)
		}
	}

	s.LastSample = sample
	if sample.Effect != prev && sample.Effect != resonance.EffectNeutral {
		s.emit(fmt.Sprintf("bond shifts: %s (resonance %.1f)", sample.Effect, value), "bond")
		s.rec.RecordResonance(s.Tick, value, sample.Closeness, string(sample.Effect))
	}
}

// TickMetrics advances the slow cadence: emergence evaluation, pattern
// feedback into needs, and telemetry.
func (s *Simulation) TickMetrics(now time.Time) {
	snap := s.snapshot(now)

	before := activePatternIDs(s.emergence.ActivePatterns())
	s.emergence.Update(snap, now)
	after := s.emergence.ActivePatterns()

	// Pattern feedback: active regimes nudge the needs they touch.
	for _, eff := range s.emergence.ActiveEffects() {
		for _, e := range s.Entities() {
			if !e.Dead {
				e.Stats.Add(eff.Stat, eff.Delta)
			}
		}
	}

	for _, p := range after {
		if !before[p.TemplateID] {
			s.emit(fmt.Sprintf("pattern emerges: %s", p.Name), "pattern")
			s.rec.RecordPatternEvent(s.Tick, p.Name, string(p.Type), p.Strength, "detected")
		}
	}

	s.rec.RecordMetrics(s.Tick, s.emergence.Metrics())
}

// snapshot assembles the aggregate state the emergence engine sees.
func (s *Simulation) snapshot(now time.Time) emergence.Snapshot {
	snap := emergence.Snapshot{
		Resonance: s.Circle.Resonance,
		Closeness: s.LastSample.Closeness,
		TimeOfDay: s.clock.Phase(now),
		Weather:   s.lastWeather,
	}
	for _, e := range s.Entities() {
		snap.Entities = append(snap.Entities, emergence.EntityState{
			Role:     e.Role,
			Stats:    e.Stats,
			Activity: e.Activity,
			Mood:     e.Mood,
			Dead:     e.Dead,
		})
	}
	return snap
}

func (s *Simulation) companionOf(e *entity.Entity) *entity.Entity {
	if e.Role == entity.RoleCircle {
		return s.Square
	}
	return s.Circle
}

func (s *Simulation) emit(desc, category string) {
	s.Events = append(s.Events, Event{Tick: s.Tick, Description: desc, Category: category})
	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
}

func activePatternIDs(patterns []emergence.Pattern) map[string]bool {
	out := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		out[p.TemplateID] = true
	}
	return out
}
