package sim

import (
	"log/slog"
	"time"
)

// Engine drives the two-cadence loop in real time. The host pauses the
// simulation by withholding ticks (Speed = 0); there is no cancellation
// inside the kernel.
type Engine struct {
	Speed           float64 // multiplier: 1.0 = real time, 0 = paused
	LogicInterval   time.Duration
	MetricsInterval time.Duration
	Running         bool

	// Callbacks, populated during setup.
	OnLogic   func(now time.Time, dt time.Duration)
	OnMetrics func(now time.Time)
}

// NewEngine creates an engine with the given cadences.
func NewEngine(logic, metrics time.Duration) *Engine {
	if logic <= 0 {
		logic = 250 * time.Millisecond
	}
	if metrics <= 0 {
		metrics = 2 * time.Second
	}
	return &Engine{
		Speed:           1.0,
		LogicInterval:   logic,
		MetricsInterval: metrics,
	}
}

// Run starts the loop. Blocks until Stop is called.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("simulation loop started",
		"logic_interval", e.LogicInterval,
		"metrics_interval", e.MetricsInterval,
		"speed", e.Speed,
	)

	lastLogic := time.Now()
	lastMetrics := lastLogic

	for e.Running {
		if e.Speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			lastLogic = time.Now()
			lastMetrics = lastLogic
			continue
		}

		start := time.Now()

		// Elapsed sim time scales with speed; the simulation clamps
		// oversized deltas itself.
		dt := time.Duration(float64(start.Sub(lastLogic)) * e.Speed)
		lastLogic = start
		if e.OnLogic != nil {
			e.OnLogic(start, dt)
		}

		if start.Sub(lastMetrics) >= e.MetricsInterval && e.OnMetrics != nil {
			e.OnMetrics(start)
			lastMetrics = start
		}

		// Sleep out the remainder of the logic interval.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.LogicInterval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation loop stopped")
}

// Stop halts the loop after the current tick.
func (e *Engine) Stop() {
	e.Running = false
}
