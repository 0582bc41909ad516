package emergence

import (
	"math"

	"github.com/stevenvo780/duetsim/internal/entity"
	"github.com/stevenvo780/duetsim/internal/world"
)

// Metrics are the six system-wide scalars, each in [0, 1], updated by
// exponential smoothing every metrics interval.
type Metrics struct {
	Complexity     float64 `json:"complexity"`
	Coherence      float64 `json:"coherence"`
	Adaptability   float64 `json:"adaptability"`
	Sustainability float64 `json:"sustainability"`
	Entropy        float64 `json:"entropy"`
	Autopoiesis    float64 `json:"autopoiesis"`
}

const (
	// adaptabilityWindow is how many recent history samples feed the
	// rate-of-change measure.
	adaptabilityWindow = 5
	// nightComplexityBoost weights pattern counts up at night, when the
	// companions' routines diverge most.
	nightComplexityBoost = 1.25
	// maxGoodnessVariance is the variance of a worst-case half 0 / half
	// 1 goodness vector; normalizes entropy into [0, 1].
	maxGoodnessVariance = 0.25
)

// sampleMetrics computes raw (unsmoothed) metric samples from the
// current aggregate state.
func (g *Engine) sampleMetrics(s Snapshot) Metrics {
	var out Metrics

	// Complexity: how much structure is currently live.
	activeLoops := 0
	for _, l := range g.loops {
		if l.Active {
			activeLoops++
		}
	}
	complexity := 0.12*float64(len(g.active)) + 0.08*float64(activeLoops)
	if s.TimeOfDay == world.PhaseNight {
		complexity *= nightComplexityBoost
	}
	out.Complexity = entity.Clamp01(complexity)

	// Coherence tracks resonance directly.
	out.Coherence = entity.Clamp01(s.Resonance / 100)

	// Sustainability: mean needs satisfaction over living entities.
	// Entropy: mean per-entity need variance.
	living := 0
	satisfaction := 0.0
	variance := 0.0
	for _, e := range s.Entities {
		if e.Dead {
			continue
		}
		living++
		satisfaction += e.Stats.Satisfaction()
		variance += e.Stats.Variance()
	}
	if living > 0 {
		out.Sustainability = entity.Clamp01(satisfaction / float64(living))
		out.Entropy = entity.Clamp01(variance / float64(living) / maxGoodnessVariance)
	}

	// Adaptability: magnitude of recent metric movement.
	out.Adaptability = g.adaptabilitySample()

	// Autopoiesis: self-organization from systemic structure, order and
	// sustained adaptation.
	systemic := 0
	for _, p := range g.active {
		if p.Type == PatternSystemic {
			systemic++
		}
	}
	systemicRatio := math.Min(1, float64(systemic)/3)
	out.Autopoiesis = entity.Clamp01(
		0.4*systemicRatio + 0.3*(1-out.Entropy) + 0.3*out.Adaptability*out.Sustainability)

	return out
}

// adaptabilitySample measures mean absolute metric delta across the
// last few history samples, scaled into [0, 1].
func (g *Engine) adaptabilitySample() float64 {
	n := len(g.history)
	if n < 2 {
		return 0
	}
	start := n - adaptabilityWindow
	if start < 0 {
		start = 0
	}
	window := g.history[start:]

	total := 0.0
	steps := 0
	for i := 1; i < len(window); i++ {
		prev, cur := window[i-1], window[i]
		total += math.Abs(cur.Complexity-prev.Complexity) +
			math.Abs(cur.Coherence-prev.Coherence) +
			math.Abs(cur.Sustainability-prev.Sustainability) +
			math.Abs(cur.Entropy-prev.Entropy)
		steps++
	}
	if steps == 0 {
		return 0
	}
	// Four metric channels; a mean per-channel delta of 0.125 already
	// counts as fully adaptive.
	return entity.Clamp01(total / float64(steps) / 4 * 8)
}

// smooth blends a raw sample into the running metrics.
func smooth(old, sample Metrics, alpha float64) Metrics {
	keep := 1 - alpha
	return Metrics{
		Complexity:     old.Complexity*keep + sample.Complexity*alpha,
		Coherence:      old.Coherence*keep + sample.Coherence*alpha,
		Adaptability:   old.Adaptability*keep + sample.Adaptability*alpha,
		Sustainability: old.Sustainability*keep + sample.Sustainability*alpha,
		Entropy:        old.Entropy*keep + sample.Entropy*alpha,
		Autopoiesis:    old.Autopoiesis*keep + sample.Autopoiesis*alpha,
	}
}
