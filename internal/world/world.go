// Package world supplies the host-environment collaborators the kernel
// consumes but does not own: the time-of-day phase and a weather tag.
// Weather is driven by seeded noise so runs are reproducible.
package world

import (
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Phase is the time-of-day band.
type Phase string

const (
	PhaseDawn  Phase = "dawn"
	PhaseDay   Phase = "day"
	PhaseDusk  Phase = "dusk"
	PhaseNight Phase = "night"
)

// Weather tags current conditions.
type Weather string

const (
	WeatherClear Weather = "clear"
	WeatherFog   Weather = "fog"
	WeatherRain  Weather = "rain"
	WeatherStorm Weather = "storm"
)

// Clock maps wall time onto compressed sim days.
type Clock struct {
	Start     time.Time
	DayLength time.Duration
}

// NewClock creates a clock. A non-positive day length defaults to ten
// minutes per sim day.
func NewClock(start time.Time, dayLength time.Duration) Clock {
	if dayLength <= 0 {
		dayLength = 10 * time.Minute
	}
	return Clock{Start: start, DayLength: dayLength}
}

// Phase returns the time-of-day band at the given instant.
func (c Clock) Phase(now time.Time) Phase {
	elapsed := now.Sub(c.Start)
	if elapsed < 0 {
		elapsed = 0
	}
	frac := float64(elapsed%c.DayLength) / float64(c.DayLength)
	switch {
	case frac < 0.10:
		return PhaseDawn
	case frac < 0.55:
		return PhaseDay
	case frac < 0.65:
		return PhaseDusk
	default:
		return PhaseNight
	}
}

// DayFraction returns how far through the current sim day now is, in
// [0, 1).
func (c Clock) DayFraction(now time.Time) float64 {
	elapsed := now.Sub(c.Start)
	if elapsed < 0 {
		elapsed = 0
	}
	return float64(elapsed%c.DayLength) / float64(c.DayLength)
}

// WeatherProvider generates a slowly drifting weather tag from seeded
// simplex noise. Bands are ordered so clear skies dominate.
type WeatherProvider struct {
	noise opensimplex.Noise
	start time.Time
}

// NewWeatherProvider creates a provider for the given seed.
func NewWeatherProvider(seed int64, start time.Time) *WeatherProvider {
	return &WeatherProvider{
		noise: opensimplex.NewNormalized(seed),
		start: start,
	}
}

// Current returns the weather tag at the given instant. The noise is
// sampled on a minutes axis so conditions persist for a while instead
// of flickering tick to tick.
func (w *WeatherProvider) Current(now time.Time) Weather {
	minutes := now.Sub(w.start).Minutes()
	v := w.noise.Eval2(minutes/15, 0.5)
	switch {
	case v < 0.55:
		return WeatherClear
	case v < 0.70:
		return WeatherFog
	case v < 0.88:
		return WeatherRain
	default:
		return WeatherStorm
	}
}
