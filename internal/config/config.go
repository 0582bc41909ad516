// Package config loads and validates the simulation configuration from
// YAML, providing defaults for every recognized option.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stevenvo780/duetsim/internal/decision"
	"github.com/stevenvo780/duetsim/internal/emergence"
	"github.com/stevenvo780/duetsim/internal/entity"
	"github.com/stevenvo780/duetsim/internal/resonance"
)

// Config is the full configuration surface. Durations are expressed in
// milliseconds in the file.
type Config struct {
	Seed int64 `yaml:"seed"`

	Tick      TickConfig              `yaml:"tick"`
	Decision  DecisionConfig          `yaml:"decision"`
	Resonance resonance.Config        `yaml:"resonance"`
	Emergence EmergenceConfig         `yaml:"emergence"`
	Entities  map[string]EntityConfig `yaml:"entities"`

	API       APIConfig       `yaml:"api"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// TickConfig drives the two-cadence loop.
type TickConfig struct {
	LogicIntervalMs   int `yaml:"logic_interval_ms"`
	MetricsIntervalMs int `yaml:"metrics_interval_ms"`
	// MaxStepMs clamps a lagged tick's elapsed time before it reaches
	// the per-second rate math.
	MaxStepMs   int `yaml:"max_step_ms"`
	DayLengthMs int `yaml:"day_length_ms"`
}

// DecisionConfig mirrors decision.Config in file-friendly units.
type DecisionConfig struct {
	PersonalityInfluence  float64 `yaml:"personality_influence"`
	Temperature           float64 `yaml:"temperature"`
	ChangeThreshold       float64 `yaml:"change_threshold"`
	InertiaBonus          float64 `yaml:"inertia_bonus"`
	BaseSessionDurationMs int     `yaml:"base_session_duration_ms"`
}

// EmergenceConfig mirrors emergence.Config in file-friendly units.
type EmergenceConfig struct {
	PatternIntervalMs   int     `yaml:"pattern_interval_ms"`
	MetricsIntervalMs   int     `yaml:"metrics_interval_ms"`
	DetectionThreshold  float64 `yaml:"detection_threshold"`
	PersistenceWindowMs int     `yaml:"persistence_window_ms"`
	Smoothing           float64 `yaml:"smoothing"`
	HistorySize         int     `yaml:"history_size"`
}

// EntityConfig names one companion and fixes its personality.
type EntityConfig struct {
	Name        string             `yaml:"name"`
	Personality entity.Personality `yaml:"personality"`
}

// APIConfig controls the observation HTTP server.
type APIConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// TelemetryConfig controls the append-only SQLite log.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	dec := decision.DefaultConfig()
	eme := emergence.DefaultConfig()
	return &Config{
		Seed: 0, // 0 = seed from system entropy
		Tick: TickConfig{
			LogicIntervalMs:   250,
			MetricsIntervalMs: 2000,
			MaxStepMs:         1000,
			DayLengthMs:       int((10 * time.Minute).Milliseconds()),
		},
		Decision: DecisionConfig{
			PersonalityInfluence:  dec.PersonalityInfluence,
			Temperature:           dec.Temperature,
			ChangeThreshold:       dec.ChangeThreshold,
			InertiaBonus:          dec.InertiaBonus,
			BaseSessionDurationMs: int(dec.BaseSessionDuration.Milliseconds()),
		},
		Resonance: resonance.DefaultConfig(),
		Emergence: EmergenceConfig{
			PatternIntervalMs:   int(eme.PatternInterval.Milliseconds()),
			MetricsIntervalMs:   int(eme.MetricsInterval.Milliseconds()),
			DetectionThreshold:  eme.DetectionThreshold,
			PersistenceWindowMs: int(eme.PersistenceWindow.Milliseconds()),
			Smoothing:           eme.Smoothing,
			HistorySize:         eme.HistorySize,
		},
		Entities: map[string]EntityConfig{
			"circle": {
				Name: "Isa",
				Personality: entity.Personality{
					SocialPreference:    0.8,
					ActivityPersistence: 0.3,
					RiskTolerance:       0.6,
					EnergyEfficiency:    0.4,
				},
			},
			"square": {
				Name: "Stev",
				Personality: entity.Personality{
					SocialPreference:    0.4,
					ActivityPersistence: 0.7,
					RiskTolerance:       0.3,
					EnergyEfficiency:    0.7,
				},
			},
		},
		API:       APIConfig{Enabled: true, Port: 8080},
		Telemetry: TelemetryConfig{Enabled: false, Path: "data/duetsim.db"},
	}
}

// Load reads a YAML file over the defaults. Unset fields keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the kernel cannot run with.
func (c *Config) Validate() error {
	if c.Tick.LogicIntervalMs <= 0 {
		return fmt.Errorf("tick.logic_interval_ms must be positive")
	}
	if c.Tick.MetricsIntervalMs <= 0 {
		return fmt.Errorf("tick.metrics_interval_ms must be positive")
	}
	if c.Tick.MaxStepMs <= 0 {
		return fmt.Errorf("tick.max_step_ms must be positive")
	}
	if c.Decision.Temperature < 0 {
		return fmt.Errorf("decision.temperature must not be negative")
	}
	if c.Decision.PersonalityInfluence < 0 || c.Decision.PersonalityInfluence > 1 {
		return fmt.Errorf("decision.personality_influence must be in [0, 1]")
	}
	if t := c.Emergence.DetectionThreshold; !(t > 0 && t <= 1) {
		return fmt.Errorf("emergence.detection_threshold must be in (0, 1]")
	}
	if s := c.Emergence.Smoothing; !(s > 0 && s <= 1) {
		return fmt.Errorf("emergence.smoothing must be in (0, 1]")
	}
	for _, role := range []string{"circle", "square"} {
		ec, ok := c.Entities[role]
		if !ok {
			return fmt.Errorf("entities.%s is required", role)
		}
		if ec.Name == "" {
			return fmt.Errorf("entities.%s.name is required", role)
		}
		for _, trait := range []float64{
			ec.Personality.SocialPreference,
			ec.Personality.ActivityPersistence,
			ec.Personality.RiskTolerance,
			ec.Personality.EnergyEfficiency,
		} {
			if trait < 0 || trait > 1 {
				return fmt.Errorf("entities.%s personality traits must be in [0, 1]", role)
			}
		}
	}
	if c.API.Enabled && (c.API.Port <= 0 || c.API.Port > 65535) {
		return fmt.Errorf("api.port must be a valid port")
	}
	if c.Telemetry.Enabled && c.Telemetry.Path == "" {
		return fmt.Errorf("telemetry.path is required when telemetry is enabled")
	}
	return nil
}

// DecisionConfig converts to the decision engine's native config.
func (c *Config) DecisionConfig() decision.Config {
	return decision.Config{
		PersonalityInfluence: c.Decision.PersonalityInfluence,
		Temperature:          c.Decision.Temperature,
		ChangeThreshold:      c.Decision.ChangeThreshold,
		InertiaBonus:         c.Decision.InertiaBonus,
		BaseSessionDuration:  time.Duration(c.Decision.BaseSessionDurationMs) * time.Millisecond,
	}
}

// EmergenceConfig converts to the emergence engine's native config.
func (c *Config) EmergenceConfig() emergence.Config {
	return emergence.Config{
		PatternInterval:    time.Duration(c.Emergence.PatternIntervalMs) * time.Millisecond,
		MetricsInterval:    time.Duration(c.Emergence.MetricsIntervalMs) * time.Millisecond,
		DetectionThreshold: c.Emergence.DetectionThreshold,
		PersistenceWindow:  time.Duration(c.Emergence.PersistenceWindowMs) * time.Millisecond,
		Smoothing:          c.Emergence.Smoothing,
		HistorySize:        c.Emergence.HistorySize,
	}
}

// LogicInterval returns the fast tick cadence.
func (c *Config) LogicInterval() time.Duration {
	return time.Duration(c.Tick.LogicIntervalMs) * time.Millisecond
}

// MetricsInterval returns the slow tick cadence.
func (c *Config) MetricsInterval() time.Duration {
	return time.Duration(c.Tick.MetricsIntervalMs) * time.Millisecond
}

// MaxStep returns the lag clamp for one logic step.
func (c *Config) MaxStep() time.Duration {
	return time.Duration(c.Tick.MaxStepMs) * time.Millisecond
}

// DayLength returns the sim-day length.
func (c *Config) DayLength() time.Duration {
	return time.Duration(c.Tick.DayLengthMs) * time.Millisecond
}
