package emergence

import (
	"fmt"

	"github.com/stevenvo780/duetsim/internal/entity"
	"github.com/stevenvo780/duetsim/internal/world"
)

// DefaultTemplates returns the built-in pattern catalog, one or more
// templates of each pattern type.
func DefaultTemplates() []Template {
	return []Template{
		{
			ID:   "harmonious-coexistence",
			Name: "Harmonious Coexistence",
			Type: PatternSocial,
			Conditions: []Condition{
				ResonanceRange{Min: 60, Max: 100},
				NeedRange{Role: entity.RoleCircle, Stat: entity.StatHappiness, Min: 50, Max: 100},
				NeedRange{Role: entity.RoleSquare, Stat: entity.StatHappiness, Min: 50, Max: 100},
			},
			Triggers: []string{"sustained high resonance", "shared wellbeing"},
			Effects: []StatEffect{
				{Stat: entity.StatLoneliness, Delta: -2},
				{Stat: entity.StatHappiness, Delta: 1},
			},
		},
		{
			ID:   "nocturnal-drift",
			Name: "Nocturnal Drift",
			Type: PatternBehavioral,
			Conditions: []Condition{
				TimeOfDayIn{Phases: []world.Phase{world.PhaseNight}},
				NeedRange{Role: entity.RoleCircle, Stat: entity.StatSleepiness, Min: 55, Max: 100},
				NeedRange{Role: entity.RoleSquare, Stat: entity.StatSleepiness, Min: 55, Max: 100},
			},
			Triggers: []string{"night phase", "accumulated sleep pressure"},
			Effects: []StatEffect{
				{Stat: entity.StatEnergy, Delta: -1},
			},
		},
		{
			ID:   "shelter-seeking",
			Name: "Shelter Seeking",
			Type: PatternEnvironmental,
			Conditions: []Condition{
				WeatherIn{Tags: []world.Weather{world.WeatherRain, world.WeatherStorm}},
				ResonanceRange{Min: 20, Max: 100},
			},
			Triggers: []string{"bad weather", "established bond"},
			Effects: []StatEffect{
				{Stat: entity.StatLoneliness, Delta: -1},
				{Stat: entity.StatBoredom, Delta: 1.5},
			},
		},
		{
			ID:   "scarcity-spiral",
			Name: "Scarcity Spiral",
			Type: PatternSystemic,
			Conditions: []Condition{
				NeedRange{Role: entity.RoleCircle, Stat: entity.StatHunger, Min: 65, Max: 100},
				NeedRange{Role: entity.RoleSquare, Stat: entity.StatHunger, Min: 65, Max: 100},
				ResonanceRange{Min: 0, Max: 45},
			},
			Triggers: []string{"shared deprivation", "weakening bond"},
			Effects: []StatEffect{
				{Stat: entity.StatHappiness, Delta: -1.5},
			},
		},
		{
			// No explicit conditions: strength falls back to the
			// (complexity + coherence) / 2 rule, so this regime only
			// appears once the system is already structured.
			ID:       "mutual-regulation",
			Name:     "Mutual Regulation",
			Type:     PatternSystemic,
			Triggers: []string{"accumulated structure"},
			Effects: []StatEffect{
				{Stat: entity.StatHealth, Delta: 0.5},
			},
		},
	}
}

// DefaultLoops returns the built-in feedback loops.
func DefaultLoops() []*FeedbackLoop {
	return []*FeedbackLoop{
		{
			ID:       "bond-wellbeing",
			Type:     LoopPositive,
			Strength: 0.8,
			Elements: []string{"resonance", "happiness", "proximity"},
			When: func(s Snapshot, m Metrics) bool {
				return s.Resonance > 60 && m.Coherence > 0.5
			},
		},
		{
			ID:       "exhaustion-brake",
			Type:     LoopNegative,
			Strength: 0.7,
			Elements: []string{"energy", "activity level"},
			When: func(s Snapshot, m Metrics) bool {
				for _, e := range s.Entities {
					if !e.Dead && e.Stats.Energy < 30 {
						return true
					}
				}
				return false
			},
		},
		{
			ID:       "novelty-seeking",
			Type:     LoopPositive,
			Strength: 0.6,
			Elements: []string{"boredom", "exploration", "adaptability"},
			When: func(s Snapshot, m Metrics) bool {
				bored := false
				for _, e := range s.Entities {
					if !e.Dead && e.Stats.Boredom > 60 {
						bored = true
					}
				}
				return bored && m.Adaptability > 0.3
			},
		},
		{
			ID:       "isolation-decay",
			Type:     LoopNegative,
			Strength: 0.7,
			Elements: []string{"closeness", "resonance", "loneliness"},
			When: func(s Snapshot, m Metrics) bool {
				return s.Closeness < 0.2 && s.Resonance < 40
			},
		},
	}
}

// ValidateTemplates rejects catalogs the engine cannot evaluate safely:
// empty or duplicate ids, or effects against unknown stats.
func ValidateTemplates(templates []Template) error {
	seen := make(map[string]bool, len(templates))
	for _, t := range templates {
		if t.ID == "" {
			return fmt.Errorf("pattern template %q has no id", t.Name)
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate pattern template id %q", t.ID)
		}
		seen[t.ID] = true
		for _, e := range t.Effects {
			if !validStat(e.Stat) {
				return fmt.Errorf("template %q targets unknown stat %q", t.ID, e.Stat)
			}
		}
	}
	return nil
}
