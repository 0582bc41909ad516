package entity

// StatName identifies one stat for generic lookups (pattern conditions,
// variance measures).
type StatName string

const (
	StatHunger     StatName = "hunger"
	StatSleepiness StatName = "sleepiness"
	StatLoneliness StatName = "loneliness"
	StatHappiness  StatName = "happiness"
	StatEnergy     StatName = "energy"
	StatBoredom    StatName = "boredom"
	StatMoney      StatName = "money"
	StatHealth     StatName = "health"
)

// StatNames lists every stat in declaration order.
var StatNames = []StatName{
	StatHunger, StatSleepiness, StatLoneliness, StatHappiness,
	StatEnergy, StatBoredom, StatMoney, StatHealth,
}

// Stats holds the eight bounded scalars, each in [0, 100]. Hunger,
// sleepiness, loneliness and boredom are pressures (high is bad); the
// rest are reserves (high is good).
type Stats struct {
	Hunger     float64 `json:"hunger"`
	Sleepiness float64 `json:"sleepiness"`
	Loneliness float64 `json:"loneliness"`
	Happiness  float64 `json:"happiness"`
	Energy     float64 `json:"energy"`
	Boredom    float64 `json:"boredom"`
	Money      float64 `json:"money"`
	Health     float64 `json:"health"`
}

// DefaultStats returns the moderate starting snapshot.
func DefaultStats() Stats {
	return Stats{
		Hunger:     30,
		Sleepiness: 20,
		Loneliness: 40,
		Happiness:  60,
		Energy:     70,
		Boredom:    30,
		Money:      50,
		Health:     90,
	}
}

// Value looks a stat up by name.
func (s Stats) Value(name StatName) (float64, bool) {
	switch name {
	case StatHunger:
		return s.Hunger, true
	case StatSleepiness:
		return s.Sleepiness, true
	case StatLoneliness:
		return s.Loneliness, true
	case StatHappiness:
		return s.Happiness, true
	case StatEnergy:
		return s.Energy, true
	case StatBoredom:
		return s.Boredom, true
	case StatMoney:
		return s.Money, true
	case StatHealth:
		return s.Health, true
	}
	return 0, false
}

// Add shifts one stat by delta, clamped to range. Unknown names are
// ignored.
func (s *Stats) Add(name StatName, delta float64) {
	switch name {
	case StatHunger:
		s.Hunger = ClampStat(s.Hunger + delta)
	case StatSleepiness:
		s.Sleepiness = ClampStat(s.Sleepiness + delta)
	case StatLoneliness:
		s.Loneliness = ClampStat(s.Loneliness + delta)
	case StatHappiness:
		s.Happiness = ClampStat(s.Happiness + delta)
	case StatEnergy:
		s.Energy = ClampStat(s.Energy + delta)
	case StatBoredom:
		s.Boredom = ClampStat(s.Boredom + delta)
	case StatMoney:
		s.Money = ClampStat(s.Money + delta)
	case StatHealth:
		s.Health = ClampStat(s.Health + delta)
	}
}

// Clamp forces every stat into [0, 100] and scrubs non-finite values.
func (s *Stats) Clamp() {
	s.Hunger = ClampStat(s.Hunger)
	s.Sleepiness = ClampStat(s.Sleepiness)
	s.Loneliness = ClampStat(s.Loneliness)
	s.Happiness = ClampStat(s.Happiness)
	s.Energy = ClampStat(s.Energy)
	s.Boredom = ClampStat(s.Boredom)
	s.Money = ClampStat(s.Money)
	s.Health = ClampStat(s.Health)
}

// WellbeingAverage is the mean of happiness, energy and health — the
// mood signal the resonance model bonds on.
func (s Stats) WellbeingAverage() float64 {
	return (s.Happiness + s.Energy + s.Health) / 3
}

// CriticalCount counts stats in a critical state relative to the given
// threshold: pressures above 100-threshold, reserves below threshold.
func (s Stats) CriticalCount(threshold float64) int {
	n := 0
	for _, g := range s.Goodness() {
		if g*100 < threshold {
			n++
		}
	}
	return n
}

// Goodness normalizes every stat to [0, 1] where 1 is "fully satisfied":
// pressures are inverted, reserves pass through.
func (s Stats) Goodness() [8]float64 {
	return [8]float64{
		(100 - s.Hunger) / 100,
		(100 - s.Sleepiness) / 100,
		(100 - s.Loneliness) / 100,
		s.Happiness / 100,
		s.Energy / 100,
		(100 - s.Boredom) / 100,
		s.Money / 100,
		s.Health / 100,
	}
}

// Satisfaction is the mean goodness across all stats, in [0, 1].
func (s Stats) Satisfaction() float64 {
	total := 0.0
	for _, g := range s.Goodness() {
		total += g
	}
	return total / 8
}

// Variance is the variance of the goodness values — a per-entity
// disorder measure used by the entropy metric.
func (s Stats) Variance() float64 {
	g := s.Goodness()
	mean := 0.0
	for _, v := range g {
		mean += v
	}
	mean /= float64(len(g))

	variance := 0.0
	for _, v := range g {
		d := v - mean
		variance += d * d
	}
	return variance / float64(len(g))
}
