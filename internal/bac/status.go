package bac

// SobrietyStatus buckets a BAC value for display.
type SobrietyStatus string

const (
	StatusSober    SobrietyStatus = "sober"
	StatusLight    SobrietyStatus = "light"
	StatusModerate SobrietyStatus = "moderate"
	StatusHigh     SobrietyStatus = "high"
)

// StatusThreshold maps values strictly below Below to Status. A zero Below
// is the catch-all.
type StatusThreshold struct {
	Status SobrietyStatus `yaml:"status"`
	Below  float64        `yaml:"below"`
}

var defaultThresholds = []StatusThreshold{
	{Status: StatusLight, Below: 0.5},
	{Status: StatusModerate, Below: 1.0},
	{Status: StatusHigh},
}

// Classify returns sober at or below zero, then the first matching threshold.
func Classify(bac float64, thresholds []StatusThreshold) SobrietyStatus {
	if bac <= 0 {
		return StatusSober
	}
	if len(thresholds) == 0 {
		thresholds = defaultThresholds
	}
	for _, t := range thresholds {
		if t.Below == 0 || bac < t.Below {
			return t.Status
		}
	}
	return StatusHigh
}
