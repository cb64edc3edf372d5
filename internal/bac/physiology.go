package bac

import "math"

// Physiology holds the Widmark coefficients for one drinker.
type Physiology struct {
	BodyWeightKg                   float64 `json:"body_weight_kg" yaml:"body_weight_kg"`
	DistributionFactor             float64 `json:"distribution_factor" yaml:"distribution_factor"`
	EliminationRatePermillePerHour float64 `json:"elimination_rate_permille_per_hour" yaml:"elimination_rate_permille_per_hour"`
}

// DefaultPhysiology is the reference drinker: 75 kg, r=0.68, 0.15‰/h.
func DefaultPhysiology() Physiology {
	return Physiology{
		BodyWeightKg:                   75,
		DistributionFactor:             0.68,
		EliminationRatePermillePerHour: 0.15,
	}
}

// WithDefaults fills zero fields from DefaultPhysiology.
func (p Physiology) WithDefaults() Physiology {
	d := DefaultPhysiology()
	if p.BodyWeightKg == 0 {
		p.BodyWeightKg = d.BodyWeightKg
	}
	if p.DistributionFactor == 0 {
		p.DistributionFactor = d.DistributionFactor
	}
	if p.EliminationRatePermillePerHour == 0 {
		p.EliminationRatePermillePerHour = d.EliminationRatePermillePerHour
	}
	return p
}

func (p Physiology) Validate() error {
	if !(p.BodyWeightKg > 0) || math.IsInf(p.BodyWeightKg, 0) {
		return invalid("body_weight_kg", "must be positive, got %v", p.BodyWeightKg)
	}
	if !(p.DistributionFactor > 0) || p.DistributionFactor > 1 {
		return invalid("distribution_factor", "must be in (0,1], got %v", p.DistributionFactor)
	}
	if !(p.EliminationRatePermillePerHour > 0) || math.IsInf(p.EliminationRatePermillePerHour, 0) {
		return invalid("elimination_rate_permille_per_hour", "must be positive, got %v", p.EliminationRatePermillePerHour)
	}
	return nil
}

// PeakBAC is the Widmark peak in permille for the given alcohol mass.
func (p Physiology) PeakBAC(alcoholGrams float64) float64 {
	return (alcoholGrams / (p.BodyWeightKg * p.DistributionFactor)) * 10
}

// Eliminated is the permille metabolised after the given minutes.
func (p Physiology) Eliminated(minutes float64) float64 {
	return (minutes / 60) * p.EliminationRatePermillePerHour
}

// Contribution is one drink's residual BAC after the elapsed minutes,
// floored at zero.
func (p Physiology) Contribution(alcoholGrams, minutesElapsed float64) float64 {
	return math.Max(0, p.PeakBAC(alcoholGrams)-p.Eliminated(minutesElapsed))
}
