package bac

import (
	"math"
	"time"
)

const (
	// EthanolDensity is grams of ethanol per millilitre.
	EthanolDensity = 0.8
	// DefaultAlcoholPercentage is assumed when a drink carries no ABV.
	DefaultAlcoholPercentage = 5.0
)

// DrinkEvent is one consumed drink. Events are immutable facts; the engine
// never mutates the slices it is given.
type DrinkEvent struct {
	ID                string
	UserID            string
	UserName          string
	VolumeMilliliters float64
	AlcoholPercentage float64
	OccurredAt        time.Time
	Type              string
	PurchaseID        string
}

// ABV returns the alcohol percentage, substituting the default when unknown.
func (e DrinkEvent) ABV() float64 {
	if e.AlcoholPercentage <= 0 {
		return DefaultAlcoholPercentage
	}
	return e.AlcoholPercentage
}

// AlcoholGrams is the ethanol mass of the drink.
func (e DrinkEvent) AlcoholGrams() float64 {
	return (e.VolumeMilliliters / 1000) * e.ABV() * EthanolDensity
}

func (e DrinkEvent) Liters() float64 {
	return e.VolumeMilliliters / 1000
}

func (e DrinkEvent) validate(idx int) error {
	if e.VolumeMilliliters < 0 || math.IsNaN(e.VolumeMilliliters) || math.IsInf(e.VolumeMilliliters, 0) {
		return invalid("events", "event %d has volume %v", idx, e.VolumeMilliliters)
	}
	if e.AlcoholPercentage < 0 || e.AlcoholPercentage > 100 || math.IsNaN(e.AlcoholPercentage) {
		return invalid("events", "event %d has alcohol percentage %v outside [0,100]", idx, e.AlcoholPercentage)
	}
	return nil
}

func validateEvents(events []DrinkEvent) error {
	for i := range events {
		if err := events[i].validate(i); err != nil {
			return err
		}
	}
	return nil
}

// User is a roster entry. The engine treats the roster as read-only.
type User struct {
	ID   string
	Name string
}

// round2 rounds to two decimals for display.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
