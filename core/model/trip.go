package model

import (
	"errors"
	"fmt"
)

// ErrInvalidTrip is returned when a trip breaks the guarantees of the
// feature-extraction pipeline.
var ErrInvalidTrip = errors.New("invalid trip")

// TripFeatures carries trip-level metadata.
type TripFeatures struct {
	ID      string  `json:"id"`
	Driver  string  `json:"driver"`
	Vehicle Vehicle `json:"vehicle"`
	Start   Sample  `json:"start"`
}

// Trip is an ordered, chronological sequence of samples.
type Trip struct {
	Features TripFeatures `json:"features"`
	Samples  []Sample     `json:"samples"`
}

// NewTrip builds a trip whose start sample is the first of samples.
func NewTrip(id, driver string, v Vehicle, samples []Sample) Trip {
	tf := TripFeatures{ID: id, Driver: driver, Vehicle: v}
	if len(samples) > 0 {
		tf.Start = samples[0]
	}
	return Trip{Features: tf, Samples: samples}
}

// Len returns the number of samples.
func (t Trip) Len() int { return len(t.Samples) }

// Validate checks ordering and period guarantees.
func (t Trip) Validate() error {
	if len(t.Samples) == 0 {
		return fmt.Errorf("%w: trip %q has no samples", ErrInvalidTrip, t.Features.ID)
	}
	for i, s := range t.Samples {
		if s.PeriodMS <= 0 {
			return fmt.Errorf("%w: trip %q sample %d has period %d ms", ErrInvalidTrip, t.Features.ID, i, s.PeriodMS)
		}
		if i > 0 && !s.Time.IsZero() && s.Time.Before(t.Samples[i-1].Time) {
			return fmt.Errorf("%w: trip %q sample %d is out of order", ErrInvalidTrip, t.Features.ID, i)
		}
	}
	return nil
}

// PlanarDistance returns the total distance travelled in metres.
func (t Trip) PlanarDistance() float64 {
	var d float64
	for _, s := range t.Samples {
		d += s.PlanarDistance
	}
	return d
}

// MaxAbsAcceleration returns the largest acceleration magnitude in the trip.
func (t Trip) MaxAbsAcceleration() float64 {
	var m float64
	for _, s := range t.Samples {
		a := s.Acceleration
		if a < 0 {
			a = -a
		}
		if a > m {
			m = a
		}
	}
	return m
}

// DurationMS returns the summed sample periods.
func (t Trip) DurationMS() int {
	var d int
	for _, s := range t.Samples {
		d += s.PeriodMS
	}
	return d
}
