package simulation

import (
	"fmt"

	"github.com/kilianp07/powersplit/core/model"
)

// Skipped describes a trip the filter rejected.
type Skipped struct {
	TripID string `json:"trip_id"`
	Reason string `json:"reason"`
}

// Filter splits trips into those the run accepts and those it skips.
func (c Config) Filter(trips []model.Trip) ([]model.Trip, []Skipped) {
	kept := make([]model.Trip, 0, len(trips))
	var skipped []Skipped
	for _, t := range trips {
		if reason := c.rejects(t); reason != "" {
			skipped = append(skipped, Skipped{TripID: t.Features.ID, Reason: reason})
			continue
		}
		kept = append(kept, t)
	}
	return kept, skipped
}

func (c Config) rejects(t model.Trip) string {
	if err := t.Validate(); err != nil {
		return err.Error()
	}
	if n := t.Len(); n < c.MinTripSamples {
		return fmt.Sprintf("%d samples below minimum %d", n, c.MinTripSamples)
	}
	if n := t.Len(); c.MaxTripSamples > 0 && n > c.MaxTripSamples {
		return fmt.Sprintf("%d samples above maximum %d", n, c.MaxTripSamples)
	}
	if c.MinPlanarDistance > 0 {
		if d := t.PlanarDistance(); d < c.MinPlanarDistance {
			return fmt.Sprintf("distance %.1f m below %.1f m", d, c.MinPlanarDistance)
		}
	}
	if c.MaxAbsAcceleration > 0 {
		if a := t.MaxAbsAcceleration(); a > c.MaxAbsAcceleration {
			return fmt.Sprintf("acceleration %.2f m/s² above %.2f", a, c.MaxAbsAcceleration)
		}
	}
	return ""
}
