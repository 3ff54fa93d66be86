package model

import "fmt"

// Vehicle holds the physical parameters used upstream to derive power demand
// from trip kinematics. The simulation core only carries it as trip metadata.
type Vehicle struct {
	MassKg            float64 `json:"mass_kg"`
	FrontalAreaM2     float64 `json:"frontal_area_m2"`
	DragCoefficient   float64 `json:"drag_coefficient"`
	RollingResistance float64 `json:"rolling_resistance"`
}

// DefaultVehicle returns the compact sedan profile used for the reference data set.
func DefaultVehicle() Vehicle {
	return Vehicle{MassKg: 1200, FrontalAreaM2: 1.988, DragCoefficient: 0.31, RollingResistance: 0.015}
}

// Validate checks that the vehicle configuration is sound.
// In particular the mass must be positive.
func (v Vehicle) Validate() error {
	if v.MassKg <= 0 {
		return fmt.Errorf("vehicle mass must be positive")
	}
	if v.FrontalAreaM2 < 0 || v.DragCoefficient < 0 || v.RollingResistance < 0 {
		return fmt.Errorf("vehicle coefficients must not be negative")
	}
	return nil
}
