package model

import (
	"errors"
	"fmt"
	"math"
)

// DefaultTolerance is the slack in watts used when checking allocations.
const DefaultTolerance = 1e-6

var (
	// ErrConservation means battery and capacitor do not add up to the demand.
	ErrConservation = errors.New("allocation does not meet demand")
	// ErrCapacitorBounds means a capacitor flow lies outside its feasible range.
	ErrCapacitorBounds = errors.New("allocation exceeds capacitor bounds")
)

// Allocation is the split of one sample's demand between the storage paths.
// All values are in watts.
type Allocation struct {
	BatteryToMotor     float64 `json:"battery_to_motor"`
	CapacitorToMotor   float64 `json:"capacitor_to_motor"`
	BatteryToCapacitor float64 `json:"battery_to_capacitor"`
}

// BatteryDraw is the total power leaving the battery.
func (a Allocation) BatteryDraw() float64 {
	return a.BatteryToMotor + a.BatteryToCapacitor
}

// CapacitorDraw is the net power leaving the capacitor.
func (a Allocation) CapacitorDraw() float64 {
	return a.CapacitorToMotor - a.BatteryToCapacitor
}

// Check verifies conservation against demand and that both capacitor flows
// lie inside [minCap, maxCap].
func (a Allocation) Check(demand, minCap, maxCap, tol float64) error {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if d := a.BatteryToMotor + a.CapacitorToMotor - demand; math.Abs(d) > tol*math.Max(1, math.Abs(demand)) {
		return fmt.Errorf("%w: %.6f + %.6f != %.6f", ErrConservation, a.BatteryToMotor, a.CapacitorToMotor, demand)
	}
	if a.CapacitorToMotor < minCap-tol || a.CapacitorToMotor > maxCap+tol {
		return fmt.Errorf("%w: capacitor to motor %.6f not in [%.6f, %.6f]", ErrCapacitorBounds, a.CapacitorToMotor, minCap, maxCap)
	}
	if net := a.CapacitorDraw(); net < minCap-tol || net > maxCap+tol {
		return fmt.Errorf("%w: net capacitor draw %.6f not in [%.6f, %.6f]", ErrCapacitorBounds, net, minCap, maxCap)
	}
	return nil
}
