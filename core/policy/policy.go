package policy

import (
	"errors"
	"fmt"
	"math"

	"github.com/kilianp07/powersplit/core/model"
	"github.com/kilianp07/powersplit/core/storage"
)

var (
	// ErrNoTrip is returned when a per-sample call happens outside a trip.
	ErrNoTrip = errors.New("no trip in progress")
	// ErrScheduleExhausted is returned when more samples are requested than
	// were precomputed for the trip.
	ErrScheduleExhausted = errors.New("battery schedule exhausted")
)

// Policy decides the power allocation for every sample of a trip.
type Policy interface {
	Name() string
	// BeginTrip hands the policy private clones of the storage models.
	BeginTrip(tf model.TripFeatures, battery, capacitor storage.Model) error
	CalculatePowerFlows(s model.Sample) (model.Allocation, error)
	EndTrip(t model.Trip)
	// ClearState drops any state kept across trips.
	ClearState()
}

// TripParser is implemented by policies that need the whole trip ahead of
// time. The simulation calls ParseTrip before BeginTrip.
type TripParser interface {
	ParseTrip(t model.Trip) error
}

// tracker keeps the policy's private view of the storage models in step with
// its own decisions.
type tracker struct {
	battery   storage.Model
	capacitor storage.Model
}

func (t *tracker) begin(battery, capacitor storage.Model) error {
	if battery == nil || capacitor == nil {
		return fmt.Errorf("storage models are required")
	}
	t.battery, t.capacitor = battery, capacitor
	return nil
}

func (t *tracker) end() {
	t.battery, t.capacitor = nil, nil
}

func (t *tracker) active() bool { return t.battery != nil && t.capacitor != nil }

// capacitorRange returns the capacitor's feasible power for the period.
func (t *tracker) capacitorRange(periodMS int) (float64, float64) {
	return t.capacitor.MinDrawable(periodMS), t.capacitor.MaxDrawable(periodMS)
}

// apply draws a on the private models. Both draws are checked first so a
// rejected allocation leaves neither model changed.
func (t *tracker) apply(a model.Allocation, periodMS int) error {
	if err := storage.CheckDraw(t.capacitor, a.CapacitorDraw(), periodMS); err != nil {
		return fmt.Errorf("track capacitor: %w", err)
	}
	if err := storage.CheckDraw(t.battery, a.BatteryDraw(), periodMS); err != nil {
		return fmt.Errorf("track battery: %w", err)
	}
	if err := t.capacitor.DrawPower(a.CapacitorDraw(), periodMS); err != nil {
		return fmt.Errorf("track capacitor: %w", err)
	}
	if err := t.battery.DrawPower(a.BatteryDraw(), periodMS); err != nil {
		return fmt.Errorf("track battery: %w", err)
	}
	return nil
}

// allocate serves as much demand as possible from the capacitor and lets the
// battery cover the rest. When the battery's share is below target the
// difference recharges the capacitor, limited so that the capacitor's net
// draw stays inside [lo, hi] and the battery stays under batteryMax.
func allocate(demand, lo, hi, target, batteryMax float64) model.Allocation {
	c2m := math.Min(math.Max(demand, lo), hi)
	b2m := demand - c2m
	b2c := math.Max(0, target-b2m)
	if c2m-b2c < lo {
		b2c = c2m - lo
	} else if c2m-b2c > hi {
		b2c = c2m - hi
	}
	if b2m+b2c > batteryMax {
		b2c = math.Max(0, batteryMax-b2m)
	}
	return model.Allocation{BatteryToMotor: b2m, CapacitorToMotor: c2m, BatteryToCapacitor: b2c}
}
