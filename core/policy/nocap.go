package policy

import (
	"github.com/kilianp07/powersplit/core/model"
	"github.com/kilianp07/powersplit/core/storage"
)

// NoCapPolicy never uses the capacitor. It is the baseline every other
// policy is compared against.
type NoCapPolicy struct {
	name string
}

// NewNoCapPolicy returns the baseline policy.
func NewNoCapPolicy() *NoCapPolicy { return &NoCapPolicy{name: "No Capacitor"} }

func (p *NoCapPolicy) Name() string { return p.name }

func (p *NoCapPolicy) BeginTrip(model.TripFeatures, storage.Model, storage.Model) error { return nil }

// CalculatePowerFlows sends the whole demand through the battery.
func (p *NoCapPolicy) CalculatePowerFlows(s model.Sample) (model.Allocation, error) {
	return model.Allocation{BatteryToMotor: s.PowerDemand}, nil
}

func (p *NoCapPolicy) EndTrip(model.Trip) {}

func (p *NoCapPolicy) ClearState() {}
