package policy

import (
	"github.com/kilianp07/powersplit/core/model"
	"github.com/kilianp07/powersplit/core/storage"
)

// NaiveBufferPolicy lets the capacitor serve every demand it can and has the
// battery trickle a constant power into it.
type NaiveBufferPolicy struct {
	name      string
	threshold float64
	tracker
}

// NewNaiveBufferPolicy returns a policy whose battery supplies up to
// thresholdW whenever the capacitor has room.
func NewNaiveBufferPolicy(thresholdW float64) *NaiveBufferPolicy {
	return &NaiveBufferPolicy{name: "Naive Buffer", threshold: thresholdW}
}

func (p *NaiveBufferPolicy) Name() string { return p.name }

func (p *NaiveBufferPolicy) BeginTrip(_ model.TripFeatures, battery, capacitor storage.Model) error {
	return p.begin(battery, capacitor)
}

func (p *NaiveBufferPolicy) CalculatePowerFlows(s model.Sample) (model.Allocation, error) {
	if !p.active() {
		return model.Allocation{}, ErrNoTrip
	}
	lo, hi := p.capacitorRange(s.PeriodMS)
	a := allocate(s.PowerDemand, lo, hi, p.threshold, p.battery.MaxDrawable(s.PeriodMS))
	if err := p.apply(a, s.PeriodMS); err != nil {
		return a, err
	}
	return a, nil
}

func (p *NaiveBufferPolicy) EndTrip(model.Trip) { p.end() }

func (p *NaiveBufferPolicy) ClearState() { p.end() }
