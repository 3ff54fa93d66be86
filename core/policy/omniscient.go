package policy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/powersplit/core/model"
	"github.com/kilianp07/powersplit/core/storage"
)

// OmniscientPolicy knows the whole trip in advance. It precomputes the
// lowest battery output that still meets all demand within a bounded
// lookahead, and uses the capacitor to absorb everything above it.
type OmniscientPolicy struct {
	name      string
	lookahead int
	schedule  []float64
	index     int
	tracker
}

// NewOmniscientPolicy returns an offline-optimal policy looking lookahead
// samples ahead. Values below 1 are raised to 1.
func NewOmniscientPolicy(lookahead int) *OmniscientPolicy {
	if lookahead < 1 {
		lookahead = 1
	}
	return &OmniscientPolicy{name: "Omniscient Policy", lookahead: lookahead}
}

func (p *OmniscientPolicy) Name() string { return p.name }

// ParseTrip computes the battery schedule for t.
func (p *OmniscientPolicy) ParseTrip(t model.Trip) error {
	if len(t.Samples) == 0 {
		return fmt.Errorf("%w: trip %q", model.ErrInvalidTrip, t.Features.ID)
	}
	p.schedule = BatterySchedule(t.Samples, p.lookahead)
	p.index = 0
	return nil
}

// Schedule returns a copy of the current battery schedule.
func (p *OmniscientPolicy) Schedule() []float64 {
	out := make([]float64, len(p.schedule))
	copy(out, p.schedule)
	return out
}

func (p *OmniscientPolicy) BeginTrip(_ model.TripFeatures, battery, capacitor storage.Model) error {
	p.index = 0
	return p.begin(battery, capacitor)
}

// CalculatePowerFlows follows the precomputed schedule, one entry per call.
func (p *OmniscientPolicy) CalculatePowerFlows(s model.Sample) (model.Allocation, error) {
	if !p.active() {
		return model.Allocation{}, ErrNoTrip
	}
	if p.index >= len(p.schedule) {
		return model.Allocation{}, fmt.Errorf("%w: sample %d of %d", ErrScheduleExhausted, p.index+1, len(p.schedule))
	}
	lo, hi := p.capacitorRange(s.PeriodMS)
	a := allocate(s.PowerDemand, lo, hi, p.schedule[p.index], math.Inf(1))
	p.index++
	if err := p.apply(a, s.PeriodMS); err != nil {
		return a, err
	}
	return a, nil
}

func (p *OmniscientPolicy) EndTrip(model.Trip) {
	p.end()
	p.schedule = nil
	p.index = 0
}

func (p *OmniscientPolicy) ClearState() { p.EndTrip(model.Trip{}) }

// BatterySchedule returns, for every sample, the smallest constant battery
// power that meets the demand of each prefix of the next lookahead samples,
// given what the earlier schedule entries already delivered.
//
// Energy the schedule delivers beyond a sample's demand is banked and
// counted against later demand. The result shaves every peak down to the
// average rate of the window it falls into.
func BatterySchedule(samples []model.Sample, lookahead int) []float64 {
	n := len(samples)
	if n == 0 {
		return nil
	}
	if lookahead < 1 {
		lookahead = 1
	}
	// cumulative demand in W·ms and elapsed time in ms
	cumE := make([]float64, n)
	cumT := make([]float64, n)
	var e, t float64
	for i, s := range samples {
		e += s.PowerDemand * float64(s.PeriodMS)
		t += float64(s.PeriodMS)
		cumE[i], cumT[i] = e, t
	}

	schedule := make([]float64, n)
	rates := make([]float64, 0, lookahead)
	var supplied, elapsed float64
	for start := 0; start < n; start++ {
		end := start + lookahead
		if end > n {
			end = n
		}
		rates = rates[:0]
		for i := start; i < end; i++ {
			rates = append(rates, (cumE[i]-supplied)/(cumT[i]-elapsed))
		}
		ceiling := floats.Max(rates)
		schedule[start] = ceiling
		supplied += ceiling * float64(samples[start].PeriodMS)
		elapsed = cumT[start]
	}
	return schedule
}
