package simulation

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/powersplit/core/model"
)

// TripResult holds the outcome of one trip under one policy.
type TripResult struct {
	TripID  string `json:"trip_id"`
	Samples int    `json:"samples"`
	// BatteryCurrentSquaredIntegral is Σ I²·Δt in A²·s.
	BatteryCurrentSquaredIntegral float64 `json:"battery_current_squared_integral"`
	PeakBatteryCurrent            float64 `json:"peak_battery_current"`
	// BatteryEnergyWh and CapacitorEnergyWh are the net energy drawn.
	BatteryEnergyWh      float64 `json:"battery_energy_wh"`
	CapacitorEnergyWh    float64 `json:"capacitor_energy_wh"`
	FinalBatteryCharge   float64 `json:"final_battery_charge_wh"`
	FinalCapacitorCharge float64 `json:"final_capacitor_charge_wh"`
	// Flows is only filled when Config.RecordFlows is set.
	Flows []model.Allocation `json:"flows,omitempty"`
}

// AbortedTrip records a trip that could not be completed.
type AbortedTrip struct {
	TripID string `json:"trip_id"`
	Sample int    `json:"sample"`
	Error  string `json:"error"`
}

// Results collects every trip a policy completed during a run.
type Results struct {
	Policy   string        `json:"policy"`
	RunID    string        `json:"run_id"`
	Trips    []TripResult  `json:"trips"`
	Aborted  []AbortedTrip `json:"aborted,omitempty"`
	Skipped  []Skipped     `json:"skipped,omitempty"`
	Duration time.Duration `json:"duration"`
}

// CurrentSquaredSum returns the battery current squared integrated over all
// completed trips, in A²·s. Lower means less battery stress.
func (r *Results) CurrentSquaredSum() float64 {
	var sum float64
	for _, t := range r.Trips {
		sum += t.BatteryCurrentSquaredIntegral
	}
	return sum
}

// Summary aggregates a Results.
type Summary struct {
	Policy            string  `json:"policy"`
	Trips             int     `json:"trips"`
	Aborted           int     `json:"aborted"`
	Samples           int     `json:"samples"`
	CurrentSquaredSum float64 `json:"current_squared_sum"`
	// MeanCurrentSquared and StdCurrentSquared are taken over trips.
	MeanCurrentSquared float64 `json:"mean_current_squared"`
	StdCurrentSquared  float64 `json:"std_current_squared"`
	MaxPeakCurrent     float64 `json:"max_peak_current"`
	BatteryEnergyWh    float64 `json:"battery_energy_wh"`
}

// Summary computes the aggregate statistics of r.
func (r *Results) Summary() Summary {
	s := Summary{Policy: r.Policy, Trips: len(r.Trips), Aborted: len(r.Aborted)}
	if len(r.Trips) == 0 {
		return s
	}
	squared := make([]float64, len(r.Trips))
	peaks := make([]float64, len(r.Trips))
	for i, t := range r.Trips {
		squared[i] = t.BatteryCurrentSquaredIntegral
		peaks[i] = t.PeakBatteryCurrent
		s.Samples += t.Samples
		s.BatteryEnergyWh += t.BatteryEnergyWh
	}
	s.CurrentSquaredSum = floats.Sum(squared)
	if len(squared) > 1 {
		s.MeanCurrentSquared, s.StdCurrentSquared = stat.MeanStdDev(squared, nil)
	} else {
		s.MeanCurrentSquared = squared[0]
	}
	s.MaxPeakCurrent = floats.Max(peaks)
	return s
}
