package storage

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/kilianp07/powersplit/core/model"
)

// ErrPowerFlowInfeasible is returned when a requested draw cannot be realised
// by a storage model in its current state.
var ErrPowerFlowInfeasible = errors.New("power flow infeasible")

// tolerance in watts accepted beyond the reported drawable range.
const tolerance = 1e-6

// Model is a storage device. Positive power discharges the device, negative
// power charges it.
type Model interface {
	// DrawPower applies watts for periodMS. On error the state is unchanged.
	DrawPower(watts float64, periodMS int) error
	// MinDrawable returns the most negative (charging) power accepted for the period.
	MinDrawable(periodMS int) float64
	// MaxDrawable returns the largest discharging power accepted for the period.
	MaxDrawable(periodMS int) float64
	// Clone returns a deep copy, history included.
	Clone() Model

	Charge() float64
	MaxCharge() float64
	Current() float64
	Temperature() float64
	Efficiency() float64
	Voltage() float64
	History() History
}

// History holds one entry per draw, describing the state during that period.
type History struct {
	Current     []float64 `json:"current"`
	Temperature []float64 `json:"temperature"`
	Charge      []float64 `json:"charge"`
	Efficiency  []float64 `json:"efficiency"`
	PeriodMS    []int     `json:"period_ms"`
}

// Len returns the number of recorded periods.
func (h History) Len() int { return len(h.PeriodMS) }

// Clone returns a copy that shares no backing arrays with h.
func (h History) Clone() History {
	return History{
		Current:     slices.Clone(h.Current),
		Temperature: slices.Clone(h.Temperature),
		Charge:      slices.Clone(h.Charge),
		Efficiency:  slices.Clone(h.Efficiency),
		PeriodMS:    slices.Clone(h.PeriodMS),
	}
}

// CurrentSquaredIntegral returns Σ I²·Δt in A²·s, a proxy for resistive loss.
func (h History) CurrentSquaredIntegral() float64 {
	var sum float64
	for i, c := range h.Current {
		sum += c * c * float64(h.PeriodMS[i]) / 1000
	}
	return sum
}

// PeakCurrent returns the largest current magnitude recorded.
func (h History) PeakCurrent() float64 {
	var peak float64
	for _, c := range h.Current {
		peak = math.Max(peak, math.Abs(c))
	}
	return peak
}

// state is shared by the concrete models.
type state struct {
	current     float64
	temperature float64
	charge      float64
	maxCharge   float64
	efficiency  float64
	voltage     float64
	history     History
}

func (s *state) Charge() float64      { return s.charge }
func (s *state) MaxCharge() float64   { return s.maxCharge }
func (s *state) Current() float64     { return s.current }
func (s *state) Temperature() float64 { return s.temperature }
func (s *state) Efficiency() float64  { return s.efficiency }
func (s *state) Voltage() float64     { return s.voltage }

// History returns a copy of the recorded history.
func (s *state) History() History { return s.history.Clone() }

func (s *state) clone() state {
	c := *s
	c.history = s.history.Clone()
	return c
}

// record appends the state that holds during the coming period.
func (s *state) record(periodMS int) {
	s.history.Current = append(s.history.Current, s.current)
	s.history.Temperature = append(s.history.Temperature, s.temperature)
	s.history.Charge = append(s.history.Charge, s.charge)
	s.history.Efficiency = append(s.history.Efficiency, s.efficiency)
	s.history.PeriodMS = append(s.history.PeriodMS, periodMS)
}

func (s *state) clampCharge() {
	if s.charge < 0 {
		s.charge = 0
	}
	if s.maxCharge > 0 && s.charge > s.maxCharge {
		s.charge = s.maxCharge
	}
}

// CheckDraw validates watts against the reported range of m without
// mutating it. The bundled models' DrawPower fails exactly when it does.
func CheckDraw(m Model, watts float64, periodMS int) error {
	if periodMS <= 0 {
		return fmt.Errorf("%w: period %d ms", ErrPowerFlowInfeasible, periodMS)
	}
	if math.IsNaN(watts) || math.IsInf(watts, 0) {
		return fmt.Errorf("%w: %v W", ErrPowerFlowInfeasible, watts)
	}
	lo, hi := m.MinDrawable(periodMS), m.MaxDrawable(periodMS)
	slack := tolerance * math.Max(1, math.Abs(watts))
	if watts < lo-slack || watts > hi+slack {
		return fmt.Errorf("%w: %.3f W outside [%.3f, %.3f] for %d ms", ErrPowerFlowInfeasible, watts, lo, hi, periodMS)
	}
	return nil
}

func hours(periodMS int) float64 {
	return float64(periodMS) / model.MSPerHour
}
