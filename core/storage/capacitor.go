package storage

import (
	"fmt"
	"math"
)

// CapacitorConfig describes an ultracapacitor bank.
type CapacitorConfig struct {
	CapacityWh float64 `json:"capacity_wh"`
	InitialWh  float64 `json:"initial_wh"`
	Voltage    float64 `json:"voltage"`
	// MaxPowerW bounds charge and discharge power. Zero means unbounded.
	MaxPowerW float64 `json:"max_power_w"`
}

// SetDefaults applies sane defaults.
func (c *CapacitorConfig) SetDefaults() {
	if c.CapacityWh == 0 {
		c.CapacityWh = 50
	}
	if c.Voltage == 0 {
		c.Voltage = 120
	}
}

// Validate checks mandatory fields.
func (c CapacitorConfig) Validate() error {
	if c.CapacityWh <= 0 {
		return fmt.Errorf("capacitor capacity must be positive")
	}
	if c.Voltage <= 0 {
		return fmt.Errorf("capacitor voltage must be positive")
	}
	if c.InitialWh < 0 || c.InitialWh > c.CapacityWh {
		return fmt.Errorf("capacitor initial charge %.2f Wh outside [0, %.2f]", c.InitialWh, c.CapacityWh)
	}
	if c.MaxPowerW < 0 {
		return fmt.Errorf("capacitor max power must not be negative")
	}
	return nil
}

// Capacitor is a lossless store whose power is limited only by its charge,
// remaining room and optional power rating.
type Capacitor struct {
	state
	maxPower float64
}

// NewCapacitor returns a capacitor at its initial charge.
func NewCapacitor(cfg CapacitorConfig) *Capacitor {
	maxPower := cfg.MaxPowerW
	if maxPower <= 0 {
		maxPower = math.Inf(1)
	}
	return &Capacitor{
		state: state{
			charge:      cfg.InitialWh,
			maxCharge:   cfg.CapacityWh,
			efficiency:  1,
			voltage:     cfg.Voltage,
			temperature: 25,
		},
		maxPower: maxPower,
	}
}

// MaxDrawable returns the power that empties the capacitor over the period,
// capped by its rating.
func (c *Capacitor) MaxDrawable(periodMS int) float64 {
	if periodMS <= 0 {
		return 0
	}
	return math.Min(c.maxPower, c.charge/hours(periodMS))
}

// MinDrawable returns the negative power that fills the capacitor over the
// period, capped by its rating.
func (c *Capacitor) MinDrawable(periodMS int) float64 {
	if periodMS <= 0 {
		return 0
	}
	return -math.Min(c.maxPower, (c.maxCharge-c.charge)/hours(periodMS))
}

// DrawPower moves watts out of (or into) the capacitor for the period.
func (c *Capacitor) DrawPower(watts float64, periodMS int) error {
	if err := CheckDraw(c, watts, periodMS); err != nil {
		return fmt.Errorf("capacitor: %w", err)
	}
	c.current = watts / c.voltage
	c.record(periodMS)
	c.charge -= watts * hours(periodMS)
	c.clampCharge()
	return nil
}

// Clone returns an independent copy.
func (c *Capacitor) Clone() Model {
	return &Capacitor{state: c.state.clone(), maxPower: c.maxPower}
}
