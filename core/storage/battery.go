package storage

import (
	"fmt"
	"math"
)

// Battery chemistries accepted by NewBattery.
const (
	ChemistryLiFePo4 = "lifepo4"
	ChemistryIdeal   = "ideal"
)

// BatteryConfig describes the traction battery.
type BatteryConfig struct {
	Chemistry  string  `json:"chemistry"`
	CapacityWh float64 `json:"capacity_wh"`
	// InitialWh defaults to a full battery when zero.
	InitialWh float64 `json:"initial_wh"`
	Voltage   float64 `json:"voltage"`
	// InternalResistance in ohms drives resistive loss and heating.
	InternalResistance float64 `json:"internal_resistance_ohm"`
	// MaxCurrent in amps bounds both directions. Zero means unbounded.
	MaxCurrent       float64 `json:"max_current_a"`
	AmbientC         float64 `json:"ambient_c"`
	ThermalMassJPerK float64 `json:"thermal_mass_j_per_k"`
	CoolingWPerK     float64 `json:"cooling_w_per_k"`
}

// SetDefaults applies the reference 50 kWh, 120 V pack.
func (c *BatteryConfig) SetDefaults() {
	if c.Chemistry == "" {
		c.Chemistry = ChemistryLiFePo4
	}
	if c.CapacityWh == 0 {
		c.CapacityWh = 50000
	}
	if c.InitialWh == 0 {
		c.InitialWh = c.CapacityWh
	}
	if c.Voltage == 0 {
		c.Voltage = 120
	}
	if c.InternalResistance == 0 {
		c.InternalResistance = 0.05
	}
	if c.AmbientC == 0 {
		c.AmbientC = 25
	}
	if c.ThermalMassJPerK == 0 {
		c.ThermalMassJPerK = 300000
	}
	if c.CoolingWPerK == 0 {
		c.CoolingWPerK = 15
	}
}

// Validate checks mandatory fields.
func (c BatteryConfig) Validate() error {
	if c.Chemistry != ChemistryLiFePo4 && c.Chemistry != ChemistryIdeal {
		return fmt.Errorf("unknown battery chemistry %s", c.Chemistry)
	}
	if c.CapacityWh <= 0 {
		return fmt.Errorf("battery capacity must be positive")
	}
	if c.InitialWh < 0 || c.InitialWh > c.CapacityWh {
		return fmt.Errorf("battery initial charge %.2f Wh outside [0, %.2f]", c.InitialWh, c.CapacityWh)
	}
	if c.Voltage <= 0 {
		return fmt.Errorf("battery voltage must be positive")
	}
	if c.InternalResistance < 0 || c.MaxCurrent < 0 {
		return fmt.Errorf("battery resistance and current limit must not be negative")
	}
	if c.Chemistry == ChemistryLiFePo4 && c.ThermalMassJPerK <= 0 {
		return fmt.Errorf("battery thermal mass must be positive")
	}
	return nil
}

// NewBattery builds the battery model for cfg.Chemistry.
func NewBattery(cfg BatteryConfig) (Model, error) {
	switch cfg.Chemistry {
	case ChemistryLiFePo4, "":
		return NewLiFePo4(cfg), nil
	case ChemistryIdeal:
		return NewIdealBattery(cfg.Voltage), nil
	default:
		return nil, fmt.Errorf("unknown battery chemistry %s", cfg.Chemistry)
	}
}

// LiFePo4 is a lithium iron phosphate pack with a series resistance and a
// lumped thermal model.
type LiFePo4 struct {
	state
	resistance  float64
	maxCurrent  float64
	ambient     float64
	thermalMass float64
	cooling     float64
}

// NewLiFePo4 returns a pack in the configured initial state.
func NewLiFePo4(cfg BatteryConfig) *LiFePo4 {
	maxCurrent := cfg.MaxCurrent
	if maxCurrent <= 0 {
		maxCurrent = math.Inf(1)
	}
	return &LiFePo4{
		state: state{
			charge:      cfg.InitialWh,
			maxCharge:   cfg.CapacityWh,
			efficiency:  1,
			voltage:     cfg.Voltage,
			temperature: cfg.AmbientC,
		},
		resistance:  cfg.InternalResistance,
		maxCurrent:  maxCurrent,
		ambient:     cfg.AmbientC,
		thermalMass: cfg.ThermalMassJPerK,
		cooling:     cfg.CoolingWPerK,
	}
}

// lossCoefficient a gives the resistive loss a·P² for a terminal power P.
func (b *LiFePo4) lossCoefficient() float64 {
	return b.resistance / (b.voltage * b.voltage)
}

// MaxDrawable is bounded by the current limit and by the charge left once
// resistive losses are paid: P + a·P² ≤ E/h.
func (b *LiFePo4) MaxDrawable(periodMS int) float64 {
	if periodMS <= 0 {
		return 0
	}
	e := b.charge / hours(periodMS)
	a := b.lossCoefficient()
	byEnergy := e
	if a > 0 {
		byEnergy = (math.Sqrt(1+4*a*e) - 1) / (2 * a)
	}
	return math.Max(0, math.Min(b.maxCurrent*b.voltage, byEnergy))
}

// MinDrawable is bounded by the current limit and by the room left in the
// pack for the energy actually stored: |P| − a·P² ≤ R/h.
func (b *LiFePo4) MinDrawable(periodMS int) float64 {
	if periodMS <= 0 {
		return 0
	}
	room := (b.maxCharge - b.charge) / hours(periodMS)
	a := b.lossCoefficient()
	limit := b.maxCurrent * b.voltage
	byRoom := room
	if a > 0 {
		disc := 1 - 4*a*room
		if disc < 0 {
			byRoom = math.Inf(1)
		} else {
			byRoom = (1 - math.Sqrt(disc)) / (2 * a)
		}
	}
	return -math.Max(0, math.Min(limit, byRoom))
}

// DrawPower applies watts at the terminals. Losses are taken from the pack
// when discharging and from the input when charging.
func (b *LiFePo4) DrawPower(watts float64, periodMS int) error {
	if err := CheckDraw(b, watts, periodMS); err != nil {
		return fmt.Errorf("battery: %w", err)
	}
	h := hours(periodMS)
	b.current = watts / b.voltage
	loss := b.current * b.current * b.resistance
	switch {
	case watts > 0:
		b.efficiency = watts / (watts + loss)
	case watts < 0:
		b.efficiency = math.Max(0, (-watts-loss)/-watts)
	default:
		b.efficiency = 1
	}
	b.record(periodMS)

	if watts >= 0 {
		b.charge -= (watts + loss) * h
	} else {
		b.charge += math.Max(0, -watts-loss) * h
	}
	b.clampCharge()

	dt := float64(periodMS) / 1000
	b.temperature += (loss - b.cooling*(b.temperature-b.ambient)) * dt / b.thermalMass
	return nil
}

// Clone returns an independent copy.
func (b *LiFePo4) Clone() Model {
	c := *b
	c.state = b.state.clone()
	return &c
}

// IdealBattery is a lossless, unbounded source and sink. Its charge is the
// net energy drawn and may go negative.
type IdealBattery struct {
	state
}

// NewIdealBattery returns an ideal battery at the given voltage.
func NewIdealBattery(voltage float64) *IdealBattery {
	if voltage <= 0 {
		voltage = 120
	}
	return &IdealBattery{state: state{efficiency: 1, voltage: voltage, temperature: 25}}
}

// MaxDrawable is unbounded.
func (b *IdealBattery) MaxDrawable(int) float64 { return math.Inf(1) }

// MinDrawable is unbounded.
func (b *IdealBattery) MinDrawable(int) float64 { return math.Inf(-1) }

// DrawPower records the draw.
func (b *IdealBattery) DrawPower(watts float64, periodMS int) error {
	if err := CheckDraw(b, watts, periodMS); err != nil {
		return fmt.Errorf("battery: %w", err)
	}
	b.current = watts / b.voltage
	b.record(periodMS)
	b.charge -= watts * hours(periodMS)
	return nil
}

// Clone returns an independent copy.
func (b *IdealBattery) Clone() Model {
	return &IdealBattery{state: b.state.clone()}
}
