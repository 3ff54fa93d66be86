package simulation

import (
	"fmt"

	"github.com/kilianp07/powersplit/core/model"
	"github.com/kilianp07/powersplit/core/storage"
)

// Trip filter defaults used by DefaultConfig.
const (
	DefaultMaxTripSamples     = 3600
	DefaultMinPlanarDistance  = 500
	DefaultMaxAbsAcceleration = 4.9
)

// Config controls a simulation run.
type Config struct {
	// MaxTripSamples drops longer trips. Zero means the default.
	MaxTripSamples int `json:"max_trip_samples"`
	MinTripSamples int `json:"min_trip_samples"`
	// MinPlanarDistance in metres drops trips that barely move. Zero disables it.
	MinPlanarDistance float64 `json:"min_planar_distance_m"`
	// MaxAbsAcceleration in m/s² drops trips with implausible readings. Zero disables it.
	MaxAbsAcceleration float64 `json:"max_abs_acceleration"`
	// Parallelism is the number of policies evaluated concurrently.
	Parallelism int `json:"parallelism"`
	// Tolerance for conservation and bound checks, in watts.
	Tolerance float64 `json:"tolerance"`
	// RecordFlows keeps every allocation in the trip results.
	RecordFlows bool `json:"record_flows"`

	Battery   storage.BatteryConfig   `json:"battery"`
	Capacitor storage.CapacitorConfig `json:"capacitor"`
}

// DefaultConfig returns the reference run settings with the trip filter
// enabled. Storage defaults are left to SetDefaults.
func DefaultConfig() Config {
	return Config{
		MaxTripSamples:     DefaultMaxTripSamples,
		MinTripSamples:     1,
		MinPlanarDistance:  DefaultMinPlanarDistance,
		MaxAbsAcceleration: DefaultMaxAbsAcceleration,
		Parallelism:        1,
		Tolerance:          model.DefaultTolerance,
	}
}

// SetDefaults applies sane defaults. The distance and acceleration filters
// are left alone so that zero keeps them disabled.
func (c *Config) SetDefaults() {
	if c.MaxTripSamples == 0 {
		c.MaxTripSamples = DefaultMaxTripSamples
	}
	if c.MinTripSamples == 0 {
		c.MinTripSamples = 1
	}
	if c.Parallelism == 0 {
		c.Parallelism = 1
	}
	if c.Tolerance == 0 {
		c.Tolerance = model.DefaultTolerance
	}
	c.Battery.SetDefaults()
	c.Capacitor.SetDefaults()
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.MinTripSamples < 1 || c.MaxTripSamples < c.MinTripSamples {
		return fmt.Errorf("trip sample bounds [%d, %d] invalid", c.MinTripSamples, c.MaxTripSamples)
	}
	if c.MinPlanarDistance < 0 || c.MaxAbsAcceleration < 0 {
		return fmt.Errorf("trip filter thresholds must not be negative")
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be positive")
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive")
	}
	if err := c.Battery.Validate(); err != nil {
		return err
	}
	return c.Capacitor.Validate()
}
