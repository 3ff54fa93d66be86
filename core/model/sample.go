package model

import "time"

// MSPerHour converts sample periods to hours.
const MSPerHour = 3600000.0

// Sample is one telemetry reading produced by the feature-extraction
// pipeline. The power demand covers the whole period that starts at Time.
type Sample struct {
	Time     time.Time `json:"time"`
	PeriodMS int       `json:"period_ms"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Elevation in metres.
	Elevation float64 `json:"elevation"`
	// Speed in m/s and Acceleration in m/s².
	Speed        float64 `json:"speed"`
	Acceleration float64 `json:"acceleration"`
	// Bearing in degrees.
	Bearing float64 `json:"bearing"`
	// PlanarDistance is the distance travelled during the period in metres.
	PlanarDistance float64 `json:"planar_distance"`
	// PowerDemand is in watts, negative when regenerating.
	PowerDemand float64 `json:"power_demand"`
}

// Hours returns the sample period in hours.
func (s Sample) Hours() float64 {
	return float64(s.PeriodMS) / MSPerHour
}
