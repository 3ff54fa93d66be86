package features

import "github.com/kilianp07/powersplit/core/model"

// FeatureSet extracts numeric dimensions from samples and measures distance
// between them.
type FeatureSet interface {
	// Count returns the fixed number of dimensions.
	Count() int
	// Value returns the feature for axis. Axes outside [0, Count) yield 0.
	Value(s model.Sample, axis int) float64
	// Distance is the squared distance over all axes.
	Distance(a, b model.Sample) float64
	// AxialDistance is the squared difference along a single axis.
	AxialDistance(a, b model.Sample, axis int) float64
	// Weight returns the relative weight of axis. It is an extension point
	// and is not applied by Distance.
	Weight(axis int) float64
	// Estimate predicts the next horizon demands for query from the
	// ground-truth continuations of its neighbours.
	Estimate(query model.Sample, neighbors []Neighbor, series []float64, horizon int) Prediction
}

// Axis names for FullFeatureSet.
const (
	AxisLatitude = iota
	AxisLongitude
	AxisSpeed
	AxisAcceleration
	AxisElevation
	AxisBearing
	AxisPowerDemand

	fullFeatureCount
)

// FullFeatureSet uses position, speed, acceleration, elevation, bearing and
// power demand with uniform weights.
type FullFeatureSet struct{}

// Count returns 7.
func (FullFeatureSet) Count() int { return fullFeatureCount }

// Value returns the feature for axis, or 0 for an unknown axis.
func (FullFeatureSet) Value(s model.Sample, axis int) float64 {
	switch axis {
	case AxisLatitude:
		return s.Latitude
	case AxisLongitude:
		return s.Longitude
	case AxisSpeed:
		return s.Speed
	case AxisAcceleration:
		return s.Acceleration
	case AxisElevation:
		return s.Elevation
	case AxisBearing:
		return s.Bearing
	case AxisPowerDemand:
		return s.PowerDemand
	default:
		return 0
	}
}

// Distance returns the squared Euclidean distance between a and b.
func (f FullFeatureSet) Distance(a, b model.Sample) float64 {
	return sumSquares(f, a, b)
}

// AxialDistance returns the squared difference along axis.
func (f FullFeatureSet) AxialDistance(a, b model.Sample, axis int) float64 {
	d := f.Value(a, axis) - f.Value(b, axis)
	return d * d
}

// Weight always returns 1.
func (FullFeatureSet) Weight(int) float64 { return 1 }

// Estimate averages neighbour continuations with uniform weights.
func (FullFeatureSet) Estimate(_ model.Sample, neighbors []Neighbor, series []float64, horizon int) Prediction {
	return averageFollowing(neighbors, series, horizon)
}

func sumSquares(fs FeatureSet, a, b model.Sample) float64 {
	var dist float64
	for i := 0; i < fs.Count(); i++ {
		d := fs.Value(a, i) - fs.Value(b, i)
		dist += d * d
	}
	return dist
}

// ScalarFeatureSet is a one-dimensional feature set over a single sample
// field. It is handy for tests and for indexing on power demand alone.
type ScalarFeatureSet struct {
	Get func(model.Sample) float64
}

// PowerDemandFeatureSet indexes samples by power demand only.
func PowerDemandFeatureSet() ScalarFeatureSet {
	return ScalarFeatureSet{Get: func(s model.Sample) float64 { return s.PowerDemand }}
}

// Count returns 1.
func (ScalarFeatureSet) Count() int { return 1 }

// Value returns the scalar for axis 0, and 0 otherwise.
func (f ScalarFeatureSet) Value(s model.Sample, axis int) float64 {
	if axis != 0 || f.Get == nil {
		return 0
	}
	return f.Get(s)
}

// Distance returns the squared difference of the scalars.
func (f ScalarFeatureSet) Distance(a, b model.Sample) float64 {
	return f.AxialDistance(a, b, 0)
}

// AxialDistance returns the squared difference along axis.
func (f ScalarFeatureSet) AxialDistance(a, b model.Sample, axis int) float64 {
	d := f.Value(a, axis) - f.Value(b, axis)
	return d * d
}

// Weight always returns 1.
func (ScalarFeatureSet) Weight(int) float64 { return 1 }

// Estimate averages neighbour continuations with uniform weights.
func (ScalarFeatureSet) Estimate(_ model.Sample, neighbors []Neighbor, series []float64, horizon int) Prediction {
	return averageFollowing(neighbors, series, horizon)
}
