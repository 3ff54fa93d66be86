package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/powersplit/core/model"
)

func sample() model.Sample {
	return model.Sample{
		Latitude: 40.44, Longitude: -79.94, Speed: 12, Acceleration: 0.5,
		Elevation: 300, Bearing: 90, PowerDemand: 15000,
	}
}

func TestFullFeatureSetValues(t *testing.T) {
	fs := FullFeatureSet{}
	s := sample()
	want := []float64{40.44, -79.94, 12, 0.5, 300, 90, 15000}
	if fs.Count() != len(want) {
		t.Fatalf("expected %d features got %d", len(want), fs.Count())
	}
	for axis, w := range want {
		if got := fs.Value(s, axis); got != w {
			t.Errorf("axis %d: expected %v got %v", axis, w, got)
		}
	}
	if fs.Value(s, -1) != 0 || fs.Value(s, fs.Count()) != 0 {
		t.Fatalf("out of range axes must yield 0")
	}
	if fs.Weight(3) != 1 {
		t.Fatalf("weights are uniform")
	}
}

func TestFullFeatureSetDistance(t *testing.T) {
	fs := FullFeatureSet{}
	a := sample()
	b := a
	b.Speed += 3
	b.PowerDemand -= 4
	assert.InDelta(t, 25, fs.Distance(a, b), 1e-9)
	assert.InDelta(t, 9, fs.AxialDistance(a, b, AxisSpeed), 1e-9)
	assert.InDelta(t, 0, fs.AxialDistance(a, b, AxisBearing), 1e-9)
	assert.Equal(t, fs.Distance(a, b), fs.Distance(b, a))
}

func TestScalarFeatureSet(t *testing.T) {
	fs := PowerDemandFeatureSet()
	a := model.Sample{PowerDemand: 3}
	b := model.Sample{PowerDemand: 5}
	assert.Equal(t, 1, fs.Count())
	assert.InDelta(t, 4, fs.Distance(a, b), 1e-12)
	assert.Equal(t, 0.0, fs.Value(a, 1))
}

func TestEstimatePerOffsetDenominator(t *testing.T) {
	series := []float64{10, 20, 30, 40, 50}
	neighbors := []Neighbor{{GroundTruthIndex: 0}, {GroundTruthIndex: 3}}
	p := FullFeatureSet{}.Estimate(model.Sample{}, neighbors, series, 3)

	// offset 0: (10+40)/2, offset 1: (20+50)/2, offset 2: only the first neighbour
	assert.InDelta(t, 25, p.Values[0], 1e-12)
	assert.InDelta(t, 35, p.Values[1], 1e-12)
	assert.InDelta(t, 30, p.Values[2], 1e-12)
	assert.Equal(t, []int{2, 2, 1}, p.Counts)
	assert.Equal(t, 1, p.Truncated)
	assert.Equal(t, 3, p.Valid())
}

func TestEstimateStopsAtTripSeparator(t *testing.T) {
	series := []float64{1, 2, math.NaN(), 100, 200}
	p := FullFeatureSet{}.Estimate(model.Sample{}, []Neighbor{{GroundTruthIndex: 1}}, series, 3)
	assert.InDelta(t, 2, p.Values[0], 1e-12)
	assert.True(t, math.IsNaN(p.Values[1]))
	assert.True(t, math.IsNaN(p.Values[2]))
	assert.Equal(t, 2, p.Truncated)
	assert.Equal(t, 1, p.Valid())
	m, ok := p.Mean()
	assert.True(t, ok)
	assert.InDelta(t, 2, m, 1e-12)
}

func TestEstimateNoNeighbors(t *testing.T) {
	p := FullFeatureSet{}.Estimate(model.Sample{}, nil, []float64{1, 2}, 2)
	if p.Valid() != 0 {
		t.Fatalf("expected no valid offsets")
	}
	if _, ok := p.Mean(); ok {
		t.Fatalf("expected no mean without neighbours")
	}
	if len(FullFeatureSet{}.Estimate(model.Sample{}, nil, nil, 0).Values) != 0 {
		t.Fatalf("zero horizon must be empty")
	}
}
