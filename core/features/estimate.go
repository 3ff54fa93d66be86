package features

import (
	"math"

	"github.com/kilianp07/powersplit/core/model"
)

// Neighbor references a historical sample by its offset in the ground-truth
// power series.
type Neighbor struct {
	Sample           model.Sample
	GroundTruthIndex int
	Distance         float64
}

// Prediction is the averaged future demand for a query sample.
type Prediction struct {
	// Values holds one estimate per lookahead offset. Offsets without any
	// contributing neighbour are NaN.
	Values []float64
	// Counts holds the number of neighbours averaged at each offset.
	Counts []int
	// Truncated counts neighbour continuations cut short by the end of the
	// series or a trip boundary, summed over all offsets.
	Truncated int
}

// Valid returns the number of leading offsets that have at least one
// contributing neighbour.
func (p Prediction) Valid() int {
	for i, c := range p.Counts {
		if c == 0 {
			return i
		}
	}
	return len(p.Counts)
}

// Mean returns the average of the valid leading values and false when no
// offset could be estimated.
func (p Prediction) Mean() (float64, bool) {
	n := p.Valid()
	if n == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range p.Values[:n] {
		sum += v
	}
	return sum / float64(n), true
}

// averageFollowing averages, for each of the horizon offsets, the ground-truth
// power that followed every neighbour. A neighbour whose continuation leaves
// the series, or reaches a NaN trip separator, stops contributing from that
// offset onwards.
func averageFollowing(neighbors []Neighbor, series []float64, horizon int) Prediction {
	if horizon <= 0 {
		return Prediction{}
	}
	p := Prediction{Values: make([]float64, horizon), Counts: make([]int, horizon)}
	for _, n := range neighbors {
		for j := 0; j < horizon; j++ {
			idx := n.GroundTruthIndex + j
			if idx < 0 || idx >= len(series) || math.IsNaN(series[idx]) {
				p.Truncated += horizon - j
				break
			}
			p.Values[j] += series[idx]
			p.Counts[j]++
		}
	}
	for j := range p.Values {
		if p.Counts[j] == 0 {
			p.Values[j] = math.NaN()
			continue
		}
		p.Values[j] /= float64(p.Counts[j])
	}
	return p
}
