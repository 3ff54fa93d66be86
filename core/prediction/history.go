package prediction

import (
	"math"

	"github.com/kilianp07/powersplit/core/kdtree"
	"github.com/kilianp07/powersplit/core/model"
)

// History is the flattened training set: one IndexedSample per historical
// sample and the parallel ground-truth power series they index into.
// Trips are separated in Series by a NaN entry so that a lookahead never
// runs into the next trip.
type History struct {
	Points []kdtree.IndexedSample
	Series []float64
}

// NewHistory flattens trips into a History.
func NewHistory(trips []model.Trip) *History {
	h := &History{}
	for _, t := range trips {
		h.Add(t)
	}
	return h
}

// Add appends the samples of t.
func (h *History) Add(t model.Trip) {
	if len(t.Samples) == 0 {
		return
	}
	for _, s := range t.Samples {
		h.Points = append(h.Points, kdtree.IndexedSample{Sample: s, GroundTruthIndex: len(h.Series)})
		h.Series = append(h.Series, s.PowerDemand)
	}
	h.Series = append(h.Series, math.NaN())
}

// Len returns the number of indexed samples.
func (h *History) Len() int { return len(h.Points) }
