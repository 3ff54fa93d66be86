package prediction

import (
	"sync/atomic"

	"github.com/kilianp07/powersplit/core/features"
	"github.com/kilianp07/powersplit/core/kdtree"
	"github.com/kilianp07/powersplit/core/model"
)

// Predictor forecasts the power demand for the horizon samples following s.
type Predictor interface {
	Predict(s model.Sample, horizon int) features.Prediction
}

// KnnPredictor averages what happened after the K most similar historical
// samples. It is safe for concurrent use.
type KnnPredictor struct {
	tree   *kdtree.Tree
	series []float64
	k      int

	queries     atomic.Int64
	empty       atomic.Int64
	truncations atomic.Int64
}

// NewKnnPredictor returns a predictor over tree whose ground-truth indices
// point into series. series must not be modified afterwards.
func NewKnnPredictor(tree *kdtree.Tree, series []float64, k int) *KnnPredictor {
	if k <= 0 {
		k = 1
	}
	return &KnnPredictor{tree: tree, series: series, k: k}
}

// NewKnnPredictorFromHistory builds the index over h and returns a predictor.
func NewKnnPredictorFromHistory(h *History, fs features.FeatureSet, k int, opts ...kdtree.Option) *KnnPredictor {
	return NewKnnPredictor(kdtree.New(h.Points, fs, opts...), h.Series, k)
}

// Predict queries the index and averages the neighbours' continuations.
func (p *KnnPredictor) Predict(s model.Sample, horizon int) features.Prediction {
	return p.PredictK(s, p.k, horizon)
}

// PredictK is Predict with an explicit neighbour count.
func (p *KnnPredictor) PredictK(s model.Sample, k, horizon int) features.Prediction {
	p.queries.Add(1)
	neighbors := p.tree.KNearest(s, k)
	if len(neighbors) == 0 {
		p.empty.Add(1)
	}
	pred := p.tree.FeatureSet().Estimate(s, neighbors, p.series, horizon)
	p.truncations.Add(int64(pred.Truncated))
	return pred
}

// K returns the default neighbour count.
func (p *KnnPredictor) K() int { return p.k }

// Tree exposes the underlying index.
func (p *KnnPredictor) Tree() *kdtree.Tree { return p.tree }

// Stats reports query diagnostics.
type Stats struct {
	Queries      int64 `json:"queries"`
	EmptyResults int64 `json:"empty_results"`
	Truncations  int64 `json:"truncations"`
}

// Stats returns a snapshot of the diagnostic counters.
func (p *KnnPredictor) Stats() Stats {
	return Stats{
		Queries:      p.queries.Load(),
		EmptyResults: p.empty.Load(),
		Truncations:  p.truncations.Load(),
	}
}
