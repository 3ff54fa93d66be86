package simulation

import (
	"context"
	"fmt"

	"github.com/kilianp07/powersplit/core/kdtree"
	"github.com/kilianp07/powersplit/core/model"
	"github.com/kilianp07/powersplit/core/policy"
	"github.com/kilianp07/powersplit/core/prediction"
)

// SweepPoint is the outcome of one neighbour count.
type SweepPoint struct {
	K                 int     `json:"k"`
	CurrentSquaredSum float64 `json:"current_squared_sum"`
	Aborted           int     `json:"aborted"`
}

// SweepK runs a KnnPolicy for each k over the same index and trips. base
// supplies the horizon and target charge; its K and Name are overridden.
func (s *Simulator) SweepK(ctx context.Context, tree *kdtree.Tree, series []float64, ks []int, base policy.KnnConfig, trips []model.Trip) ([]SweepPoint, error) {
	if tree == nil {
		return nil, fmt.Errorf("sweep requires a history index")
	}
	policies := make([]policy.Policy, len(ks))
	for i, k := range ks {
		if k <= 0 {
			return nil, fmt.Errorf("sweep: invalid k %d", k)
		}
		cfg := base
		cfg.K = k
		cfg.Name = fmt.Sprintf("KNN k=%d", k)
		policies[i] = policy.NewKnnPolicy(cfg, prediction.NewKnnPredictor(tree, series, k))
	}
	results, err := s.Run(ctx, policies, trips)
	if err != nil {
		return nil, err
	}
	points := make([]SweepPoint, len(ks))
	for i, r := range results {
		points[i] = SweepPoint{K: ks[i], CurrentSquaredSum: r.CurrentSquaredSum(), Aborted: len(r.Aborted)}
	}
	return points, nil
}
