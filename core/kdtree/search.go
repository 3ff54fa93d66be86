package kdtree

import (
	"container/heap"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/powersplit/core/features"
	"github.com/kilianp07/powersplit/core/model"
)

// KNearest returns the k indexed samples closest to query, nearest first.
// An empty tree or a non-positive k yields nil.
func (t *Tree) KNearest(query model.Sample, k int) []features.Neighbor {
	if t.root == nil || k <= 0 {
		return nil
	}
	s := search{
		fs:    t.fs,
		query: query,
		k:     k,
		kBest: math.Inf(1),
		best:  make(candidates, 0, k+1),
	}
	s.visit(t.root, make([]float64, t.fs.Count()))

	out := make([]features.Neighbor, len(s.best))
	copy(out, s.best)
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// search holds the state of a single query.
type search struct {
	fs    features.FeatureSet
	query model.Sample
	k     int
	kBest float64
	best  candidates
}

// visit descends same-side first. bound holds, per axis, the squared distance
// from the query to the nearest split plane crossed on the way to n; its sum
// is a lower bound on the distance to anything below n.
func (s *search) visit(n *Node, bound []float64) {
	if n == nil {
		return
	}
	s.admit(n.Point)

	qv := s.fs.Value(s.query, n.Axis)
	nv := s.fs.Value(n.Point.Sample, n.Axis)
	near, far := n.Right, n.Left
	if qv < nv {
		near, far = n.Left, n.Right
	}
	s.visit(near, bound)

	if far == nil {
		return
	}
	farBound := make([]float64, len(bound))
	copy(farBound, bound)
	farBound[n.Axis] = s.fs.AxialDistance(s.query, n.Point.Sample, n.Axis)
	if floats.Sum(farBound) <= s.kBest {
		s.visit(far, farBound)
	}
}

func (s *search) admit(p IndexedSample) {
	d := s.fs.Distance(s.query, p.Sample)
	if len(s.best) == s.k && d >= s.kBest {
		return
	}
	heap.Push(&s.best, features.Neighbor{Sample: p.Sample, GroundTruthIndex: p.GroundTruthIndex, Distance: d})
	for len(s.best) > s.k {
		heap.Pop(&s.best)
	}
	if len(s.best) == s.k {
		s.kBest = s.best[0].Distance
	}
}

// candidates is a max-heap on distance so the worst neighbour is evicted first.
type candidates []features.Neighbor

func (c candidates) Len() int           { return len(c) }
func (c candidates) Less(i, j int) bool { return c[i].Distance > c[j].Distance }
func (c candidates) Swap(i, j int)      { c[i], c[j] = c[j], c[i] }

func (c *candidates) Push(x any) { *c = append(*c, x.(features.Neighbor)) }

func (c *candidates) Pop() any {
	old := *c
	n := len(old)
	x := old[n-1]
	*c = old[:n-1]
	return x
}
