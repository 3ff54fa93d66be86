package kdtree

import (
	"math/rand/v2"

	"github.com/kilianp07/powersplit/core/features"
	"github.com/kilianp07/powersplit/core/model"
)

// IndexedSample pairs a historical sample with its offset in the parallel
// ground-truth power series.
type IndexedSample struct {
	Sample           model.Sample
	GroundTruthIndex int
}

// Node is one split of the tree. Every sample in Left has a feature value on
// Axis strictly below the node's own value; every sample in Right has a value
// greater or equal.
type Node struct {
	Point IndexedSample
	Axis  int
	Left  *Node
	Right *Node
}

// Tree is an immutable k-d tree over IndexedSamples.
type Tree struct {
	root *Node
	fs   features.FeatureSet
	size int
}

// Option configures tree construction.
type Option func(*options)

type options struct {
	rng *rand.Rand
}

// WithSeed makes pivot selection, and therefore the tree shape, reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithRand uses r for pivot selection.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// New builds a tree over points. The input slice is not modified.
func New(points []IndexedSample, fs features.FeatureSet, opts ...Option) *Tree {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	cp := make([]IndexedSample, len(points))
	copy(cp, points)
	b := builder{fs: fs, rng: o.rng}
	return &Tree{root: b.build(cp, 0), fs: fs, size: len(cp)}
}

type builder struct {
	fs  features.FeatureSet
	rng *rand.Rand
}

// build partitions points in place; each recursion owns a disjoint sub-slice.
func (b builder) build(points []IndexedSample, depth int) *Node {
	axis := depth % b.fs.Count()
	switch len(points) {
	case 0:
		return nil
	case 1:
		return &Node{Point: points[0], Axis: axis}
	}
	m := Select(points, len(points)/2, axis, b.fs, b.rng)
	m = b.lowestEqual(points, m, axis)
	return &Node{
		Point: points[m],
		Axis:  axis,
		Left:  b.build(points[:m], depth+1),
		Right: b.build(points[m+1:], depth+1),
	}
}

// lowestEqual moves the elements of points[:m] that share the value of
// points[m] to the end of that prefix and returns the index of the first one,
// so everything left of the returned index is strictly smaller.
func (b builder) lowestEqual(points []IndexedSample, m, axis int) int {
	v := b.fs.Value(points[m].Sample, axis)
	end := m
	for i := m - 1; i >= 0; i-- {
		if b.fs.Value(points[i].Sample, axis) == v {
			end--
			points[i], points[end] = points[end], points[i]
		}
	}
	return end
}

// Root returns the root node, nil for an empty tree.
func (t *Tree) Root() *Node { return t.root }

// Len returns the number of indexed samples.
func (t *Tree) Len() int { return t.size }

// FeatureSet returns the feature set the tree was built with.
func (t *Tree) FeatureSet() features.FeatureSet { return t.fs }

// Depth returns the number of levels of the tree.
func (t *Tree) Depth() int {
	var deepest int
	t.Walk(func(_ *Node, depth int) bool {
		if depth+1 > deepest {
			deepest = depth + 1
		}
		return true
	})
	return deepest
}

// Walk visits nodes depth-first in pre-order. Returning false from fn skips
// the node's children.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	walk(t.root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	walk(n.Left, depth+1, fn)
	walk(n.Right, depth+1, fn)
}
