package kdtree

import (
	"math/rand/v2"

	"github.com/kilianp07/powersplit/core/features"
)

// Select reorders points so that points[k] holds the element that would sit
// at index k if points were sorted by axis, and returns k. Elements before k
// have a smaller or equal value; elements after it have a greater or equal
// value. Expected running time is linear.
func Select(points []IndexedSample, k, axis int, fs features.FeatureSet, rng *rand.Rand) int {
	left, right := 0, len(points)-1
	for {
		pivot := left + rng.IntN(right-left+1)
		pivot = partition(points, left, right, pivot, axis, fs)
		switch {
		case k == pivot:
			return k
		case k < pivot:
			right = pivot - 1
		default:
			left = pivot + 1
		}
	}
}

// partition moves every element strictly below the pivot value in front of
// it and returns the pivot's final index.
func partition(points []IndexedSample, left, right, pivot, axis int, fs features.FeatureSet) int {
	pv := fs.Value(points[pivot].Sample, axis)
	points[pivot], points[right] = points[right], points[pivot]
	store := left
	for i := left; i < right; i++ {
		if fs.Value(points[i].Sample, axis) < pv {
			points[store], points[i] = points[i], points[store]
			store++
		}
	}
	points[right], points[store] = points[store], points[right]
	return store
}
