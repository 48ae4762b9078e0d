package indexset

import "sort"

// WeightedIndex returns the smallest index i such that w[i] > u, given a.
// nondecreasing cumulative-weight slice w and a draw u in [0, w[len(w)-1]).
// Equivalently, with w[-1] defined as 0, it returns the i satisfying.
// w[i-1] <= u < w[i] (spec.md §4.8, invariant 5).
//
// Implemented as a binary search that treats w[i] <= u as "too small, keep.
// looking right" and w[i] > u as "this index qualifies, but an earlier one.
// might too" — i.e. the standard insertion-point search for the first.
// element strictly greater than u.
func WeightedIndex(w []float64, u float64) int {
	return sort.Search(len(w), func(i int) bool {
		return w[i] > u
	})
}
