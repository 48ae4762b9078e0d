package mutator

// binarySearchArbitraryU32 visits the integers in the closed interval.
// [lo, lo+length] in a breadth-first midpoint order: step 0 yields the.
// midpoint of the whole interval, then the midpoints of the left and right.
// halves, then the midpoints of their halves, and so on. This covers the.
// range uniformly at every prefix length instead of favoring one end, which.
// is what lets CharWithinRangeMutator.OrderedArbitrary produce a.
// distance-preserving enumeration.
//
// step is 0-indexed; values beyond length are simply additional (repeated.
// once every value has been visited) breadth-first pops — callers are.
// expected to stop requesting steps past `length` on their own (see.
// CharWithinRangeMutator, which bounds step by len_range).
func binarySearchArbitraryU32(lo, length uint32, step uint64) uint32 {
	type interval struct{ lo, hi uint32 }

	queue := []interval{{lo, lo + length}}

	var mid uint32

	for i := uint64(0); i <= step; i++ {
		iv := queue[0]
		queue = queue[1:]

		mid = iv.lo + (iv.hi-iv.lo)/2

		if mid > iv.lo {
			queue = append(queue, interval{iv.lo, mid - 1})
		}

		if mid < iv.hi {
			queue = append(queue, interval{mid + 1, iv.hi})
		}

		if len(queue) == 0 {
			// Every value in [lo, lo+length] has been visited; keep.
			// yielding the last midpoint so callers that mis-advance past.
			// the bound still get a valid in-range value rather than.
			// indexing an empty queue.
			queue = append(queue, interval{iv.lo, iv.hi})
		}
	}

	return mid
}
