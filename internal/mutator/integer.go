package mutator

import "math/rand"

// intConstantComplexity mirrors CharWithinRangeMutator's flat cost: a.
// bounded integer reports a fixed number of bits regardless of range width.
const intConstantComplexity = 8.0

// IntWithinRangeMutator mutates int values drawn from a closed range.
// [lo, hi]. It is the "bounded scalar" sibling of CharWithinRangeMutator.
// (spec.md §1 item 1).
type IntWithinRangeMutator struct {
	lo, hi int
}

func NewIntWithinRangeMutator(lo, hi int) *IntWithinRangeMutator {
	if lo > hi {
		panic("int range start exceeds end")
	}

	return &IntWithinRangeMutator{lo: lo, hi: hi}
}

var _ Mutator[int] = (*IntWithinRangeMutator)(nil)

func (m *IntWithinRangeMutator) DefaultArbitraryStep() ArbitraryStep { return uint64(0) }

func (m *IntWithinRangeMutator) ValidateValue(v int) (Cache, bool) {
	if v < m.lo || v > m.hi {
		return nil, false
	}

	return struct{}{}, true
}

func (m *IntWithinRangeMutator) DefaultMutationStep(v int, cache Cache) MutationStep {
	return uint64(0)
}

func (m *IntWithinRangeMutator) MinComplexity() float64 { return intConstantComplexity }
func (m *IntWithinRangeMutator) MaxComplexity() float64 { return intConstantComplexity }
func (m *IntWithinRangeMutator) Complexity(v int, cache Cache) float64 {
	return intConstantComplexity
}

func (m *IntWithinRangeMutator) length() uint32 {
	return uint32(m.hi - m.lo)
}

func (m *IntWithinRangeMutator) OrderedArbitrary(step *ArbitraryStep, maxCplx float64) (int, float64, bool) {
	if maxCplx < m.MinComplexity() {
		return 0, 0, false
	}

	s := (*step).(uint64)
	if s > uint64(m.length()) {
		return 0, 0, false
	}

	v := m.lo + int(binarySearchArbitraryU32(0, m.length(), s))
	*step = s + 1

	return v, intConstantComplexity, true
}

func (m *IntWithinRangeMutator) RandomArbitrary(r *rand.Rand, maxCplx float64) (int, float64) {
	span := int64(m.hi-m.lo) + 1

	return m.lo + int(r.Int63n(span)), intConstantComplexity
}

func (m *IntWithinRangeMutator) OrderedMutate(v *int, cache *Cache, step *MutationStep, maxCplx float64) (UnmutateToken, float64, bool) {
	if maxCplx < m.MinComplexity() {
		return nil, 0, false
	}

	s := (*step).(uint64)
	token := *v

	for s <= uint64(m.length()) {
		candidate := m.lo + int(binarySearchArbitraryU32(0, m.length(), s))
		s++

		if candidate != *v {
			*step = s
			*v = candidate

			return token, intConstantComplexity, true
		}
	}

	*step = s

	return nil, 0, false
}

func (m *IntWithinRangeMutator) RandomMutate(r *rand.Rand, v *int, cache *Cache, maxCplx float64) (UnmutateToken, float64) {
	token := *v
	nv, _ := m.RandomArbitrary(r, maxCplx)
	*v = nv

	return token, intConstantComplexity
}

func (m *IntWithinRangeMutator) Unmutate(v *int, cache *Cache, token UnmutateToken) {
	*v = token.(int)
}

func (m *IntWithinRangeMutator) VisitSubvalues(v int, cache Cache, visit func(SubValue)) {}
