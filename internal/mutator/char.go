package mutator

import (
	"math/rand"

	corefuzzerrors "github.com/orizon-lang/corefuzz/internal/errors"
)

// charConstantComplexity is the reported cost of any char value: fuzzcheck-rs.
// uses a flat 8.0 rather than scaling with the range size.
const charConstantComplexity = 8.0

// CharWithinRangeMutator mutates rune values drawn from a closed range.
// [start, start+len]. Surrogate code points (which cannot form a valid rune).
// are skipped by advancing the step, per spec.md §4.3.
type CharWithinRangeMutator struct {
	start uint32
	len   uint32
}

// NewCharWithinRangeMutator builds a mutator over the closed range.
// [lo, hi] (inclusive on both ends, matching Rust's RangeInclusive<char>).
// It panics if lo > hi, mirroring the teacher's fail-fast constructors in.
// internal/errors.
func NewCharWithinRangeMutator(lo, hi rune) *CharWithinRangeMutator {
	if lo > hi {
		panic(corefuzzerrors.ConstructionFailure("char range start exceeds end",
			map[string]any{"lo": lo, "hi": hi}))
	}

	return &CharWithinRangeMutator{start: uint32(lo), len: uint32(hi) - uint32(lo)}
}

var _ Mutator[rune] = (*CharWithinRangeMutator)(nil)

func (m *CharWithinRangeMutator) DefaultArbitraryStep() ArbitraryStep { return uint64(0) }

func (m *CharWithinRangeMutator) ValidateValue(v rune) (Cache, bool) {
	u := uint32(v)
	if u < m.start || u > m.start+m.len {
		return nil, false
	}

	return struct{}{}, true
}

func (m *CharWithinRangeMutator) DefaultMutationStep(v rune, cache Cache) MutationStep {
	return uint64(0)
}

func (m *CharWithinRangeMutator) MinComplexity() float64 { return charConstantComplexity }
func (m *CharWithinRangeMutator) MaxComplexity() float64 { return charConstantComplexity }

func (m *CharWithinRangeMutator) Complexity(v rune, cache Cache) float64 {
	return charConstantComplexity
}

func (m *CharWithinRangeMutator) OrderedArbitrary(step *ArbitraryStep, maxCplx float64) (rune, float64, bool) {
	if maxCplx < m.MinComplexity() {
		return 0, 0, false
	}

	s := (*step).(uint64)

	for s <= uint64(m.len) {
		candidate := m.start + binarySearchArbitraryU32(0, m.len, s)
		s++

		if r, ok := validRune(candidate); ok {
			*step = s

			return r, charConstantComplexity, true
		}
	}

	*step = s

	return 0, 0, false
}

func (m *CharWithinRangeMutator) RandomArbitrary(r *rand.Rand, maxCplx float64) (rune, float64) {
	for {
		candidate := m.start + uint32(r.Int63n(int64(m.len)+1))
		if v, ok := validRune(candidate); ok {
			return v, charConstantComplexity
		}
	}
}

func (m *CharWithinRangeMutator) OrderedMutate(v *rune, cache *Cache, step *MutationStep, maxCplx float64) (UnmutateToken, float64, bool) {
	if maxCplx < m.MinComplexity() {
		return nil, 0, false
	}

	s := (*step).(uint64)
	token := *v

	for s <= uint64(m.len) {
		candidate := m.start + binarySearchArbitraryU32(0, m.len, s)
		s++

		if r, ok := validRune(candidate); ok && r != *v {
			*step = s
			*v = r

			return token, charConstantComplexity, true
		}
	}

	*step = s

	return nil, 0, false
}

func (m *CharWithinRangeMutator) RandomMutate(r *rand.Rand, v *rune, cache *Cache, maxCplx float64) (UnmutateToken, float64) {
	token := *v
	nv, _ := m.RandomArbitrary(r, maxCplx)
	*v = nv

	return token, charConstantComplexity
}

func (m *CharWithinRangeMutator) Unmutate(v *rune, cache *Cache, token UnmutateToken) {
	*v = token.(rune)
}

func (m *CharWithinRangeMutator) VisitSubvalues(v rune, cache Cache, visit func(SubValue)) {}

// validRune reports whether u is both in range for rune (<=0x10FFFF) and not.
// a UTF-16 surrogate code point (which cannot be a valid Unicode scalar.
// value and therefore cannot round-trip through a Go rune/string).
func validRune(u uint32) (rune, bool) {
	if u > 0x10FFFF {
		return 0, false
	}

	if u >= 0xD800 && u <= 0xDFFF {
		return 0, false
	}

	return rune(u), true
}
