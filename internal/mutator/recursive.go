package mutator

import (
	"math"
	"math/rand"

	corefuzzerrors "github.com/orizon-lang/corefuzz/internal/errors"
)

// RecursiveMutator owns the body mutator of a self-referential grammar.
// production. Its Inner field starts nil and is assigned once the body has.
// finished building — any RecurToMutator created in the meantime only holds.
// a pointer back to this RecursiveMutator, not to Inner directly, so the.
// cycle is safe to construct even though Inner isn't ready yet. Go's GC.
// handles the resulting reference cycle directly (no Rc/Weak distinction is.
// needed), but we keep the same two-type split as the original so the.
// "register before recursing" construction discipline of spec.md §4.4/§9 is.
// visible in the types.
type RecursiveMutator[T any] struct {
	Inner Mutator[T]

	// Computing MinComplexity/MaxComplexity naively recurses forever on a.
	// cyclic grammar (a Recursive body reached through its own Recurse.
	// leaf). These guards break the cycle: a re-entrant probe reports.
	// +Inf, so it never wins a min() and correctly drives a max() to.
	// +Inf (an unbounded recursive structure has no static upper bound).
	computingMin, computingMax bool
	cachedMin, cachedMax       float64
	minSet, maxSet             bool
}

// NewRecursiveMutator allocates an empty handle. Callers must assign Inner.
// before any operation is invoked on it or on a RecurToMutator built from it.
func NewRecursiveMutator[T any]() *RecursiveMutator[T] {
	return &RecursiveMutator[T]{}
}

var _ Mutator[int] = (*RecursiveMutator[int])(nil)

func (m *RecursiveMutator[T]) mustInner() Mutator[T] {
	if m.Inner == nil {
		panic(corefuzzerrors.ConstructionFailure("recursive mutator used before its body was assigned", nil))
	}

	return m.Inner
}

func (m *RecursiveMutator[T]) DefaultArbitraryStep() ArbitraryStep {
	return m.mustInner().DefaultArbitraryStep()
}

func (m *RecursiveMutator[T]) ValidateValue(v T) (Cache, bool) {
	return m.mustInner().ValidateValue(v)
}

func (m *RecursiveMutator[T]) DefaultMutationStep(v T, cache Cache) MutationStep {
	return m.mustInner().DefaultMutationStep(v, cache)
}

func (m *RecursiveMutator[T]) MinComplexity() float64 {
	if m.minSet {
		return m.cachedMin
	}

	if m.computingMin {
		return math.Inf(1)
	}

	m.computingMin = true
	v := m.mustInner().MinComplexity()
	m.computingMin = false
	m.cachedMin = v
	m.minSet = true

	return v
}

func (m *RecursiveMutator[T]) MaxComplexity() float64 {
	if m.maxSet {
		return m.cachedMax
	}

	if m.computingMax {
		return math.Inf(1)
	}

	m.computingMax = true
	v := m.mustInner().MaxComplexity()
	m.computingMax = false
	m.cachedMax = v
	m.maxSet = true

	return v
}

func (m *RecursiveMutator[T]) Complexity(v T, cache Cache) float64 {
	return m.mustInner().Complexity(v, cache)
}

func (m *RecursiveMutator[T]) OrderedArbitrary(step *ArbitraryStep, maxCplx float64) (T, float64, bool) {
	return m.mustInner().OrderedArbitrary(step, maxCplx)
}

func (m *RecursiveMutator[T]) RandomArbitrary(r *rand.Rand, maxCplx float64) (T, float64) {
	return m.mustInner().RandomArbitrary(r, maxCplx)
}

func (m *RecursiveMutator[T]) OrderedMutate(v *T, cache *Cache, step *MutationStep, maxCplx float64) (UnmutateToken, float64, bool) {
	return m.mustInner().OrderedMutate(v, cache, step, maxCplx)
}

func (m *RecursiveMutator[T]) RandomMutate(r *rand.Rand, v *T, cache *Cache, maxCplx float64) (UnmutateToken, float64) {
	return m.mustInner().RandomMutate(r, v, cache, maxCplx)
}

func (m *RecursiveMutator[T]) Unmutate(v *T, cache *Cache, token UnmutateToken) {
	m.mustInner().Unmutate(v, cache, token)
}

func (m *RecursiveMutator[T]) VisitSubvalues(v T, cache Cache, visit func(SubValue)) {
	m.mustInner().VisitSubvalues(v, cache, visit)
}

// RecurToMutator is a leaf placed at a Grammar's Recurse site. It forwards.
// every operation to the ancestor RecursiveMutator's body, resolved at call.
// time (by which point construction has completed and Target.Inner is set).
// The complexity budget passed through OrderedArbitrary/RandomArbitrary does.
// not bound recursion depth: AlternationMutator picks branches by weight.
// alone, so a random synthesis recurses for as long as recursive branches.
// keep being drawn, and its complexity can exceed the budget.
type RecurToMutator[T any] struct {
	Target *RecursiveMutator[T]
}

func NewRecurToMutator[T any](target *RecursiveMutator[T]) *RecurToMutator[T] {
	return &RecurToMutator[T]{Target: target}
}

var _ Mutator[int] = (*RecurToMutator[int])(nil)

func (m *RecurToMutator[T]) DefaultArbitraryStep() ArbitraryStep {
	return m.Target.DefaultArbitraryStep()
}

func (m *RecurToMutator[T]) ValidateValue(v T) (Cache, bool) { return m.Target.ValidateValue(v) }

func (m *RecurToMutator[T]) DefaultMutationStep(v T, cache Cache) MutationStep {
	return m.Target.DefaultMutationStep(v, cache)
}

func (m *RecurToMutator[T]) MinComplexity() float64 { return m.Target.MinComplexity() }
func (m *RecurToMutator[T]) MaxComplexity() float64 { return m.Target.MaxComplexity() }

func (m *RecurToMutator[T]) Complexity(v T, cache Cache) float64 {
	return m.Target.Complexity(v, cache)
}

func (m *RecurToMutator[T]) OrderedArbitrary(step *ArbitraryStep, maxCplx float64) (T, float64, bool) {
	return m.Target.OrderedArbitrary(step, maxCplx)
}

func (m *RecurToMutator[T]) RandomArbitrary(r *rand.Rand, maxCplx float64) (T, float64) {
	return m.Target.RandomArbitrary(r, maxCplx)
}

func (m *RecurToMutator[T]) OrderedMutate(v *T, cache *Cache, step *MutationStep, maxCplx float64) (UnmutateToken, float64, bool) {
	return m.Target.OrderedMutate(v, cache, step, maxCplx)
}

func (m *RecurToMutator[T]) RandomMutate(r *rand.Rand, v *T, cache *Cache, maxCplx float64) (UnmutateToken, float64) {
	return m.Target.RandomMutate(r, v, cache, maxCplx)
}

func (m *RecurToMutator[T]) Unmutate(v *T, cache *Cache, token UnmutateToken) {
	m.Target.Unmutate(v, cache, token)
}

func (m *RecurToMutator[T]) VisitSubvalues(v T, cache Cache, visit func(SubValue)) {
	m.Target.VisitSubvalues(v, cache, visit)
}
