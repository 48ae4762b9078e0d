package mutator

import (
	"math"
	"math/rand"
	"testing"
)

// buildNestedParens wires a RecursiveMutator/RecurToMutator pair into a
// minimal self-referential grammar over []rune: either a single 'x' leaf,
// or a nested '(' ... ')' pair wrapping a recursive occurrence of itself —
// the same construction discipline internal/grammar's Recursive/Recurse
// nodes compile down to.
func buildNestedParens() *RecursiveMutator[[]rune] {
	rec := NewRecursiveMutator[[]rune]()
	recurTo := NewRecurToMutator[[]rune](rec)

	leaf := NewFixedLenVecMutator[rune]([]Mutator[rune]{NewCharWithinRangeMutator('x', 'x')})

	wrapped := &wrapParensMutator{inner: recurTo}

	alt := NewAlternationMutator[[]rune]([]Mutator[[]rune]{leaf, wrapped})
	// Heavily favor the terminating leaf branch: nothing in AlternationMutator
	// bounds recursion by budget on its own, so an even split would make
	// random synthesis of this self-referential fixture recurse unboundedly
	// on an unlucky draw.
	alt.Weights = []float64{19, 20}

	rec.Inner = alt

	return rec
}

// wrapParensMutator is a test-only adapter that prepends '(' and appends
// ')' around whatever its inner mutator produces, so recursion terminates
// and is observable through the yielded value's own structure without
// depending on internal/grammar.
type wrapParensMutator struct {
	inner Mutator[[]rune]
}

var _ Mutator[[]rune] = (*wrapParensMutator)(nil)

func (w *wrapParensMutator) DefaultArbitraryStep() ArbitraryStep { return w.inner.DefaultArbitraryStep() }

func (w *wrapParensMutator) ValidateValue(v []rune) (Cache, bool) {
	if len(v) < 2 || v[0] != '(' || v[len(v)-1] != ')' {
		return nil, false
	}

	return w.inner.ValidateValue(v[1 : len(v)-1])
}

func (w *wrapParensMutator) DefaultMutationStep(v []rune, cache Cache) MutationStep {
	return w.inner.DefaultMutationStep(v[1:len(v)-1], cache)
}

func (w *wrapParensMutator) MinComplexity() float64 { return w.inner.MinComplexity() + 2 }
func (w *wrapParensMutator) MaxComplexity() float64 { return w.inner.MaxComplexity() + 2 }

func (w *wrapParensMutator) Complexity(v []rune, cache Cache) float64 {
	return w.inner.Complexity(v[1:len(v)-1], cache) + 2
}

func (w *wrapParensMutator) OrderedArbitrary(step *ArbitraryStep, maxCplx float64) ([]rune, float64, bool) {
	inner, cplx, ok := w.inner.OrderedArbitrary(step, maxCplx-2)
	if !ok {
		return nil, 0, false
	}

	out := append([]rune{'('}, inner...)
	out = append(out, ')')

	return out, cplx + 2, true
}

func (w *wrapParensMutator) RandomArbitrary(r *rand.Rand, maxCplx float64) ([]rune, float64) {
	inner, cplx := w.inner.RandomArbitrary(r, maxCplx-2)
	out := append([]rune{'('}, inner...)
	out = append(out, ')')

	return out, cplx + 2
}

func (w *wrapParensMutator) OrderedMutate(v *[]rune, cache *Cache, step *MutationStep, maxCplx float64) (UnmutateToken, float64, bool) {
	inner := (*v)[1 : len(*v)-1]

	tok, cplx, ok := w.inner.OrderedMutate(&inner, cache, step, maxCplx-2)
	if !ok {
		return nil, 0, false
	}

	*v = append(append([]rune{'('}, inner...), ')')

	return tok, cplx + 2, true
}

func (w *wrapParensMutator) RandomMutate(r *rand.Rand, v *[]rune, cache *Cache, maxCplx float64) (UnmutateToken, float64) {
	inner := (*v)[1 : len(*v)-1]
	tok, cplx := w.inner.RandomMutate(r, &inner, cache, maxCplx-2)
	*v = append(append([]rune{'('}, inner...), ')')

	return tok, cplx + 2
}

func (w *wrapParensMutator) Unmutate(v *[]rune, cache *Cache, token UnmutateToken) {
	inner := (*v)[1 : len(*v)-1]
	w.inner.Unmutate(&inner, cache, token)
	*v = append(append([]rune{'('}, inner...), ')')
}

func (w *wrapParensMutator) VisitSubvalues(v []rune, cache Cache, visit func(SubValue)) {
	w.inner.VisitSubvalues(v[1:len(v)-1], cache, visit)
}

func TestRecursiveMutator_PanicsWhenInnerUnassigned(t *testing.T) {
	rec := NewRecursiveMutator[int]()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected an unassigned RecursiveMutator to panic")
		}
	}()

	rec.MinComplexity()
}

func TestRecursiveMutator_MinComplexityBreaksCycleWithInfinity(t *testing.T) {
	rec := buildNestedParens()

	min := rec.MinComplexity()
	if math.IsInf(min, 1) {
		t.Fatalf("expected a finite MinComplexity (leaf branch bounds it), got +Inf")
	}
}

func TestRecursiveMutator_RandomArbitraryTerminatesWithinBudget(t *testing.T) {
	rec := buildNestedParens()
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		v, cplx := rec.RandomArbitrary(r, 40)
		if len(v) == 0 {
			t.Fatalf("expected a non-empty synthesized value")
		}

		if cplx > 40 {
			t.Fatalf("synthesized value exceeded the complexity budget: %v > 40", cplx)
		}
	}
}

func TestRecursiveMutator_RoundTrip(t *testing.T) {
	rec := buildNestedParens()
	r := rand.New(rand.NewSource(2))

	v, _ := rec.RandomArbitrary(r, 40)
	cache, ok := rec.ValidateValue(v)

	if !ok {
		t.Fatalf("ValidateValue rejected a synthesized value")
	}

	before := append([]rune(nil), v...)
	tok, _ := rec.RandomMutate(r, &v, &cache, 40)
	rec.Unmutate(&v, &cache, tok)

	if string(v) != string(before) {
		t.Fatalf("round trip mismatch: got %q, want %q", string(v), string(before))
	}
}

func TestRecurToMutator_ForwardsToTarget(t *testing.T) {
	rec := buildNestedParens()
	recurTo := NewRecurToMutator[[]rune](rec)

	if recurTo.MinComplexity() != rec.MinComplexity() {
		t.Fatalf("RecurToMutator.MinComplexity diverged from its target")
	}

	if recurTo.MaxComplexity() != rec.MaxComplexity() {
		t.Fatalf("RecurToMutator.MaxComplexity diverged from its target")
	}
}
