package mutator

import (
	"math/rand"

	corefuzzerrors "github.com/orizon-lang/corefuzz/internal/errors"
)

// FixedLenVecMutator composes one mutator per slot into a product mutator.
// over a fixed-length []T, implementing spec.md §4.4's Concatenation.
// ("Concatenation(gs) -> a fixed-length-vector mutator over child mutators").
type FixedLenVecMutator[T any] struct {
	Elems []Mutator[T]
}

func NewFixedLenVecMutator[T any](elems []Mutator[T]) *FixedLenVecMutator[T] {
	return &FixedLenVecMutator[T]{Elems: elems}
}

var _ Mutator[[]int] = (*FixedLenVecMutator[int])(nil)

func (m *FixedLenVecMutator[T]) DefaultArbitraryStep() ArbitraryStep {
	steps := make([]ArbitraryStep, len(m.Elems))
	for i, e := range m.Elems {
		steps[i] = e.DefaultArbitraryStep()
	}

	return steps
}

func (m *FixedLenVecMutator[T]) ValidateValue(v []T) (Cache, bool) {
	if len(v) != len(m.Elems) {
		return nil, false
	}

	caches := make([]Cache, len(m.Elems))

	for i, e := range m.Elems {
		c, ok := e.ValidateValue(v[i])
		if !ok {
			return nil, false
		}

		caches[i] = c
	}

	return caches, true
}

func (m *FixedLenVecMutator[T]) DefaultMutationStep(v []T, cache Cache) MutationStep {
	caches := cache.([]Cache)
	steps := make([]MutationStep, len(m.Elems))

	for i, e := range m.Elems {
		steps[i] = e.DefaultMutationStep(v[i], caches[i])
	}

	return fixedVecStep{turn: 0, steps: steps}
}

func (m *FixedLenVecMutator[T]) MinComplexity() float64 {
	var total float64
	for _, e := range m.Elems {
		total += e.MinComplexity()
	}

	return total
}

func (m *FixedLenVecMutator[T]) MaxComplexity() float64 {
	var total float64
	for _, e := range m.Elems {
		total += e.MaxComplexity()
	}

	return total
}

func (m *FixedLenVecMutator[T]) Complexity(v []T, cache Cache) float64 {
	caches := cache.([]Cache)

	var total float64
	for i, e := range m.Elems {
		total += e.Complexity(v[i], caches[i])
	}

	return total
}

func (m *FixedLenVecMutator[T]) OrderedArbitrary(step *ArbitraryStep, maxCplx float64) ([]T, float64, bool) {
	if maxCplx < m.MinComplexity() {
		return nil, 0, false
	}

	steps := (*step).([]ArbitraryStep)
	out := make([]T, len(m.Elems))
	remaining := maxCplx
	var total float64

	for i, e := range m.Elems {
		v, cplx, ok := e.OrderedArbitrary(&steps[i], remaining)
		if !ok {
			return nil, 0, false
		}

		out[i] = v
		total += cplx
		remaining -= cplx
	}

	*step = steps

	return out, total, true
}

func (m *FixedLenVecMutator[T]) RandomArbitrary(r *rand.Rand, maxCplx float64) ([]T, float64) {
	out := make([]T, len(m.Elems))
	remaining := maxCplx

	if len(m.Elems) == 0 {
		return out, 0
	}

	var total float64

	for i, e := range m.Elems {
		budget := remaining / float64(len(m.Elems)-i)

		v, cplx := e.RandomArbitrary(r, budget)
		out[i] = v
		total += cplx
		remaining -= cplx

		if remaining < 0 {
			remaining = 0
		}
	}

	return out, total
}

type fixedVecStep struct {
	turn  int
	steps []MutationStep
}

type fixedVecToken struct {
	index int
	inner UnmutateToken
}

func (m *FixedLenVecMutator[T]) OrderedMutate(v *[]T, cache *Cache, step *MutationStep, maxCplx float64) (UnmutateToken, float64, bool) {
	caches := (*cache).([]Cache)
	s := (*step).(fixedVecStep)

	if len(m.Elems) == 0 {
		return nil, 0, false
	}

	for attempts := 0; attempts < len(m.Elems); attempts++ {
		i := s.turn
		s.turn = (s.turn + 1) % len(m.Elems)

		slot := (*v)[i]
		tok, cplx, ok := m.Elems[i].OrderedMutate(&slot, &caches[i], &s.steps[i], maxCplx)

		if ok {
			(*v)[i] = slot
			*cache, *step = caches, s

			other := m.Complexity(*v, caches) - m.Elems[i].Complexity(slot, caches[i])

			return fixedVecToken{index: i, inner: tok}, cplx + other, true
		}
	}

	*step = s

	return nil, 0, false
}

func (m *FixedLenVecMutator[T]) RandomMutate(r *rand.Rand, v *[]T, cache *Cache, maxCplx float64) (UnmutateToken, float64) {
	caches := (*cache).([]Cache)
	i := r.Intn(len(m.Elems))

	slot := (*v)[i]
	tok, cplx := m.Elems[i].RandomMutate(r, &slot, &caches[i], maxCplx)
	(*v)[i] = slot
	*cache = caches

	other := m.Complexity(*v, caches) - m.Elems[i].Complexity(slot, caches[i])

	return fixedVecToken{index: i, inner: tok}, cplx + other
}

func (m *FixedLenVecMutator[T]) Unmutate(v *[]T, cache *Cache, token UnmutateToken) {
	caches := (*cache).([]Cache)
	t := token.(fixedVecToken)

	if t.index < 0 || t.index >= len(m.Elems) {
		panic(corefuzzerrors.VariantMismatch("FixedLenVecMutator.Unmutate"))
	}

	slot := (*v)[t.index]
	m.Elems[t.index].Unmutate(&slot, &caches[t.index], t.inner)
	(*v)[t.index] = slot
	*cache = caches
}

func (m *FixedLenVecMutator[T]) VisitSubvalues(v []T, cache Cache, visit func(SubValue)) {
	caches := cache.([]Cache)
	for i, e := range m.Elems {
		e.VisitSubvalues(v[i], caches[i], visit)
	}
}
