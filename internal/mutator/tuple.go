package mutator

import "math/rand"

// Pair is a simple two-field product value, the result type of Tuple2Mutator.
type Pair[A, B any] struct {
	First  A
	Second B
}

// tuple2Cache bundles each field's cache under its own key so OrderedMutate.
// can pick a field to edit independently of the other.
type tuple2Cache struct {
	first, second Cache
}

type tuple2MutationStep struct {
	// which field OrderedMutate should try next: 0 = first, 1 = second.
	turn          int
	first, second MutationStep
}

type tuple2UnmutateToken struct {
	field         int
	first, second any
}

// Tuple2Mutator composes two independent mutators into a product-type.
// mutator over Pair[A, B], generalizing the "tuple" composite of spec.md §1.
// item C3 beyond the grammar's homogeneous fixed-length-vector case.
type Tuple2Mutator[A, B any] struct {
	First  Mutator[A]
	Second Mutator[B]
}

func NewTuple2Mutator[A, B any](first Mutator[A], second Mutator[B]) *Tuple2Mutator[A, B] {
	return &Tuple2Mutator[A, B]{First: first, Second: second}
}

var _ Mutator[Pair[int, int]] = (*Tuple2Mutator[int, int])(nil)

func (m *Tuple2Mutator[A, B]) DefaultArbitraryStep() ArbitraryStep {
	return [2]ArbitraryStep{m.First.DefaultArbitraryStep(), m.Second.DefaultArbitraryStep()}
}

func (m *Tuple2Mutator[A, B]) ValidateValue(v Pair[A, B]) (Cache, bool) {
	fc, ok := m.First.ValidateValue(v.First)
	if !ok {
		return nil, false
	}

	sc, ok := m.Second.ValidateValue(v.Second)
	if !ok {
		return nil, false
	}

	return tuple2Cache{first: fc, second: sc}, true
}

func (m *Tuple2Mutator[A, B]) DefaultMutationStep(v Pair[A, B], cache Cache) MutationStep {
	c := cache.(tuple2Cache)

	return tuple2MutationStep{
		turn:   0,
		first:  m.First.DefaultMutationStep(v.First, c.first),
		second: m.Second.DefaultMutationStep(v.Second, c.second),
	}
}

func (m *Tuple2Mutator[A, B]) MinComplexity() float64 {
	return m.First.MinComplexity() + m.Second.MinComplexity()
}

func (m *Tuple2Mutator[A, B]) MaxComplexity() float64 {
	return m.First.MaxComplexity() + m.Second.MaxComplexity()
}

func (m *Tuple2Mutator[A, B]) Complexity(v Pair[A, B], cache Cache) float64 {
	c := cache.(tuple2Cache)

	return m.First.Complexity(v.First, c.first) + m.Second.Complexity(v.Second, c.second)
}

func (m *Tuple2Mutator[A, B]) OrderedArbitrary(step *ArbitraryStep, maxCplx float64) (Pair[A, B], float64, bool) {
	if maxCplx < m.MinComplexity() {
		var zero Pair[A, B]

		return zero, 0, false
	}

	s := (*step).([2]ArbitraryStep)

	first, fc, ok := m.First.OrderedArbitrary(&s[0], maxCplx)
	if !ok {
		var zero Pair[A, B]

		return zero, 0, false
	}

	second, sc, ok := m.Second.OrderedArbitrary(&s[1], maxCplx-fc)
	if !ok {
		var zero Pair[A, B]

		return zero, 0, false
	}

	*step = s

	return Pair[A, B]{First: first, Second: second}, fc + sc, true
}

func (m *Tuple2Mutator[A, B]) RandomArbitrary(r *rand.Rand, maxCplx float64) (Pair[A, B], float64) {
	budget := maxCplx / 2

	first, fc := m.First.RandomArbitrary(r, budget)
	second, sc := m.Second.RandomArbitrary(r, maxCplx-fc)

	return Pair[A, B]{First: first, Second: second}, fc + sc
}

func (m *Tuple2Mutator[A, B]) OrderedMutate(v *Pair[A, B], cache *Cache, step *MutationStep, maxCplx float64) (UnmutateToken, float64, bool) {
	c := (*cache).(tuple2Cache)
	s := (*step).(tuple2MutationStep)

	for attempts := 0; attempts < 2; attempts++ {
		if s.turn == 0 {
			tok, cplx, ok := m.First.OrderedMutate(&v.First, &c.first, &s.first, maxCplx)
			s.turn = 1
			*cache, *step = c, s

			if ok {
				otherCplx := m.Second.Complexity(v.Second, c.second)

				return tuple2UnmutateToken{field: 0, first: tok}, cplx + otherCplx, true
			}
		} else {
			tok, cplx, ok := m.Second.OrderedMutate(&v.Second, &c.second, &s.second, maxCplx)
			s.turn = 0
			*cache, *step = c, s

			if ok {
				otherCplx := m.First.Complexity(v.First, c.first)

				return tuple2UnmutateToken{field: 1, second: tok}, cplx + otherCplx, true
			}
		}
	}

	return nil, 0, false
}

func (m *Tuple2Mutator[A, B]) RandomMutate(r *rand.Rand, v *Pair[A, B], cache *Cache, maxCplx float64) (UnmutateToken, float64) {
	c := (*cache).(tuple2Cache)

	if r.Intn(2) == 0 {
		tok, cplx := m.First.RandomMutate(r, &v.First, &c.first, maxCplx)
		*cache = c

		return tuple2UnmutateToken{field: 0, first: tok}, cplx + m.Second.Complexity(v.Second, c.second)
	}

	tok, cplx := m.Second.RandomMutate(r, &v.Second, &c.second, maxCplx)
	*cache = c

	return tuple2UnmutateToken{field: 1, second: tok}, cplx + m.First.Complexity(v.First, c.first)
}

func (m *Tuple2Mutator[A, B]) Unmutate(v *Pair[A, B], cache *Cache, token UnmutateToken) {
	c := (*cache).(tuple2Cache)
	t := token.(tuple2UnmutateToken)

	if t.field == 0 {
		m.First.Unmutate(&v.First, &c.first, t.first)
	} else {
		m.Second.Unmutate(&v.Second, &c.second, t.second)
	}

	*cache = c
}

func (m *Tuple2Mutator[A, B]) VisitSubvalues(v Pair[A, B], cache Cache, visit func(SubValue)) {
	c := cache.(tuple2Cache)
	m.First.VisitSubvalues(v.First, c.first, visit)
	m.Second.VisitSubvalues(v.Second, c.second, visit)
}
