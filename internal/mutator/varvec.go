package mutator

import "math/rand"

// lengthComplexity is the cost attributed to the element count itself in a.
// variable-length sequence, additive with the per-element complexities per.
// spec.md §4.1's complexity contract ("sequences sum child complexities.
// plus a length term").
const lengthComplexity = 1.0

// VarLenVecMutator repeats a single element mutator to produce a.
// variable-length []T whose length is clamped to [minLen, maxLen].
// Implements spec.md §4.4's Repetition("Repetition(g, lo..hi) -> a.
// variable-length-vector mutator clamped to [lo, hi-1]").
type VarLenVecMutator[T any] struct {
	Elem           Mutator[T]
	MinLen, MaxLen int
}

func NewVarLenVecMutator[T any](elem Mutator[T], minLen, maxLen int) *VarLenVecMutator[T] {
	if minLen < 0 || minLen > maxLen {
		panic("invalid variable-length-vector bounds")
	}

	return &VarLenVecMutator[T]{Elem: elem, MinLen: minLen, MaxLen: maxLen}
}

var _ Mutator[[]int] = (*VarLenVecMutator[int])(nil)

type varVecArbitraryStep struct {
	// length enumerates minLen, minLen+1, ... up to maxLen, after which.
	// OrderedArbitrary reports exhaustion; elemStep is reset for each length.
	length   int
	elemStep ArbitraryStep
}

func (m *VarLenVecMutator[T]) DefaultArbitraryStep() ArbitraryStep {
	return varVecArbitraryStep{length: m.MinLen, elemStep: m.Elem.DefaultArbitraryStep()}
}

func (m *VarLenVecMutator[T]) ValidateValue(v []T) (Cache, bool) {
	if len(v) < m.MinLen || len(v) > m.MaxLen {
		return nil, false
	}

	caches := make([]Cache, len(v))

	for i, e := range v {
		c, ok := m.Elem.ValidateValue(e)
		if !ok {
			return nil, false
		}

		caches[i] = c
	}

	return caches, true
}

type varVecMutationStep struct {
	// kind selects which family of edit OrderedMutate tries next: grow,.
	// shrink, or mutate-in-place, cycled round-robin.
	kind int
	// turn is the element index mutate-in-place edits next, cycled.
	// round-robin across the current length so every slot is eventually.
	// reached by the ordered enumeration.
	turn  int
	elems []MutationStep
}

const (
	varVecKindMutateElem = iota
	varVecKindGrow
	varVecKindShrink
	varVecKindCount
)

func (m *VarLenVecMutator[T]) DefaultMutationStep(v []T, cache Cache) MutationStep {
	caches := cache.([]Cache)
	steps := make([]MutationStep, len(v))

	for i := range v {
		steps[i] = m.Elem.DefaultMutationStep(v[i], caches[i])
	}

	return varVecMutationStep{kind: 0, elems: steps}
}

func (m *VarLenVecMutator[T]) MinComplexity() float64 {
	return lengthComplexity + float64(m.MinLen)*m.Elem.MinComplexity()
}

func (m *VarLenVecMutator[T]) MaxComplexity() float64 {
	return lengthComplexity + float64(m.MaxLen)*m.Elem.MaxComplexity()
}

func (m *VarLenVecMutator[T]) Complexity(v []T, cache Cache) float64 {
	caches := cache.([]Cache)

	total := lengthComplexity
	for i, e := range v {
		total += m.Elem.Complexity(e, caches[i])
	}

	return total
}

func (m *VarLenVecMutator[T]) OrderedArbitrary(step *ArbitraryStep, maxCplx float64) ([]T, float64, bool) {
	if maxCplx < m.MinComplexity() {
		return nil, 0, false
	}

	s := (*step).(varVecArbitraryStep)
	if s.length > m.MaxLen {
		return nil, 0, false
	}

	out := make([]T, s.length)
	remaining := maxCplx - lengthComplexity
	total := lengthComplexity

	for i := 0; i < s.length; i++ {
		v, cplx, ok := m.Elem.OrderedArbitrary(&s.elemStep, remaining)
		if !ok {
			// Can't fill this length within budget; advance to the next.
			// length and let the caller retry.
			s.length++
			s.elemStep = m.Elem.DefaultArbitraryStep()
			*step = s

			return m.OrderedArbitrary(step, maxCplx)
		}

		out[i] = v
		total += cplx
		remaining -= cplx
	}

	s.length++
	s.elemStep = m.Elem.DefaultArbitraryStep()
	*step = s

	return out, total, true
}

func (m *VarLenVecMutator[T]) RandomArbitrary(r *rand.Rand, maxCplx float64) ([]T, float64) {
	span := m.MaxLen - m.MinLen + 1
	length := m.MinLen + r.Intn(span)

	budget := maxCplx - lengthComplexity
	if budget < 0 {
		budget = 0
	}

	out := make([]T, length)
	total := lengthComplexity

	for i := 0; i < length; i++ {
		remaining := budget
		if length-i > 0 {
			remaining = budget / float64(length-i)
		}

		v, cplx := m.Elem.RandomArbitrary(r, remaining)
		out[i] = v
		total += cplx
		budget -= cplx

		if budget < 0 {
			budget = 0
		}
	}

	return out, total
}

type varVecToken struct {
	kind int
	// for mutate-in-place.
	index int
	inner UnmutateToken
	// for grow: the inserted element's index and value, to remove on undo.
	// for shrink: the removed element's index and value, to reinsert on undo.
	elemIndex int
	elemValue any
	elemCache Cache
}

func (m *VarLenVecMutator[T]) OrderedMutate(v *[]T, cache *Cache, step *MutationStep, maxCplx float64) (UnmutateToken, float64, bool) {
	caches := (*cache).([]Cache)
	s := (*step).(varVecMutationStep)

	for attempts := 0; attempts < varVecKindCount; attempts++ {
		kind := s.kind
		s.kind = (s.kind + 1) % varVecKindCount

		switch kind {
		case varVecKindMutateElem:
			if len(*v) == 0 {
				continue
			}

			i := s.turn % len(*v)
			s.turn = (i + 1) % len(*v)

			slot := (*v)[i]
			tok, _, ok := m.Elem.OrderedMutate(&slot, &caches[i], &s.elems[i], maxCplx)

			if !ok {
				continue
			}

			(*v)[i] = slot
			*cache, *step = caches, s

			return varVecToken{kind: varVecKindMutateElem, index: i, inner: tok}, m.Complexity(*v, caches), true
		case varVecKindGrow:
			if len(*v) >= m.MaxLen {
				continue
			}

			freshStep := m.Elem.DefaultArbitraryStep()

			elemVal, elemCplx, ok := m.Elem.OrderedArbitrary(&freshStep, maxCplx)
			if !ok {
				continue
			}

			elemCache, ok := m.Elem.ValidateValue(elemVal)
			if !ok {
				continue
			}

			idx := len(*v)
			*v = append(*v, elemVal)
			caches = append(caches, elemCache)
			*cache, *step = caches, s

			return varVecToken{kind: varVecKindGrow, elemIndex: idx}, m.Complexity(*v, caches) + elemCplx, true
		case varVecKindShrink:
			if len(*v) <= m.MinLen || len(*v) == 0 {
				continue
			}

			idx := len(*v) - 1
			removedVal := (*v)[idx]
			removedCache := caches[idx]
			*v = (*v)[:idx]
			caches = caches[:idx]
			*cache, *step = caches, s

			return varVecToken{kind: varVecKindShrink, elemIndex: idx, elemValue: removedVal, elemCache: removedCache}, m.Complexity(*v, caches), true
		}
	}

	*step = s

	return nil, 0, false
}

func (m *VarLenVecMutator[T]) RandomMutate(r *rand.Rand, v *[]T, cache *Cache, maxCplx float64) (UnmutateToken, float64) {
	caches := (*cache).([]Cache)

	choice := 0
	if len(*v) > m.MinLen && len(*v) < m.MaxLen {
		choice = r.Intn(3)
	} else if len(*v) <= m.MinLen {
		choice = r.Intn(2) // mutate or grow
		if choice == 1 && len(*v) < m.MaxLen {
			choice = varVecKindGrow
		} else {
			choice = varVecKindMutateElem
		}
	} else {
		choice = r.Intn(2)
		if choice == 1 {
			choice = varVecKindShrink
		}
	}

	switch choice {
	case varVecKindGrow:
		elemVal, elemCplx := m.Elem.RandomArbitrary(r, maxCplx)
		elemCache, _ := m.Elem.ValidateValue(elemVal)
		idx := len(*v)
		*v = append(*v, elemVal)
		caches = append(caches, elemCache)
		*cache = caches

		return varVecToken{kind: varVecKindGrow, elemIndex: idx}, m.Complexity(*v, caches) + elemCplx
	case varVecKindShrink:
		idx := len(*v) - 1
		removedVal := (*v)[idx]
		removedCache := caches[idx]
		*v = (*v)[:idx]
		caches = caches[:idx]
		*cache = caches

		return varVecToken{kind: varVecKindShrink, elemIndex: idx, elemValue: removedVal, elemCache: removedCache}, m.Complexity(*v, caches)
	default:
		if len(*v) == 0 {
			return varVecToken{kind: varVecKindMutateElem}, m.Complexity(*v, caches)
		}

		i := r.Intn(len(*v))
		slot := (*v)[i]
		tok, _ := m.Elem.RandomMutate(r, &slot, &caches[i], maxCplx)
		(*v)[i] = slot
		*cache = caches

		return varVecToken{kind: varVecKindMutateElem, index: i, inner: tok}, m.Complexity(*v, caches)
	}
}

func (m *VarLenVecMutator[T]) Unmutate(v *[]T, cache *Cache, token UnmutateToken) {
	caches := (*cache).([]Cache)
	t := token.(varVecToken)

	switch t.kind {
	case varVecKindMutateElem:
		if len(*v) == 0 {
			break
		}

		slot := (*v)[t.index]
		m.Elem.Unmutate(&slot, &caches[t.index], t.inner)
		(*v)[t.index] = slot
	case varVecKindGrow:
		*v = (*v)[:t.elemIndex]
		caches = caches[:t.elemIndex]
	case varVecKindShrink:
		*v = append(*v, t.elemValue.(T))
		caches = append(caches, t.elemCache)
	}

	*cache = caches
}

func (m *VarLenVecMutator[T]) VisitSubvalues(v []T, cache Cache, visit func(SubValue)) {
	caches := cache.([]Cache)
	for i, e := range v {
		m.Elem.VisitSubvalues(e, caches[i], visit)
	}
}
