package mutator

import (
	"math/rand"

	"github.com/orizon-lang/corefuzz/internal/indexset"
)

// discriminatorComplexity is the extra cost attributed to recording which.
// branch of an alternation was chosen, additive with the chosen branch's.
// own complexity per spec.md §4.1 ("alternations report the chosen.
// branch's complexity plus a discriminator term").
const discriminatorComplexity = 1.0

// AlternationMutator picks one of N mutators for the same T and mutates.
// through it, implementing spec.md §4.4's Alternation("picks a branch and.
// mutates through it"). Branches may be weighted (e.g. by grammar author.
// intent); all-equal weights is the common case.
type AlternationMutator[T any] struct {
	Branches []Mutator[T]
	Weights  []float64 // cumulative, nondecreasing, same length as Branches; nil means uniform
}

func NewAlternationMutator[T any](branches []Mutator[T]) *AlternationMutator[T] {
	return &AlternationMutator[T]{Branches: branches}
}

var _ Mutator[int] = (*AlternationMutator[int])(nil)

func (m *AlternationMutator[T]) cumulativeWeights() []float64 {
	if m.Weights != nil {
		return m.Weights
	}

	w := make([]float64, len(m.Branches))

	for i := range w {
		w[i] = float64(i + 1)
	}

	return w
}

type altState struct {
	branch int
	inner  any
}

func (m *AlternationMutator[T]) DefaultArbitraryStep() ArbitraryStep {
	return altState{branch: 0, inner: m.Branches[0].DefaultArbitraryStep()}
}

func (m *AlternationMutator[T]) ValidateValue(v T) (Cache, bool) {
	for i, b := range m.Branches {
		if c, ok := b.ValidateValue(v); ok {
			return altState{branch: i, inner: c}, true
		}
	}

	return nil, false
}

func (m *AlternationMutator[T]) DefaultMutationStep(v T, cache Cache) MutationStep {
	c := cache.(altState)

	return altState{branch: c.branch, inner: m.Branches[c.branch].DefaultMutationStep(v, c.inner)}
}

func (m *AlternationMutator[T]) MinComplexity() float64 {
	best := m.Branches[0].MinComplexity()
	for _, b := range m.Branches[1:] {
		if c := b.MinComplexity(); c < best {
			best = c
		}
	}

	return best + discriminatorComplexity
}

func (m *AlternationMutator[T]) MaxComplexity() float64 {
	worst := m.Branches[0].MaxComplexity()
	for _, b := range m.Branches[1:] {
		if c := b.MaxComplexity(); c > worst {
			worst = c
		}
	}

	return worst + discriminatorComplexity
}

func (m *AlternationMutator[T]) Complexity(v T, cache Cache) float64 {
	c := cache.(altState)

	return m.Branches[c.branch].Complexity(v, c.inner) + discriminatorComplexity
}

func (m *AlternationMutator[T]) OrderedArbitrary(step *ArbitraryStep, maxCplx float64) (T, float64, bool) {
	s := (*step).(altState)

	for s.branch < len(m.Branches) {
		v, cplx, ok := m.Branches[s.branch].OrderedArbitrary(&s.inner, maxCplx-discriminatorComplexity)
		if ok {
			*step = s

			return v, cplx + discriminatorComplexity, true
		}

		s.branch++
		if s.branch < len(m.Branches) {
			s.inner = m.Branches[s.branch].DefaultArbitraryStep()
		}
	}

	*step = s

	var zero T

	return zero, 0, false
}

func (m *AlternationMutator[T]) RandomArbitrary(r *rand.Rand, maxCplx float64) (T, float64) {
	w := m.cumulativeWeights()
	idx := indexset.WeightedIndex(w, r.Float64()*w[len(w)-1])

	v, cplx := m.Branches[idx].RandomArbitrary(r, maxCplx-discriminatorComplexity)

	return v, cplx + discriminatorComplexity
}

func (m *AlternationMutator[T]) OrderedMutate(v *T, cache *Cache, step *MutationStep, maxCplx float64) (UnmutateToken, float64, bool) {
	c := (*cache).(altState)
	s := (*step).(altState)

	if c.branch != s.branch {
		s = altState{branch: c.branch, inner: m.Branches[c.branch].DefaultMutationStep(*v, c.inner)}
	}

	tok, cplx, ok := m.Branches[c.branch].OrderedMutate(v, &c.inner, &s.inner, maxCplx-discriminatorComplexity)
	*cache, *step = c, s

	if !ok {
		return nil, 0, false
	}

	return altState{branch: c.branch, inner: tok}, cplx + discriminatorComplexity, true
}

func (m *AlternationMutator[T]) RandomMutate(r *rand.Rand, v *T, cache *Cache, maxCplx float64) (UnmutateToken, float64) {
	c := (*cache).(altState)

	// Occasionally switch branches entirely (resynthesize from a different.
	// branch), otherwise mutate within the current branch.
	if len(m.Branches) > 1 && r.Intn(8) == 0 {
		w := m.cumulativeWeights()
		newBranch := indexset.WeightedIndex(w, r.Float64()*w[len(w)-1])

		if newBranch != c.branch {
			oldToken := altState{branch: c.branch, inner: *v}

			nv, cplx := m.Branches[newBranch].RandomArbitrary(r, maxCplx-discriminatorComplexity)
			nc, _ := m.Branches[newBranch].ValidateValue(nv)

			*v = nv
			*cache = altState{branch: newBranch, inner: nc}

			return oldToken, cplx + discriminatorComplexity
		}
	}

	tok, cplx := m.Branches[c.branch].RandomMutate(r, v, &c.inner, maxCplx-discriminatorComplexity)
	*cache = c

	return altState{branch: c.branch, inner: tok}, cplx + discriminatorComplexity
}

func (m *AlternationMutator[T]) Unmutate(v *T, cache *Cache, token UnmutateToken) {
	c := (*cache).(altState)
	t := token.(altState)

	if t.branch != c.branch {
		// RandomMutate switched branches wholesale: t.inner holds the.
		// entire prior value, not a delta.
		*v = t.inner.(T)
		*cache = altState{branch: t.branch, inner: func() Cache {
			cc, _ := m.Branches[t.branch].ValidateValue(*v)

			return cc
		}()}

		return
	}

	m.Branches[c.branch].Unmutate(v, &c.inner, t.inner)
	*cache = c
}

func (m *AlternationMutator[T]) VisitSubvalues(v T, cache Cache, visit func(SubValue)) {
	c := cache.(altState)
	m.Branches[c.branch].VisitSubvalues(v, c.inner, visit)
}
