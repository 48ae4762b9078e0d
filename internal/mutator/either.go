package mutator

import (
	"math/rand"

	corefuzzerrors "github.com/orizon-lang/corefuzz/internal/errors"
)

// eitherVariant tags which of a pair of mutators produced a given piece of.
// per-value state (Cache, MutationStep, ArbitraryStep or UnmutateToken).
type eitherVariant int

const (
	variantLeft eitherVariant = iota
	variantRight
)

// eitherState is the shared shape for Either's four associated-type.
// parallels: a tag plus the wrapped concrete state from whichever mutator.
// produced it.
type eitherState struct {
	variant eitherVariant
	inner   any
}

// Either composes two Mutator[T] implementations for the same T into a.
// single sum-of-mutators. Every operation dispatches on the active variant.
// and requires the companion cache/step/token to carry a matching tag;.
// mismatches are a program defect surfaced via internal/errors.
type Either[T any] struct {
	Left  Mutator[T]
	Right Mutator[T]
}

var _ Mutator[int] = (*Either[int])(nil)

func NewEither[T any](left, right Mutator[T]) *Either[T] {
	return &Either[T]{Left: left, Right: right}
}

func (e *Either[T]) DefaultArbitraryStep() ArbitraryStep {
	return eitherState{variant: variantLeft, inner: e.Left.DefaultArbitraryStep()}
}

func (e *Either[T]) ValidateValue(v T) (Cache, bool) {
	if c, ok := e.Left.ValidateValue(v); ok {
		return eitherState{variant: variantLeft, inner: c}, true
	}

	if c, ok := e.Right.ValidateValue(v); ok {
		return eitherState{variant: variantRight, inner: c}, true
	}

	return nil, false
}

func (e *Either[T]) DefaultMutationStep(v T, cache Cache) MutationStep {
	c := cache.(eitherState)
	switch c.variant {
	case variantLeft:
		return eitherState{variant: variantLeft, inner: e.Left.DefaultMutationStep(v, c.inner)}
	case variantRight:
		return eitherState{variant: variantRight, inner: e.Right.DefaultMutationStep(v, c.inner)}
	default:
		panic(corefuzzerrors.VariantMismatch("Either.DefaultMutationStep"))
	}
}

func (e *Either[T]) MinComplexity() float64 {
	return min2(e.Left.MinComplexity(), e.Right.MinComplexity())
}

func (e *Either[T]) MaxComplexity() float64 {
	return max2(e.Left.MaxComplexity(), e.Right.MaxComplexity())
}

func (e *Either[T]) Complexity(v T, cache Cache) float64 {
	c := cache.(eitherState)
	switch c.variant {
	case variantLeft:
		return e.Left.Complexity(v, c.inner)
	case variantRight:
		return e.Right.Complexity(v, c.inner)
	default:
		panic(corefuzzerrors.VariantMismatch("Either.Complexity"))
	}
}

func (e *Either[T]) OrderedArbitrary(step *ArbitraryStep, maxCplx float64) (T, float64, bool) {
	s := (*step).(eitherState)

	switch s.variant {
	case variantLeft:
		v, cplx, ok := e.Left.OrderedArbitrary(&s.inner, maxCplx)
		*step = s

		return v, cplx, ok
	case variantRight:
		v, cplx, ok := e.Right.OrderedArbitrary(&s.inner, maxCplx)
		*step = s

		return v, cplx, ok
	default:
		panic(corefuzzerrors.VariantMismatch("Either.OrderedArbitrary"))
	}
}

func (e *Either[T]) RandomArbitrary(r *rand.Rand, maxCplx float64) (T, float64) {
	if r.Intn(2) == 0 {
		return e.Left.RandomArbitrary(r, maxCplx)
	}

	return e.Right.RandomArbitrary(r, maxCplx)
}

func (e *Either[T]) OrderedMutate(v *T, cache *Cache, step *MutationStep, maxCplx float64) (UnmutateToken, float64, bool) {
	c := (*cache).(eitherState)
	s := (*step).(eitherState)

	if c.variant != s.variant {
		panic(corefuzzerrors.VariantMismatch("Either.OrderedMutate"))
	}

	switch c.variant {
	case variantLeft:
		tok, cplx, ok := e.Left.OrderedMutate(v, &c.inner, &s.inner, maxCplx)
		*cache, *step = c, s

		if !ok {
			return nil, 0, false
		}

		return eitherState{variant: variantLeft, inner: tok}, cplx, true
	case variantRight:
		tok, cplx, ok := e.Right.OrderedMutate(v, &c.inner, &s.inner, maxCplx)
		*cache, *step = c, s

		if !ok {
			return nil, 0, false
		}

		return eitherState{variant: variantRight, inner: tok}, cplx, true
	default:
		panic(corefuzzerrors.VariantMismatch("Either.OrderedMutate"))
	}
}

func (e *Either[T]) RandomMutate(r *rand.Rand, v *T, cache *Cache, maxCplx float64) (UnmutateToken, float64) {
	c := (*cache).(eitherState)

	switch c.variant {
	case variantLeft:
		tok, cplx := e.Left.RandomMutate(r, v, &c.inner, maxCplx)
		*cache = c

		return eitherState{variant: variantLeft, inner: tok}, cplx
	case variantRight:
		tok, cplx := e.Right.RandomMutate(r, v, &c.inner, maxCplx)
		*cache = c

		return eitherState{variant: variantRight, inner: tok}, cplx
	default:
		panic(corefuzzerrors.VariantMismatch("Either.RandomMutate"))
	}
}

func (e *Either[T]) Unmutate(v *T, cache *Cache, token UnmutateToken) {
	c := (*cache).(eitherState)
	t := token.(eitherState)

	if c.variant != t.variant {
		panic(corefuzzerrors.VariantMismatch("Either.Unmutate"))
	}

	switch c.variant {
	case variantLeft:
		e.Left.Unmutate(v, &c.inner, t.inner)
	case variantRight:
		e.Right.Unmutate(v, &c.inner, t.inner)
	default:
		panic(corefuzzerrors.VariantMismatch("Either.Unmutate"))
	}

	*cache = c
}

func (e *Either[T]) VisitSubvalues(v T, cache Cache, visit func(SubValue)) {
	c := cache.(eitherState)

	switch c.variant {
	case variantLeft:
		e.Left.VisitSubvalues(v, c.inner, visit)
	case variantRight:
		e.Right.VisitSubvalues(v, c.inner, visit)
	default:
		panic(corefuzzerrors.VariantMismatch("Either.VisitSubvalues"))
	}
}

func min2(a, b float64) float64 {
	if a < b {
		return a
	}

	return b
}

func max2(a, b float64) float64 {
	if a > b {
		return a
	}

	return b
}
