// Package mutator implements the polymorphic typed-mutation contract:
// producing, mutating, and unmutating values of some domain type T.
//
// Rust's fuzzcheck expresses this as a trait with four associated types
// (Cache, MutationStep, ArbitraryStep, UnmutateToken) per mutator impl. Go
// has no associated types, and a five-type-parameter generic interface
// buys nothing here — concrete mutators already have to type-assert their
// own state out of composite wrappers (Either, the AST mutator tree), so we
// collapse those four associated types to `any` and keep the interface
// generic only over the value type T.
package mutator

import "math/rand"

// Cache holds derived state for a specific T value, precomputed facts used.
// by mutation. Concrete type chosen by each Mutator implementation.
type Cache = any

// MutationStep is a per-value progress cursor, advanced by each OrderedMutate.
type MutationStep = any

// ArbitraryStep is a global progress cursor for ordered synthesis, independent.
// of any value.
type ArbitraryStep = any

// UnmutateToken is the minimum diff needed to restore a value after.
// OrderedMutate or RandomMutate.
type UnmutateToken = any

// SubValue is a sub-value of some T discovered by VisitSubvalues, paired.
// with its complexity. Other mutators may use it to build a corpus of.
// candidate replacement values.
type SubValue struct {
	Value      any
	Complexity float64
}

// Mutator produces, mutates, and unmutates values of type T.
//
// Implementations must uphold the round-trip law: for every (v, cache) with.
// cache, ok := ValidateValue(v) and ok, and every mutation.
// (tok, _) := RandomMutate(r, &v, &cache, maxCplx), the subsequent.
// Unmutate(&v, &cache, tok) must restore v and cache to their prior,.
// bit-equivalent state.
type Mutator[T any] interface {
	// DefaultArbitraryStep returns a fresh synthesis cursor.
	DefaultArbitraryStep() ArbitraryStep

	// ValidateValue accepts exactly the values this mutator recognizes,.
	// returning a Cache consistent with v when it does.
	ValidateValue(v T) (Cache, bool)

	// DefaultMutationStep returns a cursor for ordered edits of v.
	DefaultMutationStep(v T, cache Cache) MutationStep

	// MinComplexity is a static lower bound on Complexity, used by callers.
	// to honor a max_cplx budget before attempting synthesis.
	MinComplexity() float64

	// MaxComplexity is a static upper bound on Complexity.
	MaxComplexity() float64

	// Complexity reports the current cost of v.
	Complexity(v T, cache Cache) float64

	// OrderedArbitrary deterministically enumerates the search space.
	// (step advances in place). Returns ok=false when step is exhausted or.
	// MinComplexity() exceeds maxCplx.
	OrderedArbitrary(step *ArbitraryStep, maxCplx float64) (T, float64, bool)

	// RandomArbitrary stochastically synthesizes a value; always succeeds.
	RandomArbitrary(r *rand.Rand, maxCplx float64) (T, float64)

	// OrderedMutate deterministically edits v in place, advancing step.
	// Returns ok=false when step is exhausted.
	OrderedMutate(v *T, cache *Cache, step *MutationStep, maxCplx float64) (UnmutateToken, float64, bool)

	// RandomMutate stochastically edits v in place.
	RandomMutate(r *rand.Rand, v *T, cache *Cache, maxCplx float64) (UnmutateToken, float64)

	// Unmutate is the infallible inverse of the most recent mutation.
	Unmutate(v *T, cache *Cache, token UnmutateToken)

	// VisitSubvalues enumerates addressable sub-values of v with their.
	// complexities, for cross-mutator borrowing.
	VisitSubvalues(v T, cache Cache, visit func(SubValue))
}
