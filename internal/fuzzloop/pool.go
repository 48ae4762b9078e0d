package fuzzloop

import (
	"math/rand"

	"github.com/orizon-lang/corefuzz/internal/coverage"
	"github.com/orizon-lang/corefuzz/internal/indexset"
)

// poolEntry is one retained input, paired with the complexity it was.
// produced or mutated at.
type poolEntry[T any] struct {
	Value      T
	Complexity float64
}

// SimplePool is the minimal pool implementation spec.md §1 acknowledges as
// a necessary collaborator without specifying: it keeps any input that
// exercises at least one never-before-seen feature index, and samples
// retained inputs for further mutation weighted toward lower complexity
// (simpler reproductions are cheaper to keep mutating). No novelty
// scoring, replacement policy, or persistence beyond this is attempted —
// spec.md's Non-goals explicitly exclude a specific pool-replacement
// policy.
type SimplePool[T any] struct {
	entries []poolEntry[T]
	seen    *indexset.HBitSet
}

// NewSimplePool returns an empty pool with no features observed yet.
func NewSimplePool[T any]() *SimplePool[T] {
	return &SimplePool[T]{seen: indexset.NewHBitSet()}
}

// Consider marks any feature indices in features not previously observed,.
// and — if at least one was novel — retains v at the given complexity.
// Returns whether v was kept.
func (p *SimplePool[T]) Consider(v T, complexity float64, features []coverage.Feature) bool {
	novel := false

	for _, f := range features {
		idx := int(f.Index)
		if idx >= p.seen.Capacity() {
			continue
		}

		if !p.seen.IsSet(idx) {
			p.seen.Set(idx)
			novel = true
		}
	}

	if novel {
		p.entries = append(p.entries, poolEntry[T]{Value: v, Complexity: complexity})
	}

	return novel
}

// Len returns the number of retained inputs.
func (p *SimplePool[T]) Len() int { return len(p.entries) }

// Entry is one retained input exposed to callers outside this package,.
// paired with the complexity it was kept at.
type Entry[T any] struct {
	Value      T
	Complexity float64
}

// Entries returns every input the pool has retained, e.g. for a driver to.
// persist as an out-corpus once a fuzzing run ends.
func (p *SimplePool[T]) Entries() []Entry[T] {
	out := make([]Entry[T], len(p.entries))
	for i, e := range p.entries {
		out[i] = Entry[T]{Value: e.Value, Complexity: e.Complexity}
	}

	return out
}

// Sample draws a retained input to mutate further, weighted toward lower.
// complexity via internal/indexset.WeightedIndex, per spec.md §4.8.
func (p *SimplePool[T]) Sample(r *rand.Rand) (T, bool) {
	if len(p.entries) == 0 {
		var zero T

		return zero, false
	}

	weights := make([]float64, len(p.entries))

	var cum float64
	for i, e := range p.entries {
		cum += 1.0 / (1.0 + e.Complexity)
		weights[i] = cum
	}

	idx := indexset.WeightedIndex(weights, r.Float64()*weights[len(weights)-1])

	return p.entries[idx].Value, true
}
