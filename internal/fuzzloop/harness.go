package fuzzloop

import (
	"fmt"
	"math/rand"

	"github.com/orizon-lang/corefuzz/internal/coverage"
	corefuzzerrors "github.com/orizon-lang/corefuzz/internal/errors"
	"github.com/orizon-lang/corefuzz/internal/mutator"
)

// Outcome classifies one Harness iteration.
type Outcome int

const (
	OutcomeDiscarded Outcome = iota
	OutcomeKept
	OutcomeFailed
)

// TestFunc is the user function under test: it consumes one synthesized or.
// mutated value and reports failure via a non-nil error (a panic is also.
// treated as failure; see runGuarded).
type TestFunc[T any] func(v T) error

// Harness ties one mutator, one sensor, and one pool together into the.
// clear→execute→drain→keep-or-unmutate loop described in spec.md §2's Data.
// flow paragraph.
type Harness[T any] struct {
	Mutator mutator.Mutator[T]
	Sensor  Sensor
	Pool    *SimplePool[T]
	Args    *Arguments
}

// NewHarness builds a Harness with a fresh, empty pool.
func NewHarness[T any](m mutator.Mutator[T], s Sensor, args *Arguments) *Harness[T] {
	return &Harness[T]{Mutator: m, Sensor: s, Pool: NewSimplePool[T](), Args: args}
}

// RunArbitrary synthesizes a fresh value via random_arbitrary, executes fn.
// under it, and feeds the observed features to the pool.
func (h *Harness[T]) RunArbitrary(r *rand.Rand, fn TestFunc[T]) (T, Outcome, error) {
	v, cplx := h.Mutator.RandomArbitrary(r, h.Args.MaxCplx)
	outcome, err := h.execute(v, cplx, fn)

	return v, outcome, err
}

// RunMutation edits *v in place via random_mutate, executes fn, and — if.
// the mutated value was not kept by the pool — calls unmutate to restore.
// the prior value cheaply, per spec.md §2's Data flow paragraph.
func (h *Harness[T]) RunMutation(r *rand.Rand, v *T, cache *mutator.Cache, fn TestFunc[T]) (Outcome, error) {
	token, cplx := h.Mutator.RandomMutate(r, v, cache, h.Args.MaxCplx)

	outcome, err := h.execute(*v, cplx, fn)
	if outcome != OutcomeKept {
		h.Mutator.Unmutate(v, cache, token)
	}

	return outcome, err
}

// RunSeed executes fn under a value loaded from a seed corpus (rather than.
// synthesized or mutated), feeding its features to the pool exactly like.
// RunArbitrary. ok is false when v fails ValidateValue.
func (h *Harness[T]) RunSeed(v T, fn TestFunc[T]) (outcome Outcome, err error, ok bool) {
	cache, ok := h.Mutator.ValidateValue(v)
	if !ok {
		return OutcomeDiscarded, nil, false
	}

	outcome, err = h.execute(v, h.Mutator.Complexity(v, cache), fn)

	return outcome, err, true
}

func (h *Harness[T]) execute(v T, complexity float64, fn TestFunc[T]) (Outcome, error) {
	h.Sensor.Clear()
	h.Sensor.StartRecording()

	testErr := runGuarded(fn, v)

	h.Sensor.StopRecording()

	var features []coverage.Feature

	for i := 0; i < h.Sensor.FunctionCount(); i++ {
		h.Sensor.IterateOverCollectedFeatures(i, func(f coverage.Feature) {
			features = append(features, f)
		})
	}

	if testErr != nil {
		return OutcomeFailed, testErr
	}

	if h.Pool.Consider(v, complexity, features) {
		return OutcomeKept, nil
	}

	return OutcomeDiscarded, nil
}

// runGuarded recovers a panic raised by fn and reifies it as a.
// *errors.StandardError test failure, per spec.md §7 kind 5 ("the user
// function panics or exits nonzero").
func runGuarded[T any](fn TestFunc[T], v T) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = corefuzzerrors.TestFailure(fmt.Sprintf("panic: %v", rec), nil)
		}
	}()

	return fn(v)
}
