package fuzzloop

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/orizon-lang/corefuzz/internal/coverage"
	"github.com/orizon-lang/corefuzz/internal/mutator"
)

// fakeSensor is a hand-written test double standing in for a real.
// instrumented binary's coverage.Sensor: each call to.
// IterateOverCollectedFeatures replays the next scripted feature batch.
type fakeSensor struct {
	batches  [][]coverage.Feature
	next     int
	clearLog int
}

func (s *fakeSensor) StartRecording() {}
func (s *fakeSensor) StopRecording()  {}
func (s *fakeSensor) Clear()          { s.clearLog++ }
func (s *fakeSensor) FunctionCount() int {
	if s.next >= len(s.batches) {
		return 0
	}

	return 1
}

func (s *fakeSensor) IterateOverCollectedFeatures(functionIndex int, handle func(coverage.Feature)) {
	if s.next >= len(s.batches) {
		return
	}

	for _, f := range s.batches[s.next] {
		handle(f)
	}

	s.next++
}

func testArguments() *Arguments {
	return &Arguments{Command: CommandFuzz, MaxCplx: 100}
}

func TestHarness_RunArbitrary_KeepsOnNovelFeature(t *testing.T) {
	m := mutator.NewIntWithinRangeMutator(0, 1000)
	sensor := &fakeSensor{batches: [][]coverage.Feature{
		{coverage.NewFeature(1, 5)},
	}}

	h := NewHarness[int](m, sensor, testArguments())
	r := rand.New(rand.NewSource(1))

	_, outcome, err := h.RunArbitrary(r, func(int) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome != OutcomeKept {
		t.Fatalf("expected OutcomeKept, got %v", outcome)
	}

	if sensor.clearLog != 1 {
		t.Fatalf("expected Clear to be called once, got %d", sensor.clearLog)
	}

	if h.Pool.Len() != 1 {
		t.Fatalf("expected 1 retained input, got %d", h.Pool.Len())
	}
}

func TestHarness_RunArbitrary_DiscardsOnRepeatedFeature(t *testing.T) {
	m := mutator.NewIntWithinRangeMutator(0, 1000)
	sensor := &fakeSensor{batches: [][]coverage.Feature{
		{coverage.NewFeature(1, 5)},
		{coverage.NewFeature(1, 5)},
	}}

	h := NewHarness[int](m, sensor, testArguments())
	r := rand.New(rand.NewSource(2))

	if _, outcome, _ := h.RunArbitrary(r, func(int) error { return nil }); outcome != OutcomeKept {
		t.Fatalf("expected first run to be kept, got %v", outcome)
	}

	if _, outcome, _ := h.RunArbitrary(r, func(int) error { return nil }); outcome != OutcomeDiscarded {
		t.Fatalf("expected second run (same feature) to be discarded, got %v", outcome)
	}
}

func TestHarness_RunArbitrary_ReportsFailureAndNeverRetainsIt(t *testing.T) {
	m := mutator.NewIntWithinRangeMutator(0, 1000)
	sensor := &fakeSensor{batches: [][]coverage.Feature{
		{coverage.NewFeature(9, 1)},
	}}

	h := NewHarness[int](m, sensor, testArguments())
	r := rand.New(rand.NewSource(3))

	_, outcome, err := h.RunArbitrary(r, func(int) error { return errors.New("boom") })
	if outcome != OutcomeFailed {
		t.Fatalf("expected OutcomeFailed, got %v", outcome)
	}

	if err == nil {
		t.Fatalf("expected a reported error")
	}

	if h.Pool.Len() != 0 {
		t.Fatalf("a failing input must not be retained by the pool")
	}
}

func TestHarness_RunArbitrary_RecoversPanicAsFailure(t *testing.T) {
	m := mutator.NewIntWithinRangeMutator(0, 1000)
	sensor := &fakeSensor{batches: [][]coverage.Feature{{}}}

	h := NewHarness[int](m, sensor, testArguments())
	r := rand.New(rand.NewSource(4))

	_, outcome, err := h.RunArbitrary(r, func(int) error { panic("unexpected") })
	if outcome != OutcomeFailed {
		t.Fatalf("expected OutcomeFailed from a panicking test function, got %v", outcome)
	}

	if err == nil {
		t.Fatalf("expected the panic to be reified as an error")
	}
}

func TestHarness_RunMutation_UnmutatesWhenDiscarded(t *testing.T) {
	m := mutator.NewIntWithinRangeMutator(0, 1000)
	sensor := &fakeSensor{batches: [][]coverage.Feature{
		{coverage.NewFeature(1, 1)}, // seeds the "already seen" set
		{coverage.NewFeature(1, 1)}, // repeated -> discarded -> must unmutate
	}}

	h := NewHarness[int](m, sensor, testArguments())
	r := rand.New(rand.NewSource(5))

	v := 42

	cache, ok := m.ValidateValue(v)
	if !ok {
		t.Fatalf("ValidateValue rejected a valid int")
	}

	if _, _, err := h.RunArbitrary(r, func(int) error { return nil }); err != nil {
		t.Fatalf("seed run: %v", err)
	}

	before := v

	outcome, err := h.RunMutation(r, &v, &cache, func(int) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome != OutcomeDiscarded {
		t.Fatalf("expected OutcomeDiscarded, got %v", outcome)
	}

	if v != before {
		t.Fatalf("discarded mutation was not unmutated: got %d, want %d", v, before)
	}
}
