package indexset

import "testing"

func TestHBitSet_SetAndIsSet(t *testing.T) {
	h := NewHBitSet()

	if h.IsSet(42) {
		t.Fatalf("expected a fresh set to report nothing set")
	}

	h.Set(42)

	if !h.IsSet(42) {
		t.Fatalf("expected index 42 to be set after Set(42)")
	}

	if h.IsSet(41) || h.IsSet(43) {
		t.Fatalf("expected neighboring indices to remain unset")
	}
}

func TestHBitSet_DrainVisitsEveryIndexOnceInOrderAndEmpties(t *testing.T) {
	h := NewHBitSet()

	indices := []int{5, 64, 65, 4095, 4096, 1 << 20}
	for _, i := range indices {
		h.Set(i)
	}

	var drained []int
	h.Drain(func(i int) { drained = append(drained, i) })

	if len(drained) != len(indices) {
		t.Fatalf("expected %d drained indices, got %d: %v", len(indices), len(drained), drained)
	}

	for i, want := range indices {
		if drained[i] != want {
			t.Fatalf("expected ascending drain order %v, got %v", indices, drained)
		}
	}

	for _, i := range indices {
		if h.IsSet(i) {
			t.Fatalf("expected Drain to leave the set empty, but index %d is still set", i)
		}
	}

	var second []int
	h.Drain(func(i int) { second = append(second, i) })

	if len(second) != 0 {
		t.Fatalf("expected a second Drain on an empty set to visit nothing, got %v", second)
	}
}

func TestHBitSet_CapacityMatchesFixedUniverse(t *testing.T) {
	h := NewHBitSet()

	if got := h.Capacity(); got != 1<<30 {
		t.Fatalf("expected Capacity() == 2^30, got %d", got)
	}
}
