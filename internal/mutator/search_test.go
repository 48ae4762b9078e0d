package mutator

import "testing"

func TestBinarySearchArbitraryU32_VisitsEveryValueExactlyOnceAcrossFullRange(t *testing.T) {
	const length = 25

	seen := make(map[uint32]bool)
	for step := uint64(0); step <= length; step++ {
		v := binarySearchArbitraryU32(0, length, step)
		if v > length {
			t.Fatalf("step %d: value %d outside [0,%d]", step, v, length)
		}

		if seen[v] {
			t.Fatalf("step %d: value %d visited twice", step, v)
		}

		seen[v] = true
	}

	if len(seen) != length+1 {
		t.Fatalf("expected %d distinct values, got %d", length+1, len(seen))
	}
}

func TestBinarySearchArbitraryU32_FirstStepIsMidpoint(t *testing.T) {
	if got := binarySearchArbitraryU32(0, 10, 0); got != 5 {
		t.Fatalf("first step = %d, want midpoint 5", got)
	}
}

func TestBinarySearchArbitraryU32_RespectsOffset(t *testing.T) {
	const lo, length = 100, 10

	v := binarySearchArbitraryU32(lo, length, 0)
	if v < lo || v > lo+length {
		t.Fatalf("value %d outside offset range [%d,%d]", v, lo, lo+length)
	}
}

func TestBinarySearchArbitraryU32_StepsPastLengthStayInRange(t *testing.T) {
	const length = 4

	for step := uint64(0); step < length+5; step++ {
		v := binarySearchArbitraryU32(0, length, step)
		if v > length {
			t.Fatalf("step %d: value %d outside [0,%d]", step, v, length)
		}
	}
}
