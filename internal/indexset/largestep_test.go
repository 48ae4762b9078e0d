package indexset

import "testing"

func TestLargeStepFindIter_FindsLowerBoundAndAdvances(t *testing.T) {
	xs := []int{1, 3, 5, 7, 9, 11, 13, 15, 17, 19, 21}
	it := NewLargeStepFindIter(xs)

	target := func(v int) func(int) Ordering {
		return func(e int) Ordering {
			switch {
			case e < v:
				return Less
			case e > v:
				return Greater
			default:
				return Equal
			}
		}
	}

	v, ok := it.Find(target(7))
	if !ok || v != 7 {
		t.Fatalf("expected to find 7, got (%d, %v)", v, ok)
	}

	v, ok = it.Find(target(8))
	if !ok || v != 9 {
		t.Fatalf("expected the lower bound for 8 to be 9, got (%d, %v)", v, ok)
	}

	v, ok = it.Find(target(21))
	if !ok || v != 21 {
		t.Fatalf("expected to find the last element 21, got (%d, %v)", v, ok)
	}
}

func TestLargeStepFindIter_TargetPastEndReportsNotFound(t *testing.T) {
	xs := []int{1, 2, 3}
	it := NewLargeStepFindIter(xs)

	if _, ok := it.Find(func(e int) Ordering {
		if e < 100 {
			return Less
		}

		return Equal
	}); ok {
		t.Fatalf("expected no match for a target past every element")
	}
}

func TestLargeStepFindIter_ResetRewindsCursor(t *testing.T) {
	xs := []int{1, 2, 3, 4, 5}
	it := NewLargeStepFindIter(xs)

	cmp := func(v int) func(int) Ordering {
		return func(e int) Ordering {
			switch {
			case e < v:
				return Less
			case e > v:
				return Greater
			default:
				return Equal
			}
		}
	}

	if _, ok := it.Find(cmp(4)); !ok {
		t.Fatalf("expected to find 4")
	}

	it.Reset()

	v, ok := it.Find(cmp(1))
	if !ok || v != 1 {
		t.Fatalf("expected Reset to allow re-finding 1 from the start, got (%d, %v)", v, ok)
	}
}

func TestLargeStepFindIter_StepsPastFirstLeapWindow(t *testing.T) {
	xs := make([]int, 100)
	for i := range xs {
		xs[i] = i
	}

	it := NewLargeStepFindIter(xs)

	v, ok := it.Find(func(e int) Ordering {
		if e < 50 {
			return Less
		}

		return Equal
	})

	if !ok || v != 50 {
		t.Fatalf("expected to find 50 past several leap windows, got (%d, %v)", v, ok)
	}
}
