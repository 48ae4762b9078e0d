package mutator

import (
	"math/rand"
	"testing"
)

func varVecFixture() *VarLenVecMutator[rune] {
	return NewVarLenVecMutator[rune](NewCharWithinRangeMutator('a', 'z'), 1, 5)
}

func TestVarLenVecMutator_RandomArbitraryRespectsLengthBounds(t *testing.T) {
	m := varVecFixture()
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		v, _ := m.RandomArbitrary(r, 100)
		if len(v) < 1 || len(v) > 5 {
			t.Fatalf("length %d outside [1,5]", len(v))
		}

		for _, c := range v {
			if c < 'a' || c > 'z' {
				t.Fatalf("element %q outside range", c)
			}
		}
	}
}

func TestVarLenVecMutator_OrderedArbitraryEnumeratesIncreasingLengths(t *testing.T) {
	m := varVecFixture()
	step := m.DefaultArbitraryStep()

	v, _, ok := m.OrderedArbitrary(&step, 100)
	if !ok {
		t.Fatalf("expected first OrderedArbitrary call to succeed")
	}

	if len(v) != m.MinLen {
		t.Fatalf("expected first length to be MinLen=%d, got %d", m.MinLen, len(v))
	}
}

func TestVarLenVecMutator_ValidateValueRejectsOutOfBoundsLength(t *testing.T) {
	m := varVecFixture()

	if _, ok := m.ValidateValue([]rune{}); ok {
		t.Fatalf("expected an empty slice to be rejected by a min-length-1 mutator")
	}

	if _, ok := m.ValidateValue([]rune{'a', 'a', 'a', 'a', 'a', 'a'}); ok {
		t.Fatalf("expected a 6-element slice to be rejected by a max-length-5 mutator")
	}
}

func TestVarLenVecMutator_RoundTrip(t *testing.T) {
	m := varVecFixture()
	r := rand.New(rand.NewSource(2))

	v, _ := m.RandomArbitrary(r, 100)
	cache, ok := m.ValidateValue(v)

	if !ok {
		t.Fatalf("ValidateValue rejected a synthesized value")
	}

	before := append([]rune(nil), v...)
	tok, _ := m.RandomMutate(r, &v, &cache, 100)
	m.Unmutate(&v, &cache, tok)

	if string(v) != string(before) {
		t.Fatalf("round trip mismatch: got %q, want %q", string(v), string(before))
	}
}

func TestVarLenVecMutator_GrowStaysWithinMaxLen(t *testing.T) {
	m := NewVarLenVecMutator[rune](NewCharWithinRangeMutator('a', 'z'), 0, 1)
	v := []rune{'a'}

	cache, ok := m.ValidateValue(v)
	if !ok {
		t.Fatalf("ValidateValue rejected a valid slice")
	}

	r := rand.New(rand.NewSource(3))

	for i := 0; i < 20; i++ {
		_, _ = m.RandomMutate(r, &v, &cache, 100)
		if len(v) > m.MaxLen {
			t.Fatalf("grew past MaxLen=%d: got length %d", m.MaxLen, len(v))
		}
	}
}

func TestVarLenVecMutator_ShrinkStaysWithinMinLen(t *testing.T) {
	m := NewVarLenVecMutator[rune](NewCharWithinRangeMutator('a', 'z'), 2, 6)
	v := []rune{'a', 'b', 'c', 'd', 'e', 'f'}

	cache, ok := m.ValidateValue(v)
	if !ok {
		t.Fatalf("ValidateValue rejected a valid slice")
	}

	r := rand.New(rand.NewSource(4))

	for i := 0; i < 20; i++ {
		_, _ = m.RandomMutate(r, &v, &cache, 100)
		if len(v) < m.MinLen {
			t.Fatalf("shrank past MinLen=%d: got length %d", m.MinLen, len(v))
		}
	}
}

func TestVarLenVecMutator_OrderedMutateTouchesMoreThanOneElement(t *testing.T) {
	m := NewVarLenVecMutator[rune](NewCharWithinRangeMutator('a', 'z'), 3, 3)
	v := []rune{'a', 'a', 'a'}

	cache, ok := m.ValidateValue(v)
	if !ok {
		t.Fatalf("ValidateValue rejected a valid slice")
	}

	step := m.DefaultMutationStep(v, cache)

	touched := map[int]bool{}

	for i := 0; i < 12; i++ {
		tok, _, ok := m.OrderedMutate(&v, &cache, &step, 100)
		if !ok {
			continue
		}

		touched[tok.(varVecToken).index] = true
	}

	if len(touched) < 2 {
		t.Fatalf("expected OrderedMutate to eventually touch more than one element, touched indices: %v", touched)
	}
}

func TestVarLenVecMutator_PanicsOnInvertedBounds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected NewVarLenVecMutator to panic on minLen > maxLen")
		}
	}()

	NewVarLenVecMutator[rune](NewCharWithinRangeMutator('a', 'z'), 5, 1)
}
