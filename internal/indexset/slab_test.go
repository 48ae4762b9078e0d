package indexset

import "testing"

func TestSlab_InsertGetRemove(t *testing.T) {
	s := NewSlab[string]()

	ka := s.Insert("a")
	kb := s.Insert("b")

	if v, ok := s.Get(ka); !ok || v != "a" {
		t.Fatalf("expected (a, true), got (%q, %v)", v, ok)
	}

	if s.Len() != 2 {
		t.Fatalf("expected Len() == 2, got %d", s.Len())
	}

	s.Remove(ka)

	if _, ok := s.Get(ka); ok {
		t.Fatalf("expected Get on a removed key to report ok=false")
	}

	if s.Len() != 1 {
		t.Fatalf("expected Len() == 1 after removal, got %d", s.Len())
	}

	if v, ok := s.Get(kb); !ok || v != "b" {
		t.Fatalf("removing ka must not disturb kb, got (%q, %v)", v, ok)
	}
}

func TestSlab_InsertReusesFreedSlot(t *testing.T) {
	s := NewSlab[int]()

	ka := s.Insert(1)
	s.Insert(2)
	s.Remove(ka)

	kc := s.Insert(3)

	if kc.Index() != ka.Index() {
		t.Fatalf("expected the freed slot to be recycled: got new index %d, freed index %d", kc.Index(), ka.Index())
	}

	if v, ok := s.Get(kc); !ok || v != 3 {
		t.Fatalf("expected (3, true) at the recycled slot, got (%d, %v)", v, ok)
	}
}

func TestSlab_GetMutModifiesInPlace(t *testing.T) {
	s := NewSlab[int]()
	k := s.Insert(10)

	if p := s.GetMut(k); p == nil {
		t.Fatalf("expected a non-nil pointer for a live key")
	} else {
		*p = 20
	}

	if v, _ := s.Get(k); v != 20 {
		t.Fatalf("expected GetMut's write to be visible via Get, got %d", v)
	}
}

func TestSlab_GetMutOutOfRangeReturnsNil(t *testing.T) {
	s := NewSlab[int]()

	if p := s.GetMut(SlabKey[int]{}); p != nil {
		t.Fatalf("expected nil for a key into an empty slab")
	}
}
