package indexset

import "testing"

func TestWeightedIndex_PicksOwningBucket(t *testing.T) {
	cumulative := []float64{5, 8, 20}

	cases := []struct {
		u    float64
		want int
	}{
		{0, 0},
		{4.99, 0},
		{5, 1},
		{7.99, 1},
		{8, 2},
		{19.99, 2},
	}

	for _, c := range cases {
		if got := WeightedIndex(cumulative, c.u); got != c.want {
			t.Fatalf("WeightedIndex(%v, %v) = %d, want %d", cumulative, c.u, got, c.want)
		}
	}
}

func TestWeightedIndex_SingleBucketAlwaysZero(t *testing.T) {
	cumulative := []float64{1}

	if got := WeightedIndex(cumulative, 0.5); got != 0 {
		t.Fatalf("expected index 0 for a single-bucket distribution, got %d", got)
	}
}
