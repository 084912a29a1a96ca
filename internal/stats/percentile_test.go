package stats

import (
	"math/rand"
	"testing"
)

func TestPercentiles_SingleElement(t *testing.T) {
	got := Percentiles([]float64{100}, DefaultTargets)
	for _, target := range DefaultTargets {
		v := got[target]
		if v == nil {
			t.Fatalf("p%d: expected value, got nil", target)
		}
		if *v != 100 {
			t.Errorf("p%d: expected 100, got %v", target, *v)
		}
	}
}

func TestPercentiles_Empty(t *testing.T) {
	got := Percentiles(nil, DefaultTargets)
	if len(got) != len(DefaultTargets) {
		t.Fatalf("expected %d entries, got %d", len(DefaultTargets), len(got))
	}
	for target, v := range got {
		if v != nil {
			t.Errorf("p%d: expected nil for empty input, got %v", target, *v)
		}
	}
}

func TestPercentiles_NearestRank(t *testing.T) {
	// 10 elements: p50 -> index ceil(0.5*10)-1 = 4, p90 -> 8, p99 -> 9.
	values := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	got := Percentiles(values, DefaultTargets)

	cases := map[int]float64{50: 50, 90: 90, 95: 100, 99: 100}
	for target, want := range cases {
		if *got[target] != want {
			t.Errorf("p%d: expected %v, got %v", target, want, *got[target])
		}
	}
}

func TestPercentiles_Monotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 100; trial++ {
		n := rng.Intn(500) + 1
		values := make([]float64, n)
		max := 0.0
		for i := range values {
			values[i] = rng.Float64() * 1000
			if values[i] > max {
				max = values[i]
			}
		}

		got := Percentiles(values, DefaultTargets)
		p50, p90, p95, p99 := *got[50], *got[90], *got[95], *got[99]
		if p50 > p90 || p90 > p95 || p95 > p99 {
			t.Fatalf("n=%d: percentiles not monotonic: %v %v %v %v", n, p50, p90, p95, p99)
		}
		if p99 > max {
			t.Fatalf("n=%d: p99 %v exceeds max %v", n, p99, max)
		}
	}
}

func TestPercentiles_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Percentiles(values, []int{50})
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input slice was reordered: %v", values)
	}
}
