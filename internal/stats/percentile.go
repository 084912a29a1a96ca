// Package stats turns a MergedDataset into an immutable Summary: aggregate
// counters, latency distributions, per-ecosystem breakdowns, a contiguous
// time-bucketed timeline, and per-host resource summaries. Everything here
// is a pure function of its inputs so a report can be regenerated from the
// same dataset and come out bit-identical.
package stats

import (
	"math"
	"sort"
)

// DefaultTargets are the percentile ranks reported in summaries.
var DefaultTargets = []int{50, 90, 95, 99}

// Percentiles computes nearest-rank percentiles over values. The input is
// not modified. Nearest-rank picks an existing element (index
// ceil(p/100*n)-1, clamped), so results are deterministic and free of
// interpolation artifacts. Empty input yields nil for every target.
func Percentiles(values []float64, targets []int) map[int]*float64 {
	out := make(map[int]*float64, len(targets))
	if len(values) == 0 {
		for _, t := range targets {
			out[t] = nil
		}
		return out
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	for _, t := range targets {
		idx := int(math.Ceil(float64(t)/100*float64(n))) - 1
		if idx < 0 {
			idx = 0
		}
		if idx >= n {
			idx = n - 1
		}
		out[t] = fptr(sorted[idx])
	}
	return out
}

// fptr returns a pointer to v. Nil pointers mark indeterminate values in
// the summary; JSON renders them as null rather than a misleading zero.
func fptr(v float64) *float64 {
	return &v
}

// ratio returns num/den, or nil when the denominator is zero.
func ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	return fptr(num / den)
}

func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return fptr(sum / float64(len(values)))
}
