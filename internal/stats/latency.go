package stats

import (
	"time"

	"github.com/FairForge/loadreport/internal/results"
)

// LatencyStats describes one latency distribution in milliseconds. Pointer
// fields are null for an empty distribution.
type LatencyStats struct {
	Count int64    `json:"count"`
	MinMs *float64 `json:"min_ms"`
	MaxMs *float64 `json:"max_ms"`
	AvgMs *float64 `json:"avg_ms"`
	P50Ms *float64 `json:"p50_ms"`
	P90Ms *float64 `json:"p90_ms"`
	P95Ms *float64 `json:"p95_ms"`
	P99Ms *float64 `json:"p99_ms"`
}

// latencyMillis extracts latency values in milliseconds, preserving input
// order.
func latencyMillis(outcomes []results.RequestOutcome) []float64 {
	values := make([]float64, len(outcomes))
	for i, o := range outcomes {
		values[i] = durationMillis(o.Latency)
	}
	return values
}

func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// newLatencyStats reduces a millisecond series into LatencyStats.
func newLatencyStats(values []float64) LatencyStats {
	stats := LatencyStats{Count: int64(len(values))}
	if len(values) == 0 {
		return stats
	}

	min, max, sum := values[0], values[0], 0.0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	stats.MinMs = fptr(min)
	stats.MaxMs = fptr(max)
	stats.AvgMs = fptr(sum / float64(len(values)))

	pct := Percentiles(values, DefaultTargets)
	stats.P50Ms = pct[50]
	stats.P90Ms = pct[90]
	stats.P95Ms = pct[95]
	stats.P99Ms = pct[99]
	return stats
}
