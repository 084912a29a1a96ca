package stats

import (
	"time"

	"github.com/FairForge/loadreport/internal/results"
)

// Counters is the `summary` group: run-level totals and rates. Rate fields
// are null when their denominator is zero (a zero-duration run has no
// meaningful RPS, it is not "zero requests per second").
type Counters struct {
	TestStart       time.Time        `json:"test_start"`
	TestEnd         time.Time        `json:"test_end"`
	DurationSeconds float64          `json:"duration_seconds"`
	TotalRequests   int64            `json:"total_requests"`
	Successes       int64            `json:"successes"`
	Errors          int64            `json:"errors"`
	ErrorRate       *float64         `json:"error_rate"`
	RequestsPerSec  *float64         `json:"requests_per_sec"`
	CacheHitRate    *float64         `json:"cache_hit_rate"`
	StatusCodes     map[string]int64 `json:"status_codes,omitempty"`
	Generators      int              `json:"generators"`
}

// computeCounters reduces a dataset to its aggregate counter group.
func computeCounters(ds *results.MergedDataset) Counters {
	c := Counters{
		TotalRequests: int64(len(ds.Outcomes)),
		Generators:    len(ds.Nodes),
		StatusCodes:   map[string]int64{},
	}

	var hits, misses int64
	for _, o := range ds.Outcomes {
		if o.Status == results.StatusSuccess {
			c.Successes++
		} else {
			c.Errors++
		}
		switch o.Cache {
		case results.CacheHit:
			hits++
		case results.CacheMiss:
			misses++
		}
		if o.StatusCode != "" {
			c.StatusCodes[o.StatusCode]++
		}
	}

	c.ErrorRate = ratio(float64(c.Errors), float64(c.TotalRequests))
	c.CacheHitRate = ratio(float64(hits), float64(hits+misses))

	if start, end, ok := ds.TimeRange(); ok {
		c.TestStart = start.UTC()
		c.TestEnd = end.UTC()
		c.DurationSeconds = end.Sub(start).Seconds()
		if c.DurationSeconds > 0 {
			c.RequestsPerSec = fptr(float64(c.TotalRequests) / c.DurationSeconds)
		}
	}
	return c
}
