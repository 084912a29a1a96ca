package stats

import (
	"time"

	"github.com/FairForge/loadreport/internal/results"
)

// DefaultBucketWidth is the timeline resolution used when the caller does
// not choose one.
const DefaultBucketWidth = 10 * time.Second

// Bucket is one fixed-width timeline slot. Empty buckets are emitted with
// zero counts and null latency so the timeline stays contiguous: a gap in
// traffic usually means a stalled generator and must stay visible.
type Bucket struct {
	Start        time.Time `json:"bucket_start"`
	RequestCount int64     `json:"request_count"`
	ErrorCount   int64     `json:"error_count"`
	P95LatencyMs *float64  `json:"p95_latency_ms"`
	CPUMean      *float64  `json:"cpu_mean,omitempty"`
	MemMean      *float64  `json:"mem_mean,omitempty"`
}

// buildTimeline slots the dataset into fixed-width buckets left-aligned to
// the minimum outcome timestamp floored to a bucket boundary. Resource
// usage points from every host falling inside a bucket contribute to its
// CPU/memory means.
func buildTimeline(ds *results.MergedDataset, width time.Duration) []Bucket {
	if width <= 0 {
		width = DefaultBucketWidth
	}
	min, max, ok := ds.TimeRange()
	if !ok {
		return nil
	}

	start := min.Truncate(width)
	n := int(max.Sub(start)/width) + 1

	buckets := make([]Bucket, n)
	latencies := make([][]float64, n)
	for i := range buckets {
		buckets[i].Start = start.Add(time.Duration(i) * width).UTC()
	}

	slot := func(t time.Time) (int, bool) {
		i := int(t.Sub(start) / width)
		return i, i >= 0 && i < n
	}

	for _, o := range ds.Outcomes {
		i, ok := slot(o.Timestamp)
		if !ok {
			continue
		}
		buckets[i].RequestCount++
		if o.Status == results.StatusError {
			buckets[i].ErrorCount++
		}
		latencies[i] = append(latencies[i], durationMillis(o.Latency))
	}
	for i := range buckets {
		buckets[i].P95LatencyMs = Percentiles(latencies[i], []int{95})[95]
	}

	cpu := make([][]float64, n)
	mem := make([][]float64, n)
	for _, host := range ds.Hosts {
		for _, p := range deriveUsage(ds.Snapshots[host]) {
			i, ok := slot(p.time)
			if !ok {
				continue
			}
			if p.cpu != nil {
				cpu[i] = append(cpu[i], *p.cpu)
			}
			if p.mem != nil {
				mem[i] = append(mem[i], *p.mem)
			}
		}
	}
	for i := range buckets {
		buckets[i].CPUMean = mean(cpu[i])
		buckets[i].MemMean = mean(mem[i])
	}
	return buckets
}
