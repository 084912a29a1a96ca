package stats

import (
	"time"

	"github.com/FairForge/loadreport/internal/results"
)

// Options tunes summary construction.
type Options struct {
	// BucketWidth is the timeline resolution. Zero uses DefaultBucketWidth.
	BucketWidth time.Duration
}

// LatencyGroup is the `latencies` field group: the overall distribution
// plus one distribution per operation kind.
type LatencyGroup struct {
	Overall     LatencyStats                           `json:"overall"`
	ByOperation map[results.OperationKind]LatencyStats `json:"by_operation"`
}

// Summary is the complete aggregation result handed to renderers. It is a
// plain value: once built it is never mutated, and building it twice from
// the same dataset yields byte-identical JSON (map keys marshal sorted).
type Summary struct {
	TestID             string                            `json:"test_id"`
	Nodes              []string                          `json:"nodes"`
	Counters           Counters                          `json:"summary"`
	Latencies          LatencyGroup                      `json:"latencies"`
	EcosystemBreakdown map[results.Ecosystem]Breakdown   `json:"ecosystem_breakdown"`
	Timeline           []Bucket                          `json:"timeline"`
	SystemMetrics      SystemMetrics                     `json:"system_metrics"`
	Warnings           results.Warnings                  `json:"warnings"`
}

// Build computes the Summary for a merged dataset. It holds no state and
// may be re-run freely for report regeneration.
func Build(ds *results.MergedDataset, opts Options) *Summary {
	return &Summary{
		TestID:   ds.TestID,
		Nodes:    ds.Nodes,
		Counters: computeCounters(ds),
		Latencies: LatencyGroup{
			Overall:     newLatencyStats(latencyMillis(ds.Outcomes)),
			ByOperation: groupByOperation(ds.Outcomes),
		},
		EcosystemBreakdown: groupByEcosystem(ds.Outcomes),
		Timeline:           buildTimeline(ds, opts.BucketWidth),
		SystemMetrics:      summarizeResources(ds),
		Warnings:           ds.Warnings,
	}
}
