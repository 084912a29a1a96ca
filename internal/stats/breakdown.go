package stats

import (
	"github.com/FairForge/loadreport/internal/results"
)

// Breakdown holds the per-ecosystem slice of the summary. Ecosystems with
// zero matching records are omitted from the map entirely so a renderer can
// tell "not tested" apart from "tested with no traffic".
type Breakdown struct {
	Requests     int64        `json:"requests"`
	Errors       int64        `json:"errors"`
	ErrorRate    *float64     `json:"error_rate"`
	CacheHitRate *float64     `json:"cache_hit_rate"`
	Latency      LatencyStats `json:"latency"`
}

// groupByEcosystem partitions outcomes by ecosystem and reduces each
// partition independently.
func groupByEcosystem(outcomes []results.RequestOutcome) map[results.Ecosystem]Breakdown {
	partitions := map[results.Ecosystem][]results.RequestOutcome{}
	for _, o := range outcomes {
		partitions[o.Ecosystem] = append(partitions[o.Ecosystem], o)
	}

	breakdowns := make(map[results.Ecosystem]Breakdown, len(partitions))
	for eco, part := range partitions {
		breakdowns[eco] = newBreakdown(part)
	}
	return breakdowns
}

func newBreakdown(outcomes []results.RequestOutcome) Breakdown {
	b := Breakdown{Requests: int64(len(outcomes))}
	var hits, misses int64
	for _, o := range outcomes {
		if o.Status == results.StatusError {
			b.Errors++
		}
		switch o.Cache {
		case results.CacheHit:
			hits++
		case results.CacheMiss:
			misses++
		}
	}
	b.ErrorRate = ratio(float64(b.Errors), float64(b.Requests))
	b.CacheHitRate = ratio(float64(hits), float64(hits+misses))
	b.Latency = newLatencyStats(latencyMillis(outcomes))
	return b
}

// groupByOperation reduces latency distributions per operation kind
// (metadata vs download). Same omission contract as the ecosystem map.
func groupByOperation(outcomes []results.RequestOutcome) map[results.OperationKind]LatencyStats {
	partitions := map[results.OperationKind][]float64{}
	for _, o := range outcomes {
		partitions[o.Operation] = append(partitions[o.Operation], durationMillis(o.Latency))
	}

	byOp := make(map[results.OperationKind]LatencyStats, len(partitions))
	for op, values := range partitions {
		byOp[op] = newLatencyStats(values)
	}
	return byOp
}
