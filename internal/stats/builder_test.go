package stats

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/FairForge/loadreport/internal/results"
)

var testStart = time.Date(2026, 1, 9, 16, 34, 0, 0, time.UTC)

// makeOutcomes emits n outcomes for one node spread evenly across span,
// the last `errors` of them failed.
func makeOutcomes(node string, eco results.Ecosystem, n, errors int, start time.Time, span time.Duration) []results.RequestOutcome {
	outcomes := make([]results.RequestOutcome, n)
	for i := range outcomes {
		status := results.StatusSuccess
		if i >= n-errors {
			status = results.StatusError
		}
		outcomes[i] = results.RequestOutcome{
			Timestamp: start.Add(span * time.Duration(i) / time.Duration(n)),
			Ecosystem: eco,
			Operation: results.OperationMetadata,
			Package:   "pkg",
			Node:      node,
			Status:    status,
			Latency:   time.Duration(10+i%50) * time.Millisecond,
			Cache:     results.CacheUnknown,
		}
	}
	return outcomes
}

func newDataset(outcomes []results.RequestOutcome) *results.MergedDataset {
	return &results.MergedDataset{
		TestID:    "test-20260109-163426",
		Outcomes:  outcomes,
		Snapshots: map[string][]results.ResourceSnapshot{},
		Nodes:     []string{"gen-a", "gen-b"},
	}
}

func TestBuild_TwoNodeScenario(t *testing.T) {
	// Node A: 1000 ok + 10 errors, node B: 800 ok + 5 errors, 60s window.
	outcomes := makeOutcomes("gen-a", results.EcosystemNPM, 1010, 10, testStart, 60*time.Second)
	outcomes = append(outcomes, makeOutcomes("gen-b", results.EcosystemPyPI, 805, 5, testStart, 60*time.Second)...)
	// Pin the extremes so the span is exactly 60s.
	outcomes[0].Timestamp = testStart
	outcomes[len(outcomes)-1].Timestamp = testStart.Add(60 * time.Second)

	s := Build(newDataset(outcomes), Options{})

	if s.Counters.TotalRequests != 1815 {
		t.Fatalf("expected 1815 total, got %d", s.Counters.TotalRequests)
	}
	if s.Counters.Errors != 15 {
		t.Fatalf("expected 15 errors, got %d", s.Counters.Errors)
	}
	if s.Counters.ErrorRate == nil || math.Abs(*s.Counters.ErrorRate-0.00827) > 0.0001 {
		t.Errorf("expected error rate ~0.00827, got %v", s.Counters.ErrorRate)
	}
	if s.Counters.RequestsPerSec == nil || math.Abs(*s.Counters.RequestsPerSec-30.25) > 0.01 {
		t.Errorf("expected ~30.25 rps, got %v", s.Counters.RequestsPerSec)
	}
}

func TestBuild_EcosystemOmission(t *testing.T) {
	outcomes := makeOutcomes("gen-a", results.EcosystemNPM, 10, 0, testStart, 10*time.Second)
	outcomes = append(outcomes, makeOutcomes("gen-a", results.EcosystemPyPI, 10, 0, testStart, 10*time.Second)...)

	s := Build(newDataset(outcomes), Options{})

	if _, ok := s.EcosystemBreakdown[results.EcosystemMaven]; ok {
		t.Error("maven had no traffic and must be omitted, not zero-filled")
	}
	if len(s.EcosystemBreakdown) != 2 {
		t.Errorf("expected 2 ecosystems, got %d", len(s.EcosystemBreakdown))
	}
	if s.EcosystemBreakdown[results.EcosystemNPM].Requests != 10 {
		t.Errorf("expected 10 npm requests, got %d", s.EcosystemBreakdown[results.EcosystemNPM].Requests)
	}
}

func TestBuild_ZeroDurationIndeterminate(t *testing.T) {
	outcomes := []results.RequestOutcome{
		{Timestamp: testStart, Ecosystem: results.EcosystemNPM, Operation: results.OperationMetadata, Status: results.StatusSuccess, Latency: time.Millisecond},
		{Timestamp: testStart, Ecosystem: results.EcosystemNPM, Operation: results.OperationMetadata, Status: results.StatusSuccess, Latency: time.Millisecond},
	}
	s := Build(newDataset(outcomes), Options{})
	if s.Counters.RequestsPerSec != nil {
		t.Errorf("zero duration must yield indeterminate rps, got %v", *s.Counters.RequestsPerSec)
	}
	if s.Counters.ErrorRate == nil || *s.Counters.ErrorRate != 0 {
		t.Errorf("error rate should be 0, got %v", s.Counters.ErrorRate)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	outcomes := makeOutcomes("gen-a", results.EcosystemMaven, 500, 7, testStart, 47*time.Second)
	ds := newDataset(outcomes)
	ds.Hosts = []string{"proxy-1"}
	ds.Snapshots["proxy-1"] = makeSnapshots("proxy-1", 10, testStart)

	first, err := json.Marshal(Build(ds, Options{BucketWidth: 5 * time.Second}))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(Build(ds, Options{BucketWidth: 5 * time.Second}))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("two builds over the same dataset produced different JSON")
	}
}

func TestTimeline_BucketCountAndContiguity(t *testing.T) {
	// Span of 47s with 10s buckets: 5 buckets, the last partially covered.
	outcomes := []results.RequestOutcome{
		{Timestamp: testStart, Status: results.StatusSuccess, Ecosystem: results.EcosystemNPM, Operation: results.OperationMetadata, Latency: 5 * time.Millisecond},
		{Timestamp: testStart.Add(47 * time.Second), Status: results.StatusError, Ecosystem: results.EcosystemNPM, Operation: results.OperationMetadata, Latency: 9 * time.Millisecond},
	}
	buckets := buildTimeline(newDataset(outcomes), 10*time.Second)

	if len(buckets) != 5 {
		t.Fatalf("expected 5 buckets for a 47s span, got %d", len(buckets))
	}
	for i := 1; i < len(buckets); i++ {
		if got := buckets[i].Start.Sub(buckets[i-1].Start); got != 10*time.Second {
			t.Fatalf("bucket %d not contiguous: gap %v", i, got)
		}
	}
	// Middle buckets are empty but present, with null latency.
	for i := 1; i <= 3; i++ {
		if buckets[i].RequestCount != 0 {
			t.Errorf("bucket %d: expected empty, got %d requests", i, buckets[i].RequestCount)
		}
		if buckets[i].P95LatencyMs != nil {
			t.Errorf("bucket %d: expected null p95 for empty bucket", i)
		}
	}
	if buckets[4].ErrorCount != 1 {
		t.Errorf("last bucket should hold the error, got %d", buckets[4].ErrorCount)
	}
}

func TestTimeline_AlignsToBucketFloor(t *testing.T) {
	off := testStart.Add(3 * time.Second) // not on a 10s boundary
	outcomes := []results.RequestOutcome{
		{Timestamp: off, Status: results.StatusSuccess, Ecosystem: results.EcosystemNPM, Operation: results.OperationMetadata, Latency: time.Millisecond},
	}
	buckets := buildTimeline(newDataset(outcomes), 10*time.Second)
	if !buckets[0].Start.Equal(testStart) {
		t.Errorf("expected bucket start floored to %v, got %v", testStart, buckets[0].Start)
	}
}
