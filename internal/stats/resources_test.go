package stats

import (
	"testing"
	"time"

	"github.com/FairForge/loadreport/internal/results"
)

// makeSnapshots builds n snapshots 5s apart with steadily advancing
// counters: each interval burns 50 of 100 CPU jiffies and moves 5000 rx /
// 2500 tx bytes.
func makeSnapshots(host string, n int, start time.Time) []results.ResourceSnapshot {
	snaps := make([]results.ResourceSnapshot, n)
	for i := range snaps {
		snaps[i] = results.ResourceSnapshot{
			Timestamp:    start.Add(time.Duration(i) * 5 * time.Second),
			Host:         host,
			CPUIdle:      float64(1000 + 50*i),
			CPUTotal:     float64(2000 + 100*i),
			MemTotal:     8192,
			MemAvailable: 4096,
			Load1:        1.5,
			Load5:        1.0,
			Load15:       0.5,
			NetRx:        float64(100000 + 5000*i),
			NetTx:        float64(50000 + 2500*i),
		}
	}
	return snaps
}

func TestDeriveUsage_DeltaMath(t *testing.T) {
	points := deriveUsage(makeSnapshots("proxy-1", 3, testStart))

	// First snapshot only seeds; 3 raw samples make 2 usage points.
	if len(points) != 2 {
		t.Fatalf("expected 2 points from 3 snapshots, got %d", len(points))
	}
	for i, p := range points {
		if p.cpu == nil {
			t.Fatalf("point %d: cpu nil", i)
		}
		// idle delta 50 over total delta 100 -> 50% busy.
		if *p.cpu != 0.5 {
			t.Errorf("point %d: expected cpu 0.5, got %v", i, *p.cpu)
		}
		if p.mem == nil || *p.mem != 0.5 {
			t.Errorf("point %d: expected mem 0.5, got %v", i, p.mem)
		}
		// 5000 bytes over 5s.
		if p.rxRate == nil || *p.rxRate != 1000 {
			t.Errorf("point %d: expected rx 1000 B/s, got %v", i, p.rxRate)
		}
		if p.txRate == nil || *p.txRate != 500 {
			t.Errorf("point %d: expected tx 500 B/s, got %v", i, p.txRate)
		}
	}
}

func TestDeriveUsage_SingleSnapshotYieldsNothing(t *testing.T) {
	if got := deriveUsage(makeSnapshots("proxy-1", 1, testStart)); got != nil {
		t.Errorf("one snapshot has no delta, expected no points, got %d", len(got))
	}
}

func TestDeriveUsage_StalledCounter(t *testing.T) {
	snaps := makeSnapshots("proxy-1", 2, testStart)
	// Total counter did not advance: busy fraction is indeterminate.
	snaps[1].CPUTotal = snaps[0].CPUTotal
	points := deriveUsage(snaps)
	if points[0].cpu != nil {
		t.Errorf("expected nil cpu on stalled total counter, got %v", *points[0].cpu)
	}
}

func TestDeriveUsage_CounterReset(t *testing.T) {
	snaps := makeSnapshots("proxy-1", 2, testStart)
	// Host rebooted between samples; cumulative counters went backwards.
	snaps[1].NetRx = 10
	points := deriveUsage(snaps)
	if points[0].rxRate != nil {
		t.Errorf("expected nil rx rate on counter reset, got %v", *points[0].rxRate)
	}
	if points[0].txRate == nil {
		t.Error("tx rate should be unaffected by an rx reset")
	}
}

func TestSummarizeResources(t *testing.T) {
	ds := &results.MergedDataset{
		TestID: "t",
		Hosts:  []string{"proxy-1"},
		Snapshots: map[string][]results.ResourceSnapshot{
			"proxy-1": makeSnapshots("proxy-1", 5, testStart),
		},
		Warnings: results.Warnings{DegradedHosts: []string{"proxy-2"}},
	}

	sm := summarizeResources(ds)
	if !sm.Available {
		t.Fatal("metrics present, section must be available")
	}
	if len(sm.Hosts) != 2 {
		t.Fatalf("expected 2 hosts (1 live, 1 degraded), got %d", len(sm.Hosts))
	}

	live := sm.Hosts[0]
	if live.Host != "proxy-1" || !live.Available {
		t.Fatalf("unexpected first host: %+v", live)
	}
	if live.Samples != 4 {
		t.Errorf("5 snapshots should give 4 delta samples, got %d", live.Samples)
	}
	if live.CPUBusy == nil || live.CPUBusy.Avg != 0.5 || live.CPUBusy.Min != 0.5 || live.CPUBusy.Max != 0.5 {
		t.Errorf("unexpected cpu reduction: %+v", live.CPUBusy)
	}
	if live.Load1Avg == nil || *live.Load1Avg != 1.5 {
		t.Errorf("unexpected load1 avg: %v", live.Load1Avg)
	}

	degraded := sm.Hosts[1]
	if degraded.Host != "proxy-2" || degraded.Available {
		t.Errorf("degraded host must appear as unavailable: %+v", degraded)
	}
}

func TestSummarizeResources_NoMetricsAtAll(t *testing.T) {
	ds := &results.MergedDataset{TestID: "t", Snapshots: map[string][]results.ResourceSnapshot{}}
	sm := summarizeResources(ds)
	if sm.Available {
		t.Error("no metrics artifacts: section must be unavailable")
	}
	if len(sm.Hosts) != 0 {
		t.Errorf("expected no hosts, got %d", len(sm.Hosts))
	}
}
