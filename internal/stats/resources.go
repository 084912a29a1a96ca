package stats

import (
	"sort"
	"time"

	"github.com/FairForge/loadreport/internal/results"
)

// MinAvgMax is a three-point reduction of one derived metric series.
type MinAvgMax struct {
	Min float64 `json:"min"`
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
}

// HostResources summarizes one host's derived utilization. Available is
// false when the host's metrics artifact was missing or unusable; the host
// still appears so degraded data is never silently omitted.
type HostResources struct {
	Host             string     `json:"host"`
	Available        bool       `json:"available"`
	Samples          int        `json:"samples"`
	CPUBusy          *MinAvgMax `json:"cpu_busy,omitempty"`
	MemoryUsed       *MinAvgMax `json:"memory_used,omitempty"`
	Load1Avg         *float64   `json:"load1_avg,omitempty"`
	Load5Avg         *float64   `json:"load5_avg,omitempty"`
	Load15Avg        *float64   `json:"load15_avg,omitempty"`
	NetRxBytesPerSec *float64   `json:"net_rx_bytes_per_sec,omitempty"`
	NetTxBytesPerSec *float64   `json:"net_tx_bytes_per_sec,omitempty"`
}

// SystemMetrics is the `system_metrics` group. Available is false when no
// metrics artifacts were found at all and the section is degraded.
type SystemMetrics struct {
	Available bool            `json:"available"`
	Hosts     []HostResources `json:"hosts,omitempty"`
}

// usagePoint is one derived sample: instantaneous fractions and rates
// computed from the delta between two consecutive raw snapshots. The first
// raw snapshot of a series only seeds deltas and produces no point.
type usagePoint struct {
	time    time.Time
	cpu     *float64 // busy fraction [0,1]; nil when the total counter stalled
	mem     *float64 // used fraction [0,1]; nil when mem_total was zero
	rxRate  *float64 // bytes/sec; nil on counter reset or zero elapsed
	txRate  *float64
	load1   float64
	load5   float64
	load15  float64
}

// deriveUsage converts one host's raw snapshot series into usage points.
// CPU busy comes from idle/total counter deltas: raw counters are
// cumulative since boot and must never be read as instantaneous values.
func deriveUsage(snaps []results.ResourceSnapshot) []usagePoint {
	if len(snaps) < 2 {
		return nil
	}
	points := make([]usagePoint, 0, len(snaps)-1)
	for i := 1; i < len(snaps); i++ {
		prev, cur := snaps[i-1], snaps[i]
		p := usagePoint{
			time:   cur.Timestamp,
			load1:  cur.Load1,
			load5:  cur.Load5,
			load15: cur.Load15,
		}

		idleDelta := cur.CPUIdle - prev.CPUIdle
		totalDelta := cur.CPUTotal - prev.CPUTotal
		if totalDelta > 0 {
			p.cpu = fptr(clamp01(1 - idleDelta/totalDelta))
		}

		if cur.MemTotal > 0 {
			p.mem = fptr(clamp01((cur.MemTotal - cur.MemAvailable) / cur.MemTotal))
		}

		elapsed := cur.Timestamp.Sub(prev.Timestamp).Seconds()
		if elapsed > 0 {
			if d := cur.NetRx - prev.NetRx; d >= 0 {
				p.rxRate = fptr(d / elapsed)
			}
			if d := cur.NetTx - prev.NetTx; d >= 0 {
				p.txRate = fptr(d / elapsed)
			}
		}
		points = append(points, p)
	}
	return points
}

// summarizeResources builds the per-host resource section. Hosts listed in
// the degraded warnings join the output as unavailable.
func summarizeResources(ds *results.MergedDataset) SystemMetrics {
	sm := SystemMetrics{}

	hostSet := map[string]bool{}
	for _, h := range ds.Hosts {
		hostSet[h] = true
	}
	for _, h := range ds.Warnings.DegradedHosts {
		hostSet[h] = true
	}
	hosts := make([]string, 0, len(hostSet))
	for h := range hostSet {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)

	for _, host := range hosts {
		points := deriveUsage(ds.Snapshots[host])
		hr := HostResources{Host: host, Samples: len(points), Available: len(points) > 0}
		if hr.Available {
			hr.CPUBusy = reduceMinAvgMax(points, func(p usagePoint) *float64 { return p.cpu })
			hr.MemoryUsed = reduceMinAvgMax(points, func(p usagePoint) *float64 { return p.mem })
			hr.Load1Avg = mean(collect(points, func(p usagePoint) *float64 { return fptr(p.load1) }))
			hr.Load5Avg = mean(collect(points, func(p usagePoint) *float64 { return fptr(p.load5) }))
			hr.Load15Avg = mean(collect(points, func(p usagePoint) *float64 { return fptr(p.load15) }))
			hr.NetRxBytesPerSec = mean(collect(points, func(p usagePoint) *float64 { return p.rxRate }))
			hr.NetTxBytesPerSec = mean(collect(points, func(p usagePoint) *float64 { return p.txRate }))
			sm.Available = true
		}
		sm.Hosts = append(sm.Hosts, hr)
	}
	return sm
}

// collect extracts the non-nil values of one field across points.
func collect(points []usagePoint, field func(usagePoint) *float64) []float64 {
	values := make([]float64, 0, len(points))
	for _, p := range points {
		if v := field(p); v != nil {
			values = append(values, *v)
		}
	}
	return values
}

func reduceMinAvgMax(points []usagePoint, field func(usagePoint) *float64) *MinAvgMax {
	values := collect(points, field)
	if len(values) == 0 {
		return nil
	}
	m := MinAvgMax{Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		if v < m.Min {
			m.Min = v
		}
		if v > m.Max {
			m.Max = v
		}
		sum += v
	}
	m.Avg = sum / float64(len(values))
	return &m
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
