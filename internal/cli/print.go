package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/FairForge/loadreport/internal/results"
	"github.com/FairForge/loadreport/internal/stats"
)

// printSummary renders the headline numbers for terminal use. The JSON
// report is the machine-readable artifact; this is just a glance.
func printSummary(w io.Writer, s *stats.Summary, path string) {
	c := s.Counters
	fmt.Fprintf(w, "Test %s (%d generator(s))\n", s.TestID, c.Generators)
	fmt.Fprintf(w, "  requests: %d (%d ok, %d errors, error rate %s)\n",
		c.TotalRequests, c.Successes, c.Errors, fmtRate(c.ErrorRate))
	fmt.Fprintf(w, "  duration: %.1fs, throughput %s req/s\n", c.DurationSeconds, fmtFloat(c.RequestsPerSec))
	fmt.Fprintf(w, "  latency:  p50 %s  p90 %s  p95 %s  p99 %s (ms)\n",
		fmtFloat(s.Latencies.Overall.P50Ms), fmtFloat(s.Latencies.Overall.P90Ms),
		fmtFloat(s.Latencies.Overall.P95Ms), fmtFloat(s.Latencies.Overall.P99Ms))

	for _, eco := range results.Ecosystems() {
		b, ok := s.EcosystemBreakdown[eco]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %-6s    %d requests, %d errors, p95 %s ms, cache hit %s\n",
			eco, b.Requests, b.Errors, fmtFloat(b.Latency.P95Ms), fmtRate(b.CacheHitRate))
	}

	if s.SystemMetrics.Available {
		for _, h := range s.SystemMetrics.Hosts {
			if !h.Available {
				fmt.Fprintf(w, "  host %s: metrics unavailable\n", h.Host)
				continue
			}
			fmt.Fprintf(w, "  host %s: cpu avg %s max %s, mem avg %s\n",
				h.Host, pctAvg(h.CPUBusy), pctMax(h.CPUBusy), pctAvg(h.MemoryUsed))
		}
	} else {
		fmt.Fprintln(w, "  system metrics: unavailable")
	}
	fmt.Fprintf(w, "Report written to %s\n", path)
}

// printWarnings renders the non-fatal problem tallies, if any.
func printWarnings(w io.Writer, warnings results.Warnings) {
	if !warnings.Any() {
		return
	}
	fmt.Fprintln(w, "WARNINGS (report built from partial data):")
	if warnings.ParseErrors > 0 {
		fmt.Fprintf(w, "  %d malformed line(s) skipped\n", warnings.ParseErrors)
	}
	if warnings.DroppedOutOfWindow > 0 {
		fmt.Fprintf(w, "  %d record(s) outside the test window dropped\n", warnings.DroppedOutOfWindow)
	}
	files := append([]string(nil), warnings.FailedFiles...)
	sort.Strings(files)
	for _, f := range files {
		fmt.Fprintf(w, "  failed file: %s\n", f)
	}
	for _, h := range warnings.DegradedHosts {
		fmt.Fprintf(w, "  host %s: system metrics degraded\n", h)
	}
}

func fmtFloat(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func fmtRate(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *v*100)
}

// A host can be available (enough snapshots arrived) while individual
// reductions are nil: a stalled cpu_total counter or a zero mem_total
// yields no usable samples for that metric. Render those as "n/a".
func pctAvg(m *stats.MinAvgMax) string {
	if m == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%%", m.Avg*100)
}

func pctMax(m *stats.MinAvgMax) string {
	if m == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%%", m.Max*100)
}
