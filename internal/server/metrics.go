package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FairForge/loadreport/internal/stats"
)

// Metrics exposes the latest loaded summary as Prometheus gauges so a
// scraping dashboard can track result quality across regenerations. A
// private registry keeps the handler free of process-wide collectors.
type Metrics struct {
	registry *prometheus.Registry

	totalRequests *prometheus.GaugeVec
	errorRate     *prometheus.GaugeVec
	requestsPer   *prometheus.GaugeVec
	latency       *prometheus.GaugeVec
	parseErrors   *prometheus.GaugeVec
}

// NewMetrics creates and registers the gauge set.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		totalRequests: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "loadreport_total_requests",
				Help: "Total merged request outcomes in the latest summary",
			},
			[]string{"test_id"},
		),
		errorRate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "loadreport_error_rate",
				Help: "Error rate of the latest summary (0-1)",
			},
			[]string{"test_id"},
		),
		requestsPer: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "loadreport_requests_per_sec",
				Help: "Overall RPS of the latest summary",
			},
			[]string{"test_id"},
		),
		latency: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "loadreport_latency_ms",
				Help: "Latency percentiles of the latest summary in milliseconds",
			},
			[]string{"test_id", "quantile"},
		),
		parseErrors: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "loadreport_parse_errors",
				Help: "Malformed artifact lines skipped while building the summary",
			},
			[]string{"test_id"},
		),
	}

	registry.MustRegister(m.totalRequests)
	registry.MustRegister(m.errorRate)
	registry.MustRegister(m.requestsPer)
	registry.MustRegister(m.latency)
	registry.MustRegister(m.parseErrors)
	return m
}

// Observe publishes one summary. Indeterminate rates are skipped rather
// than exported as zero.
func (m *Metrics) Observe(s *stats.Summary) {
	labels := prometheus.Labels{"test_id": s.TestID}
	m.totalRequests.With(labels).Set(float64(s.Counters.TotalRequests))
	m.parseErrors.With(labels).Set(float64(s.Warnings.ParseErrors))
	if s.Counters.ErrorRate != nil {
		m.errorRate.With(labels).Set(*s.Counters.ErrorRate)
	}
	if s.Counters.RequestsPerSec != nil {
		m.requestsPer.With(labels).Set(*s.Counters.RequestsPerSec)
	}
	for quantile, v := range map[string]*float64{
		"0.5":  s.Latencies.Overall.P50Ms,
		"0.9":  s.Latencies.Overall.P90Ms,
		"0.95": s.Latencies.Overall.P95Ms,
		"0.99": s.Latencies.Overall.P99Ms,
	} {
		if v != nil {
			m.latency.With(prometheus.Labels{"test_id": s.TestID, "quantile": quantile}).Set(*v)
		}
	}
}

// Handler returns the scrape endpoint for the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
