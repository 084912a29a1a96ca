// Package report wraps a computed Summary in an exportable envelope and
// writes it out as JSON or CSV for external renderers.
package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FairForge/loadreport/internal/stats"
)

// Export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Config configures report generation.
type Config struct {
	Name   string `json:"name"`
	TestID string `json:"test_id"`
	Format string `json:"format"`
}

// Validate checks configuration
func (c *Config) Validate() error {
	if c.TestID == "" {
		return errors.New("report: test id is required")
	}
	switch c.Format {
	case "", FormatJSON, FormatCSV:
	default:
		return fmt.Errorf("report: unsupported format %q", c.Format)
	}
	return nil
}

// Report is the envelope around one summary. The envelope carries the
// non-deterministic metadata (ID, creation time); the embedded Summary
// itself is a pure function of the dataset.
type Report struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	TestID    string         `json:"test_id"`
	CreatedAt time.Time      `json:"created_at"`
	Summary   *stats.Summary `json:"report"`
}

// Generator builds and exports reports.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a report generator. A nil logger is replaced with a
// no-op one.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger}
}

// Generate wraps a summary in a Report envelope.
func (g *Generator) Generate(config *Config, summary *stats.Summary) (*Report, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, errors.New("report: summary is required")
	}

	name := config.Name
	if name == "" {
		name = "loadtest-" + config.TestID
	}
	r := &Report{
		ID:        uuid.New().String(),
		Name:      name,
		TestID:    config.TestID,
		CreatedAt: time.Now().UTC(),
		Summary:   summary,
	}
	g.logger.Info("report generated",
		zap.String("id", r.ID),
		zap.String("test_id", r.TestID))
	return r, nil
}

// Export serializes a report. JSON output is schema-checked first: a
// summary that violates its own published schema is a bug that must fail
// the export, not ship to a renderer.
func (g *Generator) Export(r *Report, format string) ([]byte, error) {
	switch format {
	case "", FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("report: marshal: %w", err)
		}
		if err := ValidateSummaryJSON(data); err != nil {
			return nil, err
		}
		return data, nil
	case FormatCSV:
		return exportCSV(r)
	default:
		return nil, fmt.Errorf("report: unsupported format %q", format)
	}
}

// WriteFile exports the report and writes it to path.
func (g *Generator) WriteFile(r *Report, format, path string) error {
	data, err := g.Export(r, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	g.logger.Info("report written", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// ReadFile loads a previously written JSON report.
func ReadFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("report: read %s: %w", path, err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("report: parse %s: %w", path, err)
	}
	if r.Summary == nil {
		return nil, fmt.Errorf("report: %s has no summary", path)
	}
	return &r, nil
}

// exportCSV emits the timeline as rows, one bucket per line. The CSV form
// exists for spreadsheet users; the JSON form is the full report.
func exportCSV(r *Report) ([]byte, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"bucket_start", "request_count", "error_count", "p95_latency_ms", "cpu_mean", "mem_mean"}); err != nil {
		return nil, err
	}
	for _, b := range r.Summary.Timeline {
		_ = w.Write([]string{
			b.Start.Format(time.RFC3339),
			strconv.FormatInt(b.RequestCount, 10),
			strconv.FormatInt(b.ErrorCount, 10),
			csvFloat(b.P95LatencyMs),
			csvFloat(b.CPUMean),
			csvFloat(b.MemMean),
		})
	}
	w.Flush()
	return []byte(buf.String()), w.Error()
}

// csvFloat renders a nullable metric; indeterminate values stay blank.
func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
