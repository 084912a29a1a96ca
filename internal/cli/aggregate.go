package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FairForge/loadreport/internal/collector"
	"github.com/FairForge/loadreport/internal/config"
	"github.com/FairForge/loadreport/internal/report"
	"github.com/FairForge/loadreport/internal/results"
	"github.com/FairForge/loadreport/internal/stats"
)

type aggregateOptions struct {
	testID      string
	resultsDirs []string
	out         string
	format      string
	bucket      time.Duration
	windowStart string
	windowEnd   string
}

func newAggregateCmd(root *rootOptions) *cobra.Command {
	opts := &aggregateOptions{}

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Merge one test's artifacts and write a summary report",
		Example: `  loadreport aggregate --test-id test-20260109-163426
  loadreport aggregate --test-id test-20260109-163426 --results-dir ./load-test-results --bucket 5s`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			_, err = runAggregate(cmd.Context(), cfg, logger, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		},
	}

	cmd.Flags().StringVar(&opts.testID, "test-id", "", "test identifier shared by all artifacts (required)")
	cmd.Flags().StringArrayVar(&opts.resultsDirs, "results-dir", nil, "artifact search root (repeatable; overrides config)")
	cmd.Flags().StringVar(&opts.out, "out", "", "report output path (default <output_dir>/<test-id>.json)")
	cmd.Flags().StringVar(&opts.format, "format", report.FormatJSON, "report format: json or csv")
	cmd.Flags().DurationVar(&opts.bucket, "bucket", 0, "timeline bucket width (overrides config)")
	cmd.Flags().StringVar(&opts.windowStart, "window-start", "", "drop outcomes before this RFC3339 time")
	cmd.Flags().StringVar(&opts.windowEnd, "window-end", "", "drop outcomes after this RFC3339 time")
	_ = cmd.MarkFlagRequired("test-id")
	return cmd
}

// runAggregate is the discover -> merge -> build -> export pipeline. It is
// shared with the watch command, which re-runs it on artifact arrival.
func runAggregate(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts *aggregateOptions, stdout, stderr io.Writer) (*stats.Summary, error) {
	window, err := parseWindow(opts.windowStart, opts.windowEnd)
	if err != nil {
		return nil, err
	}

	dirs := opts.resultsDirs
	if len(dirs) == 0 {
		dirs = cfg.Results.Dirs
	}
	artifacts, err := collector.Discover(opts.testID, dirs)
	if err != nil {
		return nil, err
	}

	loader := collector.NewLoader(logger)
	loader.Concurrency = cfg.Stats.Concurrency
	dataset, err := loader.Merge(ctx, opts.testID, artifacts, window)
	if err != nil {
		return nil, err
	}

	bucket := opts.bucket
	if bucket == 0 {
		bucket = cfg.Stats.BucketWidth.Std()
	}
	summary := stats.Build(dataset, stats.Options{BucketWidth: bucket})

	gen := report.NewGenerator(logger)
	rep, err := gen.Generate(&report.Config{TestID: opts.testID, Format: opts.format}, summary)
	if err != nil {
		return nil, err
	}

	out := opts.out
	if out == "" {
		if err := os.MkdirAll(cfg.Results.OutputDir, 0750); err != nil {
			return nil, fmt.Errorf("cli: create output dir: %w", err)
		}
		ext := opts.format
		if ext == "" {
			ext = report.FormatJSON
		}
		out = filepath.Join(cfg.Results.OutputDir, opts.testID+"."+ext)
	}
	if err := gen.WriteFile(rep, opts.format, out); err != nil {
		return nil, err
	}

	printSummary(stdout, summary, out)
	// Warnings go to stderr so a partial-data report is never mistaken for
	// a clean one in captured output.
	printWarnings(stderr, summary.Warnings)
	return summary, nil
}

func parseWindow(start, end string) (results.Window, error) {
	var w results.Window
	var err error
	if start != "" {
		if w.Start, err = time.Parse(time.RFC3339, start); err != nil {
			return w, fmt.Errorf("cli: bad --window-start: %w", err)
		}
	}
	if end != "" {
		if w.End, err = time.Parse(time.RFC3339, end); err != nil {
			return w, fmt.Errorf("cli: bad --window-end: %w", err)
		}
	}
	if !w.Start.IsZero() && !w.End.IsZero() && w.End.Before(w.Start) {
		return w, fmt.Errorf("cli: window end is before window start")
	}
	return w, nil
}
