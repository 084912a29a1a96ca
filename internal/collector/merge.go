package collector

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FairForge/loadreport/internal/results"
)

// Loader drives artifact loading and merging for one test run.
type Loader struct {
	logger *zap.Logger

	// Concurrency bounds parallel file parsing. Zero means GOMAXPROCS.
	Concurrency int
}

// NewLoader creates a Loader. A nil logger is replaced with a no-op one.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// fileResult is the per-artifact accumulator produced by a worker. Workers
// never share state; everything is reduced after the group finishes.
type fileResult struct {
	artifact    Artifact
	outcomes    []results.RequestOutcome
	snapshots   []results.ResourceSnapshot
	parseErrors int
	err         error
}

// Merge loads every artifact and combines them into one MergedDataset.
//
// Per-file failures degrade to warnings; a metrics artifact that fails
// marks its host as degraded. The only fatal conditions are a cancelled
// context and ending up with zero valid request outcomes.
func (l *Loader) Merge(ctx context.Context, testID string, artifacts []Artifact, window results.Window) (*results.MergedDataset, error) {
	loaded := make([]fileResult, len(artifacts))

	g, ctx := errgroup.WithContext(ctx)
	limit := l.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	for i, a := range artifacts {
		i, a := i, a
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			loaded[i] = loadOne(a)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collector: merge aborted: %w", err)
	}

	ds := &results.MergedDataset{
		TestID:    testID,
		Snapshots: map[string][]results.ResourceSnapshot{},
	}

	var loadErrs *multierror.Error
	nodeSet := map[string]bool{}
	for _, fr := range loaded {
		ds.Warnings.ParseErrors += fr.parseErrors
		if fr.err != nil {
			loadErrs = multierror.Append(loadErrs, fr.err)
			ds.Warnings.FailedFiles = append(ds.Warnings.FailedFiles, fr.err.Error())
			if fr.artifact.Kind == KindMetricsLog {
				ds.Warnings.DegradedHosts = append(ds.Warnings.DegradedHosts, fr.artifact.Node)
			}
			l.logger.Warn("artifact failed to load",
				zap.String("path", fr.artifact.Path),
				zap.Error(fr.err))
			continue
		}

		switch fr.artifact.Kind {
		case KindRequestLog:
			kept, dropped := filterWindow(fr.outcomes, window)
			ds.Outcomes = append(ds.Outcomes, kept...)
			ds.Warnings.DroppedOutOfWindow += dropped
			nodeSet[fr.artifact.Node] = true
		case KindMetricsLog:
			ds.Snapshots[fr.artifact.Node] = append(ds.Snapshots[fr.artifact.Node], fr.snapshots...)
		}
		l.logger.Debug("artifact loaded",
			zap.String("path", fr.artifact.Path),
			zap.Int("records", len(fr.outcomes)+len(fr.snapshots)),
			zap.Int("parse_errors", fr.parseErrors))
	}

	sort.SliceStable(ds.Outcomes, func(i, j int) bool {
		return ds.Outcomes[i].Timestamp.Before(ds.Outcomes[j].Timestamp)
	})
	for host, snaps := range ds.Snapshots {
		ds.Snapshots[host] = dedupeSnapshots(snaps)
	}

	for n := range nodeSet {
		ds.Nodes = append(ds.Nodes, n)
	}
	sort.Strings(ds.Nodes)
	for h := range ds.Snapshots {
		ds.Hosts = append(ds.Hosts, h)
	}
	sort.Strings(ds.Hosts)
	sort.Strings(ds.Warnings.DegradedHosts)

	if len(ds.Outcomes) == 0 {
		if err := loadErrs.ErrorOrNil(); err != nil {
			return nil, fmt.Errorf("%w (load failures: %v)", ErrEmptyResultSet, err)
		}
		return nil, ErrEmptyResultSet
	}

	l.logger.Info("merge complete",
		zap.String("test_id", testID),
		zap.Int("outcomes", len(ds.Outcomes)),
		zap.Strings("nodes", ds.Nodes),
		zap.Strings("hosts", ds.Hosts),
		zap.Int("parse_errors", ds.Warnings.ParseErrors))
	return ds, nil
}

// loadOne parses a single artifact. A file that yields zero valid records
// is itself a per-file failure so partial result sets stay visible.
func loadOne(a Artifact) fileResult {
	fr := fileResult{artifact: a}
	switch a.Kind {
	case KindRequestLog:
		fr.outcomes, fr.parseErrors, fr.err = LoadRequestOutcomes(a.Path, a.Node)
		if fr.err == nil && len(fr.outcomes) == 0 {
			fr.err = fmt.Errorf("collector: %s: no valid request records", a.Path)
		}
	case KindMetricsLog:
		fr.snapshots, fr.parseErrors, fr.err = LoadResourceSnapshots(a.Path, a.Node)
		if fr.err == nil && len(fr.snapshots) == 0 {
			fr.err = fmt.Errorf("collector: %s: no valid metric records", a.Path)
		}
	default:
		fr.err = fmt.Errorf("collector: %s: unknown artifact kind %q", a.Path, a.Kind)
	}
	return fr
}

// filterWindow drops outcomes outside the declared test window. Dropping is
// expected behavior for records emitted during ramp-down, not an error.
func filterWindow(outcomes []results.RequestOutcome, window results.Window) (kept []results.RequestOutcome, dropped int) {
	if window.IsZero() {
		return outcomes, 0
	}
	kept = outcomes[:0:0]
	for _, o := range outcomes {
		if window.Contains(o.Timestamp) {
			kept = append(kept, o)
		} else {
			dropped++
		}
	}
	return kept, dropped
}

// dedupeSnapshots sorts one host's series by timestamp and collapses exact
// timestamp collisions, keeping the first-seen record. Two generators can
// legitimately emit identical request records, but a duplicated snapshot is
// always the same poller sample shipped twice.
func dedupeSnapshots(snaps []results.ResourceSnapshot) []results.ResourceSnapshot {
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.Before(snaps[j].Timestamp)
	})
	out := snaps[:0]
	for i, s := range snaps {
		if i > 0 && s.Timestamp.Equal(out[len(out)-1].Timestamp) {
			continue
		}
		out = append(out, s)
	}
	return out
}
