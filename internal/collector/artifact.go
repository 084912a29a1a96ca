// Package collector locates, loads, and merges the per-node artifacts of
// one logical load test run into a single MergedDataset.
package collector

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Sentinel errors for dataset-level failures. Per-line and per-file
// problems are recovered locally and surfaced as warning tallies instead.
var (
	ErrArtifactNotFound = errors.New("collector: no request artifacts found for test id")
	ErrEmptyResultSet   = errors.New("collector: zero valid request outcomes after merge")
)

// Kind identifies the artifact category an artifact file belongs to.
type Kind string

const (
	KindRequestLog Kind = "k6_results"
	KindMetricsLog Kind = "system_metrics"
)

// Artifact describes one discovered per-node result file. Node is the
// load-generator or host identifier embedded in the file name.
type Artifact struct {
	Kind   Kind
	TestID string
	Node   string
	Path   string
}

// Request-log artifacts are named <testID>_<node>_k6_results.json and
// metrics artifacts <testID>_<node>_system_metrics.jsonl, optionally with a
// .gz suffix when the transfer step compressed them.
var artifactSuffixes = []struct {
	suffix string
	kind   Kind
}{
	{"_k6_results.json", KindRequestLog},
	{"_k6_results.json.gz", KindRequestLog},
	{"_system_metrics.jsonl", KindMetricsLog},
	{"_system_metrics.jsonl.gz", KindMetricsLog},
}

// Discover finds every artifact belonging to testID under the given search
// roots. It tolerates partial result sets: missing metrics files (or
// missing nodes) are fine, but zero request-log artifacts is fatal because
// no summary can be built from nothing.
func Discover(testID string, roots []string) ([]Artifact, error) {
	if testID == "" {
		return nil, errors.New("collector: test id is required")
	}

	var artifacts []Artifact
	seen := map[string]bool{}
	for _, root := range roots {
		// Plain directory listing, not a glob: test ids are caller-supplied
		// and may contain pattern metacharacters.
		entries, err := os.ReadDir(root)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("collector: read search root %q: %w", root, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(root, entry.Name())
			if seen[path] {
				continue
			}
			seen[path] = true
			if a, ok := classify(testID, path); ok {
				artifacts = append(artifacts, a)
			}
		}
	}

	// Deterministic processing order regardless of filesystem enumeration.
	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Path < artifacts[j].Path })

	requests := 0
	for _, a := range artifacts {
		if a.Kind == KindRequestLog {
			requests++
		}
	}
	if requests == 0 {
		return nil, fmt.Errorf("%w: %q under %v", ErrArtifactNotFound, testID, roots)
	}
	return artifacts, nil
}

// classify matches a path against the known artifact naming scheme and
// extracts the node identifier sandwiched between test id and suffix.
func classify(testID, path string) (Artifact, bool) {
	name := filepath.Base(path)
	prefix := testID + "_"
	if !strings.HasPrefix(name, prefix) {
		return Artifact{}, false
	}
	for _, s := range artifactSuffixes {
		if !strings.HasSuffix(name, s.suffix) {
			continue
		}
		node := strings.TrimSuffix(strings.TrimPrefix(name, prefix), s.suffix)
		if node == "" {
			return Artifact{}, false
		}
		return Artifact{Kind: s.kind, TestID: testID, Node: node, Path: path}, true
	}
	return Artifact{}, false
}

// ContributingNodes lists the distinct node identifiers for one artifact
// kind, sorted, so callers can report which hosts supplied data.
func ContributingNodes(artifacts []Artifact, kind Kind) []string {
	set := map[string]bool{}
	for _, a := range artifacts {
		if a.Kind == kind {
			set[a.Node] = true
		}
	}
	nodes := make([]string, 0, len(set))
	for n := range set {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}
