// Package results defines the data model shared by the collector and the
// statistics builder: per-request outcome records, per-host resource
// snapshots, and the merged dataset they combine into.
package results

import (
	"fmt"
	"time"
)

// Ecosystem identifies the package registry a request targeted.
type Ecosystem string

const (
	EcosystemNPM   Ecosystem = "npm"
	EcosystemPyPI  Ecosystem = "pypi"
	EcosystemMaven Ecosystem = "maven"
)

var ecosystems = map[string]Ecosystem{
	"npm":   EcosystemNPM,
	"pypi":  EcosystemPyPI,
	"maven": EcosystemMaven,
}

// ParseEcosystem maps a raw tag value to an Ecosystem. Adding an ecosystem
// is a table change, not a new branch.
func ParseEcosystem(s string) (Ecosystem, bool) {
	e, ok := ecosystems[s]
	return e, ok
}

// Ecosystems returns all known ecosystems in stable render order.
func Ecosystems() []Ecosystem {
	return []Ecosystem{EcosystemNPM, EcosystemPyPI, EcosystemMaven}
}

// OperationKind distinguishes metadata lookups from artifact downloads.
type OperationKind string

const (
	OperationMetadata OperationKind = "metadata"
	OperationDownload OperationKind = "download"
)

var operations = map[string]OperationKind{
	"metadata": OperationMetadata,
	"download": OperationDownload,
}

// ParseOperation maps a raw tag value to an OperationKind.
func ParseOperation(s string) (OperationKind, bool) {
	o, ok := operations[s]
	return o, ok
}

// Operations returns all operation kinds in stable render order.
func Operations() []OperationKind {
	return []OperationKind{OperationMetadata, OperationDownload}
}

// Status is the outcome of one HTTP transaction.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// CacheStatus reports whether the proxy served from cache.
type CacheStatus string

const (
	CacheHit     CacheStatus = "hit"
	CacheMiss    CacheStatus = "miss"
	CacheUnknown CacheStatus = "unknown"
)

var cacheStatuses = map[string]CacheStatus{
	"hit":  CacheHit,
	"miss": CacheMiss,
}

// ParseCacheStatus maps a raw tag value to a CacheStatus. Absent or
// unrecognized values map to CacheUnknown.
func ParseCacheStatus(s string) CacheStatus {
	if c, ok := cacheStatuses[s]; ok {
		return c
	}
	return CacheUnknown
}

// RequestOutcome is one HTTP transaction emitted by a load generator.
// Records are immutable once merged.
type RequestOutcome struct {
	Timestamp  time.Time     `json:"timestamp"`
	Ecosystem  Ecosystem     `json:"ecosystem"`
	Operation  OperationKind `json:"operation"`
	Package    string        `json:"package"`
	Node       string        `json:"node"`
	Status     Status        `json:"status"`
	StatusCode string        `json:"status_code,omitempty"`
	Latency    time.Duration `json:"latency"`
	Cache      CacheStatus   `json:"cache"`
}

// ResourceSnapshot is one point-in-time host metrics sample. CPU and
// network fields are raw cumulative counters; rates are derived later from
// deltas between consecutive same-host snapshots, never from single values.
type ResourceSnapshot struct {
	Timestamp    time.Time `json:"timestamp"`
	Host         string    `json:"host"`
	CPUIdle      float64   `json:"cpu_idle"`
	CPUTotal     float64   `json:"cpu_total"`
	MemTotal     float64   `json:"mem_total"`
	MemAvailable float64   `json:"mem_available"`
	Load1        float64   `json:"load_1m"`
	Load5        float64   `json:"load_5m"`
	Load15       float64   `json:"load_15m"`
	NetRx        float64   `json:"net_rx"`
	NetTx        float64   `json:"net_tx"`
}

// Window bounds a test run. Outcomes outside the window are dropped during
// merge and counted, not treated as errors. The zero Window is unbounded.
type Window struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether no bounds were declared.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Contains reports whether t falls inside the window. An unset edge does
// not constrain.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// Warnings accumulates non-fatal problems observed while loading and
// merging. It is threaded through the pipeline explicitly and returned as
// part of the dataset; there is no package-level tally.
type Warnings struct {
	ParseErrors        int      `json:"parse_errors"`
	DroppedOutOfWindow int      `json:"dropped_out_of_window"`
	FailedFiles        []string `json:"failed_files,omitempty"`
	DegradedHosts      []string `json:"degraded_hosts,omitempty"`
}

// Merge folds another accumulator into this one.
func (w *Warnings) Merge(other Warnings) {
	w.ParseErrors += other.ParseErrors
	w.DroppedOutOfWindow += other.DroppedOutOfWindow
	w.FailedFiles = append(w.FailedFiles, other.FailedFiles...)
	w.DegradedHosts = append(w.DegradedHosts, other.DegradedHosts...)
}

// Any reports whether anything noteworthy was accumulated.
func (w Warnings) Any() bool {
	return w.ParseErrors > 0 || w.DroppedOutOfWindow > 0 ||
		len(w.FailedFiles) > 0 || len(w.DegradedHosts) > 0
}

// MergedDataset is the unified view of one logical test run: all request
// outcomes sorted ascending by timestamp, plus per-host snapshot series
// sorted by timestamp. It is built once by the collector and read-only
// afterwards, so concurrent consumers need no locking.
type MergedDataset struct {
	TestID    string
	Outcomes  []RequestOutcome
	Snapshots map[string][]ResourceSnapshot
	Nodes     []string
	Hosts     []string
	Warnings  Warnings
}

// TimeRange returns the min and max outcome timestamps. ok is false for an
// empty outcome set.
func (d *MergedDataset) TimeRange() (min, max time.Time, ok bool) {
	if len(d.Outcomes) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return d.Outcomes[0].Timestamp, d.Outcomes[len(d.Outcomes)-1].Timestamp, true
}

func (d *MergedDataset) String() string {
	return fmt.Sprintf("dataset %s: %d outcomes from %d node(s), snapshots from %d host(s)",
		d.TestID, len(d.Outcomes), len(d.Nodes), len(d.Hosts))
}
