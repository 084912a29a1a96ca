package collector

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/FairForge/loadreport/internal/results"
)

// rawSnapshot mirrors one line of the metrics poller's JSONL output: a unix
// timestamp plus raw /proc-style counters. CPU and network fields are
// cumulative; load and memory fields are instantaneous.
type rawSnapshot struct {
	Timestamp    float64 `json:"timestamp"`
	CPUIdle      float64 `json:"cpu_idle"`
	CPUTotal     float64 `json:"cpu_total"`
	MemTotal     float64 `json:"mem_total"`
	MemAvailable float64 `json:"mem_available"`
	Load1        float64 `json:"load_1m"`
	Load5        float64 `json:"load_5m"`
	Load15       float64 `json:"load_15m"`
	NetRx        float64 `json:"net_rx"`
	NetTx        float64 `json:"net_tx"`
}

// LoadResourceSnapshots parses one host's metrics log with the same
// tolerant per-line policy as LoadRequestOutcomes.
func LoadResourceSnapshots(path, host string) (snaps []results.ResourceSnapshot, parseErrors int, err error) {
	r, err := openArtifact(path)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = r.Close() }()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var raw rawSnapshot
		if jsonErr := json.Unmarshal(line, &raw); jsonErr != nil {
			parseErrors++
			continue
		}
		snap, ok := snapshotFromRaw(raw, host)
		if !ok {
			parseErrors++
			continue
		}
		snaps = append(snaps, snap)
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return nil, parseErrors, fmt.Errorf("collector: read %s: %w", path, scanErr)
	}
	return snaps, parseErrors, nil
}

func snapshotFromRaw(raw rawSnapshot, host string) (results.ResourceSnapshot, bool) {
	if raw.Timestamp <= 0 {
		return results.ResourceSnapshot{}, false
	}
	// Counters and load averages are non-negative by definition; a negative
	// value means a corrupt line, not a zero sample.
	for _, v := range []float64{
		raw.CPUIdle, raw.CPUTotal, raw.MemTotal, raw.MemAvailable,
		raw.Load1, raw.Load5, raw.Load15, raw.NetRx, raw.NetTx,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return results.ResourceSnapshot{}, false
		}
	}

	sec, frac := math.Modf(raw.Timestamp)
	return results.ResourceSnapshot{
		Timestamp:    time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(),
		Host:         host,
		CPUIdle:      raw.CPUIdle,
		CPUTotal:     raw.CPUTotal,
		MemTotal:     raw.MemTotal,
		MemAvailable: raw.MemAvailable,
		Load1:        raw.Load1,
		Load5:        raw.Load5,
		Load15:       raw.Load15,
		NetRx:        raw.NetRx,
		NetTx:        raw.NetTx,
	}, true
}
