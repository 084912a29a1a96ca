package collector

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/FairForge/loadreport/internal/results"
)

// k6 emits one JSON object per line. Metric samples arrive as "Point"
// envelopes; "Metric" declaration lines and unrelated metrics are expected
// noise, not parse errors.
type k6Line struct {
	Type   string  `json:"type"`
	Metric string  `json:"metric"`
	Data   k6Point `json:"data"`
}

type k6Point struct {
	Time  time.Time         `json:"time"`
	Value float64           `json:"value"`
	Tags  map[string]string `json:"tags"`
}

// metricRequestDuration is the one metric that carries a complete
// transaction: latency as the value, everything else as tags.
const metricRequestDuration = "http_req_duration"

// Scanner buffer large enough for k6 lines with long package URLs.
const maxLineBytes = 1024 * 1024

// LoadRequestOutcomes parses one node's k6 result log into RequestOutcome
// records. Malformed lines are skipped and tallied in parseErrors; the only
// hard failure is being unable to read the file at all.
func LoadRequestOutcomes(path, node string) (outcomes []results.RequestOutcome, parseErrors int, err error) {
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

		var parsed k6Line
		if jsonErr := json.Unmarshal(line, &parsed); jsonErr != nil {
			parseErrors++
			continue
		}
		if parsed.Type != "Point" || parsed.Metric != metricRequestDuration {
			continue
		}

		outcome, ok := outcomeFromPoint(parsed.Data, node)
		if !ok {
			parseErrors++
			continue
		}
		outcomes = append(outcomes, outcome)
	}
	if scanErr := scanner.Err(); scanErr != nil {
		return nil, parseErrors, fmt.Errorf("collector: read %s: %w", path, scanErr)
	}
	return outcomes, parseErrors, nil
}

// outcomeFromPoint validates one duration sample and converts it to the
// model. k6 reports http_req_duration in milliseconds.
func outcomeFromPoint(p k6Point, node string) (results.RequestOutcome, bool) {
	if p.Time.IsZero() || p.Value < 0 {
		return results.RequestOutcome{}, false
	}
	eco, ok := results.ParseEcosystem(p.Tags["ecosystem"])
	if !ok {
		return results.RequestOutcome{}, false
	}
	op, ok := results.ParseOperation(p.Tags["operation"])
	if !ok {
		return results.RequestOutcome{}, false
	}

	return results.RequestOutcome{
		Timestamp:  p.Time,
		Ecosystem:  eco,
		Operation:  op,
		Package:    p.Tags["package"],
		Node:       node,
		Status:     statusFromTags(p.Tags),
		StatusCode: p.Tags["status"],
		Latency:    time.Duration(p.Value * float64(time.Millisecond)),
		Cache:      results.ParseCacheStatus(p.Tags["cache"]),
	}, true
}

// statusFromTags prefers an explicit outcome tag, then falls back to the
// HTTP status code: anything below 400 counts as success.
func statusFromTags(tags map[string]string) results.Status {
	switch tags["outcome"] {
	case "success":
		return results.StatusSuccess
	case "error":
		return results.StatusError
	}
	if code, err := strconv.Atoi(tags["status"]); err == nil && code > 0 && code < 400 {
		return results.StatusSuccess
	}
	return results.StatusError
}
