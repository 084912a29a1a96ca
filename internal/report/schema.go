package report

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// summarySchema is the published shape of an exported JSON report. Nullable
// metrics are deliberate: null means indeterminate (empty distribution,
// zero denominator), which is different from zero.
const summarySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name", "test_id", "created_at", "report"],
  "properties": {
    "id": {"type": "string"},
    "name": {"type": "string"},
    "test_id": {"type": "string"},
    "created_at": {"type": "string"},
    "report": {
      "type": "object",
      "required": ["test_id", "nodes", "summary", "latencies",
                   "ecosystem_breakdown", "timeline", "system_metrics",
                   "warnings"],
      "properties": {
        "test_id": {"type": "string"},
        "nodes": {"type": "array", "items": {"type": "string"}},
        "summary": {
          "type": "object",
          "required": ["total_requests", "successes", "errors",
                       "duration_seconds", "generators"],
          "properties": {
            "total_requests": {"type": "integer", "minimum": 0},
            "successes": {"type": "integer", "minimum": 0},
            "errors": {"type": "integer", "minimum": 0},
            "error_rate": {"type": ["number", "null"], "minimum": 0, "maximum": 1},
            "requests_per_sec": {"type": ["number", "null"], "minimum": 0},
            "cache_hit_rate": {"type": ["number", "null"], "minimum": 0, "maximum": 1},
            "duration_seconds": {"type": "number", "minimum": 0},
            "generators": {"type": "integer", "minimum": 0}
          }
        },
        "latencies": {
          "type": "object",
          "required": ["overall", "by_operation"],
          "properties": {
            "overall": {"$ref": "#/definitions/latency"},
            "by_operation": {
              "type": "object",
              "additionalProperties": {"$ref": "#/definitions/latency"}
            }
          }
        },
        "ecosystem_breakdown": {
          "type": "object",
          "propertyNames": {"enum": ["npm", "pypi", "maven"]},
          "additionalProperties": {
            "type": "object",
            "required": ["requests", "errors", "latency"]
          }
        },
        "timeline": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["bucket_start", "request_count", "error_count",
                         "p95_latency_ms"],
            "properties": {
              "request_count": {"type": "integer", "minimum": 0},
              "error_count": {"type": "integer", "minimum": 0},
              "p95_latency_ms": {"type": ["number", "null"], "minimum": 0}
            }
          }
        },
        "system_metrics": {
          "type": "object",
          "required": ["available"],
          "properties": {
            "available": {"type": "boolean"},
            "hosts": {
              "type": "array",
              "items": {
                "type": "object",
                "required": ["host", "available", "samples"]
              }
            }
          }
        },
        "warnings": {
          "type": "object",
          "required": ["parse_errors", "dropped_out_of_window"]
        }
      }
    }
  },
  "definitions": {
    "latency": {
      "type": "object",
      "required": ["count", "min_ms", "max_ms", "avg_ms",
                   "p50_ms", "p90_ms", "p95_ms", "p99_ms"],
      "properties": {
        "count": {"type": "integer", "minimum": 0},
        "min_ms": {"type": ["number", "null"], "minimum": 0},
        "max_ms": {"type": ["number", "null"], "minimum": 0},
        "avg_ms": {"type": ["number", "null"], "minimum": 0},
        "p50_ms": {"type": ["number", "null"], "minimum": 0},
        "p90_ms": {"type": ["number", "null"], "minimum": 0},
        "p95_ms": {"type": ["number", "null"], "minimum": 0},
        "p99_ms": {"type": ["number", "null"], "minimum": 0}
      }
    }
  }
}`

var compiledSchema = gojsonschema.NewStringLoader(summarySchema)

// ValidateSummaryJSON checks a marshalled report against the published
// schema.
func ValidateSummaryJSON(data []byte) error {
	result, err := gojsonschema.Validate(compiledSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("report: schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var problems []string
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return fmt.Errorf("report: summary violates schema: %s", strings.Join(problems, "; "))
}
