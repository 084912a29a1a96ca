package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadFromEnv overlays environment variables onto cfg. Env always wins over
// the file so deployments can tweak a shared config without editing it.
func LoadFromEnv(cfg *Config) {
	if dirs := os.Getenv("LOADREPORT_RESULTS_DIRS"); dirs != "" {
		cfg.Results.Dirs = strings.Split(dirs, string(os.PathListSeparator))
	}
	if out := os.Getenv("LOADREPORT_OUTPUT_DIR"); out != "" {
		cfg.Results.OutputDir = out
	}
	if width := os.Getenv("LOADREPORT_BUCKET_WIDTH"); width != "" {
		if d, err := time.ParseDuration(width); err == nil {
			cfg.Stats.BucketWidth = Duration(d)
		}
	}
	if workers := os.Getenv("LOADREPORT_CONCURRENCY"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			cfg.Stats.Concurrency = n
		}
	}
	if addr := os.Getenv("LOADREPORT_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if level := os.Getenv("LOADREPORT_LOG_LEVEL"); level != "" {
		cfg.Server.LogLevel = level
	}
}

// GetEnvOrDefault returns environment variable or default value
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
