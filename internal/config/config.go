// Package config holds the tool configuration: where artifacts live, how
// summaries are bucketed, and how generated reports are served.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Results ResultsConfig `yaml:"results"`
	Stats   StatsConfig   `yaml:"stats"`
	Server  ServerConfig  `yaml:"server"`
}

type ResultsConfig struct {
	// Dirs are the search roots scanned for artifact files.
	Dirs []string `yaml:"dirs"`
	// OutputDir receives generated report files.
	OutputDir string `yaml:"output_dir"`
}

type StatsConfig struct {
	BucketWidth Duration `yaml:"bucket_width"`
	// Concurrency bounds parallel artifact parsing. Zero means one worker
	// per CPU.
	Concurrency int `yaml:"concurrency"`
}

// Duration wraps time.Duration so yaml values like "5s" decode; bare
// numbers are taken as nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: bad duration %q: %w", v, err)
		}
		*d = Duration(parsed)
		return nil
	case int:
		*d = Duration(v)
		return nil
	default:
		return fmt.Errorf("config: bad duration value %v", raw)
	}
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type ServerConfig struct {
	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Results: ResultsConfig{
			Dirs:      []string{"./load-test-results"},
			OutputDir: "./reports",
		},
		Stats: StatsConfig{
			BucketWidth: Duration(10 * time.Second),
		},
		Server: ServerConfig{
			Addr:     ":8080",
			LogLevel: "info",
		},
	}
}

// Load reads a yaml config file on top of the defaults, then applies env
// overrides. An empty path skips the file and still applies env.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	LoadFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if len(c.Results.Dirs) == 0 {
		return fmt.Errorf("config: at least one results dir is required")
	}
	if c.Stats.BucketWidth < 0 {
		return fmt.Errorf("config: bucket width must not be negative")
	}
	if c.Stats.Concurrency < 0 {
		return fmt.Errorf("config: concurrency must not be negative")
	}
	return nil
}
