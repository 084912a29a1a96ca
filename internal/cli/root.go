// Package cli wires the loadreport commands: aggregate, watch, serve.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FairForge/loadreport/internal/config"
)

// Version is stamped at build time via ldflags.
var Version = "dev"

type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "loadreport",
		Short:         "Aggregate distributed load-test artifacts into statistical reports",
		Long: `loadreport merges the per-node result files of one logical load test
(k6 request logs and system-metrics logs from each generator) into a single
dataset and computes a statistical summary: totals, latency percentiles,
per-ecosystem breakdowns, a bucketed timeline, and per-host resource usage.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config",
		config.GetEnvOrDefault("LOADREPORT_CONFIG", ""), "path to yaml config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newAggregateCmd(opts))
	root.AddCommand(newWatchCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// setup loads configuration and builds the logger shared by all commands.
func (o *rootOptions) setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	level := zap.InfoLevel
	if o.verbose || cfg.Server.LogLevel == "debug" {
		level = zap.DebugLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := zcfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("cli: build logger: %w", err)
	}
	return cfg, logger, nil
}
