package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/FairForge/loadreport/internal/watch"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &aggregateOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-aggregate whenever new artifacts for the test arrive",
		Long: `watch runs one aggregation immediately, then keeps watching the results
directories and rebuilds the report as artifact files land from remote
generators. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			rebuild := func(ctx context.Context) error {
				_, err := runAggregate(ctx, cfg, logger, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
				return err
			}
			// The first pass may legitimately find nothing yet.
			if err := rebuild(cmd.Context()); err != nil {
				logger.Warn("initial aggregation incomplete: " + err.Error())
			}

			dirs := opts.resultsDirs
			if len(dirs) == 0 {
				dirs = cfg.Results.Dirs
			}
			w := watch.New(opts.testID, dirs, rebuild, logger)
			if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.testID, "test-id", "", "test identifier shared by all artifacts (required)")
	cmd.Flags().StringArrayVar(&opts.resultsDirs, "results-dir", nil, "artifact search root (repeatable; overrides config)")
	cmd.Flags().StringVar(&opts.out, "out", "", "report output path (default <output_dir>/<test-id>.json)")
	cmd.Flags().DurationVar(&opts.bucket, "bucket", 0, "timeline bucket width (overrides config)")
	_ = cmd.MarkFlagRequired("test-id")
	return cmd
}
