package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FairForge/loadreport/internal/report"
	"github.com/FairForge/loadreport/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr, dir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated reports over HTTP for external renderers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if addr == "" {
				addr = cfg.Server.Addr
			}
			if dir == "" {
				dir = cfg.Results.OutputDir
			}

			srv := server.New(addr, dir, logger)
			publishExisting(srv, dir, logger)
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&dir, "dir", "", "reports directory to serve (overrides config)")
	return cmd
}

// publishExisting loads every report already on disk into the gauge set so
// a freshly started server scrapes meaningfully.
func publishExisting(srv *server.Server, dir string, logger *zap.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("reports directory not readable yet", zap.String("dir", dir), zap.Error(err))
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		rep, err := report.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable report", zap.String("path", path), zap.Error(err))
			continue
		}
		srv.Metrics().Observe(rep.Summary)
	}
}
