package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotEmpty(t, cfg.Results.Dirs)
	assert.Equal(t, 10*time.Second, cfg.Stats.BucketWidth.Std())
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
results:
  dirs: ["/data/results"]
  output_dir: /data/reports
stats:
  bucket_width: 5s
  concurrency: 4
server:
  addr: ":9999"
`), 0600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"/data/results"}, cfg.Results.Dirs)
		assert.Equal(t, 5*time.Second, cfg.Stats.BucketWidth.Std())
		assert.Equal(t, 4, cfg.Stats.Concurrency)
		assert.Equal(t, ":9999", cfg.Server.Addr)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("empty path uses defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default().Results.OutputDir, cfg.Results.OutputDir)
	})
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LOADREPORT_OUTPUT_DIR", "/env/reports")
	t.Setenv("LOADREPORT_BUCKET_WIDTH", "1m")
	t.Setenv("LOADREPORT_CONCURRENCY", "8")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/env/reports", cfg.Results.OutputDir)
	assert.Equal(t, time.Minute, cfg.Stats.BucketWidth.Std())
	assert.Equal(t, 8, cfg.Stats.Concurrency)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Results.Dirs = nil
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Stats.Concurrency = -1
	assert.Error(t, cfg.Validate())
}
