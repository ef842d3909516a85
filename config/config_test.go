package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WarpZephyr/DSMapStudio/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.True(t, cfg.Textures.Enabled)
	assert.False(t, cfg.Resources.StrictResourceChecking)
	assert.Equal(t, 4, cfg.Resources.JobSchedulerWidth)
	assert.Equal(t, 6, cfg.Resources.PipelinePortParallelism)
}

func TestLoadAppliesDefaultsWithoutFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		// An explicit path that does not exist is a read error; the search
		// path variant tolerates absence instead.
		cfg, err = config.Load("")
	}
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Resources.JobSchedulerWidth)
}

func TestLoadReadsFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
textures:
  enabled: false
resources:
  strict_resource_checking: true
  job_scheduler_width: 2
  pipeline_port_parallelism: 3
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Textures.Enabled)
	assert.True(t, cfg.Resources.StrictResourceChecking)
	assert.Equal(t, 2, cfg.Resources.JobSchedulerWidth)
	assert.Equal(t, 3, cfg.Resources.PipelinePortParallelism)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
resources:
  job_scheduler_width: 999
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JobSchedulerWidth")
}
