package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "msneuron.yaml")

	cfg := DefaultConfig()
	cfg.Labels.LegacyToggle = true
	cfg.Analysis.Neighbors = 5
	cfg.Logging.Level = "debug"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigPartialOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msneuron.yaml")
	data := []byte("analysis:\n  mergeDistance: 2.5\nlabels:\n  legacyToggle: true\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Analysis.MergeDistance)
	assert.True(t, cfg.Labels.LegacyToggle)
	assert.Equal(t, 3, cfg.Analysis.Neighbors)
	assert.Equal(t, 95, cfg.Render.JPEGQuality)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("analysis: [1, 2"), 0644))
	_, err := LoadConfig(bad)
	assert.Error(t, err)

	outOfRange := filepath.Join(dir, "range.yaml")
	require.NoError(t, os.WriteFile(outOfRange, []byte("render:\n  jpegQuality: 0\n"), 0644))
	_, err = LoadConfig(outOfRange)
	assert.ErrorContains(t, err, "jpegQuality")
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
