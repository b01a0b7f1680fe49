package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaultWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8501, cfg.Server.Port)
	assert.Equal(t, "ci", cfg.Campus.Centro)
	assert.FileExists(t, path)

	// Relative paths are anchored to the config file directory.
	assert.Equal(t, filepath.Join(dir, "data", "floors"), cfg.Storage.FloorsDirectory)
}

func TestLoad_ParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
campus:
  centro: cear
svg:
  icon_scale: 0.5
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "cear", cfg.Campus.Centro)
	assert.Equal(t, 0.5, cfg.SVG.IconScale)
	// Untouched sections keep defaults.
	assert.Equal(t, "#B2BCBE", cfg.SVG.DefaultHoverColor)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "7777")
	t.Setenv("CAMPUS_API_URL", "http://localhost:9999/api")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "http://localhost:9999/api", cfg.Campus.BaseURL)
}

func TestLoad_DataDirOverrideMovesStorageTree(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "volume")
	t.Setenv("DATA_DIR", dataDir)

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	// Every storage path follows the overridden data directory.
	assert.Equal(t, dataDir, cfg.Storage.DataDirectory)
	assert.Equal(t, filepath.Join(dataDir, "floors"), cfg.Storage.FloorsDirectory)
	assert.Equal(t, filepath.Join(dataDir, "processed"), cfg.Storage.ProcessedDirectory)
	assert.Equal(t, filepath.Join(dataDir, "temp"), cfg.Storage.TempDirectory)
	assert.Equal(t, filepath.Join(dataDir, "snapshot.msgpack"), cfg.Storage.SnapshotCacheFile)
}

func TestGetServerAddr(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "0.0.0.0:8501", cfg.GetServerAddr())
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	require.NoError(t, cfg.EnsureDirectories())
	assert.DirExists(t, cfg.Storage.ProcessedDirectory)
	assert.DirExists(t, cfg.Storage.TempDirectory)
}
