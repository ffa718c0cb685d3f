package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/foldcache/internal/foldcache"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Cache.MaxActiveFolds)
	assert.Equal(t, 5000, cfg.Cache.MaxCompressedFolds)
	assert.Equal(t, int64(10*1024*1024), cfg.Cache.CompressionThresholdBytes)
	assert.Equal(t, 60, cfg.Cache.BackgroundIntervalSeconds)
	assert.Equal(t, 100, cfg.Cache.EvictionBatchSize)
	assert.Equal(t, foldcache.CompressionMedium, cfg.Cache.CompressionLevel)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
cache:
  max_active_folds: 50
  eviction_batch_size: 5
  compression_level: heavy
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Cache.MaxActiveFolds)
	assert.Equal(t, 5, cfg.Cache.EvictionBatchSize)
	assert.Equal(t, foldcache.CompressionHeavy, cfg.Cache.CompressionLevel)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Fields the file omits keep their defaults.
	assert.Equal(t, 5000, cfg.Cache.MaxCompressedFolds)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
cache:
  max_active_folds: 50
`)
	t.Setenv("FOLDCACHE_CACHE_MAX_ACTIVE_FOLDS", "75")
	t.Setenv("FOLDCACHE_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 75, cfg.Cache.MaxActiveFolds)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_ZeroIsTreatedAsUnset(t *testing.T) {
	t.Setenv("FOLDCACHE_CACHE_MAX_ACTIVE_FOLDS", "0")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Cache.MaxActiveFolds, "a zero value falls back to the default")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfigFile(t, `
cache:
  max_active_folds: -3
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_active_folds")
}

func TestLoad_InvalidLoggingLevel(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: verbose
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "level")
}

func TestConfig_Validate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Logging.Format = "xml"
	require.Error(t, cfg.Validate())
}
