// Package config provides configuration loading for the fold cache engine.
package config

import (
	"fmt"

	"github.com/fyrsmithlabs/foldcache/internal/foldcache"
)

// Config is the root configuration for a foldcache deployment.
type Config struct {
	// Cache holds the engine's capacity and scheduling parameters.
	Cache foldcache.CacheConfig `json:"cache" koanf:"cache"`

	// Logging holds the engine's log output parameters.
	Logging LoggingConfig `json:"logging" koanf:"logging"`
}

// LoggingConfig controls how the engine's zap logger is built.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" koanf:"level"`

	// Format is json or console.
	Format string `json:"format" koanf:"format"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Cache: *foldcache.DefaultCacheConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration, failing fast on values the engine
// cannot run with.
func (c *Config) Validate() error {
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging: level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging: format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	return nil
}

// applyDefaults fills in zero values left by partial files or environments.
func applyDefaults(cfg *Config) {
	def := Default()

	if cfg.Cache.MaxActiveFolds == 0 {
		cfg.Cache.MaxActiveFolds = def.Cache.MaxActiveFolds
	}
	if cfg.Cache.MaxCompressedFolds == 0 {
		cfg.Cache.MaxCompressedFolds = def.Cache.MaxCompressedFolds
	}
	if cfg.Cache.CompressionThresholdBytes == 0 {
		cfg.Cache.CompressionThresholdBytes = def.Cache.CompressionThresholdBytes
	}
	if cfg.Cache.BackgroundIntervalSeconds == 0 {
		cfg.Cache.BackgroundIntervalSeconds = def.Cache.BackgroundIntervalSeconds
	}
	if cfg.Cache.StalenessCutoffSeconds == 0 {
		cfg.Cache.StalenessCutoffSeconds = def.Cache.StalenessCutoffSeconds
	}
	if cfg.Cache.EvictionBatchSize == 0 {
		cfg.Cache.EvictionBatchSize = def.Cache.EvictionBatchSize
	}
	if cfg.Cache.CompressionLevel == "" {
		cfg.Cache.CompressionLevel = def.Cache.CompressionLevel
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
}
