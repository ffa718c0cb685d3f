package foldcache

import (
	"fmt"
	"time"
)

// CacheConfig holds the engine's capacity and scheduling parameters.
type CacheConfig struct {
	// MaxActiveFolds bounds the active tier's entry count.
	MaxActiveFolds int `json:"max_active_folds" koanf:"max_active_folds"`

	// MaxCompressedFolds bounds the compressed tier's entry count.
	MaxCompressedFolds int `json:"max_compressed_folds" koanf:"max_compressed_folds"`

	// CompressionThresholdBytes triggers a compression pass when the active
	// tier's total live byte size exceeds it.
	CompressionThresholdBytes int64 `json:"compression_threshold_bytes" koanf:"compression_threshold_bytes"`

	// BackgroundIntervalSeconds is the period of the maintenance goroutine.
	BackgroundIntervalSeconds int `json:"background_interval_seconds" koanf:"background_interval_seconds"`

	// StalenessCutoffSeconds is how long an active fold may go unaccessed
	// before a maintenance pass compresses it.
	StalenessCutoffSeconds int `json:"staleness_cutoff_seconds" koanf:"staleness_cutoff_seconds"`

	// EvictionBatchSize bounds how many folds a single compression or
	// eviction pass may move.
	EvictionBatchSize int `json:"eviction_batch_size" koanf:"eviction_batch_size"`

	// CompressionLevel is the level used by trigger and maintenance passes.
	CompressionLevel CompressionLevel `json:"compression_level" koanf:"compression_level"`
}

// DefaultCacheConfig returns sensible defaults.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		MaxActiveFolds:            1000,
		MaxCompressedFolds:        5000,
		CompressionThresholdBytes: 10 * 1024 * 1024,
		BackgroundIntervalSeconds: 60,
		StalenessCutoffSeconds:    300,
		EvictionBatchSize:         100,
		CompressionLevel:          CompressionMedium,
	}
}

// Validate fails fast on configurations the engine cannot run with.
func (c *CacheConfig) Validate() error {
	if c.MaxActiveFolds <= 0 {
		return fmt.Errorf("max_active_folds must be > 0, got %d", c.MaxActiveFolds)
	}
	if c.MaxCompressedFolds <= 0 {
		return fmt.Errorf("max_compressed_folds must be > 0, got %d", c.MaxCompressedFolds)
	}
	if c.CompressionThresholdBytes <= 0 {
		return fmt.Errorf("compression_threshold_bytes must be > 0, got %d", c.CompressionThresholdBytes)
	}
	if c.BackgroundIntervalSeconds <= 0 {
		return fmt.Errorf("background_interval_seconds must be > 0, got %d", c.BackgroundIntervalSeconds)
	}
	if c.StalenessCutoffSeconds < 0 {
		return fmt.Errorf("staleness_cutoff_seconds must be >= 0, got %d", c.StalenessCutoffSeconds)
	}
	if c.EvictionBatchSize <= 0 {
		return fmt.Errorf("eviction_batch_size must be > 0, got %d", c.EvictionBatchSize)
	}
	if !c.CompressionLevel.Valid() {
		return fmt.Errorf("compression_level must be light, medium, or heavy, got %q", c.CompressionLevel)
	}
	return nil
}

// BackgroundInterval returns the maintenance period as a duration.
func (c *CacheConfig) BackgroundInterval() time.Duration {
	return time.Duration(c.BackgroundIntervalSeconds) * time.Second
}

// StalenessCutoff returns the staleness cutoff as a duration.
func (c *CacheConfig) StalenessCutoff() time.Duration {
	return time.Duration(c.StalenessCutoffSeconds) * time.Second
}
