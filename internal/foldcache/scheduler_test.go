package foldcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenance_CompressesStaleFolds(t *testing.T) {
	cfg := testEngineConfig()
	cfg.BackgroundIntervalSeconds = 1
	cfg.StalenessCutoffSeconds = 0
	e := newTestEngine(t, cfg)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := e.Register(ctx, distinctFold(i), nil)
		require.NoError(t, err)
	}
	require.Equal(t, int64(0), e.Status().FoldsCompressed)

	// Every fold is immediately stale at cutoff zero; the next maintenance
	// pass must age all of them into the compressed tier.
	require.Eventually(t, func() bool {
		return e.Status().FoldsCompressed >= 3
	}, 5*time.Second, 50*time.Millisecond, "background pass should compress stale folds")

	status := e.Status()
	assert.Equal(t, 0, status.ActiveCount)
	assert.Equal(t, 3, status.CompressedCount)
}

func TestMaintenance_SkipsFreshFolds(t *testing.T) {
	cfg := testEngineConfig()
	cfg.BackgroundIntervalSeconds = 1
	cfg.StalenessCutoffSeconds = 3600
	e := newTestEngine(t, cfg)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := e.Register(ctx, distinctFold(i), nil)
		require.NoError(t, err)
	}

	// Give the loop time to fire at least once.
	time.Sleep(1500 * time.Millisecond)

	status := e.Status()
	assert.Equal(t, int64(0), status.FoldsCompressed, "fresh folds must not be aged out")
	assert.Equal(t, 3, status.ActiveCount)
}

func TestMaintenance_EnforcesEvictionThreshold(t *testing.T) {
	cfg := testEngineConfig()
	cfg.BackgroundIntervalSeconds = 1
	cfg.StalenessCutoffSeconds = 0
	cfg.MaxActiveFolds = 2
	cfg.MaxCompressedFolds = 2
	cfg.EvictionBatchSize = 10
	e := newTestEngine(t, cfg)
	ctx := context.Background()

	for i := 1; i <= 6; i++ {
		_, err := e.Register(ctx, distinctFold(i), nil)
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		status := e.Status()
		return status.ActiveCount == 0 && status.CompressedCount <= cfg.MaxCompressedFolds
	}, 5*time.Second, 50*time.Millisecond, "background passes should drain and bound both tiers")

	assert.True(t, e.Status().Healthy)
}

func TestShutdown_JoinsMaintenanceLoop(t *testing.T) {
	cfg := testEngineConfig()
	cfg.BackgroundIntervalSeconds = 1
	e, err := New(cfg)
	require.NoError(t, err)

	require.NoError(t, e.Shutdown(context.Background()))

	select {
	case <-e.doneCh:
	default:
		t.Fatal("maintenance goroutine should have observed the stop signal")
	}
}

func TestShutdown_BoundedByContext(t *testing.T) {
	e, err := New(testEngineConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, e.Shutdown(ctx))
}
