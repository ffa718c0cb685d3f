package foldcache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// maintenanceLoop runs in a dedicated goroutine started by New. It fires
// every BackgroundIntervalSeconds until Shutdown closes stopCh, compressing
// stale active folds and re-checking the eviction threshold independently of
// caller activity.
func (e *Engine) maintenanceLoop() {
	defer close(e.doneCh)
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error(context.Background(), "maintenance goroutine panicked",
				nil,
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()

	ticker := time.NewTicker(e.cfg.BackgroundInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.maintenancePass()
		case <-e.stopCh:
			return
		}
	}
}

// maintenancePass runs one maintenance iteration: compress active folds whose
// last access (or creation, if never accessed) predates the staleness cutoff,
// then re-run the capacity triggers. Per-fold failures are logged and skipped;
// they never abort the rest of the batch or the loop.
func (e *Engine) maintenancePass() {
	ctx, span := StartSpan(context.Background(), "foldcache.maintenance", "")
	defer span.End()

	start := time.Now()
	cutoff := start.Add(-e.cfg.StalenessCutoff())

	e.mu.Lock()
	defer e.mu.Unlock()

	stale := e.active.lruBatch(e.cfg.EvictionBatchSize, func(mf *ManagedFold) bool {
		return mf.lastActivity().Before(cutoff)
	})
	compressed := e.compressBatchLocked(ctx, stale)

	e.compressTriggerLocked(ctx)
	evicted := e.evictTriggerLocked(ctx)

	e.logger.MaintenancePass(ctx, len(stale), compressed, evicted, time.Since(start))
}
