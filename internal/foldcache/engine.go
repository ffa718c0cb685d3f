package foldcache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Engine is the scheduled fold cache: an LRU-ordered active tier, a
// compressed tier, a digest index for deduplication, and a background
// maintenance goroutine. A single mutex guards all state; every public
// operation holds it for its full duration. Operations are bounded in-memory
// transformations with no I/O, so contention stays short-lived.
type Engine struct {
	mu sync.Mutex

	cfg        *CacheConfig
	active     *lruList
	compressed map[string]*ManagedFold
	digests    map[string]string // content digest -> fold id

	activeBytes     int64
	compressedBytes int64

	// Cumulative counters, guarded by mu.
	foldsCreated      int64
	foldsDeduplicated int64
	foldsCompressed   int64
	foldsPromoted     int64
	foldsEvicted      int64
	bytesSaved        int64
	bytesProcessed    int64

	logger  *Logger
	metrics *Metrics

	// Shutdown management
	isShutdown bool
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// shutdownJoinTimeout bounds how long Shutdown waits for the maintenance
// goroutine to observe the stop signal when the caller's context has no
// earlier deadline.
const shutdownJoinTimeout = 5 * time.Second

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(l *Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithZapLogger wraps a raw zap logger for the engine.
func WithZapLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = NewLogger(l)
	}
}

// WithMetrics sets custom metrics for the engine.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New creates a fold cache engine and starts its background maintenance
// goroutine. Invalid configuration fails here rather than surfacing later as
// a runtime error. A nil config uses DefaultCacheConfig.
func New(cfg *CacheConfig, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultCacheConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache config: %w", err)
	}

	metrics, _ := NewMetrics(nil)

	e := &Engine{
		cfg:        cfg,
		active:     newLRUList(),
		compressed: make(map[string]*ManagedFold),
		digests:    make(map[string]string),
		logger:     NewLogger(nil),
		metrics:    metrics,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(e)
	}

	go e.maintenanceLoop()

	return e, nil
}

// Register adds a fold to the cache and returns its id. If an existing entry
// in either tier shares the fold's content digest, the existing id is
// returned unchanged: no new entry is created and the resident one keeps its
// tier and recency. Otherwise the fold enters the active tier at the
// most-recently-used end and the capacity triggers run.
func (e *Engine) Register(ctx context.Context, fold *Fold, tags []string) (string, error) {
	ctx, span := StartSpan(ctx, "foldcache.register", fold.ID)
	defer span.End()

	// Digest first: dedup must not depend on id assignment.
	raw, err := encodeItems(fold.Items)
	if err != nil {
		RecordError(ctx, err)
		SetSpanStatus(ctx, codes.Error, "serialization failed")
		return "", fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	digest := digestBytes(raw)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isShutdown {
		return "", ErrEngineShutdown
	}

	if id, ok := e.digests[digest]; ok {
		e.foldsDeduplicated++
		e.metrics.RecordDeduplicated(ctx)
		e.logger.FoldDeduplicated(ctx, id, digest)
		SetSpanStatus(ctx, codes.Ok, "deduplicated")
		return id, nil
	}

	id := fold.ID
	if id == "" {
		id = "fold_" + uuid.New().String()[:8]
		fold.ID = id
	}
	if _, ok := e.active.get(id); ok {
		return "", ErrFoldAlreadyExists
	}
	if _, ok := e.compressed[id]; ok {
		return "", ErrFoldAlreadyExists
	}

	fold.SizeBytes = int64(len(raw))
	mf := newManagedFold(fold, digest, tags)
	e.active.pushMRU(mf)
	e.digests[digest] = id
	e.activeBytes += mf.metrics.SizeBytes
	e.foldsCreated++

	e.metrics.RecordRegistered(ctx, mf.metrics.SizeBytes)
	e.logger.FoldRegistered(ctx, id, mf.metrics.ItemCount, mf.metrics.SizeBytes)

	e.compressTriggerLocked(ctx)
	e.evictTriggerLocked(ctx)

	SetSpanStatus(ctx, codes.Ok, "fold registered")
	return id, nil
}

// Access retrieves a fold by id, transparently decompressing and promoting a
// compressed entry back to the active tier. An unknown id returns
// ErrFoldNotFound with no side effects. A decompression failure returns
// ErrDecompressionFailed and leaves the entry in the compressed tier in error
// status, still addressable for retry or eviction.
func (e *Engine) Access(ctx context.Context, foldID string) (*Fold, error) {
	ctx, span := StartSpan(ctx, "foldcache.access", foldID)
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isShutdown {
		return nil, ErrEngineShutdown
	}

	if mf, ok := e.active.get(foldID); ok {
		mf.Touch()
		e.active.moveToMRU(foldID)
		SetSpanStatus(ctx, codes.Ok, "active hit")
		return mf.fold, nil
	}

	mf, ok := e.compressed[foldID]
	if !ok {
		SetSpanStatus(ctx, codes.Ok, "not found")
		return nil, ErrFoldNotFound
	}

	mf.Touch()
	payloadBytes := int64(len(mf.compressedPayload))
	if err := mf.Decompress(); err != nil {
		e.metrics.RecordCompressError(ctx, "decompress")
		e.logger.PromoteFailed(ctx, foldID, err)
		RecordError(ctx, err)
		SetSpanStatus(ctx, codes.Error, "decompression failed")
		return nil, err
	}

	delete(e.compressed, foldID)
	e.compressedBytes -= payloadBytes
	e.active.pushMRU(mf)
	e.activeBytes += mf.metrics.SizeBytes
	e.foldsPromoted++

	e.metrics.RecordPromoted(ctx)
	e.logger.FoldPromoted(ctx, foldID, mf.metrics.CompressionRatio)

	// Promotion grows the active tier, so re-check both capacity triggers.
	e.compressTriggerLocked(ctx)
	e.evictTriggerLocked(ctx)

	SetSpanStatus(ctx, codes.Ok, "promoted")
	return mf.fold, nil
}

// FindByTags returns the ids of every fold, in either tier, whose tag set
// intersects the query set. Result order is unspecified.
func (e *Engine) FindByTags(ctx context.Context, tags []string) []string {
	ctx, span := StartSpan(ctx, "foldcache.find_by_tags", "")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	var ids []string
	e.active.each(func(mf *ManagedFold) {
		if mf.HasAnyTag(tags) {
			ids = append(ids, mf.fold.ID)
		}
	})
	for id, mf := range e.compressed {
		if mf.HasAnyTag(tags) {
			ids = append(ids, id)
		}
	}

	SetSpanStatus(ctx, codes.Ok, "search complete")
	return ids
}

// StatusSnapshot is a point-in-time view of the engine's bookkeeping.
type StatusSnapshot struct {
	ActiveCount        int   `json:"active_count"`
	CompressedCount    int   `json:"compressed_count"`
	TotalCount         int   `json:"total_count"`
	MaxActiveFolds     int   `json:"max_active_folds"`
	MaxCompressedFolds int   `json:"max_compressed_folds"`
	ActiveBytes        int64 `json:"active_bytes"`
	CompressedBytes    int64 `json:"compressed_bytes"`
	ResidentBytes      int64 `json:"resident_bytes"`

	// CompressionRatio is cumulative bytes saved over cumulative original
	// bytes processed, 0 until the first compression.
	CompressionRatio float64 `json:"compression_ratio"`

	FoldsCreated      int64 `json:"folds_created"`
	FoldsDeduplicated int64 `json:"folds_deduplicated"`
	FoldsCompressed   int64 `json:"folds_compressed"`
	FoldsPromoted     int64 `json:"folds_promoted"`
	FoldsEvicted      int64 `json:"folds_evicted"`
	BytesSaved        int64 `json:"bytes_saved"`

	// Healthy is false when total count exceeds the combined tier capacity.
	Healthy bool `json:"healthy"`
}

// Status returns a snapshot of counts, capacities, resident bytes, and
// cumulative counters.
func (e *Engine) Status() StatusSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	activeCount := e.active.len()
	compressedCount := len(e.compressed)
	total := activeCount + compressedCount

	var ratio float64
	if e.bytesProcessed > 0 {
		ratio = float64(e.bytesSaved) / float64(e.bytesProcessed)
	}

	return StatusSnapshot{
		ActiveCount:        activeCount,
		CompressedCount:    compressedCount,
		TotalCount:         total,
		MaxActiveFolds:     e.cfg.MaxActiveFolds,
		MaxCompressedFolds: e.cfg.MaxCompressedFolds,
		ActiveBytes:        e.activeBytes,
		CompressedBytes:    e.compressedBytes,
		ResidentBytes:      e.activeBytes + e.compressedBytes,
		CompressionRatio:   ratio,
		FoldsCreated:       e.foldsCreated,
		FoldsDeduplicated:  e.foldsDeduplicated,
		FoldsCompressed:    e.foldsCompressed,
		FoldsPromoted:      e.foldsPromoted,
		FoldsEvicted:       e.foldsEvicted,
		BytesSaved:         e.bytesSaved,
		Healthy:            total <= e.cfg.MaxActiveFolds+e.cfg.MaxCompressedFolds,
	}
}

// Shutdown signals the maintenance goroutine to stop and waits, bounded by
// the context deadline and a fixed join timeout, for it to finish its current
// iteration. Idempotent; the join is best effort, not a hard guarantee.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.isShutdown {
		e.mu.Unlock()
		return nil
	}
	e.isShutdown = true
	close(e.stopCh)
	e.mu.Unlock()

	select {
	case <-e.doneCh:
		e.logger.Debug(ctx, "shutdown complete")
	case <-ctx.Done():
		e.logger.Warn(ctx, "shutdown join cancelled", zap.Error(ctx.Err()))
	case <-time.After(shutdownJoinTimeout):
		e.logger.Warn(ctx, "shutdown join timed out")
	}
	return nil
}

// compressTriggerLocked moves a batch of least-recently-used active folds to
// the compressed tier when the active tier exceeds its byte threshold or
// entry capacity. Batch size is the smaller of EvictionBatchSize and the
// count needed to bring the tier back toward half of MaxActiveFolds, at least
// one. The batch never reaches the most-recently-used entry: that is the fold
// just registered or just handed back to a caller, and compressing it would
// clear the item list the caller is holding. Folds that fail to compress stay
// active in error status and are retried on a later pass, never silently
// dropped.
//
// Caller must hold e.mu.
func (e *Engine) compressTriggerLocked(ctx context.Context) {
	activeCount := e.active.len()
	if e.activeBytes <= e.cfg.CompressionThresholdBytes && activeCount <= e.cfg.MaxActiveFolds {
		return
	}

	need := activeCount - e.cfg.MaxActiveFolds/2
	if need < 1 {
		need = 1
	}
	if need >= activeCount {
		need = activeCount - 1
	}
	if need < 1 {
		return
	}
	batch := e.cfg.EvictionBatchSize
	if need < batch {
		batch = need
	}

	e.compressBatchLocked(ctx, e.active.lruBatch(batch, nil))
}

// compressBatchLocked compresses each fold in the batch, moving successes to
// the compressed tier. Caller must hold e.mu.
func (e *Engine) compressBatchLocked(ctx context.Context, batch []*ManagedFold) int {
	moved := 0
	for _, mf := range batch {
		id := mf.fold.ID
		originalBytes := mf.metrics.SizeBytes
		if err := mf.Compress(e.cfg.CompressionLevel); err != nil {
			e.metrics.RecordCompressError(ctx, "compress")
			e.logger.CompressFailed(ctx, id, err)
			continue
		}

		compressedSize := int64(len(mf.compressedPayload))
		e.active.remove(id)
		e.activeBytes -= originalBytes
		e.compressed[id] = mf
		e.compressedBytes += compressedSize
		e.foldsCompressed++
		e.bytesSaved += originalBytes - compressedSize
		e.bytesProcessed += originalBytes
		moved++

		e.metrics.RecordCompressed(ctx, mf.compressionLevel, originalBytes-compressedSize, mf.metrics.CompressionRatio)
		e.logger.FoldCompressed(ctx, id, mf.compressionLevel, originalBytes, compressedSize, mf.metrics.CompressionRatio)
	}
	return moved
}

// evictTriggerLocked permanently discards the oldest compressed folds, by
// last access, when the compressed tier overflows. Batch size is the smaller
// of EvictionBatchSize and the overflow. Caller must hold e.mu.
func (e *Engine) evictTriggerLocked(ctx context.Context) int {
	overflow := len(e.compressed) - e.cfg.MaxCompressedFolds
	if overflow <= 0 {
		return 0
	}
	batch := e.cfg.EvictionBatchSize
	if overflow < batch {
		batch = overflow
	}

	candidates := make([]*ManagedFold, 0, len(e.compressed))
	for _, mf := range e.compressed {
		candidates = append(candidates, mf)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].lastActivity().Before(candidates[j].lastActivity())
	})

	evicted := 0
	for _, mf := range candidates[:batch] {
		id := mf.fold.ID
		if err := mf.transitionTo(FoldStatusEvicted); err != nil {
			e.logger.Warn(ctx, "eviction skipped", zap.String("fold_id", id), zap.Error(err))
			continue
		}
		mf.status = FoldStatusEvicted
		delete(e.compressed, id)
		delete(e.digests, mf.contentDigest)
		e.compressedBytes -= int64(len(mf.compressedPayload))
		e.foldsEvicted++
		evicted++

		e.metrics.RecordEvicted(ctx)
		e.logger.FoldEvicted(ctx, id, mf.lastActivity())
	}
	return evicted
}
