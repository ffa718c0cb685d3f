package foldcache

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Logger wraps zap.Logger with foldcache-specific structured logging.
type Logger struct {
	logger *zap.Logger
}

// NewLogger creates a new Logger. If logger is nil, uses a no-op logger.
func NewLogger(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger.Named("foldcache")}
}

// FoldRegistered logs a new fold entering the active tier.
func (l *Logger) FoldRegistered(ctx context.Context, foldID string, itemCount int, sizeBytes int64) {
	if l == nil || l.logger == nil {
		return
	}
	fields := l.baseFields(ctx, foldID)
	fields = append(fields,
		zap.Int("item_count", itemCount),
		zap.Int64("size_bytes", sizeBytes),
	)
	l.logger.Debug("fold registered", fields...)
}

// FoldDeduplicated logs a register call resolved by the digest index.
func (l *Logger) FoldDeduplicated(ctx context.Context, foldID, digest string) {
	if l == nil || l.logger == nil {
		return
	}
	fields := l.baseFields(ctx, foldID)
	fields = append(fields, zap.String("digest", digest))
	l.logger.Debug("fold deduplicated", fields...)
}

// FoldCompressed logs a fold moving to the compressed tier.
func (l *Logger) FoldCompressed(ctx context.Context, foldID string, level CompressionLevel, originalBytes, compressedBytes int64, ratio float64) {
	if l == nil || l.logger == nil {
		return
	}
	fields := l.baseFields(ctx, foldID)
	fields = append(fields,
		zap.String("level", string(level)),
		zap.Int64("original_bytes", originalBytes),
		zap.Int64("compressed_bytes", compressedBytes),
		zap.Float64("ratio", ratio),
	)
	l.logger.Debug("fold compressed", fields...)
}

// CompressFailed logs a per-fold compression failure. The fold stays in the
// active tier in error status and is retried on a later pass.
func (l *Logger) CompressFailed(ctx context.Context, foldID string, err error) {
	if l == nil || l.logger == nil {
		return
	}
	fields := l.baseFields(ctx, foldID)
	fields = append(fields, zap.Error(err))
	l.logger.Warn("fold compression failed", fields...)
}

// FoldPromoted logs a compressed fold returning to the active tier on access.
func (l *Logger) FoldPromoted(ctx context.Context, foldID string, ratio float64) {
	if l == nil || l.logger == nil {
		return
	}
	fields := l.baseFields(ctx, foldID)
	fields = append(fields, zap.Float64("ratio", ratio))
	l.logger.Debug("fold promoted", fields...)
}

// PromoteFailed logs a decompression failure during access. The fold stays in
// the compressed tier in error status.
func (l *Logger) PromoteFailed(ctx context.Context, foldID string, err error) {
	if l == nil || l.logger == nil {
		return
	}
	fields := l.baseFields(ctx, foldID)
	fields = append(fields, zap.Error(err))
	l.logger.Warn("fold promotion failed", fields...)
}

// FoldEvicted logs a permanent eviction from the compressed tier.
func (l *Logger) FoldEvicted(ctx context.Context, foldID string, lastActivity time.Time) {
	if l == nil || l.logger == nil {
		return
	}
	fields := l.baseFields(ctx, foldID)
	fields = append(fields, zap.Time("last_activity", lastActivity))
	l.logger.Info("fold evicted", fields...)
}

// MaintenancePass logs a completed background maintenance iteration.
func (l *Logger) MaintenancePass(ctx context.Context, stale, compressed, evicted int, duration time.Duration) {
	if l == nil || l.logger == nil {
		return
	}
	fields := []zap.Field{
		zap.Int("stale", stale),
		zap.Int("compressed", compressed),
		zap.Int("evicted", evicted),
		zap.Duration("duration", duration),
	}
	fields = append(fields, l.traceFields(ctx)...)
	l.logger.Debug("maintenance pass", fields...)
}

// Warn logs a warning with context.
func (l *Logger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	if l == nil || l.logger == nil {
		return
	}
	allFields := l.traceFields(ctx)
	allFields = append(allFields, fields...)
	l.logger.Warn(msg, allFields...)
}

// Error logs an error with context.
func (l *Logger) Error(ctx context.Context, msg string, err error, fields ...zap.Field) {
	if l == nil || l.logger == nil {
		return
	}
	allFields := l.traceFields(ctx)
	allFields = append(allFields, zap.Error(err))
	allFields = append(allFields, fields...)
	l.logger.Error(msg, allFields...)
}

// Debug logs a debug message with context.
func (l *Logger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	if l == nil || l.logger == nil {
		return
	}
	allFields := l.traceFields(ctx)
	allFields = append(allFields, fields...)
	l.logger.Debug(msg, allFields...)
}

// baseFields returns common fields for fold events.
func (l *Logger) baseFields(ctx context.Context, foldID string) []zap.Field {
	fields := []zap.Field{
		zap.String("fold_id", foldID),
	}
	return append(fields, l.traceFields(ctx)...)
}

// traceFields extracts trace context from the context.
func (l *Logger) traceFields(ctx context.Context) []zap.Field {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	sc := span.SpanContext()
	fields := []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
	if sc.IsSampled() {
		fields = append(fields, zap.Bool("trace_sampled", true))
	}
	return fields
}
