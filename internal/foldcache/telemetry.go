package foldcache

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// InstrumentationName is the name used for OTEL instrumentation.
	InstrumentationName = "github.com/fyrsmithlabs/foldcache/internal/foldcache"
)

// Metrics provides OpenTelemetry metrics for the foldcache package.
type Metrics struct {
	// Counters
	foldRegisteredTotal   metric.Int64Counter
	foldDeduplicatedTotal metric.Int64Counter
	foldCompressedTotal   metric.Int64Counter
	foldPromotedTotal     metric.Int64Counter
	foldEvictedTotal      metric.Int64Counter
	compressErrorsTotal   metric.Int64Counter
	bytesSavedTotal       metric.Int64Counter

	// Gauges (using UpDownCounter for gauge semantics)
	activeFoldCount     metric.Int64UpDownCounter
	compressedFoldCount metric.Int64UpDownCounter

	// Histograms
	compressionRatio metric.Float64Histogram
	foldSizeBytes    metric.Int64Histogram

	// initialized tracks if metrics were successfully initialized
	initialized bool
}

// NewMetrics creates a new Metrics instance with the provided meter.
// If meter is nil, uses the global meter provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(InstrumentationName)
	}

	m := &Metrics{}
	var err error

	m.foldRegisteredTotal, err = meter.Int64Counter(
		"foldcache.fold.registered.total",
		metric.WithDescription("Total number of folds registered"),
		metric.WithUnit("{fold}"),
	)
	if err != nil {
		return nil, err
	}

	m.foldDeduplicatedTotal, err = meter.Int64Counter(
		"foldcache.fold.deduplicated.total",
		metric.WithDescription("Total number of register calls resolved by the digest index"),
		metric.WithUnit("{fold}"),
	)
	if err != nil {
		return nil, err
	}

	m.foldCompressedTotal, err = meter.Int64Counter(
		"foldcache.fold.compressed.total",
		metric.WithDescription("Total number of folds moved to the compressed tier"),
		metric.WithUnit("{fold}"),
	)
	if err != nil {
		return nil, err
	}

	m.foldPromotedTotal, err = meter.Int64Counter(
		"foldcache.fold.promoted.total",
		metric.WithDescription("Total number of folds promoted back to the active tier"),
		metric.WithUnit("{fold}"),
	)
	if err != nil {
		return nil, err
	}

	m.foldEvictedTotal, err = meter.Int64Counter(
		"foldcache.fold.evicted.total",
		metric.WithDescription("Total number of folds permanently evicted"),
		metric.WithUnit("{fold}"),
	)
	if err != nil {
		return nil, err
	}

	m.compressErrorsTotal, err = meter.Int64Counter(
		"foldcache.compression.errors.total",
		metric.WithDescription("Total number of per-fold compression and decompression failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	m.bytesSavedTotal, err = meter.Int64Counter(
		"foldcache.compression.bytes_saved.total",
		metric.WithDescription("Cumulative bytes saved by compression"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	// Gauges
	m.activeFoldCount, err = meter.Int64UpDownCounter(
		"foldcache.fold.active.count",
		metric.WithDescription("Number of folds resident in the active tier"),
		metric.WithUnit("{fold}"),
	)
	if err != nil {
		return nil, err
	}

	m.compressedFoldCount, err = meter.Int64UpDownCounter(
		"foldcache.fold.compressed.count",
		metric.WithDescription("Number of folds resident in the compressed tier"),
		metric.WithUnit("{fold}"),
	)
	if err != nil {
		return nil, err
	}

	// Histograms
	m.compressionRatio, err = meter.Float64Histogram(
		"foldcache.compression.ratio",
		metric.WithDescription("Per-fold compression ratio (compressed bytes / original bytes)"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.2, 0.3, 0.5, 0.7, 0.9, 1.0),
	)
	if err != nil {
		return nil, err
	}

	m.foldSizeBytes, err = meter.Int64Histogram(
		"foldcache.fold.size.bytes",
		metric.WithDescription("Serialized size of registered folds"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(1024, 4096, 16384, 65536, 262144, 1048576, 4194304),
	)
	if err != nil {
		return nil, err
	}

	m.initialized = true
	return m, nil
}

// RecordRegistered records a new fold entering the active tier.
func (m *Metrics) RecordRegistered(ctx context.Context, sizeBytes int64) {
	if m == nil || !m.initialized {
		return
	}
	m.foldRegisteredTotal.Add(ctx, 1)
	m.activeFoldCount.Add(ctx, 1)
	m.foldSizeBytes.Record(ctx, sizeBytes)
}

// RecordDeduplicated records a register call resolved by the digest index.
func (m *Metrics) RecordDeduplicated(ctx context.Context) {
	if m == nil || !m.initialized {
		return
	}
	m.foldDeduplicatedTotal.Add(ctx, 1)
}

// RecordCompressed records a fold moving from the active to the compressed tier.
func (m *Metrics) RecordCompressed(ctx context.Context, level CompressionLevel, bytesSaved int64, ratio float64) {
	if m == nil || !m.initialized {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("level", string(level)),
	)
	m.foldCompressedTotal.Add(ctx, 1, attrs)
	m.activeFoldCount.Add(ctx, -1)
	m.compressedFoldCount.Add(ctx, 1)
	m.bytesSavedTotal.Add(ctx, bytesSaved)
	m.compressionRatio.Record(ctx, ratio, attrs)
}

// RecordPromoted records a fold moving from the compressed to the active tier.
func (m *Metrics) RecordPromoted(ctx context.Context) {
	if m == nil || !m.initialized {
		return
	}
	m.foldPromotedTotal.Add(ctx, 1)
	m.compressedFoldCount.Add(ctx, -1)
	m.activeFoldCount.Add(ctx, 1)
}

// RecordEvicted records a permanent eviction from the compressed tier.
func (m *Metrics) RecordEvicted(ctx context.Context) {
	if m == nil || !m.initialized {
		return
	}
	m.foldEvictedTotal.Add(ctx, 1)
	m.compressedFoldCount.Add(ctx, -1)
}

// RecordCompressError records a per-fold compression or decompression failure.
func (m *Metrics) RecordCompressError(ctx context.Context, op string) {
	if m == nil || !m.initialized {
		return
	}
	m.compressErrorsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
	))
}

// Tracer returns a tracer for the foldcache package.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// StartSpan starts a new span with fold context.
func StartSpan(ctx context.Context, name string, foldID string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("foldcache.fold_id", foldID),
	}
	allOpts := append([]trace.SpanStartOption{trace.WithAttributes(attrs...)}, opts...)
	return Tracer().Start(ctx, name, allOpts...)
}

// RecordError records an error on the current span.
func RecordError(ctx context.Context, err error, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err, trace.WithAttributes(attrs...))
	}
}

// SetSpanStatus sets the status on the current span.
func SetSpanStatus(ctx context.Context, code codes.Code, description string) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetStatus(code, description)
	}
}
