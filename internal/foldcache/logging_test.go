package foldcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestLogger() (*Logger, *observer.ObservedLogs) {
	core, observed := observer.New(zapcore.DebugLevel)
	return NewLogger(zap.New(core)), observed
}

func TestNewLogger(t *testing.T) {
	if NewLogger(nil) == nil {
		t.Fatal("NewLogger(nil) returned nil")
	}
	if NewLogger(zap.NewNop()) == nil {
		t.Fatal("NewLogger(zap.NewNop()) returned nil")
	}
}

func TestLogger_FoldRegistered(t *testing.T) {
	l, logs := newTestLogger()

	l.FoldRegistered(context.Background(), "fold_123", 4, 2048)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.Message != "fold registered" {
		t.Errorf("message = %q, want %q", entry.Message, "fold registered")
	}
	if entry.Level != zapcore.DebugLevel {
		t.Errorf("level = %v, want Debug", entry.Level)
	}

	fields := entry.ContextMap()
	if fields["fold_id"] != "fold_123" {
		t.Errorf("fold_id = %v, want fold_123", fields["fold_id"])
	}
	if fields["item_count"] != int64(4) {
		t.Errorf("item_count = %v, want 4", fields["item_count"])
	}
	if fields["size_bytes"] != int64(2048) {
		t.Errorf("size_bytes = %v, want 2048", fields["size_bytes"])
	}
}

func TestLogger_FoldCompressed(t *testing.T) {
	l, logs := newTestLogger()

	l.FoldCompressed(context.Background(), "fold_123", CompressionHeavy, 4096, 512, 0.125)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["level"] != "heavy" {
		t.Errorf("level = %v, want heavy", fields["level"])
	}
	if fields["ratio"] != 0.125 {
		t.Errorf("ratio = %v, want 0.125", fields["ratio"])
	}
}

func TestLogger_CompressFailed(t *testing.T) {
	l, logs := newTestLogger()

	l.CompressFailed(context.Background(), "fold_123", errors.New("boom"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want Warn", entries[0].Level)
	}
}

func TestLogger_FoldEvicted(t *testing.T) {
	l, logs := newTestLogger()

	last := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	l.FoldEvicted(context.Background(), "fold_123", last)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel {
		t.Errorf("level = %v, want Info", entries[0].Level)
	}
}

func TestLogger_MaintenancePass(t *testing.T) {
	l, logs := newTestLogger()

	l.MaintenancePass(context.Background(), 5, 4, 1, 30*time.Millisecond)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["stale"] != int64(5) {
		t.Errorf("stale = %v, want 5", fields["stale"])
	}
	if fields["compressed"] != int64(4) {
		t.Errorf("compressed = %v, want 4", fields["compressed"])
	}
	if fields["evicted"] != int64(1) {
		t.Errorf("evicted = %v, want 1", fields["evicted"])
	}
}

func TestLogger_NilSafe(t *testing.T) {
	var l *Logger
	ctx := context.Background()

	// None of these should panic.
	l.FoldRegistered(ctx, "fold_1", 0, 0)
	l.FoldDeduplicated(ctx, "fold_1", "digest")
	l.FoldCompressed(ctx, "fold_1", CompressionLight, 0, 0, 0)
	l.CompressFailed(ctx, "fold_1", errors.New("x"))
	l.FoldPromoted(ctx, "fold_1", 1.0)
	l.PromoteFailed(ctx, "fold_1", errors.New("x"))
	l.FoldEvicted(ctx, "fold_1", time.Now())
	l.MaintenancePass(ctx, 0, 0, 0, 0)
	l.Debug(ctx, "msg")
	l.Warn(ctx, "msg")
	l.Error(ctx, "msg", errors.New("x"))
}
