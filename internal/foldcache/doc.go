// Package foldcache implements a bounded, two-tier in-memory cache for folds
// (grouped units of stored items) with content-addressed deduplication and a
// background maintenance scheduler.
//
// # Core Concepts
//
// Fold: an ordered group of items managed as a single cache entry. The cache
// treats items opaquely; it only serializes them for compression and sums
// their sizes for capacity accounting.
//
// Tiers: folds live in one of two tiers. The active tier holds folds in
// directly usable form, ordered by recency of use. The compressed tier holds
// folds as zstd-compressed byte blobs. Folds age from active to compressed
// under capacity pressure or staleness, and are promoted back on access.
//
// Deduplication: every fold gets a content digest computed over its canonical
// serialization. Registering byte-identical content returns the existing fold
// id instead of creating a second entry.
//
// Eviction: when the compressed tier overflows, the entries least recently
// accessed are discarded permanently. The engine never writes folds anywhere;
// durable storage is a collaborator's concern.
//
// # Usage
//
//	cfg := foldcache.DefaultCacheConfig()
//	engine, err := foldcache.New(cfg, foldcache.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Shutdown(context.Background())
//
//	id, err := engine.Register(ctx, fold, []string{"session:abc"})
//	fold, err := engine.Access(ctx, id)
//
// All engine state is guarded by a single mutex; every public operation is a
// bounded in-memory transformation, so contention is short-lived. A single
// background goroutine compresses stale entries and re-checks eviction
// thresholds every BackgroundIntervalSeconds until Shutdown is called.
package foldcache
