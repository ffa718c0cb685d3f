package foldcache

import (
	"fmt"
	"time"
)

// ManagedFold wraps exactly one Fold with cache bookkeeping: lifecycle status,
// access metrics, a content digest for deduplication, an optional compressed
// byte representation, and caller-supplied tags.
//
// At any time at most one of {live fold items, compressed payload} is
// authoritative; Status determines which. ManagedFold carries no lock of its
// own: the engine's mutex guards every mutation.
type ManagedFold struct {
	fold              *Fold
	status            FoldStatus
	metrics           FoldMetrics
	contentDigest     string
	compressedPayload []byte
	compressionLevel  CompressionLevel
	tags              map[string]struct{}
}

// newManagedFold wraps fold, taking ownership of it. The digest is computed
// once here and never changes, even if the caller mutates the fold after a
// later Access; the engine does not track post-retrieval mutation.
func newManagedFold(fold *Fold, digest string, tags []string) *ManagedFold {
	tagSet := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		tagSet[t] = struct{}{}
	}
	return &ManagedFold{
		fold:          fold,
		status:        FoldStatusActive,
		contentDigest: digest,
		tags:          tagSet,
		metrics: FoldMetrics{
			CreatedAt:        time.Now(),
			CompressionRatio: 1.0,
			ItemCount:        len(fold.Items),
			SizeBytes:        fold.SizeBytes,
		},
	}
}

// Status returns the fold's lifecycle state.
func (mf *ManagedFold) Status() FoldStatus { return mf.status }

// Metrics returns a copy of the fold's cache metrics.
func (mf *ManagedFold) Metrics() FoldMetrics { return mf.metrics }

// ContentDigest returns the dedup digest computed at construction.
func (mf *ManagedFold) ContentDigest() string { return mf.contentDigest }

// Level returns the level used for the most recent compression.
func (mf *ManagedFold) Level() CompressionLevel {
	if mf.compressionLevel == "" {
		return CompressionNone
	}
	return mf.compressionLevel
}

// HasAnyTag reports whether the fold carries at least one of the given tags.
func (mf *ManagedFold) HasAnyTag(tags []string) bool {
	for _, t := range tags {
		if _, ok := mf.tags[t]; ok {
			return true
		}
	}
	return false
}

// Touch records an access: increments the access count and stamps now.
func (mf *ManagedFold) Touch() {
	now := time.Now()
	mf.metrics.AccessCount++
	mf.metrics.LastAccessed = &now
}

// lastActivity returns LastAccessed, falling back to CreatedAt for folds
// never accessed. Eviction ordering keys on this.
func (mf *ManagedFold) lastActivity() time.Time {
	if mf.metrics.LastAccessed != nil {
		return *mf.metrics.LastAccessed
	}
	return mf.metrics.CreatedAt
}

// Compress serializes the fold's items, compresses the byte sequence at the
// requested level, replaces the live item list with the compressed payload,
// and transitions to Compressed. No-op when already compressed.
//
// On failure the fold transitions to Error but its live contents are left
// untouched, so the operation can be retried or the fold discarded.
func (mf *ManagedFold) Compress(level CompressionLevel) error {
	if mf.status == FoldStatusCompressed {
		return nil
	}
	if err := mf.transitionTo(FoldStatusCompressed); err != nil {
		return err
	}

	raw, err := encodeItems(mf.fold.Items)
	if err != nil {
		mf.status = FoldStatusError
		return fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	payload, err := compressBytes(raw, level)
	if err != nil {
		mf.status = FoldStatusError
		return fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}

	if len(raw) > 0 {
		mf.metrics.CompressionRatio = float64(len(payload)) / float64(len(raw))
	} else {
		mf.metrics.CompressionRatio = 1.0
	}
	mf.compressedPayload = payload
	mf.compressionLevel = level
	mf.fold.Items = nil
	mf.status = FoldStatusCompressed
	return nil
}

// Decompress is the inverse of Compress: it restores the live item list from
// the compressed payload, byte-for-byte equivalent in every field, and
// transitions to Active. No-op when already active.
//
// On failure the fold transitions to Error with the payload left intact for
// diagnosis.
func (mf *ManagedFold) Decompress() error {
	if mf.status == FoldStatusActive {
		return nil
	}
	if mf.compressedPayload == nil {
		mf.status = FoldStatusError
		return ErrNotCompressed
	}
	if err := mf.transitionTo(FoldStatusActive); err != nil {
		return err
	}

	raw, err := decompressBytes(mf.compressedPayload)
	if err != nil {
		mf.status = FoldStatusError
		return fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}
	items, err := decodeItems(raw)
	if err != nil {
		mf.status = FoldStatusError
		return fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}

	mf.fold.Items = items
	mf.compressedPayload = nil
	mf.status = FoldStatusActive
	return nil
}

// transitionTo validates the transition without applying it; Compress and
// Decompress set the final status themselves after the fallible work.
func (mf *ManagedFold) transitionTo(target FoldStatus) error {
	if !mf.status.CanTransitionTo(target) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, mf.status, target)
	}
	return nil
}
