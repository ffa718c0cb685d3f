package foldcache

import "errors"

// Fold lifecycle errors.
var (
	ErrFoldNotFound      = errors.New("fold not found")
	ErrFoldAlreadyExists = errors.New("fold already exists")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Codec errors. Both are recoverable: a fold left in error status stays
// addressable by id, can be retried, or ages out through normal eviction.
var (
	ErrCompressionFailed   = errors.New("fold compression failed")
	ErrDecompressionFailed = errors.New("fold decompression failed")
	ErrNotCompressed       = errors.New("fold has no compressed payload")
)

// Engine lifecycle errors.
var (
	ErrEngineShutdown = errors.New("fold cache engine is shut down")
)
