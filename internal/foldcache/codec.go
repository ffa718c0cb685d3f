package foldcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// encodeItems serializes items into the canonical byte sequence used for both
// compression and content digests. JSON field order follows the Item struct,
// so encoding is deterministic and order-sensitive across the item sequence.
func encodeItems(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("serialize items: %w", err)
	}
	return raw, nil
}

// decodeItems is the inverse of encodeItems.
func decodeItems(raw []byte) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("deserialize items: %w", err)
	}
	return items, nil
}

// digestBytes returns the hex-encoded sha256 digest of the canonical
// serialization. Used only for deduplication, never for payload integrity.
func digestBytes(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// encoderLevel maps a cache compression level onto a zstd encoder level.
func encoderLevel(l CompressionLevel) zstd.EncoderLevel {
	switch l {
	case CompressionLight:
		return zstd.SpeedFastest
	case CompressionHeavy:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

// compressBytes compresses raw at the requested level.
func compressBytes(raw []byte, level CompressionLevel) ([]byte, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("unknown compression level %q", level)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(encoderLevel(level)))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

// decompressBytes is the inverse of compressBytes.
func decompressBytes(payload []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return raw, nil
}
