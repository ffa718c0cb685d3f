package foldcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems(n int) []Item {
	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, Item{
			ID:         string(rune('a' + i)),
			Content:    "the quick brown fox jumps over the lazy dog, repeatedly and at great length",
			CreatedAt:  time.Date(2025, 6, 1, 12, 0, i, 0, time.UTC),
			Category:   CategoryEpisodic,
			Importance: 0.25 * float64(i+1),
			Tags:       []string{"t1", "t2"},
			CausalIDs:  []string{"prev"},
		})
	}
	return items
}

func TestEncodeDecodeItems_RoundTrip(t *testing.T) {
	items := testItems(3)

	raw, err := encodeItems(items)
	require.NoError(t, err)

	decoded, err := decodeItems(raw)
	require.NoError(t, err)
	require.Len(t, decoded, 3)

	// Field-for-field equivalence via the canonical encoding.
	reencoded, err := encodeItems(decoded)
	require.NoError(t, err)
	assert.Equal(t, raw, reencoded)
}

func TestEncodeItems_NilIsEmptySequence(t *testing.T) {
	raw, err := encodeItems(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), raw)
}

func TestDigestBytes_Deterministic(t *testing.T) {
	a, err := encodeItems(testItems(2))
	require.NoError(t, err)
	b, err := encodeItems(testItems(2))
	require.NoError(t, err)

	assert.Equal(t, digestBytes(a), digestBytes(b))
	assert.Len(t, digestBytes(a), 64)
}

func TestDigestBytes_OrderSensitive(t *testing.T) {
	items := testItems(2)
	forward, err := encodeItems(items)
	require.NoError(t, err)
	reversed, err := encodeItems([]Item{items[1], items[0]})
	require.NoError(t, err)

	assert.NotEqual(t, digestBytes(forward), digestBytes(reversed))
}

func TestCompressDecompress_AllLevels(t *testing.T) {
	raw, err := encodeItems(testItems(5))
	require.NoError(t, err)

	for _, level := range []CompressionLevel{CompressionLight, CompressionMedium, CompressionHeavy} {
		t.Run(string(level), func(t *testing.T) {
			payload, err := compressBytes(raw, level)
			require.NoError(t, err)
			require.NotEmpty(t, payload)

			restored, err := decompressBytes(payload)
			require.NoError(t, err)
			assert.Equal(t, raw, restored)
		})
	}
}

func TestCompressBytes_InvalidLevel(t *testing.T) {
	_, err := compressBytes([]byte("data"), CompressionNone)
	require.Error(t, err)

	_, err = compressBytes([]byte("data"), CompressionLevel("bogus"))
	require.Error(t, err)
}

func TestDecompressBytes_Corrupt(t *testing.T) {
	payload, err := compressBytes([]byte("some payload worth compressing"), CompressionMedium)
	require.NoError(t, err)

	payload[0] ^= 0xFF
	_, err = decompressBytes(payload)
	require.Error(t, err)
}
