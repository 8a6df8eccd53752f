package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/vectory/core"
)

func TestChunkSerialization_RoundTrip(t *testing.T) {
	chunk := &core.Chunk{
		Content:   "the quick brown fox",
		Metadata:  map[string]any{"source": "fox.pdf", "page": float64(3)},
		Embedding: []float32{0.1, 0.2, 0.3},
	}

	data, err := MarshalChunk(chunk)
	require.NoError(t, err)

	got, err := UnmarshalChunk(data)
	require.NoError(t, err)
	assert.Equal(t, chunk, got)

	// Fingerprints survive the round trip because content and metadata do.
	assert.Equal(t, chunk.Fingerprint(), got.Fingerprint())
}

func TestUnmarshalChunk_CorruptData(t *testing.T) {
	_, err := UnmarshalChunk([]byte("{not json"))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
