package embed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/vectory/core"
)

func chunksOf(n int) []*core.Chunk {
	chunks := make([]*core.Chunk, n)
	for i := range chunks {
		chunks[i] = &core.Chunk{Content: string(rune('a' + i))}
	}
	return chunks
}

func TestMakeBatches_EvenSplit(t *testing.T) {
	batches := makeBatches(chunksOf(6), 2)
	require.Len(t, batches, 3)
	for _, b := range batches {
		assert.Len(t, b, 2)
	}
}

func TestMakeBatches_ShortTail(t *testing.T) {
	chunks := chunksOf(5)
	batches := makeBatches(chunks, 2)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 2)
	assert.Len(t, batches[2], 1)

	// Concatenating the batches reproduces the input order exactly.
	var flat []*core.Chunk
	for _, b := range batches {
		flat = append(flat, b...)
	}
	assert.Equal(t, chunks, flat)
}

func TestMakeBatches_SizeLargerThanInput(t *testing.T) {
	batches := makeBatches(chunksOf(3), 100)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 3)
}

func TestMakeBatches_Empty(t *testing.T) {
	assert.Empty(t, makeBatches(nil, 4))
	assert.Empty(t, makeBatches([]*core.Chunk{}, 4))
}

func TestMakeBatches_Deterministic(t *testing.T) {
	chunks := chunksOf(7)
	assert.Equal(t, makeBatches(chunks, 3), makeBatches(chunks, 3))
}
