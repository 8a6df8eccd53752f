// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"

	"github.com/poiesic/vectory/core"
)

// SearchResult pairs a stored chunk with its similarity score.
type SearchResult struct {
	Chunk *core.Chunk
	Score float32
}

// ChunkRepository provides operations for managing embedded chunks.
// Implementations must be thread-safe.
type ChunkRepository interface {
	// AddChunks stores one or more chunks, keyed by content fingerprint.
	// Re-adding a chunk with identical content overwrites the prior copy.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) error

	// GetChunk retrieves a chunk by its content fingerprint.
	// Returns ErrNotFound if no such chunk exists.
	GetChunk(ctx context.Context, fingerprint string) (*core.Chunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// FindSimilar finds stored chunks similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first). Vectors are compared by
	// dot product, which equals cosine similarity for normalized vectors.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*SearchResult, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
