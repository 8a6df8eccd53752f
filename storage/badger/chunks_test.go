package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/vectory/core"
	"github.com/poiesic/vectory/storage"
)

func TestChunkBasics(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	chunk := &core.Chunk{
		Content:   "introduction to vector search",
		Metadata:  map[string]any{"source": "intro.pdf"},
		Embedding: []float32{0.1, 0.2, 0.3},
	}

	if err := repo.AddChunks(ctx, chunk); err != nil {
		t.Fatalf("Failed to add chunk: %v", err)
	}

	retrieved, err := repo.GetChunk(ctx, chunk.Fingerprint())
	if err != nil {
		t.Fatalf("Failed to get chunk: %v", err)
	}
	if retrieved.Content != chunk.Content {
		t.Fatalf("Expected %q, got %q", chunk.Content, retrieved.Content)
	}
	if len(retrieved.Embedding) != 3 {
		t.Fatalf("Expected embedding of length 3, got %d", len(retrieved.Embedding))
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count chunks: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 chunk, got %d", count)
	}
}

func TestGetChunkNotFound(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	_, err = repo.GetChunk(context.Background(), "deadbeef")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestAddChunksIdempotent(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()
	chunk := &core.Chunk{Content: "same content", Embedding: []float32{1, 0}}

	if err := repo.AddChunks(ctx, chunk); err != nil {
		t.Fatalf("Failed to add chunk: %v", err)
	}
	if err := repo.AddChunks(ctx, chunk); err != nil {
		t.Fatalf("Failed to re-add chunk: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count chunks: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 chunk after re-add, got %d", count)
	}
}

func TestAddChunksRejectsEmptyContent(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	err = repo.AddChunks(context.Background(), &core.Chunk{Content: "  "})
	if !errors.Is(err, core.ErrEmptyContent) {
		t.Fatalf("Expected ErrEmptyContent, got %v", err)
	}
}

func TestFindSimilar(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	chunks := []*core.Chunk{
		{Content: "exact match", Embedding: []float32{1, 0, 0}},
		{Content: "close match", Embedding: []float32{0.9, 0.1, 0}},
		{Content: "orthogonal", Embedding: []float32{0, 1, 0}},
		{Content: "no embedding yet"},
	}
	if err := repo.AddChunks(ctx, chunks...); err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	results, err := repo.FindSimilar(ctx, []float32{1, 0, 0}, 0.5, 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results above threshold, got %d", len(results))
	}
	if results[0].Chunk.Content != "exact match" {
		t.Fatalf("Expected best match first, got %q", results[0].Chunk.Content)
	}
	if results[0].Score < results[1].Score {
		t.Fatal("Expected results ordered by descending score")
	}

	// Limit trims the result set after sorting.
	limited, err := repo.FindSimilar(ctx, []float32{1, 0, 0}, 0.0, 1)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("Expected 1 result with limit 1, got %d", len(limited))
	}
	if limited[0].Chunk.Content != "exact match" {
		t.Fatalf("Expected best match, got %q", limited[0].Chunk.Content)
	}
}

func TestClosedBackend(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	repo.Close()
	backend.Close()

	if _, err := repo.Count(context.Background()); !errors.Is(err, storage.ErrStorageClosed) {
		t.Fatalf("Expected ErrStorageClosed, got %v", err)
	}
}
