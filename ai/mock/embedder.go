package mock

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/poiesic/vectory/ai"
)

// Embedder is a test double for ai.BatchEmbedder. By default it returns
// deterministic vectors derived from each text's hash, so the same text
// always embeds to the same vector. Custom behavior is injected through
// EmbedBatchFunc.
type Embedder struct {
	// EmbedBatchFunc is called by EmbedBatch if set. If nil, deterministic
	// default behavior is used.
	EmbedBatchFunc func(ctx context.Context, texts []string) ([][]float32, int, error)

	// ModelName and Dim configure the reported model and dimension.
	// Defaults: "mock-embedding" and 8.
	ModelName string
	Dim       int

	mu        sync.Mutex
	callCount int
}

var _ ai.BatchEmbedder = (*Embedder)(nil)

// NewEmbedder creates a mock embedder producing vectors of the given dimension.
func NewEmbedder(dimension int) *Embedder {
	return &Embedder{Dim: dimension}
}

// Model returns the configured mock model name.
func (m *Embedder) Model() string {
	if m.ModelName == "" {
		return "mock-embedding"
	}
	return m.ModelName
}

// Dimension returns the configured vector length.
func (m *Embedder) Dimension() int {
	if m.Dim <= 0 {
		return 8
	}
	return m.Dim
}

// EmbedBatch counts the call and delegates to EmbedBatchFunc or the
// deterministic default. The default reports one token per four characters.
func (m *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, int, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.EmbedBatchFunc != nil {
		return m.EmbedBatchFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	tokens := 0
	for i, text := range texts {
		vectors[i] = deterministicVector(text, m.Dimension())
		tokens += len(text) / 4
	}
	return vectors, tokens, nil
}

// CallCount returns how many times EmbedBatch was invoked.
func (m *Embedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *Embedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.EmbedBatchFunc = nil
}

// deterministicVector derives a stable pseudo-random vector from the text
// so equality checks across runs are meaningful.
func deterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}
	return vector
}
