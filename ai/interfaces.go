package ai

import "context"

// BatchEmbedder converts a batch of texts into embedding vectors with a
// single remote round-trip. Implementations must be thread-safe for
// concurrent use.
type BatchEmbedder interface {
	// EmbedBatch embeds every text in the batch and reports the number of
	// tokens the provider consumed. The returned vectors are in the same
	// order as the input texts, one per text, each of Dimension() length.
	// Callers must pass at least one text and no empty texts. Failures are
	// reported as *Error so callers can distinguish retryable conditions
	// from fatal ones.
	EmbedBatch(ctx context.Context, texts []string) (vectors [][]float32, tokens int, err error)

	// Model returns the model identifier used for embedding.
	Model() string

	// Dimension returns the length of the vectors this embedder produces.
	Dimension() int
}
