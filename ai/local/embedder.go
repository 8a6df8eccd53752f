// Package local implements ai.BatchEmbedder for OpenAI-compatible local
// services (Ollama, LocalAI, vLLM) via langchaingo. Local services do not
// report token usage, so counts come from an injected estimator.
package local

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/vectory/ai"
	"github.com/poiesic/vectory/tokens"
)

const providerName = "local"

// Embedder generates embeddings through a local OpenAI-compatible endpoint.
type Embedder struct {
	embedder  embeddings.Embedder
	cfg       *ai.Config
	estimator tokens.Estimator
	logger    *slog.Logger
}

var _ ai.BatchEmbedder = (*Embedder)(nil)

// NewEmbedder creates an embedder for a local OpenAI-compatible service.
// No credential is required; "none" is sent for services that expect a
// token header. A nil estimator defaults to the chars/4 heuristic.
func NewEmbedder(cfg *ai.Config, estimator tokens.Estimator) (*Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if estimator == nil {
		estimator = tokens.Heuristic{}
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:  embedder,
		cfg:       cfg,
		estimator: estimator,
		logger:    slog.Default().With("component", "local-embedder"),
	}, nil
}

// Model returns the configured embedding model identifier.
func (e *Embedder) Model() string {
	return e.cfg.Model
}

// Dimension returns the configured embedding vector length.
func (e *Embedder) Dimension() int {
	return e.cfg.Dimension
}

// EmbedBatch embeds the batch through langchaingo. The library does not
// expose status codes, so failures other than timeouts are classified as
// unknown and left to the caller to treat as fatal.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, int, error) {
	if len(texts) == 0 {
		return nil, 0, &ai.Error{Kind: ai.KindFatal, Provider: providerName, Message: "empty batch"}
	}

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		kind := ai.KindUnknown
		if errors.Is(err, context.DeadlineExceeded) {
			kind = ai.KindTransient
		}
		e.logger.Error("failed to generate embeddings", "count", len(texts), "kind", kind.String(), "err", err)
		return nil, 0, &ai.Error{Kind: kind, Provider: providerName, Message: "embed documents", Err: err}
	}

	if len(vectors) != len(texts) {
		return nil, 0, &ai.Error{Kind: ai.KindUnknown, Provider: providerName,
			Message: "response vector count does not match input"}
	}
	for _, vec := range vectors {
		if len(vec) != e.cfg.Dimension {
			return nil, 0, &ai.Error{Kind: ai.KindUnknown, Provider: providerName,
				Message: "response vector has wrong dimension"}
		}
	}

	return vectors, tokens.Total(e.estimator, texts), nil
}
