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

package openai

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/poiesic/vectory/ai"
)

const providerName = "openai"

// Embedder implements ai.BatchEmbedder against the OpenAI embeddings API.
// One EmbedBatch call is exactly one HTTP round-trip; retrying is the
// caller's concern.
type Embedder struct {
	cfg     *ai.Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ ai.BatchEmbedder = (*Embedder)(nil)

// embeddingRequest is the request body for the embeddings endpoint.
type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// embeddingResponse is the success response from the embeddings endpoint.
type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// errorResponse is the error envelope returned on non-2xx statuses.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// NewEmbedder creates an embedder for the OpenAI embeddings API.
// A missing API key is a configuration error and fails fast.
func NewEmbedder(cfg *ai.Config) (*Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, ai.ErrAPIKeyRequired
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}

	return &Embedder{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: limiter,
		logger:  slog.Default().With("component", "openai-embedder"),
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

// EmbedBatch embeds the batch in a single API call and reports the token
// usage from the provider. Failures carry an ai.ErrorKind so the retry
// layer can decide between backing off and giving up.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, int, error) {
	if len(texts) == 0 {
		return nil, 0, &ai.Error{Kind: ai.KindFatal, Provider: providerName, Message: "empty batch"}
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}
	}

	reqBody := embeddingRequest{
		Model: e.cfg.Model,
		Input: texts,
	}
	// Only text-embedding-3-* models accept an explicit dimensions parameter.
	if strings.HasPrefix(e.cfg.Model, "text-embedding-3") {
		reqBody.Dimensions = e.cfg.Dimension
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, 0, &ai.Error{Kind: ai.KindFatal, Provider: providerName, Message: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, 0, &ai.Error{Kind: ai.KindFatal, Provider: providerName, Message: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		// Context cancellation is not a provider failure; hand it back
		// untyped so the retry layer stops immediately.
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, &ai.Error{Kind: ai.KindTransient, Provider: providerName, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &ai.Error{Kind: ai.KindTransient, Provider: providerName, Message: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, 0, e.classifyStatus(resp.StatusCode, body)
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, 0, &ai.Error{Kind: ai.KindUnknown, Provider: providerName, Message: "unmarshal response", Err: err}
	}

	if len(embResp.Data) != len(texts) {
		e.logger.Error("embedding count mismatch", "want", len(texts), "got", len(embResp.Data))
		return nil, 0, &ai.Error{Kind: ai.KindUnknown, Provider: providerName,
			Message: "response vector count does not match input"}
	}

	// The API may return items out of order; place each by its index.
	vectors := make([][]float32, len(texts))
	for _, item := range embResp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, 0, &ai.Error{Kind: ai.KindUnknown, Provider: providerName, Message: "response index out of range"}
		}
		if len(item.Embedding) != e.cfg.Dimension {
			return nil, 0, &ai.Error{Kind: ai.KindUnknown, Provider: providerName,
				Message: "response vector has wrong dimension"}
		}
		vectors[item.Index] = item.Embedding
	}

	e.logger.Debug("embedded batch", "texts", len(texts), "tokens", embResp.Usage.TotalTokens)
	return vectors, embResp.Usage.TotalTokens, nil
}

// classifyStatus maps a non-200 HTTP status onto the failure taxonomy:
// 429 is rate limiting, 5xx is a provider-side transient, everything else
// (bad request, bad credentials, exhausted quota) is fatal.
func (e *Embedder) classifyStatus(status int, body []byte) error {
	message := http.StatusText(status)
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	kind := ai.KindFatal
	switch {
	case status == http.StatusTooManyRequests:
		kind = ai.KindRateLimited
	case status >= 500:
		kind = ai.KindTransient
	}

	e.logger.Warn("embedding request rejected", "status", status, "kind", kind.String(), "message", message)
	return &ai.Error{Kind: kind, Provider: providerName, Status: status, Message: message}
}
