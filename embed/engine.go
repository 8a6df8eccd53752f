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

package embed

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/vectory/ai"
	"github.com/poiesic/vectory/core"
	"github.com/poiesic/vectory/tokens"
)

// Engine defaults match the pipeline's reference configuration.
const (
	DefaultBatchSize  = 100
	DefaultMaxRetries = 3
	DefaultRetryDelay = 1 * time.Second

	// DefaultPricePerToken is the text-embedding-3-large price:
	// $0.00013 per 1K tokens.
	DefaultPricePerToken = 0.00013 / 1000
)

// Cache is the engine's view of the embedding cache. The production
// implementation is cache.Store; tests may inject in-memory fakes.
type Cache interface {
	// Lookup returns the cached vector for the chunk under the active
	// model, or false on a miss.
	Lookup(chunk *core.Chunk) ([]float32, bool)

	// Record inserts or overwrites the chunk's cache entry.
	Record(chunk *core.Chunk, embedding []float32, tokens int)

	// Flush persists the cache to durable storage.
	Flush() error
}

// Engine embeds chunks through a remote client with caching, batching,
// retries and statistics. One engine owns one StatsRecorder; counters
// reset at the start of each Embed run.
type Engine struct {
	client    ai.BatchEmbedder
	cache     Cache
	dimension int

	batchSize     int
	maxRetries    int
	retryDelay    time.Duration
	workers       int
	pricePerToken float64
	estimator     tokens.Estimator
	progress      io.Writer

	stats  *StatsRecorder
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithBatchSize sets how many chunks go into one remote call.
func WithBatchSize(size int) Option {
	return func(e *Engine) error {
		e.batchSize = size
		return nil
	}
}

// WithMaxRetries sets the per-batch retry budget for transient failures.
func WithMaxRetries(retries int) Option {
	return func(e *Engine) error {
		e.maxRetries = retries
		return nil
	}
}

// WithRetryDelay sets the initial backoff delay; it doubles per retry.
func WithRetryDelay(delay time.Duration) Option {
	return func(e *Engine) error {
		e.retryDelay = delay
		return nil
	}
}

// WithWorkers enables concurrent batch processing when n > 1.
func WithWorkers(n int) Option {
	return func(e *Engine) error {
		e.workers = n
		return nil
	}
}

// WithPricePerToken overrides the per-token price used for cost accounting.
func WithPricePerToken(price float64) Option {
	return func(e *Engine) error {
		e.pricePerToken = price
		return nil
	}
}

// WithEstimator overrides the token estimator used for cache accounting
// and cost estimation. Default is the chars/4 heuristic.
func WithEstimator(est tokens.Estimator) Option {
	return func(e *Engine) error {
		e.estimator = est
		return nil
	}
}

// WithProgress directs progress reporting to w, typically os.Stderr.
func WithProgress(w io.Writer) Option {
	return func(e *Engine) error {
		e.progress = w
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// New creates an embedding engine. Configuration problems (invalid batch
// size, retry budget, dimension) are reported here, before any batch work
// can begin.
func New(client ai.BatchEmbedder, cache Cache, opts ...Option) (*Engine, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}

	e := &Engine{
		client:        client,
		cache:         cache,
		dimension:     client.Dimension(),
		batchSize:     DefaultBatchSize,
		maxRetries:    DefaultMaxRetries,
		retryDelay:    DefaultRetryDelay,
		workers:       1,
		pricePerToken: DefaultPricePerToken,
		estimator:     tokens.Heuristic{},
		stats:         NewStatsRecorder(),
		logger:        slog.Default().With("component", "embedding-engine"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	switch {
	case e.batchSize < 1:
		return nil, ErrInvalidBatchSize
	case e.maxRetries < 0:
		return nil, ErrInvalidMaxRetries
	case e.retryDelay <= 0:
		return nil, ErrInvalidRetryDelay
	case e.dimension < 1:
		return nil, ErrInvalidDimension
	case e.workers < 1:
		return nil, ErrInvalidWorkers
	}
	return e, nil
}

// Embed assigns a vector to every chunk it can: from cache when the
// fingerprint is known under the active model, otherwise through batched
// remote calls. Chunks in a batch that fails after its retry budget keep a
// nil Embedding; the run continues with the next batch. The same slice is
// returned, in input order. The only error Embed returns is context
// cancellation between batches; callers detect partial failure through
// Validate or the failed counter.
func (e *Engine) Embed(ctx context.Context, chunks []*core.Chunk) ([]*core.Chunk, error) {
	start := time.Now()
	e.stats.Reset()
	e.stats.AddTotal(len(chunks))

	e.logger.Info("starting embedding run",
		"chunks", len(chunks), "model", e.client.Model(), "batch_size", e.batchSize, "workers", e.workers)

	pending := make([]*core.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			e.logger.Warn("chunk is not embeddable", "err", err)
			e.stats.AddFailed(1)
			continue
		}
		if vec, ok := e.cache.Lookup(chunk); ok {
			chunk.Embedding = vec
			e.stats.AddCached(1)
			continue
		}
		pending = append(pending, chunk)
	}
	if cached := e.stats.Snapshot().CachedChunks; cached > 0 {
		e.logger.Info("satisfied chunks from cache", "cached", cached)
	}

	var runErr error
	if len(pending) > 0 {
		batches := makeBatches(pending, e.batchSize)
		tracker := NewProgressTracker(e.progress, len(pending))
		if e.workers > 1 {
			runErr = e.embedConcurrent(ctx, batches, tracker)
		} else {
			runErr = e.embedSequential(ctx, batches, tracker)
		}
		tracker.Finish()
	}

	// Flush even when canceled so finished batches are not recomputed on
	// the next run.
	if err := e.cache.Flush(); err != nil {
		e.logger.Error("failed to flush embedding cache", "err", err)
	}

	e.stats.Finalize(e.pricePerToken, time.Since(start))
	snap := e.stats.Snapshot()
	e.logger.Info("embedding run complete",
		"total", snap.TotalChunks, "embedded", snap.EmbeddedChunks, "cached", snap.CachedChunks,
		"failed", snap.FailedChunks, "tokens", snap.TotalTokens, "cost", snap.TotalCost,
		"api_calls", snap.APICalls, "retries", snap.Retries, "seconds", snap.TotalTime)

	return chunks, runErr
}

// embedSequential drives batches one at a time, checking for cancellation
// between batches.
func (e *Engine) embedSequential(ctx context.Context, batches [][]*core.Chunk, tracker *ProgressTracker) error {
	for _, batch := range batches {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := e.processBatch(ctx, batch, tracker); err != nil {
			return err
		}
	}
	return nil
}

// embedConcurrent drives batches through a worker pool. Failure isolation
// and the stats invariants hold exactly as in the sequential path.
func (e *Engine) embedConcurrent(ctx context.Context, batches [][]*core.Chunk, tracker *ProgressTracker) error {
	pool, err := ants.NewPool(e.workers)
	if err != nil {
		return err
	}
	defer pool.Release()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		runErr error
	)
	for _, batch := range batches {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		default:
		}

		batch := batch
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if perr := e.processBatch(ctx, batch, tracker); perr != nil {
				mu.Lock()
				if runErr == nil {
					runErr = perr
				}
				mu.Unlock()
			}
		}); err != nil {
			wg.Done()
			mu.Lock()
			if runErr == nil {
				runErr = err
			}
			mu.Unlock()
		}
	}
	wg.Wait()
	return runErr
}

// processBatch embeds one batch through the retry-wrapped client. A batch
// that fails permanently is recorded in the failed counter and swallowed;
// only context cancellation propagates.
func (e *Engine) processBatch(ctx context.Context, batch []*core.Chunk, tracker *ProgressTracker) error {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Content
	}

	var (
		vectors [][]float32
		usage   int
	)
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, usage, err = e.client.EmbedBatch(ctx, texts)
		return err
	}, e.maxRetries, e.retryDelay, e.stats.AddRetry)

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.stats.AddFailed(len(batch))
		e.logger.Error("batch failed permanently", "chunks", len(batch), "err", err)
		tracker.Increment(len(batch))
		return nil
	}
	e.stats.AddCall()

	if len(vectors) != len(batch) {
		// Client contract violation; treat the batch as failed.
		e.stats.AddFailed(len(batch))
		e.logger.Error("embedding count mismatch", "want", len(batch), "got", len(vectors))
		tracker.Increment(len(batch))
		return nil
	}

	for i, chunk := range batch {
		chunk.Embedding = vectors[i]
		count := e.estimator.Count(chunk.Content)
		e.cache.Record(chunk, vectors[i], count)
		e.stats.AddEmbedded(1)
		e.stats.AddTokens(count)
	}

	e.logger.Debug("embedded batch", "chunks", len(batch), "usage_tokens", usage)
	tracker.Increment(len(batch))
	return nil
}

// Stats returns a snapshot of the counters from the most recent run.
func (e *Engine) Stats() Stats {
	return e.stats.Snapshot()
}

// ResetStats zeroes the run counters.
func (e *Engine) ResetStats() {
	e.stats.Reset()
}
