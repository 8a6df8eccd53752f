package embed

import "errors"

var (
	// ErrClientRequired indicates the engine was constructed without an embedding client.
	ErrClientRequired = errors.New("embedding client required")

	// ErrCacheRequired indicates the engine was constructed without a cache.
	ErrCacheRequired = errors.New("embedding cache required")

	// ErrInvalidBatchSize indicates a batch size below 1.
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")

	// ErrInvalidMaxRetries indicates a negative retry budget.
	ErrInvalidMaxRetries = errors.New("max retries cannot be negative")

	// ErrInvalidRetryDelay indicates a non-positive initial backoff delay.
	ErrInvalidRetryDelay = errors.New("retry delay must be positive")

	// ErrInvalidDimension indicates the client reports a non-positive vector dimension.
	ErrInvalidDimension = errors.New("embedding dimension must be positive")

	// ErrInvalidWorkers indicates a worker count below 1.
	ErrInvalidWorkers = errors.New("worker count must be at least 1")

	// ErrRetriesExhausted wraps the last transient failure once the retry
	// budget for a batch is spent.
	ErrRetriesExhausted = errors.New("retries exhausted")
)
