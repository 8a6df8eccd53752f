package embed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/vectory/ai"
)

func rateLimited() error {
	return &ai.Error{Kind: ai.KindRateLimited, Provider: "test", Status: 429, Message: "slow down"}
}

func fatal() error {
	return &ai.Error{Kind: ai.KindFatal, Provider: "test", Status: 400, Message: "bad request"}
}

func TestRetryWithBackoff_FirstTrySuccess(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return nil
	}, 3, time.Millisecond, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	attempts := 0
	retries := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return rateLimited()
		}
		return nil
	}, 5, time.Millisecond, func() { retries++ })

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, retries)
}

func TestRetryWithBackoff_ExactAttemptBound(t *testing.T) {
	// maxRetries=2 means 1 initial attempt + 2 retries, never more.
	attempts := 0
	retries := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return rateLimited()
	}, 2, time.Millisecond, func() { retries++ })

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, retries)

	// The last transient error stays reachable through the wrap.
	var aiErr *ai.Error
	assert.ErrorAs(t, err, &aiErr)
	assert.Equal(t, ai.KindRateLimited, aiErr.Kind)
}

func TestRetryWithBackoff_FatalNotRetried(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return fatal()
	}, 5, time.Millisecond, nil)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 1, attempts, "fatal errors must propagate immediately")
}

func TestRetryWithBackoff_UntypedErrorNotRetried(t *testing.T) {
	attempts := 0
	plain := errors.New("something odd")
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return plain
	}, 5, time.Millisecond, nil)

	assert.Equal(t, plain, err, "unclassified errors are treated conservatively as fatal")
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_ZeroRetries(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return rateLimited()
	}, 0, time.Millisecond, nil)

	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_NegativeBudget(t *testing.T) {
	err := RetryWithBackoff(context.Background(), func() error { return nil }, -1, time.Millisecond, nil)
	assert.ErrorIs(t, err, ErrInvalidMaxRetries)
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := RetryWithBackoff(ctx, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return rateLimited()
	}, 10, time.Millisecond, nil)

	require.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, attempts, 2)
}
