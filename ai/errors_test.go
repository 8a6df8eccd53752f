package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind_Retryable(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want bool
	}{
		{KindRateLimited, true},
		{KindTransient, true},
		{KindFatal, false},
		{KindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := &Error{Kind: tt.kind, Provider: "test", Message: "boom"}
			assert.Equal(t, tt.want, err.Retryable())
			assert.Equal(t, tt.want, Retryable(err))
		})
	}
}

func TestRetryable_WrappedError(t *testing.T) {
	inner := &Error{Kind: KindRateLimited, Provider: "openai", Status: 429, Message: "slow down"}
	wrapped := fmt.Errorf("batch 3: %w", inner)

	assert.True(t, Retryable(wrapped))
}

func TestRetryable_ForeignErrors(t *testing.T) {
	assert.False(t, Retryable(errors.New("plain error")))
	assert.False(t, Retryable(context.Canceled))
	assert.False(t, Retryable(nil))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &Error{Kind: KindTransient, Provider: "openai", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "transient")
}
