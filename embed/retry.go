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
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/vectory/ai"
)

// RetryWithBackoff runs operation up to 1+maxRetries times, sleeping
// initialDelay * 2^attempt between attempts (attempt index starting at 0).
// Only failures that ai.Retryable reports as transient are retried; fatal
// failures propagate immediately without sleeping. onRetry, if non-nil, is
// called once per retry performed. When the budget is spent the last
// transient error is returned wrapped in ErrRetriesExhausted.
//
// This is the only place in the engine that sleeps; it blocks only the
// worker driving the batch at hand.
func RetryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, onRetry func()) error {
	if maxRetries < 0 {
		return ErrInvalidMaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 0 {
				slog.Debug("operation succeeded after retry", "attempt", attempt+1)
			}
			return nil
		}

		if !ai.Retryable(lastErr) {
			return lastErr
		}
		if attempt == maxRetries {
			break
		}
		if onRetry != nil {
			onRetry()
		}

		delay := initialDelay << uint(attempt)
		slog.Debug("transient failure, backing off",
			"attempt", attempt+1, "maxRetries", maxRetries, "delay", delay, "err", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d retries: %w", ErrRetriesExhausted, maxRetries, lastErr)
}
