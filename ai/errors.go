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

package ai

import (
	"errors"
	"fmt"
)

// ErrAPIKeyRequired indicates a client was constructed without a credential.
var ErrAPIKeyRequired = errors.New("ai: API key is required")

// ErrorKind classifies a remote embedding failure. Retry decisions are made
// on the kind, never on the underlying error text.
type ErrorKind int

const (
	// KindUnknown covers failures that could not be classified. They are
	// treated as fatal after logging.
	KindUnknown ErrorKind = iota

	// KindRateLimited marks provider throttling (HTTP 429). Transient;
	// retry with backoff.
	KindRateLimited

	// KindTransient marks connection resets, timeouts and provider-side
	// errors (HTTP 5xx). Retry with backoff.
	KindTransient

	// KindFatal marks malformed requests, bad credentials and exhausted
	// quotas. Retrying cannot fix these.
	KindFatal
)

// String returns a stable name for the kind, used in logs.
func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is the failure type surfaced by every BatchEmbedder implementation.
type Error struct {
	Kind     ErrorKind
	Provider string
	Status   int // HTTP status when available, 0 otherwise
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (%d): %s", e.Provider, e.Kind, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is expected to succeed on retry.
func (e *Error) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindTransient
}

// Retryable reports whether err is a retryable embedding failure. Errors
// that are not *Error (including context cancellation) are never retryable.
func Retryable(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Retryable()
	}
	return false
}
