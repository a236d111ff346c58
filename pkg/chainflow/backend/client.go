// Package backend defines the model-serving boundary for chain execution.
//
// The executor talks to language models exclusively through the Client
// interface. OpenAIClient serves any OpenAI-compatible HTTP API; MockClient
// scripts responses for tests. Response payloads from loosely-compatible
// providers vary in shape, so extraction of text content is tolerant (see
// ExtractText) and never raises.
package backend

import (
	"context"
	"fmt"
	"strings"
)

// Client is a model-serving backend.
// Implementations must be safe for concurrent use.
type Client interface {
	// Complete sends a completion request and returns the model's response.
	// The call honors ctx cancellation and the request's Timeout.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Error wraps a backend failure with call context.
type Error struct {
	// Op is the operation that failed (e.g. "complete").
	Op string
	// Err is the underlying error.
	Err error
	// Retryable indicates the failure is transient (rate limit, timeout,
	// overload) and a retry with the same request may succeed.
	Retryable bool
}

// NewError creates a backend Error.
func NewError(op string, err error, retryable bool) *Error {
	return &Error{Op: op, Err: err, Retryable: retryable}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a backend Error marked retryable.
func IsRetryable(err error) bool {
	if be, ok := err.(*Error); ok {
		return be.Retryable
	}
	return false
}

// isRetryableMessage checks if an error message indicates a transient error.
func isRetryableMessage(errMsg string) bool {
	errLower := strings.ToLower(errMsg)
	return strings.Contains(errLower, "rate limit") ||
		strings.Contains(errLower, "timeout") ||
		strings.Contains(errLower, "overloaded") ||
		strings.Contains(errLower, "temporarily unavailable") ||
		strings.Contains(errLower, "429") ||
		strings.Contains(errLower, "503") ||
		strings.Contains(errLower, "529")
}
