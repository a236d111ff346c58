package chainflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrorKinds verifies each typed error matches exactly its own sentinel,
// so callers can always tell the four terminal outcomes apart.
func TestErrorKinds(t *testing.T) {
	underlying := errors.New("socket closed")

	testCases := []struct {
		name    string
		err     error
		matches error
		others  []error
	}{
		{
			name:    "config",
			err:     &ConfigError{Chain: "qa", Err: errors.New("missing provider")},
			matches: ErrConfiguration,
			others:  []error{ErrRequestFailed, ErrValidationFailed, ErrCancelled},
		},
		{
			name:    "request failed",
			err:     &RequestError{Chain: "qa", Step: "a", Attempts: 3, Err: underlying},
			matches: ErrRequestFailed,
			others:  []error{ErrConfiguration, ErrValidationFailed, ErrCancelled},
		},
		{
			name:    "validation failed",
			err:     &ValidationError{Chain: "qa", Step: "a", Validator: "v", Reason: "r", Attempts: 1},
			matches: ErrValidationFailed,
			others:  []error{ErrConfiguration, ErrRequestFailed, ErrCancelled},
		},
		{
			name:    "cancelled",
			err:     &CancelledError{Chain: "qa", Step: "a"},
			matches: ErrCancelled,
			others:  []error{ErrConfiguration, ErrRequestFailed, ErrValidationFailed},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.err, tc.matches)
			for _, other := range tc.others {
				assert.NotErrorIs(t, tc.err, other)
			}
		})
	}
}

// TestRequestError_UnwrapsCause verifies the last backend error stays
// reachable through the wrapper.
func TestRequestError_UnwrapsCause(t *testing.T) {
	cause := errors.New("rate limited")
	err := &RequestError{Chain: "qa", Step: "a", Attempts: 2, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "step a")
	assert.Contains(t, err.Error(), "2 attempt")
	assert.Contains(t, err.Error(), "rate limited")
}

// TestCancelledError_Messages covers the three phrasing cases.
func TestCancelledError_Messages(t *testing.T) {
	beforeAny := &CancelledError{Chain: "qa"}
	assert.Contains(t, beforeAny.Error(), "before any step")

	withCause := &CancelledError{Chain: "qa", Step: "b", Cause: errors.New("deadline")}
	assert.Contains(t, withCause.Error(), "before step b")
	assert.Contains(t, withCause.Error(), "deadline")

	direct := &CancelledError{Chain: "qa", Step: "b"}
	assert.Contains(t, direct.Error(), "before step b")
}

// TestCycleError verifies the fallback signal.
func TestCycleError(t *testing.T) {
	err := &CycleError{Cycle: []string{"a", "b", "a"}}

	assert.ErrorIs(t, err, ErrCycle)
	assert.Contains(t, err.Error(), "a")
}

// TestValidationError_Message verifies the diagnostic carries the reason.
func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Chain: "qa", Step: "answer", Validator: "non_empty", Reason: "empty output", Attempts: 3}

	msg := err.Error()
	assert.Contains(t, msg, "answer")
	assert.Contains(t, msg, "non_empty")
	assert.Contains(t, msg, "empty output")
	assert.Contains(t, msg, "3 attempt")
}
