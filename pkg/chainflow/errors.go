package chainflow

import (
	"errors"
	"fmt"
)

// Sentinel errors for chain registration and configuration.
var (
	// ErrConfiguration indicates an invalid chain definition or a missing
	// required run setting. Fatal, never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrChainNotFound indicates Execute() was called with an unregistered
	// chain name.
	ErrChainNotFound = errors.New("chain not found")

	// ErrNilContext indicates Execute() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")
)

// Sentinel errors for execution.
var (
	// ErrRequestFailed indicates a backend call failed or timed out after
	// exhausting the step's retry budget.
	ErrRequestFailed = errors.New("engine request failed")

	// ErrValidationFailed indicates a step's validator rejected the output
	// after exhausting the step's retry budget.
	ErrValidationFailed = errors.New("validation failed")

	// ErrCancelled indicates the run was stopped on purpose. Distinct from
	// failure: callers can tell a deliberate stop from a broken chain.
	ErrCancelled = errors.New("chain cancelled")

	// ErrCycle signals that the dependency resolver detected a cycle and
	// fell back to declaration order. It never fails a run.
	ErrCycle = errors.New("dependency cycle detected")
)

// ConfigError wraps a chain or run configuration problem.
type ConfigError struct {
	// Chain is the chain name, if known.
	Chain string
	// Err is the underlying problem. For definition validation this is an
	// errors.Join of all problems found.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Chain == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("chain %s: configuration: %v", e.Chain, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is reports ErrConfiguration so callers can match the error kind.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// RequestError is the chain's terminal error when a step's backend call
// failed after exhausting its retry budget. The session returned alongside
// retains every step completed before the failure.
type RequestError struct {
	// Chain is the chain being executed.
	Chain string
	// Step is the step whose backend call failed.
	Step string
	// Attempts is the total number of model calls made (initial + retries).
	Attempts int
	// Err is the last underlying backend error.
	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("chain %s: step %s: request failed after %d attempt(s): %v", e.Chain, e.Step, e.Attempts, e.Err)
}

// Unwrap returns the underlying backend error for errors.Is/As support.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is reports ErrRequestFailed so callers can match the error kind.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// ValidationError is the chain's terminal error when a step's validator kept
// rejecting the output through the whole retry budget.
type ValidationError struct {
	// Chain is the chain being executed.
	Chain string
	// Step is the step whose output was rejected.
	Step string
	// Validator is the name of the rejecting validator.
	Validator string
	// Reason is the validator's failure reason from the last attempt.
	Reason string
	// Attempts is the total number of model calls made (initial + retries).
	Attempts int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("chain %s: step %s: validation failed after %d attempt(s) by %s: %s", e.Chain, e.Step, e.Attempts, e.Validator, e.Reason)
}

// Unwrap returns ErrValidationFailed for errors.Is support.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// CancelledError captures where a run was cancelled. The step executor never
// starts new work after observing cancellation, so Step names the unit that
// was about to run.
type CancelledError struct {
	// Chain is the chain being executed.
	Chain string
	// Step is the step that was about to execute, or "" when cancellation
	// was observed before the first step.
	Step string
	// Cause is the underlying cause, when cancellation came from the
	// standard context (context.Canceled or context.DeadlineExceeded).
	// Nil when the cancellation handle was set directly.
	Cause error
}

// Error implements the error interface.
func (e *CancelledError) Error() string {
	switch {
	case e.Step == "":
		return fmt.Sprintf("chain %s: cancelled before any step", e.Chain)
	case e.Cause != nil:
		return fmt.Sprintf("chain %s: cancelled before step %s: %v", e.Chain, e.Step, e.Cause)
	default:
		return fmt.Sprintf("chain %s: cancelled before step %s", e.Chain, e.Step)
	}
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancelledError) Unwrap() error {
	return e.Cause
}

// Is reports ErrCancelled so callers can match the error kind.
func (e *CancelledError) Is(target error) bool {
	return target == ErrCancelled
}

// CycleError reports the dependency cycle the resolver detected before
// falling back to declaration order. Returned alongside a usable order,
// never instead of one.
type CycleError struct {
	// Cycle is the step path forming the cycle, ending where it started.
	Cycle []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %v", e.Cycle)
}

// Unwrap returns ErrCycle for errors.Is support.
func (e *CycleError) Unwrap() error {
	return ErrCycle
}
