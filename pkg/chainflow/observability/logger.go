// Package observability provides production-grade observability features
// for chain execution: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds chain execution context to a logger.
// Returns a new logger with session_id, step, and attempt fields.
func EnrichLogger(logger *slog.Logger, sessionID, step string, attempt int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("session_id", sessionID),
		slog.String("step", step),
		slog.Int("attempt", attempt),
	)
}

// LogChainStart logs the start of a chain run.
func LogChainStart(logger *slog.Logger, chain, sessionID string) {
	if logger == nil {
		return
	}
	logger.Info("chain run starting",
		slog.String("chain", chain),
		slog.String("session_id", sessionID),
	)
}

// LogChainComplete logs successful chain completion.
func LogChainComplete(logger *slog.Logger, chain, sessionID string, durationMs float64, stepCount int) {
	if logger == nil {
		return
	}
	logger.Info("chain run completed",
		slog.String("chain", chain),
		slog.String("session_id", sessionID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("steps_executed", stepCount),
	)
}

// LogChainError logs chain run failure.
func LogChainError(logger *slog.Logger, chain, sessionID string, err error, durationMs float64, lastStep string) {
	if logger == nil {
		return
	}
	logger.Error("chain run failed",
		slog.String("chain", chain),
		slog.String("session_id", sessionID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
		slog.String("last_step", lastStep),
	)
}

// LogChainCancelled logs a cooperative cancellation.
// Cancellation is a distinct outcome, not a failure.
func LogChainCancelled(logger *slog.Logger, chain, sessionID, step string) {
	if logger == nil {
		return
	}
	logger.Info("chain run cancelled",
		slog.String("chain", chain),
		slog.String("session_id", sessionID),
		slog.String("step", step),
	)
}

// LogStepStart logs step execution start.
func LogStepStart(logger *slog.Logger, step string) {
	if logger == nil {
		return
	}
	logger.Debug("step starting",
		slog.String("step", step),
	)
}

// LogStepComplete logs successful step completion.
func LogStepComplete(logger *slog.Logger, step string, durationMs float64, attempts int) {
	if logger == nil {
		return
	}
	logger.Debug("step completed",
		slog.String("step", step),
		slog.Float64("duration_ms", durationMs),
		slog.Int("attempts", attempts),
	)
}

// LogStepSkip logs an optional step being skipped.
func LogStepSkip(logger *slog.Logger, step string) {
	if logger == nil {
		return
	}
	logger.Debug("optional step skipped",
		slog.String("step", step),
	)
}

// LogStepError logs step execution failure after retries are exhausted.
func LogStepError(logger *slog.Logger, step string, err error, attempts int) {
	if logger == nil {
		return
	}
	logger.Error("step failed",
		slog.String("step", step),
		slog.String("error", err.Error()),
		slog.Int("attempts", attempts),
	)
}

// LogStepRetry logs a retry of a step's model call.
// Kind is "request" for backend failures and "validation" for rejected output.
func LogStepRetry(logger *slog.Logger, step, kind, reason string, attempt int) {
	if logger == nil {
		return
	}
	logger.Warn("step retrying",
		slog.String("step", step),
		slog.String("kind", kind),
		slog.String("reason", reason),
		slog.Int("attempt", attempt),
	)
}

// LogValidatorMissing logs a validator name with no registered function.
// The step treats it as a pass.
func LogValidatorMissing(logger *slog.Logger, step, validator string) {
	if logger == nil {
		return
	}
	logger.Warn("validator not registered, treating as pass",
		slog.String("step", step),
		slog.String("validator", validator),
	)
}

// LogCycleFallback logs the resolver falling back to declaration order after
// detecting a dependency cycle.
func LogCycleFallback(logger *slog.Logger, chain string, cycle []string) {
	if logger == nil {
		return
	}
	logger.Warn("dependency cycle detected, using declaration order",
		slog.String("chain", chain),
		slog.Any("cycle", cycle),
	)
}

// LogCacheHit logs a chain run short-circuited by a cached result.
func LogCacheHit(logger *slog.Logger, chain, sessionID string) {
	if logger == nil {
		return
	}
	logger.Info("cache hit, skipping chain run",
		slog.String("chain", chain),
		slog.String("session_id", sessionID),
	)
}

// LogCacheError logs a cache store failure (non-fatal).
func LogCacheError(logger *slog.Logger, chain string, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("result cache failed",
		slog.String("chain", chain),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
