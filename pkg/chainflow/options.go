package chainflow

import (
	"time"

	"github.com/chainflow/chainflow/pkg/chainflow/cache"
	"github.com/chainflow/chainflow/pkg/chainflow/observability"
)

// Engine defaults.
const (
	// DefaultTemperature is used when neither the step nor the session
	// context sets one.
	DefaultTemperature = 0.7

	// DefaultMaxOutputTokens is used when neither the step nor the session
	// context sets one.
	DefaultMaxOutputTokens = 1024

	// DefaultRetryBackoff is the fixed wait before retrying a failed
	// backend call. Validation retries wait nothing; the feedback itself
	// is the corrective.
	DefaultRetryBackoff = 500 * time.Millisecond
)

// engineConfig holds engine-wide settings shared by every run.
type engineConfig struct {
	cache          cache.Store
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
	backoff        time.Duration
	sleep          func(d time.Duration)

	defaultTemperature float64
	defaultMaxTokens   int
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		metrics:            observability.NoopMetrics{},
		spans:              observability.NoopSpanManager{},
		backoff:            DefaultRetryBackoff,
		sleep:              time.Sleep,
		defaultTemperature: DefaultTemperature,
		defaultMaxTokens:   DefaultMaxOutputTokens,
	}
}

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

// WithCache sets the result cache. Without one, runs always execute.
func WithCache(store cache.Store) EngineOption {
	return func(c *engineConfig) {
		c.cache = store
	}
}

// WithMetrics sets the metrics recorder.
// Default: no-op.
func WithMetrics(m observability.MetricsRecorder) EngineOption {
	return func(c *engineConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables trace spans around chain runs and steps.
func WithTracing() EngineOption {
	return func(c *engineConfig) {
		c.spans = observability.NewSpanManager()
		c.tracingEnabled = true
	}
}

// WithRetryBackoff sets the fixed wait before retrying a failed backend
// call. Default: DefaultRetryBackoff.
func WithRetryBackoff(d time.Duration) EngineOption {
	return func(c *engineConfig) {
		if d >= 0 {
			c.backoff = d
		}
	}
}

// WithDefaultTemperature sets the engine-wide sampling temperature fallback.
func WithDefaultTemperature(t float64) EngineOption {
	return func(c *engineConfig) {
		c.defaultTemperature = t
	}
}

// WithDefaultMaxTokens sets the engine-wide output token cap fallback.
func WithDefaultMaxTokens(n int) EngineOption {
	return func(c *engineConfig) {
		if n > 0 {
			c.defaultMaxTokens = n
		}
	}
}

// runConfig holds per-run settings.
type runConfig struct {
	handle  *Handle
	noCache bool
}

// RunOption configures a single chain run.
type RunOption func(*runConfig)

// WithCancellation supplies the run's cancellation handle, letting the
// caller cancel the run externally. Without it the engine looks for a
// "cancellationToken" handle in the context map, then creates a fresh one.
func WithCancellation(h *Handle) RunOption {
	return func(c *runConfig) {
		c.handle = h
	}
}

// WithoutCache bypasses the result cache for this run, on both lookup and
// store.
func WithoutCache() RunOption {
	return func(c *runConfig) {
		c.noCache = true
	}
}
