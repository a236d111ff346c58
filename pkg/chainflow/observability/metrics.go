package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records chain execution metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordStepExecution records a step execution with its duration and error status.
	RecordStepExecution(ctx context.Context, step string, duration time.Duration, err error)

	// RecordStepRetry records a retried model call.
	// Kind is "request" or "validation".
	RecordStepRetry(ctx context.Context, step, kind string)

	// RecordChainRun records a chain run completion.
	RecordChainRun(ctx context.Context, chain string, success bool, duration time.Duration)

	// RecordCacheLookup records a result-cache lookup.
	RecordCacheLookup(ctx context.Context, chain string, hit bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	stepExecutions metric.Int64Counter
	stepLatency    metric.Float64Histogram
	stepErrors     metric.Int64Counter
	stepRetries    metric.Int64Counter
	chainRuns      metric.Int64Counter
	chainLatency   metric.Float64Histogram
	cacheLookups   metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("chainflow")

	stepExecutions, err := meter.Int64Counter("chainflow.step.executions",
		metric.WithDescription("Number of step executions"),
	)
	if err != nil {
		return nil, err
	}

	stepLatency, err := meter.Float64Histogram("chainflow.step.latency_ms",
		metric.WithDescription("Step execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	stepErrors, err := meter.Int64Counter("chainflow.step.errors",
		metric.WithDescription("Number of step execution errors"),
	)
	if err != nil {
		return nil, err
	}

	stepRetries, err := meter.Int64Counter("chainflow.step.retries",
		metric.WithDescription("Number of retried model calls"),
	)
	if err != nil {
		return nil, err
	}

	chainRuns, err := meter.Int64Counter("chainflow.chain.runs",
		metric.WithDescription("Number of chain runs"),
	)
	if err != nil {
		return nil, err
	}

	chainLatency, err := meter.Float64Histogram("chainflow.chain.latency_ms",
		metric.WithDescription("Chain run latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter("chainflow.cache.lookups",
		metric.WithDescription("Number of result-cache lookups"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		stepExecutions: stepExecutions,
		stepLatency:    stepLatency,
		stepErrors:     stepErrors,
		stepRetries:    stepRetries,
		chainRuns:      chainRuns,
		chainLatency:   chainLatency,
		cacheLookups:   cacheLookups,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordStepExecution records a step execution.
func (m *otelMetrics) RecordStepExecution(ctx context.Context, step string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("step", step),
	}

	m.stepExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.stepLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.stepErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordStepRetry records a retried model call.
func (m *otelMetrics) RecordStepRetry(ctx context.Context, step, kind string) {
	m.stepRetries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("kind", kind),
	))
}

// RecordChainRun records a chain run.
func (m *otelMetrics) RecordChainRun(ctx context.Context, chain string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("chain", chain),
		attribute.Bool("success", success),
	}
	m.chainRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.chainLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordCacheLookup records a result-cache lookup.
func (m *otelMetrics) RecordCacheLookup(ctx context.Context, chain string, hit bool) {
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("chain", chain),
		attribute.Bool("hit", hit),
	))
}
