package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that discards all measurements.
// Used when metrics are disabled or instrument creation fails.
type NoopMetrics struct{}

func (NoopMetrics) RecordStepExecution(ctx context.Context, step string, duration time.Duration, err error) {
}
func (NoopMetrics) RecordStepRetry(ctx context.Context, step, kind string) {}
func (NoopMetrics) RecordChainRun(ctx context.Context, chain string, success bool, duration time.Duration) {
}
func (NoopMetrics) RecordCacheLookup(ctx context.Context, chain string, hit bool) {}

// NoopSpanManager is a SpanManager that produces non-recording spans.
type NoopSpanManager struct{}

var noopTracer = noop.NewTracerProvider().Tracer("chainflow")

func (NoopSpanManager) StartChainSpan(ctx context.Context, chain, sessionID string) (context.Context, trace.Span) {
	return noopTracer.Start(ctx, "chainflow.run")
}

func (NoopSpanManager) StartStepSpan(ctx context.Context, step string) (context.Context, trace.Span) {
	return noopTracer.Start(ctx, "chainflow.step")
}

func (NoopSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span != nil {
		span.End()
	}
}

func (NoopSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {}
