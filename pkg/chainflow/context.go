package chainflow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chainflow/chainflow/pkg/chainflow/backend"
)

// Context provides execution context to chain runs.
// It extends context.Context with the services a run needs and per-step
// metadata.
//
// Context is immutable after creation. The executor creates derived contexts
// per step with updated StepName, Attempt, and an enriched logger.
type Context interface {
	context.Context

	// Services

	// Logger returns the configured logger, enriched with session and step
	// context during execution. Never returns nil; defaults to
	// slog.Default() if not configured.
	Logger() *slog.Logger

	// Backend returns the model client, or nil if not configured.
	// The engine rejects runs with a nil backend before any step executes.
	Backend() backend.Client

	// Metadata

	// RunID returns the unique identifier for this execution.
	// Auto-generated if not configured; the engine overrides it with the
	// session id for the duration of a run.
	RunID() string

	// StepName returns the step currently executing. Empty before
	// execution starts.
	StepName() string

	// Attempt returns the model-call attempt number (1 = first attempt).
	Attempt() int
}

// executionContext is the internal implementation of Context.
type executionContext struct {
	context.Context

	logger  *slog.Logger
	client  backend.Client
	runID   string
	step    string
	attempt int
}

// Logger returns the configured logger.
func (c *executionContext) Logger() *slog.Logger {
	return c.logger
}

// Backend returns the model client.
func (c *executionContext) Backend() backend.Client {
	return c.client
}

// RunID returns the run identifier.
func (c *executionContext) RunID() string {
	return c.runID
}

// StepName returns the current step name.
func (c *executionContext) StepName() string {
	return c.step
}

// Attempt returns the model-call attempt number.
func (c *executionContext) Attempt() int {
	return c.attempt
}

// ContextOption configures a Context.
type ContextOption func(*executionContext)

// WithLogger sets the logger for the context.
// The logger is enriched with session_id, step, and attempt during execution.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *executionContext) {
		c.logger = logger
	}
}

// WithBackend sets the model client for the context.
func WithBackend(client backend.Client) ContextOption {
	return func(c *executionContext) {
		c.client = client
	}
}

// WithRunID sets the run identifier for the context.
// If not set, a UUID is auto-generated.
func WithRunID(id string) ContextOption {
	return func(c *executionContext) {
		c.runID = id
	}
}

// NewContext creates an execution context from a standard context.
// The returned Context wraps the provided context.Context and adds the
// services and metadata a chain run needs.
//
// Example:
//
//	ctx := chainflow.NewContext(context.Background(),
//	    chainflow.WithLogger(myLogger),
//	    chainflow.WithBackend(client))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &executionContext{
		Context: ctx,
		logger:  slog.Default(),
		runID:   uuid.New().String(),
		attempt: 1,
	}

	for _, opt := range opts {
		opt(ec)
	}

	return ec
}

// derived returns a copy carrying a different embedded context.Context.
// Used for chain-level timeouts.
func (c *executionContext) derived(std context.Context) *executionContext {
	cp := *c
	cp.Context = std
	return &cp
}

// withStep returns a copy scoped to one step attempt, with the logger
// enriched accordingly.
func (c *executionContext) withStep(step string, attempt int) *executionContext {
	cp := *c
	cp.step = step
	cp.attempt = attempt
	cp.logger = c.logger.With("session_id", c.runID, "step", step, "attempt", attempt)
	return &cp
}
