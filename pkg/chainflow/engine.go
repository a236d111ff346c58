package chainflow

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/chainflow/chainflow/pkg/chainflow/config"
	"github.com/chainflow/chainflow/pkg/chainflow/observability"
	"github.com/chainflow/chainflow/pkg/chainflow/registry"
)

// Reserved session context keys. Caller-supplied values under these names
// configure the run; all other keys are passed through as {{key}}
// substitutions.
const (
	// KeyProvider selects the serving backend. Required.
	KeyProvider = "provider"

	// KeyModel selects the model. Required.
	KeyModel = "model"

	// KeyTemperature overrides the engine's default sampling temperature
	// for steps that do not set their own.
	KeyTemperature = "temperature"

	// KeyMaxTokens overrides the engine's default output token cap for
	// steps that do not set their own.
	KeyMaxTokens = "maxTokens"

	// KeyCancellationToken carries a *Handle for the run to inherit, so an
	// upstream cancellation transitively cancels the chain.
	KeyCancellationToken = "cancellationToken"
)

// DefaultPreamble is the system-prompt preamble used when a chain names no
// template, or names one the engine does not know.
const DefaultPreamble = "You are a careful reasoning assistant. Work through the task step by step and answer only what the current step asks."

// Engine executes reasoning chains: it resolves step order, runs each step
// against the model backend with bounded retries and validation feedback,
// and wraps the whole run with caching and cancellation.
//
// One Engine serves many concurrent runs. Runs share only the immutable
// chain definitions and the result cache; each run's session is owned by the
// goroutine executing it.
type Engine struct {
	chains    *Chains
	templates *registry.Registry[string, string]
	cfg       engineConfig
}

// NewEngine creates an engine over the given chain registry.
func NewEngine(chains *Chains, opts ...EngineOption) *Engine {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{
		chains:    chains,
		templates: registry.New[string, string](),
		cfg:       cfg,
	}
}

// RegisterTemplate adds a system-prompt preamble under a symbolic id that
// chain definitions reference via their Template field. Call during process
// start, before runs begin.
func (e *Engine) RegisterTemplate(name, preamble string) {
	e.templates.Register(name, preamble)
}

// preamble resolves a chain's template id, falling back to the default.
func (e *Engine) preamble(name string) string {
	if name != "" {
		if p, ok := e.templates.Get(name); ok {
			return p
		}
	}
	return DefaultPreamble
}

// Execute runs the named chain for query. contextMap supplies the required
// provider and model plus any extra {{key}} substitution values.
//
// The returned session is never nil once the chain was found: on failure or
// cancellation it carries every step completed before the stop, so callers
// can decide whether a partial answer is still useful. The error, when
// non-nil, matches exactly one of ErrConfiguration, ErrRequestFailed,
// ErrValidationFailed, or ErrCancelled via errors.Is.
func (e *Engine) Execute(ctx Context, chainName, query string, contextMap map[string]any, opts ...RunOption) (*ChainResult, *Session, error) {
	if ctx == nil {
		return nil, nil, ErrNilContext
	}
	def, ok := e.chains.Get(chainName)
	if !ok {
		return nil, nil, &ConfigError{Chain: chainName, Err: ErrChainNotFound}
	}
	return e.ExecuteDefinition(ctx, def, query, contextMap, opts...)
}

// ExecuteSelected picks a chain via sel and runs it. See Execute.
func (e *Engine) ExecuteSelected(ctx Context, sel Selector, query string, contextMap map[string]any, opts ...RunOption) (*ChainResult, *Session, error) {
	if ctx == nil {
		return nil, nil, ErrNilContext
	}
	return e.Execute(ctx, sel.Select(query, contextMap), query, contextMap, opts...)
}

// ExecuteDefinition runs a chain definition directly, bypassing the
// registry lookup. The definition must already be validated; registered
// definitions are.
func (e *Engine) ExecuteDefinition(ctx Context, def *ChainDefinition, query string, contextMap map[string]any, opts ...RunOption) (result *ChainResult, session *Session, runErr error) {
	if ctx == nil {
		return nil, nil, ErrNilContext
	}

	rcfg := runConfig{}
	for _, opt := range opts {
		opt(&rcfg)
	}

	session = NewSession(def.Name, query, contextMap, e.parentHandle(&rcfg, contextMap))

	logger := ctx.Logger()
	observability.LogChainStart(logger, def.Name, session.ID)
	start := time.Now()

	// Cache check before any work.
	if cached, ok := e.cacheLookup(ctx, def, query, &rcfg); ok {
		session.finish(StatusCompleted)
		observability.LogCacheHit(logger, def.Name, session.ID)
		return cached, session, nil
	}

	// Required run configuration, checked before any model call.
	cc := config.New(contextMap)
	provider := cc.String(KeyProvider, "")
	model := cc.String(KeyModel, "")
	if provider == "" || model == "" {
		session.finish(StatusFailed)
		cfgErr := &ConfigError{Chain: def.Name, Err: errors.New("context must supply provider and model")}
		observability.LogChainError(logger, def.Name, session.ID, cfgErr, 0, "")
		return nil, session, cfgErr
	}
	if ctx.Backend() == nil {
		session.finish(StatusFailed)
		cfgErr := &ConfigError{Chain: def.Name, Err: errors.New("no model backend configured on context")}
		observability.LogChainError(logger, def.Name, session.ID, cfgErr, 0, "")
		return nil, session, cfgErr
	}

	// Resolve step order. A cycle degrades to declaration order.
	ordered, err := Order(def.Steps)
	if err != nil {
		var cycleErr *CycleError
		if errors.As(err, &cycleErr) {
			observability.LogCycleFallback(logger, def.Name, cycleErr.Cycle)
		}
	}

	// Bind the session id and chain timeout into the execution context.
	runCtx := e.runContext(ctx, session)
	var cancel context.CancelFunc
	if def.ChainTimeout > 0 {
		runCtx, cancel = e.withTimeout(runCtx, def.ChainTimeout)
		defer cancel()
	}

	// Chain span wraps every step span.
	tracingCtx := context.Context(runCtx)
	if e.cfg.tracingEnabled {
		var chainSpan trace.Span
		tracingCtx, chainSpan = e.cfg.spans.StartChainSpan(runCtx, def.Name, session.ID)
		defer func() {
			e.cfg.spans.EndSpanWithError(chainSpan, runErr)
		}()
	}

	runErr = e.runSteps(runCtx, tracingCtx, def, ordered, session, provider, model)

	duration := time.Since(start)
	durationMs := float64(duration.Milliseconds())
	e.cfg.metrics.RecordChainRun(runCtx, def.Name, runErr == nil, duration)

	if runErr != nil {
		if errors.Is(runErr, ErrCancelled) {
			session.finish(StatusCancelled)
			observability.LogChainCancelled(logger, def.Name, session.ID, lastStepOf(runErr))
		} else {
			session.finish(StatusFailed)
			observability.LogChainError(logger, def.Name, session.ID, runErr, durationMs, lastStepOf(runErr))
		}
		return nil, session, runErr
	}

	result = &ChainResult{
		Query:          query,
		Steps:          session.CompletedSteps,
		FinalAnswer:    session.LastResult(),
		StepCount:      len(session.CompletedSteps),
		DurationMillis: duration.Milliseconds(),
	}
	session.finish(StatusCompleted)
	e.cacheStore(ctx, def, query, result, &rcfg)
	observability.LogChainComplete(logger, def.Name, session.ID, durationMs, result.StepCount)
	return result, session, nil
}

// parentHandle picks the cancellation parent for a run: the WithCancellation
// option wins, then an inherited context-map token, then none.
func (e *Engine) parentHandle(rcfg *runConfig, contextMap map[string]any) *Handle {
	if rcfg.handle != nil {
		return rcfg.handle
	}
	if h, ok := contextMap[KeyCancellationToken].(*Handle); ok {
		return h
	}
	return nil
}

// cacheLookup returns a cached final result for (chain, query) when one is
// valid. Cache failures are logged and treated as misses; the cache is an
// optimization, never a gate.
func (e *Engine) cacheLookup(ctx Context, def *ChainDefinition, query string, rcfg *runConfig) (*ChainResult, bool) {
	if e.cfg.cache == nil || rcfg.noCache || def.CacheTTL <= 0 {
		return nil, false
	}
	slogger := ctx.Logger()
	data, hit, err := e.cfg.cache.Get(ctx, def.Name, query)
	if err != nil {
		observability.LogCacheError(slogger, def.Name, "get", err)
		return nil, false
	}
	e.cfg.metrics.RecordCacheLookup(ctx, def.Name, hit)
	if !hit {
		return nil, false
	}
	var res ChainResult
	if err := json.Unmarshal(data, &res); err != nil {
		observability.LogCacheError(slogger, def.Name, "decode", err)
		return nil, false
	}
	return &res, true
}

// cacheStore serializes and stores a completed result.
func (e *Engine) cacheStore(ctx Context, def *ChainDefinition, query string, result *ChainResult, rcfg *runConfig) {
	if e.cfg.cache == nil || rcfg.noCache || def.CacheTTL <= 0 {
		return
	}
	slogger := ctx.Logger()
	data, err := json.Marshal(result)
	if err != nil {
		observability.LogCacheError(slogger, def.Name, "encode", err)
		return
	}
	if err := e.cfg.cache.Put(ctx, def.Name, query, data, def.CacheTTL); err != nil {
		observability.LogCacheError(slogger, def.Name, "put", err)
	}
}

// runContext binds the session id into the context so log enrichment and
// RunID() reflect this run.
func (e *Engine) runContext(ctx Context, session *Session) Context {
	if ec, ok := ctx.(*executionContext); ok {
		cp := *ec
		cp.runID = session.ID
		return &cp
	}
	return ctx
}

// withTimeout derives a Context bounded by the chain timeout, preserving
// the chainflow services.
func (e *Engine) withTimeout(ctx Context, d time.Duration) (Context, context.CancelFunc) {
	std, cancel := context.WithTimeout(ctx, d)
	if ec, ok := ctx.(*executionContext); ok {
		return ec.derived(std), cancel
	}
	return &executionContext{
		Context: std,
		logger:  ctx.Logger(),
		client:  ctx.Backend(),
		runID:   ctx.RunID(),
		attempt: 1,
	}, cancel
}

// lastStepOf extracts the step name carried by a terminal error, for logs.
func lastStepOf(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Step
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Step
	}
	var cancelErr *CancelledError
	if errors.As(err, &cancelErr) {
		return cancelErr.Step
	}
	return ""
}
