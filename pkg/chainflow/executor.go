package chainflow

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/chainflow/chainflow/pkg/chainflow/backend"
	"github.com/chainflow/chainflow/pkg/chainflow/config"
	"github.com/chainflow/chainflow/pkg/chainflow/observability"
	"github.com/chainflow/chainflow/pkg/chainflow/template"
)

// runSteps executes the resolved step order against one session.
//
// Each step runs strictly after its predecessor is finalized, retries and
// validation included, because its prompt may depend on the predecessor's
// output. Cancellation is polled before each step, before each model call,
// and before each validator; work in flight is never forcibly aborted.
func (e *Engine) runSteps(ctx Context, tracingCtx context.Context, def *ChainDefinition, ordered []StepDefinition, session *Session, provider, model string) error {
	logger := ctx.Logger()
	preamble := e.preamble(def.Template)

	// Chain-start cancellation check, before any step runs.
	if err := e.checkCancelled(ctx, session, def.Name, ""); err != nil {
		return err
	}

	for _, step := range ordered {
		if step.Optional && step.Skip {
			observability.LogStepSkip(logger, step.Name)
			continue
		}

		if err := e.checkCancelled(ctx, session, def.Name, step.Name); err != nil {
			return err
		}

		observability.LogStepStart(logger, step.Name)

		stepTracingCtx := tracingCtx
		var stepSpan trace.Span
		if e.cfg.tracingEnabled {
			stepTracingCtx, stepSpan = e.cfg.spans.StartStepSpan(tracingCtx, step.Name)
		}

		stepStart := time.Now()
		text, attempts, stepErr := e.executeStep(ctx, stepTracingCtx, def, step, session, provider, model, preamble)
		stepDuration := time.Since(stepStart)

		e.cfg.metrics.RecordStepExecution(stepTracingCtx, step.Name, stepDuration, stepErr)
		if e.cfg.tracingEnabled {
			e.cfg.spans.EndSpanWithError(stepSpan, stepErr)
		}

		if stepErr != nil {
			observability.LogStepError(logger, step.Name, stepErr, attempts)
			return stepErr
		}

		session.appendResult(step.Name, text, time.Now())
		observability.LogStepComplete(logger, step.Name, float64(stepDuration.Milliseconds()), attempts)
	}

	return nil
}

// executeStep drives one step through its attempt loop: model call,
// validation, and retries against a shared budget.
//
// A step with RetryBudget N makes at most N+1 model calls. Backend failures
// retry with the same prompt after a fixed backoff; validation rejections
// retry immediately with the original prompt extended by the rejection
// reason. Returns the accepted result text and the number of attempts made.
func (e *Engine) executeStep(ctx Context, tracingCtx context.Context, def *ChainDefinition, step StepDefinition, session *Session, provider, model, preamble string) (string, int, error) {
	basePrompt := e.buildStepPrompt(step, session)
	prompt := basePrompt
	budget := step.RetryBudget

	for attempt := 1; ; attempt++ {
		attemptCtx := e.stepContext(ctx, step.Name, attempt)
		logger := attemptCtx.Logger()

		// Re-check cancellation immediately before the model call.
		if err := e.checkCancelled(ctx, session, def.Name, step.Name); err != nil {
			return "", attempt - 1, err
		}

		req := e.buildRequest(def, step, session, provider, model, preamble, prompt)
		if e.cfg.tracingEnabled {
			e.cfg.spans.AddSpanEvent(tracingCtx, "model.call",
				attribute.String("step.name", step.Name),
				attribute.Int("attempt", attempt),
			)
		}
		resp, callErr := attemptCtx.Backend().Complete(attemptCtx, req)
		if callErr != nil {
			if attempt <= budget {
				observability.LogStepRetry(logger, step.Name, "request", callErr.Error(), attempt)
				e.cfg.metrics.RecordStepRetry(ctx, step.Name, "request")
				e.cfg.sleep(e.cfg.backoff)
				continue
			}
			return "", attempt, &RequestError{
				Chain:    def.Name,
				Step:     step.Name,
				Attempts: attempt,
				Err:      callErr,
			}
		}

		text := resp.Text()
		ok, name, reason, valErr := e.validate(ctx, def, step, session, text, attempt)
		if valErr != nil {
			return "", attempt, valErr
		}
		if ok {
			return text, attempt, nil
		}

		if attempt <= budget {
			observability.LogStepRetry(logger, step.Name, "validation", reason, attempt)
			e.cfg.metrics.RecordStepRetry(ctx, step.Name, "validation")
			// Extend the original prompt, not the previous attempt's, so
			// feedback never stacks across retries.
			prompt = basePrompt + "\n\nYour previous response failed validation: " + reason + "\nplease correct and try again"
			continue
		}
		return "", attempt, &ValidationError{
			Chain:     def.Name,
			Step:      step.Name,
			Validator: name,
			Reason:    reason,
			Attempts:  attempt,
		}
	}
}

// validate runs the step's validators in order against the result text.
// Returns the first rejection's validator name and reason. A validator name
// missing from the chain's set is logged and treated as a pass. Cancellation
// is polled before each validator; a cancel surfaces as the fourth return.
func (e *Engine) validate(ctx Context, def *ChainDefinition, step StepDefinition, session *Session, text string, attempt int) (bool, string, string, error) {
	logger := ctx.Logger()
	for _, name := range step.Validators {
		if err := e.checkCancelled(ctx, session, def.Name, step.Name); err != nil {
			return false, "", "", err
		}
		v, ok := def.Validators[name]
		if !ok {
			observability.LogValidatorMissing(logger, step.Name, name)
			continue
		}
		pass, reason := v.Validate(ValidationContext{
			ChainName: def.Name,
			StepName:  step.Name,
			Result:    text,
			Query:     session.OriginalQuery,
			Attempt:   attempt,
		})
		if !pass {
			return false, name, reason, nil
		}
	}
	return true, "", "", nil
}

// buildStepPrompt assembles a step's user prompt: a literal header naming
// the step, then the prompt template with variables substituted.
//
// Substitution is literal {{key}} replacement, non-recursive. The variable
// map is built context first, then per-step "<name>_result" entries, then
// built-ins, so reserved names can never be shadowed by caller data:
// {{query}} is the original query, {{previousResult}} the most recent step's
// text ("" before any step completes), {{previousResults}} all completed
// steps as "name: result" lines.
func (e *Engine) buildStepPrompt(step StepDefinition, session *Session) string {
	vars := make(map[string]any, len(session.Context)+len(session.CompletedSteps)+3)
	for k, v := range session.Context {
		if k == KeyCancellationToken {
			continue
		}
		vars[k] = v
	}
	for _, r := range session.CompletedSteps {
		vars[r.StepName+"_result"] = r.ResultText
	}
	vars["query"] = session.OriginalQuery
	vars["previousResult"] = session.LastResult()
	vars["previousResults"] = session.ResultsBlock()

	return "### Step: " + step.Name + "\n\n" + template.Expand(step.PromptTemplate, vars)
}

// buildRequest assembles the backend request for one attempt. Sampling
// settings fall back step, then session context, then engine default.
func (e *Engine) buildRequest(def *ChainDefinition, step StepDefinition, session *Session, provider, model, preamble, prompt string) backend.Request {
	cc := config.New(session.Context)

	temperature := cc.Float(KeyTemperature, e.cfg.defaultTemperature)
	if step.Temperature != nil {
		temperature = *step.Temperature
	}
	maxTokens := step.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = cc.Int(KeyMaxTokens, e.cfg.defaultMaxTokens)
	}

	return backend.Request{
		Messages: []backend.Message{
			{Role: backend.RoleSystem, Content: preamble},
			{Role: backend.RoleUser, Content: prompt},
		},
		Provider:    provider,
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Timeout:     step.Timeout,
	}
}

// checkCancelled polls the session handle and the standard context. Returns
// a CancelledError naming the step about to run, or nil.
func (e *Engine) checkCancelled(ctx Context, session *Session, chain, step string) error {
	if session.Cancel.IsCancelled() {
		return &CancelledError{Chain: chain, Step: step}
	}
	select {
	case <-ctx.Done():
		return &CancelledError{Chain: chain, Step: step, Cause: ctx.Err()}
	default:
	}
	return nil
}

// stepContext scopes the context to one step attempt with an enriched
// logger. Caller-supplied Context implementations pass through with only
// the logger enrichment applied at call sites.
func (e *Engine) stepContext(ctx Context, step string, attempt int) Context {
	if ec, ok := ctx.(*executionContext); ok {
		return ec.withStep(step, attempt)
	}
	return ctx
}
