/*
Package chainflow executes multi-step reasoning chains against a
language-model backend.

# Overview

A chain is a declarative pipeline: named steps with prompt templates,
dependencies on earlier steps, validators, and per-step retry budgets. The
engine resolves a valid execution order, builds each step's prompt from the
accumulated session state, calls the model with bounded retries and
validation feedback, and wraps the whole run with result caching and
cooperative cancellation. A single user request becomes a bounded, auditable,
cancellable pipeline of model calls instead of one opaque call.

# Basic Usage

Register chains at process start, then execute:

	chains := chainflow.NewChains()
	err := chains.Register(&chainflow.ChainDefinition{
	    Name:     "qa",
	    CacheTTL: 10 * time.Minute,
	    Steps: []chainflow.StepDefinition{
	        {Name: "lookup", PromptTemplate: "List facts relevant to: {{query}}"},
	        {Name: "answer", PromptTemplate: "Using:\n{{lookup_result}}\nanswer: {{query}}",
	            DependsOn: []string{"lookup"}, RetryBudget: 2},
	    },
	})
	if err != nil {
	    log.Fatal(err)
	}

	engine := chainflow.NewEngine(chains,
	    chainflow.WithCache(cache.NewMemoryStore()))

	ctx := chainflow.NewContext(context.Background(),
	    chainflow.WithBackend(client))

	result, session, err := engine.Execute(ctx, "qa", "why is the sky blue?",
	    map[string]any{"provider": "openai", "model": "gpt-4o-mini"})

The context map must supply "provider" and "model"; every other key becomes a
{{key}} substitution in step prompts.

# Step Prompts

Prompts see the session as it stood when the step started: {{query}} is the
original question, {{previousResult}} the latest completed step's text,
{{previousResults}} all completed steps as "name: result" lines, and each
completed step is addressable as {{<name>_result}} for non-adjacent
references.

# Validation and Retries

A validator rejecting a step's output triggers a retry with the rejection
reason appended to the prompt, spending one unit of the step's retry budget.
Backend failures spend the same budget with a fixed backoff. A step with
budget N makes at most N+1 model calls; exhaustion fails the whole chain,
returning the partial session alongside the error.

# Cancellation

Runs are cancelled cooperatively: a Handle (per run, optionally linked to a
caller's parent handle) is polled before every step, model call, and
validator. Cancellation is a distinct terminal outcome, never conflated with
failure.
*/
package chainflow
