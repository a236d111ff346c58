package chainflow

import (
	"errors"
	"fmt"
	"time"
)

// Default limits applied when a chain definition leaves them unset.
const (
	// DefaultMaxSteps bounds the number of steps a chain may declare.
	DefaultMaxSteps = 20

	// DefaultRetryBudget is applied by the YAML loader when a step omits
	// retry_budget. Definitions built in code set RetryBudget explicitly;
	// zero there means zero retries.
	DefaultRetryBudget = 2
)

// ChainDefinition describes one reasoning chain: an ordered list of prompt
// steps, their dependencies and validators, and run-level limits.
//
// Definitions are built once at process start, validated via Validate() (the
// chain registry does this on Register), and never mutated afterwards. That
// makes them safe for unsynchronized concurrent reads across runs.
type ChainDefinition struct {
	// Name is the symbolic id the registry and cache key use.
	Name string

	// Description is free-text documentation, not used by the engine.
	Description string

	// MaxSteps caps len(Steps). Zero means DefaultMaxSteps.
	MaxSteps int

	// ChainTimeout bounds the whole run, covering every step, retry and
	// backoff. Zero means no chain-level timeout.
	ChainTimeout time.Duration

	// CacheTTL is how long a cached final result of this chain stays valid.
	// Zero disables caching for this chain.
	CacheTTL time.Duration

	// Template is the symbolic id of the system-prompt preamble prepended
	// to every step prompt. Unknown ids fall back to the engine default.
	Template string

	// Steps is the ordered step list. Declaration order matters: it breaks
	// ties in the resolver and is the fallback order on a dependency cycle.
	Steps []StepDefinition

	// Validators maps validator names referenced by steps to functions.
	// Resolved here at registration time rather than looked up dynamically
	// per invocation. A name referenced by a step but absent from this map
	// is treated as a pass at run time.
	Validators map[string]Validator
}

// StepDefinition describes one unit of chain execution.
type StepDefinition struct {
	// Name must be unique within the chain. Completed steps become
	// available to later prompts as {{<name>_result}}.
	Name string

	// PromptTemplate is the step's prompt with {{variable}} placeholders.
	PromptTemplate string

	// DependsOn lists step names that must complete before this one runs.
	// Every entry must name another step in the same chain.
	DependsOn []string

	// Validators names the checks run against the step's output, in order.
	Validators []string

	// Temperature overrides the sampling temperature for this step's model
	// calls. Nil defers to the session or engine default; an explicit zero
	// requests deterministic sampling. Use Temp to set it in a literal.
	Temperature *float64

	// MaxOutputTokens caps the model output. Zero means the session or
	// engine default.
	MaxOutputTokens int

	// RetryBudget is the number of retries after the initial attempt, spent
	// on backend failures and validation rejections alike. A step with
	// budget N makes at most N+1 model calls.
	RetryBudget int

	// Timeout bounds each individual model call for this step. Zero means
	// the backend client's default.
	Timeout time.Duration

	// Optional marks a step whose skip does not fail the chain. Optional
	// affects only the skip check; retry and validation semantics are the
	// same as for required steps.
	Optional bool

	// Skip is the skip predicate for optional steps. An optional step with
	// Skip set advances without touching the session.
	Skip bool
}

// Temp returns a pointer to t for setting StepDefinition.Temperature in a
// literal. Temp(0) requests deterministic sampling; a nil Temperature
// defers to the session or engine default.
func Temp(t float64) *float64 {
	return &t
}

// Validate checks the definition for configuration errors. All problems
// found are joined into one error, wrapped in a ConfigError.
//
// Checks: non-empty chain name, at least one step, step count within
// MaxSteps, non-empty unique step names, non-empty prompt templates,
// non-negative retry budgets, and every dependsOn entry naming another step
// in this chain. Cycles are deliberately not rejected here; the resolver
// handles them with a declaration-order fallback at run time.
func (c *ChainDefinition) Validate() error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, errors.New("chain name is empty"))
	}
	if len(c.Steps) == 0 {
		errs = append(errs, errors.New("chain has no steps"))
	}

	maxSteps := c.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	if len(c.Steps) > maxSteps {
		errs = append(errs, fmt.Errorf("chain has %d steps, limit is %d", len(c.Steps), maxSteps))
	}

	names := make(map[string]bool, len(c.Steps))
	for i, step := range c.Steps {
		if step.Name == "" {
			errs = append(errs, fmt.Errorf("step %d has no name", i))
			continue
		}
		if names[step.Name] {
			errs = append(errs, fmt.Errorf("duplicate step name: %s", step.Name))
		}
		names[step.Name] = true
	}

	for _, step := range c.Steps {
		if step.Name == "" {
			continue
		}
		if step.PromptTemplate == "" {
			errs = append(errs, fmt.Errorf("step %s has no prompt template", step.Name))
		}
		if step.RetryBudget < 0 {
			errs = append(errs, fmt.Errorf("step %s has negative retry budget: %d", step.Name, step.RetryBudget))
		}
		for _, dep := range step.DependsOn {
			if !names[dep] {
				errs = append(errs, fmt.Errorf("step %s depends on unknown step: %s", step.Name, dep))
			}
		}
	}

	if len(errs) > 0 {
		return &ConfigError{Chain: c.Name, Err: errors.Join(errs...)}
	}
	return nil
}

// Step returns the named step definition.
func (c *ChainDefinition) Step(name string) (StepDefinition, bool) {
	for _, s := range c.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepDefinition{}, false
}

// Validator looks up a validator by name in the chain's validator set.
func (c *ChainDefinition) Validator(name string) (Validator, bool) {
	v, ok := c.Validators[name]
	return v, ok
}
