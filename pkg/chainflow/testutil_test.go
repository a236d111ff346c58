package chainflow

import (
	"context"
	"io"
	"log/slog"

	"github.com/chainflow/chainflow/pkg/chainflow/backend"
)

// Test fixtures shared across the package tests.

// step builds a minimal step definition.
func step(name string, deps ...string) StepDefinition {
	return StepDefinition{
		Name:           name,
		PromptTemplate: "do " + name + " for {{query}}",
		DependsOn:      deps,
	}
}

// twoStepChain is a valid chain with a linear dependency.
func twoStepChain() *ChainDefinition {
	return &ChainDefinition{
		Name: "qa",
		Steps: []StepDefinition{
			{Name: "lookup", PromptTemplate: "List facts relevant to: {{query}}"},
			{Name: "answer", PromptTemplate: "Using:\n{{lookup_result}}\nanswer: {{query}}", DependsOn: []string{"lookup"}},
		},
	}
}

// runContextMap is a context map satisfying the required provider/model keys.
func runContextMap(extra ...any) map[string]any {
	m := map[string]any{
		KeyProvider: "mock",
		KeyModel:    "test-model",
	}
	for i := 0; i+1 < len(extra); i += 2 {
		m[extra[i].(string)] = extra[i+1]
	}
	return m
}

// quietLogger discards output so tests stay silent.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testContext builds an execution context around a mock backend.
func testContext(client backend.Client) Context {
	return NewContext(context.Background(),
		WithLogger(quietLogger()),
		WithBackend(client))
}

// testEngine builds an engine with no backoff so retry tests run instantly.
func testEngine(chains *Chains, opts ...EngineOption) *Engine {
	base := []EngineOption{WithRetryBackoff(0)}
	return NewEngine(chains, append(base, opts...)...)
}

// registered wraps a definition in a registry, panicking on invalid fixtures.
func registered(defs ...*ChainDefinition) *Chains {
	chains := NewChains()
	for _, def := range defs {
		chains.MustRegister(def)
	}
	return chains
}

// alwaysFail is a validator rejecting everything with a fixed reason.
func alwaysFail(reason string) Validator {
	return ValidatorFunc(func(vc ValidationContext) (bool, string) {
		return false, reason
	})
}

// passWhen accepts only the given result text.
func passWhen(accepted string) Validator {
	return ValidatorFunc(func(vc ValidationContext) (bool, string) {
		if vc.Result == accepted {
			return true, ""
		}
		return false, "expected " + accepted
	})
}
