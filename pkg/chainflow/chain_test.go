package chainflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestChainDefinition_Validate_Valid verifies a well-formed chain passes.
func TestChainDefinition_Validate_Valid(t *testing.T) {
	def := twoStepChain()

	assert.NoError(t, def.Validate())
}

// TestChainDefinition_Validate_Errors covers every registration-time check.
func TestChainDefinition_Validate_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		def     *ChainDefinition
		wantMsg string
	}{
		{
			name:    "empty chain name",
			def:     &ChainDefinition{Steps: []StepDefinition{step("a")}},
			wantMsg: "chain name is empty",
		},
		{
			name:    "no steps",
			def:     &ChainDefinition{Name: "empty"},
			wantMsg: "chain has no steps",
		},
		{
			name: "empty step name",
			def: &ChainDefinition{
				Name:  "c",
				Steps: []StepDefinition{{PromptTemplate: "p"}},
			},
			wantMsg: "step 0 has no name",
		},
		{
			name: "duplicate step name",
			def: &ChainDefinition{
				Name:  "c",
				Steps: []StepDefinition{step("a"), step("a")},
			},
			wantMsg: "duplicate step name: a",
		},
		{
			name: "missing prompt template",
			def: &ChainDefinition{
				Name:  "c",
				Steps: []StepDefinition{{Name: "a"}},
			},
			wantMsg: "step a has no prompt template",
		},
		{
			name: "negative retry budget",
			def: &ChainDefinition{
				Name:  "c",
				Steps: []StepDefinition{{Name: "a", PromptTemplate: "p", RetryBudget: -1}},
			},
			wantMsg: "negative retry budget",
		},
		{
			name: "unknown dependency",
			def: &ChainDefinition{
				Name:  "c",
				Steps: []StepDefinition{step("a", "ghost")},
			},
			wantMsg: "depends on unknown step: ghost",
		},
		{
			name: "too many steps",
			def: &ChainDefinition{
				Name:     "c",
				MaxSteps: 1,
				Steps:    []StepDefinition{step("a"), step("b")},
			},
			wantMsg: "limit is 1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.def.Validate()

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

// TestChainDefinition_Validate_JoinsAllProblems verifies every problem is
// reported at once, not just the first.
func TestChainDefinition_Validate_JoinsAllProblems(t *testing.T) {
	def := &ChainDefinition{
		Steps: []StepDefinition{
			{Name: "a", RetryBudget: -1},
			step("b", "ghost"),
		},
	}

	err := def.Validate()

	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"chain name is empty", "no prompt template", "negative retry budget", "unknown step: ghost"} {
		assert.Contains(t, msg, want)
	}
}

// TestChainDefinition_Validate_CycleAllowed verifies cyclic dependencies are
// not rejected at registration; the resolver handles them at run time.
func TestChainDefinition_Validate_CycleAllowed(t *testing.T) {
	def := &ChainDefinition{
		Name:  "cyclic",
		Steps: []StepDefinition{step("a", "b"), step("b", "a")},
	}

	assert.NoError(t, def.Validate())
}

// TestChainDefinition_Step verifies the step lookup.
func TestChainDefinition_Step(t *testing.T) {
	def := twoStepChain()

	s, ok := def.Step("answer")
	require.True(t, ok)
	assert.Equal(t, []string{"lookup"}, s.DependsOn)

	_, ok = def.Step("missing")
	assert.False(t, ok)
}

// TestChainDefinition_Validator verifies the validator lookup.
func TestChainDefinition_Validator(t *testing.T) {
	def := twoStepChain()
	def.Validators = map[string]Validator{"non_empty": NonEmptyValidator()}

	v, ok := def.Validator("non_empty")
	require.True(t, ok)
	pass, _ := v.Validate(ValidationContext{Result: "text"})
	assert.True(t, pass)

	_, ok = def.Validator("missing")
	assert.False(t, ok)
}

// TestMinLengthValidator verifies the bundled length check.
func TestMinLengthValidator(t *testing.T) {
	v := MinLengthValidator(5)

	pass, _ := v.Validate(ValidationContext{Result: "long enough"})
	assert.True(t, pass)

	pass, reason := v.Validate(ValidationContext{Result: "no"})
	assert.False(t, pass)
	assert.True(t, strings.Contains(reason, "too short"))
}
