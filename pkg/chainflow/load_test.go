package chainflow

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainflow/chainflow/pkg/chainflow/backend"
)

const chainYAML = `
name: qa
description: question answering
max_steps: 10
timeout: 2m
cache_ttl: 10m
template: science
steps:
  - name: lookup
    prompt: "List facts relevant to: {{query}}"
    temperature: 0.3
    max_tokens: 512
  - name: answer
    prompt: "Using {{lookup_result}}, answer: {{query}}"
    depends_on: [lookup]
    validators: [non_empty]
    retry_budget: 0
    timeout: 30s
    optional: false
`

// TestParseChainYAML verifies the full field mapping.
func TestParseChainYAML(t *testing.T) {
	def, err := ParseChainYAML([]byte(chainYAML), map[string]Validator{"non_empty": NonEmptyValidator()})

	require.NoError(t, err)
	assert.Equal(t, "qa", def.Name)
	assert.Equal(t, "question answering", def.Description)
	assert.Equal(t, 10, def.MaxSteps)
	assert.Equal(t, 2*time.Minute, def.ChainTimeout)
	assert.Equal(t, 10*time.Minute, def.CacheTTL)
	assert.Equal(t, "science", def.Template)
	require.Len(t, def.Steps, 2)

	lookup := def.Steps[0]
	assert.Equal(t, "lookup", lookup.Name)
	require.NotNil(t, lookup.Temperature)
	assert.InDelta(t, 0.3, *lookup.Temperature, 1e-9)
	assert.Equal(t, 512, lookup.MaxOutputTokens)
	// Omitted retry_budget takes the default.
	assert.Equal(t, DefaultRetryBudget, lookup.RetryBudget)

	answer := def.Steps[1]
	assert.Equal(t, []string{"lookup"}, answer.DependsOn)
	assert.Equal(t, []string{"non_empty"}, answer.Validators)
	// Omitted temperature defers to the session or engine default.
	assert.Nil(t, answer.Temperature)
	// Explicit zero means zero retries, not the default.
	assert.Equal(t, 0, answer.RetryBudget)
	assert.Equal(t, 30*time.Second, answer.Timeout)
}

// TestParseChainYAML_ZeroTemperature verifies an explicit zero survives as
// a deterministic sampling request rather than reading as unset.
func TestParseChainYAML_ZeroTemperature(t *testing.T) {
	data := `
name: det
steps:
  - name: only
    prompt: p
    temperature: 0
`
	def, err := ParseChainYAML([]byte(data), nil)

	require.NoError(t, err)
	require.NotNil(t, def.Steps[0].Temperature)
	assert.Zero(t, *def.Steps[0].Temperature)
}

// TestParseChainYAML_InvalidDefinition verifies validation runs on load.
func TestParseChainYAML_InvalidDefinition(t *testing.T) {
	bad := `
name: broken
steps:
  - name: a
    prompt: p
    depends_on: [ghost]
`
	_, err := ParseChainYAML([]byte(bad), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "ghost")
}

// TestParseChainYAML_BadDuration verifies duration parse errors name the
// offending field.
func TestParseChainYAML_BadDuration(t *testing.T) {
	bad := `
name: c
cache_ttl: not-a-duration
steps:
  - name: a
    prompt: p
`
	_, err := ParseChainYAML([]byte(bad), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache_ttl")
}

// TestParseChainYAML_Malformed verifies YAML syntax errors surface.
func TestParseChainYAML_Malformed(t *testing.T) {
	_, err := ParseChainYAML([]byte("steps: [unclosed"), nil)

	assert.Error(t, err)
}

// TestLoadChainFile verifies the file path round trip.
func TestLoadChainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(chainYAML), 0o644))

	def, err := LoadChainFile(path, nil)

	require.NoError(t, err)
	assert.Equal(t, "qa", def.Name)
	assert.Len(t, def.Steps, 2)
}

// TestLoadChainFile_JSON verifies chains can be declared in JSON files too;
// the loader shares the config package's format detection.
func TestLoadChainFile_JSON(t *testing.T) {
	chainJSON := `{
  "name": "qa",
  "cache_ttl": "10m",
  "steps": [
    {"name": "lookup", "prompt": "List facts relevant to: {{query}}", "temperature": 0.3},
    {"name": "answer", "prompt": "Using {{lookup_result}}, answer: {{query}}", "depends_on": ["lookup"]}
  ]
}`
	path := filepath.Join(t.TempDir(), "chain.json")
	require.NoError(t, os.WriteFile(path, []byte(chainJSON), 0o644))

	def, err := LoadChainFile(path, nil)

	require.NoError(t, err)
	assert.Equal(t, "qa", def.Name)
	assert.Equal(t, 10*time.Minute, def.CacheTTL)
	require.Len(t, def.Steps, 2)
	require.NotNil(t, def.Steps[0].Temperature)
	assert.InDelta(t, 0.3, *def.Steps[0].Temperature, 1e-9)
	assert.Equal(t, []string{"lookup"}, def.Steps[1].DependsOn)
}

// TestLoadChainFile_UnsupportedExtension verifies format detection rejects
// unknown file types.
func TestLoadChainFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = \"qa\""), 0o644))

	_, err := LoadChainFile(path, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config file extension")
}

// TestLoadChainFile_Missing verifies a useful error for absent files.
func TestLoadChainFile_Missing(t *testing.T) {
	_, err := LoadChainFile(filepath.Join(t.TempDir(), "nope.yaml"), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load chain file")
}

// TestLoadedChainExecutes verifies a YAML-defined chain runs end to end.
func TestLoadedChainExecutes(t *testing.T) {
	def, err := ParseChainYAML([]byte(chainYAML), map[string]Validator{"non_empty": NonEmptyValidator()})
	require.NoError(t, err)

	mock := backend.NewMockClient("").WithResponses("facts", "answered")
	engine := testEngine(registered(def))

	result, _, execErr := engine.Execute(testContext(mock), "qa", "why?", runContextMap())

	require.NoError(t, execErr)
	assert.Equal(t, "answered", result.FinalAnswer)
}
