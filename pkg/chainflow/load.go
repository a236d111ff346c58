package chainflow

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chainflow/chainflow/pkg/chainflow/config"
)

// chainFile is the file shape of a chain definition. yaml tags cover both
// YAML and JSON files, see config.DecodeFile.
type chainFile struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	MaxSteps    int        `yaml:"max_steps"`
	Timeout     string     `yaml:"timeout"`
	CacheTTL    string     `yaml:"cache_ttl"`
	Template    string     `yaml:"template"`
	Steps       []stepFile `yaml:"steps"`
}

type stepFile struct {
	Name        string   `yaml:"name"`
	Prompt      string   `yaml:"prompt"`
	DependsOn   []string `yaml:"depends_on"`
	Validators  []string `yaml:"validators"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	RetryBudget *int     `yaml:"retry_budget"`
	Timeout     string   `yaml:"timeout"`
	Optional    bool     `yaml:"optional"`
	Skip        bool     `yaml:"skip"`
}

// LoadChainFile reads a chain definition from a YAML or JSON file and
// validates it. Validators are supplied separately since functions cannot
// live in declaration files; pass nil when the chain declares none.
//
// Example file:
//
//	name: qa
//	cache_ttl: 10m
//	steps:
//	  - name: lookup
//	    prompt: "Find facts relevant to: {{query}}"
//	  - name: answer
//	    prompt: "Using {{lookup_result}}, answer: {{query}}"
//	    depends_on: [lookup]
//	    validators: [non_empty]
func LoadChainFile(path string, validators map[string]Validator) (*ChainDefinition, error) {
	var cf chainFile
	if err := config.DecodeFile(path, &cf); err != nil {
		return nil, fmt.Errorf("load chain file: %w", err)
	}
	return buildChain(cf, validators)
}

// ParseChainYAML builds a validated chain definition from YAML bytes.
func ParseChainYAML(data []byte, validators map[string]Validator) (*ChainDefinition, error) {
	var cf chainFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse chain yaml: %w", err)
	}
	return buildChain(cf, validators)
}

// buildChain converts the file shape into a validated definition. Steps
// omitting retry_budget get DefaultRetryBudget; an explicit 0 means zero
// retries. Temperature passes through as-is: omitted defers to the session
// or engine default, an explicit 0 requests deterministic sampling.
func buildChain(cf chainFile, validators map[string]Validator) (*ChainDefinition, error) {
	timeout, err := parseDuration(cf.Timeout, "timeout")
	if err != nil {
		return nil, err
	}
	ttl, err := parseDuration(cf.CacheTTL, "cache_ttl")
	if err != nil {
		return nil, err
	}

	def := &ChainDefinition{
		Name:         cf.Name,
		Description:  cf.Description,
		MaxSteps:     cf.MaxSteps,
		ChainTimeout: timeout,
		CacheTTL:     ttl,
		Template:     cf.Template,
		Validators:   validators,
		Steps:        make([]StepDefinition, 0, len(cf.Steps)),
	}

	for _, sf := range cf.Steps {
		stepTimeout, err := parseDuration(sf.Timeout, "step "+sf.Name+" timeout")
		if err != nil {
			return nil, err
		}
		budget := DefaultRetryBudget
		if sf.RetryBudget != nil {
			budget = *sf.RetryBudget
		}
		def.Steps = append(def.Steps, StepDefinition{
			Name:            sf.Name,
			PromptTemplate:  sf.Prompt,
			DependsOn:       sf.DependsOn,
			Validators:      sf.Validators,
			Temperature:     sf.Temperature,
			MaxOutputTokens: sf.MaxTokens,
			RetryBudget:     budget,
			Timeout:         stepTimeout,
			Optional:        sf.Optional,
			Skip:            sf.Skip,
		})
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

func parseDuration(s, field string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", field, err)
	}
	return d, nil
}
