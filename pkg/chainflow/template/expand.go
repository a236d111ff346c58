package template

import (
	"fmt"
	"regexp"
	"strings"
)

// tokenPattern matches {{varname}} - varname can contain alphanumeric and
// underscore. Whitespace inside the braces is not allowed, so literal
// `{{ ... }}` prose in a prompt is left untouched.
var tokenPattern = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)

// Expander substitutes {{var}} tokens in prompt templates.
//
// Substitution is a single literal pass: values are never re-scanned for
// tokens, so a value that itself contains {{...}} cannot trigger recursive
// expansion. Create with NewExpander() and configure with Option functions.
// Expander is safe for concurrent use after construction.
type Expander struct {
	missingAction MissingAction
}

// NewExpander creates a new Expander with the given options.
//
// Default configuration:
//   - MissingAction: MissingKeep (keep unmatched tokens as-is)
//
// Example:
//
//	exp := NewExpander(WithMissingAction(MissingError))
func NewExpander(opts ...Option) *Expander {
	e := &Expander{
		missingAction: MissingKeep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand substitutes {{var}} tokens in s using the provided vars.
//
// Returns the expanded string and any error encountered. Errors are only
// returned when MissingAction is MissingError and a variable is not found.
// A template with no tokens is returned unchanged.
//
// Example:
//
//	exp := NewExpander()
//	result, err := exp.Expand("Answer {{query}}", map[string]any{"query": "why?"})
//	// result: "Answer why?"
func (e *Expander) Expand(s string, vars map[string]any) (string, error) {
	if s == "" {
		return "", nil
	}

	var missingVars []string

	result := tokenPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from {{name}}.
		varName := match[2 : len(match)-2]
		if val, ok := vars[varName]; ok {
			return fmt.Sprintf("%v", val)
		}
		switch e.missingAction {
		case MissingEmpty:
			return ""
		case MissingError:
			missingVars = append(missingVars, varName)
			return match // Keep for now, will return error.
		default: // MissingKeep
			return match
		}
	})

	if len(missingVars) > 0 {
		return result, &UndefinedVariableError{Names: missingVars}
	}

	return result, nil
}

// MustExpand substitutes tokens in s and panics on error.
//
// Use this when you're certain all variables are present or when using
// MissingKeep/MissingEmpty which never return errors.
func (e *Expander) MustExpand(s string, vars map[string]any) string {
	result, err := e.Expand(s, vars)
	if err != nil {
		panic(fmt.Sprintf("template: %v", err))
	}
	return result
}

// Vars returns the names of all {{var}} tokens in s, in order of first
// appearance. Useful for validating a prompt template against the set of
// substitutions a step will have available.
func Vars(s string) []string {
	matches := tokenPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// UndefinedVariableError is returned when MissingError is set and
// one or more variables are not found.
type UndefinedVariableError struct {
	// Names is the list of undefined variable names.
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}

// defaultExpander is the package-level expander with default settings.
var defaultExpander = NewExpander()

// Expand substitutes {{var}} tokens in s using the default expander.
//
// Uses MissingKeep behavior (unmatched tokens stay as-is).
//
// Example:
//
//	result := template.Expand("Hello {{name}}", map[string]any{"name": "World"})
//	// result: "Hello World"
func Expand(s string, vars map[string]any) string {
	// Default expander never returns errors (MissingKeep).
	result, _ := defaultExpander.Expand(s, vars)
	return result
}
