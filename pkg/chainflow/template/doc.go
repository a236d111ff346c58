// Package template provides {{var}} token substitution for prompt templates.
//
// Step prompt templates use double-brace tokens that the executor fills from
// accumulated session state:
//
//	"Given the question {{query}}, refine this draft:\n{{previousResult}}"
//
// Substitution is literal, single-pass string replacement. A substituted
// value is never re-scanned, so context values containing {{...}} cannot
// inject further expansion or loop.
//
// # Basic Usage
//
//	result := template.Expand("Hello {{name}}", map[string]any{"name": "World"})
//	// "Hello World"
//
// # Missing Variables
//
// By default, unmatched tokens are kept as-is (MissingKeep). Configure an
// Expander for stricter behavior:
//
//	exp := template.NewExpander(template.WithMissingAction(template.MissingError))
//	_, err := exp.Expand("{{absent}}", nil)
//	// err: "undefined variable: absent"
//
// MissingEmpty replaces unmatched tokens with the empty string. The reserved
// step substitutions do not depend on it: the executor always populates
// {{query}}, {{previousResult}}, and {{previousResults}} in its variable map
// (a chain's first step sees {{previousResult}} as ""), so those tokens are
// never missing under any policy.
//
// # Introspection
//
// Vars returns the token names a template references, in order of first
// appearance:
//
//	template.Vars("{{query}} then {{a_result}}") // ["query", "a_result"]
package template
