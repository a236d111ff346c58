package chainflow

import (
	"strings"

	"github.com/chainflow/chainflow/pkg/chainflow/registry"
)

// Chains is the explicit chain registry: a map from symbolic chain name to
// its validated definition, built once at process start and treated as
// immutable configuration thereafter. Registration is the only place a
// definition is validated; runs trust what the registry holds.
type Chains struct {
	reg *registry.Registry[string, *ChainDefinition]
}

// NewChains creates an empty chain registry.
func NewChains() *Chains {
	return &Chains{reg: registry.New[string, *ChainDefinition]()}
}

// Register validates def and adds it under its name, replacing any previous
// registration. Returns a ConfigError when validation fails.
func (c *Chains) Register(def *ChainDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	c.reg.Register(def.Name, def)
	return nil
}

// MustRegister is Register that panics on validation failure. For process
// start-up wiring where a bad definition should abort.
func (c *Chains) MustRegister(def *ChainDefinition) {
	if err := c.Register(def); err != nil {
		panic(err)
	}
}

// Get returns the named definition.
func (c *Chains) Get(name string) (*ChainDefinition, bool) {
	return c.reg.Get(name)
}

// Has reports whether a chain is registered under name.
func (c *Chains) Has(name string) bool {
	return c.reg.Has(name)
}

// Names returns the registered chain names.
func (c *Chains) Names() []string {
	return c.reg.Keys()
}

// Len returns the number of registered chains.
func (c *Chains) Len() int {
	return c.reg.Len()
}

// Selector picks a chain for a free-text query. The engine consumes the
// interface; how the choice is made (keyword matching, a classifier, a
// fixed route) is the caller's concern.
type Selector interface {
	// Select returns the name of the chain to run for query. The returned
	// name must be registered.
	Select(query string, contextMap map[string]any) string
}

// KeywordSelector is a minimal Selector: a keyword found in the query
// (case-insensitive substring match) picks its chain, otherwise Fallback
// wins. When several keywords match, which one wins is unspecified, so keep
// keyword sets disjoint.
type KeywordSelector struct {
	// Keywords maps a lowercase keyword to a chain name.
	Keywords map[string]string

	// Fallback is returned when no keyword matches.
	Fallback string
}

// Select implements Selector.
func (s *KeywordSelector) Select(query string, _ map[string]any) string {
	q := strings.ToLower(query)
	for kw, chain := range s.Keywords {
		if strings.Contains(q, kw) {
			return chain
		}
	}
	return s.Fallback
}
