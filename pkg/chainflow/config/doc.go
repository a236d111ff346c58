// Package config provides typed access to loosely-structured configuration maps.
//
// Two surfaces in the engine carry map[string]any data: the per-run context
// map supplied by callers (provider, model, user id, per-run overrides) and
// configuration files loaded at process start. Config wraps both with
// accessors that never panic and fall back to caller-supplied defaults:
//
//	cfg := config.New(values)
//	provider := cfg.String("provider", "")
//	timeout := cfg.Duration("timeout", 30*time.Second)
//
// Files load via FromFile (format detected by extension), FromYAML, or
// FromJSON:
//
//	cfg, err := config.FromFile("chains.yaml")
//
// Numeric values pass through the conversions the YAML and JSON decoders
// produce (float64 for JSON numbers, int for YAML integers), so Int and
// Duration accept all of them.
package config
