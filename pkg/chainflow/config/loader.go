package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeFile reads path and decodes its contents into out, auto-detecting
// the format by extension. Supported extensions: .yaml, .yml, .json.
//
// JSON documents are decoded through the YAML parser (JSON is a YAML
// subset), so a single set of yaml struct tags on out covers both formats.
// This is the shared path for configuration maps and for chain-definition
// files.
func DecodeFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s: %w", strings.TrimPrefix(ext, "."), err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromFile loads a configuration map from a file via DecodeFile.
func FromFile(path string) (Config, error) {
	var m map[string]any
	if err := DecodeFile(path, &m); err != nil {
		return Config{}, err
	}
	return New(m), nil
}

// FromYAML parses YAML data into a Config.
func FromYAML(data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return New(m), nil
}

// FromJSON parses JSON data into a Config.
func FromJSON(data []byte) (Config, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return New(m), nil
}
