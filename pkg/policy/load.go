package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseGuardrails parses a caller-supplied YAML document mapping guardrail
// names to definitions. Every definition is validated and its patterns
// compiled; the first malformed entry aborts the whole load with a
// ConfigError.
func ParseGuardrails(data []byte) (map[string]*GuardrailDefinition, error) {
	var raw map[string]*GuardrailDefinition
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("failed to unmarshal guardrails: %w", err)}
	}

	for name, def := range raw {
		if def == nil {
			return nil, &ConfigError{Err: fmt.Errorf("guardrail %q: empty definition", name)}
		}
		def.Name = name
		if err := def.validate(); err != nil {
			return nil, &ConfigError{Err: err}
		}
	}
	return raw, nil
}

// ParseCategories parses a caller-supplied YAML document mapping category ids
// to definitions.
func ParseCategories(data []byte) (map[string]*CategoryDefinition, error) {
	var raw map[string]*CategoryDefinition
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("failed to unmarshal categories: %w", err)}
	}

	for id, def := range raw {
		if def == nil {
			return nil, &ConfigError{Err: fmt.Errorf("category %q: empty definition", id)}
		}
		def.ID = id
		if err := def.validate(); err != nil {
			return nil, &ConfigError{Err: err}
		}
	}
	return raw, nil
}

// LoadGuardrailsFromFile reads and parses a guardrail definition file.
func LoadGuardrailsFromFile(path string) (map[string]*GuardrailDefinition, error) {
	data, err := readDefinitionFile(path)
	if err != nil {
		return nil, err
	}
	return ParseGuardrails(data)
}

// LoadCategoriesFromFile reads and parses a category definition file.
func LoadCategoriesFromFile(path string) (map[string]*CategoryDefinition, error) {
	data, err := readDefinitionFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCategories(data)
}

func readDefinitionFile(path string) ([]byte, error) {
	if !isValidFilePath(path) {
		return nil, &ConfigError{Err: fmt.Errorf("invalid definition file path %q", path)}
	}
	data, err := os.ReadFile(path) // #nosec G304 - path is validated with isValidFilePath() before use
	if err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("failed to read definition file: %w", err)}
	}
	return data, nil
}

// isValidFilePath checks if a file path is valid and safe to read.
func isValidFilePath(path string) bool {
	if path == "" {
		return false
	}

	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return false
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return false
	}

	// Reject pseudo-filesystems that could leak host state.
	if strings.HasPrefix(absPath, "/proc") ||
		strings.HasPrefix(absPath, "/sys") ||
		strings.HasPrefix(absPath, "/dev") {
		return false
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return false
	}
	return fileInfo.Mode().IsRegular()
}
