package policy

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when removing a guardrail or category that is not
// registered. Removal of an unknown key is an error, not a no-op, so callers
// notice typos in policy management code.
var ErrNotFound = errors.New("definition not found")

// ConfigError reports a malformed definition. It is raised eagerly at load
// or add time, never deferred to scan time.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("policy configuration: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Snapshot is a read-only view of the active definition sets. A scan in
// flight works from a snapshot and is unaffected by concurrent mutation of
// the registry. The referenced definitions are immutable after load.
type Snapshot struct {
	Guardrails        map[string]*GuardrailDefinition
	Categories        map[string]*CategoryDefinition
	InjectionPatterns map[string]*PatternDefinition
}

// Registry owns the mutable guardrail and category sets of a scanner.
// Reads and writes may happen from concurrent goroutines.
type Registry struct {
	mu         sync.RWMutex
	guardrails map[string]*GuardrailDefinition
	categories map[string]*CategoryDefinition
	injections map[string]*PatternDefinition
}

// DefaultRegistry builds a registry seeded with the built-in guardrails,
// injection patterns and content-policy categories. Every regex is compiled
// here; a malformed built-in surfaces as a ConfigError at construction, not
// at first scan.
func DefaultRegistry() (*Registry, error) {
	r := &Registry{
		guardrails: make(map[string]*GuardrailDefinition),
		categories: make(map[string]*CategoryDefinition),
		injections: make(map[string]*PatternDefinition),
	}

	for name, g := range defaultGuardrails() {
		g.Name = name
		if err := g.validate(); err != nil {
			return nil, &ConfigError{Err: err}
		}
		r.guardrails[name] = g
	}
	for id, c := range defaultCategories() {
		c.ID = id
		if err := c.validate(); err != nil {
			return nil, &ConfigError{Err: err}
		}
		r.categories[id] = c
	}
	for name, p := range defaultInjectionPatterns() {
		if err := p.compile(); err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("injection pattern %q: %w", name, err)}
		}
		r.injections[name] = p
	}
	return r, nil
}

// AddGuardrail validates, compiles and registers a guardrail under name,
// replacing any existing definition with that name.
func (r *Registry) AddGuardrail(name string, def *GuardrailDefinition) error {
	if name == "" {
		return &ConfigError{Err: errors.New("guardrail name cannot be empty")}
	}
	if def == nil {
		return &ConfigError{Err: fmt.Errorf("guardrail %q: nil definition", name)}
	}
	def.Name = name
	if err := def.validate(); err != nil {
		return &ConfigError{Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.guardrails[name] = def
	return nil
}

// RemoveGuardrail removes the guardrail registered under name.
func (r *Registry) RemoveGuardrail(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.guardrails[name]; !ok {
		return fmt.Errorf("guardrail %q: %w", name, ErrNotFound)
	}
	delete(r.guardrails, name)
	return nil
}

// AddCategory validates and registers a content-policy category under id,
// replacing any existing definition with that id.
func (r *Registry) AddCategory(id string, def *CategoryDefinition) error {
	if id == "" {
		return &ConfigError{Err: errors.New("category id cannot be empty")}
	}
	if def == nil {
		return &ConfigError{Err: fmt.Errorf("category %q: nil definition", id)}
	}
	def.ID = id
	if err := def.validate(); err != nil {
		return &ConfigError{Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[id] = def
	return nil
}

// RemoveCategory removes the category registered under id.
func (r *Registry) RemoveCategory(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return fmt.Errorf("category %q: %w", id, ErrNotFound)
	}
	delete(r.categories, id)
	return nil
}

// Snapshot returns a point-in-time copy of the definition maps. The maps are
// fresh on every call; the definitions themselves are shared and immutable.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Snapshot{
		Guardrails:        make(map[string]*GuardrailDefinition, len(r.guardrails)),
		Categories:        make(map[string]*CategoryDefinition, len(r.categories)),
		InjectionPatterns: make(map[string]*PatternDefinition, len(r.injections)),
	}
	for k, v := range r.guardrails {
		s.Guardrails[k] = v
	}
	for k, v := range r.categories {
		s.Categories[k] = v
	}
	for k, v := range r.injections {
		s.InjectionPatterns[k] = v
	}
	return s
}
