package policy

import (
	"fmt"
	"regexp"
)

// Severity represents the risk tier attached to a pattern or guardrail match.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// GuardrailType identifies the kind of check a guardrail performs.
type GuardrailType string

const (
	GuardrailModeration GuardrailType = "moderation"
	GuardrailPrivacy    GuardrailType = "privacy"
	GuardrailFormat     GuardrailType = "format"
	GuardrailLimit      GuardrailType = "limit"
)

// PatternType identifies the matching mechanism of a pattern.
// Only regex patterns are supported.
type PatternType string

const (
	PatternRegex PatternType = "regex"
)

// PatternDefinition is a single regex rule with metadata. Definitions are
// immutable once loaded; detectors reference them, never copy them.
type PatternDefinition struct {
	Type        PatternType `yaml:"type" json:"type"`
	Value       string      `yaml:"value" json:"value"`
	Description string      `yaml:"description" json:"description"`
	Severity    Severity    `yaml:"severity,omitempty" json:"severity,omitempty"`

	// ExemptSystemRole suppresses the pattern when the scanned text comes
	// from a system-role message. System prompts legitimately contain
	// phrasing like "act as" that would otherwise trip role-manipulation
	// patterns.
	ExemptSystemRole bool `yaml:"exempt_system_role,omitempty" json:"exempt_system_role,omitempty"`

	re *regexp.Regexp
}

// compile builds the case-insensitive matcher for the pattern value.
func (p *PatternDefinition) compile() error {
	if p.Value == "" {
		return fmt.Errorf("pattern %q: missing regex value", p.Description)
	}
	re, err := regexp.Compile("(?i)" + p.Value)
	if err != nil {
		return fmt.Errorf("pattern %q: invalid regex %q: %w", p.Description, p.Value, err)
	}
	p.re = re
	return nil
}

// Match reports whether text matches the compiled pattern. A definition that
// was never loaded through the registry has no compiled regex and never
// matches.
func (p *PatternDefinition) Match(text string) bool {
	if p.re == nil {
		return false
	}
	return p.re.MatchString(text)
}

// GuardrailDefinition is a named compliance rule. Pattern-based guardrails
// (privacy, moderation) carry regex patterns; limit guardrails carry a token
// ceiling; format guardrails carry a set of acceptable output formats.
type GuardrailDefinition struct {
	Name        string               `yaml:"-" json:"-"`
	Type        GuardrailType        `yaml:"type" json:"type"`
	Description string               `yaml:"description" json:"description"`
	Patterns    []*PatternDefinition `yaml:"patterns,omitempty" json:"patterns,omitempty"`
	Threshold   float64              `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	MaxTokens   int                  `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
	Formats     []string             `yaml:"formats,omitempty" json:"formats,omitempty"`
	Severity    Severity             `yaml:"severity,omitempty" json:"severity,omitempty"`
}

// validate checks structural constraints and compiles every pattern.
func (g *GuardrailDefinition) validate() error {
	switch g.Type {
	case GuardrailModeration, GuardrailPrivacy, GuardrailFormat, GuardrailLimit:
	default:
		return fmt.Errorf("guardrail %q: unknown type %q", g.Name, g.Type)
	}
	if g.Type == GuardrailLimit && g.MaxTokens <= 0 {
		return fmt.Errorf("guardrail %q: limit guardrail requires max_tokens > 0", g.Name)
	}
	for _, p := range g.Patterns {
		if p.Type != PatternRegex {
			return fmt.Errorf("guardrail %q: unknown pattern type %q", g.Name, p.Type)
		}
		if err := p.compile(); err != nil {
			return fmt.Errorf("guardrail %q: %w", g.Name, err)
		}
	}
	return nil
}

// CategoryDefinition is a class of unsafe content the LLM judge is asked to
// watch for. The description and examples are embedded verbatim in the
// evaluation prompt.
type CategoryDefinition struct {
	ID          string   `yaml:"-" json:"-"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Examples    []string `yaml:"examples,omitempty" json:"examples,omitempty"`
}

func (c *CategoryDefinition) validate() error {
	if c.Name == "" {
		return fmt.Errorf("category %q: missing name", c.ID)
	}
	if c.Description == "" {
		return fmt.Errorf("category %q: missing description", c.ID)
	}
	return nil
}
