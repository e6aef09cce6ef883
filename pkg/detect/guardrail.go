package detect

import (
	"fmt"
	"sort"

	"github.com/promptsentry/promptscan/pkg/policy"
)

// Violation is a structured record of a guardrail breach.
type Violation struct {
	GuardrailName      string
	GuardrailType      policy.GuardrailType
	PatternDescription string
	Severity           policy.Severity
}

// EvalInput carries the caller-supplied context a guardrail sweep may need.
// TokenCount overrides the evaluator's own estimate when non-negative;
// OutputFormat, when set, is checked against format guardrails.
type EvalInput struct {
	TokenCount   int
	OutputFormat string
}

// Evaluator runs text through guardrail pattern sets and limit checks.
type Evaluator struct {
	counter TokenCounter
}

// NewEvaluator creates a guardrail evaluator. A nil counter falls back to
// the character heuristic.
func NewEvaluator(counter TokenCounter) *Evaluator {
	if counter == nil {
		counter = HeuristicTokenCounter{}
	}
	return &Evaluator{counter: counter}
}

// Evaluate checks text against every guardrail and returns all violations in
// stable guardrail-name order. Privacy and moderation guardrails match their
// patterns with no role exemption; limit guardrails compare the token count
// against their ceiling; format guardrails only fire when the input declares
// an output format outside the accepted set.
func (e *Evaluator) Evaluate(text string, guardrails map[string]*policy.GuardrailDefinition, in EvalInput) []Violation {
	names := make([]string, 0, len(guardrails))
	for name := range guardrails {
		names = append(names, name)
	}
	sort.Strings(names)

	var violations []Violation
	for _, name := range names {
		g := guardrails[name]
		switch g.Type {
		case policy.GuardrailPrivacy, policy.GuardrailModeration:
			for _, p := range g.Patterns {
				if p.Match(text) {
					violations = append(violations, Violation{
						GuardrailName:      name,
						GuardrailType:      g.Type,
						PatternDescription: p.Description,
						Severity:           patternSeverity(p, g),
					})
				}
			}
		case policy.GuardrailLimit:
			count := in.TokenCount
			if count < 0 {
				count = e.counter.CountTokens(text)
			}
			if count > g.MaxTokens {
				violations = append(violations, Violation{
					GuardrailName:      name,
					GuardrailType:      g.Type,
					PatternDescription: fmt.Sprintf("token count %d exceeds limit %d", count, g.MaxTokens),
					Severity:           guardrailSeverity(g),
				})
			}
		case policy.GuardrailFormat:
			if in.OutputFormat == "" {
				continue // informational without a declared format
			}
			if !containsFormat(g.Formats, in.OutputFormat) {
				violations = append(violations, Violation{
					GuardrailName:      name,
					GuardrailType:      g.Type,
					PatternDescription: fmt.Sprintf("output format %q is not in the accepted set", in.OutputFormat),
					Severity:           guardrailSeverity(g),
				})
			}
		}
	}
	return violations
}

func patternSeverity(p *policy.PatternDefinition, g *policy.GuardrailDefinition) policy.Severity {
	if p.Severity != "" {
		return p.Severity
	}
	return guardrailSeverity(g)
}

func guardrailSeverity(g *policy.GuardrailDefinition) policy.Severity {
	if g.Severity != "" {
		return g.Severity
	}
	return policy.SeverityMedium
}

func containsFormat(formats []string, format string) bool {
	for _, f := range formats {
		if f == format {
			return true
		}
	}
	return false
}
