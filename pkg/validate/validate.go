// Package validate checks that chat-style prompts are structurally
// well-formed for a target provider. Validation is purely structural: it
// never invokes the LLM and never judges content.
package validate

import (
	"fmt"

	"github.com/promptsentry/promptscan/pkg/detect"
	"github.com/promptsentry/promptscan/pkg/scan"
)

const severityMedium = "medium"

// Issue types reported by the validator.
const (
	IssueEmptyPrompt  = "empty_prompt"
	IssueInvalidRole  = "invalid_role"
	IssueEmptyContent = "empty_content"
	IssueRoleOrder    = "role_order"
	IssuePromptLength = "prompt_length"
)

// Rules carries provider-specific structural constraints, injected at
// scanner construction.
type Rules struct {
	// AllowedRoles is the set of roles the provider accepts.
	AllowedRoles []scan.Role

	// AllowConsecutiveSameRole permits two adjacent messages with the same
	// role. OpenAI tolerates this; Anthropic rejects it.
	AllowConsecutiveSameRole bool

	// MaxApproxTokens caps the approximate token count of the whole prompt.
	// Zero disables the check.
	MaxApproxTokens int
}

// OpenAIRules returns the structural constraints of the OpenAI chat API.
func OpenAIRules() Rules {
	return Rules{
		AllowedRoles:             []scan.Role{scan.RoleSystem, scan.RoleUser, scan.RoleAssistant},
		AllowConsecutiveSameRole: true,
		MaxApproxTokens:          128000,
	}
}

// AnthropicRules returns the structural constraints of the Anthropic
// messages API.
func AnthropicRules() Rules {
	return Rules{
		AllowedRoles:             []scan.Role{scan.RoleSystem, scan.RoleUser, scan.RoleAssistant},
		AllowConsecutiveSameRole: false,
		MaxApproxTokens:          200000,
	}
}

// Validator checks prompt structure against a set of provider rules.
type Validator struct {
	rules   Rules
	counter detect.TokenCounter
}

// New creates a validator. A nil counter falls back to the character
// heuristic.
func New(rules Rules, counter detect.TokenCounter) *Validator {
	if counter == nil {
		counter = detect.HeuristicTokenCounter{}
	}
	return &Validator{rules: rules, counter: counter}
}

// Validate checks every structural rule and collects all failures; it does
// not short-circuit on the first issue. IsSafe is true exactly when no issue
// was found.
func (v *Validator) Validate(prompt *scan.Prompt) scan.ScanResult {
	var issues []scan.Issue

	turns := prompt.Turns()
	if len(turns) == 0 {
		issues = append(issues, scan.Issue{
			Type:        IssueEmptyPrompt,
			Description: "at least one message is required",
			Severity:    severityMedium,
		})
		return scan.ScanResult{IsSafe: false, Issues: issues}
	}

	total := 0
	var prevRole scan.Role
	for i, msg := range turns {
		if msg.Role == scan.RoleUnspecified {
			issues = append(issues, scan.Issue{
				Type:         IssueInvalidRole,
				Description:  fmt.Sprintf("message at index %d has no role", i),
				Severity:     severityMedium,
				MessageIndex: i,
			})
		} else if !v.roleAllowed(msg.Role) {
			issues = append(issues, scan.Issue{
				Type:         IssueInvalidRole,
				Description:  fmt.Sprintf("message at index %d has invalid role %q", i, msg.Role),
				Severity:     severityMedium,
				MessageIndex: i,
			})
		}

		if msg.Content == "" {
			issues = append(issues, scan.Issue{
				Type:         IssueEmptyContent,
				Description:  fmt.Sprintf("message at index %d has empty content", i),
				Severity:     severityMedium,
				MessageIndex: i,
			})
		}

		if i > 0 && !v.rules.AllowConsecutiveSameRole && msg.Role == prevRole && msg.Role != scan.RoleUnspecified {
			issues = append(issues, scan.Issue{
				Type:         IssueRoleOrder,
				Description:  fmt.Sprintf("messages at index %d and %d share role %q", i-1, i, msg.Role),
				Severity:     severityMedium,
				MessageIndex: i,
			})
		}
		prevRole = msg.Role

		total += v.counter.CountTokens(msg.Content)
	}

	if v.rules.MaxApproxTokens > 0 && total > v.rules.MaxApproxTokens {
		issues = append(issues, scan.Issue{
			Type:        IssuePromptLength,
			Description: fmt.Sprintf("prompt is approximately %d tokens, over the %d ceiling", total, v.rules.MaxApproxTokens),
			Severity:    severityMedium,
		})
	}

	return scan.ScanResult{IsSafe: len(issues) == 0, Issues: issues}
}

func (v *Validator) roleAllowed(role scan.Role) bool {
	for _, r := range v.rules.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}
