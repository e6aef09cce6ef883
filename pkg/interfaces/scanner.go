package interfaces

import (
	"context"

	"github.com/promptsentry/promptscan/pkg/policy"
	"github.com/promptsentry/promptscan/pkg/scan"
)

// TextScanner represents a service that classifies free-form text against a
// content policy
type TextScanner interface {
	// ScanText runs the full content-safety pipeline on raw text
	ScanText(ctx context.Context, text string) (*scan.PromptScanResult, error)
}

// PromptScanner represents a service that checks structured chat prompts
type PromptScanner interface {
	// Scan checks the structure of a prompt without judging its content
	Scan(prompt *scan.Prompt) scan.ScanResult

	// ScanMessages validates structure and sweeps each message through the
	// local detection layer
	ScanMessages(prompt *scan.Prompt) scan.ScanResult
}

// PolicyEditor represents a scanner whose guardrails and categories can be
// changed at runtime
type PolicyEditor interface {
	// AddCustomGuardrail registers a guardrail definition under a name
	AddCustomGuardrail(name string, def *policy.GuardrailDefinition) error

	// RemoveCustomGuardrail removes a previously registered guardrail
	RemoveCustomGuardrail(name string) error

	// AddCustomCategory registers a content-policy category under an id
	AddCustomCategory(id string, def *policy.CategoryDefinition) error

	// RemoveCustomCategory removes a previously registered category
	RemoveCustomCategory(id string) error
}
