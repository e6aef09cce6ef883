package scan

import (
	"fmt"
	"strings"

	"github.com/promptsentry/promptscan/pkg/policy"
)

// SeverityLevel is the coarse risk tier of a content-safety result.
type SeverityLevel string

const (
	LevelLow      SeverityLevel = "LOW"
	LevelMedium   SeverityLevel = "MEDIUM"
	LevelHigh     SeverityLevel = "HIGH"
	LevelCritical SeverityLevel = "CRITICAL"
)

// LevelFromSeverity maps a pattern/guardrail severity onto a result level.
func LevelFromSeverity(s policy.Severity) SeverityLevel {
	switch s {
	case policy.SeverityCritical:
		return LevelCritical
	case policy.SeverityHigh:
		return LevelHigh
	case policy.SeverityMedium:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Issue is a single structural or local-detection finding on a prompt.
type Issue struct {
	Type         string `json:"type"`
	Description  string `json:"description"`
	Severity     string `json:"severity"`
	MessageIndex int    `json:"message_index,omitempty"`
}

// ScanResult is the outcome of structure validation (and of the local
// per-message sweep). It never reflects LLM judgment.
type ScanResult struct {
	IsSafe bool    `json:"is_safe"`
	Issues []Issue `json:"issues"`
}

func (r *ScanResult) String() string {
	if r.IsSafe {
		return "SAFE"
	}
	descs := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		descs[i] = fmt.Sprintf("%s: %s", issue.Type, issue.Description)
	}
	return "UNSAFE | " + strings.Join(descs, "; ")
}

// PromptCategory is a detected violation instance. Transient, created fresh
// per scan.
type PromptCategory struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Confidence      float64  `json:"confidence"`
	MatchedPatterns []string `json:"matched_patterns,omitempty"`
}

// CategorySeverity is the risk tier assigned to the top detected category.
type CategorySeverity struct {
	Level SeverityLevel `json:"level"`
	Score float64       `json:"score,omitempty"`
}

// TokenUsage is the provider's token accounting for one evaluation call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// PromptScanResult is the unified content-safety verdict for one scan.
//
// Invariants: IsSafe is true exactly when AllCategories is empty; Category is
// AllCategories[0] when non-empty; AllCategories is sorted non-increasing by
// confidence with ties kept in detection order (LLM-reported before locally
// detected).
type PromptScanResult struct {
	IsSafe        bool              `json:"is_safe"`
	Category      *PromptCategory   `json:"category,omitempty"`
	AllCategories []PromptCategory  `json:"all_categories"`
	Severity      *CategorySeverity `json:"severity,omitempty"`
	Reasoning     string            `json:"reasoning"`
	TokenUsage    TokenUsage        `json:"token_usage"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
}

func (r *PromptScanResult) String() string {
	if r.IsSafe {
		return fmt.Sprintf("SAFE | Token usage: %d", r.TokenUsage.TotalTokens)
	}
	categoryInfo := "Category: unknown"
	if r.Category != nil {
		categoryInfo = "Category: " + r.Category.Name
	}
	if len(r.AllCategories) > 1 {
		categoryInfo += fmt.Sprintf(" and %d more", len(r.AllCategories)-1)
	}
	return fmt.Sprintf("UNSAFE | %s | Reasoning: %s | Token usage: %d",
		categoryInfo, r.Reasoning, r.TokenUsage.TotalTokens)
}
