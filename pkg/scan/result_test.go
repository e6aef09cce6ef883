package scan

import (
	"encoding/json"
	"testing"

	"github.com/promptsentry/promptscan/pkg/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptScanResultRoundTrip(t *testing.T) {
	original := &PromptScanResult{
		IsSafe: false,
		Category: &PromptCategory{
			ID:              "malware",
			Name:            "Malware",
			Confidence:      0.92,
			MatchedPatterns: []string{"Inline API key assignment"},
		},
		AllCategories: []PromptCategory{
			{ID: "malware", Name: "Malware", Confidence: 0.92},
			{ID: "fraud", Name: "Fraud", Confidence: 0.41},
		},
		Severity:   &CategorySeverity{Level: LevelCritical, Score: 0.92},
		Reasoning:  "The content requests working exploit code.",
		TokenUsage: TokenUsage{PromptTokens: 120, CompletionTokens: 40, TotalTokens: 160},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded PromptScanResult
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.IsSafe, decoded.IsSafe)
	assert.Equal(t, original.Category.ID, decoded.Category.ID)
	assert.Equal(t, original.Severity.Level, decoded.Severity.Level)
	assert.Equal(t, original.Reasoning, decoded.Reasoning)
	assert.Equal(t, original.TokenUsage, decoded.TokenUsage)
	assert.Len(t, decoded.AllCategories, 2)
}

func TestPromptScanResultString(t *testing.T) {
	safe := &PromptScanResult{IsSafe: true, TokenUsage: TokenUsage{TotalTokens: 42}}
	assert.Equal(t, "SAFE | Token usage: 42", safe.String())

	unsafe := &PromptScanResult{
		IsSafe:   false,
		Category: &PromptCategory{ID: "fraud", Name: "Fraud", Confidence: 0.8},
		AllCategories: []PromptCategory{
			{ID: "fraud", Name: "Fraud", Confidence: 0.8},
			{ID: "economic_harm", Name: "Economic Harm", Confidence: 0.5},
		},
		Reasoning: "Phishing template request.",
	}
	s := unsafe.String()
	assert.Contains(t, s, "UNSAFE")
	assert.Contains(t, s, "Category: Fraud and 1 more")
	assert.Contains(t, s, "Phishing template request.")
}

func TestScanResultString(t *testing.T) {
	r := &ScanResult{IsSafe: false, Issues: []Issue{
		{Type: "role_order", Description: "consecutive user messages", Severity: "medium"},
	}}
	assert.Contains(t, r.String(), "role_order: consecutive user messages")

	assert.Equal(t, "SAFE", (&ScanResult{IsSafe: true}).String())
}

func TestPromptTurns(t *testing.T) {
	p := &Prompt{Messages: []Message{{Role: RoleUser, Content: "hi"}}}
	assert.Len(t, p.Turns(), 1)

	legacy := &Prompt{Legacy: "\n\nHuman: hi\n\nAssistant:"}
	turns := legacy.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, RoleUser, turns[0].Role)
}

func TestLevelFromSeverity(t *testing.T) {
	assert.Equal(t, LevelCritical, LevelFromSeverity(policy.SeverityCritical))
	assert.Equal(t, LevelHigh, LevelFromSeverity(policy.SeverityHigh))
	assert.Equal(t, LevelMedium, LevelFromSeverity(policy.SeverityMedium))
	assert.Equal(t, LevelLow, LevelFromSeverity(policy.SeverityLow))
	assert.Equal(t, LevelLow, LevelFromSeverity(policy.Severity("")))
}
