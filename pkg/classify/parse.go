package classify

import (
	"encoding/json"
	"fmt"
	"strings"
)

type rawCategory struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type rawEvaluation struct {
	IsSafe     *bool         `json:"is_safe"`
	Categories []rawCategory `json:"categories"`
	Reasoning  string        `json:"reasoning"`
}

// ParseEvaluation decodes the judge's JSON response into a Classification.
// Parsing is tolerant of missing optional fields, an explicit safe verdict
// with zero categories, and multiple categories in one response. A body that
// is not valid JSON is a provider failure, never a safe result.
func ParseEvaluation(provider, body string) (*Classification, error) {
	var raw rawEvaluation
	if err := json.Unmarshal([]byte(stripCodeFence(body)), &raw); err != nil {
		return nil, &ProviderError{
			Provider: provider,
			Stage:    "parse",
			Err:      fmt.Errorf("malformed evaluation response: %w", err),
		}
	}

	c := &Classification{Reasoning: raw.Reasoning}

	// An explicit safe verdict wins over a stray category entry; some models
	// list the categories they considered even when judging content safe.
	if raw.IsSafe != nil && *raw.IsSafe {
		return c, nil
	}

	for _, rc := range raw.Categories {
		id := rc.ID
		if id == "" {
			id = "unknown"
		}
		name := rc.Name
		if name == "" {
			name = "Unspecified"
		}
		confidence := rc.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
		c.Categories = append(c.Categories, DetectedCategory{
			ID:         id,
			Name:       name,
			Confidence: confidence,
			Reasoning:  rc.Reasoning,
		})
	}
	return c, nil
}

// stripCodeFence removes a surrounding markdown code fence. Models asked for
// JSON sometimes wrap the object in ```json blocks.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
