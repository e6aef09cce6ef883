// Package classify defines the LLM-judge contract shared by every provider
// adapter: one evaluation prompt, one blocking round trip, one structured
// classification back.
package classify

import (
	"context"

	"github.com/promptsentry/promptscan/pkg/policy"
	"github.com/promptsentry/promptscan/pkg/scan"
)

// DetectedCategory is one violation category reported by the LLM judge.
type DetectedCategory struct {
	ID         string
	Name       string
	Confidence float64
	Reasoning  string
}

// Classification is the parsed outcome of one content-evaluation call.
// An empty Categories slice means the judge found no violation.
type Classification struct {
	Categories []DetectedCategory
	Reasoning  string
	TokenUsage scan.TokenUsage
}

// Classifier is the capability interface implemented once per provider.
// Classify builds the evaluation prompt from text and the active policy
// snapshot, performs a single blocking request, and parses the structured
// response. It never retries on its own unless the caller configured a retry
// executor on the concrete client, and it never maps a failure to a safe
// classification.
type Classifier interface {
	// Classify evaluates text against the snapshot's categories.
	Classify(ctx context.Context, text string, snapshot policy.Snapshot) (*Classification, error)

	// Name returns the provider identifier.
	Name() string
}
