package scanner

import (
	"github.com/promptsentry/promptscan/pkg/policy"
	"github.com/promptsentry/promptscan/pkg/scan"
)

// SeverityPolicy is the policy data behind severity assignment: the
// confidence cutoffs and the category ids that always escalate to CRITICAL.
// It is configuration, versioned explicitly, and swappable at scanner
// construction.
type SeverityPolicy struct {
	Version string

	// CriticalCategories always map to CRITICAL regardless of the reported
	// confidence.
	CriticalCategories []string

	// Confidence cutoffs, checked highest first.
	CriticalThreshold float64
	HighThreshold     float64
	MediumThreshold   float64
}

// DefaultSeverityPolicy returns the built-in severity policy.
func DefaultSeverityPolicy() SeverityPolicy {
	return SeverityPolicy{
		Version:            "2025.1",
		CriticalCategories: []string{"illegal_activity", "malware", "physical_harm", "self_harm"},
		CriticalThreshold:  0.9,
		HighThreshold:      0.7,
		MediumThreshold:    0.4,
	}
}

// Assign derives the severity of the top detected category. Precedence:
// explicit pattern/guardrail severity for locally sourced detections, then
// the CRITICAL-override table by category id, then the confidence cutoffs.
func (p SeverityPolicy) Assign(top scan.PromptCategory, localSeverity policy.Severity) *scan.CategorySeverity {
	if localSeverity != "" {
		return &scan.CategorySeverity{
			Level: scan.LevelFromSeverity(localSeverity),
			Score: top.Confidence,
		}
	}

	for _, id := range p.CriticalCategories {
		if id == top.ID {
			return &scan.CategorySeverity{Level: scan.LevelCritical, Score: top.Confidence}
		}
	}

	level := scan.LevelLow
	switch {
	case top.Confidence >= p.CriticalThreshold:
		level = scan.LevelCritical
	case top.Confidence >= p.HighThreshold:
		level = scan.LevelHigh
	case top.Confidence >= p.MediumThreshold:
		level = scan.LevelMedium
	}
	return &scan.CategorySeverity{Level: level, Score: top.Confidence}
}
