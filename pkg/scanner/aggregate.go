package scanner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/promptsentry/promptscan/pkg/classify"
	"github.com/promptsentry/promptscan/pkg/detect"
	"github.com/promptsentry/promptscan/pkg/policy"
	"github.com/promptsentry/promptscan/pkg/scan"
)

// localFinding is one deterministic local detection, normalized from either
// an injection match or a guardrail violation. Local matches carry maximal
// confidence: a regex either matched or it did not.
type localFinding struct {
	category scan.PromptCategory
	severity policy.Severity
}

func findingFromInjection(m detect.InjectionMatch) localFinding {
	return localFinding{
		category: scan.PromptCategory{
			ID:              m.Name,
			Name:            m.Pattern.Description,
			Confidence:      1.0,
			MatchedPatterns: []string{m.Pattern.Description},
		},
		severity: m.Pattern.Severity,
	}
}

func findingFromViolation(v detect.Violation) localFinding {
	return localFinding{
		category: scan.PromptCategory{
			ID:              v.GuardrailName,
			Name:            v.PatternDescription,
			Confidence:      1.0,
			MatchedPatterns: []string{v.PatternDescription},
		},
		severity: v.Severity,
	}
}

type rankedCategory struct {
	category      scan.PromptCategory
	localSeverity policy.Severity // empty for LLM-sourced categories
}

// aggregate merges LLM-reported categories with local findings into one
// ranked PromptScanResult. LLM categories come first so nuanced judgment
// outranks brute-force matches when confidences tie; the sort is stable on
// purpose.
func aggregate(cls *classify.Classification, locals []localFinding, sevPolicy SeverityPolicy) *scan.PromptScanResult {
	var ranked []rankedCategory
	for _, dc := range cls.Categories {
		ranked = append(ranked, rankedCategory{
			category: scan.PromptCategory{
				ID:         dc.ID,
				Name:       dc.Name,
				Confidence: dc.Confidence,
			},
		})
	}
	for _, lf := range locals {
		ranked = append(ranked, rankedCategory{category: lf.category, localSeverity: lf.severity})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].category.Confidence > ranked[j].category.Confidence
	})

	result := &scan.PromptScanResult{
		IsSafe:     len(ranked) == 0,
		Reasoning:  cls.Reasoning,
		TokenUsage: cls.TokenUsage,
	}
	if result.IsSafe {
		return result
	}

	result.AllCategories = make([]scan.PromptCategory, len(ranked))
	for i, rc := range ranked {
		result.AllCategories[i] = rc.category
	}
	result.Category = &result.AllCategories[0]
	result.Severity = sevPolicy.Assign(ranked[0].category, ranked[0].localSeverity)

	// When the judge saw nothing and only local patterns fired, there is no
	// LLM reasoning to quote; synthesize one from the matched patterns.
	if len(cls.Categories) == 0 {
		descs := make([]string, len(locals))
		for i, lf := range locals {
			descs[i] = lf.category.Name
		}
		result.Reasoning = "Local patterns matched: " + strings.Join(descs, "; ")
	}

	if len(result.AllCategories) > 1 {
		var b strings.Builder
		b.WriteString("Additional categories: ")
		for i, cat := range result.AllCategories[1:] {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s (confidence: %.2f)", cat.Name, cat.Confidence)
		}
		result.Reasoning = result.Reasoning + "\n\n" + b.String()
	}

	return result
}
