package detect

import (
	"sort"

	"github.com/promptsentry/promptscan/pkg/policy"
	"github.com/promptsentry/promptscan/pkg/scan"
)

// InjectionDetector scans raw text against the active injection pattern set.
// It is a pure function of its inputs and the patterns it is given; no
// network calls, no state. Runtime is proportional to len(text) times the
// number of patterns; callers worried about pathological input sizes must
// cap text length upstream.
type InjectionDetector struct{}

// NewInjectionDetector creates a new InjectionDetector.
func NewInjectionDetector() *InjectionDetector {
	return &InjectionDetector{}
}

// InjectionMatch is one injection pattern that fired on the scanned text.
type InjectionMatch struct {
	Name    string
	Pattern *policy.PatternDefinition
}

// Detect evaluates every pattern against text and returns all matches, not
// just the first. Patterns flagged exempt for the system role are skipped
// when the text originates from a system message. Matches are returned in
// stable name order so downstream aggregation is deterministic.
func (d *InjectionDetector) Detect(text string, role scan.Role, patterns map[string]*policy.PatternDefinition) []InjectionMatch {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)

	var matches []InjectionMatch
	for _, name := range names {
		p := patterns[name]
		if p.ExemptSystemRole && role == scan.RoleSystem {
			continue
		}
		if p.Match(text) {
			matches = append(matches, InjectionMatch{Name: name, Pattern: p})
		}
	}
	return matches
}
