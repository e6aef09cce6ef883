// Package guard wraps completion-producing callables with content scanning,
// blocking a call before unsafe input reaches the model and, for
// SafeCompletion, before unsafe output reaches the caller.
package guard

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/promptsentry/promptscan/pkg/interfaces"
	"github.com/promptsentry/promptscan/pkg/scan"
)

// Callable is any context-aware function the guard layer can wrap.
type Callable[In, Out any] func(ctx context.Context, in In) (Out, error)

// Extractor pulls the scannable string leaves out of a callable's input. A
// nil extractor falls back to CollectStrings.
type Extractor[T any] func(T) []string

// UnsafeContentError is returned by a wrapped callable when a scan blocked
// the call. Result aggregates the classifications of every unsafe leaf, with
// categories re-sorted non-increasing by confidence.
type UnsafeContentError struct {
	Direction string // "input" or "output"
	Result    *scan.PromptScanResult
}

func (e *UnsafeContentError) Error() string {
	category := "unspecified"
	if e.Result != nil && e.Result.Category != nil {
		category = e.Result.Category.ID
	}
	return fmt.Sprintf("unsafe %s content blocked (category: %s)", e.Direction, category)
}

// Scan wraps fn so every string leaf of its input is scanned before fn runs.
// All leaves are scanned even when an early one is unsafe; the violations
// are merged into one *UnsafeContentError. A scanner failure propagates
// as-is and fn never runs.
func Scan[In, Out any](scanner interfaces.TextScanner, extract Extractor[In], fn Callable[In, Out]) Callable[In, Out] {
	return func(ctx context.Context, in In) (Out, error) {
		var zero Out
		if err := scanAll(ctx, scanner, extractStrings(extract, in), "input"); err != nil {
			return zero, err
		}
		return fn(ctx, in)
	}
}

// SafeCompletion wraps fn like Scan and additionally walks every string
// leaf of the value fn returns, so an unsafe model response is blocked the
// same way unsafe input is.
func SafeCompletion[In, Out any](scanner interfaces.TextScanner, extract Extractor[In], fn Callable[In, Out]) Callable[In, Out] {
	return func(ctx context.Context, in In) (Out, error) {
		var zero Out
		if err := scanAll(ctx, scanner, extractStrings(extract, in), "input"); err != nil {
			return zero, err
		}
		out, err := fn(ctx, in)
		if err != nil {
			return zero, err
		}
		if err := scanAll(ctx, scanner, CollectStrings(out), "output"); err != nil {
			return zero, err
		}
		return out, nil
	}
}

func extractStrings[T any](extract Extractor[T], in T) []string {
	if extract != nil {
		return extract(in)
	}
	return CollectStrings(in)
}

// scanAll scans every leaf before deciding: a single unsafe leaf never
// hides violations in the leaves after it.
func scanAll(ctx context.Context, scanner interfaces.TextScanner, texts []string, direction string) error {
	var unsafe []*scan.PromptScanResult
	for _, text := range texts {
		result, err := scanner.ScanText(ctx, text)
		if err != nil {
			return fmt.Errorf("%s scan: %w", direction, err)
		}
		if !result.IsSafe {
			unsafe = append(unsafe, result)
		}
	}
	if len(unsafe) == 0 {
		return nil
	}
	return &UnsafeContentError{Direction: direction, Result: mergeUnsafe(unsafe)}
}

// mergeUnsafe folds per-leaf results into one, re-establishing the result
// invariants: categories sorted non-increasing by confidence, Category
// pointing at the first, severity taken from the leaf that contributed it.
func mergeUnsafe(results []*scan.PromptScanResult) *scan.PromptScanResult {
	if len(results) == 1 {
		return results[0]
	}

	merged := &scan.PromptScanResult{IsSafe: false}
	var reasons []string
	for _, r := range results {
		merged.AllCategories = append(merged.AllCategories, r.AllCategories...)
		if r.Reasoning != "" {
			reasons = append(reasons, r.Reasoning)
		}
		merged.TokenUsage.PromptTokens += r.TokenUsage.PromptTokens
		merged.TokenUsage.CompletionTokens += r.TokenUsage.CompletionTokens
		merged.TokenUsage.TotalTokens += r.TokenUsage.TotalTokens
	}

	sort.SliceStable(merged.AllCategories, func(i, j int) bool {
		return merged.AllCategories[i].Confidence > merged.AllCategories[j].Confidence
	})
	merged.Category = &merged.AllCategories[0]
	merged.Reasoning = strings.Join(reasons, "\n\n")

	for _, r := range results {
		if r.Category != nil && r.Severity != nil && r.Category.ID == merged.Category.ID {
			merged.Severity = r.Severity
			break
		}
	}

	return merged
}
