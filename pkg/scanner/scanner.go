// Package scanner is the entry point of the scan pipeline: structure
// validation, local guardrail and injection detection, LLM classification
// and result aggregation behind one provider-agnostic facade.
package scanner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/promptsentry/promptscan/pkg/classify"
	"github.com/promptsentry/promptscan/pkg/classify/anthropic"
	"github.com/promptsentry/promptscan/pkg/classify/openai"
	"github.com/promptsentry/promptscan/pkg/detect"
	"github.com/promptsentry/promptscan/pkg/logging"
	"github.com/promptsentry/promptscan/pkg/policy"
	"github.com/promptsentry/promptscan/pkg/scan"
	"github.com/promptsentry/promptscan/pkg/scanid"
	"github.com/promptsentry/promptscan/pkg/validate"
)

// Provider identifies a supported LLM judge.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Scanner owns the mutable policy registry and the provider classifier, and
// exposes the unified scan surface. One Scanner is safe for concurrent
// scans; mutation through the Add/Remove methods is serialized by the
// registry's lock and never disturbs a scan in flight.
type Scanner struct {
	registry   *policy.Registry
	classifier classify.Classifier
	injector   *detect.InjectionDetector
	evaluator  *detect.Evaluator
	validator  *validate.Validator
	sevPolicy  SeverityPolicy
	logger     logging.Logger

	model string
	rules *validate.Rules
}

// Option represents an option for configuring the Scanner
type Option func(*Scanner)

// WithModel overrides the provider's default judge model.
func WithModel(model string) Option {
	return func(s *Scanner) {
		s.model = model
	}
}

// WithLogger sets the logger for the scanner and its provider client.
func WithLogger(logger logging.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithClassifier swaps in a custom classifier, bypassing provider
// construction. Tests use this to stub the LLM judge.
func WithClassifier(c classify.Classifier) Option {
	return func(s *Scanner) {
		s.classifier = c
	}
}

// WithSeverityPolicy replaces the built-in severity policy data.
func WithSeverityPolicy(p SeverityPolicy) Option {
	return func(s *Scanner) {
		s.sevPolicy = p
	}
}

// WithValidationRules overrides the provider's structural prompt rules.
func WithValidationRules(rules validate.Rules) Option {
	return func(s *Scanner) {
		s.rules = &rules
	}
}

// New creates a scanner for the given provider. The built-in policy data is
// loaded and compiled here; a malformed definition fails construction, never
// a later scan.
func New(provider Provider, apiKey string, options ...Option) (*Scanner, error) {
	registry, err := policy.DefaultRegistry()
	if err != nil {
		return nil, err
	}

	s := &Scanner{
		registry:  registry,
		injector:  detect.NewInjectionDetector(),
		evaluator: detect.NewEvaluator(nil),
		sevPolicy: DefaultSeverityPolicy(),
		logger:    logging.New(),
	}

	for _, option := range options {
		option(s)
	}

	if s.classifier == nil {
		if apiKey == "" {
			return nil, fmt.Errorf("API key cannot be empty")
		}
		switch provider {
		case ProviderOpenAI:
			opts := []openai.Option{openai.WithLogger(s.logger)}
			if s.model != "" {
				opts = append(opts, openai.WithModel(s.model))
			}
			s.classifier = openai.NewClient(apiKey, opts...)
		case ProviderAnthropic:
			opts := []anthropic.Option{anthropic.WithLogger(s.logger)}
			if s.model != "" {
				opts = append(opts, anthropic.WithModel(s.model))
			}
			s.classifier = anthropic.NewClient(apiKey, opts...)
		default:
			return nil, fmt.Errorf("unsupported provider: %q (use %q or %q)", provider, ProviderOpenAI, ProviderAnthropic)
		}
	}

	if s.rules == nil {
		switch provider {
		case ProviderAnthropic:
			rules := validate.AnthropicRules()
			s.rules = &rules
		default:
			rules := validate.OpenAIRules()
			s.rules = &rules
		}
	}
	s.validator = validate.New(*s.rules, nil)

	return s, nil
}

// ScanText classifies raw text: local injection and guardrail detection
// first, then one blocking provider round trip, then aggregation. A provider
// failure is returned as an error and is never reported as a safe result.
func (s *Scanner) ScanText(ctx context.Context, text string) (*scan.PromptScanResult, error) {
	scanID := uuid.NewString()
	ctx = scanid.WithScanID(ctx, scanID)
	snap := s.registry.Snapshot()

	injections := s.injector.Detect(text, scan.RoleUnspecified, snap.InjectionPatterns)
	violations := s.evaluator.Evaluate(text, snap.Guardrails, detect.EvalInput{TokenCount: -1})

	s.logger.Debug(ctx, "Local detection finished", map[string]interface{}{
		"injection_matches":    len(injections),
		"guardrail_violations": len(violations),
	})

	cls, err := s.classifier.Classify(ctx, text, snap)
	if err != nil {
		s.logger.Error(ctx, "Content evaluation failed", map[string]interface{}{
			"provider": s.classifier.Name(),
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("content evaluation: %w", err)
	}

	locals := make([]localFinding, 0, len(injections)+len(violations))
	for _, m := range injections {
		locals = append(locals, findingFromInjection(m))
	}
	for _, v := range violations {
		locals = append(locals, findingFromViolation(v))
	}

	result := aggregate(cls, locals, s.sevPolicy)
	result.Metadata = map[string]any{
		"scan_id":  scanID,
		"provider": s.classifier.Name(),
	}

	s.logger.Info(ctx, "Scan completed", map[string]interface{}{
		"is_safe":    result.IsSafe,
		"categories": len(result.AllCategories),
		"provider":   s.classifier.Name(),
	})
	return result, nil
}

// Scan checks the structure of a chat-style prompt against the provider's
// rules. Purely structural: no content judgment, no network call.
func (s *Scanner) Scan(prompt *scan.Prompt) scan.ScanResult {
	return s.validator.Validate(prompt)
}

// ScanMessages validates prompt structure and then sweeps every message
// through the local injection and guardrail layer, honoring the system-role
// exemptions. Network-free; the LLM judge only runs in ScanText.
func (s *Scanner) ScanMessages(prompt *scan.Prompt) scan.ScanResult {
	result := s.validator.Validate(prompt)
	if !result.IsSafe {
		return result
	}

	snap := s.registry.Snapshot()
	var issues []scan.Issue
	for i, msg := range prompt.Turns() {
		for _, m := range s.injector.Detect(msg.Content, msg.Role, snap.InjectionPatterns) {
			issues = append(issues, scan.Issue{
				Type:         "potential_injection",
				Description:  m.Pattern.Description,
				Severity:     string(m.Pattern.Severity),
				MessageIndex: i,
			})
		}
		for _, v := range s.evaluator.Evaluate(msg.Content, snap.Guardrails, detect.EvalInput{TokenCount: -1}) {
			issues = append(issues, scan.Issue{
				Type:         "guardrail_violation",
				Description:  fmt.Sprintf("%s: %s", v.GuardrailName, v.PatternDescription),
				Severity:     string(v.Severity),
				MessageIndex: i,
			})
		}
	}

	return scan.ScanResult{IsSafe: len(issues) == 0, Issues: issues}
}

// AddCustomGuardrail registers a guardrail; the definition is validated and
// its patterns compiled before it becomes visible to scans.
func (s *Scanner) AddCustomGuardrail(name string, def *policy.GuardrailDefinition) error {
	return s.registry.AddGuardrail(name, def)
}

// RemoveCustomGuardrail removes a guardrail; removing an unknown name
// returns policy.ErrNotFound.
func (s *Scanner) RemoveCustomGuardrail(name string) error {
	return s.registry.RemoveGuardrail(name)
}

// AddCustomCategory registers a content-policy category that subsequent
// evaluation prompts will include verbatim.
func (s *Scanner) AddCustomCategory(id string, def *policy.CategoryDefinition) error {
	return s.registry.AddCategory(id, def)
}

// RemoveCustomCategory removes a category; removing an unknown id returns
// policy.ErrNotFound.
func (s *Scanner) RemoveCustomCategory(id string) error {
	return s.registry.RemoveCategory(id)
}

// Provider returns the name of the configured judge provider.
func (s *Scanner) Provider() string {
	return s.classifier.Name()
}
