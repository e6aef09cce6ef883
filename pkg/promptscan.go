package promptscan

import (
	"github.com/promptsentry/promptscan/pkg/classify"
	"github.com/promptsentry/promptscan/pkg/logging"
	"github.com/promptsentry/promptscan/pkg/scanner"
	"github.com/promptsentry/promptscan/pkg/validate"
)

// Supported judge providers.
const (
	ProviderOpenAI    = scanner.ProviderOpenAI
	ProviderAnthropic = scanner.ProviderAnthropic
)

// NewScanner creates a new scanner with the given provider and options
func NewScanner(provider scanner.Provider, apiKey string, options ...scanner.Option) (*scanner.Scanner, error) {
	return scanner.New(provider, apiKey, options...)
}

// NewOpenAIScanner creates a scanner judged by an OpenAI model
func NewOpenAIScanner(apiKey string, options ...scanner.Option) (*scanner.Scanner, error) {
	return scanner.New(scanner.ProviderOpenAI, apiKey, options...)
}

// NewAnthropicScanner creates a scanner judged by an Anthropic model
func NewAnthropicScanner(apiKey string, options ...scanner.Option) (*scanner.Scanner, error) {
	return scanner.New(scanner.ProviderAnthropic, apiKey, options...)
}

// WithModel overrides the provider's default judge model
func WithModel(model string) scanner.Option {
	return scanner.WithModel(model)
}

// WithLogger sets the logger for the scanner
func WithLogger(logger logging.Logger) scanner.Option {
	return scanner.WithLogger(logger)
}

// WithClassifier swaps in a custom classifier implementation
func WithClassifier(c classify.Classifier) scanner.Option {
	return scanner.WithClassifier(c)
}

// WithSeverityPolicy replaces the built-in severity assignment policy
func WithSeverityPolicy(p scanner.SeverityPolicy) scanner.Option {
	return scanner.WithSeverityPolicy(p)
}

// WithValidationRules overrides the provider's structural prompt rules
func WithValidationRules(rules validate.Rules) scanner.Option {
	return scanner.WithValidationRules(rules)
}
