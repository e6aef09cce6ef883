package openai

import (
	"context"
	"fmt"

	"github.com/promptsentry/promptscan/pkg/classify"
	"github.com/promptsentry/promptscan/pkg/logging"
	"github.com/promptsentry/promptscan/pkg/policy"
	"github.com/promptsentry/promptscan/pkg/retry"
	"github.com/promptsentry/promptscan/pkg/scan"
	"github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o"

// Client implements the classify.Classifier interface for OpenAI.
type Client struct {
	Client        *openai.Client
	Model         string
	logger        logging.Logger
	retryExecutor *retry.Executor
}

// Option represents an option for configuring the OpenAI client
type Option func(*Client)

// WithModel sets the model for the OpenAI client
func WithModel(model string) Option {
	return func(c *Client) {
		c.Model = model
	}
}

// WithLogger sets the logger for the OpenAI client
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRetry configures retry policy for the client. Without it the client
// performs exactly one request per classification.
func WithRetry(opts ...retry.Option) Option {
	return func(c *Client) {
		c.retryExecutor = retry.NewExecutor(retry.NewPolicy(opts...))
	}
}

// NewClient creates a new OpenAI classifier client
func NewClient(apiKey string, options ...Option) *Client {
	client := &Client{
		Client: openai.NewClient(apiKey),
		Model:  DefaultModel,
		logger: logging.New(),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// NewClientWithConfig creates a client from a prebuilt SDK config, which
// tests use to point at a stub server.
func NewClientWithConfig(config openai.ClientConfig, options ...Option) *Client {
	client := &Client{
		Client: openai.NewClientWithConfig(config),
		Model:  DefaultModel,
		logger: logging.New(),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// Classify implements classify.Classifier. It sends one chat completion
// request with a JSON response-format hint and parses the structured verdict.
func (c *Client) Classify(ctx context.Context, text string, snapshot policy.Snapshot) (*classify.Classification, error) {
	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classify.SystemInstructions(snapshot.Categories)},
			{Role: openai.ChatMessageRoleUser, Content: classify.UserContent(text)},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	var resp openai.ChatCompletionResponse
	var err error

	operation := func() error {
		c.logger.Debug(ctx, "Executing OpenAI evaluation request", map[string]interface{}{
			"model":       c.Model,
			"text_length": len(text),
			"categories":  len(snapshot.Categories),
		})

		resp, err = c.Client.CreateChatCompletion(ctx, req)
		if err != nil {
			c.logger.Error(ctx, "Error from OpenAI API", map[string]interface{}{
				"error": err.Error(),
				"model": c.Model,
			})
			return fmt.Errorf("failed to evaluate content: %w", err)
		}
		return nil
	}

	if c.retryExecutor != nil {
		err = c.retryExecutor.Execute(ctx, operation)
	} else {
		err = operation()
	}

	if err != nil {
		return nil, &classify.ProviderError{Provider: c.Name(), Stage: "request", Err: err}
	}

	if len(resp.Choices) == 0 {
		return nil, &classify.ProviderError{
			Provider: c.Name(),
			Stage:    "parse",
			Err:      fmt.Errorf("no completion choices returned"),
		}
	}

	classification, err := classify.ParseEvaluation(c.Name(), resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	classification.TokenUsage = scan.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}

	c.logger.Debug(ctx, "Successfully received evaluation from OpenAI", map[string]interface{}{
		"model":      c.Model,
		"categories": len(classification.Categories),
		"tokens":     classification.TokenUsage.TotalTokens,
	})

	return classification, nil
}

// Name implements classify.Classifier.Name
func (c *Client) Name() string {
	return "openai"
}
