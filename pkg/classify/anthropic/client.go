package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/promptsentry/promptscan/pkg/classify"
	"github.com/promptsentry/promptscan/pkg/detect"
	"github.com/promptsentry/promptscan/pkg/logging"
	"github.com/promptsentry/promptscan/pkg/policy"
	"github.com/promptsentry/promptscan/pkg/retry"
	"github.com/promptsentry/promptscan/pkg/scan"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-3-haiku-20240307"

	apiVersion      = "2023-06-01"
	defaultBaseURL  = "https://api.anthropic.com"
	maxOutputTokens = 1024
)

// Client implements the classify.Classifier interface for Anthropic.
type Client struct {
	APIKey        string
	Model         string
	BaseURL       string
	HTTPClient    *http.Client
	logger        logging.Logger
	retryExecutor *retry.Executor
}

// Option represents an option for configuring the Anthropic client
type Option func(*Client)

// WithModel sets the model for the Anthropic client
func WithModel(model string) Option {
	return func(c *Client) {
		c.Model = model
	}
}

// WithLogger sets the logger for the Anthropic client
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

// WithBaseURL sets the base URL for the Anthropic API
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.BaseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the Anthropic client. Timeout and
// cancellation of the provider call are owned by this client, not by the
// scan pipeline.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = httpClient
	}
}

// NewClient creates a new Anthropic classifier client
func NewClient(apiKey string, options ...Option) *Client {
	client := &Client{
		APIKey:     apiKey,
		Model:      DefaultModel,
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logging.New(),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// messageRequest is the wire format of the Anthropic messages API.
type messageRequest struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type messageResponse struct {
	ID         string         `json:"id"`
	Content    []contentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      usage          `json:"usage"`
}

// Classify implements classify.Classifier. It sends one messages request and
// parses the structured verdict from the first text block.
func (c *Client) Classify(ctx context.Context, text string, snapshot policy.Snapshot) (*classify.Classification, error) {
	req := messageRequest{
		Model:     c.Model,
		System:    classify.SystemInstructions(snapshot.Categories),
		MaxTokens: maxOutputTokens,
		Messages: []message{
			{Role: "user", Content: classify.UserContent(text) + "\n\nJSON response:"},
		},
	}

	var resp messageResponse
	operation := func() error {
		c.logger.Debug(ctx, "Executing Anthropic evaluation request", map[string]interface{}{
			"model":       c.Model,
			"text_length": len(text),
			"categories":  len(snapshot.Categories),
		})
		return c.send(ctx, &req, &resp)
	}

	var err error
	if c.retryExecutor != nil {
		err = c.retryExecutor.Execute(ctx, operation)
	} else {
		err = operation()
	}
	if err != nil {
		return nil, &classify.ProviderError{Provider: c.Name(), Stage: "request", Err: err}
	}

	body := ""
	for _, block := range resp.Content {
		if block.Type == "text" {
			body = block.Text
			break
		}
	}
	if body == "" {
		return nil, &classify.ProviderError{
			Provider: c.Name(),
			Stage:    "parse",
			Err:      fmt.Errorf("response contains no text block"),
		}
	}

	classification, err := classify.ParseEvaluation(c.Name(), body)
	if err != nil {
		return nil, err
	}
	classification.TokenUsage = c.tokenUsage(resp.Usage, text, body)

	c.logger.Debug(ctx, "Successfully received evaluation from Anthropic", map[string]interface{}{
		"model":      c.Model,
		"categories": len(classification.Categories),
		"tokens":     classification.TokenUsage.TotalTokens,
	})

	return classification, nil
}

func (c *Client) send(ctx context.Context, req *messageRequest, resp *messageResponse) error {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/messages", bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	httpResp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		c.logger.Error(ctx, "Error from Anthropic API", map[string]interface{}{
			"error": err.Error(),
			"model": c.Model,
		})
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		c.logger.Error(ctx, "Anthropic API returned non-OK status", map[string]interface{}{
			"status": httpResp.StatusCode,
			"model":  c.Model,
		})
		return fmt.Errorf("API request failed with status %d: %s", httpResp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, resp); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// tokenUsage prefers the API's own accounting and falls back to the
// character heuristic when the response omits it.
func (c *Client) tokenUsage(u usage, input, output string) scan.TokenUsage {
	if u.InputTokens > 0 || u.OutputTokens > 0 {
		return scan.TokenUsage{
			PromptTokens:     u.InputTokens,
			CompletionTokens: u.OutputTokens,
			TotalTokens:      u.InputTokens + u.OutputTokens,
		}
	}
	counter := detect.HeuristicTokenCounter{}
	in := counter.CountTokens(input)
	out := counter.CountTokens(output)
	return scan.TokenUsage{
		PromptTokens:     in,
		CompletionTokens: out,
		TotalTokens:      in + out,
	}
}

// Name implements classify.Classifier.Name
func (c *Client) Name() string {
	return "anthropic"
}
