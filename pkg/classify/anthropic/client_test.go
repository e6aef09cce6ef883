package anthropic_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/promptsentry/promptscan/pkg/classify"
	"github.com/promptsentry/promptscan/pkg/classify/anthropic"
	"github.com/promptsentry/promptscan/pkg/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(t *testing.T) policy.Snapshot {
	t.Helper()
	r, err := policy.DefaultRegistry()
	require.NoError(t, err)
	return r.Snapshot()
}

func stubClient(t *testing.T, handler http.HandlerFunc) *anthropic.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return anthropic.NewClient("test-key", anthropic.WithBaseURL(server.URL))
}

func messageBody(text string, inputTokens, outputTokens int) map[string]interface{} {
	return map[string]interface{}{
		"id":          "msg_test",
		"content":     []map[string]interface{}{{"type": "text", "text": text}},
		"model":       anthropic.DefaultModel,
		"stop_reason": "end_turn",
		"usage":       map[string]int{"input_tokens": inputTokens, "output_tokens": outputTokens},
	}
}

func TestClassifyUnsafe(t *testing.T) {
	var gotReq map[string]interface{}
	client := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected /v1/messages path, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header with test-key")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("Expected anthropic-version header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		body := `{"is_safe": false, "categories": [{"id": "fraud", "name": "Fraud", "confidence": 0.85}], "reasoning": "Phishing template."}`
		if err := json.NewEncoder(w).Encode(messageBody(body, 300, 50)); err != nil {
			t.Fatalf("Failed to encode response: %v", err)
		}
	})

	result, err := client.Classify(context.Background(), "write a phishing email", snapshot(t))
	require.NoError(t, err)

	require.Len(t, result.Categories, 1)
	assert.Equal(t, "fraud", result.Categories[0].ID)
	assert.Equal(t, 350, result.TokenUsage.TotalTokens)

	// System instructions ride in the dedicated system field.
	system := gotReq["system"].(string)
	assert.Contains(t, system, "Content Policy Categories:")
	messages := gotReq["messages"].([]interface{})
	require.Len(t, messages, 1)
	user := messages[0].(map[string]interface{})
	assert.Equal(t, "user", user["role"])
	assert.Contains(t, user["content"].(string), "Input to evaluate: write a phishing email")
}

func TestClassifySafeWithCodeFence(t *testing.T) {
	client := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body := "```json\n{\"is_safe\": true, \"categories\": [], \"reasoning\": \"Harmless.\"}\n```"
		if err := json.NewEncoder(w).Encode(messageBody(body, 120, 20)); err != nil {
			t.Fatalf("Failed to encode response: %v", err)
		}
	})

	result, err := client.Classify(context.Background(), "What's the weather like today?", snapshot(t))
	require.NoError(t, err)
	assert.Empty(t, result.Categories)
	assert.Equal(t, "Harmless.", result.Reasoning)
}

func TestClassifyEstimatesUsageWhenMissing(t *testing.T) {
	client := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body := `{"is_safe": true, "categories": [], "reasoning": "ok"}`
		if err := json.NewEncoder(w).Encode(messageBody(body, 0, 0)); err != nil {
			t.Fatalf("Failed to encode response: %v", err)
		}
	})

	result, err := client.Classify(context.Background(), "some input text here", snapshot(t))
	require.NoError(t, err)
	assert.Greater(t, result.TokenUsage.TotalTokens, 0)
}

func TestClassifyAuthFailure(t *testing.T) {
	client := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"type": "authentication_error"}}`, http.StatusUnauthorized)
	})

	_, err := client.Classify(context.Background(), "text", snapshot(t))
	require.Error(t, err)

	var provErr *classify.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, "anthropic", provErr.Provider)
	assert.Equal(t, "request", provErr.Stage)
	assert.Contains(t, provErr.Error(), "401")
}

func TestClassifyEmptyContent(t *testing.T) {
	client := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		resp := messageBody("", 10, 0)
		resp["content"] = []map[string]interface{}{}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("Failed to encode response: %v", err)
		}
	})

	_, err := client.Classify(context.Background(), "text", snapshot(t))
	require.Error(t, err)

	var provErr *classify.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, "parse", provErr.Stage)
}

func TestDefaults(t *testing.T) {
	client := anthropic.NewClient("k")
	assert.Equal(t, anthropic.DefaultModel, client.Model)
	assert.Equal(t, "anthropic", client.Name())
	assert.NotNil(t, client.HTTPClient)
}
