package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAITestServer(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewOpenAIProviderWithBaseURL("test-api-key", ts.URL)
}

func TestOpenAIGenerate_Success(t *testing.T) {
	provider := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4-turbo-preview", req.Model)
		assert.Empty(t, req.Tools)

		resp := openai.ChatCompletionResponse{
			ID:    "chatcmpl-test123",
			Model: "gpt-4-turbo-preview",
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: "You have 12 vacation days remaining.",
					},
					FinishReason: openai.FinishReasonStop,
				},
			},
			Usage: openai.Usage{
				PromptTokens:     42,
				CompletionTokens: 9,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	req := &Request{
		Model: "gpt-4-turbo-preview",
		Messages: []Message{
			{Role: RoleSystem, Content: "You are an HR assistant."},
			{Role: RoleUser, Content: "How many vacation days do I have?"},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	}

	resp, err := provider.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "You have 12 vacation days remaining.", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 42, resp.InputTokens)
	assert.Equal(t, 9, resp.OutputTokens)
	assert.False(t, resp.WantsTools())
}

func TestOpenAIGenerate_ToolCalls(t *testing.T) {
	provider := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Tools, 1)
		assert.Equal(t, "employee_lookup", req.Tools[0].Function.Name)

		resp := openai.ChatCompletionResponse{
			Model: "gpt-4-turbo-preview",
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						Role: "assistant",
						ToolCalls: []openai.ToolCall{
							{
								ID:   "call_abc",
								Type: openai.ToolTypeFunction,
								Function: openai.FunctionCall{
									Name:      "employee_lookup",
									Arguments: `{"search_type":"name","search_value":"Sarah Johnson"}`,
								},
							},
						},
					},
					FinishReason: openai.FinishReasonToolCalls,
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	req := &Request{
		Model:    "gpt-4-turbo-preview",
		Messages: []Message{{Role: RoleUser, Content: "Who is Sarah Johnson?"}},
		Tools: []Tool{
			{
				Name:        "employee_lookup",
				Description: "Look up employee information",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"search_type":  map[string]interface{}{"type": "string"},
						"search_value": map[string]interface{}{"type": "string"},
					},
				},
			},
		},
	}

	resp, err := provider.Generate(context.Background(), req)
	require.NoError(t, err)
	require.True(t, resp.WantsTools())
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_abc", resp.ToolCalls[0].ID)
	assert.Equal(t, "employee_lookup", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"search_type":"name","search_value":"Sarah Johnson"}`, resp.ToolCalls[0].Arguments)
}

func TestOpenAIGenerate_ToolResultRoundTrip(t *testing.T) {
	provider := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		// The second-pass transcript carries the assistant tool request and
		// the tool result keyed by the same call ID.
		require.Len(t, req.Messages, 3)
		assert.Equal(t, "assistant", req.Messages[1].Role)
		require.Len(t, req.Messages[1].ToolCalls, 1)
		assert.Equal(t, "tool", req.Messages[2].Role)
		assert.Equal(t, "call_abc", req.Messages[2].ToolCallID)

		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{
					Message:      openai.ChatCompletionMessage{Role: "assistant", Content: "Sarah Johnson works in Engineering."},
					FinishReason: openai.FinishReasonStop,
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	req := &Request{
		Model: "gpt-4-turbo-preview",
		Messages: []Message{
			{Role: RoleUser, Content: "Who is Sarah Johnson?"},
			{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call_abc", Name: "employee_lookup", Arguments: `{}`}}},
			{Role: RoleTool, ToolCallID: "call_abc", Content: `{"found":true}`},
		},
	}

	resp, err := provider.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Sarah Johnson works in Engineering.", resp.Content)
}

func TestOpenAIGenerate_APIError(t *testing.T) {
	provider := newOpenAITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message": "Invalid API key",
				"type":    "invalid_request_error",
			},
		})
	})

	_, err := provider.Generate(context.Background(), &Request{
		Model:    "gpt-4-turbo-preview",
		Messages: []Message{{Role: RoleUser, Content: "Hello"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai api call")
}
