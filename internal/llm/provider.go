// Package llm defines the model provider abstraction and its OpenAI
// implementation.
package llm

import (
	"context"
	"errors"
	"time"
)

// TimeoutLLMCall caps a single model call. Timeouts are non-negotiable.
const TimeoutLLMCall = 60 * time.Second

// Domain errors for the LLM package.
var (
	ErrNoChoices     = errors.New("no choices returned")
	ErrNotConfigured = errors.New("llm provider not configured")
)

// Message roles on the chat wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Provider is the interface all model providers implement.
type Provider interface {
	// Name returns the provider identifier (e.g. "openai").
	Name() string
	// Generate sends a completion request and returns the response.
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// Request is one chat completion request.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	Tools       []Tool
}

// Message is one chat message. ToolCallID is set only on tool-result
// messages; ToolCalls only on assistant messages that requested tools.
type Message struct {
	Role       string
	Content    string
	ToolCallID string
	ToolCalls  []ToolCall
}

// Tool is a function definition offered to the model.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ToolCall is the model's request to run a tool. Arguments is the raw JSON
// argument object exactly as the model produced it.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Response is one chat completion response.
type Response struct {
	Content      string
	FinishReason string
	InputTokens  int
	OutputTokens int
	Model        string
	ToolCalls    []ToolCall
}

// WantsTools reports whether the model asked for tool executions instead of
// (or in addition to) answering directly.
func (r *Response) WantsTools() bool {
	return len(r.ToolCalls) > 0
}
