// Package testutil provides shared test helpers and mocks.
package testutil

import (
	"context"
	"sync"

	"github.com/pathways-2/Agent-Chatbot/internal/llm"
)

// MockProvider implements llm.Provider for tests without live API calls.
// When Content is empty, Generate returns "mock response". Set Err to
// simulate model failures.
type MockProvider struct {
	ProviderName string
	Content      string
	Err          error
}

// Name returns the provider identifier (implements llm.Provider).
func (m *MockProvider) Name() string { return m.ProviderName }

// Generate returns a canned response or the configured error.
func (m *MockProvider) Generate(_ context.Context, req *llm.Request) (*llm.Response, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	content := m.Content
	if content == "" {
		content = "mock response"
	}
	return &llm.Response{
		Content:      content,
		FinishReason: "stop",
		InputTokens:  10,
		OutputTokens: 20,
		Model:        req.Model,
	}, nil
}

// ToolCallMockProvider implements llm.Provider for testing the tool loop.
// It returns a configurable sequence of responses (e.g. tool calls then the
// final answer) and records every request for assertions. Set ErrOnCall
// (1-based) and Err to fail a specific call.
type ToolCallMockProvider struct {
	mu               sync.Mutex
	Responses        []*llm.Response
	CallCount        int
	ReceivedRequests []*llm.Request
	ErrOnCall        int
	Err              error
}

// Name returns "openai".
func (p *ToolCallMockProvider) Name() string { return "openai" }

// Generate returns the next response in the sequence and records the request.
func (p *ToolCallMockProvider) Generate(_ context.Context, req *llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	p.CallCount++
	idx := p.CallCount - 1

	// Copy so callers cannot mutate recorded state after the fact.
	msgCopy := make([]llm.Message, len(req.Messages))
	copy(msgCopy, req.Messages)
	toolCopy := make([]llm.Tool, len(req.Tools))
	copy(toolCopy, req.Tools)
	p.ReceivedRequests = append(p.ReceivedRequests, &llm.Request{
		Model:       req.Model,
		Messages:    msgCopy,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Tools:       toolCopy,
	})

	resps := p.Responses
	callCount := p.CallCount
	errOnCall := p.ErrOnCall
	errReturn := p.Err
	p.mu.Unlock()

	if errOnCall > 0 && callCount == errOnCall && errReturn != nil {
		return nil, errReturn
	}
	if len(resps) == 0 {
		return &llm.Response{
			Content:      "no responses configured",
			FinishReason: "stop",
			Model:        req.Model,
		}, nil
	}
	if idx >= len(resps) {
		idx = len(resps) - 1
	}

	out := resps[idx]
	r := &llm.Response{
		Content:      out.Content,
		FinishReason: out.FinishReason,
		InputTokens:  out.InputTokens,
		OutputTokens: out.OutputTokens,
		Model:        out.Model,
	}
	if len(out.ToolCalls) > 0 {
		r.ToolCalls = make([]llm.ToolCall, len(out.ToolCalls))
		copy(r.ToolCalls, out.ToolCalls)
	}
	return r, nil
}
