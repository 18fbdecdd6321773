// Package agent orchestrates one chat turn: guardrail evaluation, the
// two-pass model conversation with tool dispatch in between, and response
// post-processing.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pathways-2/Agent-Chatbot/internal/guardrails"
	"github.com/pathways-2/Agent-Chatbot/internal/llm"
	"github.com/pathways-2/Agent-Chatbot/internal/memory"
	hrbototel "github.com/pathways-2/Agent-Chatbot/internal/otel"
	"github.com/pathways-2/Agent-Chatbot/internal/tools"
)

var tracer = hrbototel.Tracer("github.com/pathways-2/Agent-Chatbot/internal/agent")

// Model call defaults.
const (
	DefaultModel       = "gpt-4-turbo-preview"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// Response types returned to the chat client.
const (
	TypeGeneral        = "general"
	TypePolicy         = "policy_response"
	TypeEmployee       = "employee_response"
	TypeCalculation    = "calculation_response"
	TypeTool           = "tool_response"
	TypeGuardrailBlock = "guardrail_block"
	TypeError          = "error"
)

// errorResponse is the fixed reply for any internal failure. Error details
// never reach the user.
const errorResponse = "I apologize, but I'm having trouble processing your request right now. Please try again in a moment, or contact HR directly if you need immediate assistance."

// State is one step of the per-message pipeline. Every Run traverses
// PreCheck and ends in exactly one of the terminal states; FirstCall,
// ToolDispatch, SecondCall, and PostProcess appear only when reached.
type State string

const (
	StatePreCheck     State = "pre_check"
	StateFirstCall    State = "first_call"
	StateToolDispatch State = "tool_dispatch"
	StateSecondCall   State = "second_call"
	StatePostProcess  State = "post_process"

	// Terminal states.
	StateAnswered State = "answered"
	StateBlocked  State = "blocked"
	StateErrored  State = "errored"
)

// Runner executes the chat pipeline.
type Runner struct {
	guardrails *guardrails.Engine
	memory     *memory.Store
	provider   llm.Provider
	registry   *tools.Registry

	model       string
	temperature float64
	maxTokens   int
}

// RunnerConfig holds the dependencies for constructing a Runner.
type RunnerConfig struct {
	Guardrails  *guardrails.Engine
	Memory      *memory.Store
	Provider    llm.Provider
	Registry    *tools.Registry
	Model       string
	Temperature float64
	MaxTokens   int
}

// NewRunner creates a chat runner with the given dependencies.
func NewRunner(cfg RunnerConfig) *Runner {
	r := &Runner{
		guardrails:  cfg.Guardrails,
		memory:      cfg.Memory,
		provider:    cfg.Provider,
		registry:    cfg.Registry,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
	if r.model == "" {
		r.model = DefaultModel
	}
	if r.temperature == 0 {
		r.temperature = DefaultTemperature
	}
	if r.maxTokens == 0 {
		r.maxTokens = DefaultMaxTokens
	}
	return r
}

// RunRequest is one inbound chat message.
type RunRequest struct {
	SessionID string
	Message   string
}

// Result is the processed chat reply. State holds the terminal state and
// States the full traversal, so callers and tests can see how far the
// pipeline got (e.g. whether a tool dispatch happened before an error).
type Result struct {
	Response  string   `json:"response"`
	Type      string   `json:"type"`
	Sources   []Source `json:"sources"`
	ToolsUsed []string `json:"toolsUsed"`
	State     State    `json:"-"`
	States    []State  `json:"-"`
}

// Blocked reports whether the turn was refused by guardrails.
func (r *Result) Blocked() bool { return r.State == StateBlocked }

// Run executes one chat turn:
//  1. Evaluate guardrails; a block short-circuits with the fixed refusal
//     without touching the session here (the caller records the refused
//     exchange as plain turns for continuity).
//  2. First model pass with the session history and the tool catalog.
//  3. Dispatch any requested tools and run a second pass over the results.
//  4. Post-process: output filter, disclaimers, sources, response type.
//
// Internal failures never escape: they collapse to the fixed error reply.
func (r *Runner) Run(ctx context.Context, req *RunRequest) *Result {
	correlationID := "corr_" + uuid.NewString()[:12]
	startTime := time.Now()

	ctx, span := tracer.Start(ctx, "agent.run",
		trace.WithAttributes(
			attribute.String("correlation_id", correlationID),
			attribute.String("session_id", req.SessionID),
		))
	defer span.End()

	log.Info().
		Str("correlation_id", correlationID).
		Str("session_id", req.SessionID).
		Func(hrbototel.LogTraceFields(ctx)).
		Msg("agent_run_started")

	states := []State{StatePreCheck}

	verdict := r.guardrails.Evaluate(ctx, req.Message)
	if !verdict.Allowed {
		span.SetAttributes(attribute.String("guardrail.violation", string(verdict.Violation)))
		log.Info().
			Str("correlation_id", correlationID).
			Str("violation", string(verdict.Violation)).
			Msg("agent_run_blocked")
		states = append(states, StateBlocked)
		return &Result{
			Response:  verdict.Response,
			Type:      TypeGuardrailBlock,
			Sources:   []Source{},
			ToolsUsed: []string{},
			State:     StateBlocked,
			States:    states,
		}
	}

	answer, results, err := r.converse(ctx, req, &states)
	if err != nil {
		span.RecordError(err)
		log.Error().Err(err).
			Str("correlation_id", correlationID).
			Msg("agent_run_failed")
		states = append(states, StateErrored)
		return &Result{
			Response:  errorResponse,
			Type:      TypeError,
			Sources:   []Source{},
			ToolsUsed: []string{},
			State:     StateErrored,
			States:    states,
		}
	}

	states = append(states, StatePostProcess)
	res := r.postProcess(answer, results, verdict)
	res.State = StateAnswered
	res.States = append(states, StateAnswered)

	r.memory.Append(ctx, req.SessionID, memory.RoleUser, req.Message, nil)
	r.memory.Append(ctx, req.SessionID, memory.RoleAssistant, res.Response, nil)

	span.SetAttributes(
		attribute.String("response.type", res.Type),
		attribute.StringSlice("tools.used", res.ToolsUsed),
	)
	log.Info().
		Str("correlation_id", correlationID).
		Str("type", res.Type).
		Strs("tools_used", res.ToolsUsed).
		Int64("duration_ms", time.Since(startTime).Milliseconds()).
		Func(hrbototel.LogTraceFields(ctx)).
		Msg("agent_run_completed")

	return res
}

// converse performs the model passes and returns the final answer text plus
// the dispatched tool results, empty when the model answered directly. Each
// phase it enters is appended to states before the phase runs, so a failed
// call still shows up in the traversal.
func (r *Runner) converse(ctx context.Context, req *RunRequest, states *[]State) (string, []tools.Result, error) {
	messages := r.buildContext(ctx, req)

	*states = append(*states, StateFirstCall)
	first, err := r.provider.Generate(ctx, &llm.Request{
		Model:       r.model,
		Messages:    messages,
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
		Tools:       r.registry.Definitions(),
	})
	if err != nil {
		return "", nil, fmt.Errorf("first model pass: %w", err)
	}

	if !first.WantsTools() {
		return first.Content, nil, nil
	}

	*states = append(*states, StateToolDispatch)
	results := make([]tools.Result, 0, len(first.ToolCalls))
	followUp := append(messages, llm.Message{
		Role:      llm.RoleAssistant,
		Content:   first.Content,
		ToolCalls: first.ToolCalls,
	})
	for _, call := range first.ToolCalls {
		result := r.registry.Dispatch(ctx, call)
		results = append(results, result)
		followUp = append(followUp, llm.Message{
			Role:       llm.RoleTool,
			ToolCallID: result.CallID,
			Content:    result.Content,
		})
	}

	*states = append(*states, StateSecondCall)
	second, err := r.provider.Generate(ctx, &llm.Request{
		Model:       r.model,
		Messages:    followUp,
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
	})
	if err != nil {
		return "", nil, fmt.Errorf("second model pass: %w", err)
	}

	return second.Content, results, nil
}

// buildContext assembles the system prompt, session history, and the
// current message.
func (r *Runner) buildContext(ctx context.Context, req *RunRequest) []llm.Message {
	messages := []llm.Message{{Role: llm.RoleSystem, Content: systemPrompt}}
	for _, m := range r.memory.Read(ctx, req.SessionID) {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: req.Message})
}
