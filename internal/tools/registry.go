// Package tools provides a thread-safe registry for the functions the
// chatbot exposes to the model. Tools are registered by name and dispatched
// when a model response asks for them.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pathways-2/Agent-Chatbot/internal/llm"
	hrbototel "github.com/pathways-2/Agent-Chatbot/internal/otel"
)

var tracer = hrbototel.Tracer("github.com/pathways-2/Agent-Chatbot/internal/tools")

// Tool is the interface all chatbot tools implement. Execute receives the
// raw JSON argument object produced by the model and returns a JSON payload
// for the second model pass.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, args json.RawMessage) (json.RawMessage, error)
}

// Result is the outcome of dispatching one tool call. A failed call still
// produces a Result so the model can explain the failure instead of the
// request dying.
type Result struct {
	CallID   string
	ToolName string
	Content  string
	Success  bool
	Error    string
}

// Registry manages registered tools. Thread-safe for concurrent access.
// Listing preserves registration order so the model always sees the same
// tool catalog.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Re-registering a name replaces the tool but keeps
// its original position.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name()]; !exists {
		r.order = append(r.order, tool.Name())
	}
	r.tools[tool.Name()] = tool
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all registered tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.tools[name])
	}
	return result
}

// Definitions returns the tool catalog in the shape the model API expects.
func (r *Registry) Definitions() []llm.Tool {
	list := r.List()
	out := make([]llm.Tool, len(list))
	for i, t := range list {
		out[i] = llm.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		}
	}
	return out
}

// Dispatch executes one model tool call and always returns a Result: unknown
// tools, execution errors, and panics all become failed results rather than
// propagating.
func (r *Registry) Dispatch(ctx context.Context, call llm.ToolCall) (res Result) {
	ctx, span := tracer.Start(ctx, "tools.dispatch",
		trace.WithAttributes(
			attribute.String("tool.name", call.Name),
			attribute.String("tool.call_id", call.ID),
		))
	defer span.End()

	res = Result{CallID: call.ID, ToolName: call.Name}

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("tool %s panicked: %v", call.Name, rec)
			span.RecordError(err)
			log.Error().Str("tool", call.Name).Interface("panic", rec).Msg("tool_panic_recovered")
			res.Success = false
			res.Error = err.Error()
			res.Content = errorPayload(err)
		}
		span.SetAttributes(attribute.Bool("tool.success", res.Success))
	}()

	tool, ok := r.Get(call.Name)
	if !ok {
		err := fmt.Errorf("unknown tool %q", call.Name)
		res.Error = err.Error()
		res.Content = errorPayload(err)
		return res
	}

	out, err := tool.Execute(ctx, json.RawMessage(call.Arguments))
	if err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Str("tool", call.Name).Msg("tool_execution_failed")
		res.Error = err.Error()
		res.Content = errorPayload(err)
		return res
	}

	res.Success = true
	res.Content = string(out)
	return res
}

// errorPayload renders an error as the JSON object handed back to the model.
func errorPayload(err error) string {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(b)
}
