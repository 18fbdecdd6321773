package otel

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// TraceContextFrom extracts the trace and span IDs of the span in ctx.
// Both come back empty when no recording span is present, which is the
// normal case while tracing is disabled.
func TraceContextFrom(ctx context.Context) (traceID, spanID string) {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return "", ""
	}
	return span.SpanContext().TraceID().String(), span.SpanContext().SpanID().String()
}

// LogTraceFields stamps trace_id and span_id onto a zerolog event so chat
// turn logs can be joined to their traces. Attach it with .Func():
//
//	log.Info().Str("session_id", id).Func(otel.LogTraceFields(ctx)).Msg("agent_run_started")
//
// Nothing is added without a valid span, keeping untraced logs free of
// empty fields.
func LogTraceFields(ctx context.Context) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		traceID, spanID := TraceContextFrom(ctx)
		if traceID != "" {
			e.Str("trace_id", traceID)
		}
		if spanID != "" {
			e.Str("span_id", spanID)
		}
	}
}
