// Package guardrails implements the pre/post content-policy layer for the
// chatbot. Inbound messages run through an ordered list of checks where the
// first match determines the verdict; outbound text always passes through
// the output filter regardless of any earlier verdict.
package guardrails

import (
	"context"
	"regexp"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	hrbototel "github.com/pathways-2/Agent-Chatbot/internal/otel"
)

var tracer = hrbototel.Tracer("github.com/pathways-2/Agent-Chatbot/internal/guardrails")

// MaxMessageLength is the longest inbound message the engine accepts.
const MaxMessageLength = 1000

// Violation identifies which check blocked or annotated a message.
type Violation string

// Violation types, one per check in evaluation order.
const (
	ViolationProhibitedContent Violation = "prohibited_content"
	ViolationBulkRequest       Violation = "bulk_request"
	ViolationSensitiveTopic    Violation = "sensitive_topic"
	ViolationNonHRTopic        Violation = "non_hr_topic"
	ViolationLength            Violation = "length_violation"
	ViolationSuspiciousContent Violation = "suspicious_content"
)

// DisclaimerKind selects one of the fixed disclaimer suffixes.
type DisclaimerKind string

// Disclaimer kinds.
const (
	DisclaimerGeneral   DisclaimerKind = "general"
	DisclaimerPolicy    DisclaimerKind = "policy"
	DisclaimerSensitive DisclaimerKind = "sensitive"
)

// Verdict is the outcome of evaluating one inbound message. At most one
// violation is ever reported; the ordered check list short-circuits on the
// first match, so callers must not assume a cleared message is clean of
// later categories beyond what the full list already covers.
type Verdict struct {
	Allowed            bool
	Response           string
	RequiresDisclaimer bool
	DisclaimerKind     DisclaimerKind
	Violation          Violation
}

// Fixed refusal and redirect texts.
const (
	responseProhibited = "I'm sorry, but I cannot provide salary or compensation information as this is confidential. For questions about your own compensation, please contact HR directly or check your employee portal."
	responseBulk       = "I can't provide information about all employees at once for privacy reasons. Please ask about specific employees or use more targeted queries."
	responseNonHR      = "I'm designed to help with HR-related questions only. Please ask about company policies, employee information, benefits, or other HR topics. How can I assist you with HR matters today?"
	responseTooLong    = "Please keep your questions concise (under 1000 characters). How can I help you with a specific HR question?"
	responseSuspicious = "I detected potentially problematic content in your message. Please rephrase your HR question."
)

var disclaimers = map[DisclaimerKind]string{
	DisclaimerGeneral:   "\n\n*Please note: This information is for general guidance only. For specific HR matters, contact HR directly.*",
	DisclaimerPolicy:    "\n\n*Disclaimer: Policy information provided is for reference only. Always refer to the official employee handbook for authoritative policy details.*",
	DisclaimerSensitive: "\n\n*Important: For sensitive HR matters, please speak directly with HR personnel. This information should not be considered as official HR advice.*",
}

// severityByViolation tags violations for external monitoring.
var severityByViolation = map[Violation]string{
	ViolationProhibitedContent: "medium",
	ViolationBulkRequest:       "high",
	ViolationSensitiveTopic:    "low",
	ViolationNonHRTopic:        "low",
	ViolationSuspiciousContent: "high",
	ViolationLength:            "low",
}

// Severity returns the monitoring severity for a violation type.
// Unknown violations default to medium.
func Severity(v Violation) string {
	if s, ok := severityByViolation[v]; ok {
		return s
	}
	return "medium"
}

// Auditor records guardrail violations for external monitoring. Recording
// failures must never affect the verdict, so implementations log and move on.
type Auditor interface {
	RecordViolation(ctx context.Context, violation, severity, message string)
}

// check is one entry in the ordered rule table. The first check returning a
// non-nil Verdict wins; the list is a priority order, not independent rules.
type check struct {
	violation Violation
	eval      func(message string) *Verdict
}

// Engine evaluates inbound messages against the ordered check list and
// filters outbound text.
type Engine struct {
	prohibited []*regexp.Regexp
	bulk       []*regexp.Regexp
	sensitive  []*regexp.Regexp
	nonHR      []*regexp.Regexp
	suspicious []*regexp.Regexp
	checks     []check
	auditor    Auditor
}

// Option configures an Engine.
type Option func(*Engine)

// WithAuditor sets the violation sink. Nil disables audit recording.
func WithAuditor(a Auditor) Option {
	return func(e *Engine) { e.auditor = a }
}

// NewEngine creates a guardrail engine from the embedded rule lists.
func NewEngine(opts ...Option) (*Engine, error) {
	rf, err := DefaultRules()
	if err != nil {
		return nil, err
	}
	return NewEngineFromRules(rf, opts...)
}

// MustNewEngine is like NewEngine but panics on error. The embedded rule
// lists are expected to always compile.
func MustNewEngine(opts ...Option) *Engine {
	e, err := NewEngine(opts...)
	if err != nil {
		panic("guardrails.NewEngine: " + err.Error())
	}
	return e
}

// NewEngineFromRules creates a guardrail engine from explicit rule lists.
func NewEngineFromRules(rf *RuleFile, opts ...Option) (*Engine, error) {
	e := &Engine{}
	var err error
	if e.prohibited, err = compileWordList(rf.ProhibitedWords); err != nil {
		return nil, err
	}
	if e.bulk, err = compilePatternList(rf.BulkRequestPatterns); err != nil {
		return nil, err
	}
	if e.sensitive, err = compileWordList(rf.SensitiveTopics); err != nil {
		return nil, err
	}
	if e.nonHR, err = compileWordList(rf.NonHRTopics); err != nil {
		return nil, err
	}
	if e.suspicious, err = compilePatternList(rf.SuspiciousPatterns); err != nil {
		return nil, err
	}

	// Evaluation order. Prohibited terms outrank bulk extraction, which
	// outranks the annotate-only sensitive check, and so on; reordering
	// changes which single reason a mixed message reports.
	e.checks = []check{
		{ViolationProhibitedContent, func(m string) *Verdict {
			if matchAny(e.prohibited, m) {
				return &Verdict{Allowed: false, Response: responseProhibited, Violation: ViolationProhibitedContent}
			}
			return nil
		}},
		{ViolationBulkRequest, func(m string) *Verdict {
			if matchAny(e.bulk, m) {
				return &Verdict{Allowed: false, Response: responseBulk, Violation: ViolationBulkRequest}
			}
			return nil
		}},
		{ViolationSensitiveTopic, func(m string) *Verdict {
			if matchAny(e.sensitive, m) {
				return &Verdict{
					Allowed:            true,
					RequiresDisclaimer: true,
					DisclaimerKind:     DisclaimerSensitive,
					Violation:          ViolationSensitiveTopic,
				}
			}
			return nil
		}},
		{ViolationNonHRTopic, func(m string) *Verdict {
			if matchAny(e.nonHR, m) {
				return &Verdict{Allowed: false, Response: responseNonHR, Violation: ViolationNonHRTopic}
			}
			return nil
		}},
		{ViolationLength, func(m string) *Verdict {
			if len(m) > MaxMessageLength {
				return &Verdict{Allowed: false, Response: responseTooLong, Violation: ViolationLength}
			}
			return nil
		}},
		{ViolationSuspiciousContent, func(m string) *Verdict {
			if matchAny(e.suspicious, m) {
				return &Verdict{Allowed: false, Response: responseSuspicious, Violation: ViolationSuspiciousContent}
			}
			return nil
		}},
	}

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Evaluate runs the ordered check list against an inbound message and
// returns the verdict of the first matching check. A message that clears
// every check is allowed with no response override.
func (e *Engine) Evaluate(ctx context.Context, message string) *Verdict {
	ctx, span := tracer.Start(ctx, "guardrails.evaluate")
	defer span.End()

	for _, c := range e.checks {
		v := c.eval(message)
		if v == nil {
			continue
		}
		span.SetAttributes(
			attribute.Bool("guardrail.allowed", v.Allowed),
			attribute.String("guardrail.violation", string(v.Violation)),
		)
		e.recordViolation(ctx, v.Violation, message)
		return v
	}

	span.SetAttributes(attribute.Bool("guardrail.allowed", true))
	return &Verdict{Allowed: true}
}

// recordViolation logs the violation and forwards it to the auditor.
// Neither path can alter the verdict.
func (e *Engine) recordViolation(ctx context.Context, v Violation, message string) {
	sev := Severity(v)
	log.Warn().
		Str("violation", string(v)).
		Str("severity", sev).
		Str("message", truncate(message, 200)).
		Msg("guardrail_violation")
	if e.auditor != nil {
		e.auditor.RecordViolation(ctx, string(v), sev, truncate(message, 200))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
