// Package memory holds per-session conversation history in process memory.
//
// Each session keeps a bounded tail of recent messages plus lightweight
// inferred context (last mentioned employee, current topic). Sessions expire
// after a period of inactivity and are reaped by a background sweep.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	hrbototel "github.com/pathways-2/Agent-Chatbot/internal/otel"
)

var tracer = hrbototel.Tracer("github.com/pathways-2/Agent-Chatbot/internal/memory")

// Defaults for session retention.
const (
	DefaultMaxMessages      = 10
	DefaultSessionTimeout   = 30 * time.Minute
	DefaultContextStaleness = 5 * time.Minute
)

// Role values for stored messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn. Messages are immutable once appended.
type Message struct {
	ID        string            `json:"id"`
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Context is the lightweight state inferred from recent user messages.
// It lets follow-up questions like "how many vacation days does she have"
// resolve without the caller restating the subject.
type Context struct {
	LastMentionedEmployee string `json:"last_mentioned_employee,omitempty"`
	CurrentTopic          string `json:"current_topic,omitempty"`
}

// SessionInfo is a read-only summary of one session.
type SessionInfo struct {
	SessionID    string    `json:"session_id"`
	MessageCount int       `json:"message_count"`
	LastActivity time.Time `json:"last_activity"`
	Context      Context   `json:"context"`
}

type session struct {
	messages     []Message
	context      Context
	topicSetAt   time.Time
	lastActivity time.Time
}

// Store is an in-memory session store safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session

	maxMessages      int
	sessionTimeout   time.Duration
	contextStaleness time.Duration
	now              func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithMaxMessages bounds the per-session history tail.
func WithMaxMessages(n int) Option {
	return func(s *Store) { s.maxMessages = n }
}

// WithSessionTimeout sets the inactivity window after which a session is
// eligible for sweeping.
func WithSessionTimeout(d time.Duration) Option {
	return func(s *Store) { s.sessionTimeout = d }
}

// WithContextStaleness sets how long inferred context survives without
// activity before it is discarded.
func WithContextStaleness(d time.Duration) Option {
	return func(s *Store) { s.contextStaleness = d }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty session store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions:         make(map[string]*session),
		maxMessages:      DefaultMaxMessages,
		sessionTimeout:   DefaultSessionTimeout,
		contextStaleness: DefaultContextStaleness,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append adds a message to the session, creating the session if needed.
// History is trimmed to the newest maxMessages entries. User messages also
// refresh the inferred context; when no topic update has arrived within the
// staleness window the inferred context is discarded, so a returning session
// does not inherit a subject from a long-finished exchange. A nil metadata
// map is fine.
func (s *Store) Append(ctx context.Context, sessionID, role, content string, metadata map[string]string) {
	_, span := tracer.Start(ctx, "memory.append",
		trace.WithAttributes(attribute.String("session_id", sessionID)))
	defer span.End()

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}

	// Staleness keys on the last topic update, not session activity, so a
	// busy conversation that drifted off-subject still sheds its context.
	if !sess.topicSetAt.IsZero() && now.Sub(sess.topicSetAt) > s.contextStaleness {
		sess.context = Context{}
		sess.topicSetAt = time.Time{}
	}

	sess.messages = append(sess.messages, Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: now,
		Metadata:  metadata,
	})
	if len(sess.messages) > s.maxMessages {
		sess.messages = sess.messages[len(sess.messages)-s.maxMessages:]
	}
	sess.lastActivity = now

	if role == RoleUser {
		if updateContext(&sess.context, content) {
			sess.topicSetAt = now
		}
	}
}

// Read returns a copy of the session's history, oldest first, and counts as
// session activity for sweep purposes. Unknown sessions yield an empty slice.
func (s *Store) Read(ctx context.Context, sessionID string) []Message {
	_, span := tracer.Start(ctx, "memory.read",
		trace.WithAttributes(attribute.String("session_id", sessionID)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return []Message{}
	}
	sess.lastActivity = s.now()
	out := make([]Message, len(sess.messages))
	copy(out, sess.messages)
	return out
}

// Context returns the inferred context for a session. Context whose topic
// has not been refreshed within the staleness window reads as empty even
// before the next Append discards it.
func (s *Store) Context(ctx context.Context, sessionID string) Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return Context{}
	}
	if !sess.topicSetAt.IsZero() && s.now().Sub(sess.topicSetAt) > s.contextStaleness {
		return Context{}
	}
	return sess.context
}

// Clear removes a session entirely. Clearing an unknown session is a no-op.
func (s *Store) Clear(ctx context.Context, sessionID string) {
	_, span := tracer.Start(ctx, "memory.clear",
		trace.WithAttributes(attribute.String("session_id", sessionID)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Info returns a summary of the session, or ok=false if it does not exist.
func (s *Store) Info(ctx context.Context, sessionID string) (SessionInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return SessionInfo{}, false
	}
	return SessionInfo{
		SessionID:    sessionID,
		MessageCount: len(sess.messages),
		LastActivity: sess.lastActivity,
		Context:      sess.context,
	}, true
}

// ActiveSessions returns the number of live sessions.
func (s *Store) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes every session idle longer than the session timeout and
// returns how many were removed.
func (s *Store) Sweep(ctx context.Context) int {
	_, span := tracer.Start(ctx, "memory.sweep")
	defer span.End()

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastActivity) > s.sessionTimeout {
			delete(s.sessions, id)
			removed++
		}
	}
	span.SetAttributes(attribute.Int("sessions_removed", removed))
	return removed
}

// FormattedHistory renders the session history as alternating role-prefixed
// lines, for inclusion in an LLM prompt.
func (s *Store) FormattedHistory(ctx context.Context, sessionID string) string {
	msgs := s.Read(ctx, sessionID)
	if len(msgs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, m := range msgs {
		label := "User"
		if m.Role == RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, m.Content)
	}
	return b.String()
}
