package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestStore(opts ...Option) (*Store, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clk.now)}, opts...)
	return NewStore(opts...), clk
}

func TestAppendAndRead(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.Append(ctx, "s1", RoleUser, "hello", nil)
	s.Append(ctx, "s1", RoleAssistant, "hi, how can I help?", nil)

	msgs := s.Read(ctx, "s1")
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
}

func TestMessagesCarryUniqueIDs(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.Append(ctx, "s1", RoleUser, "hello", nil)
	s.Append(ctx, "s1", RoleAssistant, "hi", nil)

	msgs := s.Read(ctx, "s1")
	require.Len(t, msgs, 2)
	assert.NotEmpty(t, msgs[0].ID)
	assert.NotEmpty(t, msgs[1].ID)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)
}

func TestAppendStoresMetadata(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.Append(ctx, "s1", RoleUser, "hello", map[string]string{"channel": "web"})
	s.Append(ctx, "s1", RoleAssistant, "hi", nil)

	msgs := s.Read(ctx, "s1")
	require.Len(t, msgs, 2)
	assert.Equal(t, "web", msgs[0].Metadata["channel"])
	assert.Nil(t, msgs[1].Metadata)
}

func TestReadUnknownSessionIsEmpty(t *testing.T) {
	s, _ := newTestStore()
	assert.Empty(t, s.Read(context.Background(), "nope"))
}

func TestHistoryKeepsNewestTail(t *testing.T) {
	s, _ := newTestStore(WithMaxMessages(10))
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		s.Append(ctx, "s1", RoleUser, fmt.Sprintf("message %d", i), nil)
	}

	msgs := s.Read(ctx, "s1")
	require.Len(t, msgs, 10)
	assert.Equal(t, "message 5", msgs[0].Content)
	assert.Equal(t, "message 14", msgs[9].Content)
}

func TestClear(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.Append(ctx, "s1", RoleUser, "hello", nil)
	s.Clear(ctx, "s1")
	assert.Empty(t, s.Read(ctx, "s1"))

	// Clearing again is a no-op.
	s.Clear(ctx, "s1")
	assert.Zero(t, s.ActiveSessions())
}

func TestSweepRemovesIdleSessions(t *testing.T) {
	s, clk := newTestStore(WithSessionTimeout(30 * time.Minute))
	ctx := context.Background()

	s.Append(ctx, "old", RoleUser, "hello", nil)
	clk.advance(20 * time.Minute)
	s.Append(ctx, "fresh", RoleUser, "hello", nil)
	clk.advance(15 * time.Minute)

	removed := s.Sweep(ctx)
	assert.Equal(t, 1, removed)
	assert.Empty(t, s.Read(ctx, "old"))
	assert.Len(t, s.Read(ctx, "fresh"), 1)
}

func TestReadCountsAsActivity(t *testing.T) {
	s, clk := newTestStore(WithSessionTimeout(30 * time.Minute))
	ctx := context.Background()

	s.Append(ctx, "s1", RoleUser, "hello", nil)

	// A session that is only being read stays alive.
	clk.advance(20 * time.Minute)
	s.Read(ctx, "s1")
	clk.advance(20 * time.Minute)

	assert.Zero(t, s.Sweep(ctx))
	assert.Len(t, s.Read(ctx, "s1"), 1)
}

func TestContextInference(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.Append(ctx, "s1", RoleUser, "How many vacation days does Sarah Johnson have?", nil)
	c := s.Context(ctx, "s1")
	assert.Equal(t, "Sarah Johnson", c.LastMentionedEmployee)
	assert.Equal(t, "vacation", c.CurrentTopic)

	// A follow-up without a name keeps the employee but can change topic.
	s.Append(ctx, "s1", RoleUser, "and when is her next performance review?", nil)
	c = s.Context(ctx, "s1")
	assert.Equal(t, "Sarah Johnson", c.LastMentionedEmployee)
	assert.Equal(t, "performance", c.CurrentTopic)
}

func TestContextTopicKeywords(t *testing.T) {
	tests := []struct {
		message string
		topic   string
	}{
		{"How much PTO do I have left?", "vacation"},
		{"Can I take some time off in July?", "vacation"},
		{"What is the standard hourly wage here?", "salary"},
		{"Tell me about compensation bands", "salary"},
		{"Do I have dental coverage?", "benefits"},
		{"Is vision included in my insurance?", "benefits"},
		{"What is my health plan?", "benefits"},
		{"What is the procedure for expense claims?", "policy"},
		{"Is there a guideline on remote work?", "policy"},
		{"When is my next rating due?", "performance"},
		{"How did my evaluation go?", "performance"},
		{"Good morning!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			s, _ := newTestStore()
			ctx := context.Background()
			s.Append(ctx, "s1", RoleUser, tt.message, nil)
			assert.Equal(t, tt.topic, s.Context(ctx, "s1").CurrentTopic)
		})
	}
}

func TestContextTopicOrder(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	// Vacation keywords outrank policy keywords.
	s.Append(ctx, "s1", RoleUser, "what does the policy say about vacation accrual", nil)
	assert.Equal(t, "vacation", s.Context(ctx, "s1").CurrentTopic)
}

func TestAssistantMessagesDoNotUpdateContext(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	s.Append(ctx, "s1", RoleAssistant, "Michael Chen has 12 vacation days left.", nil)
	c := s.Context(ctx, "s1")
	assert.Empty(t, c.LastMentionedEmployee)
	assert.Empty(t, c.CurrentTopic)
}

func TestContextStaleness(t *testing.T) {
	s, clk := newTestStore(WithContextStaleness(5 * time.Minute))
	ctx := context.Background()

	s.Append(ctx, "s1", RoleUser, "tell me about Sarah Johnson's vacation", nil)
	require.Equal(t, "Sarah Johnson", s.Context(ctx, "s1").LastMentionedEmployee)

	clk.advance(6 * time.Minute)

	// Stale context reads as empty.
	assert.Equal(t, Context{}, s.Context(ctx, "s1"))

	// The next message starts from a clean context; history survives.
	s.Append(ctx, "s1", RoleUser, "what about benefits", nil)
	c := s.Context(ctx, "s1")
	assert.Empty(t, c.LastMentionedEmployee)
	assert.Equal(t, "benefits", c.CurrentTopic)
	assert.Len(t, s.Read(ctx, "s1"), 2)
}

func TestContextStalenessKeyedToTopicUpdates(t *testing.T) {
	s, clk := newTestStore(WithContextStaleness(5 * time.Minute))
	ctx := context.Background()

	s.Append(ctx, "s1", RoleUser, "how does vacation accrual work", nil)
	require.Equal(t, "vacation", s.Context(ctx, "s1").CurrentTopic)

	// A busy conversation that never revisits the topic sheds it after the
	// staleness window, even though every append counts as activity.
	for i := 0; i < 6; i++ {
		clk.advance(2 * time.Minute)
		s.Append(ctx, "s1", RoleUser, "thanks, and one more thing", nil)
	}

	assert.Equal(t, Context{}, s.Context(ctx, "s1"))

	// Revisiting the topic restarts the window.
	s.Append(ctx, "s1", RoleUser, "back to vacation plans", nil)
	clk.advance(4 * time.Minute)
	assert.Equal(t, "vacation", s.Context(ctx, "s1").CurrentTopic)
}

func TestInfo(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, ok := s.Info(ctx, "s1")
	assert.False(t, ok)

	s.Append(ctx, "s1", RoleUser, "hello", nil)
	info, ok := s.Info(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, "s1", info.SessionID)
	assert.Equal(t, 1, info.MessageCount)
	assert.False(t, info.LastActivity.IsZero())
}

func TestFormattedHistory(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	assert.Empty(t, s.FormattedHistory(ctx, "s1"))

	s.Append(ctx, "s1", RoleUser, "hello", nil)
	s.Append(ctx, "s1", RoleAssistant, "hi there", nil)

	got := s.FormattedHistory(ctx, "s1")
	assert.Equal(t, "User: hello\nAssistant: hi there\n", got)
}
