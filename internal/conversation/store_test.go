package conversation

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

// scriptedCompleter returns queued replies in order, or fails when the
// next entry is an error.
type scriptedCompleter struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   [][]Message
}

func (c *scriptedCompleter) ChatCompletion(messages []Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make([]Message, len(messages))
	copy(snapshot, messages)
	c.calls = append(c.calls, snapshot)
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		if err != nil {
			return "", err
		}
	}
	if len(c.replies) == 0 {
		return "ok", nil
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

func TestGetOrCreate_SeedsSystemTurn(t *testing.T) {
	s := NewStore(&scriptedCompleter{}, "persona", 20)
	conv := s.GetOrCreate(42)
	if len(conv) != 1 {
		t.Fatalf("expected 1 seeded turn, got %d", len(conv))
	}
	if conv[0].Role != RoleSystem {
		t.Errorf("expected system role, got %q", conv[0].Role)
	}
	if conv[0].Content != "persona" {
		t.Errorf("expected persona content, got %q", conv[0].Content)
	}
}

func TestAppend_CapsLengthAndKeepsSystemTurn(t *testing.T) {
	const maxHistory = 20
	s := NewStore(&scriptedCompleter{}, "persona", maxHistory)

	for i := 1; i <= 30; i++ {
		role := RoleUser
		if i%2 == 0 {
			role = RoleAssistant
		}
		s.Append(7, role, fmt.Sprintf("t%d", i))

		conv := s.GetOrCreate(7)
		want := 1 + i
		if want > 1+maxHistory {
			want = 1 + maxHistory
		}
		if len(conv) != want {
			t.Fatalf("after append %d: expected length %d, got %d", i, want, len(conv))
		}
		if conv[0].Role != RoleSystem || conv[0].Content != "persona" {
			t.Fatalf("after append %d: system turn lost: %+v", i, conv[0])
		}
	}
}

func TestAppend_TrimKeepsMostRecent(t *testing.T) {
	s := NewStore(&scriptedCompleter{}, "persona", 20)
	for i := 1; i <= 25; i++ {
		s.Append(7, RoleUser, fmt.Sprintf("t%d", i))
	}
	conv := s.GetOrCreate(7)
	if len(conv) != 21 {
		t.Fatalf("expected 21 turns, got %d", len(conv))
	}
	for i, msg := range conv[1:] {
		want := fmt.Sprintf("t%d", i+6)
		if msg.Content != want {
			t.Fatalf("turn %d: expected %q, got %q", i+1, want, msg.Content)
		}
	}
}

func TestReset_DestroysConversation(t *testing.T) {
	s := NewStore(&scriptedCompleter{}, "persona", 20)
	s.Append(9, RoleUser, "hello")
	s.Append(9, RoleAssistant, "hi")

	s.Reset(9)
	s.Reset(9) // absent user is a no-op

	conv := s.GetOrCreate(9)
	if len(conv) != 1 {
		t.Fatalf("expected fresh seeded conversation, got %d turns", len(conv))
	}
	if conv[0].Role != RoleSystem {
		t.Errorf("expected system turn after reset, got %q", conv[0].Role)
	}
}

func TestStats_ExcludesSystemTurn(t *testing.T) {
	s := NewStore(&scriptedCompleter{}, "persona", 20)
	s.Append(3, RoleUser, "a")
	s.Append(3, RoleAssistant, "b")
	s.Append(3, RoleUser, "c")

	st := s.Stats(3)
	if st.TotalMessages != 3 {
		t.Errorf("expected 3 total messages, got %d", st.TotalMessages)
	}
	if st.UserMessages != 2 {
		t.Errorf("expected 2 user messages, got %d", st.UserMessages)
	}
	if st.AssistantMessages != 1 {
		t.Errorf("expected 1 assistant message, got %d", st.AssistantMessages)
	}
}

func TestStats_AbsentUserIsAllZero(t *testing.T) {
	s := NewStore(&scriptedCompleter{}, "persona", 20)
	st := s.Stats(1001)
	if st.TotalMessages != 0 || st.UserMessages != 0 || st.AssistantMessages != 0 {
		t.Fatalf("expected all-zero stats, got %+v", st)
	}
}

func TestReply_FailureKeepsUserTurn(t *testing.T) {
	cause := errors.New("rate limited")
	completer := &scriptedCompleter{errs: []error{cause}}
	s := NewStore(completer, "persona", 20)

	_, err := s.Reply(42, "hi")
	if err == nil {
		t.Fatal("expected error from failed completion")
	}
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected *UpstreamError, got %T: %v", err, err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}

	st := s.Stats(42)
	if st.UserMessages != 1 {
		t.Errorf("expected user turn kept after failure, got %d", st.UserMessages)
	}
	if st.AssistantMessages != 0 {
		t.Errorf("expected no assistant turn after failure, got %d", st.AssistantMessages)
	}
}

func TestReply_SuccessRoundTrip(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{"hello"}}
	s := NewStore(completer, "persona", 20)

	reply, err := s.Reply(42, "hi")
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if reply != "hello" {
		t.Errorf("expected reply %q, got %q", "hello", reply)
	}

	st := s.Stats(42)
	if st.TotalMessages != 2 || st.UserMessages != 1 || st.AssistantMessages != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}

	conv := s.GetOrCreate(42)
	if len(conv) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(conv))
	}
	if conv[1].Role != RoleUser || conv[1].Content != "hi" {
		t.Errorf("unexpected user turn: %+v", conv[1])
	}
	if conv[2].Role != RoleAssistant || conv[2].Content != "hello" {
		t.Errorf("unexpected assistant turn: %+v", conv[2])
	}
}

func TestReply_PassesFullOrderedHistory(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{"r1", "r2"}}
	s := NewStore(completer, "persona", 20)

	if _, err := s.Reply(42, "q1"); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if _, err := s.Reply(42, "q2"); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}

	if len(completer.calls) != 2 {
		t.Fatalf("expected 2 completion calls, got %d", len(completer.calls))
	}
	second := completer.calls[1]
	want := []Message{
		{Role: RoleSystem, Content: "persona"},
		{Role: RoleUser, Content: "q1"},
		{Role: RoleAssistant, Content: "r1"},
		{Role: RoleUser, Content: "q2"},
	}
	if len(second) != len(want) {
		t.Fatalf("expected %d messages in second call, got %d", len(want), len(second))
	}
	for i := range want {
		if second[i] != want[i] {
			t.Errorf("message %d: expected %+v, got %+v", i, want[i], second[i])
		}
	}
}

func TestReply_ConcurrentUsersDoNotInterfere(t *testing.T) {
	completer := &scriptedCompleter{}
	s := NewStore(completer, "persona", 20)

	var wg sync.WaitGroup
	for user := int64(1); user <= 8; user++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if _, err := s.Reply(id, fmt.Sprintf("msg-%d", i)); err != nil {
					t.Errorf("user %d: Reply failed: %v", id, err)
					return
				}
			}
		}(user)
	}
	wg.Wait()

	for user := int64(1); user <= 8; user++ {
		st := s.Stats(user)
		if st.UserMessages != 10 || st.AssistantMessages != 10 {
			t.Errorf("user %d: unexpected stats %+v", user, st)
		}
	}
}
