package conversation

import (
	"fmt"
	"sync"
)

// DefaultMaxHistory is the number of user/assistant turns retained per
// conversation in addition to the system turn.
const DefaultMaxHistory = 20

// UpstreamError reports a failed completion call. The user turn appended
// before the call is kept, so history still reflects what was asked.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream completion failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Stats summarizes a conversation. The system turn is not counted.
type Stats struct {
	TotalMessages     int
	UserMessages      int
	AssistantMessages int
}

// Store holds bounded per-user chat history and mediates completion
// requests. It is safe for concurrent use; Reply calls for the same
// user are serialized, different users never block each other on the
// completion call.
type Store struct {
	completer    Completer
	systemPrompt string
	maxHistory   int

	mu            sync.Mutex
	conversations map[int64][]Message
	inflight      map[int64]*sync.Mutex
}

// NewStore creates a conversation store. maxHistory <= 0 falls back to
// DefaultMaxHistory.
func NewStore(completer Completer, systemPrompt string, maxHistory int) *Store {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Store{
		completer:     completer,
		systemPrompt:  systemPrompt,
		maxHistory:    maxHistory,
		conversations: make(map[int64][]Message),
		inflight:      make(map[int64]*sync.Mutex),
	}
}

// GetOrCreate returns the history for userID, seeding a fresh
// conversation with the system turn on first access. The returned slice
// is the authoritative history for the user, not a detached copy.
func (s *Store) GetOrCreate(userID int64) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(userID)
}

func (s *Store) getOrCreateLocked(userID int64) []Message {
	conv, ok := s.conversations[userID]
	if !ok {
		conv = []Message{{Role: RoleSystem, Content: s.systemPrompt}}
		s.conversations[userID] = conv
	}
	return conv
}

// Append adds a turn to the user's conversation and trims it to the
// system turn plus the most recent maxHistory turns. The system turn is
// never evicted. Role must be RoleUser or RoleAssistant; the system
// turn is only ever written once, at seed time.
func (s *Store) Append(userID int64, role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(userID, role, content)
}

func (s *Store) appendLocked(userID int64, role Role, content string) {
	conv := s.getOrCreateLocked(userID)
	conv = append(conv, Message{Role: role, Content: content})
	if len(conv) > 1+s.maxHistory {
		trimmed := make([]Message, 0, 1+s.maxHistory)
		trimmed = append(trimmed, conv[0])
		trimmed = append(trimmed, conv[len(conv)-s.maxHistory:]...)
		conv = trimmed
	}
	s.conversations[userID] = conv
}

// Reset removes the user's conversation entirely, including the system
// turn. Resetting an absent user is a no-op. A later GetOrCreate seeds
// a fresh system turn.
func (s *Store) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, userID)
}

// Reply records the user's message, asks the completer for an assistant
// reply using the full trimmed history, records the reply, and returns
// it. On completer failure it returns an *UpstreamError; the user turn
// stays recorded so history reflects what was asked even when the call
// failed. Concurrent Reply calls for one user are serialized.
func (s *Store) Reply(userID int64, userMessage string) (string, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	s.appendLocked(userID, RoleUser, userMessage)
	conv := s.conversations[userID]
	snapshot := make([]Message, len(conv))
	copy(snapshot, conv)
	s.mu.Unlock()

	reply, err := s.completer.ChatCompletion(snapshot)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}

	s.mu.Lock()
	s.appendLocked(userID, RoleAssistant, reply)
	s.mu.Unlock()
	return reply, nil
}

// Stats counts the turns in the user's conversation, excluding the
// system turn. An absent user is seeded first, yielding all zeros.
func (s *Store) Stats(userID int64) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.getOrCreateLocked(userID)
	st := Stats{TotalMessages: len(conv) - 1}
	for _, m := range conv {
		switch m.Role {
		case RoleUser:
			st.UserMessages++
		case RoleAssistant:
			st.AssistantMessages++
		}
	}
	return st
}

func (s *Store) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.inflight[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.inflight[userID] = lock
	}
	return lock
}
