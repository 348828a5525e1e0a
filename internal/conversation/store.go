package conversation

import "sync"

// Role identifies the author of a conversation entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one message in a conversation history.
type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// DefaultID partitions chat requests that carry no conversation id.
const DefaultID = "default"

// Store holds per-conversation message history in process memory. Histories
// are created lazily, trimmed to a sliding window, and never expire on their
// own; state does not survive a restart.
//
// One store-wide mutex guards the map. Upstream calls must never run while
// holding it; AppendExchange is atomic so a user/assistant pair can never
// interleave with another pair for the same conversation.
type Store struct {
	mu           sync.RWMutex
	histories    map[string][]Entry
	historyLimit int
}

const defaultHistoryLimit = 20

// NewStore creates a store retaining at most historyLimit entries per
// conversation (newest kept, oldest evicted).
func NewStore(historyLimit int) *Store {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &Store{
		histories:    make(map[string][]Entry),
		historyLimit: historyLimit,
	}
}

// AppendExchange atomically appends one user entry and one assistant entry,
// then trims the history to the newest entries within the window.
func (s *Store) AppendExchange(id, userText, assistantText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.histories[id],
		Entry{Role: RoleUser, Content: userText},
		Entry{Role: RoleAssistant, Content: assistantText},
	)
	if len(history) > s.historyLimit {
		trimmed := make([]Entry, s.historyLimit)
		copy(trimmed, history[len(history)-s.historyLimit:])
		history = trimmed
	}
	s.histories[id] = history
}

// Recent returns up to max of the newest entries in chronological order
// (oldest first). Unknown conversations yield an empty slice.
func (s *Store) Recent(id string, max int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.histories[id]
	if max > 0 && len(history) > max {
		history = history[len(history)-max:]
	}
	out := make([]Entry, len(history))
	copy(out, history)
	return out
}

// Clear removes the conversation entirely. Idempotent.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.histories, id)
}

// Len reports the number of stored entries for a conversation.
func (s *Store) Len(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.histories[id])
}
