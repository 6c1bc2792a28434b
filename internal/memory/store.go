// Package memory holds per-session conversation state: the message log the
// model sees, the compaction policy that keeps it inside the context budget,
// and a SQLite checkpoint store so sessions survive restarts.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashwink/warranty-agent/internal/llm"
)

// Roles a message can carry in the session log.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry in a session log. Usage carries the total token
// count the provider reported for the exchange that produced an assistant
// message; it stays zero for user and tool messages and for assistant
// messages that only request tool calls.
type Message struct {
	ID         string         `json:"id"`
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []llm.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolErr    bool           `json:"tool_err,omitempty"`
	Usage      int            `json:"usage,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// NewMessage builds a message with a fresh ID and timestamp.
func NewMessage(role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// IsFinal reports whether an assistant message closes a turn: it has real
// content and the provider attached usage metadata. Assistant messages that
// only carry tool calls are intermediate steps.
func (m Message) IsFinal() bool {
	return m.Role == RoleAssistant && m.Content != "" && m.Usage > 0
}

// Session is one customer conversation.
type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Session) copy() *Session {
	msgs := make([]Message, len(s.Messages))
	copy(msgs, s.Messages)
	return &Session{
		ID:        s.ID,
		UserID:    s.UserID,
		Messages:  msgs,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// Store manages sessions in memory. All accessors return copies so callers
// can mutate a turn's working state without holding the lock.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// GetOrCreate retrieves a session, creating it bound to userID on first
// contact. An existing session keeps its original user binding.
func (s *Store) GetOrCreate(id string, userID int) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		now := time.Now()
		sess = &Session{
			ID:        id,
			UserID:    userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.sessions[id] = sess
	}
	return sess.copy()
}

// Get retrieves a session copy, or nil when unknown.
func (s *Store) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	return sess.copy()
}

// Replace commits a turn's final message log back to the store.
func (s *Store) Replace(id string, msgs []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	sess.Messages = make([]Message, len(msgs))
	copy(sess.Messages, msgs)
	sess.UpdatedAt = time.Now()
}

// All returns copies of every session, for checkpointing.
func (s *Store) All() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.copy())
	}
	return out
}

// Restore replaces the store contents from a checkpoint.
func (s *Store) Restore(sessions []*Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]*Session, len(sessions))
	for _, sess := range sessions {
		s.sessions[sess.ID] = sess.copy()
	}
}
