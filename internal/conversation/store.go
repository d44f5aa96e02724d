package conversation

// Package conversation owns session lifecycle and per-session message
// history.
//
// Responsibilities:
//   - Create, look up, list, and delete conversation sessions
//   - Serialize appends per conversation id (per-id lock, not a global one)
//   - Trim history to the configured bound at assistant-turn boundaries
//
// Conversations are exclusively owned by the Store; callers only ever see
// snapshots, so no external code can mutate a live message list.

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kohanfikr/netai/internal/llm"
	"github.com/kohanfikr/netai/internal/metrics"
)

// Message is one entry in a conversation's append-only history.
type Message struct {
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AsLLM converts the stored message to the transport shape.
func (m Message) AsLLM() llm.Message {
	return llm.Message{Role: m.Role, Content: m.Content}
}

// Conversation is a snapshot of one session.
type Conversation struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageCount returns the number of messages in the snapshot.
func (c *Conversation) MessageCount() int { return len(c.Messages) }

// Info is the listing shape for a session.
type Info struct {
	ID           string    `json:"id"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// session pairs a conversation with its append lock. The lock serializes
// mutation of this one session; sessions never contend with each other.
type session struct {
	mu   sync.Mutex
	conv *Conversation
}

// Store holds all live sessions in memory for the process lifetime.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]*session
	maxHistory int
	log        *zap.Logger
}

// NewStore creates a store that trims histories to maxHistory messages.
func NewStore(maxHistory int, log *zap.Logger) *Store {
	return &Store{
		sessions:   make(map[string]*session),
		maxHistory: maxHistory,
		log:        log,
	}
}

// Create starts a fresh session with a generated id.
func (s *Store) Create() *Conversation {
	return s.CreateWithID(uuid.New().String())
}

// CreateWithID starts a fresh session under a caller-supplied id. This is
// how a remembered id is resumed after the original session is gone. An
// existing session under the same id is returned untouched.
func (s *Store) CreateWithID(id string) *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return snapshot(sess.conv)
	}

	conv := &Conversation{ID: id, CreatedAt: time.Now().UTC()}
	s.sessions[id] = &session{conv: conv}
	metrics.ActiveConversations.Set(float64(len(s.sessions)))
	s.log.Info("conversation created", zap.String("conversation_id", id))
	return snapshot(conv)
}

// Get returns a snapshot of the session, or false if absent. Absence is a
// defined result, not an error.
func (s *Store) Get(id string) (*Conversation, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return snapshot(sess.conv), true
}

// Delete removes a session. Returns true iff a session existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	metrics.ActiveConversations.Set(float64(len(s.sessions)))
	s.log.Info("conversation deleted", zap.String("conversation_id", id))
	return true
}

// List returns summaries of all live sessions.
func (s *Store) List() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Info, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sess.mu.Lock()
		out = append(out, Info{
			ID:           sess.conv.ID,
			MessageCount: len(sess.conv.Messages),
			CreatedAt:    sess.conv.CreatedAt,
		})
		sess.mu.Unlock()
	}
	return out
}

// Append adds one message to the session's history. Appends to the same
// session are serialized by its lock; appends to different sessions run in
// parallel. After an assistant turn the history is trimmed to the
// configured bound, discarding the oldest messages. Trimming never happens
// mid-turn.
func (s *Store) Append(id, role, content string, metadata map[string]string) bool {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.conv.Messages = append(sess.conv.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	})

	if role == llm.RoleAssistant && len(sess.conv.Messages) > s.maxHistory {
		excess := len(sess.conv.Messages) - s.maxHistory
		sess.conv.Messages = append([]Message(nil), sess.conv.Messages[excess:]...)
	}
	return true
}

// Window returns the trailing n messages of the session's history without
// mutating it.
func (s *Store) Window(id string, n int) []Message {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	msgs := sess.conv.Messages
	if n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return append([]Message(nil), msgs...)
}

func snapshot(c *Conversation) *Conversation {
	return &Conversation{
		ID:        c.ID,
		Messages:  append([]Message(nil), c.Messages...),
		CreatedAt: c.CreatedAt,
	}
}
