package agents

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"stock-assistant/internal/models"
)

// Session is one user's conversation. Turns on a session run one at a time;
// history is append-only until Reset.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	messages []models.Message
}

// NewSession creates an empty session with a random ID.
func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
}

// Messages returns a copy of the history. It waits for a running turn to finish.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Len returns the number of messages.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Reset clears the history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// append and snapshot require s.mu.
func (s *Session) append(m models.Message) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	s.messages = append(s.messages, m)
}

func (s *Session) snapshot() []models.Message {
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}
