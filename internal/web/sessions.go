package web

import (
	"sync"
	"time"

	"stock-assistant/internal/agents"
)

const (
	defaultSessionTTL  = 2 * time.Hour
	defaultMaxSessions = 1000
)

// view is what the page shows besides the transcript.
type view struct {
	Answer    string
	ImagePath string
	Error     string
	UpdatedAt time.Time
}

type webSession struct {
	session *agents.Session

	mu       sync.Mutex
	last     view
	lastUsed time.Time
}

func (w *webSession) setView(v view) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v.UpdatedAt = time.Now()
	w.last = v
}

func (w *webSession) view() view {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func (w *webSession) touch(now time.Time) {
	w.mu.Lock()
	w.lastUsed = now
	w.mu.Unlock()
}

func (w *webSession) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastUsed
}

// sessionStore keeps browser sessions in memory. Sessions idle for longer
// than ttl are dropped, and when max sessions exist the least recently used
// one is evicted to make room.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*webSession
	ttl      time.Duration
	max      int
	now      func() time.Time
}

func newSessionStore(ttl time.Duration, max int) *sessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if max <= 0 {
		max = defaultMaxSessions
	}
	return &sessionStore{
		sessions: make(map[string]*webSession),
		ttl:      ttl,
		max:      max,
		now:      time.Now,
	}
}

// get returns the live session for id, or nil.
func (s *sessionStore) get(id string) *webSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.sessions[id]
	if !ok {
		return nil
	}
	now := s.now()
	if now.Sub(ws.idleSince()) > s.ttl {
		delete(s.sessions, id)
		return nil
	}
	ws.touch(now)
	return ws
}

// create starts a new session and returns it.
func (s *sessionStore) create() *webSession {
	now := s.now()
	ws := &webSession{session: agents.NewSession(), lastUsed: now}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(now)
	for len(s.sessions) >= s.max {
		s.evictOldestLocked()
	}
	s.sessions[ws.session.ID] = ws
	return ws
}

// remove ends a session.
func (s *sessionStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(s.now())
	return len(s.sessions)
}

func (s *sessionStore) expireLocked(now time.Time) {
	for id, ws := range s.sessions {
		if now.Sub(ws.idleSince()) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func (s *sessionStore) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, ws := range s.sessions {
		if t := ws.idleSince(); oldestID == "" || t.Before(oldest) {
			oldestID, oldest = id, t
		}
	}
	delete(s.sessions, oldestID)
}
