package engine

import (
	"sync"

	"github.com/dicematch/server/internal/model"
)

// sessionHandle owns one session's state. All mutation of the embedded
// session happens with mu held, which serializes the two players'
// independent message streams into one consistent turn sequence.
// removed marks a torn-down session so operations racing with teardown
// fail with ErrSessionNotFound instead of mutating a dead session.
type sessionHandle struct {
	mu      sync.Mutex
	session *model.Session
	removed bool
}

// sessionStore keys live sessions by id. The outer lock guards the map
// only; per-session work runs under the handle's own lock so sessions
// progress independently.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[model.SessionID]*sessionHandle
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[model.SessionID]*sessionHandle)}
}

func (s *sessionStore) put(session *model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = &sessionHandle{session: session}
}

func (s *sessionStore) get(id model.SessionID) (*sessionHandle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.sessions[id]
	return h, ok
}

func (s *sessionStore) remove(id model.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// findByPlayer returns the handle of the session the given player is in.
func (s *sessionStore) findByPlayer(player model.PlayerID) (*sessionHandle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.sessions {
		if h.session.HasPlayer(player) {
			return h, true
		}
	}
	return nil, false
}

func (s *sessionStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
