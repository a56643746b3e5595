// Package session keeps issued admin sessions in process memory. Sessions do
// not survive a restart; admins simply log in again.
package session

import (
	"sync"
	"time"

	"github.com/example/talk-scheduler/internal/application"
)

// Store is a mutex-guarded token to session map with lazy expiry.
type Store struct {
	mu       sync.Mutex
	sessions map[string]application.Session
	now      func() time.Time
}

// NewStore builds an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]application.Session),
		now:      time.Now,
	}
}

// Put stores a session under its token, replacing any previous entry.
func (s *Store) Put(session application.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	s.pruneLocked()
}

// Get returns the session for a token if one exists. Expiry is checked by
// the caller; Get only reports presence.
func (s *Store) Get(token string) (application.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	return session, ok
}

// Delete discards the session for a token.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// pruneLocked drops expired sessions. Callers must hold the mutex.
func (s *Store) pruneLocked() {
	now := s.now()
	for token, session := range s.sessions {
		if !session.ExpiresAt.After(now) {
			delete(s.sessions, token)
		}
	}
}
