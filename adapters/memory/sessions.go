package memory

import (
	"context"
	"sync"

	"github.com/lborres/pinto/core"
)

// SessionStore keeps sessions in process memory keyed by token hash.
// Expired entries linger until DeleteExpiredSessions runs.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
	opts     options
}

var _ core.SessionStore = (*SessionStore)(nil)

func NewSessionStore(opts ...Option) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*core.Session),
		opts:     buildOptions(opts),
	}
}

func (s *SessionStore) CreateSession(_ context.Context, session *core.Session) error {
	if session == nil || session.TokenHash == "" {
		return core.ErrInvalidSession
	}

	c := *session

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.TokenHash] = &c
	return nil
}

func (s *SessionStore) GetSessionByHash(_ context.Context, tokenHash string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[tokenHash]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	c := *session
	return &c, nil
}

// DeleteSessionByHash is a no-op for unknown hashes.
func (s *SessionStore) DeleteSessionByHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenHash)
	return nil
}

func (s *SessionStore) DeleteExpiredSessions(_ context.Context) (int, error) {
	now := s.opts.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for hash, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, hash)
			removed++
		}
	}
	return removed, nil
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
