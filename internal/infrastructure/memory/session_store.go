package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sp3dr4/relink/internal/domain"
)

type storedSession struct {
	history   *domain.SessionHistory
	expiresAt time.Time
}

// SessionStore keeps sessions in process memory. Expired sessions are
// dropped when they are next touched.
type SessionStore struct {
	sessions map[string]storedSession
	mu       sync.RWMutex
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]storedSession),
		now:      time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (s *SessionStore) WithClock(now func() time.Time) *SessionStore {
	s.now = now
	return s
}

func (s *SessionStore) Load(ctx context.Context, id string) (*domain.SessionHistory, error) {
	s.mu.RLock()
	stored, exists := s.sessions[id]
	s.mu.RUnlock()

	if !exists {
		return nil, domain.ErrSessionNotFound
	}

	if !s.now().Before(stored.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}

	return stored.history.Clone(), nil
}

func (s *SessionStore) Save(ctx context.Context, session *domain.SessionHistory, ttl time.Duration) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidSessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = storedSession{
		history:   session.Clone(),
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) Close() error {
	return nil
}

func (s *SessionStore) HealthCheck(ctx context.Context) error {
	return nil
}
