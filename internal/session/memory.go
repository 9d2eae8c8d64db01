package session

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/gema-review-api/internal/models"
)

// MemoryStore keeps sessions in process memory; everything is lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore constructs an in-memory store. A zero ttl keeps sessions until logout.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]models.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.CreatedAt.IsZero() {
		session.CreatedAt = s.now()
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.lookupLocked(id)
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *MemoryStore) IncrementUsage(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.lookupLocked(id)
	if !ok {
		return 0, ErrSessionNotFound
	}
	session.DailyUsage++
	s.sessions[id] = session
	return session.DailyUsage, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) lookupLocked(id string) (models.Session, bool) {
	session, ok := s.sessions[id]
	if !ok {
		return models.Session{}, false
	}
	if s.ttl > 0 && s.now().Sub(session.CreatedAt) > s.ttl {
		delete(s.sessions, id)
		return models.Session{}, false
	}
	return session, true
}
