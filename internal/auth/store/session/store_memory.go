// Package session persists admin sessions keyed by the opaque cookie ID.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"baias/internal/auth/models"
	"baias/pkg/platform/sentinel"
)

// InMemorySessionStore keeps sessions in process memory. Sessions are lost on
// restart, which logs every admin out.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]models.Session
	clock    func() time.Time
}

// New returns an empty in-memory store.
func New() *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[uuid.UUID]models.Session),
		clock:    time.Now,
	}
}

// NewWithClock is New with an injected clock for expiry tests.
func NewWithClock(clock func() time.Time) *InMemorySessionStore {
	s := New()
	if clock != nil {
		s.clock = clock
	}
	return s
}

// Save creates or replaces the session.
func (s *InMemorySessionStore) Save(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

// FindByID returns a copy of the session, or sentinel.ErrNotFound when it is
// unknown or expired. Expired sessions are dropped on lookup.
func (s *InMemorySessionStore) FindByID(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if session.Expired(s.clock()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, sentinel.ErrNotFound
	}
	return &session, nil
}

// Delete removes the session. Deleting an unknown session is not an error.
func (s *InMemorySessionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// DeleteExpired sweeps expired sessions and returns how many were removed.
func (s *InMemorySessionStore) DeleteExpired(_ context.Context) (int, error) {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// StartCleanup sweeps expired sessions every interval until ctx is cancelled.
func (s *InMemorySessionStore) StartCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.DeleteExpired(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
