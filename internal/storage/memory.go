// Package storage keeps chat sessions for the lifetime of the process.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
)

// Compile-time interface check.
var _ domain.SessionStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory session store. Safe for concurrent access.
// Nothing is written to disk; sessions end with the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	log      *logger.Logger
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
		log:      log,
	}
}

// Save stores a session. Saving the same session again is a no-op
// refresh; a different session with a taken ID fails with
// domain.ErrAlreadyExists.
func (s *MemoryStore) Save(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[session.ID]; ok && existing != session {
		return fmt.Errorf("session %s: %w", session.ID, domain.ErrAlreadyExists)
	}
	s.log.Debug("saving session %s (user=%s, reminders=%d)", session.ID, session.UserName, session.ReminderCount())
	s.sessions[session.ID] = session
	return nil
}

// Load retrieves a session by ID.
func (s *MemoryStore) Load(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		s.log.Debug("session not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

// Delete removes a session by ID.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.sessions, id)
	s.log.Debug("deleted session %s", id)
	return nil
}

// List returns all sessions, oldest first.
func (s *MemoryStore) List(_ context.Context) ([]*domain.Session, error) {
	s.mu.RLock()
	out := make([]*domain.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	s.log.Debug("listing sessions, count=%d", len(out))
	return out, nil
}
