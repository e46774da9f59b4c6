// Package domain defines the core types and interfaces for the assistant.
// All other packages depend on domain; domain depends on nothing.
package domain

import (
	"sync"
	"time"
)

// Session is the in-memory state of one running assistant. It is created
// at start-up and discarded at exit.
type Session struct {
	ID             string
	UserName       string
	BackendEnabled bool
	StartedAt      time.Time

	mu        sync.RWMutex
	reminders []string
	updatedAt time.Time
}

// NewSession creates a session for the given user.
func NewSession(id, userName string, backendEnabled bool) *Session {
	now := time.Now()
	return &Session{
		ID:             id,
		UserName:       userName,
		BackendEnabled: backendEnabled,
		StartedAt:      now,
		updatedAt:      now,
	}
}

// AddReminder appends a reminder. Reminders are never removed or reordered.
func (s *Session) AddReminder(task string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders = append(s.reminders, task)
	s.updatedAt = time.Now()
}

// ReminderList returns a copy of all reminders in insertion order.
func (s *Session) ReminderList() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.reminders))
	copy(out, s.reminders)
	return out
}

// ReminderCount returns the number of stored reminders.
func (s *Session) ReminderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reminders)
}

// UpdatedAt returns the time of the last mutation.
func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
