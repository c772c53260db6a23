package repository

import (
	"context"
	"sync"
	"time"

	"mockforge/internal/session/domain"
)

// Memory is the in-memory Repository used by the fixture store. It holds its
// own lock (instead of a memstore collection) because Create must unmark the
// previous current session and insert the new one in one step.
type Memory struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Session
	order []string
}

// NewMemory returns an empty in-memory session repository.
func NewMemory() *Memory {
	return &Memory{byID: make(map[string]*domain.Session)}
}

func (m *Memory) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byID[id], nil
}

func (m *Memory) ListActiveByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Session, 0, 4)
	for _, id := range m.order {
		s := m.byID[id]
		if s.UserID == userID && !s.Revoked() {
			out = append(out, s)
		}
	}
	return out, nil
}

// Create inserts s with Current=true and unmarks the user's previous current
// session under the same lock, keeping the one-current-per-user invariant.
func (m *Memory) Create(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		old := m.byID[id]
		if old.UserID == s.UserID && old.Current {
			c := old.Clone()
			c.Current = false
			m.byID[id] = c
		}
	}
	c := s.Clone()
	c.Current = true
	if _, exists := m.byID[c.ID]; !exists {
		m.order = append(m.order, c.ID)
	}
	m.byID[c.ID] = c
	return nil
}

func (m *Memory) Revoke(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok || s.Revoked() {
		return nil
	}
	c := s.Clone()
	now := time.Now().UTC()
	c.RevokedAt = &now
	m.byID[id] = c
	return nil
}

func (m *Memory) RevokeAllExcept(ctx context.Context, userID, keepID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for _, id := range m.order {
		s := m.byID[id]
		if s.UserID != userID || s.ID == keepID || s.Revoked() {
			continue
		}
		c := s.Clone()
		c.RevokedAt = &now
		m.byID[id] = c
	}
	return nil
}

func (m *Memory) SetLastActive(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.byID[id]; ok {
		c := s.Clone()
		c.LastActive = at
		m.byID[id] = c
	}
	return nil
}
