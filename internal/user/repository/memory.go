package repository

import (
	"context"
	"errors"
	"strings"

	"mockforge/internal/apperrors"
	"mockforge/internal/memstore"
	"mockforge/internal/user/domain"
)

// Memory is the in-memory Repository used by the fixture store.
type Memory struct {
	users *memstore.Collection[*domain.User]
}

// NewMemory returns an empty in-memory user repository.
func NewMemory() *Memory {
	return &Memory{
		users: memstore.NewCollection(func(u *domain.User) string { return u.ID }),
	}
}

func (m *Memory) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, _ := m.users.Get(id)
	return u, nil
}

func (m *Memory) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range m.users.List() {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users.List() {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *Memory) List(ctx context.Context) ([]*domain.User, error) {
	return m.users.List(), nil
}

func (m *Memory) Create(ctx context.Context, u *domain.User) error {
	m.users.Put(u.Clone())
	return nil
}

func (m *Memory) Update(ctx context.Context, id string, fn func(*domain.User) (*domain.User, error)) (*domain.User, error) {
	updated, err := m.users.Update(id, func(cur *domain.User) (*domain.User, error) {
		return fn(cur.Clone())
	})
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, apperrors.NotFound("user")
	}
	return updated, err
}
