package repository

import (
	"context"
	"errors"
	"strings"

	"mockforge/internal/apperrors"
	"mockforge/internal/memstore"
	"mockforge/internal/repo/domain"
)

// Memory is the in-memory Repository used by the fixture store.
type Memory struct {
	repos *memstore.Collection[*domain.Repository]
}

// NewMemory returns an empty in-memory repo repository.
func NewMemory() *Memory {
	return &Memory{
		repos: memstore.NewCollection(func(r *domain.Repository) string { return r.ID }),
	}
}

func (m *Memory) GetByID(ctx context.Context, id string) (*domain.Repository, error) {
	r, _ := m.repos.Get(id)
	return r, nil
}

func (m *Memory) GetByFullName(ctx context.Context, fullName string) (*domain.Repository, error) {
	for _, r := range m.repos.List() {
		if strings.EqualFold(r.FullName, fullName) {
			return r, nil
		}
	}
	return nil, nil
}

func (m *Memory) List(ctx context.Context) ([]*domain.Repository, error) {
	return m.repos.List(), nil
}

func (m *Memory) Create(ctx context.Context, r *domain.Repository) error {
	m.repos.Put(r.Clone())
	return nil
}

func (m *Memory) Update(ctx context.Context, id string, fn func(*domain.Repository) (*domain.Repository, error)) (*domain.Repository, error) {
	updated, err := m.repos.Update(id, func(cur *domain.Repository) (*domain.Repository, error) {
		return fn(cur.Clone())
	})
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, apperrors.NotFound("repository")
	}
	return updated, err
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.repos.Delete(id)
	return nil
}
