package repository

import (
	"context"
	"errors"
	"strings"

	"mockforge/internal/apperrors"
	"mockforge/internal/memstore"
	"mockforge/internal/organization/domain"
)

// Memory is the in-memory Repository used by the fixture store.
type Memory struct {
	orgs *memstore.Collection[*domain.Organization]
}

// NewMemory returns an empty in-memory organization repository.
func NewMemory() *Memory {
	return &Memory{
		orgs: memstore.NewCollection(func(o *domain.Organization) string { return o.ID }),
	}
}

func (m *Memory) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	o, _ := m.orgs.Get(id)
	return o, nil
}

func (m *Memory) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	for _, o := range m.orgs.List() {
		if strings.EqualFold(o.Slug, slug) {
			return o, nil
		}
	}
	return nil, nil
}

func (m *Memory) List(ctx context.Context) ([]*domain.Organization, error) {
	return m.orgs.List(), nil
}

func (m *Memory) Create(ctx context.Context, o *domain.Organization) error {
	m.orgs.Put(o.Clone())
	return nil
}

func (m *Memory) Update(ctx context.Context, id string, fn func(*domain.Organization) (*domain.Organization, error)) (*domain.Organization, error) {
	updated, err := m.orgs.Update(id, func(cur *domain.Organization) (*domain.Organization, error) {
		return fn(cur.Clone())
	})
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, apperrors.NotFound("organization")
	}
	return updated, err
}
