package repository

import (
	"context"
	"errors"
	"strings"

	"mockforge/internal/apperrors"
	"mockforge/internal/memstore"
	"mockforge/internal/team/domain"
)

// Memory is the in-memory Repository used by the fixture store.
type Memory struct {
	teams *memstore.Collection[*domain.Team]
}

// NewMemory returns an empty in-memory team repository.
func NewMemory() *Memory {
	return &Memory{
		teams: memstore.NewCollection(func(t *domain.Team) string { return t.ID }),
	}
}

func (m *Memory) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	t, _ := m.teams.Get(id)
	return t, nil
}

func (m *Memory) GetByOrgAndSlug(ctx context.Context, orgID, slug string) (*domain.Team, error) {
	for _, t := range m.teams.List() {
		if t.OrgID == orgID && strings.EqualFold(t.Slug, slug) {
			return t, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListByOrg(ctx context.Context, orgID string) ([]*domain.Team, error) {
	out := make([]*domain.Team, 0, 8)
	for _, t := range m.teams.List() {
		if t.OrgID == orgID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Memory) Create(ctx context.Context, t *domain.Team) error {
	m.teams.Put(t.Clone())
	return nil
}

func (m *Memory) Update(ctx context.Context, id string, fn func(*domain.Team) (*domain.Team, error)) (*domain.Team, error) {
	updated, err := m.teams.Update(id, func(cur *domain.Team) (*domain.Team, error) {
		return fn(cur.Clone())
	})
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, apperrors.NotFound("team")
	}
	return updated, err
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.teams.Delete(id)
	return nil
}
