package repository

import (
	"context"
	"errors"

	"mockforge/internal/apperrors"
	"mockforge/internal/membership/domain"
	"mockforge/internal/memstore"
)

// Memory is the in-memory Repository used by the fixture store.
type Memory struct {
	memberships *memstore.Collection[*domain.Membership]
}

// NewMemory returns an empty in-memory membership repository.
func NewMemory() *Memory {
	return &Memory{
		memberships: memstore.NewCollection(func(mem *domain.Membership) string { return mem.ID }),
	}
}

func (m *Memory) GetByOrgAndUser(ctx context.Context, orgID, userID string) (*domain.Membership, error) {
	for _, mem := range m.memberships.List() {
		if mem.OrgID == orgID && mem.UserID == userID {
			return mem, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error) {
	out := make([]*domain.Membership, 0, 8)
	for _, mem := range m.memberships.List() {
		if mem.OrgID == orgID {
			out = append(out, mem)
		}
	}
	return out, nil
}

func (m *Memory) ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	out := make([]*domain.Membership, 0, 4)
	for _, mem := range m.memberships.List() {
		if mem.UserID == userID {
			out = append(out, mem)
		}
	}
	return out, nil
}

func (m *Memory) Create(ctx context.Context, mem *domain.Membership) error {
	m.memberships.Put(mem.Clone())
	return nil
}

func (m *Memory) Update(ctx context.Context, id string, fn func(*domain.Membership) (*domain.Membership, error)) (*domain.Membership, error) {
	updated, err := m.memberships.Update(id, func(cur *domain.Membership) (*domain.Membership, error) {
		return fn(cur.Clone())
	})
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, apperrors.NotFound("membership")
	}
	return updated, err
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.memberships.Delete(id)
	return nil
}
