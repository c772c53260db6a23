package repository

import (
	"context"

	"mockforge/internal/audit/domain"
	"mockforge/internal/memstore"
)

// Memory is the in-memory Repository used by the fixture store.
type Memory struct {
	entries *memstore.Collection[*domain.AuditLog]
}

// NewMemory returns an empty in-memory audit repository.
func NewMemory() *Memory {
	return &Memory{
		entries: memstore.NewCollection(func(e *domain.AuditLog) string { return e.ID }),
	}
}

func (m *Memory) Create(ctx context.Context, e *domain.AuditLog) error {
	m.entries.Put(e.Clone())
	return nil
}

func (m *Memory) ListByOrg(ctx context.Context, orgID string) ([]*domain.AuditLog, error) {
	out := make([]*domain.AuditLog, 0, 32)
	for _, e := range m.entries.List() {
		if e.OrgID == orgID {
			out = append(out, e)
		}
	}
	return out, nil
}
