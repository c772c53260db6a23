package repository

import (
	"context"
	"strings"

	"mockforge/internal/identity/domain"
	"mockforge/internal/memstore"
)

// Memory is the in-memory Repository used by the fixture store.
type Memory struct {
	identities *memstore.Collection[*domain.Identity]
}

// NewMemory returns an empty in-memory identity repository.
func NewMemory() *Memory {
	return &Memory{
		identities: memstore.NewCollection(func(i *domain.Identity) string { return i.ID }),
	}
}

func (m *Memory) GetByUserAndProvider(ctx context.Context, userID string, provider domain.IdentityProvider) (*domain.Identity, error) {
	for _, i := range m.identities.List() {
		if i.UserID == userID && i.Provider == provider {
			return i, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetByProviderSubject(ctx context.Context, provider domain.IdentityProvider, providerID string) (*domain.Identity, error) {
	for _, i := range m.identities.List() {
		if i.Provider == provider && strings.EqualFold(i.ProviderID, providerID) {
			return i, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListByUser(ctx context.Context, userID string) ([]*domain.Identity, error) {
	out := make([]*domain.Identity, 0, 2)
	for _, i := range m.identities.List() {
		if i.UserID == userID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *Memory) Create(ctx context.Context, i *domain.Identity) error {
	m.identities.Put(i.Clone())
	return nil
}
