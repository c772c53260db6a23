package repository

import (
	"context"

	"mockforge/internal/identity/domain"
)

// Repository defines storage for identities. Lookups return (nil, nil) when
// no identity matches.
type Repository interface {
	GetByUserAndProvider(ctx context.Context, userID string, provider domain.IdentityProvider) (*domain.Identity, error)
	GetByProviderSubject(ctx context.Context, provider domain.IdentityProvider, providerID string) (*domain.Identity, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Identity, error)
	Create(ctx context.Context, i *domain.Identity) error
}
