package repository

import (
	"context"

	"mockforge/internal/membership/domain"
)

// Repository defines storage for org memberships. GetByOrgAndUser returns
// (nil, nil) when the user is not a member.
type Repository interface {
	GetByOrgAndUser(ctx context.Context, orgID, userID string) (*domain.Membership, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
	Create(ctx context.Context, mem *domain.Membership) error
	Update(ctx context.Context, id string, fn func(*domain.Membership) (*domain.Membership, error)) (*domain.Membership, error)
	Delete(ctx context.Context, id string) error
}
