package repository

import (
	"context"

	"mockforge/internal/team/domain"
)

// Repository defines storage for teams. Lookups return (nil, nil) when no
// team matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	GetByOrgAndSlug(ctx context.Context, orgID, slug string) (*domain.Team, error)
	ListByOrg(ctx context.Context, orgID string) ([]*domain.Team, error)
	Create(ctx context.Context, t *domain.Team) error
	Update(ctx context.Context, id string, fn func(*domain.Team) (*domain.Team, error)) (*domain.Team, error)
	Delete(ctx context.Context, id string) error
}
