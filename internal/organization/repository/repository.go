package repository

import (
	"context"

	"mockforge/internal/organization/domain"
)

// Repository defines storage for organizations. Lookups return (nil, nil)
// when no organization matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Organization, error)
	List(ctx context.Context) ([]*domain.Organization, error)
	Create(ctx context.Context, o *domain.Organization) error
	Update(ctx context.Context, id string, fn func(*domain.Organization) (*domain.Organization, error)) (*domain.Organization, error)
}
