package repository

import (
	"context"

	"mockforge/internal/repo/domain"
)

// Repository defines storage for code repositories. Lookups return
// (nil, nil) when no repository matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Repository, error)
	// GetByFullName matches "owner/name" case-insensitively.
	GetByFullName(ctx context.Context, fullName string) (*domain.Repository, error)
	List(ctx context.Context) ([]*domain.Repository, error)
	Create(ctx context.Context, r *domain.Repository) error
	Update(ctx context.Context, id string, fn func(*domain.Repository) (*domain.Repository, error)) (*domain.Repository, error)
	Delete(ctx context.Context, id string) error
}
