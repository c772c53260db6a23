package repository

import (
	"context"

	"mockforge/internal/user/domain"
)

// Repository defines storage for users. Lookups return (nil, nil) when the
// user does not exist.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// Update atomically applies fn to the stored user. fn receives the
	// current value and returns the replacement.
	Update(ctx context.Context, id string, fn func(*domain.User) (*domain.User, error)) (*domain.User, error)
}
