package repository

import (
	"context"

	"mockforge/internal/mfa/domain"
)

// Repository defines storage for per-user MFA factors. GetByUser returns
// (nil, nil) when the user has no factors enrolled.
type Repository interface {
	GetByUser(ctx context.Context, userID string) (*domain.Factors, error)
	Save(ctx context.Context, f *domain.Factors) error
	// Update atomically applies fn to the user's factors; used for backup
	// code consumption so two logins cannot spend the same code.
	Update(ctx context.Context, userID string, fn func(*domain.Factors) (*domain.Factors, error)) (*domain.Factors, error)
	Delete(ctx context.Context, userID string) error
}
