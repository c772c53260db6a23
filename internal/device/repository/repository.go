package repository

import (
	"context"

	"mockforge/internal/device/domain"
)

// Repository defines storage for devices. Lookups return (nil, nil) when no
// device matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Device, error)
	// GetByUserAndFingerprint returns the user's active device with the given
	// fingerprint.
	GetByUserAndFingerprint(ctx context.Context, userID, fingerprint string) (*domain.Device, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Device, error)
	Create(ctx context.Context, d *domain.Device) error
	Update(ctx context.Context, id string, fn func(*domain.Device) (*domain.Device, error)) (*domain.Device, error)
}
