package repository

import (
	"context"
	"time"

	"mockforge/internal/session/domain"
)

// Repository defines storage for sessions. GetByID returns (nil, nil) when
// the session does not exist.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// ListActiveByUser returns the user's non-revoked sessions in creation order.
	ListActiveByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	// Create stores s as the user's current session, unmarking any previous
	// current session atomically.
	Create(ctx context.Context, s *domain.Session) error
	Revoke(ctx context.Context, id string) error
	// RevokeAllExcept revokes every active session of the user except keepID.
	RevokeAllExcept(ctx context.Context, userID, keepID string) error
	SetLastActive(ctx context.Context, id string, at time.Time) error
}
