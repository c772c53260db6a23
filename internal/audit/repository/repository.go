package repository

import (
	"context"

	"mockforge/internal/audit/domain"
)

// Repository defines storage for audit log entries. Entries are append-only;
// there is no update or delete so the trail stays trustworthy.
type Repository interface {
	Create(ctx context.Context, e *domain.AuditLog) error
	// ListByOrg returns the org's entries in insertion order (oldest first).
	ListByOrg(ctx context.Context, orgID string) ([]*domain.AuditLog, error)
}
