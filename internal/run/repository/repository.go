package repository

import (
	"context"

	"mockforge/internal/run/domain"
)

// Repository defines storage for workflow runs and their log streams.
// GetByID returns (nil, nil) when the run does not exist.
type Repository interface {
	ListByRepo(ctx context.Context, repoID string) ([]*domain.WorkflowRun, error)
	GetByID(ctx context.Context, id string) (*domain.WorkflowRun, error)
	Create(ctx context.Context, r *domain.WorkflowRun) error
	Update(ctx context.Context, id string, fn func(*domain.WorkflowRun) (*domain.WorkflowRun, error)) (*domain.WorkflowRun, error)
	// AppendLogs adds lines to the run's append-only log stream.
	AppendLogs(ctx context.Context, id string, lines ...string) error
	// ReadLogs returns log lines from offset and the offset to resume from.
	ReadLogs(ctx context.Context, id string, offset int) (lines []string, next int, err error)
	// HasForRepo reports whether the repository has any runs; drives the
	// archive-instead-of-delete decision.
	HasForRepo(ctx context.Context, repoID string) (bool, error)
}
