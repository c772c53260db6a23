package repository

import (
	"context"

	"mockforge/internal/pullrequest/domain"
)

// Repository defines storage for pull requests. GetByNumber returns
// (nil, nil) when the pull request does not exist.
type Repository interface {
	ListByRepo(ctx context.Context, repoID string) ([]*domain.PullRequest, error)
	GetByNumber(ctx context.Context, repoID string, number int) (*domain.PullRequest, error)
	// Create stores the pull request, assigning the repository's next number.
	Create(ctx context.Context, p *domain.PullRequest) (*domain.PullRequest, error)
	Update(ctx context.Context, repoID string, number int, fn func(*domain.PullRequest) (*domain.PullRequest, error)) (*domain.PullRequest, error)
}
