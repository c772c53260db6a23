package repository

import (
	"context"

	"mockforge/internal/issue/domain"
)

// Repository defines storage for issues and their comments. GetByNumber
// returns (nil, nil) when the issue does not exist.
type Repository interface {
	ListByRepo(ctx context.Context, repoID string) ([]*domain.Issue, error)
	GetByNumber(ctx context.Context, repoID string, number int) (*domain.Issue, error)
	// Create stores the issue, assigning the repository's next number.
	Create(ctx context.Context, i *domain.Issue) (*domain.Issue, error)
	Update(ctx context.Context, repoID string, number int, fn func(*domain.Issue) (*domain.Issue, error)) (*domain.Issue, error)
	// HasForRepo reports whether the repository has any issues; drives the
	// archive-instead-of-delete decision.
	HasForRepo(ctx context.Context, repoID string) (bool, error)

	ListComments(ctx context.Context, issueID string) ([]*domain.Comment, error)
	CreateComment(ctx context.Context, c *domain.Comment) error
}
