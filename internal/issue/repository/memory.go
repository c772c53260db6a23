package repository

import (
	"context"
	"sync"

	"mockforge/internal/apperrors"
	"mockforge/internal/issue/domain"
	"mockforge/internal/memstore"
)

// Memory is the in-memory Repository used by the fixture store. Issue
// numbering shares the lock with the issue map so numbers stay monotonic and
// gap-free per repository even under concurrent creates.
type Memory struct {
	mu       sync.Mutex
	nextNum  map[string]int // repoID -> next issue number
	issues   *memstore.Collection[*domain.Issue]
	comments *memstore.Collection[*domain.Comment]
}

// NewMemory returns an empty in-memory issue repository.
func NewMemory() *Memory {
	return &Memory{
		nextNum:  make(map[string]int),
		issues:   memstore.NewCollection(func(i *domain.Issue) string { return i.ID }),
		comments: memstore.NewCollection(func(c *domain.Comment) string { return c.ID }),
	}
}

func (m *Memory) ListByRepo(ctx context.Context, repoID string) ([]*domain.Issue, error) {
	out := make([]*domain.Issue, 0, 16)
	for _, i := range m.issues.List() {
		if i.RepoID == repoID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *Memory) GetByNumber(ctx context.Context, repoID string, number int) (*domain.Issue, error) {
	for _, i := range m.issues.List() {
		if i.RepoID == repoID && i.Number == number {
			return i, nil
		}
	}
	return nil, nil
}

func (m *Memory) Create(ctx context.Context, i *domain.Issue) (*domain.Issue, error) {
	c := i.Clone()
	m.mu.Lock()
	n := m.nextNum[c.RepoID]
	if n == 0 {
		n = 1
	}
	m.nextNum[c.RepoID] = n + 1
	m.mu.Unlock()
	c.Number = n
	m.issues.Put(c)
	return c, nil
}

func (m *Memory) Update(ctx context.Context, repoID string, number int, fn func(*domain.Issue) (*domain.Issue, error)) (*domain.Issue, error) {
	cur, err := m.GetByNumber(ctx, repoID, number)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, apperrors.NotFound("issue")
	}
	return m.issues.Update(cur.ID, func(stored *domain.Issue) (*domain.Issue, error) {
		return fn(stored.Clone())
	})
}

func (m *Memory) HasForRepo(ctx context.Context, repoID string) (bool, error) {
	for _, i := range m.issues.List() {
		if i.RepoID == repoID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) ListComments(ctx context.Context, issueID string) ([]*domain.Comment, error) {
	out := make([]*domain.Comment, 0, 8)
	for _, c := range m.comments.List() {
		if c.IssueID == issueID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) CreateComment(ctx context.Context, c *domain.Comment) error {
	m.comments.Put(c.Clone())
	return nil
}
