package repository

import (
	"context"
	"sync"

	"mockforge/internal/apperrors"
	"mockforge/internal/memstore"
	"mockforge/internal/pullrequest/domain"
)

// Memory is the in-memory Repository used by the fixture store. Numbering
// works like the issue repository: monotonic per repo, assigned under a lock.
type Memory struct {
	mu      sync.Mutex
	nextNum map[string]int
	pulls   *memstore.Collection[*domain.PullRequest]
}

// NewMemory returns an empty in-memory pull request repository.
func NewMemory() *Memory {
	return &Memory{
		nextNum: make(map[string]int),
		pulls:   memstore.NewCollection(func(p *domain.PullRequest) string { return p.ID }),
	}
}

func (m *Memory) ListByRepo(ctx context.Context, repoID string) ([]*domain.PullRequest, error) {
	out := make([]*domain.PullRequest, 0, 16)
	for _, p := range m.pulls.List() {
		if p.RepoID == repoID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) GetByNumber(ctx context.Context, repoID string, number int) (*domain.PullRequest, error) {
	for _, p := range m.pulls.List() {
		if p.RepoID == repoID && p.Number == number {
			return p, nil
		}
	}
	return nil, nil
}

func (m *Memory) Create(ctx context.Context, p *domain.PullRequest) (*domain.PullRequest, error) {
	c := p.Clone()
	m.mu.Lock()
	n := m.nextNum[c.RepoID]
	if n == 0 {
		n = 1
	}
	m.nextNum[c.RepoID] = n + 1
	m.mu.Unlock()
	c.Number = n
	m.pulls.Put(c)
	return c, nil
}

func (m *Memory) Update(ctx context.Context, repoID string, number int, fn func(*domain.PullRequest) (*domain.PullRequest, error)) (*domain.PullRequest, error) {
	cur, err := m.GetByNumber(ctx, repoID, number)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, apperrors.NotFound("pull request")
	}
	return m.pulls.Update(cur.ID, func(stored *domain.PullRequest) (*domain.PullRequest, error) {
		return fn(stored.Clone())
	})
}
