package repository

import (
	"context"
	"errors"
	"sync"

	"mockforge/internal/apperrors"
	"mockforge/internal/memstore"
	"mockforge/internal/run/domain"
)

// Memory is the in-memory Repository used by the fixture store. Log buffers
// live beside the run records: run updates are copy-on-write, but a log
// buffer is shared and append-only so readers keep their offsets across run
// status changes.
type Memory struct {
	runs *memstore.Collection[*domain.WorkflowRun]

	mu   sync.Mutex
	logs map[string]*domain.LogBuffer
}

// NewMemory returns an empty in-memory run repository.
func NewMemory() *Memory {
	return &Memory{
		runs: memstore.NewCollection(func(r *domain.WorkflowRun) string { return r.ID }),
		logs: make(map[string]*domain.LogBuffer),
	}
}

func (m *Memory) ListByRepo(ctx context.Context, repoID string) ([]*domain.WorkflowRun, error) {
	out := make([]*domain.WorkflowRun, 0, 16)
	for _, r := range m.runs.List() {
		if r.RepoID == repoID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) GetByID(ctx context.Context, id string) (*domain.WorkflowRun, error) {
	r, _ := m.runs.Get(id)
	return r, nil
}

func (m *Memory) Create(ctx context.Context, r *domain.WorkflowRun) error {
	m.runs.Put(r.Clone())
	return nil
}

func (m *Memory) Update(ctx context.Context, id string, fn func(*domain.WorkflowRun) (*domain.WorkflowRun, error)) (*domain.WorkflowRun, error) {
	updated, err := m.runs.Update(id, func(cur *domain.WorkflowRun) (*domain.WorkflowRun, error) {
		return fn(cur.Clone())
	})
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, apperrors.NotFound("workflow run")
	}
	return updated, err
}

func (m *Memory) AppendLogs(ctx context.Context, id string, lines ...string) error {
	if _, ok := m.runs.Get(id); !ok {
		return apperrors.NotFound("workflow run")
	}
	m.buffer(id).Append(lines...)
	return nil
}

func (m *Memory) ReadLogs(ctx context.Context, id string, offset int) ([]string, int, error) {
	if _, ok := m.runs.Get(id); !ok {
		return nil, 0, apperrors.NotFound("workflow run")
	}
	lines, next := m.buffer(id).ReadFrom(offset)
	return lines, next, nil
}

func (m *Memory) HasForRepo(ctx context.Context, repoID string) (bool, error) {
	for _, r := range m.runs.List() {
		if r.RepoID == repoID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) buffer(id string) *domain.LogBuffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.logs[id]
	if !ok {
		b = domain.NewLogBuffer()
		m.logs[id] = b
	}
	return b
}
