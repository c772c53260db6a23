package repository

import (
	"context"
	"errors"

	"mockforge/internal/apperrors"
	"mockforge/internal/memstore"
	"mockforge/internal/mfa/domain"
)

// Memory is the in-memory Repository used by the fixture store.
type Memory struct {
	factors *memstore.Collection[*domain.Factors]
}

// NewMemory returns an empty in-memory factors repository.
func NewMemory() *Memory {
	return &Memory{
		factors: memstore.NewCollection(func(f *domain.Factors) string { return f.UserID }),
	}
}

func (m *Memory) GetByUser(ctx context.Context, userID string) (*domain.Factors, error) {
	f, _ := m.factors.Get(userID)
	return f, nil
}

func (m *Memory) Save(ctx context.Context, f *domain.Factors) error {
	m.factors.Put(f.Clone())
	return nil
}

func (m *Memory) Update(ctx context.Context, userID string, fn func(*domain.Factors) (*domain.Factors, error)) (*domain.Factors, error) {
	updated, err := m.factors.Update(userID, func(cur *domain.Factors) (*domain.Factors, error) {
		return fn(cur.Clone())
	})
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, apperrors.NotFound("mfa factors")
	}
	return updated, err
}

func (m *Memory) Delete(ctx context.Context, userID string) error {
	m.factors.Delete(userID)
	return nil
}
