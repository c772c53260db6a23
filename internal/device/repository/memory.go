package repository

import (
	"context"
	"errors"

	"mockforge/internal/apperrors"
	"mockforge/internal/device/domain"
	"mockforge/internal/memstore"
)

// Memory is the in-memory Repository used by the fixture store.
type Memory struct {
	devices *memstore.Collection[*domain.Device]
}

// NewMemory returns an empty in-memory device repository.
func NewMemory() *Memory {
	return &Memory{
		devices: memstore.NewCollection(func(d *domain.Device) string { return d.ID }),
	}
}

func (m *Memory) GetByID(ctx context.Context, id string) (*domain.Device, error) {
	d, _ := m.devices.Get(id)
	return d, nil
}

func (m *Memory) GetByUserAndFingerprint(ctx context.Context, userID, fingerprint string) (*domain.Device, error) {
	for _, d := range m.devices.List() {
		if d.UserID == userID && d.Fingerprint == fingerprint && d.Active() {
			return d, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListByUser(ctx context.Context, userID string) ([]*domain.Device, error) {
	out := make([]*domain.Device, 0, 4)
	for _, d := range m.devices.List() {
		if d.UserID == userID && d.Active() {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *Memory) Create(ctx context.Context, d *domain.Device) error {
	m.devices.Put(d.Clone())
	return nil
}

func (m *Memory) Update(ctx context.Context, id string, fn func(*domain.Device) (*domain.Device, error)) (*domain.Device, error) {
	updated, err := m.devices.Update(id, func(cur *domain.Device) (*domain.Device, error) {
		return fn(cur.Clone())
	})
	if errors.Is(err, memstore.ErrNotFound) {
		return nil, apperrors.NotFound("device")
	}
	return updated, err
}
