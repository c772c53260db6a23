package repository

import (
	"context"
	"testing"
	"time"

	"mockforge/internal/session/domain"
)

func newSession(id, userID string) *domain.Session {
	return &domain.Session{
		ID:        id,
		UserID:    userID,
		Current:   true,
		CreatedAt: time.Now().UTC(),
	}
}

func TestCreateKeepsSingleCurrentSession(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, id := range []string{"s1", "s2", "s3"} {
		if err := m.Create(ctx, newSession(id, "u1")); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	active, err := m.ListActiveByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListActiveByUser: %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("expected 3 active sessions, got %d", len(active))
	}
	current := 0
	for _, s := range active {
		if s.Current {
			current++
			if s.ID != "s3" {
				t.Fatalf("current session = %s, want s3", s.ID)
			}
		}
	}
	if current != 1 {
		t.Fatalf("expected exactly one current session, got %d", current)
	}
}

func TestCreateIsolatesUsers(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Create(ctx, newSession("s1", "u1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Create(ctx, newSession("s2", "u2")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	s1, err := m.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !s1.Current {
		t.Fatal("another user's login must not unmark u1's current session")
	}
}

func TestRevokeDoesNotMoveCurrent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, id := range []string{"s1", "s2"} {
		if err := m.Create(ctx, newSession(id, "u1")); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	if err := m.Revoke(ctx, "s1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	active, _ := m.ListActiveByUser(ctx, "u1")
	if len(active) != 1 || active[0].ID != "s2" || !active[0].Current {
		t.Fatalf("expected s2 to remain the current session, got %+v", active)
	}
}

func TestRevokeAllExcept(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for _, id := range []string{"s1", "s2", "s3"} {
		if err := m.Create(ctx, newSession(id, "u1")); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	if err := m.Create(ctx, newSession("other", "u2")); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	if err := m.RevokeAllExcept(ctx, "u1", "s2"); err != nil {
		t.Fatalf("RevokeAllExcept: %v", err)
	}
	active, _ := m.ListActiveByUser(ctx, "u1")
	if len(active) != 1 || active[0].ID != "s2" {
		t.Fatalf("expected only s2 active, got %+v", active)
	}
	otherActive, _ := m.ListActiveByUser(ctx, "u2")
	if len(otherActive) != 1 {
		t.Fatalf("other user's sessions must be untouched, got %+v", otherActive)
	}
}
