package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"mockforge/internal/issue/domain"
)

func TestCreateAssignsMonotonicNumbersPerRepo(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		created, err := m.Create(ctx, &domain.Issue{ID: fmt.Sprintf("a%d", i), RepoID: "repo-a", Title: "t"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if created.Number != i {
			t.Fatalf("repo-a issue %d got number %d", i, created.Number)
		}
	}

	// A second repository has its own sequence.
	created, err := m.Create(ctx, &domain.Issue{ID: "b1", RepoID: "repo-b", Title: "t"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Number != 1 {
		t.Fatalf("repo-b first issue got number %d, want 1", created.Number)
	}
}

func TestCreateConcurrentNumbersUnique(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	const n = 50

	var wg sync.WaitGroup
	numbers := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created, err := m.Create(ctx, &domain.Issue{ID: fmt.Sprintf("id-%d", i), RepoID: "repo", Title: "t"})
			if err != nil {
				t.Errorf("Create: %v", err)
				return
			}
			numbers <- created.Number
		}(i)
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int]bool, n)
	for num := range numbers {
		if seen[num] {
			t.Fatalf("number %d assigned twice", num)
		}
		seen[num] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d unique numbers, got %d", n, len(seen))
	}
}

func TestUpdateByNumberIsAtomic(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	created, err := m.Create(ctx, &domain.Issue{ID: "i1", RepoID: "repo", Title: "t", Labels: []string{"bug"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Update(ctx, "repo", created.Number, func(cur *domain.Issue) (*domain.Issue, error) {
				cur.Labels = append(cur.Labels, "x")
				return cur, nil
			})
			if err != nil {
				t.Errorf("Update: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := m.GetByNumber(ctx, "repo", created.Number)
	if err != nil {
		t.Fatalf("GetByNumber: %v", err)
	}
	if len(got.Labels) != 21 {
		t.Fatalf("expected 21 labels after 20 atomic appends, got %d", len(got.Labels))
	}
}
