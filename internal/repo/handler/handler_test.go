package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"mockforge/internal/repo/domain"
	reporepo "mockforge/internal/repo/repository"
	"mockforge/internal/server/middleware"
	userdomain "mockforge/internal/user/domain"
	userrepo "mockforge/internal/user/repository"
)

type envelopeBody struct {
	Success          bool                `json:"success"`
	Data             map[string]any      `json:"data"`
	Error            string              `json:"error"`
	ValidationErrors map[string][]string `json:"validation_errors"`
}

func newTestRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithIdentity(req.Context(), "u-alice", "sess-1")
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.CollectionRoutes(r)
	r.Route("/repositories/{owner}/{name}", h.ItemRoutes)
	return r
}

func seedRepos(t *testing.T, repos *reporepo.Memory) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fixtures := []*domain.Repository{
		{ID: "r1", Name: "webapp", FullName: "acme/webapp", Description: "frontend", Language: "JavaScript", StargazersCount: 100, DefaultBranch: "main", CreatedAt: base, UpdatedAt: base.Add(time.Hour)},
		{ID: "r2", Name: "pipeline", FullName: "acme/pipeline", Description: "etl", Language: "Python", Private: true, StargazersCount: 50, DefaultBranch: "main", CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(2 * time.Hour)},
		{ID: "r3", Name: "tools", FullName: "acme/tools", Description: "cli helpers", Language: "Go", StargazersCount: 75, DefaultBranch: "main", CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(3 * time.Hour)},
	}
	for _, rp := range fixtures {
		if err := repos.Create(context.Background(), rp); err != nil {
			t.Fatalf("seed repo: %v", err)
		}
	}
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelopeBody) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var env envelopeBody
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func TestListFiltersSortsAndPaginates(t *testing.T) {
	repos := reporepo.NewMemory()
	seedRepos(t, repos)
	router := newTestRouter(New(repos, userrepo.NewMemory()))

	tests := []struct {
		name      string
		target    string
		wantTotal float64
		wantFirst string
	}{
		{"all by stars desc", "/repositories?sort=stars&order=desc", 3, "acme/webapp"},
		{"all by stars asc", "/repositories?sort=stars&order=asc", 3, "acme/pipeline"},
		{"language filter", "/repositories?language=python", 1, "acme/pipeline"},
		{"visibility filter", "/repositories?visibility=public", 2, "acme/webapp"},
		{"search matches description", "/repositories?search=cli", 1, "acme/tools"},
		{"page beyond range keeps total", "/repositories?page=5&per_page=2", 3, ""},
		{"limit offset wins", "/repositories?sort=stars&order=desc&limit=1&offset=1&page=9", 3, "acme/tools"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := doRequest(t, router, http.MethodGet, tc.target, "")
			if rec.Code != http.StatusOK || !env.Success {
				t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
			}
			if got := env.Data["total_count"].(float64); got != tc.wantTotal {
				t.Fatalf("total_count = %v, want %v", got, tc.wantTotal)
			}
			items := env.Data["repositories"].([]any)
			if tc.wantFirst == "" {
				if len(items) != 0 {
					t.Fatalf("expected empty page, got %d items", len(items))
				}
				return
			}
			first := items[0].(map[string]any)
			if first["full_name"] != tc.wantFirst {
				t.Fatalf("first = %v, want %s", first["full_name"], tc.wantFirst)
			}
		})
	}
}

func TestListStateFilter(t *testing.T) {
	repos := reporepo.NewMemory()
	seedRepos(t, repos)
	if _, err := repos.Update(context.Background(), "r2", func(cur *domain.Repository) (*domain.Repository, error) {
		cur.Archived = true
		return cur, nil
	}); err != nil {
		t.Fatalf("archive r2: %v", err)
	}
	router := newTestRouter(New(repos, userrepo.NewMemory()))

	tests := []struct {
		name      string
		target    string
		wantTotal float64
	}{
		{"archived", "/repositories?state=archived", 1},
		{"active", "/repositories?state=active", 2},
		{"unknown state matches nothing", "/repositories?state=frozen", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := doRequest(t, router, http.MethodGet, tc.target, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
			}
			if got := env.Data["total_count"].(float64); got != tc.wantTotal {
				t.Fatalf("total_count = %v, want %v", got, tc.wantTotal)
			}
		})
	}
}

func TestCreateDuplicateFullNameConflicts(t *testing.T) {
	repos := reporepo.NewMemory()
	seedRepos(t, repos)
	users := userrepo.NewMemory()
	router := newTestRouter(New(repos, users))

	rec, env := doRequest(t, router, http.MethodPost, "/repositories",
		`{"name":"webapp","owner":"acme"}`)
	if rec.Code != http.StatusConflict || env.Success {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, _ = doRequest(t, router, http.MethodPost, "/repositories",
		`{"name":"newrepo","owner":"acme","language":"Go"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateDefaultsOwnerToCaller(t *testing.T) {
	repos := reporepo.NewMemory()
	users := userrepo.NewMemory()
	if err := users.Create(context.Background(), &userdomain.User{ID: "u-alice", Username: "alice", Email: "alice@example.com"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	router := newTestRouter(New(repos, users))

	rec, env := doRequest(t, router, http.MethodPost, "/repositories", `{"name":"sandbox"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := env.Data["repository"].(map[string]any)
	if created["full_name"] != "alice/sandbox" {
		t.Fatalf("full_name = %v, want alice/sandbox", created["full_name"])
	}
}

func TestUpdateRequiresFullSettings(t *testing.T) {
	repos := reporepo.NewMemory()
	seedRepos(t, repos)
	router := newTestRouter(New(repos, userrepo.NewMemory()))

	// Partial document: all-or-nothing means validation failure.
	rec, env := doRequest(t, router, http.MethodPut, "/repositories/acme/webapp",
		`{"name":"webapp"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(env.ValidationErrors) == 0 {
		t.Fatalf("expected validation_errors, got %s", rec.Body.String())
	}

	rec, env = doRequest(t, router, http.MethodPut, "/repositories/acme/webapp",
		`{"name":"webapp","description":"new desc","private":true,"default_branch":"trunk"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := env.Data["repository"].(map[string]any)
	if updated["default_branch"] != "trunk" || updated["private"] != true {
		t.Fatalf("settings not applied: %v", updated)
	}
}

func TestDeleteArchivesWhenReferenced(t *testing.T) {
	repos := reporepo.NewMemory()
	seedRepos(t, repos)
	referenced := func(ctx context.Context, repoID string) (bool, error) {
		return repoID == "r1", nil
	}
	router := newTestRouter(New(repos, userrepo.NewMemory(), referenced))

	// r1 is referenced: archive.
	rec, env := doRequest(t, router, http.MethodDelete, "/repositories/acme/webapp", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.Data["archived"] != true {
		t.Fatalf("expected archive, got %s", rec.Body.String())
	}
	got, _ := repos.GetByFullName(context.Background(), "acme/webapp")
	if got == nil || !got.Archived {
		t.Fatal("repository should remain, archived")
	}

	// r2 is not referenced: hard delete.
	rec, _ = doRequest(t, router, http.MethodDelete, "/repositories/acme/pipeline", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got, _ = repos.GetByFullName(context.Background(), "acme/pipeline")
	if got != nil {
		t.Fatal("repository should be gone")
	}

	rec, _ = doRequest(t, router, http.MethodDelete, "/repositories/acme/nothere", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
