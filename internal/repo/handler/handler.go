// Package handler serves the repository collection endpoints.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mockforge/internal/apperrors"
	"mockforge/internal/envelope"
	"mockforge/internal/query"
	"mockforge/internal/repo/domain"
	reporepo "mockforge/internal/repo/repository"
	"mockforge/internal/server/middleware"
	userrepo "mockforge/internal/user/repository"
)

// RefCheck reports whether anything (issues, runs) still references the
// repository; any hit turns a delete into an archive.
type RefCheck func(ctx context.Context, repoID string) (bool, error)

// Handler serves /repositories.
type Handler struct {
	repos reporepo.Repository
	users userrepo.Repository
	refs  []RefCheck
}

// New returns a Handler consulting refChecks on delete.
func New(repos reporepo.Repository, users userrepo.Repository, refChecks ...RefCheck) *Handler {
	return &Handler{repos: repos, users: users, refs: refChecks}
}

// CollectionRoutes registers list and create on r (authenticated).
func (h *Handler) CollectionRoutes(r chi.Router) {
	r.Get("/repositories", h.list)
	r.Post("/repositories", h.create)
}

// ItemRoutes registers the detail endpoints; mounted under
// /repositories/{owner}/{name} next to the issue and pull request routes.
func (h *Handler) ItemRoutes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.update)
	r.Delete("/", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.repos.List(r.Context())
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	q := r.URL.Query()

	var preds []func(*domain.Repository) bool
	if s := q.Get("search"); s != "" {
		preds = append(preds, func(rp *domain.Repository) bool {
			return query.ContainsFold(rp.Name, s) || query.ContainsFold(rp.Description, s)
		})
	}
	if v := q.Get("visibility"); v != "" {
		preds = append(preds, func(rp *domain.Repository) bool { return rp.Visibility() == strings.ToLower(v) })
	}
	if lang := q.Get("language"); lang != "" {
		preds = append(preds, func(rp *domain.Repository) bool { return strings.EqualFold(rp.Language, lang) })
	}
	if st := strings.ToLower(q.Get("state")); st != "" {
		preds = append(preds, func(rp *domain.Repository) bool {
			switch st {
			case "archived":
				return rp.Archived
			case "active":
				return !rp.Archived
			default:
				return false
			}
		})
	}
	filtered := query.Filter(all, preds...)

	sortRepos(filtered, q.Get("sort"), query.ParseOrder(q, query.Desc))

	page, total := query.Paginate(filtered, query.ParsePage(q))
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"repositories": page,
		"total_count":  total,
	})
}

func sortRepos(repos []*domain.Repository, key string, order query.Order) {
	var less func(a, b *domain.Repository) bool
	switch key {
	case "stars":
		less = func(a, b *domain.Repository) bool { return a.StargazersCount < b.StargazersCount }
	case "created":
		less = func(a, b *domain.Repository) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "updated":
		less = func(a, b *domain.Repository) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	default:
		return
	}
	if order == query.Desc {
		inner := less
		less = func(a, b *domain.Repository) bool { return inner(b, a) }
	}
	query.SortStable(repos, less)
}

type createInput struct {
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
	Language    string `json:"language"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}
	ctx := r.Context()

	if in.Owner == "" {
		// Default to the caller's username.
		u, err := h.users.GetByID(ctx, middleware.UserID(ctx))
		if err != nil {
			envelope.WriteError(w, err)
			return
		}
		if u == nil {
			envelope.WriteError(w, apperrors.Unauthorized())
			return
		}
		in.Owner = u.Username
	}

	fields := map[string][]string{}
	if strings.TrimSpace(in.Name) == "" || strings.ContainsAny(in.Name, "/ ") {
		fields["name"] = append(fields["name"], "must be non-empty without slashes or spaces")
	}
	if strings.TrimSpace(in.Owner) == "" || strings.Contains(in.Owner, "/") {
		fields["owner"] = append(fields["owner"], "must be non-empty without slashes")
	}
	if len(fields) > 0 {
		envelope.WriteError(w, apperrors.Validation(fields))
		return
	}

	fullName := in.Owner + "/" + in.Name
	if existing, err := h.repos.GetByFullName(ctx, fullName); err != nil {
		envelope.WriteError(w, err)
		return
	} else if existing != nil {
		envelope.WriteError(w, apperrors.Conflict("repository "+fullName+" already exists"))
		return
	}

	now := time.Now().UTC()
	rp := &domain.Repository{
		ID:            uuid.New().String(),
		Name:          in.Name,
		FullName:      fullName,
		Description:   in.Description,
		Private:       in.Private,
		Language:      in.Language,
		DefaultBranch: "main",
		OwnerID:       middleware.UserID(ctx),
		OwnerType:     domain.OwnerUser,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.repos.Create(ctx, rp); err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusCreated, map[string]any{"repository": rp})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	rp, err := h.lookup(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"repository": rp})
}

// settingsInput is the full settings document; partial updates are rejected
// so a multi-field update applies fully or not at all.
type settingsInput struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Private       *bool   `json:"private"`
	DefaultBranch *string `json:"default_branch"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	rp, err := h.lookup(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	var in settingsInput
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}

	fields := map[string][]string{}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" || strings.ContainsAny(*in.Name, "/ ") {
		fields["name"] = append(fields["name"], "is required and must not contain slashes or spaces")
	}
	if in.Description == nil {
		fields["description"] = append(fields["description"], "is required")
	}
	if in.Private == nil {
		fields["private"] = append(fields["private"], "is required")
	}
	if in.DefaultBranch == nil || strings.TrimSpace(*in.DefaultBranch) == "" {
		fields["default_branch"] = append(fields["default_branch"], "is required")
	}
	if len(fields) > 0 {
		envelope.WriteError(w, apperrors.Validation(fields))
		return
	}

	ctx := r.Context()
	owner, _, _ := domain.SplitFullName(rp.FullName)
	newFullName := owner + "/" + *in.Name
	if !strings.EqualFold(newFullName, rp.FullName) {
		if existing, err := h.repos.GetByFullName(ctx, newFullName); err != nil {
			envelope.WriteError(w, err)
			return
		} else if existing != nil {
			envelope.WriteError(w, apperrors.Conflict("repository "+newFullName+" already exists"))
			return
		}
	}

	updated, err := h.repos.Update(ctx, rp.ID, func(cur *domain.Repository) (*domain.Repository, error) {
		cur.Name = *in.Name
		cur.FullName = newFullName
		cur.Description = *in.Description
		cur.Private = *in.Private
		cur.DefaultBranch = *in.DefaultBranch
		cur.UpdatedAt = time.Now().UTC()
		return cur, nil
	})
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"repository": updated})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	rp, err := h.lookup(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	ctx := r.Context()

	referenced := false
	for _, check := range h.refs {
		hit, err := check(ctx, rp.ID)
		if err != nil {
			envelope.WriteError(w, err)
			return
		}
		if hit {
			referenced = true
			break
		}
	}

	if referenced {
		updated, err := h.repos.Update(ctx, rp.ID, func(cur *domain.Repository) (*domain.Repository, error) {
			cur.Archived = true
			cur.UpdatedAt = time.Now().UTC()
			return cur, nil
		})
		if err != nil {
			envelope.WriteError(w, err)
			return
		}
		envelope.WriteData(w, http.StatusOK, map[string]any{"repository": updated, "archived": true})
		return
	}

	if err := h.repos.Delete(ctx, rp.ID); err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"deleted": true})
}

// lookup resolves {owner}/{name} to a repository or a not-found error.
func (h *Handler) lookup(r *http.Request) (*domain.Repository, error) {
	fullName := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "name")
	rp, err := h.repos.GetByFullName(r.Context(), fullName)
	if err != nil {
		return nil, err
	}
	if rp == nil {
		return nil, apperrors.NotFound("repository")
	}
	return rp, nil
}
