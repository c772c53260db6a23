// Package handler serves the pull request endpoints nested under a
// repository.
package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"mockforge/internal/apperrors"
	"mockforge/internal/envelope"
	"mockforge/internal/pullrequest/domain"
	prrepo "mockforge/internal/pullrequest/repository"
	"mockforge/internal/query"
	repodomain "mockforge/internal/repo/domain"
	reporepo "mockforge/internal/repo/repository"
	userrepo "mockforge/internal/user/repository"
)

// Handler serves /repositories/{owner}/{name}/pulls.
type Handler struct {
	pulls prrepo.Repository
	repos reporepo.Repository
	users userrepo.Repository
}

// New returns a Handler.
func New(pulls prrepo.Repository, repos reporepo.Repository, users userrepo.Repository) *Handler {
	return &Handler{pulls: pulls, repos: repos, users: users}
}

// Routes registers the pull request endpoints on r (authenticated),
// expected to be mounted under /repositories/{owner}/{name}.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/pulls", h.list)
	r.Get("/pulls/{number}", h.get)
	r.Patch("/pulls/{number}", h.update)
	r.Post("/pulls/{number}/merge", h.merge)
}

type view struct {
	*domain.PullRequest
	Author string `json:"author,omitempty"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rp, err := h.repoFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	all, err := h.pulls.ListByRepo(r.Context(), rp.ID)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	q := r.URL.Query()

	var preds []func(*domain.PullRequest) bool
	if s := q.Get("state"); s != "" {
		preds = append(preds, func(p *domain.PullRequest) bool { return string(p.State) == strings.ToLower(s) })
	}
	if username := q.Get("author"); username != "" {
		id := h.userID(r, username)
		preds = append(preds, func(p *domain.PullRequest) bool { return p.AuthorID == id })
	}
	if d := q.Get("draft"); d != "" {
		want := d == "true"
		preds = append(preds, func(p *domain.PullRequest) bool { return p.Draft == want })
	}
	filtered := query.Filter(all, preds...)

	// Newest first.
	query.SortStable(filtered, func(a, b *domain.PullRequest) bool { return a.Number > b.Number })

	page, total := query.Paginate(filtered, query.ParsePage(q))
	views := make([]view, 0, len(page))
	for _, p := range page {
		views = append(views, view{PullRequest: p, Author: h.username(r, p.AuthorID)})
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"pull_requests": views,
		"total_count":   total,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	pr, _, err := h.prFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"pull_request": view{PullRequest: pr, Author: h.username(r, pr.AuthorID)},
	})
}

type updateInput struct {
	Title       *string `json:"title"`
	Body        *string `json:"body"`
	State       *string `json:"state"`
	Draft       *bool   `json:"draft"`
	ReviewState *string `json:"review_state"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	pr, rp, err := h.prFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	var in updateInput
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}
	if in.State != nil && *in.State != string(domain.StateOpen) && *in.State != string(domain.StateClosed) {
		envelope.WriteError(w, apperrors.ValidationField("state", "must be open or closed"))
		return
	}
	if in.ReviewState != nil && !domain.ReviewState(*in.ReviewState).Valid() {
		envelope.WriteError(w, apperrors.ValidationField("review_state", "must be pending, approved, or changes_requested"))
		return
	}

	updated, err := h.pulls.Update(r.Context(), rp.ID, pr.Number, func(cur *domain.PullRequest) (*domain.PullRequest, error) {
		if cur.Merged {
			// A merged PR is immutable apart from reads.
			return nil, apperrors.Conflict("pull request is merged")
		}
		now := time.Now().UTC()
		if in.Title != nil {
			if strings.TrimSpace(*in.Title) == "" {
				return nil, apperrors.ValidationField("title", "must not be empty")
			}
			cur.Title = strings.TrimSpace(*in.Title)
		}
		if in.Body != nil {
			cur.Body = *in.Body
		}
		if in.Draft != nil {
			cur.Draft = *in.Draft
		}
		if in.ReviewState != nil {
			cur.ReviewState = domain.ReviewState(*in.ReviewState)
		}
		if in.State != nil {
			next := domain.State(*in.State)
			if next != cur.State {
				cur.State = next
				if next == domain.StateClosed {
					cur.ClosedAt = &now
				} else {
					cur.ClosedAt = nil
				}
			}
		}
		cur.UpdatedAt = now
		return cur, nil
	})
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"pull_request": view{PullRequest: updated, Author: h.username(r, updated.AuthorID)},
	})
}

func (h *Handler) merge(w http.ResponseWriter, r *http.Request) {
	pr, rp, err := h.prFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	updated, err := h.pulls.Update(r.Context(), rp.ID, pr.Number, func(cur *domain.PullRequest) (*domain.PullRequest, error) {
		switch {
		case cur.Merged:
			return nil, apperrors.Conflict("pull request already merged")
		case cur.State == domain.StateClosed:
			return nil, apperrors.Conflict("pull request is closed")
		case cur.Draft:
			return nil, apperrors.Conflict("cannot merge a draft pull request")
		case cur.ReviewState != domain.ReviewApproved:
			return nil, apperrors.Conflict("pull request is not approved")
		}
		now := time.Now().UTC()
		cur.Merged = true
		cur.State = domain.StateClosed
		cur.MergedAt = &now
		cur.ClosedAt = &now
		cur.UpdatedAt = now
		return cur, nil
	})
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"pull_request": view{PullRequest: updated, Author: h.username(r, updated.AuthorID)},
	})
}

func (h *Handler) repoFromPath(r *http.Request) (*repodomain.Repository, error) {
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

func (h *Handler) prFromPath(r *http.Request) (*domain.PullRequest, *repodomain.Repository, error) {
	rp, err := h.repoFromPath(r)
	if err != nil {
		return nil, nil, err
	}
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		return nil, nil, apperrors.NotFound("pull request")
	}
	pr, err := h.pulls.GetByNumber(r.Context(), rp.ID, number)
	if err != nil {
		return nil, nil, err
	}
	if pr == nil {
		return nil, nil, apperrors.NotFound("pull request")
	}
	return pr, rp, nil
}

func (h *Handler) username(r *http.Request, id string) string {
	if id == "" {
		return ""
	}
	u, err := h.users.GetByID(r.Context(), id)
	if err != nil || u == nil {
		return ""
	}
	return u.Username
}

func (h *Handler) userID(r *http.Request, username string) string {
	u, err := h.users.GetByUsername(r.Context(), username)
	if err != nil || u == nil {
		return "\x00missing"
	}
	return u.ID
}
