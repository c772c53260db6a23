// Package handler serves the cross-entity search endpoint.
package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"mockforge/internal/apperrors"
	"mockforge/internal/envelope"
	issuedomain "mockforge/internal/issue/domain"
	issuerepo "mockforge/internal/issue/repository"
	"mockforge/internal/query"
	repodomain "mockforge/internal/repo/domain"
	reporepo "mockforge/internal/repo/repository"
	userdomain "mockforge/internal/user/domain"
	userrepo "mockforge/internal/user/repository"
)

// Handler serves /search.
type Handler struct {
	repos  reporepo.Repository
	issues issuerepo.Repository
	users  userrepo.Repository
}

// New returns a Handler.
func New(repos reporepo.Repository, issues issuerepo.Repository, users userrepo.Repository) *Handler {
	return &Handler{repos: repos, issues: issues, users: users}
}

// Routes registers the search endpoint on r (authenticated).
func (h *Handler) Routes(r chi.Router) {
	r.Get("/search", h.search)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("type") {
	case "", "repositories":
		h.searchRepositories(w, r)
	case "issues":
		h.searchIssues(w, r)
	case "users":
		h.searchUsers(w, r)
	default:
		envelope.WriteError(w, apperrors.ValidationField("type", "must be repositories, issues, or users"))
	}
}

func (h *Handler) searchRepositories(w http.ResponseWriter, r *http.Request) {
	all, err := h.repos.List(r.Context())
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	q := r.URL.Query()

	var preds []func(*repodomain.Repository) bool
	if s := q.Get("q"); s != "" {
		preds = append(preds, func(rp *repodomain.Repository) bool {
			return query.ContainsFold(rp.Name, s) || query.ContainsFold(rp.FullName, s) || query.ContainsFold(rp.Description, s)
		})
	}
	if lang := q.Get("language"); lang != "" {
		preds = append(preds, func(rp *repodomain.Repository) bool { return strings.EqualFold(rp.Language, lang) })
	}
	if v := q.Get("visibility"); v != "" {
		preds = append(preds, func(rp *repodomain.Repository) bool { return rp.Visibility() == strings.ToLower(v) })
	}
	if cmp, ok := query.ParseNumberCmp(q.Get("stars")); ok {
		preds = append(preds, func(rp *repodomain.Repository) bool { return cmp.Match(rp.StargazersCount) })
	}
	filtered := query.Filter(all, preds...)

	order := query.ParseOrder(q, query.Desc)
	var less func(a, b *repodomain.Repository) bool
	switch q.Get("sort") {
	case "stars":
		less = func(a, b *repodomain.Repository) bool { return a.StargazersCount < b.StargazersCount }
	case "created":
		less = func(a, b *repodomain.Repository) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "updated":
		less = func(a, b *repodomain.Repository) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}
	if less != nil {
		if order == query.Desc {
			inner := less
			less = func(a, b *repodomain.Repository) bool { return inner(b, a) }
		}
		query.SortStable(filtered, less)
	}

	page, total := query.Paginate(filtered, query.ParsePage(q))
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"repositories": page,
		"total_count":  total,
	})
}

func (h *Handler) searchIssues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	repos, err := h.repos.List(ctx)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	var all []*issuedomain.Issue
	repoNames := make(map[string]string, len(repos))
	for _, rp := range repos {
		repoNames[rp.ID] = rp.FullName
		issues, err := h.issues.ListByRepo(ctx, rp.ID)
		if err != nil {
			envelope.WriteError(w, err)
			return
		}
		all = append(all, issues...)
	}
	q := r.URL.Query()

	var preds []func(*issuedomain.Issue) bool
	if s := q.Get("q"); s != "" {
		preds = append(preds, func(i *issuedomain.Issue) bool {
			return query.ContainsFold(i.Title, s) || query.ContainsFold(i.Body, s)
		})
	}
	if s := q.Get("state"); s != "" {
		preds = append(preds, func(i *issuedomain.Issue) bool { return string(i.State) == strings.ToLower(s) })
	}
	if labels := query.SplitCSV(q.Get("labels")); len(labels) > 0 {
		preds = append(preds, func(i *issuedomain.Issue) bool {
			return query.IntersectsFold(i.Labels, labels)
		})
	}
	if username := q.Get("author"); username != "" {
		id := h.userID(r, username)
		preds = append(preds, func(i *issuedomain.Issue) bool { return i.AuthorID == id })
	}
	if username := q.Get("assignee"); username != "" {
		id := h.userID(r, username)
		preds = append(preds, func(i *issuedomain.Issue) bool {
			for _, a := range i.AssigneeIDs {
				if a == id {
					return true
				}
			}
			return false
		})
	}
	filtered := query.Filter(all, preds...)

	type issueHit struct {
		*issuedomain.Issue
		Repository string `json:"repository"`
	}
	page, total := query.Paginate(filtered, query.ParsePage(q))
	hits := make([]issueHit, 0, len(page))
	for _, i := range page {
		hits = append(hits, issueHit{Issue: i, Repository: repoNames[i.RepoID]})
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"issues":      hits,
		"total_count": total,
	})
}

func (h *Handler) searchUsers(w http.ResponseWriter, r *http.Request) {
	all, err := h.users.List(r.Context())
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	q := r.URL.Query()

	var preds []func(*userdomain.User) bool
	if s := q.Get("q"); s != "" {
		preds = append(preds, func(u *userdomain.User) bool {
			return query.ContainsFold(u.Username, s) || query.ContainsFold(u.Name, s)
		})
	}
	filtered := query.Filter(all, preds...)

	page, total := query.Paginate(filtered, query.ParsePage(q))
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"users":       page,
		"total_count": total,
	})
}

func (h *Handler) userID(r *http.Request, username string) string {
	u, err := h.users.GetByUsername(r.Context(), username)
	if err != nil || u == nil {
		return "\x00missing"
	}
	return u.ID
}
