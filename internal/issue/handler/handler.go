// Package handler serves the issue and comment endpoints nested under a
// repository.
package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mockforge/internal/apperrors"
	"mockforge/internal/envelope"
	"mockforge/internal/issue/domain"
	issuerepo "mockforge/internal/issue/repository"
	"mockforge/internal/query"
	repodomain "mockforge/internal/repo/domain"
	reporepo "mockforge/internal/repo/repository"
	"mockforge/internal/server/middleware"
	userrepo "mockforge/internal/user/repository"
)

// Handler serves /repositories/{owner}/{name}/issues.
type Handler struct {
	issues issuerepo.Repository
	repos  reporepo.Repository
	users  userrepo.Repository
}

// New returns a Handler.
func New(issues issuerepo.Repository, repos reporepo.Repository, users userrepo.Repository) *Handler {
	return &Handler{issues: issues, repos: repos, users: users}
}

// Routes registers the issue endpoints on r (authenticated), expected to be
// mounted under /repositories/{owner}/{name}.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/issues", h.list)
	r.Post("/issues", h.create)
	r.Get("/issues/{number}", h.get)
	r.Patch("/issues/{number}", h.update)
	r.Get("/issues/{number}/comments", h.listComments)
	r.Post("/issues/{number}/comments", h.createComment)
}

// view is the wire shape of an issue: author and assignees rendered as
// usernames.
type view struct {
	*domain.Issue
	Author    string   `json:"author,omitempty"`
	Assignees []string `json:"assignees"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rp, err := h.repoFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	all, err := h.issues.ListByRepo(ctx, rp.ID)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	q := r.URL.Query()

	var preds []func(*domain.Issue) bool
	if s := q.Get("state"); s != "" {
		preds = append(preds, func(i *domain.Issue) bool { return string(i.State) == strings.ToLower(s) })
	}
	if labels := query.SplitCSV(q.Get("labels")); len(labels) > 0 {
		// One shared label is enough.
		preds = append(preds, func(i *domain.Issue) bool {
			return query.IntersectsFold(i.Labels, labels)
		})
	}
	if username := q.Get("assignee"); username != "" {
		id := h.userID(r, username)
		preds = append(preds, func(i *domain.Issue) bool {
			for _, a := range i.AssigneeIDs {
				if a == id {
					return true
				}
			}
			return false
		})
	}
	if username := q.Get("author"); username != "" {
		id := h.userID(r, username)
		preds = append(preds, func(i *domain.Issue) bool { return i.AuthorID == id })
	}
	if s := q.Get("search"); s != "" {
		preds = append(preds, func(i *domain.Issue) bool {
			return query.ContainsFold(i.Title, s) || query.ContainsFold(i.Body, s)
		})
	}
	filtered := query.Filter(all, preds...)

	// Newest first.
	query.SortStable(filtered, func(a, b *domain.Issue) bool { return a.Number > b.Number })

	page, total := query.Paginate(filtered, query.ParsePage(q))
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"issues":      h.views(r, page),
		"total_count": total,
	})
}

type createInput struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Labels    []string `json:"labels"`
	Assignees []string `json:"assignees"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rp, err := h.repoFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	var in createInput
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		envelope.WriteError(w, apperrors.ValidationField("title", "is required"))
		return
	}
	assigneeIDs, err := h.resolveAssignees(r, in.Assignees)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}

	now := time.Now().UTC()
	issue := &domain.Issue{
		ID:          uuid.New().String(),
		RepoID:      rp.ID,
		Title:       strings.TrimSpace(in.Title),
		Body:        in.Body,
		State:       domain.StateOpen,
		Labels:      normalizeLabels(in.Labels),
		AuthorID:    middleware.UserID(ctx),
		AssigneeIDs: assigneeIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := h.issues.Create(ctx, issue)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusCreated, map[string]any{"issue": h.view(r, created)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	issue, _, err := h.issueFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"issue": h.view(r, issue)})
}

type updateInput struct {
	Title     *string   `json:"title"`
	Body      *string   `json:"body"`
	State     *string   `json:"state"`
	Labels    *[]string `json:"labels"`
	Assignees *[]string `json:"assignees"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	issue, rp, err := h.issueFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	var in updateInput
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}
	if in.State != nil && !domain.State(*in.State).Valid() {
		envelope.WriteError(w, apperrors.ValidationField("state", "must be open or closed"))
		return
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		envelope.WriteError(w, apperrors.ValidationField("title", "must not be empty"))
		return
	}
	var assigneeIDs []string
	if in.Assignees != nil {
		if assigneeIDs, err = h.resolveAssignees(r, *in.Assignees); err != nil {
			envelope.WriteError(w, err)
			return
		}
	}

	updated, err := h.issues.Update(r.Context(), rp.ID, issue.Number, func(cur *domain.Issue) (*domain.Issue, error) {
		now := time.Now().UTC()
		if in.Title != nil {
			cur.Title = strings.TrimSpace(*in.Title)
		}
		if in.Body != nil {
			cur.Body = *in.Body
		}
		if in.Labels != nil {
			cur.Labels = normalizeLabels(*in.Labels)
		}
		if in.Assignees != nil {
			cur.AssigneeIDs = assigneeIDs
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
	envelope.WriteData(w, http.StatusOK, map[string]any{"issue": h.view(r, updated)})
}

func (h *Handler) listComments(w http.ResponseWriter, r *http.Request) {
	issue, _, err := h.issueFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	comments, err := h.issues.ListComments(r.Context(), issue.ID)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	type commentView struct {
		*domain.Comment
		Author string `json:"author,omitempty"`
	}
	views := make([]commentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, commentView{Comment: c, Author: h.username(r, c.AuthorID)})
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"comments": views, "total_count": len(views)})
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	issue, _, err := h.issueFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	var in struct {
		Body string `json:"body"`
	}
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}
	if strings.TrimSpace(in.Body) == "" {
		envelope.WriteError(w, apperrors.ValidationField("body", "is required"))
		return
	}
	c := &domain.Comment{
		ID:        uuid.New().String(),
		IssueID:   issue.ID,
		AuthorID:  middleware.UserID(r.Context()),
		Body:      in.Body,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.issues.CreateComment(r.Context(), c); err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusCreated, map[string]any{"comment": c})
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

func (h *Handler) issueFromPath(r *http.Request) (*domain.Issue, *repodomain.Repository, error) {
	rp, err := h.repoFromPath(r)
	if err != nil {
		return nil, nil, err
	}
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		return nil, nil, apperrors.NotFound("issue")
	}
	issue, err := h.issues.GetByNumber(r.Context(), rp.ID, number)
	if err != nil {
		return nil, nil, err
	}
	if issue == nil {
		return nil, nil, apperrors.NotFound("issue")
	}
	return issue, rp, nil
}

func (h *Handler) resolveAssignees(r *http.Request, usernames []string) ([]string, error) {
	ids := make([]string, 0, len(usernames))
	for _, name := range usernames {
		u, err := h.users.GetByUsername(r.Context(), name)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, apperrors.ValidationField("assignees", "unknown user "+name)
		}
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func (h *Handler) views(r *http.Request, issues []*domain.Issue) []view {
	out := make([]view, 0, len(issues))
	for _, i := range issues {
		out = append(out, h.view(r, i))
	}
	return out
}

func (h *Handler) view(r *http.Request, i *domain.Issue) view {
	assignees := make([]string, 0, len(i.AssigneeIDs))
	for _, id := range i.AssigneeIDs {
		if name := h.username(r, id); name != "" {
			assignees = append(assignees, name)
		}
	}
	return view{Issue: i, Author: h.username(r, i.AuthorID), Assignees: assignees}
}

// username resolves a user ID for display; unknown IDs render empty.
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

// userID resolves a username filter; unknown usernames match nothing.
func (h *Handler) userID(r *http.Request, username string) string {
	u, err := h.users.GetByUsername(r.Context(), username)
	if err != nil || u == nil {
		return "\x00missing"
	}
	return u.ID
}

func normalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" || seen[strings.ToLower(l)] {
			continue
		}
		seen[strings.ToLower(l)] = true
		out = append(out, l)
	}
	return out
}
