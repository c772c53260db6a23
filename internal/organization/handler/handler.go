// Package handler serves the organization endpoints: profile, settings,
// members, audit logs, and analytics.
package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"mockforge/internal/apperrors"
	"mockforge/internal/audit"
	auditdomain "mockforge/internal/audit/domain"
	auditrepo "mockforge/internal/audit/repository"
	"mockforge/internal/envelope"
	issuerepo "mockforge/internal/issue/repository"
	memberdomain "mockforge/internal/membership/domain"
	memberrepo "mockforge/internal/membership/repository"
	"mockforge/internal/organization/domain"
	orgrepo "mockforge/internal/organization/repository"
	"mockforge/internal/query"
	repodomain "mockforge/internal/repo/domain"
	reporepo "mockforge/internal/repo/repository"
	rundomain "mockforge/internal/run/domain"
	runrepo "mockforge/internal/run/repository"
	"mockforge/internal/server/middleware"
	teamrepo "mockforge/internal/team/repository"
	userdomain "mockforge/internal/user/domain"
	userrepo "mockforge/internal/user/repository"
)

// Handler serves /organizations.
type Handler struct {
	orgs     orgrepo.Repository
	members  memberrepo.Repository
	teams    teamrepo.Repository
	users    userrepo.Repository
	repos    reporepo.Repository
	issues   issuerepo.Repository
	runs     runrepo.Repository
	auditLog auditrepo.Repository
	auditor  audit.AuditLogger
}

// New returns a Handler.
func New(
	orgs orgrepo.Repository,
	members memberrepo.Repository,
	teams teamrepo.Repository,
	users userrepo.Repository,
	repos reporepo.Repository,
	issues issuerepo.Repository,
	runs runrepo.Repository,
	auditLog auditrepo.Repository,
	auditor audit.AuditLogger,
) *Handler {
	return &Handler{
		orgs:     orgs,
		members:  members,
		teams:    teams,
		users:    users,
		repos:    repos,
		issues:   issues,
		runs:     runs,
		auditLog: auditLog,
		auditor:  auditor,
	}
}

// Routes registers the organization endpoints on r (authenticated).
func (h *Handler) Routes(r chi.Router) {
	r.Get("/organizations", h.list)
	r.Get("/organizations/{slug}", h.get)
	r.Patch("/organizations/{slug}/settings", h.updateSettings)
	r.Get("/organizations/{slug}/members", h.listMembers)
	r.Patch("/organizations/{slug}/members/{username}", h.updateMember)
	r.Delete("/organizations/{slug}/members/{username}", h.removeMember)
	r.Get("/organizations/{slug}/audit-logs", h.auditLogs)
	r.Get("/organizations/{slug}/analytics", h.analytics)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.orgs.List(r.Context())
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	page, total := query.Paginate(all, query.ParsePage(r.URL.Query()))
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"organizations": page,
		"total_count":   total,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"organization": org})
}

type settingsInput struct {
	Visibility              *string `json:"visibility"`
	MemberVisibility        *string `json:"memberVisibility"`
	AllowMemberRepositories *bool   `json:"allowMemberRepositories"`
	RequireTwoFactor        *bool   `json:"requireTwoFactor"`
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	if err := h.requireAdmin(r, org.ID); err != nil {
		envelope.WriteError(w, err)
		return
	}
	var in settingsInput
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}
	fields := map[string][]string{}
	if in.Visibility != nil && *in.Visibility != "public" && *in.Visibility != "private" {
		fields["visibility"] = append(fields["visibility"], "must be public or private")
	}
	if in.MemberVisibility != nil && *in.MemberVisibility != "public" && *in.MemberVisibility != "private" {
		fields["memberVisibility"] = append(fields["memberVisibility"], "must be public or private")
	}
	if len(fields) > 0 {
		envelope.WriteError(w, apperrors.Validation(fields))
		return
	}

	ctx := r.Context()
	updated, err := h.orgs.Update(ctx, org.ID, func(cur *domain.Organization) (*domain.Organization, error) {
		if in.Visibility != nil {
			cur.Settings.Visibility = *in.Visibility
		}
		if in.MemberVisibility != nil {
			cur.Settings.MemberVisibility = *in.MemberVisibility
		}
		if in.AllowMemberRepositories != nil {
			cur.Settings.AllowMemberRepositories = *in.AllowMemberRepositories
		}
		if in.RequireTwoFactor != nil {
			cur.Settings.RequireTwoFactor = *in.RequireTwoFactor
		}
		cur.UpdatedAt = time.Now().UTC()
		return cur, nil
	})
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	h.auditor.LogEvent(ctx, org.ID, middleware.UserID(ctx), "org.settings_updated", "organization", org.ID, nil)
	envelope.WriteData(w, http.StatusOK, map[string]any{"organization": updated})
}

// memberView joins a membership with its user for the wire shape.
type memberView struct {
	Username string                `json:"username"`
	Name     string                `json:"name"`
	Role     memberdomain.Role     `json:"role"`
	JoinedAt time.Time             `json:"joined_at"`
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	ctx := r.Context()
	memberships, err := h.members.ListByOrg(ctx, org.ID)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	views := make([]memberView, 0, len(memberships))
	for _, m := range memberships {
		u, err := h.users.GetByID(ctx, m.UserID)
		if err != nil {
			envelope.WriteError(w, err)
			return
		}
		if u == nil {
			continue
		}
		views = append(views, memberView{
			Username: u.Username,
			Name:     u.Name,
			Role:     m.Role,
			JoinedAt: m.CreatedAt,
		})
	}
	page, total := query.Paginate(views, query.ParsePage(r.URL.Query()))
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"members":     page,
		"total_count": total,
	})
}

func (h *Handler) updateMember(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	if err := h.requireAdmin(r, org.ID); err != nil {
		envelope.WriteError(w, err)
		return
	}
	var in struct {
		Role string `json:"role"`
	}
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}
	role := memberdomain.Role(in.Role)
	if !role.Valid() {
		envelope.WriteError(w, apperrors.ValidationField("role", "must be owner, admin, or member"))
		return
	}

	ctx := r.Context()
	m, u, err := h.memberFromPath(r, org.ID)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	if m.Role == memberdomain.RoleOwner && role != memberdomain.RoleOwner {
		last, err := h.lastOwner(r, org.ID)
		if err != nil {
			envelope.WriteError(w, err)
			return
		}
		if last {
			envelope.WriteError(w, apperrors.Conflict("cannot demote the last owner"))
			return
		}
	}

	updated, err := h.members.Update(ctx, m.ID, func(cur *memberdomain.Membership) (*memberdomain.Membership, error) {
		cur.Role = role
		return cur, nil
	})
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	h.auditor.LogEvent(ctx, org.ID, middleware.UserID(ctx), "member.role_changed", "user", u.ID,
		map[string]string{"role": string(role)})
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"member": memberView{Username: u.Username, Name: u.Name, Role: updated.Role, JoinedAt: updated.CreatedAt},
	})
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	if err := h.requireAdmin(r, org.ID); err != nil {
		envelope.WriteError(w, err)
		return
	}
	ctx := r.Context()
	m, u, err := h.memberFromPath(r, org.ID)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	if m.Role == memberdomain.RoleOwner {
		last, err := h.lastOwner(r, org.ID)
		if err != nil {
			envelope.WriteError(w, err)
			return
		}
		if last {
			envelope.WriteError(w, apperrors.Conflict("cannot remove the last owner"))
			return
		}
	}
	if err := h.members.Delete(ctx, m.ID); err != nil {
		envelope.WriteError(w, err)
		return
	}
	h.auditor.LogEvent(ctx, org.ID, middleware.UserID(ctx), "member.removed", "user", u.ID, nil)
	envelope.WriteData(w, http.StatusOK, map[string]any{"removed": true})
}

func (h *Handler) auditLogs(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	ctx := r.Context()
	all, err := h.auditLog.ListByOrg(ctx, org.ID)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	q := r.URL.Query()

	var preds []func(*auditdomain.AuditLog) bool
	if prefix := q.Get("event"); prefix != "" {
		preds = append(preds, func(e *auditdomain.AuditLog) bool {
			return strings.HasPrefix(e.Event, prefix)
		})
	}
	if actor := q.Get("actor"); actor != "" {
		u, err := h.users.GetByUsername(ctx, actor)
		id := ""
		if err == nil && u != nil {
			id = u.ID
		}
		preds = append(preds, func(e *auditdomain.AuditLog) bool { return id != "" && e.ActorID == id })
	}
	if from, ok := parseTime(q.Get("from")); ok {
		preds = append(preds, func(e *auditdomain.AuditLog) bool { return !e.CreatedAt.Before(from) })
	}
	if to, ok := parseTime(q.Get("to")); ok {
		preds = append(preds, func(e *auditdomain.AuditLog) bool { return !e.CreatedAt.After(to) })
	}
	filtered := query.Filter(all, preds...)

	// Newest first.
	query.SortStable(filtered, func(a, b *auditdomain.AuditLog) bool { return a.CreatedAt.After(b.CreatedAt) })

	page, total := query.Paginate(filtered, query.ParsePage(q))
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"audit_logs":  page,
		"total_count": total,
	})
}

func (h *Handler) analytics(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	ctx := r.Context()

	memberships, err := h.members.ListByOrg(ctx, org.ID)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	teams, err := h.teams.ListByOrg(ctx, org.ID)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	allRepos, err := h.repos.List(ctx)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	orgRepos := query.Filter(allRepos, func(rp *repodomain.Repository) bool {
		return rp.OwnerType == repodomain.OwnerOrg && rp.OwnerID == org.ID
	})

	openIssues, closedIssues := 0, 0
	completedRuns, succeededRuns := 0, 0
	for _, rp := range orgRepos {
		issues, err := h.issues.ListByRepo(ctx, rp.ID)
		if err != nil {
			envelope.WriteError(w, err)
			return
		}
		for _, i := range issues {
			if i.State == "open" {
				openIssues++
			} else {
				closedIssues++
			}
		}
		runs, err := h.runs.ListByRepo(ctx, rp.ID)
		if err != nil {
			envelope.WriteError(w, err)
			return
		}
		for _, run := range runs {
			if run.Status != rundomain.StatusCompleted {
				continue
			}
			completedRuns++
			if run.Conclusion == rundomain.ConclusionSuccess {
				succeededRuns++
			}
		}
	}

	successRate := 0.0
	if completedRuns > 0 {
		successRate = float64(succeededRuns) / float64(completedRuns)
	}

	envelope.WriteData(w, http.StatusOK, map[string]any{
		"members":               len(memberships),
		"teams":                 len(teams),
		"repositories":          len(orgRepos),
		"issues_open":           openIssues,
		"issues_closed":         closedIssues,
		"workflow_success_rate": successRate,
	})
}

func (h *Handler) orgFromPath(r *http.Request) (*domain.Organization, error) {
	org, err := h.orgs.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperrors.NotFound("organization")
	}
	return org, nil
}

func (h *Handler) memberFromPath(r *http.Request, orgID string) (*memberdomain.Membership, *userdomain.User, error) {
	u, err := h.users.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		return nil, nil, apperrors.NotFound("member")
	}
	m, err := h.members.GetByOrgAndUser(r.Context(), orgID, u.ID)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, apperrors.NotFound("member")
	}
	return m, u, nil
}

// requireAdmin checks the caller holds an admin-capable role in the org.
func (h *Handler) requireAdmin(r *http.Request, orgID string) error {
	m, err := h.members.GetByOrgAndUser(r.Context(), orgID, middleware.UserID(r.Context()))
	if err != nil {
		return err
	}
	if m == nil || !m.Role.Admin() {
		return apperrors.Forbidden("requires organization admin")
	}
	return nil
}

func (h *Handler) lastOwner(r *http.Request, orgID string) (bool, error) {
	memberships, err := h.members.ListByOrg(r.Context(), orgID)
	if err != nil {
		return false, err
	}
	owners := 0
	for _, m := range memberships {
		if m.Role == memberdomain.RoleOwner {
			owners++
		}
	}
	return owners <= 1, nil
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
