// Package handler serves the team endpoints nested under an organization.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mockforge/internal/apperrors"
	"mockforge/internal/audit"
	"mockforge/internal/envelope"
	memberrepo "mockforge/internal/membership/repository"
	orgdomain "mockforge/internal/organization/domain"
	orgrepo "mockforge/internal/organization/repository"
	"mockforge/internal/query"
	"mockforge/internal/server/middleware"
	"mockforge/internal/team/domain"
	teamrepo "mockforge/internal/team/repository"
)

// Handler serves /organizations/{slug}/teams.
type Handler struct {
	teams   teamrepo.Repository
	orgs    orgrepo.Repository
	members memberrepo.Repository
	auditor audit.AuditLogger
}

// New returns a Handler.
func New(teams teamrepo.Repository, orgs orgrepo.Repository, members memberrepo.Repository, auditor audit.AuditLogger) *Handler {
	return &Handler{teams: teams, orgs: orgs, members: members, auditor: auditor}
}

// Routes registers the team endpoints on r (authenticated).
func (h *Handler) Routes(r chi.Router) {
	r.Get("/organizations/{slug}/teams", h.list)
	r.Post("/organizations/{slug}/teams", h.create)
	r.Get("/organizations/{slug}/teams/{id}", h.get)
	r.Patch("/organizations/{slug}/teams/{id}", h.update)
	r.Delete("/organizations/{slug}/teams/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	teams, err := h.teams.ListByOrg(r.Context(), org.ID)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	page, total := query.Paginate(teams, query.ParsePage(r.URL.Query()))
	envelope.WriteData(w, http.StatusOK, map[string]any{
		"teams":       page,
		"total_count": total,
	})
}

type teamInput struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Parent      *string `json:"parent"`
	Privacy     *string `json:"privacy"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	if err := h.requireAdmin(r, org.ID); err != nil {
		envelope.WriteError(w, err)
		return
	}
	var in teamInput
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}

	fields := map[string][]string{}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		fields["name"] = append(fields["name"], "is required")
	}
	slug := ""
	if in.Slug != nil {
		slug = *in.Slug
	} else if in.Name != nil {
		slug = slugify(*in.Name)
	}
	if !orgdomain.ValidSlug(slug) {
		fields["slug"] = append(fields["slug"], "must be lowercase alphanumeric with hyphens")
	}
	privacy := domain.PrivacyVisible
	if in.Privacy != nil {
		privacy = domain.Privacy(*in.Privacy)
		if !privacy.Valid() {
			fields["privacy"] = append(fields["privacy"], "must be visible or secret")
		}
	}
	if len(fields) > 0 {
		envelope.WriteError(w, apperrors.Validation(fields))
		return
	}

	ctx := r.Context()
	if existing, err := h.teams.GetByOrgAndSlug(ctx, org.ID, slug); err != nil {
		envelope.WriteError(w, err)
		return
	} else if existing != nil {
		envelope.WriteError(w, apperrors.Conflict("team slug already in use"))
		return
	}

	var parentID *string
	if in.Parent != nil && *in.Parent != "" {
		parent, err := h.teamInOrg(ctx, org.ID, *in.Parent)
		if err != nil {
			envelope.WriteError(w, apperrors.ValidationField("parent", "unknown team"))
			return
		}
		parentID = &parent.ID
	}

	now := time.Now().UTC()
	t := &domain.Team{
		ID:          uuid.New().String(),
		OrgID:       org.ID,
		Name:        strings.TrimSpace(*in.Name),
		Slug:        slug,
		Privacy:     privacy,
		ParentID:    parentID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if err := h.teams.Create(ctx, t); err != nil {
		envelope.WriteError(w, err)
		return
	}
	h.auditor.LogEvent(ctx, org.ID, middleware.UserID(ctx), "team.created", "team", t.ID, nil)
	envelope.WriteData(w, http.StatusCreated, map[string]any{"team": t})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	_, t, err := h.teamFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"team": t})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	org, t, err := h.teamFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	if err := h.requireAdmin(r, org.ID); err != nil {
		envelope.WriteError(w, err)
		return
	}
	var in teamInput
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}
	if in.Privacy != nil && !domain.Privacy(*in.Privacy).Valid() {
		envelope.WriteError(w, apperrors.ValidationField("privacy", "must be visible or secret"))
		return
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		envelope.WriteError(w, apperrors.ValidationField("name", "must not be empty"))
		return
	}

	ctx := r.Context()
	var newParentID *string
	if in.Parent != nil {
		if *in.Parent == "" {
			newParentID = nil // detach from parent
		} else {
			parent, err := h.teamInOrg(ctx, org.ID, *in.Parent)
			if err != nil {
				envelope.WriteError(w, apperrors.ValidationField("parent", "unknown team"))
				return
			}
			if cycle, err := h.wouldCycle(ctx, org.ID, t.ID, parent.ID); err != nil {
				envelope.WriteError(w, err)
				return
			} else if cycle {
				envelope.WriteError(w, apperrors.ValidationField("parent", "would create a cycle"))
				return
			}
			newParentID = &parent.ID
		}
	}

	updated, err := h.teams.Update(ctx, t.ID, func(cur *domain.Team) (*domain.Team, error) {
		if in.Name != nil {
			cur.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			cur.Description = *in.Description
		}
		if in.Privacy != nil {
			cur.Privacy = domain.Privacy(*in.Privacy)
		}
		if in.Parent != nil {
			cur.ParentID = newParentID
		}
		cur.UpdatedAt = time.Now().UTC()
		return cur, nil
	})
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	h.auditor.LogEvent(ctx, org.ID, middleware.UserID(ctx), "team.updated", "team", t.ID, nil)
	envelope.WriteData(w, http.StatusOK, map[string]any{"team": updated})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	org, t, err := h.teamFromPath(r)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	if err := h.requireAdmin(r, org.ID); err != nil {
		envelope.WriteError(w, err)
		return
	}
	ctx := r.Context()

	// Children are re-parented to the deleted team's parent so the forest
	// stays intact.
	siblings, err := h.teams.ListByOrg(ctx, org.ID)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	for _, child := range siblings {
		if child.ParentID == nil || *child.ParentID != t.ID {
			continue
		}
		if _, err := h.teams.Update(ctx, child.ID, func(cur *domain.Team) (*domain.Team, error) {
			cur.ParentID = t.ParentID
			cur.UpdatedAt = time.Now().UTC()
			return cur, nil
		}); err != nil {
			envelope.WriteError(w, err)
			return
		}
	}

	if err := h.teams.Delete(ctx, t.ID); err != nil {
		envelope.WriteError(w, err)
		return
	}
	h.auditor.LogEvent(ctx, org.ID, middleware.UserID(ctx), "team.deleted", "team", t.ID, nil)
	envelope.WriteData(w, http.StatusOK, map[string]any{"deleted": true})
}

// wouldCycle reports whether making newParentID the parent of teamID closes
// a loop in the org's team graph.
func (h *Handler) wouldCycle(ctx context.Context, orgID, teamID, newParentID string) (bool, error) {
	seen := map[string]bool{}
	cur := newParentID
	for cur != "" {
		if cur == teamID {
			return true, nil
		}
		if seen[cur] {
			// Pre-existing loop; treat as a cycle rather than spinning.
			return true, nil
		}
		seen[cur] = true
		t, err := h.teams.GetByID(ctx, cur)
		if err != nil {
			return false, err
		}
		if t == nil || t.OrgID != orgID || t.ParentID == nil {
			return false, nil
		}
		cur = *t.ParentID
	}
	return false, nil
}

func (h *Handler) orgFromPath(r *http.Request) (*orgdomain.Organization, error) {
	org, err := h.orgs.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperrors.NotFound("organization")
	}
	return org, nil
}

func (h *Handler) teamFromPath(r *http.Request) (*orgdomain.Organization, *domain.Team, error) {
	org, err := h.orgFromPath(r)
	if err != nil {
		return nil, nil, err
	}
	t, err := h.teamInOrg(r.Context(), org.ID, chi.URLParam(r, "id"))
	if err != nil {
		return nil, nil, err
	}
	return org, t, nil
}

// teamInOrg resolves a team by ID or slug within the org.
func (h *Handler) teamInOrg(ctx context.Context, orgID, idOrSlug string) (*domain.Team, error) {
	t, err := h.teams.GetByID(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if t == nil {
		if t, err = h.teams.GetByOrgAndSlug(ctx, orgID, idOrSlug); err != nil {
			return nil, err
		}
	}
	if t == nil || t.OrgID != orgID {
		return nil, apperrors.NotFound("team")
	}
	return t, nil
}

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

func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
