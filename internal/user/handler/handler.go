// Package handler serves the user profile endpoints.
package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"mockforge/internal/apperrors"
	"mockforge/internal/envelope"
	"mockforge/internal/server/middleware"
	"mockforge/internal/user/domain"
	userrepo "mockforge/internal/user/repository"
)

// Handler serves /user and /users.
type Handler struct {
	users userrepo.Repository
}

// New returns a Handler backed by the user repository.
func New(users userrepo.Repository) *Handler {
	return &Handler{users: users}
}

// Routes registers the user endpoints on r (authenticated).
func (h *Handler) Routes(r chi.Router) {
	r.Get("/user", h.current)
	r.Patch("/user", h.update)
	r.Get("/users/{username}", h.byUsername)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	if u == nil {
		envelope.WriteError(w, apperrors.NotFound("user"))
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"user": u})
}

// updateInput uses pointers so absent fields are left untouched.
type updateInput struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	Website  *string `json:"website"`
	Location *string `json:"location"`
	Company  *string `json:"company"`
	Email    *string `json:"email"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in updateInput
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}

	fields := map[string][]string{}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		fields["name"] = append(fields["name"], "must not be empty")
	}
	if in.Email != nil && !domain.ValidEmail(*in.Email) {
		fields["email"] = append(fields["email"], "must be a valid email address")
	}
	if in.Website != nil && *in.Website != "" &&
		!strings.HasPrefix(*in.Website, "http://") && !strings.HasPrefix(*in.Website, "https://") {
		fields["website"] = append(fields["website"], "must start with http:// or https://")
	}
	if len(fields) > 0 {
		envelope.WriteError(w, apperrors.Validation(fields))
		return
	}

	ctx := r.Context()
	if in.Email != nil {
		existing, err := h.users.GetByEmail(ctx, *in.Email)
		if err != nil {
			envelope.WriteError(w, err)
			return
		}
		if existing != nil && existing.ID != middleware.UserID(ctx) {
			envelope.WriteError(w, apperrors.Conflict("email already in use"))
			return
		}
	}

	updated, err := h.users.Update(ctx, middleware.UserID(ctx), func(u *domain.User) (*domain.User, error) {
		if in.Name != nil {
			u.Name = strings.TrimSpace(*in.Name)
		}
		if in.Bio != nil {
			u.Bio = *in.Bio
		}
		if in.Website != nil {
			u.Website = *in.Website
		}
		if in.Location != nil {
			u.Location = *in.Location
		}
		if in.Company != nil {
			u.Company = *in.Company
		}
		if in.Email != nil {
			u.Email = strings.ToLower(*in.Email)
		}
		u.UpdatedAt = time.Now().UTC()
		return u, nil
	})
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"user": updated})
}

func (h *Handler) byUsername(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	if u == nil {
		envelope.WriteError(w, apperrors.NotFound("user"))
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"user": u})
}
