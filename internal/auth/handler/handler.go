// Package handler exposes the auth state machine over HTTP.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mockforge/internal/auth"
	"mockforge/internal/envelope"
	"mockforge/internal/server/middleware"
)

// Handler serves the /auth route group.
type Handler struct {
	svc *auth.Service
}

// New returns a Handler backed by the auth service.
func New(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

// PublicRoutes registers the unauthenticated auth endpoints on r.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/mfa/verify", h.verifyTOTP)
	r.Post("/mfa/backup-code", h.verifyBackupCode)
	r.Post("/webauthn/authenticate", h.verifyWebAuthn)
	r.Post("/sso/callback", h.ssoCallback)
}

// ProtectedRoutes registers the auth endpoints that require a session.
func (h *Handler) ProtectedRoutes(r chi.Router) {
	r.Post("/logout", h.logout)
	r.Get("/sessions", h.listSessions)
	r.Post("/sessions/revoke-all", h.revokeAllSessions)
	r.Post("/sessions/{id}/revoke", h.revokeSession)
	r.Delete("/sessions/{id}", h.revokeSession)
	r.Get("/devices", h.listDevices)
	r.Post("/devices/{id}/trust", h.trustDevice)
	r.Post("/devices/{id}/revoke", h.revokeDevice)
	r.Post("/mfa/enable", h.enableMFA)
	r.Post("/mfa/disable", h.disableMFA)
	r.Post("/webauthn/register", h.registerWebAuthn)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}
	u, err := h.svc.Register(r.Context(), in)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusCreated, map[string]any{"user": u})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}
	res, err := h.svc.Login(r.Context(), in.Email, in.Password, requestMeta(r))
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, res)
}

func (h *Handler) verifyTOTP(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TempToken      string `json:"tempToken"`
		Code           string `json:"code"`
		RememberDevice bool   `json:"rememberDevice"`
	}
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}
	res, err := h.svc.VerifyTOTP(r.Context(), in.TempToken, in.Code, in.RememberDevice, requestMeta(r))
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, res)
}

func (h *Handler) verifyBackupCode(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TempToken string `json:"tempToken"`
		Code      string `json:"code"`
	}
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}
	res, err := h.svc.VerifyBackupCode(r.Context(), in.TempToken, in.Code, requestMeta(r))
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, res)
}

func (h *Handler) verifyWebAuthn(w http.ResponseWriter, r *http.Request) {
	var in struct {
		TempToken    string `json:"tempToken"`
		CredentialID string `json:"credentialId"`
		Assertion    string `json:"assertion"`
	}
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}
	res, err := h.svc.VerifyWebAuthn(r.Context(), in.TempToken, in.CredentialID, in.Assertion, requestMeta(r))
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, res)
}

func (h *Handler) ssoCallback(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Provider string `json:"provider"`
		Token    string `json:"token"`
		Email    string `json:"email"`
		State    string `json:"state"`
	}
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}
	res, err := h.svc.SSOCallback(r.Context(), in.Provider, in.Token, in.Email, in.State, requestMeta(r))
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, res)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.svc.Logout(ctx, middleware.UserID(ctx), middleware.SessionID(ctx)); err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"logged_out": true})
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessions, err := h.svc.ListSessions(ctx, middleware.UserID(ctx))
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	// The caller's own session is flagged so clients can disable its
	// revoke button.
	current := middleware.SessionID(ctx)
	type sessionView struct {
		ID         string `json:"id"`
		UserAgent  string `json:"user_agent"`
		IP         string `json:"ip"`
		Location   string `json:"location,omitempty"`
		Current    bool   `json:"current"`
		This       bool   `json:"this_session"`
		LastActive any    `json:"last_active"`
		CreatedAt  any    `json:"created_at"`
	}
	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, sessionView{
			ID:         s.ID,
			UserAgent:  s.UserAgent,
			IP:         s.IP,
			Location:   s.Location,
			Current:    s.Current,
			This:       s.ID == current,
			LastActive: s.LastActive,
			CreatedAt:  s.CreatedAt,
		})
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"sessions": views, "total_count": len(views)})
}

func (h *Handler) revokeSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.svc.RevokeSession(ctx, middleware.UserID(ctx), chi.URLParam(r, "id")); err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"revoked": true})
}

func (h *Handler) revokeAllSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.svc.RevokeAllSessions(ctx, middleware.UserID(ctx), middleware.SessionID(ctx)); err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"revoked": true})
}

func (h *Handler) listDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	devices, err := h.svc.ListDevices(ctx, middleware.UserID(ctx))
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"devices": devices, "total_count": len(devices)})
}

func (h *Handler) trustDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, err := h.svc.TrustDevice(ctx, middleware.UserID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"device": d})
}

func (h *Handler) revokeDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.svc.RevokeDevice(ctx, middleware.UserID(ctx), chi.URLParam(r, "id")); err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"revoked": true})
}

func (h *Handler) enableMFA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	enrollment, err := h.svc.EnableMFA(ctx, middleware.UserID(ctx))
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, enrollment)
}

func (h *Handler) disableMFA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.svc.DisableMFA(ctx, middleware.UserID(ctx)); err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusOK, map[string]any{"mfa_enabled": false})
}

func (h *Handler) registerWebAuthn(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := envelope.DecodeBody(r, &in); err != nil {
		envelope.WriteError(w, err)
		return
	}
	ctx := r.Context()
	cred, err := h.svc.RegisterWebAuthn(ctx, middleware.UserID(ctx), in.Name)
	if err != nil {
		envelope.WriteError(w, err)
		return
	}
	envelope.WriteData(w, http.StatusCreated, map[string]any{"credential": cred})
}

func requestMeta(r *http.Request) auth.RequestMeta {
	return auth.RequestMeta{
		Fingerprint: r.Header.Get("X-Device-Fingerprint"),
		UserAgent:   r.UserAgent(),
		IP:          middleware.ClientIP(r.Context()),
	}
}
