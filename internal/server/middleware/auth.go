package middleware

import (
	"net/http"
	"strings"
	"time"

	"mockforge/internal/apperrors"
	"mockforge/internal/envelope"
	"mockforge/internal/security"
	sessionrepo "mockforge/internal/session/repository"
)

// RequireAuth validates the bearer access token and checks that its session
// is still live. A revoked session invalidates the token immediately even
// though the JWT itself has not expired.
func RequireAuth(tokens *security.TokenProvider, sessions sessionrepo.Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				envelope.WriteError(w, apperrors.Unauthorized())
				return
			}
			sessionID, userID, err := tokens.ValidateAccess(raw)
			if err != nil {
				envelope.WriteError(w, apperrors.Unauthorized())
				return
			}
			sess, err := sessions.GetByID(r.Context(), sessionID)
			if err != nil {
				envelope.WriteError(w, err)
				return
			}
			if sess == nil || sess.Revoked() || sess.TokenHash != security.HashSessionToken(raw) {
				envelope.WriteError(w, apperrors.Unauthorized())
				return
			}
			// Best-effort; a failed touch must not fail the request.
			_ = sessions.SetLastActive(r.Context(), sessionID, time.Now().UTC())

			ctx := WithIdentity(r.Context(), userID, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
