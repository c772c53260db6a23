// Package middleware holds the HTTP middleware chain: request identity,
// bearer auth, fault simulation, logging, and tracing.
package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type ctxKey int

const (
	ctxKeyUserID ctxKey = iota
	ctxKeySessionID
	ctxKeyClientIP
)

// WithIdentity returns ctx carrying the authenticated user and session IDs.
func WithIdentity(ctx context.Context, userID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID, userID)
	return context.WithValue(ctx, ctxKeySessionID, sessionID)
}

// UserID returns the authenticated user ID, or "" outside an authenticated
// request.
func UserID(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeyUserID).(string)
	return s
}

// SessionID returns the session the request authenticated with, or "".
func SessionID(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeySessionID).(string)
	return s
}

// ClientIP returns the request's client IP, or "unknown".
func ClientIP(ctx context.Context) string {
	if s, _ := ctx.Value(ctxKeyClientIP).(string); s != "" {
		return s
	}
	return "unknown"
}

// RealIP stores the client IP on the request context for handlers and the
// audit trail. X-Forwarded-For wins over RemoteAddr.
func RealIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			if i := strings.IndexByte(fwd, ','); i > 0 {
				fwd = fwd[:i]
			}
			ip = strings.TrimSpace(fwd)
		}
		ctx := context.WithValue(r.Context(), ctxKeyClientIP, ip)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
