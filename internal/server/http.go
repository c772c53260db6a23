// Package server assembles the HTTP router: middleware chain, the /api/v1
// route tree, the legacy /api/auth alias, and the health endpoint.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	authhandler "mockforge/internal/auth/handler"
	"mockforge/internal/envelope"
	issuehandler "mockforge/internal/issue/handler"
	orghandler "mockforge/internal/organization/handler"
	prhandler "mockforge/internal/pullrequest/handler"
	repohandler "mockforge/internal/repo/handler"
	runhandler "mockforge/internal/run/handler"
	searchhandler "mockforge/internal/search/handler"
	"mockforge/internal/security"
	"mockforge/internal/server/middleware"
	sessionrepo "mockforge/internal/session/repository"
	teamhandler "mockforge/internal/team/handler"
	userhandler "mockforge/internal/user/handler"
)

// Deps carries everything the router needs.
type Deps struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Tokens   *security.TokenProvider
	Sessions sessionrepo.Repository

	Auth          *authhandler.Handler
	Users         *userhandler.Handler
	Repos         *repohandler.Handler
	Issues        *issuehandler.Handler
	PullRequests  *prhandler.Handler
	Organizations *orghandler.Handler
	Teams         *teamhandler.Handler
	Runs          *runhandler.Handler
	Search        *searchhandler.Handler
}

// New builds the router. Canonical prefix is /api/v1; /api/auth is kept as
// an alias for clients that predate the versioned paths.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	if d.Logger != nil {
		r.Use(middleware.RequestLogger(d.Logger))
	}
	if d.Tracer != nil {
		r.Use(middleware.Trace(d.Tracer))
	}
	r.Use(middleware.SimulateFaults)

	r.Get("/health", health)

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			d.Auth.PublicRoutes(ar)
			ar.Group(func(protected chi.Router) {
				protected.Use(middleware.RequireAuth(d.Tokens, d.Sessions))
				d.Auth.ProtectedRoutes(protected)
			})
		})

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth(d.Tokens, d.Sessions))
			d.Users.Routes(protected)
			d.Repos.CollectionRoutes(protected)
			protected.Route("/repositories/{owner}/{name}", func(rr chi.Router) {
				d.Repos.ItemRoutes(rr)
				d.Issues.Routes(rr)
				d.PullRequests.Routes(rr)
			})
			d.Organizations.Routes(protected)
			d.Teams.Routes(protected)
			d.Runs.Routes(protected)
			d.Search.Routes(protected)
		})
	})

	// Legacy alias.
	r.Route("/api/auth", func(ar chi.Router) {
		d.Auth.PublicRoutes(ar)
		ar.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth(d.Tokens, d.Sessions))
			d.Auth.ProtectedRoutes(protected)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		envelope.WriteMessage(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		envelope.WriteMessage(w, http.StatusNotFound, "route not found")
	})

	return r
}

// health is deliberately unenveloped and unauthenticated.
func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
