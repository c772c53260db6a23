package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mockforge/internal/audit"
	"mockforge/internal/auth"
	authhandler "mockforge/internal/auth/handler"
	"mockforge/internal/config"
	"mockforge/internal/fixture"
	issuehandler "mockforge/internal/issue/handler"
	orghandler "mockforge/internal/organization/handler"
	prhandler "mockforge/internal/pullrequest/handler"
	repohandler "mockforge/internal/repo/handler"
	runhandler "mockforge/internal/run/handler"
	searchhandler "mockforge/internal/search/handler"
	"mockforge/internal/security"
	"mockforge/internal/server"
	"mockforge/internal/server/middleware"
	teamhandler "mockforge/internal/team/handler"
	otelsetup "mockforge/internal/telemetry/otel"
	userhandler "mockforge/internal/user/handler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, "mockforge", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	store := fixture.NewStore(cfg.PendingTTL())
	hasher := security.NewHasher(cfg.BcryptCost)
	if cfg.SeedDemoData {
		if err := fixture.Seed(ctx, store, hasher); err != nil {
			log.Fatalf("seed: %v", err)
		}
		logger.Info("demo dataset loaded")
	}

	tokens := security.NewTokenProvider(
		[]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience,
		cfg.AccessTTL(), cfg.PendingTTL(),
	)
	auditor := otelsetup.NewAuditEmitter(
		audit.NewLogger(store.AuditLogs, middleware.ClientIP),
		providers.LoggerProvider,
	)

	authSvc := auth.NewService(
		store.Users, store.Identities, store.Sessions, store.Devices, store.MFA,
		store.Pending, tokens, hasher, auditor,
		"mockforge", "https://sso.example.com",
	)

	handler := server.New(server.Deps{
		Logger:   logger,
		Tracer:   providers.TracerProvider.Tracer("mockforge.http"),
		Tokens:   tokens,
		Sessions: store.Sessions,

		Auth:  authhandler.New(authSvc),
		Users: userhandler.New(store.Users),
		Repos: repohandler.New(store.Repos, store.Users,
			store.Issues.HasForRepo, store.Runs.HasForRepo),
		Issues:       issuehandler.New(store.Issues, store.Repos, store.Users),
		PullRequests: prhandler.New(store.PullRequests, store.Repos, store.Users),
		Organizations: orghandler.New(
			store.Orgs, store.Members, store.Teams, store.Users,
			store.Repos, store.Issues, store.Runs, store.AuditLogs, auditor,
		),
		Teams:  teamhandler.New(store.Teams, store.Orgs, store.Members, auditor),
		Runs:   runhandler.New(store.Runs, store.Repos),
		Search: searchhandler.New(store.Repos, store.Issues, store.Users),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
	logger.Info("http server stopped")
}
