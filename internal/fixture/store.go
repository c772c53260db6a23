// Package fixture bundles the in-memory repositories into one injectable
// store and provides the deterministic demo dataset.
package fixture

import (
	"time"

	"mockforge/internal/auth"
	auditrepo "mockforge/internal/audit/repository"
	devicerepo "mockforge/internal/device/repository"
	identityrepo "mockforge/internal/identity/repository"
	issuerepo "mockforge/internal/issue/repository"
	memberrepo "mockforge/internal/membership/repository"
	mfarepo "mockforge/internal/mfa/repository"
	orgrepo "mockforge/internal/organization/repository"
	prrepo "mockforge/internal/pullrequest/repository"
	reporepo "mockforge/internal/repo/repository"
	runrepo "mockforge/internal/run/repository"
	sessionrepo "mockforge/internal/session/repository"
	teamrepo "mockforge/internal/team/repository"
	userrepo "mockforge/internal/user/repository"
)

// Store is the whole fixture state: every repository plus the pending-login
// store. Each NewStore call is fully isolated, so parallel test runs never
// share state.
type Store struct {
	Users        *userrepo.Memory
	Identities   *identityrepo.Memory
	Sessions     *sessionrepo.Memory
	Devices      *devicerepo.Memory
	MFA          *mfarepo.Memory
	Orgs         *orgrepo.Memory
	Members      *memberrepo.Memory
	Teams        *teamrepo.Memory
	Repos        *reporepo.Memory
	Issues       *issuerepo.Memory
	PullRequests *prrepo.Memory
	Runs         *runrepo.Memory
	AuditLogs    *auditrepo.Memory
	Pending      *auth.PendingStore
}

// NewStore returns an empty store. pendingTTL bounds how long a login may
// sit between the first and second factor.
func NewStore(pendingTTL time.Duration) *Store {
	return &Store{
		Users:        userrepo.NewMemory(),
		Identities:   identityrepo.NewMemory(),
		Sessions:     sessionrepo.NewMemory(),
		Devices:      devicerepo.NewMemory(),
		MFA:          mfarepo.NewMemory(),
		Orgs:         orgrepo.NewMemory(),
		Members:      memberrepo.NewMemory(),
		Teams:        teamrepo.NewMemory(),
		Repos:        reporepo.NewMemory(),
		Issues:       issuerepo.NewMemory(),
		PullRequests: prrepo.NewMemory(),
		Runs:         runrepo.NewMemory(),
		AuditLogs:    auditrepo.NewMemory(),
		Pending:      auth.NewPendingStore(pendingTTL),
	}
}
