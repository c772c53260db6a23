package fixture

import (
	"context"
	"testing"
	"time"

	identitydomain "mockforge/internal/identity/domain"
	"mockforge/internal/security"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(time.Minute)
	if err := Seed(context.Background(), s, security.NewHasher(4)); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return s
}

func TestSeedCredentialsUsable(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	ident, err := s.Identities.GetByUserAndProvider(ctx, "u-alice", identitydomain.ProviderLocal)
	if err != nil {
		t.Fatalf("GetByProvider: %v", err)
	}
	if ident == nil {
		t.Fatal("alice must have a local identity")
	}
	hasher := security.NewHasher(4)
	if err := hasher.Compare(ident.PasswordHash, []byte(SeedPassword)); err != nil {
		t.Fatalf("seed password does not match stored hash: %v", err)
	}

	factors, err := s.MFA.GetByUser(ctx, "u-alice")
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if factors == nil || factors.TOTPSecret != SeedTOTPSecret {
		t.Fatal("alice must have the published TOTP secret enrolled")
	}
	if len(factors.BackupCodeHashes) != len(SeedBackupCodes) {
		t.Fatalf("expected %d backup code hashes, got %d", len(SeedBackupCodes), len(factors.BackupCodeHashes))
	}
	stored := make(map[string]bool, len(factors.BackupCodeHashes))
	for _, h := range factors.BackupCodeHashes {
		stored[h] = true
	}
	for _, code := range SeedBackupCodes {
		if !stored[security.HashBackupCode(code)] {
			t.Fatalf("backup code %s not present among stored hashes", code)
		}
	}
}

func TestSeedCarolHasNoPassword(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	local, err := s.Identities.GetByUserAndProvider(ctx, "u-carol", identitydomain.ProviderLocal)
	if err != nil {
		t.Fatalf("GetByProvider: %v", err)
	}
	if local != nil {
		t.Fatal("carol must be SSO-only")
	}
	oidc, err := s.Identities.GetByUserAndProvider(ctx, "u-carol", identitydomain.ProviderOIDC)
	if err != nil {
		t.Fatalf("GetByProvider: %v", err)
	}
	if oidc == nil || oidc.PasswordHash != "" {
		t.Fatal("carol's OIDC identity must carry no password hash")
	}
}

func TestSeedDataset(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	repos, err := s.Repos.List(ctx)
	if err != nil {
		t.Fatalf("List repos: %v", err)
	}
	if len(repos) != 3 {
		t.Fatalf("expected 3 repositories, got %d", len(repos))
	}

	webapp, err := s.Repos.GetByFullName(ctx, "acme/webapp")
	if err != nil || webapp == nil {
		t.Fatalf("acme/webapp missing: %v", err)
	}
	issues, err := s.Issues.ListByRepo(ctx, webapp.ID)
	if err != nil {
		t.Fatalf("ListByRepo issues: %v", err)
	}
	if len(issues) != 3 {
		t.Fatalf("expected 3 webapp issues, got %d", len(issues))
	}
	for _, i := range issues {
		if i.Number == 0 {
			t.Fatalf("issue %s did not get a number", i.ID)
		}
	}

	lines, next, err := s.Runs.ReadLogs(ctx, "run-1", 0)
	if err != nil {
		t.Fatalf("ReadLogs: %v", err)
	}
	if len(lines) != 5 || next != 5 {
		t.Fatalf("expected 5 log lines for run-1, got %d (next %d)", len(lines), next)
	}

	device, err := s.Devices.GetByUserAndFingerprint(ctx, "u-alice", "fp-alice-laptop")
	if err != nil {
		t.Fatalf("GetByUserAndFingerprint: %v", err)
	}
	if device == nil || !device.Trusted {
		t.Fatal("alice's laptop must be seeded as trusted")
	}
}
