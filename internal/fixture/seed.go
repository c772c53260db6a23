package fixture

import (
	"context"
	"fmt"
	"time"

	auditdomain "mockforge/internal/audit/domain"
	devicedomain "mockforge/internal/device/domain"
	identitydomain "mockforge/internal/identity/domain"
	issuedomain "mockforge/internal/issue/domain"
	memberdomain "mockforge/internal/membership/domain"
	mfadomain "mockforge/internal/mfa/domain"
	orgdomain "mockforge/internal/organization/domain"
	prdomain "mockforge/internal/pullrequest/domain"
	repodomain "mockforge/internal/repo/domain"
	rundomain "mockforge/internal/run/domain"
	"mockforge/internal/security"
	teamdomain "mockforge/internal/team/domain"
	userdomain "mockforge/internal/user/domain"
)

// Fixed credentials for the demo dataset. Deterministic on purpose: tests
// and local clients rely on these exact values.
const (
	SeedPassword   = "password123"
	SeedTOTPSecret = "JBSWY3DPEHPK3PXP"
)

// SeedBackupCodes are alice's pre-issued backup codes.
var SeedBackupCodes = []string{
	"1111111111",
	"2222222222",
	"3333333333",
}

var seedBase = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

func at(h int) time.Time { return seedBase.Add(time.Duration(h) * time.Hour) }

// Seed loads the deterministic demo dataset into the store: three users
// (alice with TOTP enrolled, bob plain, carol SSO-only), the acme org with
// a team tree, two repositories in different languages, issues, pull
// requests, and workflow runs with logs.
func Seed(ctx context.Context, s *Store, hasher *security.Hasher) error {
	passwordHash, err := hasher.Hash([]byte(SeedPassword))
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}

	users := []*userdomain.User{
		{
			ID: "u-alice", Name: "Alice Hargreaves", Username: "alice",
			Email: "alice@example.com", Bio: "Staff engineer.",
			Location: "Amsterdam", Company: "Acme", MFAEnabled: true,
			CreatedAt: at(0), UpdatedAt: at(0),
		},
		{
			ID: "u-bob", Name: "Bob Tanaka", Username: "bob",
			Email: "bob@example.com", Bio: "Likes pipelines.",
			Location: "Osaka", Company: "Acme",
			CreatedAt: at(1), UpdatedAt: at(1),
		},
		{
			ID: "u-carol", Name: "Carol Osei", Username: "carol",
			Email: "carol@example.com", Company: "Acme",
			CreatedAt: at(2), UpdatedAt: at(2),
		},
	}
	for _, u := range users {
		if err := s.Users.Create(ctx, u); err != nil {
			return err
		}
	}

	identities := []*identitydomain.Identity{
		{ID: "i-alice-local", UserID: "u-alice", Provider: identitydomain.ProviderLocal, ProviderID: "alice@example.com", PasswordHash: passwordHash, CreatedAt: at(0)},
		{ID: "i-bob-local", UserID: "u-bob", Provider: identitydomain.ProviderLocal, ProviderID: "bob@example.com", PasswordHash: passwordHash, CreatedAt: at(1)},
		// carol has no password; she can only come in through the IdP.
		{ID: "i-carol-oidc", UserID: "u-carol", Provider: identitydomain.ProviderOIDC, ProviderID: "carol@example.com", CreatedAt: at(2)},
	}
	for _, ident := range identities {
		if err := s.Identities.Create(ctx, ident); err != nil {
			return err
		}
	}

	backupHashes := make([]string, len(SeedBackupCodes))
	for i, code := range SeedBackupCodes {
		backupHashes[i] = security.HashBackupCode(code)
	}
	if err := s.MFA.Save(ctx, &mfadomain.Factors{
		UserID:           "u-alice",
		TOTPSecret:       SeedTOTPSecret,
		BackupCodeHashes: backupHashes,
		Credentials: []mfadomain.WebAuthnCredential{
			{ID: "cred-alice-key", Name: "YubiKey 5C", PublicKey: "seed-public-key", AddedAt: at(3)},
		},
	}); err != nil {
		return err
	}

	trustedAt := at(4)
	if err := s.Devices.Create(ctx, &devicedomain.Device{
		ID: "d-alice-laptop", UserID: "u-alice", Fingerprint: "fp-alice-laptop",
		UserAgent: "Mozilla/5.0", IP: "203.0.113.7", Location: "Amsterdam",
		Trusted: true, TrustedAt: &trustedAt, CreatedAt: at(4),
	}); err != nil {
		return err
	}

	if err := s.Orgs.Create(ctx, &orgdomain.Organization{
		ID: "org-acme", Name: "Acme", Slug: "acme",
		Description: "Everything factory.", Website: "https://acme.example.com",
		Settings: orgdomain.Settings{
			Visibility:              "public",
			MemberVisibility:        "public",
			AllowMemberRepositories: true,
		},
		CreatedAt: at(0), UpdatedAt: at(0),
	}); err != nil {
		return err
	}

	memberships := []*memberdomain.Membership{
		{ID: "m-alice", OrgID: "org-acme", UserID: "u-alice", Role: memberdomain.RoleOwner, CreatedAt: at(0)},
		{ID: "m-bob", OrgID: "org-acme", UserID: "u-bob", Role: memberdomain.RoleMember, CreatedAt: at(1)},
		{ID: "m-carol", OrgID: "org-acme", UserID: "u-carol", Role: memberdomain.RoleMember, CreatedAt: at(2)},
	}
	for _, m := range memberships {
		if err := s.Members.Create(ctx, m); err != nil {
			return err
		}
	}

	engineeringID := "t-engineering"
	teams := []*teamdomain.Team{
		{ID: engineeringID, OrgID: "org-acme", Name: "Engineering", Slug: "engineering", Privacy: teamdomain.PrivacyVisible, CreatedAt: at(0), UpdatedAt: at(0)},
		{ID: "t-backend", OrgID: "org-acme", Name: "Backend", Slug: "backend", ParentID: &engineeringID, Privacy: teamdomain.PrivacyVisible, CreatedAt: at(1), UpdatedAt: at(1)},
		{ID: "t-secops", OrgID: "org-acme", Name: "SecOps", Slug: "secops", Privacy: teamdomain.PrivacySecret, CreatedAt: at(2), UpdatedAt: at(2)},
	}
	for _, t := range teams {
		if err := s.Teams.Create(ctx, t); err != nil {
			return err
		}
	}

	repos := []*repodomain.Repository{
		{
			ID: "r-webapp", Name: "webapp", FullName: "acme/webapp",
			Description: "Customer-facing web application.",
			Language:    "JavaScript", DefaultBranch: "main",
			StargazersCount: 128, ForksCount: 12,
			OwnerID: "org-acme", OwnerType: repodomain.OwnerOrg,
			CreatedAt: at(0), UpdatedAt: at(48),
		},
		{
			ID: "r-pipeline", Name: "data-pipeline", FullName: "acme/data-pipeline",
			Description: "Nightly ETL jobs.", Private: true,
			Language: "Python", DefaultBranch: "main",
			StargazersCount: 42, ForksCount: 3,
			OwnerID: "org-acme", OwnerType: repodomain.OwnerOrg,
			CreatedAt: at(5), UpdatedAt: at(30),
		},
		{
			ID: "r-dotfiles", Name: "dotfiles", FullName: "bob/dotfiles",
			Description: "Bob's editor config.", Language: "Shell",
			DefaultBranch: "main", StargazersCount: 2,
			OwnerID: "u-bob", OwnerType: repodomain.OwnerUser,
			CreatedAt: at(10), UpdatedAt: at(10),
		},
	}
	for _, rp := range repos {
		if err := s.Repos.Create(ctx, rp); err != nil {
			return err
		}
	}

	closedAt := at(40)
	issues := []*issuedomain.Issue{
		{
			ID: "is-1", RepoID: "r-webapp", Title: "Login button unresponsive on Safari",
			Body: "Clicking login does nothing on Safari 17.", State: issuedomain.StateOpen,
			Labels: []string{"bug", "frontend"}, AuthorID: "u-bob",
			AssigneeIDs: []string{"u-alice"}, CreatedAt: at(20), UpdatedAt: at(20),
		},
		{
			ID: "is-2", RepoID: "r-webapp", Title: "Add dark mode",
			Body: "Users keep asking for it.", State: issuedomain.StateOpen,
			Labels: []string{"enhancement"}, AuthorID: "u-alice",
			CreatedAt: at(22), UpdatedAt: at(22),
		},
		{
			ID: "is-3", RepoID: "r-webapp", Title: "Flaky signup test",
			Body: "Fails roughly once in twenty runs.", State: issuedomain.StateClosed,
			Labels: []string{"bug", "ci"}, AuthorID: "u-alice",
			AssigneeIDs: []string{"u-bob"}, CreatedAt: at(24), UpdatedAt: closedAt, ClosedAt: &closedAt,
		},
		{
			ID: "is-4", RepoID: "r-pipeline", Title: "Backfill job runs out of memory",
			Body: "OOM on the January partition.", State: issuedomain.StateOpen,
			Labels: []string{"bug"}, AuthorID: "u-bob",
			CreatedAt: at(26), UpdatedAt: at(26),
		},
	}
	for _, i := range issues {
		if _, err := s.Issues.Create(ctx, i); err != nil {
			return err
		}
	}
	if err := s.Issues.CreateComment(ctx, &issuedomain.Comment{
		ID: "c-1", IssueID: "is-1", AuthorID: "u-alice",
		Body: "Reproduced, looks like an event-listener issue.", CreatedAt: at(21),
	}); err != nil {
		return err
	}

	pulls := []*prdomain.PullRequest{
		{
			ID: "pr-1", RepoID: "r-webapp", Title: "Fix Safari login handler",
			Body: "Binds the click handler after hydration.", State: prdomain.StateOpen,
			ReviewState: prdomain.ReviewApproved, AuthorID: "u-alice",
			CreatedAt: at(30), UpdatedAt: at(32),
		},
		{
			ID: "pr-2", RepoID: "r-webapp", Title: "WIP: dark mode palette",
			State: prdomain.StateOpen, Draft: true,
			ReviewState: prdomain.ReviewPending, AuthorID: "u-bob",
			CreatedAt: at(34), UpdatedAt: at(34),
		},
	}
	for _, p := range pulls {
		if _, err := s.PullRequests.Create(ctx, p); err != nil {
			return err
		}
	}

	runs := []*rundomain.WorkflowRun{
		{
			ID: "run-1", RepoID: "r-webapp", Number: 1, WorkflowName: "ci",
			Status: rundomain.StatusCompleted, Conclusion: rundomain.ConclusionSuccess,
			HeadSHA: "9f2c1d4", HeadBranch: "main", Event: "push",
			Jobs: []rundomain.Job{
				{
					ID: "job-1", Name: "build", Status: rundomain.StatusCompleted, Conclusion: rundomain.ConclusionSuccess,
					Steps: []rundomain.Step{
						{Name: "checkout", Status: rundomain.StatusCompleted, Conclusion: rundomain.ConclusionSuccess},
						{Name: "npm ci", Status: rundomain.StatusCompleted, Conclusion: rundomain.ConclusionSuccess},
						{Name: "npm test", Status: rundomain.StatusCompleted, Conclusion: rundomain.ConclusionSuccess},
					},
				},
			},
			Artifacts: []rundomain.Artifact{
				{ID: "art-1", Name: "coverage-report", Size: 48213, UploadedAt: at(41)},
			},
			CreatedAt: at(40), UpdatedAt: at(41),
		},
		{
			ID: "run-2", RepoID: "r-webapp", Number: 2, WorkflowName: "ci",
			Status:  rundomain.StatusInProgress,
			HeadSHA: "b81e0aa", HeadBranch: "feature/dark-mode", Event: "pull_request",
			Jobs: []rundomain.Job{
				{
					ID: "job-2", Name: "build", Status: rundomain.StatusInProgress,
					Steps: []rundomain.Step{
						{Name: "checkout", Status: rundomain.StatusCompleted, Conclusion: rundomain.ConclusionSuccess},
						{Name: "npm ci", Status: rundomain.StatusInProgress},
					},
				},
			},
			CreatedAt: at(44), UpdatedAt: at(44),
		},
		{
			ID: "run-3", RepoID: "r-pipeline", Number: 1, WorkflowName: "nightly",
			Status: rundomain.StatusCompleted, Conclusion: rundomain.ConclusionFailure,
			HeadSHA: "77ac3e1", HeadBranch: "main", Event: "schedule",
			Jobs: []rundomain.Job{
				{
					ID: "job-3", Name: "backfill", Status: rundomain.StatusCompleted, Conclusion: rundomain.ConclusionFailure,
					Steps: []rundomain.Step{
						{Name: "checkout", Status: rundomain.StatusCompleted, Conclusion: rundomain.ConclusionSuccess},
						{Name: "run backfill", Status: rundomain.StatusCompleted, Conclusion: rundomain.ConclusionFailure},
					},
				},
			},
			CreatedAt: at(45), UpdatedAt: at(46),
		},
	}
	for _, run := range runs {
		if err := s.Runs.Create(ctx, run); err != nil {
			return err
		}
	}
	if err := s.Runs.AppendLogs(ctx, "run-1",
		"Run started",
		"build: checkout ok",
		"build: 1423 packages installed",
		"build: 212 tests passed",
		"Run completed with conclusion success",
	); err != nil {
		return err
	}
	if err := s.Runs.AppendLogs(ctx, "run-2",
		"Run started",
		"build: checkout ok",
	); err != nil {
		return err
	}

	if err := s.AuditLogs.Create(ctx, &auditdomain.AuditLog{
		ID: "al-1", OrgID: "org-acme", ActorID: "u-alice",
		Event: "org.created", TargetType: "organization", TargetID: "org-acme",
		IP: "203.0.113.7", CreatedAt: at(0),
	}); err != nil {
		return err
	}
	return nil
}
