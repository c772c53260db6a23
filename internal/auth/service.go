// Package auth implements the login state machine: password check, SSO
// redirect, MFA and WebAuthn second factors, trusted-device bypass, and the
// session lifecycle around it.
package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"mockforge/internal/apperrors"
	"mockforge/internal/audit"
	devicedomain "mockforge/internal/device/domain"
	devicerepo "mockforge/internal/device/repository"
	identitydomain "mockforge/internal/identity/domain"
	identityrepo "mockforge/internal/identity/repository"
	mfadomain "mockforge/internal/mfa/domain"
	mfarepo "mockforge/internal/mfa/repository"
	"mockforge/internal/security"
	sessiondomain "mockforge/internal/session/domain"
	sessionrepo "mockforge/internal/session/repository"
	userdomain "mockforge/internal/user/domain"
	userrepo "mockforge/internal/user/repository"
)

const backupCodeCount = 10

// RequestMeta carries per-request client attributes into the auth flows.
type RequestMeta struct {
	Fingerprint string
	UserAgent   string
	IP          string
}

// LoginResult is the outcome of a login step. Exactly one shape is
// populated: access token + user, an MFA/WebAuthn challenge with a temp
// token, or an SSO redirect.
type LoginResult struct {
	AccessToken      string            `json:"access_token,omitempty"`
	ExpiresAt        *time.Time        `json:"expires_at,omitempty"`
	User             *userdomain.User  `json:"user,omitempty"`
	RequiresMFA      bool              `json:"requiresMFA,omitempty"`
	RequiresWebAuthn bool              `json:"requiresWebAuthn,omitempty"`
	TempToken        string            `json:"tempToken,omitempty"`
	SSORedirect      string            `json:"ssoRedirect,omitempty"`
	Provider         string            `json:"provider,omitempty"`
}

// Service drives authentication. All credential failures return the same
// generic unauthorized error so callers cannot probe which factor failed.
type Service struct {
	users      userrepo.Repository
	identities identityrepo.Repository
	sessions   sessionrepo.Repository
	devices    devicerepo.Repository
	factors    mfarepo.Repository
	pending    *PendingStore
	tokens     *security.TokenProvider
	hasher     *security.Hasher
	audit      audit.AuditLogger
	totpIssuer string
	ssoBaseURL string
}

// NewService wires the auth service.
func NewService(
	users userrepo.Repository,
	identities identityrepo.Repository,
	sessions sessionrepo.Repository,
	devices devicerepo.Repository,
	factors mfarepo.Repository,
	pending *PendingStore,
	tokens *security.TokenProvider,
	hasher *security.Hasher,
	auditLogger audit.AuditLogger,
	totpIssuer, ssoBaseURL string,
) *Service {
	return &Service{
		users:      users,
		identities: identities,
		sessions:   sessions,
		devices:    devices,
		factors:    factors,
		pending:    pending,
		tokens:     tokens,
		hasher:     hasher,
		audit:      auditLogger,
		totpIssuer: totpIssuer,
		ssoBaseURL: ssoBaseURL,
	}
}

// RegisterInput holds the fields for account creation.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// Register creates a user with a local identity. Duplicate email or
// username is a conflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*userdomain.User, error) {
	fields := map[string][]string{}
	if !userdomain.ValidEmail(in.Email) {
		fields["email"] = append(fields["email"], "must be a valid email address")
	}
	if len(in.Password) < 8 {
		fields["password"] = append(fields["password"], "must be at least 8 characters")
	}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = append(fields["name"], "is required")
	}
	if !userdomain.ValidUsername(in.Username) {
		fields["username"] = append(fields["username"], "must be alphanumeric with hyphens, at most 39 characters")
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields)
	}

	if existing, err := s.users.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.Conflict("email already in use")
	}
	if existing, err := s.users.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.Conflict("username already taken")
	}

	hash, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return nil, apperrors.Internal()
	}

	now := time.Now().UTC()
	u := &userdomain.User{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Username:  in.Username,
		Email:     strings.ToLower(in.Email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	if err := s.identities.Create(ctx, &identitydomain.Identity{
		ID:           uuid.New().String(),
		UserID:       u.ID,
		Provider:     identitydomain.ProviderLocal,
		ProviderID:   u.Email,
		PasswordHash: hash,
		CreatedAt:    now,
	}); err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, "", u.ID, "user.registered", "user", u.ID, nil)
	return u, nil
}

// Login performs the first factor. Depending on the account it returns an
// authenticated session, an MFA/WebAuthn challenge, or an SSO redirect.
func (s *Service) Login(ctx context.Context, email, password string, meta RequestMeta) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.audit.LogEvent(ctx, "", "", "login.failure", "user", "", map[string]string{"email": email})
		return nil, apperrors.Unauthorized()
	}

	local, err := s.identities.GetByUserAndProvider(ctx, u.ID, identitydomain.ProviderLocal)
	if err != nil {
		return nil, err
	}
	if local == nil {
		// SSO-only account: the client must go through the IdP.
		return s.ssoRedirect(ctx, u)
	}
	if s.hasher.Compare(local.PasswordHash, []byte(password)) != nil {
		s.audit.LogEvent(ctx, "", u.ID, "login.failure", "user", u.ID, nil)
		return nil, apperrors.Unauthorized()
	}

	f, err := s.factors.GetByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if (f.HasTOTP() || f.HasWebAuthn()) && !s.deviceTrusted(ctx, u.ID, meta.Fingerprint) {
		return s.challenge(ctx, u, f, meta)
	}
	return s.completeLogin(ctx, u, meta)
}

// VerifyTOTP completes a pending login with an authenticator code.
// rememberDevice marks the fingerprint trusted so later logins skip MFA.
func (s *Service) VerifyTOTP(ctx context.Context, tempToken, code string, rememberDevice bool, meta RequestMeta) (*LoginResult, error) {
	p, u, err := s.resolvePending(ctx, tempToken, KindNeedsMFA)
	if err != nil {
		return nil, err
	}
	f, err := s.factors.GetByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if !f.HasTOTP() || !security.ValidateTOTP(code, f.TOTPSecret) {
		s.audit.LogEvent(ctx, "", u.ID, "login.failure", "user", u.ID, map[string]string{"factor": "totp"})
		return nil, apperrors.Unauthorized()
	}
	return s.completePending(ctx, u, p, rememberDevice, meta)
}

// VerifyBackupCode completes a pending login with a single-use backup code.
// The code's hash is removed atomically so it can never be replayed.
func (s *Service) VerifyBackupCode(ctx context.Context, tempToken, code string, meta RequestMeta) (*LoginResult, error) {
	p, u, err := s.resolvePending(ctx, tempToken, KindNeedsMFA)
	if err != nil {
		return nil, err
	}
	_, err = s.factors.Update(ctx, u.ID, func(f *mfadomain.Factors) (*mfadomain.Factors, error) {
		remaining, ok := security.ConsumeBackupCode(f.BackupCodeHashes, code)
		if !ok {
			return nil, apperrors.Unauthorized()
		}
		f.BackupCodeHashes = remaining
		return f, nil
	})
	if err != nil {
		s.audit.LogEvent(ctx, "", u.ID, "login.failure", "user", u.ID, map[string]string{"factor": "backup_code"})
		return nil, apperrors.Unauthorized()
	}
	return s.completePending(ctx, u, p, false, meta)
}

// VerifyWebAuthn completes a pending login with an assertion from a
// registered credential.
func (s *Service) VerifyWebAuthn(ctx context.Context, tempToken, credentialID, assertion string, meta RequestMeta) (*LoginResult, error) {
	p, u, err := s.resolvePending(ctx, tempToken, KindNeedsWebAuthn)
	if err != nil {
		return nil, err
	}
	f, err := s.factors.GetByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if assertion == "" || f.Credential(credentialID) == nil {
		s.audit.LogEvent(ctx, "", u.ID, "login.failure", "user", u.ID, map[string]string{"factor": "webauthn"})
		return nil, apperrors.Unauthorized()
	}
	return s.completePending(ctx, u, p, false, meta)
}

// SSOCallback finishes an SSO login. The identity is looked up by provider
// subject; an unseen subject with a fresh email provisions a new user.
func (s *Service) SSOCallback(ctx context.Context, provider, providerToken, email, state string, meta RequestMeta) (*LoginResult, error) {
	ip := identitydomain.IdentityProvider(provider)
	if !ip.SSO() {
		return nil, apperrors.ValidationField("provider", "must be saml or oidc")
	}
	if providerToken == "" {
		return nil, apperrors.Unauthorized()
	}

	ident, err := s.identities.GetByProviderSubject(ctx, ip, email)
	if err != nil {
		return nil, err
	}
	var u *userdomain.User
	if ident != nil {
		if u, err = s.users.GetByID(ctx, ident.UserID); err != nil {
			return nil, err
		}
	} else {
		if u, err = s.provisionSSOUser(ctx, ip, email); err != nil {
			return nil, err
		}
	}
	if u == nil {
		return nil, apperrors.Unauthorized()
	}

	// A state nonce from a redirect we issued is single use and must refer
	// to the same user the IdP vouched for. Its absence is fine: the
	// IdP-initiated flow never saw a redirect.
	if state != "" {
		p := s.pending.Get(state)
		if p == nil || p.Kind != KindNeedsSSO || p.UserID != u.ID {
			return nil, apperrors.Unauthorized()
		}
		s.pending.Delete(state)
	}
	s.audit.LogEvent(ctx, "", u.ID, "login.sso", "user", u.ID, map[string]string{"provider": provider})
	return s.completeLogin(ctx, u, meta)
}

// Logout revokes the session the request authenticated with.
func (s *Service) Logout(ctx context.Context, userID, sessionID string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return err
	}
	s.audit.LogEvent(ctx, "", userID, "session.revoked", "session", sessionID, map[string]string{"reason": "logout"})
	return nil
}

// ListSessions returns the user's active sessions.
func (s *Service) ListSessions(ctx context.Context, userID string) ([]*sessiondomain.Session, error) {
	return s.sessions.ListActiveByUser(ctx, userID)
}

// RevokeSession revokes one of the user's sessions. Revoking a non-current
// session leaves the current flag where it is.
func (s *Service) RevokeSession(ctx context.Context, userID, sessionID string) error {
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil || sess.UserID != userID {
		return apperrors.NotFound("session")
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return err
	}
	s.audit.LogEvent(ctx, "", userID, "session.revoked", "session", sessionID, nil)
	return nil
}

// RevokeAllSessions revokes every session of the user except the one the
// request came in on.
func (s *Service) RevokeAllSessions(ctx context.Context, userID, currentSessionID string) error {
	if err := s.sessions.RevokeAllExcept(ctx, userID, currentSessionID); err != nil {
		return err
	}
	s.audit.LogEvent(ctx, "", userID, "session.revoked_all", "session", currentSessionID, nil)
	return nil
}

// ListDevices returns the user's devices.
func (s *Service) ListDevices(ctx context.Context, userID string) ([]*devicedomain.Device, error) {
	return s.devices.ListByUser(ctx, userID)
}

// TrustDevice marks a device trusted so logins from it skip MFA.
func (s *Service) TrustDevice(ctx context.Context, userID, deviceID string) (*devicedomain.Device, error) {
	d, err := s.ownedDevice(ctx, userID, deviceID)
	if err != nil {
		return nil, err
	}
	updated, err := s.devices.Update(ctx, d.ID, func(cur *devicedomain.Device) (*devicedomain.Device, error) {
		now := time.Now().UTC()
		cur.Trusted = true
		cur.TrustedAt = &now
		return cur, nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, "", userID, "device.trusted", "device", deviceID, nil)
	return updated, nil
}

// RevokeDevice revokes a device; a revoked device no longer bypasses MFA.
func (s *Service) RevokeDevice(ctx context.Context, userID, deviceID string) error {
	d, err := s.ownedDevice(ctx, userID, deviceID)
	if err != nil {
		return err
	}
	_, err = s.devices.Update(ctx, d.ID, func(cur *devicedomain.Device) (*devicedomain.Device, error) {
		now := time.Now().UTC()
		cur.Trusted = false
		cur.RevokedAt = &now
		return cur, nil
	})
	if err != nil {
		return err
	}
	s.audit.LogEvent(ctx, "", userID, "device.revoked", "device", deviceID, nil)
	return nil
}

// MFAEnrollment is returned once on enable; the secret and plain backup
// codes are never shown again.
type MFAEnrollment struct {
	Secret      string   `json:"secret"`
	BackupCodes []string `json:"backup_codes"`
}

// EnableMFA enrolls TOTP for the user and issues fresh backup codes.
func (s *Service) EnableMFA(ctx context.Context, userID string) (*MFAEnrollment, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.NotFound("user")
	}
	secret, err := security.GenerateTOTPSecret(s.totpIssuer, u.Email)
	if err != nil {
		return nil, apperrors.Internal()
	}
	codes, hashes, err := security.GenerateBackupCodes(backupCodeCount)
	if err != nil {
		return nil, apperrors.Internal()
	}

	f, err := s.factors.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		f = &mfadomain.Factors{UserID: userID}
	} else {
		f = f.Clone()
	}
	f.TOTPSecret = secret
	f.BackupCodeHashes = hashes
	if err := s.factors.Save(ctx, f); err != nil {
		return nil, err
	}
	if _, err := s.users.Update(ctx, userID, func(cur *userdomain.User) (*userdomain.User, error) {
		cur.MFAEnabled = true
		cur.UpdatedAt = time.Now().UTC()
		return cur, nil
	}); err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, "", userID, "mfa.enabled", "user", userID, nil)
	return &MFAEnrollment{Secret: secret, BackupCodes: codes}, nil
}

// DisableMFA removes all second factors for the user.
func (s *Service) DisableMFA(ctx context.Context, userID string) error {
	if err := s.factors.Delete(ctx, userID); err != nil {
		return err
	}
	if _, err := s.users.Update(ctx, userID, func(cur *userdomain.User) (*userdomain.User, error) {
		cur.MFAEnabled = false
		cur.UpdatedAt = time.Now().UTC()
		return cur, nil
	}); err != nil {
		return err
	}
	s.audit.LogEvent(ctx, "", userID, "mfa.disabled", "user", userID, nil)
	return nil
}

// RegisterWebAuthn registers a new credential for the user.
func (s *Service) RegisterWebAuthn(ctx context.Context, userID, name string) (*mfadomain.WebAuthnCredential, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.ValidationField("name", "is required")
	}
	cred := mfadomain.WebAuthnCredential{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		PublicKey: uuid.New().String(),
		AddedAt:   time.Now().UTC(),
	}
	f, err := s.factors.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		f = &mfadomain.Factors{UserID: userID}
	} else {
		f = f.Clone()
	}
	f.Credentials = append(f.Credentials, cred)
	if err := s.factors.Save(ctx, f); err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, "", userID, "webauthn.registered", "credential", cred.ID, nil)
	return &cred, nil
}

func (s *Service) ssoRedirect(ctx context.Context, u *userdomain.User) (*LoginResult, error) {
	idents, err := s.identities.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	for _, ident := range idents {
		if !ident.Provider.SSO() {
			continue
		}
		state := uuid.New().String()
		s.pending.Put(&PendingLogin{ID: state, UserID: u.ID, Kind: KindNeedsSSO})
		redirect := fmt.Sprintf("%s/%s/login?email=%s&state=%s",
			s.ssoBaseURL, ident.Provider, url.QueryEscape(u.Email), state)
		return &LoginResult{SSORedirect: redirect, Provider: string(ident.Provider)}, nil
	}
	// No usable identity at all.
	return nil, apperrors.Unauthorized()
}

func (s *Service) challenge(ctx context.Context, u *userdomain.User, f *mfadomain.Factors, meta RequestMeta) (*LoginResult, error) {
	kind := KindNeedsMFA
	if !f.HasTOTP() {
		kind = KindNeedsWebAuthn
	}
	p := &PendingLogin{
		ID:          uuid.New().String(),
		UserID:      u.ID,
		Kind:        kind,
		Fingerprint: meta.Fingerprint,
		UserAgent:   meta.UserAgent,
		IP:          meta.IP,
	}
	s.pending.Put(p)
	token, err := s.tokens.IssuePending(p.ID, u.ID)
	if err != nil {
		return nil, apperrors.Internal()
	}
	return &LoginResult{
		RequiresMFA:      kind == KindNeedsMFA,
		RequiresWebAuthn: kind == KindNeedsWebAuthn,
		TempToken:        token,
	}, nil
}

// resolvePending validates a temp token and loads its pending login. Any
// mismatch is a generic unauthorized.
func (s *Service) resolvePending(ctx context.Context, tempToken string, want PendingKind) (*PendingLogin, *userdomain.User, error) {
	loginID, userID, err := s.tokens.ValidatePending(tempToken)
	if err != nil {
		return nil, nil, apperrors.Unauthorized()
	}
	p := s.pending.Get(loginID)
	if p == nil || p.UserID != userID || p.Kind != want {
		return nil, nil, apperrors.Unauthorized()
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		return nil, nil, apperrors.Unauthorized()
	}
	return p, u, nil
}

func (s *Service) completePending(ctx context.Context, u *userdomain.User, p *PendingLogin, rememberDevice bool, meta RequestMeta) (*LoginResult, error) {
	s.pending.Delete(p.ID)
	if meta.Fingerprint == "" {
		meta.Fingerprint = p.Fingerprint
	}
	if meta.UserAgent == "" {
		meta.UserAgent = p.UserAgent
	}
	if meta.IP == "" {
		meta.IP = p.IP
	}
	res, err := s.completeLogin(ctx, u, meta)
	if err != nil {
		return nil, err
	}
	if rememberDevice && meta.Fingerprint != "" {
		if err := s.rememberDevice(ctx, u.ID, meta); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *Service) completeLogin(ctx context.Context, u *userdomain.User, meta RequestMeta) (*LoginResult, error) {
	sessionID := uuid.New().String()
	token, expiresAt, err := s.tokens.IssueAccess(sessionID, u.ID)
	if err != nil {
		return nil, apperrors.Internal()
	}
	now := time.Now().UTC()
	sess := &sessiondomain.Session{
		ID:         sessionID,
		UserID:     u.ID,
		UserAgent:  meta.UserAgent,
		IP:         meta.IP,
		Current:    true,
		LastActive: now,
		CreatedAt:  now,
		TokenHash:  security.HashSessionToken(token),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.recordDevice(ctx, u.ID, meta); err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, "", u.ID, "login.success", "session", sessionID, nil)
	return &LoginResult{AccessToken: token, ExpiresAt: &expiresAt, User: u}, nil
}

func (s *Service) deviceTrusted(ctx context.Context, userID, fingerprint string) bool {
	if fingerprint == "" {
		return false
	}
	d, err := s.devices.GetByUserAndFingerprint(ctx, userID, fingerprint)
	return err == nil && d != nil && d.Trusted
}

// recordDevice ensures a device record exists for the fingerprint.
func (s *Service) recordDevice(ctx context.Context, userID string, meta RequestMeta) error {
	if meta.Fingerprint == "" {
		return nil
	}
	d, err := s.devices.GetByUserAndFingerprint(ctx, userID, meta.Fingerprint)
	if err != nil || d != nil {
		return err
	}
	return s.devices.Create(ctx, &devicedomain.Device{
		ID:          uuid.New().String(),
		UserID:      userID,
		Fingerprint: meta.Fingerprint,
		UserAgent:   meta.UserAgent,
		IP:          meta.IP,
		CreatedAt:   time.Now().UTC(),
	})
}

func (s *Service) rememberDevice(ctx context.Context, userID string, meta RequestMeta) error {
	d, err := s.devices.GetByUserAndFingerprint(ctx, userID, meta.Fingerprint)
	if err != nil {
		return err
	}
	if d == nil {
		if err := s.recordDevice(ctx, userID, meta); err != nil {
			return err
		}
		if d, err = s.devices.GetByUserAndFingerprint(ctx, userID, meta.Fingerprint); err != nil || d == nil {
			return err
		}
	}
	_, err = s.devices.Update(ctx, d.ID, func(cur *devicedomain.Device) (*devicedomain.Device, error) {
		now := time.Now().UTC()
		cur.Trusted = true
		cur.TrustedAt = &now
		return cur, nil
	})
	if err == nil {
		s.audit.LogEvent(ctx, "", userID, "device.trusted", "device", d.ID, map[string]string{"reason": "remember_me"})
	}
	return err
}

func (s *Service) ownedDevice(ctx context.Context, userID, deviceID string) (*devicedomain.Device, error) {
	d, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if d == nil || d.UserID != userID {
		return nil, apperrors.NotFound("device")
	}
	return d, nil
}

// provisionSSOUser creates a user and identity for a first-time SSO subject.
func (s *Service) provisionSSOUser(ctx context.Context, provider identitydomain.IdentityProvider, email string) (*userdomain.User, error) {
	if !userdomain.ValidEmail(email) {
		return nil, apperrors.Unauthorized()
	}
	if existing, err := s.users.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		// Email already bound to an account: link the identity.
		if err := s.identities.Create(ctx, &identitydomain.Identity{
			ID:         uuid.New().String(),
			UserID:     existing.ID,
			Provider:   provider,
			ProviderID: email,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			return nil, err
		}
		return existing, nil
	}

	username := usernameFromEmail(email)
	for i := 2; ; i++ {
		taken, err := s.users.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if taken == nil {
			break
		}
		username = fmt.Sprintf("%s-%d", usernameFromEmail(email), i)
	}

	now := time.Now().UTC()
	u := &userdomain.User{
		ID:        uuid.New().String(),
		Name:      username,
		Username:  username,
		Email:     strings.ToLower(email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	if err := s.identities.Create(ctx, &identitydomain.Identity{
		ID:         uuid.New().String(),
		UserID:     u.ID,
		Provider:   provider,
		ProviderID: u.Email,
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}
	s.audit.LogEvent(ctx, "", u.ID, "user.provisioned", "user", u.ID, map[string]string{"provider": string(provider)})
	return u, nil
}

func usernameFromEmail(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	var b strings.Builder
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "user"
	}
	return out
}
