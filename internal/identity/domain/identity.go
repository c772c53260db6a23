package domain

import "time"

// IdentityProvider names how a user authenticates.
type IdentityProvider string

const (
	ProviderLocal IdentityProvider = "local"
	ProviderSAML  IdentityProvider = "saml"
	ProviderOIDC  IdentityProvider = "oidc"
)

// SSO reports whether the provider delegates to an external IdP.
func (p IdentityProvider) SSO() bool {
	return p == ProviderSAML || p == ProviderOIDC
}

// Identity binds a user to one authentication provider. Local identities
// carry the password hash; SSO identities carry the provider-side subject.
type Identity struct {
	ID           string
	UserID       string
	Provider     IdentityProvider
	ProviderID   string // email for local, IdP subject for SSO
	PasswordHash string // local only
	CreatedAt    time.Time
}

// Clone returns a copy safe to mutate.
func (i *Identity) Clone() *Identity {
	c := *i
	return &c
}
