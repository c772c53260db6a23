package domain

import "time"

// WebAuthnCredential is a registered hardware-bound credential. Assertions
// must reference a registered credential ID to complete a login.
type WebAuthnCredential struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PublicKey string    `json:"-"`
	AddedAt   time.Time `json:"added_at"`
}

// Factors holds a user's second-factor material, keyed by user ID. Backup
// code hashes shrink as codes are consumed; a consumed code never validates
// again.
type Factors struct {
	UserID           string
	TOTPSecret       string
	BackupCodeHashes []string
	Credentials      []WebAuthnCredential
}

// HasTOTP reports whether a TOTP secret is enrolled.
func (f *Factors) HasTOTP() bool { return f != nil && f.TOTPSecret != "" }

// HasWebAuthn reports whether at least one credential is registered.
func (f *Factors) HasWebAuthn() bool { return f != nil && len(f.Credentials) > 0 }

// Credential returns the registered credential with the given ID, or nil.
func (f *Factors) Credential(id string) *WebAuthnCredential {
	if f == nil {
		return nil
	}
	for i := range f.Credentials {
		if f.Credentials[i].ID == id {
			return &f.Credentials[i]
		}
	}
	return nil
}

// Clone returns a deep copy safe to mutate.
func (f *Factors) Clone() *Factors {
	c := *f
	c.BackupCodeHashes = append([]string(nil), f.BackupCodeHashes...)
	c.Credentials = append([]WebAuthnCredential(nil), f.Credentials...)
	return &c
}
