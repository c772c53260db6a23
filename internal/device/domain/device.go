package domain

import "time"

// Device is a browser/device fingerprint seen at login. A trusted device
// bypasses MFA until explicitly revoked.
type Device struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	Fingerprint string     `json:"fingerprint"`
	UserAgent   string     `json:"user_agent,omitempty"`
	IP          string     `json:"ip,omitempty"`
	Location    string     `json:"location,omitempty"`
	Trusted     bool       `json:"trusted"`
	TrustedAt   *time.Time `json:"trusted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	RevokedAt   *time.Time `json:"-"`
}

// Active reports whether the device record is still usable.
func (d *Device) Active() bool { return d.RevokedAt == nil }

// Clone returns a copy safe to mutate.
func (d *Device) Clone() *Device {
	c := *d
	if d.TrustedAt != nil {
		t := *d.TrustedAt
		c.TrustedAt = &t
	}
	if d.RevokedAt != nil {
		t := *d.RevokedAt
		c.RevokedAt = &t
	}
	return &c
}
