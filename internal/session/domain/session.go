package domain

import "time"

// Session is an authenticated browser/device session. At most one active
// session per user is Current; the session repository maintains that
// invariant on create.
type Session struct {
	ID         string     `json:"id"`
	UserID     string     `json:"-"`
	UserAgent  string     `json:"user_agent"`
	IP         string     `json:"ip"`
	Location   string     `json:"location,omitempty"`
	Current    bool       `json:"current"`
	LastActive time.Time  `json:"last_active"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"-"`
	TokenHash  string     `json:"-"` // SHA-256 of the issued access token
}

// Revoked reports whether the session has been revoked.
func (s *Session) Revoked() bool { return s.RevokedAt != nil }

// Clone returns a copy safe to mutate.
func (s *Session) Clone() *Session {
	c := *s
	if s.RevokedAt != nil {
		t := *s.RevokedAt
		c.RevokedAt = &t
	}
	return &c
}
