package domain

import (
	"regexp"
	"time"
)

// User is an account holder. Unique by ID and by Username; Email is unique
// across local identities.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Bio        string    `json:"bio,omitempty"`
	Website    string    `json:"website,omitempty"`
	Location   string    `json:"location,omitempty"`
	Company    string    `json:"company,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	MFAEnabled bool      `json:"mfa_enabled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Clone returns a copy safe to mutate without touching shared snapshots.
func (u *User) Clone() *User {
	c := *u
	return &c
}

var (
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool { return emailRe.MatchString(s) }

// ValidUsername reports whether s is an allowed username (alphanumeric plus
// hyphen, up to 39 chars, must not start with a hyphen).
func ValidUsername(s string) bool { return usernameRe.MatchString(s) }
