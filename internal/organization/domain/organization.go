package domain

import (
	"regexp"
	"time"
)

// Settings are the org-level toggles exposed on the settings endpoint.
// Field names follow the wire contract (camelCase).
type Settings struct {
	Visibility              string `json:"visibility"`
	MemberVisibility        string `json:"memberVisibility"`
	AllowMemberRepositories bool   `json:"allowMemberRepositories"`
	RequireTwoFactor        bool   `json:"requireTwoFactor"`
}

// Organization is a tenant owning repositories, teams, and members.
// Slug is globally unique.
type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Website     string    `json:"website,omitempty"`
	Location    string    `json:"location,omitempty"`
	Settings    Settings  `json:"settings"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Clone returns a copy safe to mutate.
func (o *Organization) Clone() *Organization {
	c := *o
	return &c
}

var slugRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

// ValidSlug reports whether s is an allowed org/team slug.
func ValidSlug(s string) bool { return slugRe.MatchString(s) }
