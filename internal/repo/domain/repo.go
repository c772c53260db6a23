package domain

import (
	"strings"
	"time"
)

// OwnerType says whether a repository belongs to a user or an organization.
type OwnerType string

const (
	OwnerUser OwnerType = "user"
	OwnerOrg  OwnerType = "organization"
)

// Repository is a code repository. FullName ("owner/name") is globally
// unique; deletion archives instead when issues or runs still reference it.
type Repository struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description,omitempty"`
	Private         bool      `json:"private"`
	Language        string    `json:"language,omitempty"`
	DefaultBranch   string    `json:"default_branch"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	OwnerID         string    `json:"-"`
	OwnerType       OwnerType `json:"-"`
	Archived        bool      `json:"archived"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Visibility returns the contract's visibility string for filtering.
func (r *Repository) Visibility() string {
	if r.Private {
		return "private"
	}
	return "public"
}

// Clone returns a copy safe to mutate.
func (r *Repository) Clone() *Repository {
	c := *r
	return &c
}

// SplitFullName splits "owner/name" into its parts; ok is false when the
// string is not of that shape.
func SplitFullName(fullName string) (owner, name string, ok bool) {
	owner, name, ok = strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return "", "", false
	}
	return owner, name, true
}
