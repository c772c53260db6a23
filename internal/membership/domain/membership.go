package domain

import "time"

// Role is a member's role within an organization.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleMember
}

// Admin reports whether the role can manage org settings, teams, and members.
func (r Role) Admin() bool { return r == RoleOwner || r == RoleAdmin }

// Membership links a user to an organization with a role.
type Membership struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"-"`
	UserID    string    `json:"-"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a copy safe to mutate.
func (m *Membership) Clone() *Membership {
	c := *m
	return &c
}
