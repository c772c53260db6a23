package domain

import "time"

// Privacy controls who can see a team.
type Privacy string

const (
	PrivacyVisible Privacy = "visible"
	PrivacySecret  Privacy = "secret"
)

// Valid reports whether p is a known privacy level.
func (p Privacy) Valid() bool { return p == PrivacyVisible || p == PrivacySecret }

// Team is a group of org members. ParentID forms a tree within the org;
// cycle-producing updates are rejected by the service layer.
type Team struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"-"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	ParentID    *string   `json:"parent_id,omitempty"`
	Privacy     Privacy   `json:"privacy"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Clone returns a copy safe to mutate.
func (t *Team) Clone() *Team {
	c := *t
	if t.ParentID != nil {
		p := *t.ParentID
		c.ParentID = &p
	}
	return &c
}
