package domain

import "time"

// State is an issue's lifecycle state.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// Valid reports whether s is a known state.
func (s State) Valid() bool { return s == StateOpen || s == StateClosed }

// Issue is a tracker item. Number is unique and monotonically assigned per
// repository; ClosedAt is set exactly while State is closed.
type Issue struct {
	ID          string     `json:"id"`
	RepoID      string     `json:"-"`
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	Body        string     `json:"body,omitempty"`
	State       State      `json:"state"`
	Labels      []string   `json:"labels"`
	AuthorID    string     `json:"-"`
	AssigneeIDs []string   `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
}

// Clone returns a deep copy safe to mutate.
func (i *Issue) Clone() *Issue {
	c := *i
	c.Labels = append([]string(nil), i.Labels...)
	c.AssigneeIDs = append([]string(nil), i.AssigneeIDs...)
	if i.ClosedAt != nil {
		t := *i.ClosedAt
		c.ClosedAt = &t
	}
	return &c
}

// Comment is a threaded reply on an issue.
type Comment struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"-"`
	AuthorID  string    `json:"-"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a copy safe to mutate.
func (c *Comment) Clone() *Comment {
	cp := *c
	return &cp
}
