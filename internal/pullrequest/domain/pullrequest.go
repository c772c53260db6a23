package domain

import "time"

// State is a pull request's lifecycle state.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// ReviewState is the aggregate review verdict.
type ReviewState string

const (
	ReviewPending          ReviewState = "pending"
	ReviewApproved         ReviewState = "approved"
	ReviewChangesRequested ReviewState = "changes_requested"
)

// Valid reports whether r is a known review state.
func (r ReviewState) Valid() bool {
	return r == ReviewPending || r == ReviewApproved || r == ReviewChangesRequested
}

// PullRequest is a proposed change. Number is unique and monotonically
// assigned per repository; Merged implies State == closed.
type PullRequest struct {
	ID          string      `json:"id"`
	RepoID      string      `json:"-"`
	Number      int         `json:"number"`
	Title       string      `json:"title"`
	Body        string      `json:"body,omitempty"`
	State       State       `json:"state"`
	Merged      bool        `json:"merged"`
	Draft       bool        `json:"draft"`
	ReviewState ReviewState `json:"review_state"`
	AuthorID    string      `json:"-"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	MergedAt    *time.Time  `json:"merged_at,omitempty"`
	ClosedAt    *time.Time  `json:"closed_at,omitempty"`
}

// Clone returns a deep copy safe to mutate.
func (p *PullRequest) Clone() *PullRequest {
	c := *p
	if p.MergedAt != nil {
		t := *p.MergedAt
		c.MergedAt = &t
	}
	if p.ClosedAt != nil {
		t := *p.ClosedAt
		c.ClosedAt = &t
	}
	return &c
}
