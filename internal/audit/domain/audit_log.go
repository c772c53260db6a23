package domain

import "time"

// AuditLog is one immutable audit trail entry. Event is dot-namespaced
// (e.g. "member.invited", "mfa.enabled"); Details carries free-form context.
type AuditLog struct {
	ID         string            `json:"id"`
	OrgID      string            `json:"-"`
	ActorID    string            `json:"-"`
	Event      string            `json:"event"`
	TargetType string            `json:"target_type,omitempty"`
	TargetID   string            `json:"target_id,omitempty"`
	IP         string            `json:"ip,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
	CreatedAt  time.Time         `json:"timestamp"`
}

// Clone returns a deep copy safe to mutate.
func (a *AuditLog) Clone() *AuditLog {
	c := *a
	if a.Details != nil {
		c.Details = make(map[string]string, len(a.Details))
		for k, v := range a.Details {
			c.Details[k] = v
		}
	}
	return &c
}
