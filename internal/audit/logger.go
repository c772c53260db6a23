// Package audit records security-relevant events. Logging is best-effort:
// an audit failure never fails the operation being audited.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"mockforge/internal/audit/domain"
	auditrepo "mockforge/internal/audit/repository"
)

// SentinelOrgID is the org_id used for events with no org context
// (e.g. login_failure before any org is known).
const SentinelOrgID = "_system"

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// AuditLogger writes a single audit event. Used by every code path that
// changes security posture or org state.
type AuditLogger interface {
	LogEvent(ctx context.Context, orgID, actorID, event, targetType, targetID string, details map[string]string)
}

// Logger implements AuditLogger on the audit repository with an optional IP
// extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
}

// NewLogger returns an AuditLogger persisting to repo. ipExtractor may be
// nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor}
}

// LogEvent writes one audit entry. Best-effort: errors are logged, not returned.
func (l *Logger) LogEvent(ctx context.Context, orgID, actorID, event, targetType, targetID string, details map[string]string) {
	if l == nil || l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	if orgID == "" {
		orgID = SentinelOrgID
	}
	entry := &domain.AuditLog{
		ID:         uuid.New().String(),
		OrgID:      orgID,
		ActorID:    actorID,
		Event:      event,
		TargetType: targetType,
		TargetID:   targetID,
		IP:         ip,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s: %v", event, err)
	}
}
