package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"mockforge/internal/audit"
)

// NewAuditEmitter wraps an AuditLogger so every audit event is also emitted
// as an OTel log record. With a nil provider the inner logger is returned
// unchanged.
func NewAuditEmitter(inner audit.AuditLogger, provider *sdklog.LoggerProvider) audit.AuditLogger {
	if provider == nil {
		return inner
	}
	return &auditEmitter{inner: inner, logger: provider.Logger("mockforge.audit")}
}

type auditEmitter struct {
	inner  audit.AuditLogger
	logger otellog.Logger
}

// LogEvent records the event through the inner logger and emits a log
// record. Best-effort like the audit trail itself.
func (e *auditEmitter) LogEvent(ctx context.Context, orgID, actorID, event, targetType, targetID string, details map[string]string) {
	if e.inner != nil {
		e.inner.LogEvent(ctx, orgID, actorID, event, targetType, targetID, details)
	}

	rec := otellog.Record{}
	rec.SetTimestamp(time.Now().UTC())
	rec.SetBody(otellog.StringValue(event))
	if orgID != "" {
		rec.AddAttributes(otellog.String("org_id", orgID))
	}
	if actorID != "" {
		rec.AddAttributes(otellog.String("actor_id", actorID))
	}
	if targetType != "" {
		rec.AddAttributes(otellog.String("target_type", targetType))
	}
	if targetID != "" {
		rec.AddAttributes(otellog.String("target_id", targetID))
	}
	for k, v := range details {
		rec.AddAttributes(otellog.String("detail."+k, v))
	}
	e.logger.Emit(ctx, rec)
}
