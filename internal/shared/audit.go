package shared

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lodgelist/lodgelist/internal/core"
)

// AuditRecorder persists permission decisions into audit_logs for post-hoc
// review of denied and granted operations. It satisfies core.AuditRecorder.
type AuditRecorder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewAuditRecorder returns a recorder writing through the given pool.
func NewAuditRecorder(pool *pgxpool.Pool, logger *slog.Logger) *AuditRecorder {
	return &AuditRecorder{pool: pool, logger: logger}
}

// Record writes the event. Failures are logged and swallowed: audit is
// fire-and-forget and never fails the operation that produced the event.
func (r *AuditRecorder) Record(ctx context.Context, event core.PermissionEvent) {
	if r == nil || r.pool == nil {
		return
	}
	metaJSON, err := json.Marshal(event.Extra)
	if err != nil {
		metaJSON = []byte("{}")
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO audit_logs (actor_id, actor_role, permission, allowed, reason, meta, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.UserID, string(event.Role), event.Permission, event.Allowed, string(event.Reason), metaJSON, time.Now().UTC())
	if err != nil && r.logger != nil {
		r.logger.Warn("audit record", slog.Any("error", err))
	}
}
