package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultAuditRetentionDays = 365

// AuditTrimJob deletes audit rows past the retention window.
type AuditTrimJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
}

// NewAuditTrimJob wires dependencies for the trim handler.
func NewAuditTrimJob(pool *pgxpool.Pool, logger *slog.Logger) *AuditTrimJob {
	return &AuditTrimJob{Pool: pool, Logger: logger}
}

// Handle processes TaskAuditTrim tasks.
func (j *AuditTrimJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("audit trim: handler not configured")
	}
	var payload AuditTrimPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = defaultAuditRetentionDays
	}

	tag, err := j.Pool.Exec(ctx,
		`DELETE FROM audit_logs WHERE occurred_at < NOW() - ($1 * INTERVAL '1 day')`,
		payload.RetentionDays)
	if err != nil {
		j.logger().Error("trim audit logs", slog.Any("error", err))
		return err
	}
	if tag.RowsAffected() > 0 {
		j.logger().Info("trimmed audit logs", slog.Int64("deleted", tag.RowsAffected()), slog.Int("retention_days", payload.RetentionDays))
	}
	return nil
}

func (j *AuditTrimJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAuditTrim))
	}
	return slog.Default().With(slog.String("job", TaskAuditTrim))
}
