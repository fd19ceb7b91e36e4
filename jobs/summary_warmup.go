package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/cassia-erp/cassia-erp/internal/ledger"
)

// SummaryWarmupJob precomputes the unfiltered ledger summary so the first
// dashboard hit after an invalidation does not pay the aggregation cost.
type SummaryWarmupJob struct {
	Ledger *ledger.Service
	Logger *slog.Logger
}

// NewSummaryWarmupJob wires dependencies for the warmup handler.
func NewSummaryWarmupJob(ledgerSvc *ledger.Service, logger *slog.Logger) *SummaryWarmupJob {
	return &SummaryWarmupJob{Ledger: ledgerSvc, Logger: logger}
}

// Handle processes TaskLedgerSummaryWarmup tasks.
func (j *SummaryWarmupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Ledger == nil {
		return errors.New("summary warmup: handler not configured")
	}
	started := time.Now()
	if _, err := j.Ledger.UnfilteredSummary(ctx); err != nil {
		j.logger().Error("warm ledger summary", slog.Any("error", err))
		return err
	}
	j.logger().Info("warmed ledger summary", slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *SummaryWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLedgerSummaryWarmup))
	}
	return slog.Default().With(slog.String("job", TaskLedgerSummaryWarmup))
}
