// Package jobs holds the asynq background tasks and worker runtime.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskContentPublishDue flips scheduled blog posts whose publish time passed.
	TaskContentPublishDue = "content:publish_due"
	// TaskLedgerSummaryWarmup precomputes the unfiltered ledger summary cache.
	TaskLedgerSummaryWarmup = "ledger:summary_warmup"
	// TaskAuditTrim removes audit rows older than the retention window.
	TaskAuditTrim = "audit:trim"
)

// NewPublishDueTask constructs the scheduled-post publication task.
func NewPublishDueTask() *asynq.Task {
	return asynq.NewTask(TaskContentPublishDue, nil)
}

// NewSummaryWarmupTask constructs the ledger summary warmup task.
func NewSummaryWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskLedgerSummaryWarmup, nil)
}

// AuditTrimPayload bounds the audit retention window.
type AuditTrimPayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewAuditTrimTask constructs an audit trim task.
func NewAuditTrimTask(payload AuditTrimPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditTrim, data), nil
}
