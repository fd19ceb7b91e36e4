package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/cassia-erp/cassia-erp/internal/content"
)

// PublishDueJob publishes scheduled blog posts whose time has come.
type PublishDueJob struct {
	Content *content.Service
	Logger  *slog.Logger
}

// NewPublishDueJob wires dependencies for the publication handler.
func NewPublishDueJob(contentSvc *content.Service, logger *slog.Logger) *PublishDueJob {
	return &PublishDueJob{Content: contentSvc, Logger: logger}
}

// Handle processes TaskContentPublishDue tasks.
func (j *PublishDueJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Content == nil {
		return errors.New("publish due: handler not configured")
	}
	published, err := j.Content.PublishDue(ctx)
	if err != nil {
		j.logger().Error("publish due posts", slog.Any("error", err))
		return err
	}
	if published > 0 {
		j.logger().Info("published scheduled posts", slog.Int64("count", published))
	}
	return nil
}

func (j *PublishDueJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskContentPublishDue))
	}
	return slog.Default().With(slog.String("job", TaskContentPublishDue))
}
