package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/cassia-erp/cassia-erp/internal/app"
	"github.com/cassia-erp/cassia-erp/internal/content"
	"github.com/cassia-erp/cassia-erp/internal/ledger"
	"github.com/cassia-erp/cassia-erp/internal/platform/cache"
	"github.com/cassia-erp/cassia-erp/internal/platform/db"
	"github.com/cassia-erp/cassia-erp/internal/production"
	"github.com/cassia-erp/cassia-erp/internal/purchasing"
	"github.com/cassia-erp/cassia-erp/internal/sales"
	"github.com/cassia-erp/cassia-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	summaryCache := ledger.NewSummaryCache(redisClient, 10*time.Minute)
	purchasingService := purchasing.NewService(purchasing.NewRepository(pool), nil, summaryCache)
	salesService := sales.NewService(sales.NewRepository(pool), nil, summaryCache)
	productionService := production.NewService(production.NewRepository(pool), nil, summaryCache)
	ledgerService := ledger.NewService(purchasingService, salesService, productionService, summaryCache)

	contentService := content.NewService(content.NewRepository(pool))

	publishJob := jobs.NewPublishDueJob(contentService, logger)
	warmupJob := jobs.NewSummaryWarmupJob(ledgerService, logger)
	auditTrimJob := jobs.NewAuditTrimJob(pool, logger)

	auditTrimTask, err := jobs.NewAuditTrimTask(jobs.AuditTrimPayload{RetentionDays: 365})
	if err != nil {
		logger.Error("build audit trim task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskContentPublishDue, Handler: publishJob.Handle},
			{Type: jobs.TaskLedgerSummaryWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskAuditTrim, Handler: auditTrimJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/5 * * * *", Task: jobs.NewPublishDueTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "10 1 * * *", Task: jobs.NewSummaryWarmupTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 2 * * 0", Task: auditTrimTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
