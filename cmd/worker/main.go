package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/duesdesk/duesdesk/internal/app"
	"github.com/duesdesk/duesdesk/internal/dues"
	"github.com/duesdesk/duesdesk/internal/platform/cache"
	"github.com/duesdesk/duesdesk/internal/platform/db"
	"github.com/duesdesk/duesdesk/internal/recon"
	"github.com/duesdesk/duesdesk/internal/shared"
	"github.com/duesdesk/duesdesk/jobs"
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
	defer redisClient.Close()

	locker := shared.NewMonthLocker(redisClient, cfg.RunLockTTL)
	duesService := dues.NewService(dues.NewRepository(pool), locker, logger)
	reconService := recon.NewService(recon.NewRepository(pool), locker, logger)

	ensureTask, err := jobs.NewEnsureDuesTask(jobs.MonthPayload{})
	if err != nil {
		logger.Error("build dues task", slog.Any("error", err))
		os.Exit(1)
	}
	reconcileTask, err := jobs.NewReconcileTask(jobs.MonthPayload{})
	if err != nil {
		logger.Error("build reconcile task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeEnsureDues, Handler: jobs.NewEnsureDuesHandler(duesService, logger)},
			{Type: jobs.TaskTypeReconcile, Handler: jobs.NewReconcileHandler(reconService, logger)},
		},
		Cron: []jobs.CronRegistration{
			// Open a fresh ledger at the start of each month, then sweep
			// unmatched transactions once a day.
			{Spec: "10 0 1 * *", Task: ensureTask, Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
			{Spec: "30 2 * * *", Task: reconcileTask, Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
