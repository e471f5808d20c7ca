package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/lodgelist/lodgelist/internal/accommodations"
	"github.com/lodgelist/lodgelist/internal/app"
	"github.com/lodgelist/lodgelist/internal/destinations"
	"github.com/lodgelist/lodgelist/internal/events"
	jobmetrics "github.com/lodgelist/lodgelist/internal/jobs"
	"github.com/lodgelist/lodgelist/internal/platform/db"
	"github.com/lodgelist/lodgelist/internal/posts"
	"github.com/lodgelist/lodgelist/jobs"
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := jobmetrics.NewMetrics(nil)

	destinationRepo := destinations.NewRepository(pool)
	recountJob := jobs.NewDestinationRecountJob(destinationRepo, logger, metrics)

	purgeJob := jobs.NewPurgeDeletedJob([]jobs.PurgeTarget{
		{Name: "accommodations", Store: accommodations.NewRepository(pool)},
		{Name: "destinations", Store: destinationRepo},
		{Name: "events", Store: events.NewRepository(pool)},
		{Name: "posts", Store: posts.NewRepository(pool)},
	}, cfg.PurgeAfter, logger, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDestinationRecount, Handler: recountJob.Handle},
			{Type: jobs.TaskPurgeDeleted, Handler: purgeJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 3 * * *", Task: jobs.NewPurgeDeletedTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
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
