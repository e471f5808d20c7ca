package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/lodgelist/lodgelist/internal/accommodations"
	"github.com/lodgelist/lodgelist/internal/app"
	"github.com/lodgelist/lodgelist/internal/auth"
	"github.com/lodgelist/lodgelist/internal/core"
	"github.com/lodgelist/lodgelist/internal/destinations"
	"github.com/lodgelist/lodgelist/internal/events"
	"github.com/lodgelist/lodgelist/internal/observability"
	"github.com/lodgelist/lodgelist/internal/platform/cache"
	"github.com/lodgelist/lodgelist/internal/platform/db"
	"github.com/lodgelist/lodgelist/internal/posts"
	"github.com/lodgelist/lodgelist/internal/shared"
	"github.com/lodgelist/lodgelist/internal/users"
	"github.com/lodgelist/lodgelist/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
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
	slog.SetDefault(logger)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
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

	queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	audit := shared.NewAuditRecorder(pool, logger)
	serviceLogger := func(entity string) *core.ServiceLogger {
		return core.NewServiceLogger(entity, logger, audit)
	}

	userRepo := users.NewRepository(pool)
	userService := users.NewService(userRepo, serviceLogger("users"))

	tokens := auth.NewTokenManager(redisClient, cfg.AuthTokenTTL)
	authService := auth.NewService(userRepo, tokens)

	destinationService := destinations.NewService(destinations.NewRepository(pool), serviceLogger("destinations"))
	accommodationService := accommodations.NewService(accommodations.NewRepository(pool), queue, serviceLogger("accommodations"))
	eventService := events.NewService(events.NewRepository(pool), serviceLogger("events"))
	postService := posts.NewService(posts.NewRepository(pool), serviceLogger("posts"))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	metrics := observability.NewMetrics()

	router := app.NewRouter(app.MiddlewareConfig{
		Logger:      logger,
		Config:      cfg,
		AuthService: authService,
	}, app.Handlers{
		Auth:           auth.NewHandler(logger, authService),
		Users:          users.NewHandler(userService),
		Destinations:   destinations.NewHandler(destinationService),
		Accommodations: accommodations.NewHandler(accommodationService),
		Events:         events.NewHandler(eventService),
		Posts:          posts.NewHandler(postService),
		Jobs:           jobs.NewHandler(inspector, logger),
	}, metrics)

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server run", slog.Any("error", err))
		os.Exit(1)
	}
}
