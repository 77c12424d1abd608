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

	"github.com/asetdesk/asetdesk/internal/app"
	"github.com/asetdesk/asetdesk/internal/history"
	jobmetrics "github.com/asetdesk/asetdesk/internal/jobs"
	"github.com/asetdesk/asetdesk/internal/notification"
	"github.com/asetdesk/asetdesk/internal/observability"
	"github.com/asetdesk/asetdesk/internal/platform/cache"
	"github.com/asetdesk/asetdesk/internal/platform/db"
	"github.com/asetdesk/asetdesk/jobs"
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

	obs := observability.NewMetrics()
	metrics := jobmetrics.NewMetrics(obs.Registerer())

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", obs.Handler())
	metricsSrv := &http.Server{Addr: cfg.WorkerAddr, Handler: metricsMux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", slog.Any("error", err))
		}
	}()

	notifRepo := notification.NewPgRepository(pool)
	historyRepo := history.NewPgRepository(pool)
	hiddenStore := notification.NewHiddenStore(redisClient)
	sweepJob := jobs.NewNotificationSweepJob(notifRepo, historyRepo, hiddenStore, logger, metrics)

	pruneTask, err := jobs.NewNotificationPruneTask(time.Now().UTC())
	if err != nil {
		logger.Error("build prune task", slog.Any("error", err))
		os.Exit(1)
	}
	revalidateTask, err := jobs.NewNotificationRevalidateTask(time.Now().UTC())
	if err != nil {
		logger.Error("build revalidate task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskNotificationPrune, Handler: sweepJob.HandlePrune},
			{Type: jobs.TaskNotificationRevalidate, Handler: sweepJob.HandleRevalidate},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/30 * * * *", Task: pruneTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "15 * * * *", Task: revalidateTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	runErr := worker.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown", slog.Any("error", err))
	}

	if runErr != nil && runErr != context.Canceled {
		logger.Error("worker run", slog.Any("error", runErr))
		os.Exit(1)
	}
}
