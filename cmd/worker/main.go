package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/backend-material/internal/app"
	"github.com/noah-isme/backend-material/internal/config"
	"github.com/noah-isme/backend-material/internal/obs"
	"github.com/noah-isme/backend-material/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()
	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", obs.DefaultNamespace), nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	deps, err := app.New(startCtx, cfg, logger, app.Options{ApplicationName: "material-worker"})
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise dependencies")
	}
	defer deps.Close()

	srv := asynq.NewServer(deps.QueueRedis, asynq.Config{
		Concurrency:     cfg.QueueConcurrency,
		Queues:          map[string]int{queue.DefaultQueue: 1},
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        asynq.WarnLevel,
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			logger.Error().Err(err).Str("task", task.Type()).Msg("event task failed")
		}),
	})
	mux := asynq.NewServeMux()
	processor := &queue.Processor{
		Catalog:   deps.Catalog,
		Discount:  deps.Discount,
		Analytics: deps.Analytics,
		Logger:    logger,
	}
	processor.Register(mux)

	inspector := asynq.NewInspector(deps.QueueRedis)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Error().Err(err).Msg("close queue inspector")
		}
	}()
	sched, err := newScheduler(cfg.Location(), logger, []job{
		{
			name: "promotion-expiry",
			spec: cfg.PromotionExpirySchedule,
			run:  expirePromotions(deps.Discount, logger),
		},
		{
			name: "queue-depth",
			spec: envOrDefault("QUEUE_DEPTH_SCHEDULE", "@every 30s"),
			run: func(context.Context) error {
				return queue.ReportDepth(inspector, queue.DefaultQueue)
			},
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise scheduler")
	}

	metricsSrv := &http.Server{
		Addr:              envOrDefault("WORKER_METRICS_ADDR", ":9091"),
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start task server")
	}
	sched.Start()
	logger.Info().Int("concurrency", cfg.QueueConcurrency).Msg("worker starting")

	<-ctx.Done()
	logger.Info().Msg("worker shutting down")

	<-sched.Stop().Done()
	srv.Shutdown()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("metrics server shutdown")
	}
	logger.Info().Msg("worker shutdown complete")
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
