package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/travel-crm/internal/config"
	"github.com/ignite/travel-crm/internal/observability"
	"github.com/ignite/travel-crm/internal/pkg/distlock"
	"github.com/ignite/travel-crm/internal/pkg/logger"
	"github.com/ignite/travel-crm/internal/repository/postgres"
	"github.com/ignite/travel-crm/internal/service/abtest"
	"github.com/ignite/travel-crm/internal/service/campaign"
	"github.com/ignite/travel-crm/internal/tracking"
	"github.com/ignite/travel-crm/internal/worker"
)

func main() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	cfg, err := config.LoadFromEnv(path)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Observability.Environment, cfg.Observability.LogLevel); err != nil {
		logger.Error("failed to init logger", "error", err)
		os.Exit(1)
	}
	defer logger.Sync()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName: cfg.Observability.ServiceName + "-worker",
		Environment: cfg.Observability.Environment,
		Exporter:    cfg.Observability.TraceExporter,
	})
	if err != nil {
		logger.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	campaigns := campaign.NewService(postgres.NewCampaignRepo(db))

	var consumer *tracking.Consumer
	if cfg.Tracking.QueueURL != "" {
		sqsClient, err := tracking.NewSQSClient(ctx, cfg.Tracking)
		if err != nil {
			logger.Error("sqs client", "error", err)
			os.Exit(1)
		}
		consumer = tracking.NewConsumer(sqsClient, cfg.Tracking.QueueURL, campaigns)
		consumer.Start(ctx)
	} else {
		logger.Warn("SQS_TRACKING_QUEUE_URL not set, tracking consumer disabled")
	}

	var evaluator *worker.ABTestEvaluator
	if cfg.ABTest.AutoEvaluate {
		redisClient, err := distlock.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Warn("redis unavailable, using postgres advisory locks", "error", err)
		}
		if redisClient != nil {
			defer redisClient.Close()
		}
		locks := distlock.NewFactory(redisClient, db, cfg.ABTest.LockTTL())
		tests := abtest.NewService(postgres.NewABTestRepo(db), campaigns)
		evaluator = worker.NewABTestEvaluator(tests, campaigns, locks,
			cfg.ABTest.EvaluateInterval(), cfg.ABTest.MinSampleSize)
		evaluator.Start(ctx)
	}

	router := chi.NewRouter()
	router.Get("/health", worker.StatusHandler(evaluator))
	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Worker.HealthPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker health server failed", "error", err)
		}
	}()

	logger.Info("worker running",
		"health_addr", healthSrv.Addr,
		"tracking_consumer", consumer != nil,
		"abtest_auto_evaluate", evaluator != nil)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	healthSrv.Shutdown(shutdownCtx)
	if consumer != nil {
		consumer.Stop()
	}
	if evaluator != nil {
		evaluator.Stop()
	}
	cancel()
	logger.Info("worker stopped")
}
