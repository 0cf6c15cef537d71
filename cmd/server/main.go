package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/travel-crm/internal/api"
	"github.com/ignite/travel-crm/internal/config"
	"github.com/ignite/travel-crm/internal/observability"
	"github.com/ignite/travel-crm/internal/pkg/distlock"
	"github.com/ignite/travel-crm/internal/pkg/logger"
	"github.com/ignite/travel-crm/internal/repository/postgres"
	"github.com/ignite/travel-crm/internal/service/abtest"
	"github.com/ignite/travel-crm/internal/service/campaign"
	"github.com/ignite/travel-crm/internal/service/scoring"
	"github.com/ignite/travel-crm/internal/tracking"
)

func main() {
	cfg, err := config.LoadFromEnv(configPath())
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
		ServiceName: cfg.Observability.ServiceName,
		Environment: cfg.Observability.Environment,
		Exporter:    cfg.Observability.TraceExporter,
	})
	if err != nil {
		logger.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	redisClient, err := distlock.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		// readiness reports redis down; the API itself does not need it
		logger.Warn("redis unavailable", "error", err)
	}

	campaigns := campaign.NewService(postgres.NewCampaignRepo(db))
	leads := scoring.NewService(postgres.NewContactRepo(db),
		scoring.WithLimits(cfg.Scoring.DefaultTopLimit, cfg.Scoring.MaxTopLimit))
	tests := abtest.NewService(postgres.NewABTestRepo(db), campaigns)

	var links api.LinkSigner
	if cfg.Tracking.SigningKey != "" {
		links = tracking.NewSigner(cfg.Tracking.SigningKey, cfg.Tracking.BaseURL)
	} else {
		logger.Warn("TRACKING_SIGNING_KEY not set, tracking link generation disabled")
	}

	server := api.NewServer(cfg.Server,
		api.NewHandlers(leads, campaigns, tests, links),
		api.NewHealthChecker(db, redisClient),
	)

	go func() {
		logger.Info("api server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down api server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown failed", "error", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/config.yaml"
}
