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

	"github.com/ignite/travel-crm/internal/config"
	"github.com/ignite/travel-crm/internal/pkg/logger"
	"github.com/ignite/travel-crm/internal/tracking"
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

	if cfg.Tracking.QueueURL == "" {
		logger.Error("SQS_TRACKING_QUEUE_URL is required")
		os.Exit(1)
	}
	if cfg.Tracking.SigningKey == "" {
		logger.Error("TRACKING_SIGNING_KEY is required")
		os.Exit(1)
	}

	sqsClient, err := tracking.NewSQSClient(context.Background(), cfg.Tracking)
	if err != nil {
		logger.Error("sqs client", "error", err)
		os.Exit(1)
	}
	pub := tracking.NewPublisher(sqsClient, cfg.Tracking.QueueURL)
	handler := tracking.NewHandler(tracking.NewSigner(cfg.Tracking.SigningKey, cfg.Tracking.BaseURL), pub)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Tracking.Port),
		Handler:      handler.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("tracking service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down tracking service")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}
