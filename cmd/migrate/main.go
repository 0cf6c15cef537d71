package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ignite/travel-crm/internal/config"
	"github.com/ignite/travel-crm/internal/pkg/logger"
	"github.com/ignite/travel-crm/internal/repository/postgres"
)

func main() {
	dir := "migrations"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

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
	if cfg.Database.URL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	applied, err := postgres.Migrate(ctx, db, dir)
	if err != nil {
		logger.Error("migration failed", "applied", len(applied), "error", err)
		os.Exit(1)
	}
	fmt.Printf("Done: %d migrations applied\n", len(applied))
}
