package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/config"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/logger"
	"github.com/cmlabs-hris/timesheet-engine/internal/repository/postgresql"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.App.LogLevel, "console", "timesheet-migrate")
	if err != nil {
		fmt.Println("Error building logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	applied, err := postgresql.Migrate(ctx, db)
	for _, name := range applied {
		log.Info("migration applied", zap.String("name", name))
	}
	if err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	if len(applied) == 0 {
		log.Info("schema is up to date")
	}
}
