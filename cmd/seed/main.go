package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/config"
	"github.com/cmlabs-hris/timesheet-engine/internal/fixtures"
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

	file := flag.String("file", cfg.Storage.DirectoryFile, "directory YAML file")
	withDefaults := flag.Bool("with-default-schedules", false, "also create the default schedule templates for every institution")
	flag.Parse()

	log, err := logger.NewLogger(cfg.App.LogLevel, "console", "timesheet-seed")
	if err != nil {
		fmt.Println("Error building logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if *file == "" {
		log.Fatal("no directory file given; pass -file or set DIRECTORY_FILE")
	}

	dir, err := config.LoadDirectory(*file)
	if err != nil {
		log.Fatal("failed to load directory", zap.Error(err))
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	err = postgresql.WithTransaction(ctx, db, func(ctx context.Context) error {
		schedules := postgresql.NewWorkScheduleRepository(db)
		if err := dir.Apply(ctx,
			postgresql.NewInstitutionRepository(db),
			schedules,
			postgresql.NewWorkerRepository(db),
		); err != nil {
			return err
		}
		if !*withDefaults {
			return nil
		}
		for _, inst := range dir.Institutions {
			for _, ws := range fixtures.GetDefaultWorkSchedules(inst.ID) {
				if err := schedules.Save(ctx, ws); err != nil {
					return fmt.Errorf("failed to save default schedule %s: %w", ws.ID, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}

	log.Info("directory seeded",
		zap.Int("institutions", len(dir.Institutions)),
		zap.Int("schedules", len(dir.Schedules)),
		zap.Int("workers", len(dir.Workers)),
	)
}
