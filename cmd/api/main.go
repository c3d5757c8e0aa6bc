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
	_ "time/tzdata"

	"github.com/cmlabs-hris/timesheet-engine/internal/config"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/institution"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/qrtoken"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/schedule"
	appHTTP "github.com/cmlabs-hris/timesheet-engine/internal/handler/http"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/logger"
	"github.com/cmlabs-hris/timesheet-engine/internal/repository/memory"
	"github.com/cmlabs-hris/timesheet-engine/internal/repository/postgresql"
	redisRepo "github.com/cmlabs-hris/timesheet-engine/internal/repository/redis"
	attendanceService "github.com/cmlabs-hris/timesheet-engine/internal/service/attendance"
	"github.com/cmlabs-hris/timesheet-engine/internal/service/geofence"
	qrTokenService "github.com/cmlabs-hris/timesheet-engine/internal/service/qrtoken"
	reportService "github.com/cmlabs-hris/timesheet-engine/internal/service/report"
	"go.uber.org/zap"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.App.LogLevel, cfg.App.LogFormat, "timesheet-engine")
	if err != nil {
		fmt.Println("Error building logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		records      attendance.TimeRecordRepository
		institutions institution.InstitutionRepository
		workers      institution.WorkerRepository
		schedules    schedule.WorkScheduleRepository
	)

	switch cfg.Storage.Type {
	case "postgres":
		db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		records = postgresql.NewTimeRecordRepository(db)
		institutions = postgresql.NewInstitutionRepository(db)
		workers = postgresql.NewWorkerRepository(db)
		schedules = postgresql.NewWorkScheduleRepository(db)
	case "memory":
		records = memory.NewTimeRecordRepository()
		institutions = memory.NewInstitutionRepository()
		workers = memory.NewWorkerRepository()
		schedules = memory.NewWorkScheduleRepository()

		dir, err := config.LoadDirectory(cfg.Storage.DirectoryFile)
		if err != nil {
			return err
		}
		if err := dir.Apply(ctx, institutions, schedules, workers); err != nil {
			return fmt.Errorf("failed to seed directory: %w", err)
		}
		log.Info("directory loaded",
			zap.String("file", cfg.Storage.DirectoryFile),
			zap.Int("institutions", len(dir.Institutions)),
			zap.Int("workers", len(dir.Workers)),
		)
	}

	var (
		tokens qrtoken.TokenStore
		purger qrtoken.Purger
	)
	switch cfg.Storage.TokenStoreType {
	case "redis":
		client, err := database.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		tokens = redisRepo.NewTokenStore(client, cfg.QR.Retention)
	case "memory":
		store := memory.NewTokenStore(cfg.QR.Retention)
		tokens, purger = store, store
	}

	manager := qrTokenService.NewManager(tokens, cfg.QR.MaxValidHours)
	geo := geofence.NewValidator(cfg.Geo.MaxAccuracyMeters, cfg.Geo.MaxReadingAge)

	attendanceSvc := attendanceService.NewAttendanceService(
		records,
		workers,
		institutions,
		geo,
		manager,
		log.Named("attendance"),
		attendanceService.WithMaxFutureSkew(cfg.Attendance.MaxFutureSkew),
	)
	reportSvc := reportService.NewReportService(records, workers, institutions, schedules, log.Named("report"))
	qrSvc := qrTokenService.NewQRTokenService(manager, tokens, institutions, log.Named("qrtoken"))

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
			Env:            cfg.App.Env,
			Version:        version,
		},
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc, reportSvc, workers),
		appHTTP.NewReportHandler(reportSvc, workers),
		appHTTP.NewQRTokenHandler(qrSvc),
	)

	if cfg.Cron.Enabled {
		scheduler := cron.NewScheduler(log)
		cron.NewAttendanceJobs(records, workers, institutions, purger, log.Named("jobs")).RegisterJobs(scheduler)
		scheduler.Start()
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
