package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/institution"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/qrtoken"
	"go.uber.org/zap"
)

type AttendanceJobs struct {
	records      attendance.TimeRecordRepository
	workers      institution.WorkerRepository
	institutions institution.InstitutionRepository
	purger       qrtoken.Purger
	logger       *zap.Logger
	now          func() time.Time
}

// NewAttendanceJobs builds the maintenance jobs. purger may be nil when the
// token store expires entries on its own.
func NewAttendanceJobs(
	records attendance.TimeRecordRepository,
	workers institution.WorkerRepository,
	institutions institution.InstitutionRepository,
	purger qrtoken.Purger,
	logger *zap.Logger,
) *AttendanceJobs {
	return &AttendanceJobs{
		records:      records,
		workers:      workers,
		institutions: institutions,
		purger:       purger,
		logger:       logger,
		now:          time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	if j.purger != nil {
		scheduler.AddJob("purge_expired_qr_tokens", 15*time.Minute, j.PurgeExpiredTokens)
	}
	scheduler.AddJob("flag_incomplete_days", time.Hour, j.FlagIncompleteDays)
}

func (j *AttendanceJobs) PurgeExpiredTokens(ctx context.Context) error {
	n, err := j.purger.PurgeExpired(ctx, j.now())
	if err != nil {
		return fmt.Errorf("failed to purge qr tokens: %w", err)
	}
	if n > 0 {
		j.logger.Info("expired qr tokens purged", zap.Int("count", n))
	}
	return nil
}

// FlagIncompleteDays warns about worker days that never reached check_out,
// where "yesterday" is taken in the timezone of each worker's institution.
// Records are never altered; the report shows such days as incomplete.
func (j *AttendanceJobs) FlagIncompleteDays(ctx context.Context) error {
	now := j.now()
	utcYesterday := attendance.WorkDateOf(now, time.UTC).AddDate(0, 0, -1)

	// Local dates differ from the UTC date by at most one day.
	locations := make(map[string]*time.Location)
	for offset := -1; offset <= 1; offset++ {
		workDate := utcYesterday.AddDate(0, 0, offset)
		open, err := j.records.ListOpenDays(ctx, workDate)
		if err != nil {
			return fmt.Errorf("failed to list open days: %w", err)
		}

		for _, d := range open {
			loc, err := j.workerLocation(ctx, locations, d.WorkerID)
			if err != nil {
				return err
			}
			if !d.WorkDate.Equal(attendance.WorkDateOf(now, loc).AddDate(0, 0, -1)) {
				continue
			}

			j.logger.Warn("attendance day left incomplete",
				zap.String("worker_id", d.WorkerID),
				zap.String("work_date", d.WorkDate.Format("2006-01-02")),
				zap.String("timezone", loc.String()),
				zap.String("last_event", string(d.LastType)),
				zap.Time("last_event_at", d.LastTimestamp),
			)
		}
	}
	return nil
}

// workerLocation resolves the timezone of a worker's institution, falling back
// to UTC for workers no longer in the directory.
func (j *AttendanceJobs) workerLocation(ctx context.Context, cache map[string]*time.Location, workerID string) (*time.Location, error) {
	if loc, ok := cache[workerID]; ok {
		return loc, nil
	}

	loc := time.UTC
	worker, err := j.workers.GetByID(ctx, workerID)
	switch {
	case errors.Is(err, institution.ErrWorkerNotFound):
		j.logger.Debug("open day for unknown worker", zap.String("worker_id", workerID))
	case err != nil:
		return nil, fmt.Errorf("failed to load worker %s: %w", workerID, err)
	default:
		inst, err := j.institutions.GetByID(ctx, worker.InstitutionID)
		switch {
		case errors.Is(err, institution.ErrInstitutionNotFound):
		case err != nil:
			return nil, fmt.Errorf("failed to load institution %s: %w", worker.InstitutionID, err)
		default:
			loc = inst.Location()
		}
	}

	cache[workerID] = loc
	return loc, nil
}
