package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type workScheduleRepository struct {
	db *database.DB
}

func NewWorkScheduleRepository(db *database.DB) schedule.WorkScheduleRepository {
	return &workScheduleRepository{db: db}
}

// GetByID implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) GetByID(ctx context.Context, id string) (schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, institution_id, name,
			to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
			break_duration_minutes, days_of_week, tolerance_minutes,
			created_at, updated_at
		FROM work_schedules
		WHERE id = $1
	`

	var (
		ws         schedule.WorkSchedule
		start, end string
		days       []int32
	)
	err := q.QueryRow(ctx, query, id).Scan(
		&ws.ID, &ws.InstitutionID, &ws.Name,
		&start, &end,
		&ws.BreakDurationMinutes, &days, &ws.ToleranceMinutes,
		&ws.CreatedAt, &ws.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.WorkSchedule{}, schedule.ErrScheduleNotFound
		}
		return schedule.WorkSchedule{}, fmt.Errorf("failed to get work schedule: %w", err)
	}

	if ws.StartTime, err = schedule.ParseClockTime(start); err != nil {
		return schedule.WorkSchedule{}, err
	}
	if ws.EndTime, err = schedule.ParseClockTime(end); err != nil {
		return schedule.WorkSchedule{}, err
	}
	for _, d := range days {
		ws.DaysOfWeek = append(ws.DaysOfWeek, time.Weekday(d))
	}

	return ws, nil
}

// Save implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) Save(ctx context.Context, ws schedule.WorkSchedule) error {
	if err := ws.Validate(); err != nil {
		return err
	}

	q := GetQuerier(ctx, r.db)

	days := make([]int32, 0, len(ws.DaysOfWeek))
	for _, d := range ws.DaysOfWeek {
		days = append(days, int32(d))
	}

	_, err := q.Exec(ctx, `
		INSERT INTO work_schedules (
			id, institution_id, name, start_time, end_time,
			break_duration_minutes, days_of_week, tolerance_minutes
		) VALUES ($1, $2, $3, $4::time, $5::time, $6, $7::smallint[], $8)
		ON CONFLICT (id) DO UPDATE
		SET institution_id = EXCLUDED.institution_id,
			name = EXCLUDED.name,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			break_duration_minutes = EXCLUDED.break_duration_minutes,
			days_of_week = EXCLUDED.days_of_week,
			tolerance_minutes = EXCLUDED.tolerance_minutes,
			updated_at = now()
	`, ws.ID, ws.InstitutionID, ws.Name, ws.StartTime.String(), ws.EndTime.String(),
		ws.BreakDurationMinutes, days, ws.ToleranceMinutes)
	if err != nil {
		return fmt.Errorf("failed to upsert work schedule: %w", err)
	}
	return nil
}
