package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/institution"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type workerRepository struct {
	db *database.DB
}

func NewWorkerRepository(db *database.DB) institution.WorkerRepository {
	return &workerRepository{db: db}
}

// GetByID implements institution.WorkerRepository.
func (r *workerRepository) GetByID(ctx context.Context, id string) (institution.Worker, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, institution_id, COALESCE(schedule_id, ''), created_at, updated_at
		FROM workers
		WHERE id = $1
	`

	var w institution.Worker
	err := q.QueryRow(ctx, query, id).Scan(&w.ID, &w.Name, &w.InstitutionID, &w.ScheduleID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return institution.Worker{}, institution.ErrWorkerNotFound
		}
		return institution.Worker{}, fmt.Errorf("failed to get worker: %w", err)
	}
	return w, nil
}

// Save implements institution.WorkerRepository.
func (r *workerRepository) Save(ctx context.Context, worker institution.Worker) error {
	q := GetQuerier(ctx, r.db)

	var scheduleID *string
	if worker.ScheduleID != "" {
		scheduleID = &worker.ScheduleID
	}

	_, err := q.Exec(ctx, `
		INSERT INTO workers (id, name, institution_id, schedule_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			institution_id = EXCLUDED.institution_id,
			schedule_id = EXCLUDED.schedule_id,
			updated_at = now()
	`, worker.ID, worker.Name, worker.InstitutionID, scheduleID)
	if err != nil {
		return fmt.Errorf("failed to upsert worker: %w", err)
	}
	return nil
}
