package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type timeRecordRepository struct {
	db *database.DB
}

func NewTimeRecordRepository(db *database.DB) attendance.TimeRecordRepository {
	return &timeRecordRepository{db: db}
}

const timeRecordColumns = `
	id::text, worker_id, institution_id, work_date, sequence, type, timestamp, method,
	latitude, longitude, accuracy_meters, captured_at, distance_meters,
	token_nonce, zone_label, created_at`

// Append implements attendance.TimeRecordRepository.
func (r *timeRecordRepository) Append(ctx context.Context, record attendance.TimeRecord) (attendance.TimeRecord, error) {
	q := GetQuerier(ctx, r.db)

	var lat, lon, acc *float64
	var capturedAt *time.Time
	if loc := record.Proof.Location; loc != nil {
		lat, lon, acc = &loc.Latitude, &loc.Longitude, &loc.AccuracyMeters
		capturedAt = &loc.CapturedAt
	}

	query := `
		INSERT INTO time_records (
			id, worker_id, institution_id, work_date, sequence, type, timestamp, method,
			latitude, longitude, accuracy_meters, captured_at, distance_meters,
			token_nonce, zone_label
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		) RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		record.ID,
		record.WorkerID,
		record.InstitutionID,
		record.WorkDate,
		record.Sequence,
		string(record.Type),
		record.Timestamp,
		string(record.Method),
		lat,
		lon,
		acc,
		capturedAt,
		record.Proof.DistanceMeters,
		record.Proof.TokenNonce,
		record.Proof.ZoneLabel,
	).Scan(&record.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return attendance.TimeRecord{}, fmt.Errorf("%w: concurrent write for %s on %s",
				attendance.ErrIllegalTransition, record.WorkerID, record.WorkDate.Format("2006-01-02"))
		}
		return attendance.TimeRecord{}, fmt.Errorf("failed to insert time record: %w", err)
	}

	return record, nil
}

// ListByWorkerAndDate implements attendance.TimeRecordRepository.
func (r *timeRecordRepository) ListByWorkerAndDate(ctx context.Context, workerID string, workDate time.Time) ([]attendance.TimeRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timeRecordColumns + `
		FROM time_records
		WHERE worker_id = $1 AND work_date = $2
		ORDER BY sequence
	`

	rows, err := q.Query(ctx, query, workerID, workDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list time records: %w", err)
	}
	return collectTimeRecords(rows)
}

// ListByWorkerBetween implements attendance.TimeRecordRepository.
func (r *timeRecordRepository) ListByWorkerBetween(ctx context.Context, workerID string, from, to time.Time) ([]attendance.TimeRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timeRecordColumns + `
		FROM time_records
		WHERE worker_id = $1 AND work_date BETWEEN $2 AND $3
		ORDER BY work_date, sequence
	`

	rows, err := q.Query(ctx, query, workerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list time records: %w", err)
	}
	return collectTimeRecords(rows)
}

// ListOpenDays implements attendance.TimeRecordRepository.
func (r *timeRecordRepository) ListOpenDays(ctx context.Context, workDate time.Time) ([]attendance.OpenDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT ON (t.worker_id) t.worker_id, t.work_date, t.type, t.timestamp
		FROM time_records t
		WHERE t.work_date = $1
		  AND EXISTS (
			SELECT 1 FROM time_records c
			WHERE c.worker_id = t.worker_id AND c.work_date = t.work_date AND c.type = 'check_in'
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM time_records c
			WHERE c.worker_id = t.worker_id AND c.work_date = t.work_date AND c.type = 'check_out'
		  )
		ORDER BY t.worker_id, t.sequence DESC
	`

	rows, err := q.Query(ctx, query, workDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list open days: %w", err)
	}
	defer rows.Close()

	var open []attendance.OpenDay
	for rows.Next() {
		var d attendance.OpenDay
		var typ string
		if err := rows.Scan(&d.WorkerID, &d.WorkDate, &typ, &d.LastTimestamp); err != nil {
			return nil, fmt.Errorf("failed to scan open day: %w", err)
		}
		d.LastType = attendance.EventType(typ)
		open = append(open, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating open days: %w", err)
	}
	return open, nil
}

func collectTimeRecords(rows pgx.Rows) ([]attendance.TimeRecord, error) {
	defer rows.Close()

	var records []attendance.TimeRecord
	for rows.Next() {
		var (
			rec           attendance.TimeRecord
			typ, method   string
			lat, lon, acc *float64
			capturedAt    *time.Time
		)
		err := rows.Scan(
			&rec.ID, &rec.WorkerID, &rec.InstitutionID, &rec.WorkDate, &rec.Sequence, &typ, &rec.Timestamp, &method,
			&lat, &lon, &acc, &capturedAt, &rec.Proof.DistanceMeters,
			&rec.Proof.TokenNonce, &rec.Proof.ZoneLabel, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time record: %w", err)
		}

		rec.Type = attendance.EventType(typ)
		rec.Method = attendance.Method(method)
		rec.Timestamp = rec.Timestamp.UTC()
		if lat != nil && lon != nil {
			reading := attendance.LocationReading{Latitude: *lat, Longitude: *lon}
			if acc != nil {
				reading.AccuracyMeters = *acc
			}
			if capturedAt != nil {
				reading.CapturedAt = capturedAt.UTC()
			}
			rec.Proof.Location = &reading
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time records: %w", err)
	}
	return records, nil
}
