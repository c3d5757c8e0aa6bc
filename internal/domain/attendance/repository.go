package attendance

import (
	"context"
	"time"
)

// TimeRecordRepository is an append-only log of TimeRecords keyed by (worker, work date).
type TimeRecordRepository interface {
	// Append stores a new record. Implementations must reject a second
	// check_in for the same worker day with ErrIllegalTransition.
	Append(ctx context.Context, record TimeRecord) (TimeRecord, error)

	// ListByWorkerAndDate returns the day's records ordered by sequence.
	ListByWorkerAndDate(ctx context.Context, workerID string, workDate time.Time) ([]TimeRecord, error)

	// ListByWorkerBetween returns records with from <= work date <= to, ordered by date and sequence.
	ListByWorkerBetween(ctx context.Context, workerID string, from, to time.Time) ([]TimeRecord, error)

	// ListOpenDays returns worker days on workDate with a check_in and no check_out.
	ListOpenDays(ctx context.Context, workDate time.Time) ([]OpenDay, error)
}
