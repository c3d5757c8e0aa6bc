package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/attendance"
)

type dayKey struct {
	workerID string
	workDate time.Time
}

type timeRecordRepository struct {
	mu   sync.RWMutex
	days map[dayKey][]attendance.TimeRecord
}

func NewTimeRecordRepository() attendance.TimeRecordRepository {
	return &timeRecordRepository{days: make(map[dayKey][]attendance.TimeRecord)}
}

// Append implements attendance.TimeRecordRepository.
func (r *timeRecordRepository) Append(ctx context.Context, record attendance.TimeRecord) (attendance.TimeRecord, error) {
	if err := ctx.Err(); err != nil {
		return attendance.TimeRecord{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := dayKey{workerID: record.WorkerID, workDate: record.WorkDate}
	existing := r.days[key]
	for _, rec := range existing {
		if rec.Sequence == record.Sequence {
			return attendance.TimeRecord{}, fmt.Errorf("%w: sequence %d already recorded", attendance.ErrIllegalTransition, record.Sequence)
		}
		if record.Type == attendance.EventCheckIn && rec.Type == attendance.EventCheckIn {
			return attendance.TimeRecord{}, fmt.Errorf("%w: already checked in", attendance.ErrIllegalTransition)
		}
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	r.days[key] = append(existing, record)
	return record, nil
}

// ListByWorkerAndDate implements attendance.TimeRecordRepository.
func (r *timeRecordRepository) ListByWorkerAndDate(ctx context.Context, workerID string, workDate time.Time) ([]attendance.TimeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := slices.Clone(r.days[dayKey{workerID: workerID, workDate: workDate}])
	sortRecords(records)
	return records, nil
}

// ListByWorkerBetween implements attendance.TimeRecordRepository.
func (r *timeRecordRepository) ListByWorkerBetween(ctx context.Context, workerID string, from, to time.Time) ([]attendance.TimeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []attendance.TimeRecord
	for key, recs := range r.days {
		if key.workerID != workerID || key.workDate.Before(from) || key.workDate.After(to) {
			continue
		}
		records = append(records, recs...)
	}
	sortRecords(records)
	return records, nil
}

// ListOpenDays implements attendance.TimeRecordRepository.
func (r *timeRecordRepository) ListOpenDays(ctx context.Context, workDate time.Time) ([]attendance.OpenDay, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var open []attendance.OpenDay
	for key, recs := range r.days {
		if !key.workDate.Equal(workDate) || len(recs) == 0 {
			continue
		}
		sorted := slices.Clone(recs)
		sortRecords(sorted)

		hasCheckIn, hasCheckOut := false, false
		for _, rec := range sorted {
			switch rec.Type {
			case attendance.EventCheckIn:
				hasCheckIn = true
			case attendance.EventCheckOut:
				hasCheckOut = true
			}
		}
		if hasCheckIn && !hasCheckOut {
			last := sorted[len(sorted)-1]
			open = append(open, attendance.OpenDay{
				WorkerID:      key.workerID,
				WorkDate:      key.workDate,
				LastType:      last.Type,
				LastTimestamp: last.Timestamp,
			})
		}
	}
	slices.SortFunc(open, func(a, b attendance.OpenDay) int {
		return cmp.Compare(a.WorkerID, b.WorkerID)
	})
	return open, nil
}

func sortRecords(records []attendance.TimeRecord) {
	slices.SortFunc(records, func(a, b attendance.TimeRecord) int {
		if c := a.WorkDate.Compare(b.WorkDate); c != 0 {
			return c
		}
		return cmp.Compare(a.Sequence, b.Sequence)
	})
}
