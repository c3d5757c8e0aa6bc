package attendance

import (
	"context"
	"time"
)

// AttendanceService records attendance events through the daily state machine.
type AttendanceService interface {
	// Record validates, authorizes and appends one event. Nothing is written on failure.
	Record(ctx context.Context, cmd RecordCommand) (TimeRecord, error)

	// DayState returns the day's state, allowed next events and records.
	// A nil date means today in the institution's time zone.
	DayState(ctx context.Context, workerID string, date *time.Time) (DaySnapshot, error)

	ListDayRecords(ctx context.Context, workerID string, date time.Time) ([]TimeRecord, error)
}

type DaySnapshot struct {
	WorkerID      string
	WorkDate      time.Time
	State         DayState
	AllowedEvents []EventType
	Records       []TimeRecord
}
