package schedule

import "errors"

var (
	ErrScheduleNotFound = errors.New("work schedule not found")
	ErrInvalidSchedule  = errors.New("invalid work schedule")
)
