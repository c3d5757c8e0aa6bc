package report

import "errors"

var (
	ErrInvalidPeriod = errors.New("report period must end on or after its start and span at most 366 days")
	ErrNotWorkday    = errors.New("date is not a scheduled workday and has no records")
	ErrFutureDate    = errors.New("date is in the future")
)
