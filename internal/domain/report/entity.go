package report

import (
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/attendance"
)

type Status string

const (
	StatusAbsent         Status = "absent"
	StatusIncomplete     Status = "incomplete"
	StatusLate           Status = "late"
	StatusEarlyDeparture Status = "early_departure"
	StatusOnTime         Status = "on_time"
)

// Flags keeps every condition observed on a day; Status only reports the dominant one.
type Flags struct {
	Absent         bool
	Incomplete     bool
	Late           bool
	EarlyDeparture bool
	Overtime       bool
}

// DerivedStatus applies absent > incomplete > late > early_departure > on_time.
func (f Flags) DerivedStatus() Status {
	switch {
	case f.Absent:
		return StatusAbsent
	case f.Incomplete:
		return StatusIncomplete
	case f.Late:
		return StatusLate
	case f.EarlyDeparture:
		return StatusEarlyDeparture
	default:
		return StatusOnTime
	}
}

// DayEvaluation is derived from a day's records and schedule. It is never stored.
type DayEvaluation struct {
	WorkerID              string
	Date                  time.Time
	Scheduled             bool
	Records               []attendance.TimeRecord
	Flags                 Flags
	Status                Status
	WorkedMinutes         int
	ExpectedMinutes       int
	OvertimeMinutes       int
	LateMinutes           int
	EarlyDepartureMinutes int
	InProgress            bool
}

// Report summarizes a worker's evaluated days over an inclusive period.
type Report struct {
	WorkerID        string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	WorkedMinutes   int
	ExpectedMinutes int
	OvertimeMinutes int
	TotalHours      float64
	ExpectedHours   float64
	OvertimeHours   float64
	LateArrivals    int
	EarlyDepartures int
	Absences        int
	IncompleteDays  int
	Days            []DayEvaluation
	Records         []attendance.TimeRecord
}

// MaxPeriodDays bounds a single report request.
const MaxPeriodDays = 366
