// Package evaluation turns one worker day of time records into a DayEvaluation.
package evaluation

import (
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/report"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/schedule"
)

type Input struct {
	WorkerID string
	// Date is the calendar date as midnight UTC.
	Date     time.Time
	Records  []attendance.TimeRecord
	Schedule schedule.WorkSchedule
	// Location anchors the schedule's clock times. Nil means UTC.
	Location *time.Location
	// AsOf decides whether Date is still in progress.
	AsOf time.Time
}

type breakSpan struct {
	start time.Time
	end   time.Time
}

// Evaluate returns false when the date is not a scheduled workday and has no records.
func Evaluate(in Input) (report.DayEvaluation, bool) {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	scheduled := in.Schedule.IsWorkday(in.Date.Weekday())
	if !scheduled && len(in.Records) == 0 {
		return report.DayEvaluation{}, false
	}

	eval := report.DayEvaluation{
		WorkerID:   in.WorkerID,
		Date:       in.Date,
		Scheduled:  scheduled,
		Records:    in.Records,
		InProgress: isToday(in.Date, in.AsOf, loc),
	}
	if scheduled {
		eval.ExpectedMinutes = in.Schedule.ExpectedMinutes()
	}

	var (
		checkIn, checkOut *attendance.TimeRecord
		breaks            []breakSpan
		openBreak         *time.Time
	)
	for i := range in.Records {
		rec := &in.Records[i]
		switch rec.Type {
		case attendance.EventCheckIn:
			if checkIn == nil {
				checkIn = rec
			}
		case attendance.EventCheckOut:
			checkOut = rec
		case attendance.EventBreakStart:
			ts := rec.Timestamp
			openBreak = &ts
		case attendance.EventBreakEnd:
			if openBreak != nil {
				breaks = append(breaks, breakSpan{start: *openBreak, end: rec.Timestamp})
				openBreak = nil
			}
		}
	}

	if checkIn == nil {
		eval.Flags.Absent = scheduled
		eval.Status = eval.Flags.DerivedStatus()
		return eval, true
	}

	start := in.Schedule.StartTime.On(in.Date, loc)
	end := in.Schedule.EndTime.On(in.Date, loc)
	tolerance := in.Schedule.Tolerance()

	workedFrom := checkIn.Timestamp
	if scheduled {
		if checkIn.Timestamp.After(start.Add(tolerance)) {
			eval.Flags.Late = true
			eval.LateMinutes = minutes(checkIn.Timestamp.Sub(start))
		} else if checkIn.Timestamp.After(start) {
			workedFrom = start
		}
	}

	if checkOut == nil {
		eval.Flags.Incomplete = true
		if eval.InProgress && in.AsOf.After(workedFrom) {
			worked := in.AsOf.Sub(workedFrom) - breakTotal(breaks)
			if openBreak != nil && in.AsOf.After(*openBreak) {
				worked -= in.AsOf.Sub(*openBreak)
			}
			eval.WorkedMinutes = max(0, minutes(worked))
		}
		eval.Status = eval.Flags.DerivedStatus()
		return eval, true
	}
	eval.InProgress = false

	workedTo := checkOut.Timestamp
	if scheduled {
		if checkOut.Timestamp.Before(end.Add(-tolerance)) {
			eval.Flags.EarlyDeparture = true
			eval.EarlyDepartureMinutes = minutes(end.Sub(checkOut.Timestamp))
		} else if checkOut.Timestamp.Before(end) {
			workedTo = end
		}
	}

	var worked int
	if len(breaks) > 0 {
		worked = minutes(workedTo.Sub(workedFrom) - breakTotal(breaks))
	} else {
		worked = minutes(workedTo.Sub(workedFrom)) - in.Schedule.BreakDurationMinutes
	}
	eval.WorkedMinutes = max(0, worked)

	eval.OvertimeMinutes = max(0, eval.WorkedMinutes-eval.ExpectedMinutes)
	eval.Flags.Overtime = eval.OvertimeMinutes > 0
	eval.Status = eval.Flags.DerivedStatus()
	return eval, true
}

func breakTotal(breaks []breakSpan) time.Duration {
	var total time.Duration
	for _, b := range breaks {
		if b.end.After(b.start) {
			total += b.end.Sub(b.start)
		}
	}
	return total
}

func minutes(d time.Duration) int {
	return int(d / time.Minute)
}

func isToday(date, asOf time.Time, loc *time.Location) bool {
	if asOf.IsZero() {
		return false
	}
	return attendance.WorkDateOf(asOf, loc).Equal(date)
}
