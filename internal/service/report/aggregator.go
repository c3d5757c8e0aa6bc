package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/report"
)

// Aggregate folds day evaluations into a Report. The result depends only on its inputs.
func Aggregate(workerID string, evals []report.DayEvaluation, periodStart, periodEnd time.Time) report.Report {
	days := slices.Clone(evals)
	slices.SortStableFunc(days, func(a, b report.DayEvaluation) int {
		return a.Date.Compare(b.Date)
	})

	r := report.Report{
		WorkerID:    workerID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Days:        make([]report.DayEvaluation, 0, len(days)),
		Records:     []attendance.TimeRecord{},
	}

	for _, d := range days {
		r.Days = append(r.Days, d)
		r.Records = append(r.Records, d.Records...)

		r.WorkedMinutes += d.WorkedMinutes
		r.ExpectedMinutes += d.ExpectedMinutes
		r.OvertimeMinutes += d.OvertimeMinutes

		if d.Flags.Late {
			r.LateArrivals++
		}
		if d.Flags.EarlyDeparture {
			r.EarlyDepartures++
		}
		if d.Flags.Absent {
			r.Absences++
		}
		if d.Flags.Incomplete {
			r.IncompleteDays++
		}
	}

	slices.SortStableFunc(r.Records, func(a, b attendance.TimeRecord) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		if c := a.WorkDate.Compare(b.WorkDate); c != 0 {
			return c
		}
		return cmp.Compare(a.Sequence, b.Sequence)
	})

	r.TotalHours = float64(r.WorkedMinutes) / 60
	r.ExpectedHours = float64(r.ExpectedMinutes) / 60
	r.OvertimeHours = float64(r.OvertimeMinutes) / 60
	return r
}
