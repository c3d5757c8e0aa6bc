package evaluation

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/report"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday
var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

var officeHours = schedule.WorkSchedule{
	ID:                   "office",
	StartTime:            schedule.MustParseClockTime("08:00"),
	EndTime:              schedule.MustParseClockTime("17:00"),
	BreakDurationMinutes: 60,
	DaysOfWeek:           []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	ToleranceMinutes:     15,
}

type event struct {
	typ attendance.EventType
	at  string
}

func records(date time.Time, loc *time.Location, events ...event) []attendance.TimeRecord {
	out := make([]attendance.TimeRecord, 0, len(events))
	for i, e := range events {
		c := schedule.MustParseClockTime(e.at)
		out = append(out, attendance.TimeRecord{
			WorkerID:  "w1",
			WorkDate:  date,
			Sequence:  i + 1,
			Type:      e.typ,
			Timestamp: c.On(date, loc),
		})
	}
	return out
}

func evaluate(t *testing.T, date time.Time, events ...event) report.DayEvaluation {
	t.Helper()
	ev, ok := Evaluate(Input{
		WorkerID: "w1",
		Date:     date,
		Records:  records(date, time.UTC, events...),
		Schedule: officeHours,
		AsOf:     date.AddDate(0, 0, 7),
	})
	require.True(t, ok)
	return ev
}

func TestEvaluate_OnTimeWithinTolerance(t *testing.T) {
	ev := evaluate(t, monday,
		event{attendance.EventCheckIn, "08:10"},
		event{attendance.EventBreakStart, "12:00"},
		event{attendance.EventBreakEnd, "13:00"},
		event{attendance.EventCheckOut, "17:00"},
	)

	assert.Equal(t, 480, ev.WorkedMinutes)
	assert.Equal(t, 480, ev.ExpectedMinutes)
	assert.Equal(t, 0, ev.OvertimeMinutes)
	assert.Equal(t, report.StatusOnTime, ev.Status)
	assert.Equal(t, report.Flags{}, ev.Flags)
	assert.False(t, ev.InProgress)
}

func TestEvaluate_LateBeyondTolerance(t *testing.T) {
	ev := evaluate(t, monday,
		event{attendance.EventCheckIn, "08:20"},
		event{attendance.EventBreakStart, "12:00"},
		event{attendance.EventBreakEnd, "13:00"},
		event{attendance.EventCheckOut, "17:00"},
	)

	assert.True(t, ev.Flags.Late)
	assert.Equal(t, report.StatusLate, ev.Status)
	assert.Equal(t, 20, ev.LateMinutes)
	assert.Equal(t, 460, ev.WorkedMinutes)
}

func TestEvaluate_AbsentOnWorkday(t *testing.T) {
	ev := evaluate(t, monday)

	assert.True(t, ev.Flags.Absent)
	assert.Equal(t, report.StatusAbsent, ev.Status)
	assert.Zero(t, ev.WorkedMinutes)
	assert.Equal(t, 480, ev.ExpectedMinutes)
}

func TestEvaluate_NonWorkdayWithoutRecords(t *testing.T) {
	_, ok := Evaluate(Input{WorkerID: "w1", Date: monday.AddDate(0, 0, 5), Schedule: officeHours})
	assert.False(t, ok)
}

func TestEvaluate_NonWorkdayWithRecordsIsOvertime(t *testing.T) {
	saturday := monday.AddDate(0, 0, 5)
	ev := evaluate(t, saturday,
		event{attendance.EventCheckIn, "10:00"},
		event{attendance.EventBreakStart, "12:00"},
		event{attendance.EventBreakEnd, "12:30"},
		event{attendance.EventCheckOut, "14:00"},
	)

	assert.False(t, ev.Scheduled)
	assert.Equal(t, 0, ev.ExpectedMinutes)
	assert.Equal(t, 210, ev.WorkedMinutes)
	assert.Equal(t, 210, ev.OvertimeMinutes)
	assert.True(t, ev.Flags.Overtime)
	assert.False(t, ev.Flags.Late)
	assert.Equal(t, report.StatusOnTime, ev.Status)
}

func TestEvaluate_EarlyDeparture(t *testing.T) {
	ev := evaluate(t, monday,
		event{attendance.EventCheckIn, "08:00"},
		event{attendance.EventCheckOut, "16:00"},
	)

	assert.True(t, ev.Flags.EarlyDeparture)
	assert.Equal(t, report.StatusEarlyDeparture, ev.Status)
	assert.Equal(t, 60, ev.EarlyDepartureMinutes)
	// nominal break subtracted when none was recorded
	assert.Equal(t, 420, ev.WorkedMinutes)
}

func TestEvaluate_DepartureWithinToleranceIsCredited(t *testing.T) {
	ev := evaluate(t, monday,
		event{attendance.EventCheckIn, "08:00"},
		event{attendance.EventCheckOut, "16:50"},
	)

	assert.False(t, ev.Flags.EarlyDeparture)
	assert.Equal(t, 480, ev.WorkedMinutes)
}

func TestEvaluate_LateAndEarlyKeepBothFlags(t *testing.T) {
	ev := evaluate(t, monday,
		event{attendance.EventCheckIn, "09:00"},
		event{attendance.EventCheckOut, "15:00"},
	)

	assert.True(t, ev.Flags.Late)
	assert.True(t, ev.Flags.EarlyDeparture)
	assert.Equal(t, report.StatusLate, ev.Status)
}

func TestEvaluate_LateWithOvertime(t *testing.T) {
	ev := evaluate(t, monday,
		event{attendance.EventCheckIn, "08:30"},
		event{attendance.EventBreakStart, "12:00"},
		event{attendance.EventBreakEnd, "12:30"},
		event{attendance.EventCheckOut, "19:00"},
	)

	assert.True(t, ev.Flags.Late)
	assert.True(t, ev.Flags.Overtime)
	assert.Equal(t, 600, ev.WorkedMinutes)
	assert.Equal(t, 120, ev.OvertimeMinutes)
	assert.Equal(t, report.StatusLate, ev.Status)
}

func TestEvaluate_MultipleBreaks(t *testing.T) {
	ev := evaluate(t, monday,
		event{attendance.EventCheckIn, "08:00"},
		event{attendance.EventBreakStart, "10:00"},
		event{attendance.EventBreakEnd, "10:15"},
		event{attendance.EventBreakStart, "12:00"},
		event{attendance.EventBreakEnd, "12:45"},
		event{attendance.EventCheckOut, "17:00"},
	)

	assert.Equal(t, 480, ev.WorkedMinutes)
	assert.Equal(t, report.StatusOnTime, ev.Status)
}

func TestEvaluate_SubMinuteBreakTruncatesWorkedOnce(t *testing.T) {
	recs := records(monday, time.UTC,
		event{attendance.EventCheckIn, "08:00"},
		event{attendance.EventBreakStart, "12:00"},
		event{attendance.EventBreakEnd, "12:29"},
		event{attendance.EventCheckOut, "17:00"},
	)
	recs[2].Timestamp = recs[2].Timestamp.Add(30 * time.Second)

	ev, ok := Evaluate(Input{
		WorkerID: "w1",
		Date:     monday,
		Records:  recs,
		Schedule: officeHours,
		AsOf:     monday.AddDate(0, 0, 7),
	})
	require.True(t, ok)

	// 540m span minus a 29m30s break leaves 510m30s.
	assert.Equal(t, 510, ev.WorkedMinutes)
	assert.Equal(t, 30, ev.OvertimeMinutes)
}

func TestEvaluate_IncompletePastDay(t *testing.T) {
	ev := evaluate(t, monday,
		event{attendance.EventCheckIn, "08:00"},
		event{attendance.EventBreakStart, "12:00"},
	)

	assert.True(t, ev.Flags.Incomplete)
	assert.False(t, ev.Flags.Absent)
	assert.False(t, ev.InProgress)
	assert.Equal(t, report.StatusIncomplete, ev.Status)
	assert.Zero(t, ev.WorkedMinutes)
}

func TestEvaluate_InProgressToday(t *testing.T) {
	ev, ok := Evaluate(Input{
		WorkerID: "w1",
		Date:     monday,
		Records: records(monday, time.UTC,
			event{attendance.EventCheckIn, "08:05"},
			event{attendance.EventBreakStart, "12:00"},
			event{attendance.EventBreakEnd, "12:30"},
			event{attendance.EventBreakStart, "14:00"},
		),
		Schedule: officeHours,
		AsOf:     monday.Add(14*time.Hour + 20*time.Minute),
	})
	require.True(t, ok)

	assert.True(t, ev.InProgress)
	assert.True(t, ev.Flags.Incomplete)
	// 08:00 (credited) to 14:20, minus the closed 30m break and the open 20m one
	assert.Equal(t, 330, ev.WorkedMinutes)
}

func TestEvaluate_InstitutionTimezone(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	ev, ok := Evaluate(Input{
		WorkerID: "w1",
		Date:     monday,
		Records: records(monday, loc,
			event{attendance.EventCheckIn, "08:00"},
			event{attendance.EventCheckOut, "17:00"},
		),
		Schedule: officeHours,
		Location: loc,
		AsOf:     monday.AddDate(0, 0, 2),
	})
	require.True(t, ok)

	assert.False(t, ev.Flags.Late)
	assert.Equal(t, 480, ev.WorkedMinutes)
	assert.Equal(t, report.StatusOnTime, ev.Status)
}
