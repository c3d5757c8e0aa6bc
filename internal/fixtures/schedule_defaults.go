package fixtures

import (
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/schedule"
)

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// GetDefaultWorkSchedule returns a standard 9-6 office schedule for a new institution
func GetDefaultWorkSchedule(institutionID string) schedule.WorkSchedule {
	return schedule.WorkSchedule{
		ID:                   institutionID + "-office",
		InstitutionID:        institutionID,
		Name:                 "Standard Office Hours",
		StartTime:            schedule.MustParseClockTime("09:00"),
		EndTime:              schedule.MustParseClockTime("18:00"),
		BreakDurationMinutes: 60,
		DaysOfWeek:           weekdays,
		ToleranceMinutes:     15,
	}
}

// GetAfternoonShiftWorkSchedule returns an afternoon shift (14:00-22:00)
func GetAfternoonShiftWorkSchedule(institutionID string) schedule.WorkSchedule {
	return schedule.WorkSchedule{
		ID:                   institutionID + "-afternoon",
		InstitutionID:        institutionID,
		Name:                 "Afternoon Shift",
		StartTime:            schedule.MustParseClockTime("14:00"),
		EndTime:              schedule.MustParseClockTime("22:00"),
		BreakDurationMinutes: 30,
		DaysOfWeek:           weekdays,
		ToleranceMinutes:     10,
	}
}

// GetWeekendWorkSchedule covers Saturday and Sunday only.
func GetWeekendWorkSchedule(institutionID string) schedule.WorkSchedule {
	return schedule.WorkSchedule{
		ID:                   institutionID + "-weekend",
		InstitutionID:        institutionID,
		Name:                 "Weekend Shift",
		StartTime:            schedule.MustParseClockTime("08:00"),
		EndTime:              schedule.MustParseClockTime("16:00"),
		BreakDurationMinutes: 30,
		DaysOfWeek:           []time.Weekday{time.Saturday, time.Sunday},
		ToleranceMinutes:     10,
	}
}

func GetDefaultWorkSchedules(institutionID string) []schedule.WorkSchedule {
	return []schedule.WorkSchedule{
		GetDefaultWorkSchedule(institutionID),
		GetAfternoonShiftWorkSchedule(institutionID),
		GetWeekendWorkSchedule(institutionID),
	}
}
