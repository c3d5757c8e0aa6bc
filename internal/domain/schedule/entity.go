package schedule

import (
	"fmt"
	"time"
)

// ClockTime is a wall-clock time of day in the institution's time zone.
type ClockTime struct {
	Hour   int
	Minute int
}

func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: clock time %q must be HH:MM", ErrInvalidSchedule, s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func MustParseClockTime(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// MinutesOfDay returns the minutes elapsed since midnight.
func (c ClockTime) MinutesOfDay() int {
	return c.Hour*60 + c.Minute
}

// On anchors the clock time to the calendar date of day in loc.
func (c ClockTime) On(day time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, loc)
}

type WorkSchedule struct {
	ID                   string
	InstitutionID        string
	Name                 string
	StartTime            ClockTime
	EndTime              ClockTime
	BreakDurationMinutes int
	DaysOfWeek           []time.Weekday
	ToleranceMinutes     int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (s WorkSchedule) IsWorkday(day time.Weekday) bool {
	for _, d := range s.DaysOfWeek {
		if d == day {
			return true
		}
	}
	return false
}

// ExpectedMinutes is the scheduled span minus the nominal break.
func (s WorkSchedule) ExpectedMinutes() int {
	return max(0, s.EndTime.MinutesOfDay()-s.StartTime.MinutesOfDay()-s.BreakDurationMinutes)
}

func (s WorkSchedule) Tolerance() time.Duration {
	return time.Duration(s.ToleranceMinutes) * time.Minute
}

func (s WorkSchedule) Validate() error {
	if s.EndTime.MinutesOfDay() <= s.StartTime.MinutesOfDay() {
		return fmt.Errorf("%w: end time %s must be after start time %s", ErrInvalidSchedule, s.EndTime, s.StartTime)
	}
	if s.BreakDurationMinutes < 0 {
		return fmt.Errorf("%w: break duration cannot be negative", ErrInvalidSchedule)
	}
	if s.BreakDurationMinutes >= s.EndTime.MinutesOfDay()-s.StartTime.MinutesOfDay() {
		return fmt.Errorf("%w: break duration must be shorter than the working span", ErrInvalidSchedule)
	}
	if s.ToleranceMinutes < 0 {
		return fmt.Errorf("%w: tolerance cannot be negative", ErrInvalidSchedule)
	}
	for _, d := range s.DaysOfWeek {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: day of week %d out of range 0-6", ErrInvalidSchedule, d)
		}
	}
	return nil
}
