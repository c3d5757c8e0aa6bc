package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func officeHours() WorkSchedule {
	return WorkSchedule{
		ID:                   "ws-1",
		StartTime:            MustParseClockTime("08:00"),
		EndTime:              MustParseClockTime("17:00"),
		BreakDurationMinutes: 60,
		DaysOfWeek:           []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		ToleranceMinutes:     15,
	}
}

func TestParseClockTime(t *testing.T) {
	c, err := ParseClockTime("08:05")
	require.NoError(t, err)
	assert.Equal(t, ClockTime{Hour: 8, Minute: 5}, c)
	assert.Equal(t, "08:05", c.String())
	assert.Equal(t, 485, c.MinutesOfDay())

	_, err = ParseClockTime("8h")
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestClockTime_On(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	got := MustParseClockTime("17:30").On(day, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 10, 17, 30, 0, 0, time.UTC), got)
}

func TestWorkSchedule_ExpectedMinutes(t *testing.T) {
	assert.Equal(t, 480, officeHours().ExpectedMinutes())
}

func TestWorkSchedule_IsWorkday(t *testing.T) {
	ws := officeHours()
	assert.True(t, ws.IsWorkday(time.Monday))
	assert.False(t, ws.IsWorkday(time.Sunday))
}

func TestWorkSchedule_Validate(t *testing.T) {
	require.NoError(t, officeHours().Validate())

	overnight := officeHours()
	overnight.StartTime = MustParseClockTime("22:00")
	overnight.EndTime = MustParseClockTime("06:00")
	assert.ErrorIs(t, overnight.Validate(), ErrInvalidSchedule)

	longBreak := officeHours()
	longBreak.BreakDurationMinutes = 540
	assert.ErrorIs(t, longBreak.Validate(), ErrInvalidSchedule)

	badDay := officeHours()
	badDay.DaysOfWeek = []time.Weekday{7}
	assert.ErrorIs(t, badDay.Validate(), ErrInvalidSchedule)

	negTolerance := officeHours()
	negTolerance.ToleranceMinutes = -1
	assert.ErrorIs(t, negTolerance.Validate(), ErrInvalidSchedule)
}
