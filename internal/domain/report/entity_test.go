package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlags_DerivedStatus(t *testing.T) {
	cases := []struct {
		flags Flags
		want  Status
	}{
		{Flags{}, StatusOnTime},
		{Flags{Overtime: true}, StatusOnTime},
		{Flags{EarlyDeparture: true}, StatusEarlyDeparture},
		{Flags{Late: true, EarlyDeparture: true}, StatusLate},
		{Flags{Incomplete: true, Late: true}, StatusIncomplete},
		{Flags{Absent: true, Incomplete: true}, StatusAbsent},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.flags.DerivedStatus(), "%+v", c.flags)
	}
}
