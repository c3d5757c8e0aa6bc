package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/attendance"
)

// transitions lists every legal (phase, event) pair. Anything missing is illegal.
var transitions = map[attendance.Phase]map[attendance.EventType]attendance.Phase{
	attendance.PhaseAwaitingCheckIn: {
		attendance.EventCheckIn: attendance.PhaseWorking,
	},
	attendance.PhaseWorking: {
		attendance.EventBreakStart: attendance.PhaseOnBreak,
		attendance.EventCheckOut:   attendance.PhaseDone,
	},
	attendance.PhaseOnBreak: {
		attendance.EventBreakEnd: attendance.PhaseWorking,
	},
	attendance.PhaseDone: {},
}

var eventOrder = []attendance.EventType{
	attendance.EventCheckIn,
	attendance.EventBreakStart,
	attendance.EventBreakEnd,
	attendance.EventCheckOut,
}

// InitialState is the state of a day without records.
func InitialState() attendance.DayState {
	return attendance.DayState{Phase: attendance.PhaseAwaitingCheckIn}
}

// Next applies one event to state. Legality is checked before timestamp order.
func Next(state attendance.DayState, event attendance.EventType, ts time.Time) (attendance.DayState, error) {
	if state.Phase == "" {
		state.Phase = attendance.PhaseAwaitingCheckIn
	}

	next, ok := transitions[state.Phase][event]
	if !ok {
		return state, fmt.Errorf("%w: %s while %s", attendance.ErrIllegalTransition, event, state.Phase)
	}

	if state.RecordCount > 0 && ts.Before(state.LastTimestamp) {
		return state, fmt.Errorf("%w: %s is before %s",
			attendance.ErrNonMonotonicTimestamp, ts.Format(time.RFC3339), state.LastTimestamp.Format(time.RFC3339))
	}

	out := attendance.DayState{
		Phase:         next,
		LastTimestamp: ts,
		RecordCount:   state.RecordCount + 1,
		BreakCount:    state.BreakCount,
	}
	if event == attendance.EventBreakStart {
		out.BreakCount++
	}
	return out, nil
}

// Replay rebuilds the state from a day's records in sequence order.
func Replay(records []attendance.TimeRecord) (attendance.DayState, error) {
	state := InitialState()
	for _, rec := range records {
		var err error
		state, err = Next(state, rec.Type, rec.Timestamp)
		if err != nil {
			return state, fmt.Errorf("corrupt record log at sequence %d: %w", rec.Sequence, err)
		}
	}
	return state, nil
}

// AllowedEvents returns the events accepted from phase, in a stable order.
func AllowedEvents(phase attendance.Phase) []attendance.EventType {
	allowed := make([]attendance.EventType, 0, 2)
	for _, e := range eventOrder {
		if _, ok := transitions[phase][e]; ok {
			allowed = append(allowed, e)
		}
	}
	return allowed
}
