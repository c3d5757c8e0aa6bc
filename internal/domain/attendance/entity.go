package attendance

import "time"

type EventType string

const (
	EventCheckIn    EventType = "check_in"
	EventBreakStart EventType = "break_start"
	EventBreakEnd   EventType = "break_end"
	EventCheckOut   EventType = "check_out"
)

var EventTypeValues = []string{
	string(EventCheckIn),
	string(EventBreakStart),
	string(EventBreakEnd),
	string(EventCheckOut),
}

type Method string

const (
	MethodGeofence Method = "geofence"
	MethodQRCode   Method = "qr_code"
)

// Phase is the per-worker, per-day position in the check-in/break/check-out sequence.
type Phase string

const (
	PhaseAwaitingCheckIn Phase = "awaiting_check_in"
	PhaseWorking         Phase = "working"
	PhaseOnBreak         Phase = "on_break"
	PhaseDone            Phase = "done"
)

// LocationReading is an already-resolved fix from the geolocation provider.
type LocationReading struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	CapturedAt     time.Time
}

// Proof is the evidence that authorized a TimeRecord. Exactly one of
// Location or TokenNonce is set.
type Proof struct {
	Location       *LocationReading
	DistanceMeters *float64
	TokenNonce     *string
	ZoneLabel      string
}

// TimeRecord is immutable once accepted.
type TimeRecord struct {
	ID            string
	WorkerID      string
	InstitutionID string
	WorkDate      time.Time
	Sequence      int
	Type          EventType
	Timestamp     time.Time
	Method        Method
	Proof         Proof
	CreatedAt     time.Time
}

// DayState is the state machine position reconstructed from a day's records.
type DayState struct {
	Phase         Phase
	LastTimestamp time.Time
	RecordCount   int
	BreakCount    int
}

// OpenDay is a worker day that has a check-in but no check-out.
type OpenDay struct {
	WorkerID      string
	WorkDate      time.Time
	LastType      EventType
	LastTimestamp time.Time
}

// RecordCommand is a candidate attendance event.
type RecordCommand struct {
	WorkerID  string
	Type      EventType
	Timestamp time.Time
	Location  *LocationReading
	QRPayload string
}

// WorkDateOf returns the calendar date of ts in loc, as midnight UTC.
func WorkDateOf(ts time.Time, loc *time.Location) time.Time {
	local := ts.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
