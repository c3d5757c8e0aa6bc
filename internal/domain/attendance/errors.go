package attendance

import "errors"

// Attendance domain errors
var (
	// State machine errors
	ErrIllegalTransition     = errors.New("event is not allowed in the current attendance state")
	ErrNonMonotonicTimestamp = errors.New("timestamp is earlier than the previous accepted record")

	// Geofence errors
	ErrLocationUnauthorized = errors.New("location is outside every allowed zone")
	ErrLowAccuracy          = errors.New("location accuracy is too low")
	ErrStaleLocation        = errors.New("location reading is too old for this event")

	// Proof errors
	ErrProofRequired = errors.New("either a location reading or a qr payload is required")
)
