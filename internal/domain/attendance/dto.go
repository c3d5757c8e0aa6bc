package attendance

import (
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/utils"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/validator"
)

// ========================================
// RECORD EVENT
// ========================================

type LocationRequest struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Accuracy   float64 `json:"accuracy"`
	CapturedAt *string `json:"captured_at,omitempty"` // RFC3339, defaults to the event timestamp
}

type RecordRequest struct {
	WorkerID  string           `json:"worker_id,omitempty"`
	Type      string           `json:"type"`
	Timestamp *string          `json:"timestamp,omitempty"` // RFC3339, defaults to server time
	Location  *LocationRequest `json:"location,omitempty"`
	QRPayload *string          `json:"qr_payload,omitempty"`
}

func (r *RecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.WorkerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "worker_id",
			Message: "worker_id is required",
		})
	}

	if !validator.IsInSlice(r.Type, EventTypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: check_in, break_start, break_end, check_out",
		})
	}

	if r.Timestamp != nil {
		if _, ok := validator.IsValidDateTime(*r.Timestamp); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "timestamp",
				Message: "timestamp must be an ISO-8601 date time",
			})
		}
	}

	hasQR := r.QRPayload != nil && !validator.IsEmpty(*r.QRPayload)
	switch {
	case r.Location == nil && !hasQR:
		errs = append(errs, validator.ValidationError{
			Field:   "proof",
			Message: "either location or qr_payload is required",
		})
	case r.Location != nil && hasQR:
		errs = append(errs, validator.ValidationError{
			Field:   "proof",
			Message: "location and qr_payload are mutually exclusive",
		})
	}

	if r.Location != nil {
		if !utils.IsValidCoordinate(r.Location.Latitude, r.Location.Longitude) {
			errs = append(errs, validator.ValidationError{
				Field:   "location",
				Message: "latitude must be between -90 and 90 and longitude between -180 and 180",
			})
		}
		if r.Location.Accuracy < 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "location.accuracy",
				Message: "accuracy must not be negative",
			})
		}
		if r.Location.CapturedAt != nil {
			if _, ok := validator.IsValidDateTime(*r.Location.CapturedAt); !ok {
				errs = append(errs, validator.ValidationError{
					Field:   "location.captured_at",
					Message: "captured_at must be an ISO-8601 date time",
				})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ToCommand converts a validated request; now is used for missing timestamps.
func (r *RecordRequest) ToCommand(now time.Time) RecordCommand {
	ts := now
	if r.Timestamp != nil {
		ts, _ = validator.IsValidDateTime(*r.Timestamp)
	}

	cmd := RecordCommand{
		WorkerID:  r.WorkerID,
		Type:      EventType(r.Type),
		Timestamp: ts,
	}

	if r.QRPayload != nil {
		cmd.QRPayload = *r.QRPayload
	}

	if r.Location != nil {
		capturedAt := ts
		if r.Location.CapturedAt != nil {
			capturedAt, _ = validator.IsValidDateTime(*r.Location.CapturedAt)
		}
		cmd.Location = &LocationReading{
			Latitude:       r.Location.Latitude,
			Longitude:      r.Location.Longitude,
			AccuracyMeters: r.Location.Accuracy,
			CapturedAt:     capturedAt,
		}
	}

	return cmd
}

// Validate checks a command built outside of the HTTP layer.
func (c RecordCommand) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(c.WorkerID) {
		errs = append(errs, validator.ValidationError{Field: "worker_id", Message: "worker_id is required"})
	}
	if !validator.IsInSlice(string(c.Type), EventTypeValues) {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "unknown event type"})
	}
	if c.Timestamp.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "timestamp is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	if (c.Location == nil) == (c.QRPayload == "") {
		return ErrProofRequired
	}
	return nil
}

// ========================================
// RESPONSES
// ========================================

type TimeRecordResponse struct {
	ID             string   `json:"id"`
	WorkerID       string   `json:"worker_id"`
	WorkDate       string   `json:"work_date"`
	Sequence       int      `json:"sequence"`
	Type           string   `json:"type"`
	Timestamp      string   `json:"timestamp"`
	Method         string   `json:"method"`
	ZoneLabel      string   `json:"zone_label,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	AccuracyMeters *float64 `json:"accuracy_meters,omitempty"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
	TokenNonce     *string  `json:"token_nonce,omitempty"`
}

type DayResponse struct {
	WorkerID      string               `json:"worker_id"`
	WorkDate      string               `json:"work_date"`
	Phase         string               `json:"phase"`
	AllowedEvents []string             `json:"allowed_events"`
	LastEventAt   *string              `json:"last_event_at,omitempty"`
	BreakCount    int                  `json:"break_count"`
	Records       []TimeRecordResponse `json:"records"`
}

func NewTimeRecordResponse(rec TimeRecord) TimeRecordResponse {
	resp := TimeRecordResponse{
		ID:             rec.ID,
		WorkerID:       rec.WorkerID,
		WorkDate:       rec.WorkDate.Format("2006-01-02"),
		Sequence:       rec.Sequence,
		Type:           string(rec.Type),
		Timestamp:      rec.Timestamp.Format(time.RFC3339),
		Method:         string(rec.Method),
		ZoneLabel:      rec.Proof.ZoneLabel,
		DistanceMeters: rec.Proof.DistanceMeters,
		TokenNonce:     rec.Proof.TokenNonce,
	}
	if loc := rec.Proof.Location; loc != nil {
		lat, lon, acc := loc.Latitude, loc.Longitude, loc.AccuracyMeters
		resp.Latitude = &lat
		resp.Longitude = &lon
		resp.AccuracyMeters = &acc
	}
	return resp
}

func NewTimeRecordResponses(records []TimeRecord) []TimeRecordResponse {
	out := make([]TimeRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, NewTimeRecordResponse(rec))
	}
	return out
}

func NewDayResponse(snap DaySnapshot) DayResponse {
	allowed := make([]string, 0, len(snap.AllowedEvents))
	for _, e := range snap.AllowedEvents {
		allowed = append(allowed, string(e))
	}

	resp := DayResponse{
		WorkerID:      snap.WorkerID,
		WorkDate:      snap.WorkDate.Format("2006-01-02"),
		Phase:         string(snap.State.Phase),
		AllowedEvents: allowed,
		BreakCount:    snap.State.BreakCount,
		Records:       NewTimeRecordResponses(snap.Records),
	}
	if !snap.State.LastTimestamp.IsZero() {
		last := snap.State.LastTimestamp.Format(time.RFC3339)
		resp.LastEventAt = &last
	}
	return resp
}
