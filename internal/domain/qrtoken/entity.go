package qrtoken

import "time"

// PayloadType tags payloads produced by this service.
const PayloadType = "timesheet_check"

// TimeLayout is the ISO-8601 form used for payload timestamps.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// DefaultValidHours is used when an issue request omits the duration.
const DefaultValidHours = 24

// QRToken is an institution/zone scoped, time-boxed credential. It can be
// presented any number of times until ValidUntil.
type QRToken struct {
	Nonce         string
	InstitutionID string
	ZoneLabel     string
	IssuedAt      time.Time
	ValidUntil    time.Time
}

func (t QRToken) ExpiredAt(now time.Time) bool {
	return now.After(t.ValidUntil)
}

// Payload is the JSON document encoded into the QR image.
type Payload struct {
	Type          string `json:"type"`
	InstitutionID string `json:"institutionId"`
	Location      string `json:"location"`
	ValidUntil    string `json:"validUntil"`
	CreatedAt     string `json:"createdAt"`
	Nonce         string `json:"nonce"`
}
