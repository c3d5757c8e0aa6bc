package qrtoken

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/validator"
)

type IssueRequest struct {
	InstitutionID string `json:"institution_id"`
	ZoneLabel     string `json:"zone_label"`
	ValidForHours *int   `json:"valid_for_hours,omitempty"`
}

func (r *IssueRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.InstitutionID) {
		errs = append(errs, validator.ValidationError{
			Field:   "institution_id",
			Message: "institution_id is required",
		})
	}

	if validator.IsEmpty(r.ZoneLabel) {
		errs = append(errs, validator.ValidationError{
			Field:   "zone_label",
			Message: "zone_label is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *IssueRequest) Hours() int {
	if r.ValidForHours == nil {
		return DefaultValidHours
	}
	return *r.ValidForHours
}

type ValidateRequest struct {
	Payload string `json:"payload"`
}

func (r *ValidateRequest) Validate() error {
	if validator.IsEmpty(r.Payload) {
		return validator.ValidationErrors{{Field: "payload", Message: "payload is required"}}
	}
	return nil
}

type TokenResponse struct {
	Nonce         string `json:"nonce"`
	InstitutionID string `json:"institution_id"`
	ZoneLabel     string `json:"zone_label"`
	IssuedAt      string `json:"issued_at"`
	ValidUntil    string `json:"valid_until"`
	Payload       string `json:"payload,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
}

func NewTokenResponse(t QRToken, payload string) TokenResponse {
	resp := TokenResponse{
		Nonce:         t.Nonce,
		InstitutionID: t.InstitutionID,
		ZoneLabel:     t.ZoneLabel,
		IssuedAt:      t.IssuedAt.UTC().Format(TimeLayout),
		ValidUntil:    t.ValidUntil.UTC().Format(TimeLayout),
		Payload:       payload,
	}
	if payload != "" {
		resp.ImageURL = fmt.Sprintf("/api/v1/qr-tokens/%s/image.png", t.Nonce)
	}
	return resp
}

type ValidateResponse struct {
	Valid         bool          `json:"valid"`
	Token         TokenResponse `json:"token"`
	ExpiresInSecs int64         `json:"expires_in_seconds"`
}

func NewValidateResponse(t QRToken, now time.Time) ValidateResponse {
	return ValidateResponse{
		Valid:         true,
		Token:         NewTokenResponse(t, ""),
		ExpiresInSecs: int64(t.ValidUntil.Sub(now).Seconds()),
	}
}
