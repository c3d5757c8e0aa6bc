package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/auth"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/qrtoken"
	"github.com/cmlabs-hris/timesheet-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timesheet-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type QRTokenHandler interface {
	Issue(w http.ResponseWriter, r *http.Request)
	Image(w http.ResponseWriter, r *http.Request)
	Validate(w http.ResponseWriter, r *http.Request)
}

type qrTokenHandlerImpl struct {
	qrTokenService qrtoken.QRTokenService
}

func NewQRTokenHandler(qrTokenService qrtoken.QRTokenService) QRTokenHandler {
	return &qrTokenHandlerImpl{
		qrTokenService: qrTokenService,
	}
}

// Issue implements QRTokenHandler.
func (h *qrTokenHandlerImpl) Issue(w http.ResponseWriter, r *http.Request) {
	subject, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req qrtoken.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if req.InstitutionID == "" {
		req.InstitutionID = subject.InstitutionID
	} else if subject.InstitutionID != "" && req.InstitutionID != subject.InstitutionID {
		response.HandleError(w, auth.ErrForbiddenInstitution)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	token, payload, err := h.qrTokenService.Issue(r.Context(), req.InstitutionID, req.ZoneLabel, req.Hours())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "QR token issued successfully", qrtoken.NewTokenResponse(token, payload))
}

// Image implements QRTokenHandler.
func (h *qrTokenHandlerImpl) Image(w http.ResponseWriter, r *http.Request) {
	subject, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			response.HandleError(w, validator.ValidationErrors{{Field: "size", Message: "size must be an integer"}})
			return
		}
		size = v
	}

	png, err := h.qrTokenService.Render(r.Context(), subject.InstitutionID, chi.URLParam(r, "nonce"), size)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, "image/png", "", png)
}

// Validate implements QRTokenHandler.
func (h *qrTokenHandlerImpl) Validate(w http.ResponseWriter, r *http.Request) {
	var req qrtoken.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	now := time.Now()
	token, err := h.qrTokenService.Validate(r.Context(), req.Payload, now)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, qrtoken.NewValidateResponse(token, now))
}
