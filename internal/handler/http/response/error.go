package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/auth"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/institution"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/qrtoken"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/report"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, auth.ErrWorkerClaimRequired):
		Forbidden(w, "Token is not bound to a worker")
	case errors.Is(err, auth.ErrForbiddenWorker):
		Forbidden(w, "Not allowed to act on another worker")
	case errors.Is(err, auth.ErrForbiddenInstitution):
		Forbidden(w, "Not allowed to act on another institution")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrIllegalTransition):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrNonMonotonicTimestamp):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrLocationUnauthorized):
		Forbidden(w, "Location is outside every allowed zone")
	case errors.Is(err, attendance.ErrLowAccuracy):
		Forbidden(w, "Location accuracy is too low")
	case errors.Is(err, attendance.ErrStaleLocation):
		Forbidden(w, "Location reading is too old")
	case errors.Is(err, attendance.ErrProofRequired):
		BadRequest(w, "Either location or qr_payload is required", nil)

	// QR token domain errors
	case errors.Is(err, qrtoken.ErrTokenExpired):
		Forbidden(w, "QR token has expired")
	case errors.Is(err, qrtoken.ErrTokenInvalid):
		Forbidden(w, "QR token is invalid")
	case errors.Is(err, qrtoken.ErrTokenNotFound):
		NotFound(w, "QR token not found")
	case errors.Is(err, qrtoken.ErrInvalidDuration):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, qrtoken.ErrInvalidScope):
		BadRequest(w, err.Error(), nil)

	// Directory errors
	case errors.Is(err, institution.ErrWorkerNotFound):
		NotFound(w, "Worker not found")
	case errors.Is(err, institution.ErrInstitutionNotFound):
		NotFound(w, "Institution not found")
	case errors.Is(err, institution.ErrUnknownZone):
		NotFound(w, "Zone not found")
	case errors.Is(err, schedule.ErrScheduleNotFound):
		NotFound(w, "Work schedule not found")
	case errors.Is(err, schedule.ErrInvalidSchedule):
		BadRequest(w, err.Error(), nil)

	// Report domain errors
	case errors.Is(err, report.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, report.ErrNotWorkday):
		NotFound(w, "Date is not a workday")
	case errors.Is(err, report.ErrFutureDate):
		BadRequest(w, "Date is in the future", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
