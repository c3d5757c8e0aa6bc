package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/institution"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/report"
	"github.com/cmlabs-hris/timesheet-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timesheet-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Record(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	Evaluation(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	reportService     report.ReportService
	workers           institution.WorkerRepository
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, reportService report.ReportService, workers institution.WorkerRepository) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		reportService:     reportService,
		workers:           workers,
	}
}

// Record implements AttendanceHandler.
func (h *attendanceHandlerImpl) Record(w http.ResponseWriter, r *http.Request) {
	subject, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.WorkerID, err = middleware.AuthorizeWorker(r.Context(), h.workers, subject, req.WorkerID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	rec, err := h.attendanceService.Record(r.Context(), req.ToCommand(time.Now()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance recorded successfully", attendance.NewTimeRecordResponse(rec))
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	subject, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	workerID, err := middleware.AuthorizeWorker(r.Context(), h.workers, subject, r.URL.Query().Get("worker_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var date *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, ok := validator.IsValidDate(raw)
		if !ok {
			response.HandleError(w, validator.ValidationErrors{{Field: "date", Message: "date must be in YYYY-MM-DD format"}})
			return
		}
		date = &d
	}

	snap, err := h.attendanceService.DayState(r.Context(), workerID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.NewDayResponse(snap))
}

// Evaluation implements AttendanceHandler.
func (h *attendanceHandlerImpl) Evaluation(w http.ResponseWriter, r *http.Request) {
	subject, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	workerID, err := middleware.AuthorizeWorker(r.Context(), h.workers, subject, r.URL.Query().Get("worker_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	date, ok := validator.IsValidDate(chi.URLParam(r, "date"))
	if !ok {
		response.HandleError(w, validator.ValidationErrors{{Field: "date", Message: "date must be in YYYY-MM-DD format"}})
		return
	}

	eval, err := h.reportService.EvaluateDay(r.Context(), workerID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, report.NewDayEvaluationResponse(eval))
}
