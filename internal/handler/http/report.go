package http

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/institution"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/report"
	"github.com/cmlabs-hris/timesheet-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timesheet-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler interface {
	WorkerReport(w http.ResponseWriter, r *http.Request)
	ExportWorkerReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
	workers       institution.WorkerRepository
}

func NewReportHandler(reportService report.ReportService, workers institution.WorkerRepository) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
		workers:       workers,
	}
}

// WorkerReport implements ReportHandler.
func (h *reportHandlerImpl) WorkerReport(w http.ResponseWriter, r *http.Request) {
	workerID, req, ok := h.parse(w, r)
	if !ok {
		return
	}

	start, _ := validator.IsValidDate(req.Start)
	end, _ := validator.IsValidDate(req.End)

	result, err := h.reportService.GenerateReport(r.Context(), workerID, start, end)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, report.NewReportResponse(result))
}

// ExportWorkerReport implements ReportHandler.
func (h *reportHandlerImpl) ExportWorkerReport(w http.ResponseWriter, r *http.Request) {
	workerID, req, ok := h.parse(w, r)
	if !ok {
		return
	}

	start, _ := validator.IsValidDate(req.Start)
	end, _ := validator.IsValidDate(req.End)

	data, err := h.reportService.ExportReport(r.Context(), workerID, start, end)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("timesheet_%s_%s_%s.xlsx", workerID, req.Start, req.End)
	response.File(w, xlsxContentType, filename, data)
}

func (h *reportHandlerImpl) parse(w http.ResponseWriter, r *http.Request) (string, report.PeriodRequest, bool) {
	req := report.PeriodRequest{
		Start: r.URL.Query().Get("start"),
		End:   r.URL.Query().Get("end"),
	}

	subject, err := middleware.SubjectFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return "", req, false
	}

	workerID, err := middleware.AuthorizeWorker(r.Context(), h.workers, subject, chi.URLParam(r, "workerID"))
	if err != nil {
		response.HandleError(w, err)
		return "", req, false
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return "", req, false
	}

	return workerID, req, true
}
