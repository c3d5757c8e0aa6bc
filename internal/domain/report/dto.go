package report

import (
	"math"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

type PeriodRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r *PeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Start); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start",
			Message: "start must be in YYYY-MM-DD format",
		})
	}

	if _, ok := validator.IsValidDate(r.End); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "end",
			Message: "end must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type FlagsResponse struct {
	Absent         bool `json:"absent"`
	Incomplete     bool `json:"incomplete"`
	Late           bool `json:"late"`
	EarlyDeparture bool `json:"early_departure"`
	Overtime       bool `json:"overtime"`
}

type DayEvaluationResponse struct {
	WorkerID              string                          `json:"worker_id"`
	Date                  string                          `json:"date"`
	DayOfWeek             string                          `json:"day_of_week"`
	Scheduled             bool                            `json:"scheduled"`
	Status                string                          `json:"status"`
	Flags                 FlagsResponse                   `json:"flags"`
	WorkedMinutes         int                             `json:"worked_minutes"`
	ExpectedMinutes       int                             `json:"expected_minutes"`
	OvertimeMinutes       int                             `json:"overtime_minutes"`
	LateMinutes           int                             `json:"late_minutes"`
	EarlyDepartureMinutes int                             `json:"early_departure_minutes"`
	InProgress            bool                            `json:"in_progress"`
	Records               []attendance.TimeRecordResponse `json:"records"`
}

type ReportResponse struct {
	WorkerID        string                  `json:"worker_id"`
	PeriodStart     string                  `json:"period_start"`
	PeriodEnd       string                  `json:"period_end"`
	TotalHours      float64                 `json:"total_hours"`
	ExpectedHours   float64                 `json:"expected_hours"`
	OvertimeHours   float64                 `json:"overtime_hours"`
	WorkedMinutes   int                     `json:"worked_minutes"`
	ExpectedMinutes int                     `json:"expected_minutes"`
	OvertimeMinutes int                     `json:"overtime_minutes"`
	LateArrivals    int                     `json:"late_arrivals"`
	EarlyDepartures int                     `json:"early_departures"`
	Absences        int                     `json:"absences"`
	IncompleteDays  int                     `json:"incomplete_days"`
	Days            []DayEvaluationResponse `json:"days"`
}

func NewDayEvaluationResponse(e DayEvaluation) DayEvaluationResponse {
	return DayEvaluationResponse{
		WorkerID:  e.WorkerID,
		Date:      e.Date.Format(dateLayout),
		DayOfWeek: e.Date.Weekday().String(),
		Scheduled: e.Scheduled,
		Status:    string(e.Status),
		Flags: FlagsResponse{
			Absent:         e.Flags.Absent,
			Incomplete:     e.Flags.Incomplete,
			Late:           e.Flags.Late,
			EarlyDeparture: e.Flags.EarlyDeparture,
			Overtime:       e.Flags.Overtime,
		},
		WorkedMinutes:         e.WorkedMinutes,
		ExpectedMinutes:       e.ExpectedMinutes,
		OvertimeMinutes:       e.OvertimeMinutes,
		LateMinutes:           e.LateMinutes,
		EarlyDepartureMinutes: e.EarlyDepartureMinutes,
		InProgress:            e.InProgress,
		Records:               attendance.NewTimeRecordResponses(e.Records),
	}
}

func NewReportResponse(r Report) ReportResponse {
	days := make([]DayEvaluationResponse, 0, len(r.Days))
	for _, d := range r.Days {
		days = append(days, NewDayEvaluationResponse(d))
	}

	return ReportResponse{
		WorkerID:        r.WorkerID,
		PeriodStart:     r.PeriodStart.Format(dateLayout),
		PeriodEnd:       r.PeriodEnd.Format(dateLayout),
		TotalHours:      round2(r.TotalHours),
		ExpectedHours:   round2(r.ExpectedHours),
		OvertimeHours:   round2(r.OvertimeHours),
		WorkedMinutes:   r.WorkedMinutes,
		ExpectedMinutes: r.ExpectedMinutes,
		OvertimeMinutes: r.OvertimeMinutes,
		LateArrivals:    r.LateArrivals,
		EarlyDepartures: r.EarlyDepartures,
		Absences:        r.Absences,
		IncompleteDays:  r.IncompleteDays,
		Days:            days,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
