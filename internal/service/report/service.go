package report

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/institution"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/report"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/timesheet-engine/internal/service/evaluation"
	"go.uber.org/zap"
)

type ReportServiceImpl struct {
	records      attendance.TimeRecordRepository
	workers      institution.WorkerRepository
	institutions institution.InstitutionRepository
	schedules    schedule.WorkScheduleRepository
	logger       *zap.Logger
	now          func() time.Time
}

func NewReportService(
	records attendance.TimeRecordRepository,
	workers institution.WorkerRepository,
	institutions institution.InstitutionRepository,
	schedules schedule.WorkScheduleRepository,
	logger *zap.Logger,
) *ReportServiceImpl {
	return &ReportServiceImpl{
		records:      records,
		workers:      workers,
		institutions: institutions,
		schedules:    schedules,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock replaces the clock used to decide which days have elapsed.
func (s *ReportServiceImpl) WithClock(now func() time.Time) *ReportServiceImpl {
	s.now = now
	return s
}

var _ report.ReportService = (*ReportServiceImpl)(nil)

type workerContext struct {
	worker   institution.Worker
	inst     institution.Institution
	schedule schedule.WorkSchedule
	loc      *time.Location
}

func (s *ReportServiceImpl) load(ctx context.Context, workerID string) (workerContext, error) {
	worker, err := s.workers.GetByID(ctx, workerID)
	if err != nil {
		return workerContext{}, err
	}

	inst, err := s.institutions.GetByID(ctx, worker.InstitutionID)
	if err != nil {
		return workerContext{}, err
	}

	if worker.ScheduleID == "" {
		return workerContext{}, fmt.Errorf("%w: worker %s has no schedule", schedule.ErrScheduleNotFound, worker.ID)
	}
	ws, err := s.schedules.GetByID(ctx, worker.ScheduleID)
	if err != nil {
		return workerContext{}, err
	}

	return workerContext{worker: worker, inst: inst, schedule: ws, loc: inst.Location()}, nil
}

// EvaluateDay implements report.ReportService.
func (s *ReportServiceImpl) EvaluateDay(ctx context.Context, workerID string, date time.Time) (report.DayEvaluation, error) {
	wc, err := s.load(ctx, workerID)
	if err != nil {
		return report.DayEvaluation{}, err
	}

	now := s.now()
	day := calendarDate(date)
	if day.After(attendance.WorkDateOf(now, wc.loc)) {
		return report.DayEvaluation{}, report.ErrFutureDate
	}

	records, err := s.records.ListByWorkerAndDate(ctx, wc.worker.ID, day)
	if err != nil {
		return report.DayEvaluation{}, fmt.Errorf("failed to load day records: %w", err)
	}

	eval, ok := evaluation.Evaluate(evaluation.Input{
		WorkerID: wc.worker.ID,
		Date:     day,
		Records:  records,
		Schedule: wc.schedule,
		Location: wc.loc,
		AsOf:     now,
	})
	if !ok {
		return report.DayEvaluation{}, report.ErrNotWorkday
	}
	return eval, nil
}

// GenerateReport implements report.ReportService.
func (s *ReportServiceImpl) GenerateReport(ctx context.Context, workerID string, start, end time.Time) (report.Report, error) {
	start, end = calendarDate(start), calendarDate(end)
	if end.Before(start) || int(end.Sub(start).Hours()/24)+1 > report.MaxPeriodDays {
		return report.Report{}, report.ErrInvalidPeriod
	}

	wc, err := s.load(ctx, workerID)
	if err != nil {
		return report.Report{}, err
	}

	now := s.now()
	today := attendance.WorkDateOf(now, wc.loc)
	last := end
	if last.After(today) {
		last = today
	}

	byDate := make(map[string][]attendance.TimeRecord)
	if !last.Before(start) {
		records, err := s.records.ListByWorkerBetween(ctx, wc.worker.ID, start, last)
		if err != nil {
			return report.Report{}, fmt.Errorf("failed to load records: %w", err)
		}
		for _, rec := range records {
			key := rec.WorkDate.Format(dateLayout)
			byDate[key] = append(byDate[key], rec)
		}
	}

	var evals []report.DayEvaluation
	for d := start; !d.After(last); d = d.AddDate(0, 0, 1) {
		eval, ok := evaluation.Evaluate(evaluation.Input{
			WorkerID: wc.worker.ID,
			Date:     d,
			Records:  byDate[d.Format(dateLayout)],
			Schedule: wc.schedule,
			Location: wc.loc,
			AsOf:     now,
		})
		if !ok || eval.InProgress {
			continue
		}
		evals = append(evals, eval)
	}

	r := Aggregate(wc.worker.ID, evals, start, end)
	s.logger.Debug("report generated",
		zap.String("worker_id", wc.worker.ID),
		zap.String("start", start.Format(dateLayout)),
		zap.String("end", end.Format(dateLayout)),
		zap.Int("days", len(r.Days)),
	)
	return r, nil
}

// ExportReport implements report.ReportService.
func (s *ReportServiceImpl) ExportReport(ctx context.Context, workerID string, start, end time.Time) ([]byte, error) {
	r, err := s.GenerateReport(ctx, workerID, start, end)
	if err != nil {
		return nil, err
	}
	return WriteWorkbook(r)
}

const dateLayout = "2006-01-02"

func calendarDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
