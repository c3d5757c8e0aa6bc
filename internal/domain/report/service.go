package report

import (
	"context"
	"time"
)

type ReportService interface {
	// EvaluateDay evaluates one calendar date for a worker.
	EvaluateDay(ctx context.Context, workerID string, date time.Time) (DayEvaluation, error)

	// GenerateReport evaluates every elapsed day of [start, end] and aggregates them.
	GenerateReport(ctx context.Context, workerID string, start, end time.Time) (Report, error)

	// ExportReport renders GenerateReport's result as an xlsx workbook.
	ExportReport(ctx context.Context, workerID string, start, end time.Time) ([]byte, error)
}
