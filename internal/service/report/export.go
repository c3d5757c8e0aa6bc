package report

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	daysSheet    = "Days"
	recordsSheet = "Records"
)

var daysHeader = []string{
	"Date",
	"Day",
	"Status",
	"Late",
	"Early Departure",
	"Absent",
	"Incomplete",
	"Worked Minutes",
	"Expected Minutes",
	"Overtime Minutes",
	"Late Minutes",
	"Early Departure Minutes",
}

var recordsHeader = []string{
	"Date",
	"Sequence",
	"Type",
	"Timestamp",
	"Method",
	"Zone",
}

// WriteWorkbook renders a report as an xlsx document with summary, day and record sheets.
func WriteWorkbook(r report.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{daysSheet, recordsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	summary := [][]any{
		{"Worker", r.WorkerID},
		{"Period Start", r.PeriodStart.Format(dateLayout)},
		{"Period End", r.PeriodEnd.Format(dateLayout)},
		{"Total Hours", r.TotalHours},
		{"Expected Hours", r.ExpectedHours},
		{"Overtime Hours", r.OvertimeHours},
		{"Late Arrivals", r.LateArrivals},
		{"Early Departures", r.EarlyDepartures},
		{"Absences", r.Absences},
		{"Incomplete Days", r.IncompleteDays},
	}
	for i, row := range summary {
		if err := setRow(f, summarySheet, i+1, row); err != nil {
			return nil, err
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetCellStyle(summarySheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style summary: %w", err)
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 20); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	if err := writeHeader(f, daysSheet, daysHeader, headerStyle); err != nil {
		return nil, err
	}
	for i, d := range r.Days {
		row := []any{
			d.Date.Format(dateLayout),
			d.Date.Weekday().String(),
			string(d.Status),
			yesNo(d.Flags.Late),
			yesNo(d.Flags.EarlyDeparture),
			yesNo(d.Flags.Absent),
			yesNo(d.Flags.Incomplete),
			d.WorkedMinutes,
			d.ExpectedMinutes,
			d.OvertimeMinutes,
			d.LateMinutes,
			d.EarlyDepartureMinutes,
		}
		if err := setRow(f, daysSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if err := writeHeader(f, recordsSheet, recordsHeader, headerStyle); err != nil {
		return nil, err
	}
	for i, rec := range r.Records {
		row := []any{
			rec.WorkDate.Format(dateLayout),
			rec.Sequence,
			string(rec.Type),
			rec.Timestamp.UTC().Format(time.RFC3339),
			string(rec.Method),
			rec.Proof.ZoneLabel,
		}
		if err := setRow(f, recordsSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := setRow(f, sheet, 1, row); err != nil {
		return err
	}

	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, first, last, style); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
