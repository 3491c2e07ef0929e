package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

const (
	timelineSheet = "Timeline"
	summarySheet  = "Summary"
	xlsxMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportTimeline implements report.ReportService.
func (s *ReportServiceImpl) ExportTimeline(ctx context.Context, filter report.TimelineFilter) (report.ExportFile, error) {
	timeline, err := s.Timeline(ctx, filter)
	if err != nil {
		return report.ExportFile{}, err
	}

	buf, err := renderTimelineWorkbook(timeline)
	if err != nil {
		slog.Error("failed to render timeline workbook", "error", err)
		return report.ExportFile{}, fmt.Errorf("%w: %v", report.ErrReportGenerationFailed, err)
	}

	file := report.ExportFile{
		Filename:    fmt.Sprintf("attendance_%s_%s.xlsx", timeline.From, timeline.To),
		ContentType: xlsxMIME,
		Content:     buf.Bytes(),
	}
	file.ArchiveURL = s.archiveExport(ctx, file)
	return file, nil
}

// archiveExport keeps a copy of the workbook when an archive is configured.
// Failures are logged; the download itself still succeeds.
func (s *ReportServiceImpl) archiveExport(ctx context.Context, file report.ExportFile) string {
	if s.archive == nil {
		return ""
	}
	key := path.Join("timeline", s.now().In(s.engine.Location()).Format("20060102T150405"), file.Filename)
	key, err := s.archive.Upload(ctx, bytes.NewReader(file.Content), key, file.ContentType)
	if err != nil {
		slog.Warn("failed to archive timeline export", "filename", file.Filename, "error", err)
		return ""
	}
	url, err := s.archive.GetURL(ctx, key)
	if err != nil {
		slog.Warn("failed to resolve archived export url", "key", key, "error", err)
		return ""
	}
	slog.Info("timeline export archived", "key", key)
	return url
}

func renderTimelineWorkbook(t report.TimelineResponse) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(timelineSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	// Timeline sheet
	headers := []string{
		"Date", "Worker", "Role", "Shift", "Status", "Clock In", "Clock Out",
		"Scheduled In", "Scheduled Out", "Late (min)", "Early Leave (min)", "Score", "Virtual",
	}
	if err := writeRow(f, timelineSheet, 1, toCells(headers)); err != nil {
		return nil, err
	}
	lastCol := colName(len(headers) - 1)
	if err := f.SetCellStyle(timelineSheet, "A1", cell(lastCol, 1), headerStyle); err != nil {
		return nil, err
	}

	for i, e := range t.Records {
		shift := "-"
		if e.ShiftType != nil {
			shift = string(*e.ShiftType)
		}
		name := e.WorkerID
		if e.WorkerName != nil {
			name = *e.WorkerName
		}
		row := []interface{}{
			e.Date, name, e.Role, shift, string(e.Status), e.ClockIn,
			deref(e.ClockOut), deref(e.ScheduledClockIn), deref(e.ScheduledClockOut),
			e.LateMinutes, e.EarlyLeaveMinutes, e.Score, e.IsVirtual,
		}
		if err := writeRow(f, timelineSheet, i+2, row); err != nil {
			return nil, err
		}
	}
	f.SetColWidth(timelineSheet, "A", "A", 12)
	f.SetColWidth(timelineSheet, "B", "B", 24)
	f.SetColWidth(timelineSheet, "F", "I", 26)

	// Summary sheet
	summaryHeaders := []string{"Worker", "Role", "Records", "Present", "Late", "Absent", "Sick", "Permit", "Late (min)", "Early Leave (min)", "Average Score"}
	if err := writeRow(f, summarySheet, 1, toCells(summaryHeaders)); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(summarySheet, "A1", cell(colName(len(summaryHeaders)-1), 1), headerStyle); err != nil {
		return nil, err
	}
	for i, w := range t.Workers {
		row := []interface{}{
			w.WorkerName, w.Role, w.Records,
			w.Counts["PRESENT"], w.Counts["LATE"], w.Counts["ABSENT"], w.Counts["SICK"], w.Counts["PERMIT"],
			w.LateMinutes, w.EarlyMinutes, w.AverageScore,
		}
		if err := writeRow(f, summarySheet, i+2, row); err != nil {
			return nil, err
		}
	}
	totalRow := len(t.Workers) + 3
	f.SetCellValue(summarySheet, cell("A", totalRow), fmt.Sprintf("Period %s - %s (%s)", t.From, t.To, t.Timezone))
	f.SetCellValue(summarySheet, cell("K", totalRow), t.Summary.AverageScore)
	f.SetColWidth(summarySheet, "A", "A", 28)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, start, &values)
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
