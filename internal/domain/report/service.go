package report

import "context"

// ReportService defines the interface for report generation
type ReportService interface {
	// Timeline merges real and inferred attendance for a range of days
	Timeline(ctx context.Context, filter TimelineFilter) (TimelineResponse, error)

	// ExportTimeline renders the timeline as an xlsx workbook
	ExportTimeline(ctx context.Context, filter TimelineFilter) (ExportFile, error)
}
