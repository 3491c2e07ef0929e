package http

import (
	"net/http"
	"strings"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/estate-attendance-go/internal/handler/http/response"
)

type ReportHandler interface {
	Timeline(w http.ResponseWriter, r *http.Request)
	ExportTimeline(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// timelineFilter reads from, to, role and a comma-separated worker_ids.
func timelineFilter(r *http.Request) report.TimelineFilter {
	q := r.URL.Query()
	filter := report.TimelineFilter{
		From: q.Get("from"),
		To:   q.Get("to"),
	}
	if role := q.Get("role"); role != "" {
		filter.Role = &role
	}
	for _, raw := range q["worker_ids"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				filter.WorkerIDs = append(filter.WorkerIDs, id)
			}
		}
	}
	return filter
}

// Timeline handles GET /reports/timeline
func (h *reportHandlerImpl) Timeline(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.Timeline(r.Context(), timelineFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ExportTimeline handles GET /reports/timeline/export
func (h *reportHandlerImpl) ExportTimeline(w http.ResponseWriter, r *http.Request) {
	file, err := h.reportService.ExportTimeline(r.Context(), timelineFilter(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if file.ArchiveURL != "" {
		w.Header().Set("Content-Location", file.ArchiveURL)
	}
	response.File(w, file.ContentType, "attachment", file.Filename, file.Content)
}
