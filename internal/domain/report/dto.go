package report

import (
	"strings"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/validator"
)

// MaxTimelineDays bounds one timeline request.
const MaxTimelineDays = 93

// ========================================
// ATTENDANCE TIMELINE
// ========================================

type TimelineFilter struct {
	WorkerIDs []string `json:"worker_ids"`
	Role      *string  `json:"role"`
	From      string   `json:"from"`
	To        string   `json:"to"`
}

// Validate checks the filter and returns the worker filter and day range.
func (f *TimelineFilter) Validate() (worker.Filter, calendar.Range, error) {
	var errs validator.ValidationErrors
	wf := worker.Filter{IDs: f.WorkerIDs, FieldOnly: true}

	if f.Role != nil && *f.Role != "" {
		role, ok := worker.ParseRole(*f.Role)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "role",
				Message: "role must be one of: " + strings.Join(worker.RoleValues, ", "),
			})
		} else {
			wf.Role = &role
		}
	}

	for _, id := range f.WorkerIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "worker_ids",
				Message: "worker_ids must contain valid UUIDs",
			})
			break
		}
	}

	from, fromErr := calendar.ParseDate(f.From)
	if fromErr != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "from",
			Message: "from must be in YYYY-MM-DD format",
		})
	}
	to, toErr := calendar.ParseDate(f.To)
	if toErr != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: "to must be in YYYY-MM-DD format",
		})
	}

	r := calendar.Range{From: from, To: to}
	if fromErr == nil && toErr == nil {
		if err := r.Validate(); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "to",
				Message: ErrInvalidDateRange.Error(),
			})
		} else if len(r.Days()) > MaxTimelineDays {
			errs = append(errs, validator.ValidationError{
				Field:   "to",
				Message: "range must not exceed " + validator.Itoa(MaxTimelineDays) + " days",
			})
		}
	}

	if len(errs) > 0 {
		return worker.Filter{}, calendar.Range{}, errs
	}
	return wf, r, nil
}

type TimelineEntry struct {
	attendance.AttendanceResponse
	Role  string `json:"role"`
	Score int    `json:"score"`
}

type StatusCounts map[attendance.Status]int

type WorkerSummary struct {
	WorkerID     string       `json:"worker_id"`
	WorkerName   string       `json:"worker_name"`
	Role         string       `json:"role"`
	Records      int          `json:"records"`
	Counts       StatusCounts `json:"counts"`
	LateMinutes  int          `json:"late_minutes"`
	EarlyMinutes int          `json:"early_leave_minutes"`
	AverageScore string       `json:"average_score"`
}

type TimelineSummary struct {
	Workers      int          `json:"workers"`
	Records      int          `json:"records"`
	Counts       StatusCounts `json:"counts"`
	AverageScore string       `json:"average_score"`
}

type TimelineResponse struct {
	From        string          `json:"from"`
	To          string          `json:"to"`
	Timezone    string          `json:"timezone"`
	GeneratedAt string          `json:"generated_at"`
	Records     []TimelineEntry `json:"records"`
	Workers     []WorkerSummary `json:"workers"`
	Summary     TimelineSummary `json:"summary"`
}

// ExportFile is a rendered report ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
	// ArchiveURL is set when a copy was kept in the export archive.
	ArchiveURL string
}
