package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/permit"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/validator"
)

var (
	ErrSupervisorRequired = errors.New("supervisor access required")
	ErrMissingWorkerClaim = errors.New("token has no worker_id claim")
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var windowErr *attendance.WindowError
	if errors.As(err, &windowErr) {
		code := "WINDOW_CLOSED"
		if errors.Is(err, attendance.ErrWindowExpired) {
			code = "WINDOW_EXPIRED"
		}
		UnprocessableEntity(w, code, windowErr.Err.Error(), windowErr.Details())
		return
	}

	switch {
	// Auth
	case errors.Is(err, ErrMissingWorkerClaim):
		Unauthorized(w, err.Error())
	case errors.Is(err, ErrSupervisorRequired):
		Forbidden(w, err.Error())

	// Worker
	case errors.Is(err, worker.ErrWorkerNotFound):
		NotFound(w, "Worker not found")
	case errors.Is(err, worker.ErrWorkerInactive):
		Forbidden(w, "Worker is not active")
	case errors.Is(err, worker.ErrNotFieldWorker):
		Forbidden(w, "Worker role does not clock attendance")

	// Attendance
	case errors.Is(err, attendance.ErrDuplicateClockIn):
		Conflict(w, "Already clocked in")
	case errors.Is(err, attendance.ErrNotClockedIn):
		Conflict(w, "Not clocked in")
	case errors.Is(err, attendance.ErrOutsideAllowedRadius):
		UnprocessableEntity(w, "OUTSIDE_RADIUS", err.Error(), nil)
	case errors.Is(err, attendance.ErrLocationRequired):
		UnprocessableEntity(w, "LOCATION_REQUIRED", err.Error(), nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Schedule
	case errors.Is(err, schedule.ErrOverrideNotFound):
		NotFound(w, "Schedule override not found")
	case errors.Is(err, schedule.ErrRangeTooLong):
		BadRequest(w, err.Error(), nil)

	// Permit
	case errors.Is(err, permit.ErrPermitNotFound):
		NotFound(w, "Permit not found")
	case errors.Is(err, permit.ErrPermitAlreadyProcessed):
		Conflict(w, "Permit already processed")
	case errors.Is(err, permit.ErrOverlappingPermit):
		Conflict(w, "Permit overlaps an existing permit")
	case errors.Is(err, permit.ErrRejectionReasonMissing):
		ValidationError(w, map[string]string{"rejection_reason": err.Error()})

	// Report
	case errors.Is(err, report.ErrNoWorkersFound):
		NotFound(w, "No workers match the filter")
	case errors.Is(err, report.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)

	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
