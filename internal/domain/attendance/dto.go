package attendance

import (
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type ClockInRequest struct {
	WorkerID  string   `json:"-"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Notes     *string  `json:"notes"`
}

func (r *ClockInRequest) Validate() error {
	return validateClock(r.WorkerID, r.Latitude, r.Longitude, r.Notes)
}

type ClockOutRequest struct {
	WorkerID  string   `json:"-"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Notes     *string  `json:"notes"`
}

func (r *ClockOutRequest) Validate() error {
	return validateClock(r.WorkerID, r.Latitude, r.Longitude, r.Notes)
}

func validateClock(workerID string, lat, lng *float64, notes *string) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(workerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "worker_id",
			Message: "worker_id is required",
		})
	}

	if (lat == nil) != (lng == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude and longitude must be sent together",
		})
	}
	if lat != nil && !validator.IsValidLatitude(*lat) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}
	if lng != nil && !validator.IsValidLongitude(*lng) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if notes != nil && len(*notes) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must be at most 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AttendanceResponse struct {
	ID                string         `json:"id"`
	WorkerID          string         `json:"worker_id"`
	WorkerName        *string        `json:"worker_name,omitempty"`
	Date              string         `json:"date"`
	ClockIn           string         `json:"clock_in"`
	ClockOut          *string        `json:"clock_out"`
	ScheduledClockIn  *string        `json:"scheduled_clock_in"`
	ScheduledClockOut *string        `json:"scheduled_clock_out"`
	ShiftType         *schedule.Code `json:"shift_type"`
	Status            Status         `json:"status"`
	IsLate            bool           `json:"is_late"`
	LateMinutes       int            `json:"late_minutes"`
	IsEarlyLeave      bool           `json:"is_early_leave"`
	EarlyLeaveMinutes int            `json:"early_leave_minutes"`
	AutoClosed        bool           `json:"auto_closed"`
	IsVirtual         bool           `json:"is_virtual"`
	Notes             *string        `json:"notes,omitempty"`
}

// StatusResponse tells a worker which clock action is available now.
type StatusResponse struct {
	WorkerID       string              `json:"worker_id"`
	Date           string              `json:"date"`
	ShiftCode      schedule.Code       `json:"shift_code"`
	EffectiveShift schedule.Code       `json:"effective_shift"`
	ScheduledStart *string             `json:"scheduled_start"`
	ScheduledEnd   *string             `json:"scheduled_end"`
	WindowOpensAt  *string             `json:"window_opens_at"`
	WindowClosesAt *string             `json:"window_closes_at"`
	OpenRecord     *AttendanceResponse `json:"open_record"`
	CanClockIn     bool                `json:"can_clock_in"`
	CanClockOut    bool                `json:"can_clock_out"`
}

type MyAttendanceFilter struct {
	WorkerID string `json:"-"`
	From     string `json:"from"` // YYYY-MM-DD
	To       string `json:"to"`   // YYYY-MM-DD
}

// MaxListDays bounds MyAttendance queries.
const MaxListDays = 93

// Validate checks the filter and returns the parsed range.
func (f *MyAttendanceFilter) Validate() (calendar.Range, error) {
	var errs validator.ValidationErrors

	from, err := calendar.ParseDate(f.From)
	if err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "from",
			Message: "from must be in YYYY-MM-DD format",
		})
	}
	to, err := calendar.ParseDate(f.To)
	if err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: "to must be in YYYY-MM-DD format",
		})
	}
	if len(errs) > 0 {
		return calendar.Range{}, errs
	}

	r := calendar.Range{From: from, To: to}
	if err := r.Validate(); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: "to must not be before from",
		})
	} else if len(r.Days()) > MaxListDays {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: "range must not exceed " + validator.Itoa(MaxListDays) + " days",
		})
	}

	if len(errs) > 0 {
		return calendar.Range{}, errs
	}
	return r, nil
}
