package schedule

import (
	"strings"

	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/validator"
)

// MaxRosterDays bounds a single roster or calendar request.
const MaxRosterDays = 93

type RosterFilter struct {
	WorkerID string `json:"worker_id"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// Validate checks the filter and returns the parsed range.
func (f *RosterFilter) Validate() (calendar.Range, error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.WorkerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "worker_id",
			Message: "worker_id is required",
		})
	}

	from, fromErr := calendar.ParseDate(f.From)
	if fromErr != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "from",
			Message: "from must be a date in YYYY-MM-DD format",
		})
	}
	to, toErr := calendar.ParseDate(f.To)
	if toErr != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: "to must be a date in YYYY-MM-DD format",
		})
	}

	r := calendar.Range{From: from, To: to}
	if fromErr == nil && toErr == nil {
		if err := r.Validate(); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "to",
				Message: "to must not be before from",
			})
		} else if len(r.Days()) > MaxRosterDays {
			errs = append(errs, validator.ValidationError{
				Field:   "to",
				Message: "range must not exceed " + validator.Itoa(MaxRosterDays) + " days",
			})
		}
	}

	if len(errs) > 0 {
		return calendar.Range{}, errs
	}
	return r, nil
}

type RosterDay struct {
	Date           string  `json:"date"`
	Weekday        string  `json:"weekday"`
	ShiftCode      Code    `json:"shift_code"`
	Label          string  `json:"label"`
	ScheduledStart *string `json:"scheduled_start"`
	ScheduledEnd   *string `json:"scheduled_end"`
	IsOvernight    bool    `json:"is_overnight"`
	IsOverride     bool    `json:"is_override"`
}

type RosterResponse struct {
	WorkerID       string      `json:"worker_id"`
	WorkerName     string      `json:"worker_name"`
	Role           string      `json:"role"`
	RotationOffset int         `json:"rotation_offset"`
	From           string      `json:"from"`
	To             string      `json:"to"`
	Days           []RosterDay `json:"days"`
}

type SetOverrideRequest struct {
	WorkerID  string  `json:"worker_id"`
	Date      string  `json:"date"`
	ShiftCode string  `json:"shift_code"`
	Note      *string `json:"note"`
	CreatedBy *string `json:"-"`
}

func (r *SetOverrideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.WorkerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "worker_id",
			Message: "worker_id is required",
		})
	}
	if _, err := calendar.ParseDate(r.Date); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	r.ShiftCode = strings.ToUpper(strings.TrimSpace(r.ShiftCode))
	if !validator.IsInSlice(r.ShiftCode, CodeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "shift_code",
			Message: "shift_code must be one of: " + strings.Join(CodeValues, ", "),
		})
	}
	if r.Note != nil && len(*r.Note) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "note",
			Message: "note must be at most 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DeleteOverrideRequest struct {
	WorkerID string `json:"worker_id"`
	Date     string `json:"date"`
}

func (r *DeleteOverrideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.WorkerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "worker_id",
			Message: "worker_id is required",
		})
	}
	if _, err := calendar.ParseDate(r.Date); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type OverrideResponse struct {
	ID        string  `json:"id"`
	WorkerID  string  `json:"worker_id"`
	Date      string  `json:"date"`
	ShiftCode Code    `json:"shift_code"`
	Note      *string `json:"note"`
	CreatedBy *string `json:"created_by"`
	UpdatedAt string  `json:"updated_at"`
}
