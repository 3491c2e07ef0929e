package permit

import (
	"strings"

	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/validator"
)

// MaxPermitDays bounds one permit.
const MaxPermitDays = 30

type SubmitPermitRequest struct {
	WorkerID  string  `json:"-"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Type      string  `json:"type"`
	Reason    *string `json:"reason"`
}

// Validate checks the request and returns the parsed range.
func (r *SubmitPermitRequest) Validate() (calendar.Range, error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.WorkerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "worker_id",
			Message: "worker_id is required",
		})
	}

	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
	if !validator.IsInSlice(r.Type, TypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: " + strings.Join(TypeValues, ", "),
		})
	}

	start, startErr := calendar.ParseDate(r.StartDate)
	if startErr != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}
	end, endErr := calendar.ParseDate(r.EndDate)
	if endErr != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	dr := calendar.Range{From: start, To: end}
	if startErr == nil && endErr == nil {
		if err := dr.Validate(); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			})
		} else if len(dr.Days()) > MaxPermitDays {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "a permit may span at most " + validator.Itoa(MaxPermitDays) + " days",
			})
		}
	}

	if r.Reason != nil && len(*r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must be at most 500 characters",
		})
	}

	if len(errs) > 0 {
		return calendar.Range{}, errs
	}
	return dr, nil
}

type ReviewPermitRequest struct {
	PermitID        string  `json:"-"`
	ReviewerID      string  `json:"-"`
	RejectionReason *string `json:"rejection_reason"`
}

type PermitFilter struct {
	WorkerID *string
	Status   *string
	From     *string
	To       *string
}

func (f *PermitFilter) Validate() (Filter, error) {
	var errs validator.ValidationErrors
	out := Filter{WorkerID: f.WorkerID}

	if f.Status != nil {
		s := strings.ToUpper(*f.Status)
		valid := []string{string(StatusPending), string(StatusApproved), string(StatusRejected)}
		if !validator.IsInSlice(s, valid) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: " + strings.Join(valid, ", "),
			})
		} else {
			st := Status(s)
			out.Status = &st
		}
	}

	if (f.From == nil) != (f.To == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "from",
			Message: "from and to must be sent together",
		})
	} else if f.From != nil {
		from, err1 := calendar.ParseDate(*f.From)
		to, err2 := calendar.ParseDate(*f.To)
		if err1 != nil || err2 != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "from",
				Message: "from and to must be in YYYY-MM-DD format",
			})
		} else {
			r := calendar.Range{From: from, To: to}
			if err := r.Validate(); err != nil {
				errs = append(errs, validator.ValidationError{
					Field:   "to",
					Message: "to must not be before from",
				})
			}
			out.Range = &r
		}
	}

	if len(errs) > 0 {
		return Filter{}, errs
	}
	return out, nil
}

type PermitResponse struct {
	ID              string  `json:"id"`
	WorkerID        string  `json:"worker_id"`
	WorkerName      *string `json:"worker_name,omitempty"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Type            Type    `json:"type"`
	Status          Status  `json:"status"`
	Reason          *string `json:"reason"`
	ReviewedBy      *string `json:"reviewed_by"`
	ReviewedAt      *string `json:"reviewed_at"`
	RejectionReason *string `json:"rejection_reason"`
	CreatedAt       string  `json:"created_at"`
}
