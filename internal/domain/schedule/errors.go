package schedule

import "errors"

var (
	// Shift errors
	ErrInvalidShiftCode = errors.New("invalid shift code")

	// Override errors
	ErrOverrideNotFound = errors.New("schedule override not found")

	// Validation Errors
	ErrWorkerIDRequired  = errors.New("worker ID is required")
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
	ErrRangeTooLong      = errors.New("date range is too long")
)
