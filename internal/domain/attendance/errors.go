package attendance

import (
	"errors"
	"fmt"
	"time"
)

// Attendance domain errors
var (
	// Clock errors
	ErrDuplicateClockIn     = errors.New("worker already has an open attendance record")
	ErrNotClockedIn         = errors.New("worker has not clocked in")
	ErrWindowClosed         = errors.New("attendance window is not open yet")
	ErrWindowExpired        = errors.New("attendance window has expired")
	ErrOutsideAllowedRadius = errors.New("you are outside the allowed radius")
	ErrLocationRequired     = errors.New("location is required at this site")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
)

// WindowError reports a clock action outside the allowed window.
type WindowError struct {
	Err       error // ErrWindowClosed or ErrWindowExpired
	Boundary  time.Time
	OpensAt   time.Time
	ClosesAt  time.Time
	Attempted time.Time
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("%s: boundary %s, window %s - %s",
		e.Err.Error(),
		e.Boundary.Format("2006-01-02 15:04"),
		e.OpensAt.Format("15:04"),
		e.ClosesAt.Format("15:04"),
	)
}

func (e *WindowError) Unwrap() error {
	return e.Err
}

// Details is the payload attached to error responses.
func (e *WindowError) Details() map[string]string {
	return map[string]string{
		"boundary":  e.Boundary.Format(time.RFC3339),
		"opens_at":  e.OpensAt.Format(time.RFC3339),
		"closes_at": e.ClosesAt.Format(time.RFC3339),
	}
}
