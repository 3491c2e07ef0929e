package attendance

import (
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/attendance"
)

// WindowEdges returns the first and last instants an action around
// boundary is accepted.
func WindowEdges(boundary time.Time, halfWidth time.Duration) (time.Time, time.Time) {
	return boundary.Add(-halfWidth), boundary.Add(halfWidth)
}

// CheckWindow allows now within [boundary-halfWidth, boundary+halfWidth].
// Both edges are inclusive.
func CheckWindow(now, boundary time.Time, halfWidth time.Duration) error {
	opens, closes := WindowEdges(boundary, halfWidth)

	var reason error
	switch {
	case now.Before(opens):
		reason = attendance.ErrWindowClosed
	case now.After(closes):
		reason = attendance.ErrWindowExpired
	default:
		return nil
	}

	return &attendance.WindowError{
		Err:       reason,
		Boundary:  boundary,
		OpensAt:   opens,
		ClosesAt:  closes,
		Attempted: now,
	}
}

// Lateness returns whole minutes past scheduledStart. There is no grace:
// any full minute late marks the record late.
func Lateness(now, scheduledStart time.Time) (bool, int) {
	if !now.After(scheduledStart) {
		return false, 0
	}
	minutes := int(now.Sub(scheduledStart) / time.Minute)
	return minutes > 0, minutes
}

// Earliness returns whole minutes before scheduledEnd when the worker
// leaves earlier than the tolerance allows.
func Earliness(now, scheduledEnd time.Time, tolerance time.Duration) (bool, int) {
	if !now.Before(scheduledEnd.Add(-tolerance)) {
		return false, 0
	}
	return true, int(scheduledEnd.Sub(now) / time.Minute)
}
