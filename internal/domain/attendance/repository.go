package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create inserts a record. A second open record for the same worker
	// fails with ErrDuplicateClockIn.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// Update writes the clock-out fields of an open record.
	Update(ctx context.Context, attendance Attendance) error

	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetOpenByWorker returns the worker's open record or ErrAttendanceNotFound.
	GetOpenByWorker(ctx context.Context, workerID string) (Attendance, error)

	// ListByRange returns records with clock-in in [from, to).
	ListByRange(ctx context.Context, workerIDs []string, from, to time.Time) ([]Attendance, error)

	// ListStaleOpen returns open records that clocked in before the cutoff.
	ListStaleOpen(ctx context.Context, before time.Time) ([]Attendance, error)
}
