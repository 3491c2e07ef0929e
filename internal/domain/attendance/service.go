package attendance

import (
	"context"
)

// AttendanceService defines the clock actions and attendance queries
type AttendanceService interface {
	// ClockIn opens a record against today's shift
	ClockIn(ctx context.Context, req ClockInRequest) (AttendanceResponse, error)

	// ClockOut closes the worker's open record
	ClockOut(ctx context.Context, req ClockOutRequest) (AttendanceResponse, error)

	// Status describes what the worker may do right now
	Status(ctx context.Context, workerID string) (StatusResponse, error)

	// MyAttendance lists the worker's own records
	MyAttendance(ctx context.Context, filter MyAttendanceFilter) ([]AttendanceResponse, error)

	// AutoCloseStale closes records left open past their window
	AutoCloseStale(ctx context.Context) (int, error)
}
