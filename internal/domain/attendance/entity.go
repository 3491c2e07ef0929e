package attendance

import (
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
)

type Status string

const (
	StatusPresent       Status = "PRESENT"
	StatusLate          Status = "LATE"
	StatusAbsent        Status = "ABSENT"
	StatusSick          Status = "SICK"
	StatusPermit        Status = "PERMIT"
	StatusPermitPending Status = "PERMIT_PENDING"
)

var StatusValues = []string{
	string(StatusPresent),
	string(StatusLate),
	string(StatusAbsent),
	string(StatusSick),
	string(StatusPermit),
	string(StatusPermitPending),
}

// Attendance is one clock-in/clock-out pair. Virtual records share the type
// and are synthesized by reporting; they are never stored.
type Attendance struct {
	ID       string
	WorkerID string

	ClockIn  time.Time
	ClockOut *time.Time

	ScheduledClockIn  *time.Time
	ScheduledClockOut *time.Time
	ShiftType         *schedule.Code

	IsLate            bool
	LateMinutes       int
	IsEarlyLeave      bool
	EarlyLeaveMinutes int
	Status            Status

	ClockInLatitude   *float64
	ClockInLongitude  *float64
	ClockOutLatitude  *float64
	ClockOutLongitude *float64
	Notes             *string
	AutoClosed        bool

	IsVirtual bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	WorkerName *string
}

func (a Attendance) IsOpen() bool {
	return a.ClockOut == nil
}

// Day returns the local calendar day the record belongs to.
func (a Attendance) Day(loc *time.Location) calendar.Date {
	return calendar.DateIn(a.ClockIn, loc)
}

// Shift returns the stored shift code, OFF when unscheduled.
func (a Attendance) Shift() schedule.Code {
	if a.ShiftType == nil {
		return schedule.CodeOff
	}
	return *a.ShiftType
}
