package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeAttendanceClockIn    NotificationType = "attendance_clock_in"
	TypeAttendanceClockOut   NotificationType = "attendance_clock_out"
	TypeAttendanceAutoClosed NotificationType = "attendance_auto_closed"
	TypePermitSubmitted      NotificationType = "permit_submitted"
	TypePermitApproved       NotificationType = "permit_approved"
	TypePermitRejected       NotificationType = "permit_rejected"
	TypeScheduleOverride     NotificationType = "schedule_override"
)

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
