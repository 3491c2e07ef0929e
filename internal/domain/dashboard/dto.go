package dashboard

import "github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"

// ========== DUTY BOARD ==========

// DutyBoardResponse groups field workers by the shift they are on right now.
type DutyBoardResponse struct {
	GeneratedAt    string      `json:"generated_at"`
	Date           string      `json:"date"`
	Groups         []DutyGroup `json:"groups"`
	TotalOnDuty    int         `json:"total_on_duty"`
	TotalClockedIn int         `json:"total_clocked_in"`
	MissingClockIn int         `json:"missing_clock_in"`
}

type DutyGroup struct {
	ShiftCode schedule.Code `json:"shift_code"`
	Label     string        `json:"label"`
	Workers   []DutyWorker  `json:"workers"`
}

type DutyWorker struct {
	WorkerID       string        `json:"worker_id"`
	WorkerName     string        `json:"worker_name"`
	Role           string        `json:"role"`
	ShiftCode      schedule.Code `json:"shift_code"`
	ClockedIn      bool          `json:"clocked_in"`
	ClockInAt      *string       `json:"clock_in_at"`
	ScheduledStart *string       `json:"scheduled_start"`
	ScheduledEnd   *string       `json:"scheduled_end"`
}
