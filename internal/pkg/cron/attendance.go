package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/dashboard"
)

const (
	AutoCloseJob        = "auto_close_stale_attendances"
	RefreshDutyBoardJob = "refresh_duty_board"

	autoCloseInterval = time.Hour
	dutyBoardInterval = 5 * time.Minute
)

type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	dashboardService  dashboard.DashboardService
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, dashboardService dashboard.DashboardService) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
		dashboardService:  dashboardService,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(AutoCloseJob, autoCloseInterval, j.AutoCloseStaleAttendances)
	if j.dashboardService != nil {
		scheduler.AddJob(RefreshDutyBoardJob, dutyBoardInterval, j.RefreshDutyBoard)
	}
}

// AutoCloseStaleAttendances closes records whose clock-out window has long
// passed.
func (j *AttendanceJobs) AutoCloseStaleAttendances(ctx context.Context) error {
	closed, err := j.attendanceService.AutoCloseStale(ctx)
	if err != nil {
		return err
	}
	if closed > 0 {
		slog.Info("auto-closed stale attendances", "count", closed)
	}
	return nil
}

func (j *AttendanceJobs) RefreshDutyBoard(ctx context.Context) error {
	board, err := j.dashboardService.RefreshDutyBoard(ctx)
	if err != nil {
		return err
	}
	slog.Debug("duty board refreshed", "on_duty", board.TotalOnDuty, "clocked_in", board.TotalClockedIn)
	return nil
}
