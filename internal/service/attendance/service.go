package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/utils"
	scheduleService "github.com/cmlabs-hris/estate-attendance-go/internal/service/schedule"
)

// UnscheduledMaxOpen is how long a record without a scheduled end may stay
// open before it is auto-closed.
const UnscheduledMaxOpen = 16 * time.Hour

// DutyBoard is told when a clock event leaves the cached duty board stale.
type DutyBoard interface {
	InvalidateDutyBoard(ctx context.Context)
}

type AttendanceServiceImpl struct {
	attendanceRepo      attendance.AttendanceRepository
	workerRepo          worker.Repository
	overrideRepo        schedule.OverrideRepository
	engine              *scheduleService.Engine
	notificationService notification.Service
	dutyBoard           DutyBoard
	now                 func() time.Time
}

func NewAttendanceService(
	engine *scheduleService.Engine,
	attendanceRepo attendance.AttendanceRepository,
	workerRepo worker.Repository,
	overrideRepo schedule.OverrideRepository,
	notificationService notification.Service,
	dutyBoard DutyBoard,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		attendanceRepo:      attendanceRepo,
		workerRepo:          workerRepo,
		overrideRepo:        overrideRepo,
		engine:              engine,
		notificationService: notificationService,
		dutyBoard:           dutyBoard,
		now:                 time.Now,
	}
}

// timePtrToString safely converts a *time.Time to a string in loc.
func timePtrToString(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	format := t.In(loc).Format(time.RFC3339)
	return &format
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	now := a.now()
	settings := a.engine.Settings

	w, err := a.activeFieldWorker(ctx, req.WorkerID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if err := a.checkGeofence(req.Latitude, req.Longitude); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if _, err := a.attendanceRepo.GetOpenByWorker(ctx, w.ID); err == nil {
		return attendance.AttendanceResponse{}, attendance.ErrDuplicateClockIn
	} else if !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check open attendance: %w", err)
	}

	today := a.engine.Today(now)
	engine, err := a.engineFor(ctx, w.ID, calendar.Range{From: today, To: today})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	code := engine.Resolver.Resolve(w, today)
	timings, scheduled, err := engine.Timing.Timings(code, today)
	if err != nil {
		slog.Error("shift code cannot be timed", "worker_id", w.ID, "code", code, "error", err)
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to compute shift timings: %w", err)
	}

	record := attendance.Attendance{
		WorkerID:         w.ID,
		ClockIn:          now,
		ClockInLatitude:  req.Latitude,
		ClockInLongitude: req.Longitude,
		Notes:            req.Notes,
	}

	if scheduled {
		if err := CheckWindow(now, timings.Start, settings.WindowHalfWidth); err != nil {
			return attendance.AttendanceResponse{}, err
		}

		isLate, lateMinutes := Lateness(now, timings.Start)
		record.ScheduledClockIn = &timings.Start
		record.ScheduledClockOut = &timings.End
		record.ShiftType = &code
		record.IsLate = isLate
		record.LateMinutes = lateMinutes
		record.Status = attendance.StatusPresent
		if isLate {
			record.Status = attendance.StatusLate
		}
	} else {
		// No shift today: accepted as a free-form record awaiting a permit.
		record.Status = attendance.StatusPermitPending
	}

	created, err := a.attendanceRepo.Create(ctx, record)
	if err != nil {
		if errors.Is(err, attendance.ErrDuplicateClockIn) {
			return attendance.AttendanceResponse{}, attendance.ErrDuplicateClockIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
	}
	created.WorkerName = &w.FullName

	slog.Info("worker clocked in",
		"worker_id", w.ID,
		"attendance_id", created.ID,
		"shift", code,
		"status", created.Status,
		"late_minutes", created.LateMinutes,
	)

	a.invalidateDutyBoard(ctx)
	a.notifyClockEvent(ctx, w, created, notification.TypeAttendanceClockIn)

	return MapAttendanceToResponse(created, a.engine.Location()), nil
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	now := a.now()
	settings := a.engine.Settings

	w, err := a.workerRepo.GetByID(ctx, req.WorkerID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get worker: %w", err)
	}

	record, err := a.attendanceRepo.GetOpenByWorker(ctx, w.ID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrNotClockedIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get open attendance: %w", err)
	}

	if record.ScheduledClockOut != nil {
		if err := CheckWindow(now, *record.ScheduledClockOut, settings.WindowHalfWidth); err != nil {
			return attendance.AttendanceResponse{}, err
		}
		record.IsEarlyLeave, record.EarlyLeaveMinutes = Earliness(now, *record.ScheduledClockOut, settings.EarlyLeaveTolerance)
	}

	record.ClockOut = &now
	record.ClockOutLatitude = req.Latitude
	record.ClockOutLongitude = req.Longitude
	if req.Notes != nil {
		record.Notes = req.Notes
	}

	if err := a.attendanceRepo.Update(ctx, record); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrNotClockedIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}
	record.WorkerName = &w.FullName

	slog.Info("worker clocked out",
		"worker_id", w.ID,
		"attendance_id", record.ID,
		"early_leave_minutes", record.EarlyLeaveMinutes,
	)

	a.invalidateDutyBoard(ctx)
	a.notifyClockEvent(ctx, w, record, notification.TypeAttendanceClockOut)

	return MapAttendanceToResponse(record, a.engine.Location()), nil
}

// Status implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Status(ctx context.Context, workerID string) (attendance.StatusResponse, error) {
	now := a.now()
	settings := a.engine.Settings
	loc := a.engine.Location()

	w, err := a.workerRepo.GetByID(ctx, workerID)
	if err != nil {
		return attendance.StatusResponse{}, fmt.Errorf("failed to get worker: %w", err)
	}

	var open *attendance.Attendance
	record, err := a.attendanceRepo.GetOpenByWorker(ctx, w.ID)
	switch {
	case err == nil:
		open = &record
	case !errors.Is(err, attendance.ErrAttendanceNotFound):
		return attendance.StatusResponse{}, fmt.Errorf("failed to get open attendance: %w", err)
	}

	today := a.engine.Today(now)
	engine, err := a.engineFor(ctx, w.ID, calendar.Range{From: today.AddDays(-1), To: today})
	if err != nil {
		return attendance.StatusResponse{}, err
	}

	code := engine.Resolver.Resolve(w, today)
	resp := attendance.StatusResponse{
		WorkerID:       w.ID,
		Date:           today.String(),
		ShiftCode:      code,
		EffectiveShift: engine.Duty.EffectiveShiftNow(w, open, now),
	}

	timings, scheduled, err := engine.Timing.Timings(code, today)
	if err != nil {
		return attendance.StatusResponse{}, fmt.Errorf("failed to compute shift timings: %w", err)
	}
	if scheduled {
		resp.ScheduledStart = timePtrToString(&timings.Start, loc)
		resp.ScheduledEnd = timePtrToString(&timings.End, loc)
	}

	if open != nil {
		mapped := MapAttendanceToResponse(*open, loc)
		resp.OpenRecord = &mapped
		resp.CanClockOut = true
		if open.ScheduledClockOut != nil {
			opens, closes := WindowEdges(*open.ScheduledClockOut, settings.WindowHalfWidth)
			resp.WindowOpensAt = timePtrToString(&opens, loc)
			resp.WindowClosesAt = timePtrToString(&closes, loc)
			resp.CanClockOut = CheckWindow(now, *open.ScheduledClockOut, settings.WindowHalfWidth) == nil
		}
		return resp, nil
	}

	resp.CanClockIn = w.Role.IsField() && w.IsActive
	if scheduled {
		opens, closes := WindowEdges(timings.Start, settings.WindowHalfWidth)
		resp.WindowOpensAt = timePtrToString(&opens, loc)
		resp.WindowClosesAt = timePtrToString(&closes, loc)
		resp.CanClockIn = resp.CanClockIn && CheckWindow(now, timings.Start, settings.WindowHalfWidth) == nil
	}

	return resp, nil
}

// MyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) MyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) ([]attendance.AttendanceResponse, error) {
	dateRange, err := filter.Validate()
	if err != nil {
		return nil, err
	}
	loc := a.engine.Location()
	from, to := dateRange.Bounds(loc)

	records, err := a.attendanceRepo.ListByRange(ctx, []string{filter.WorkerID}, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, MapAttendanceToResponse(r, loc))
	}
	return responses, nil
}

// AutoCloseStale implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) AutoCloseStale(ctx context.Context) (int, error) {
	now := a.now()
	settings := a.engine.Settings
	cutoff := now.Add(-settings.WindowHalfWidth - settings.AutoCloseGrace)

	stale, err := a.attendanceRepo.ListStaleOpen(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale attendance: %w", err)
	}

	closed := 0
	for _, record := range stale {
		end := staleBoundary(record)
		if now.Before(end.Add(settings.WindowHalfWidth + settings.AutoCloseGrace)) {
			continue
		}

		record.ClockOut = &end
		record.AutoClosed = true
		record.IsEarlyLeave = false
		record.EarlyLeaveMinutes = 0

		if err := a.attendanceRepo.Update(ctx, record); err != nil {
			slog.Error("failed to auto-close attendance", "attendance_id", record.ID, "error", err)
			continue
		}
		closed++

		a.queue(ctx, notification.CreateNotificationRequest{
			RecipientID: record.WorkerID,
			Type:        notification.TypeAttendanceAutoClosed,
			Title:       "Attendance closed automatically",
			Message:     fmt.Sprintf("Your attendance was closed at %s because no clock-out was recorded", end.In(a.engine.Location()).Format("2006-01-02 15:04")),
			Data: map[string]interface{}{
				"attendance_id": record.ID,
				"clock_out":     end.Format(time.RFC3339),
			},
		})
	}

	if closed > 0 {
		a.invalidateDutyBoard(ctx)
	}
	return closed, nil
}

func (a *AttendanceServiceImpl) invalidateDutyBoard(ctx context.Context) {
	if a.dutyBoard != nil {
		a.dutyBoard.InvalidateDutyBoard(ctx)
	}
}

// staleBoundary is the instant an abandoned record is closed at.
func staleBoundary(record attendance.Attendance) time.Time {
	if record.ScheduledClockOut != nil {
		return *record.ScheduledClockOut
	}
	return record.ClockIn.Add(UnscheduledMaxOpen)
}

func (a *AttendanceServiceImpl) activeFieldWorker(ctx context.Context, workerID string) (worker.Worker, error) {
	w, err := a.workerRepo.GetByID(ctx, workerID)
	if err != nil {
		return worker.Worker{}, fmt.Errorf("failed to get worker: %w", err)
	}
	if !w.IsActive {
		return worker.Worker{}, worker.ErrWorkerInactive
	}
	if !w.Role.IsField() {
		return worker.Worker{}, worker.ErrNotFieldWorker
	}
	return w, nil
}

// engineFor loads the worker's overrides for the range into the engine.
func (a *AttendanceServiceImpl) engineFor(ctx context.Context, workerID string, dateRange calendar.Range) (*scheduleService.Engine, error) {
	overrides, err := scheduleService.LoadOverrides(ctx, a.overrideRepo, []string{workerID}, dateRange)
	if err != nil {
		return nil, err
	}
	return a.engine.WithOverrides(overrides), nil
}

func (a *AttendanceServiceImpl) checkGeofence(lat, lng *float64) error {
	settings := a.engine.Settings
	if !settings.EnforceGeofence {
		return nil
	}
	if lat == nil || lng == nil {
		return attendance.ErrLocationRequired
	}

	if !utils.WithinRadius(*lat, *lng, settings.SiteLatitude, settings.SiteLongitude, settings.SiteRadiusMeters) {
		distance := utils.CalculateHaversineDistance(*lat, *lng, settings.SiteLatitude, settings.SiteLongitude)
		slog.Info("clock-in outside site radius", "distance_m", distance, "radius_m", settings.SiteRadiusMeters)
		return attendance.ErrOutsideAllowedRadius
	}
	return nil
}

// notifyClockEvent tells supervisors about a clock action. Failures are logged
// and never change the clock result.
func (a *AttendanceServiceImpl) notifyClockEvent(ctx context.Context, w worker.Worker, record attendance.Attendance, kind notification.NotificationType) {
	if a.notificationService == nil || !a.engine.Settings.NotifyClockEvents {
		return
	}

	role := worker.RoleSupervisor
	supervisors, err := a.workerRepo.List(ctx, worker.Filter{Role: &role, ActiveOnly: true})
	if err != nil {
		slog.Warn("failed to list supervisors for notification", "worker_id", w.ID, "error", err)
		return
	}

	loc := a.engine.Location()
	title := "Clock-in"
	at := record.ClockIn
	if kind == notification.TypeAttendanceClockOut && record.ClockOut != nil {
		title = "Clock-out"
		at = *record.ClockOut
	}

	message := fmt.Sprintf("%s %s at %s", w.FullName, title, at.In(loc).Format("15:04"))
	if record.IsLate {
		message += fmt.Sprintf(" (late %d min)", record.LateMinutes)
	}
	if record.IsEarlyLeave {
		message += fmt.Sprintf(" (early %d min)", record.EarlyLeaveMinutes)
	}

	for _, sup := range supervisors {
		a.queue(ctx, notification.CreateNotificationRequest{
			RecipientID: sup.ID,
			SenderID:    &w.ID,
			Type:        kind,
			Title:       title,
			Message:     message,
			Data: map[string]interface{}{
				"attendance_id": record.ID,
				"worker_id":     w.ID,
				"status":        string(record.Status),
				"shift":         string(record.Shift()),
			},
		})
	}
}

func (a *AttendanceServiceImpl) queue(ctx context.Context, req notification.CreateNotificationRequest) {
	if a.notificationService == nil {
		return
	}
	if err := a.notificationService.QueueNotification(ctx, req); err != nil {
		slog.Warn("failed to queue notification", "type", req.Type, "recipient_id", req.RecipientID, "error", err)
	}
}

// MapAttendanceToResponse renders a record with instants in loc.
func MapAttendanceToResponse(att attendance.Attendance, loc *time.Location) attendance.AttendanceResponse {
	clockIn := att.ClockIn.In(loc).Format(time.RFC3339)
	return attendance.AttendanceResponse{
		ID:                att.ID,
		WorkerID:          att.WorkerID,
		WorkerName:        att.WorkerName,
		Date:              att.Day(loc).String(),
		ClockIn:           clockIn,
		ClockOut:          timePtrToString(att.ClockOut, loc),
		ScheduledClockIn:  timePtrToString(att.ScheduledClockIn, loc),
		ScheduledClockOut: timePtrToString(att.ScheduledClockOut, loc),
		ShiftType:         att.ShiftType,
		Status:            att.Status,
		IsLate:            att.IsLate,
		LateMinutes:       att.LateMinutes,
		IsEarlyLeave:      att.IsEarlyLeave,
		EarlyLeaveMinutes: att.EarlyLeaveMinutes,
		AutoClosed:        att.AutoClosed,
		IsVirtual:         att.IsVirtual,
		Notes:             att.Notes,
	}
}
