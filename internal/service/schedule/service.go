package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
)

type scheduleServiceImpl struct {
	engine              *Engine
	workerRepo          worker.Repository
	overrideRepo        schedule.OverrideRepository
	notificationService notification.Service
	now                 func() time.Time
}

func NewScheduleService(
	engine *Engine,
	workerRepo worker.Repository,
	overrideRepo schedule.OverrideRepository,
	notificationService notification.Service,
) schedule.ScheduleService {
	return &scheduleServiceImpl{
		engine:              engine,
		workerRepo:          workerRepo,
		overrideRepo:        overrideRepo,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

// Roster implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Roster(ctx context.Context, filter schedule.RosterFilter) (schedule.RosterResponse, error) {
	w, dateRange, entries, err := s.roster(ctx, filter)
	if err != nil {
		return schedule.RosterResponse{}, err
	}
	return mapRosterResponse(w, dateRange, entries, s.engine.Location()), nil
}

// RosterCalendar implements schedule.ScheduleService.
func (s *scheduleServiceImpl) RosterCalendar(ctx context.Context, filter schedule.RosterFilter) ([]byte, error) {
	w, _, entries, err := s.roster(ctx, filter)
	if err != nil {
		return nil, err
	}
	return RenderCalendar(w, entries, s.engine.Location(), s.now()), nil
}

func (s *scheduleServiceImpl) roster(ctx context.Context, filter schedule.RosterFilter) (worker.Worker, calendar.Range, []RosterEntry, error) {
	dateRange, err := filter.Validate()
	if err != nil {
		return worker.Worker{}, calendar.Range{}, nil, err
	}

	w, err := s.workerRepo.GetByID(ctx, filter.WorkerID)
	if err != nil {
		return worker.Worker{}, calendar.Range{}, nil, fmt.Errorf("failed to get worker: %w", err)
	}

	overrides, err := LoadOverrides(ctx, s.overrideRepo, []string{w.ID}, dateRange)
	if err != nil {
		return worker.Worker{}, calendar.Range{}, nil, err
	}

	entries, err := BuildRoster(s.engine.WithOverrides(overrides), w, dateRange)
	if err != nil {
		slog.Error("roster contains an untimed shift", "worker_id", w.ID, "error", err)
		return worker.Worker{}, calendar.Range{}, nil, fmt.Errorf("failed to build roster: %w", err)
	}
	return w, dateRange, entries, nil
}

// SetOverride implements schedule.ScheduleService.
func (s *scheduleServiceImpl) SetOverride(ctx context.Context, req schedule.SetOverrideRequest) (schedule.OverrideResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.OverrideResponse{}, err
	}

	w, err := s.workerRepo.GetByID(ctx, req.WorkerID)
	if err != nil {
		return schedule.OverrideResponse{}, fmt.Errorf("failed to get worker: %w", err)
	}
	if !w.Role.IsField() {
		return schedule.OverrideResponse{}, worker.ErrNotFieldWorker
	}

	date, _ := calendar.ParseDate(req.Date)
	code := schedule.Code(req.ShiftCode)
	if !s.engine.Timing.Catalog().Valid(code) {
		return schedule.OverrideResponse{}, schedule.ErrInvalidShiftCode
	}

	saved, err := s.overrideRepo.Upsert(ctx, schedule.Override{
		WorkerID:  w.ID,
		Date:      date,
		Code:      code,
		Note:      req.Note,
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		return schedule.OverrideResponse{}, fmt.Errorf("failed to save schedule override: %w", err)
	}

	slog.Info("schedule override saved", "worker_id", w.ID, "date", date.String(), "code", code)

	if s.notificationService != nil {
		err := s.notificationService.QueueNotification(ctx, notification.CreateNotificationRequest{
			RecipientID: w.ID,
			SenderID:    req.CreatedBy,
			Type:        notification.TypeScheduleOverride,
			Title:       "Schedule Updated",
			Message:     fmt.Sprintf("Your shift on %s is now %s", date.String(), code),
			Data: map[string]interface{}{
				"date":       date.String(),
				"shift_code": string(code),
			},
		})
		if err != nil {
			slog.Warn("failed to queue override notification", "worker_id", w.ID, "error", err)
		}
	}

	return mapOverrideResponse(saved), nil
}

// DeleteOverride implements schedule.ScheduleService.
func (s *scheduleServiceImpl) DeleteOverride(ctx context.Context, req schedule.DeleteOverrideRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	date, _ := calendar.ParseDate(req.Date)

	if err := s.overrideRepo.Delete(ctx, req.WorkerID, date); err != nil {
		return fmt.Errorf("failed to delete schedule override: %w", err)
	}

	slog.Info("schedule override removed", "worker_id", req.WorkerID, "date", date.String())
	return nil
}

func mapOverrideResponse(o schedule.Override) schedule.OverrideResponse {
	return schedule.OverrideResponse{
		ID:        o.ID,
		WorkerID:  o.WorkerID,
		Date:      o.Date.String(),
		ShiftCode: o.Code,
		Note:      o.Note,
		CreatedBy: o.CreatedBy,
		UpdatedAt: o.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
