package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/sse"
	scheduleService "github.com/cmlabs-hris/estate-attendance-go/internal/service/schedule"
	"golang.org/x/sync/errgroup"
)

const (
	dutyBoardKey   = "duty_board"
	DutyBoardEvent = "duty_board"
)

var groupOrder = map[schedule.Code]int{
	schedule.CodeP:   0,
	schedule.CodePM:  1,
	schedule.CodeM:   2,
	schedule.CodeOff: 3,
}

type DashboardServiceImpl struct {
	engine         *scheduleService.Engine
	workerRepo     worker.Repository
	attendanceRepo attendance.AttendanceRepository
	overrideRepo   schedule.OverrideRepository
	cache          dashboard.Cache
	hub            *sse.Hub
	ttl            time.Duration
	now            func() time.Time
}

func NewDashboardService(
	engine *scheduleService.Engine,
	workerRepo worker.Repository,
	attendanceRepo attendance.AttendanceRepository,
	overrideRepo schedule.OverrideRepository,
	cache dashboard.Cache,
	hub *sse.Hub,
	ttl time.Duration,
) dashboard.DashboardService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &DashboardServiceImpl{
		engine:         engine,
		workerRepo:     workerRepo,
		attendanceRepo: attendanceRepo,
		overrideRepo:   overrideRepo,
		cache:          cache,
		hub:            hub,
		ttl:            ttl,
		now:            time.Now,
	}
}

// DutyBoard implements dashboard.DashboardService.
func (s *DashboardServiceImpl) DutyBoard(ctx context.Context) (*dashboard.DutyBoardResponse, error) {
	if s.cache != nil {
		var cached dashboard.DutyBoardResponse
		found, err := s.cache.GetJSON(ctx, dutyBoardKey, &cached)
		if err != nil {
			slog.Warn("duty board cache read failed", "error", err)
		} else if found {
			return &cached, nil
		}
	}

	board, err := s.buildDutyBoard(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, board)
	return board, nil
}

// RefreshDutyBoard implements dashboard.DashboardService.
func (s *DashboardServiceImpl) RefreshDutyBoard(ctx context.Context) (*dashboard.DutyBoardResponse, error) {
	board, err := s.buildDutyBoard(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, board)

	if s.hub != nil {
		recipients, err := s.workerRepo.List(ctx, worker.Filter{ActiveOnly: true})
		if err != nil {
			slog.Warn("failed to list duty board recipients", "error", err)
			return board, nil
		}
		ids := make([]string, 0, len(recipients))
		for _, w := range recipients {
			if w.Role.CanSupervise() {
				ids = append(ids, w.ID)
			}
		}
		s.hub.PublishToMany(ids, sse.Event{Event: DutyBoardEvent, Data: board})
	}
	return board, nil
}

// InvalidateDutyBoard implements dashboard.DashboardService.
func (s *DashboardServiceImpl) InvalidateDutyBoard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dutyBoardKey); err != nil {
		slog.Warn("duty board cache invalidation failed", "error", err)
	}
}

func (s *DashboardServiceImpl) store(ctx context.Context, board *dashboard.DutyBoardResponse) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, dutyBoardKey, board, s.ttl); err != nil {
		slog.Warn("duty board cache write failed", "error", err)
	}
}

func (s *DashboardServiceImpl) buildDutyBoard(ctx context.Context) (*dashboard.DutyBoardResponse, error) {
	now := s.now()
	loc := s.engine.Location()
	today := s.engine.Today(now)
	window := calendar.Range{From: today.AddDays(-1), To: today}

	workers, err := s.workerRepo.ListFieldWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list field workers: %w", err)
	}
	ids := make([]string, len(workers))
	for i, w := range workers {
		ids[i] = w.ID
	}

	var (
		records   []attendance.Attendance
		overrides scheduleService.Overrides
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		from, to := window.Bounds(loc)
		var err error
		records, err = s.attendanceRepo.ListByRange(gctx, ids, from, to)
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		overrides, err = scheduleService.LoadOverrides(gctx, s.overrideRepo, ids, window)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	open := make(map[string]*attendance.Attendance)
	for i := range records {
		if records[i].IsOpen() {
			open[records[i].WorkerID] = &records[i]
		}
	}

	engine := s.engine.WithOverrides(overrides)
	halfWidth := engine.Settings.WindowHalfWidth
	groups := make(map[schedule.Code]*dashboard.DutyGroup)
	board := &dashboard.DutyBoardResponse{
		GeneratedAt: now.In(loc).Format(time.RFC3339),
		Date:        today.String(),
	}

	for _, w := range workers {
		rec := open[w.ID]
		code := engine.Duty.EffectiveShiftNow(w, rec, now)
		day := engine.Duty.ShiftDay(w, rec, now)

		timings, scheduled, err := engine.Timing.Timings(code, day)
		if err != nil {
			slog.Warn("skipping worker on duty board", "worker_id", w.ID, "code", code, "error", err)
			continue
		}

		onShift := scheduled &&
			!now.Before(timings.Start.Add(-halfWidth)) &&
			!now.After(timings.End.Add(halfWidth))
		if rec == nil && !onShift {
			continue
		}

		entry := dashboard.DutyWorker{
			WorkerID:   w.ID,
			WorkerName: w.FullName,
			Role:       string(w.Role),
			ShiftCode:  code,
			ClockedIn:  rec != nil,
		}
		if rec != nil {
			at := rec.ClockIn.In(loc).Format(time.RFC3339)
			entry.ClockInAt = &at
		}
		if scheduled {
			start := timings.Start.In(loc).Format(time.RFC3339)
			end := timings.End.In(loc).Format(time.RFC3339)
			entry.ScheduledStart = &start
			entry.ScheduledEnd = &end
			if rec == nil && now.After(timings.Start) {
				board.MissingClockIn++
			}
		}

		group, ok := groups[code]
		if !ok {
			def, _, _ := engine.Timing.Catalog().Lookup(code)
			label := def.Label
			if code.IsOff() {
				label = "Off"
			}
			group = &dashboard.DutyGroup{ShiftCode: code, Label: label}
			groups[code] = group
		}
		group.Workers = append(group.Workers, entry)

		board.TotalOnDuty++
		if rec != nil {
			board.TotalClockedIn++
		}
	}

	for _, grp := range groups {
		sort.Slice(grp.Workers, func(i, j int) bool { return grp.Workers[i].WorkerName < grp.Workers[j].WorkerName })
		board.Groups = append(board.Groups, *grp)
	}
	sort.Slice(board.Groups, func(i, j int) bool {
		return groupOrder[board.Groups[i].ShiftCode] < groupOrder[board.Groups[j].ShiftCode]
	})

	return board, nil
}
