package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/permit"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/storage"
	attendanceService "github.com/cmlabs-hris/estate-attendance-go/internal/service/attendance"
	scheduleService "github.com/cmlabs-hris/estate-attendance-go/internal/service/schedule"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	workerRepo     worker.Repository
	attendanceRepo attendance.AttendanceRepository
	overrideRepo   schedule.OverrideRepository
	permitRepo     permit.Repository
	engine         *scheduleService.Engine
	archive        storage.FileStorage
	now            func() time.Time
}

func NewReportService(
	engine *scheduleService.Engine,
	workerRepo worker.Repository,
	attendanceRepo attendance.AttendanceRepository,
	overrideRepo schedule.OverrideRepository,
	permitRepo permit.Repository,
	archive storage.FileStorage,
) report.ReportService {
	return &ReportServiceImpl{
		workerRepo:     workerRepo,
		attendanceRepo: attendanceRepo,
		overrideRepo:   overrideRepo,
		permitRepo:     permitRepo,
		engine:         engine,
		archive:        archive,
		now:            time.Now,
	}
}

// Timeline implements report.ReportService.
func (s *ReportServiceImpl) Timeline(ctx context.Context, filter report.TimelineFilter) (report.TimelineResponse, error) {
	workerFilter, dateRange, err := filter.Validate()
	if err != nil {
		return report.TimelineResponse{}, err
	}
	now := s.now()
	loc := s.engine.Location()

	workers, err := s.workerRepo.List(ctx, workerFilter)
	if err != nil {
		return report.TimelineResponse{}, fmt.Errorf("failed to list workers: %w", err)
	}
	if len(workers) == 0 {
		return report.TimelineResponse{}, report.ErrNoWorkersFound
	}

	ids := make([]string, len(workers))
	for i, w := range workers {
		ids[i] = w.ID
	}

	var (
		records   []attendance.Attendance
		permits   []permit.Permit
		overrides scheduleService.Overrides
	)
	from, to := dateRange.Bounds(loc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListByRange(gctx, ids, from, to)
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		permits, err = s.permitRepo.ListApproved(gctx, ids, dateRange)
		if err != nil {
			return fmt.Errorf("failed to list permits: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		overrides, err = scheduleService.LoadOverrides(gctx, s.overrideRepo, ids, dateRange)
		return err
	})
	if err := g.Wait(); err != nil {
		return report.TimelineResponse{}, err
	}

	rows := NewReconciler(s.engine.WithOverrides(overrides)).Timeline(TimelineInput{
		Workers: workers,
		Range:   dateRange,
		Records: records,
		Permits: permits,
		Now:     now,
	})

	slog.Info("timeline generated",
		"workers", len(workers),
		"from", dateRange.From.String(),
		"to", dateRange.To.String(),
		"records", len(rows),
	)

	return buildTimelineResponse(workers, rows, dateRange, now, loc), nil
}

func buildTimelineResponse(workers []worker.Worker, rows []attendance.Attendance, dateRange calendar.Range, now time.Time, loc *time.Location) report.TimelineResponse {
	roles := make(map[string]worker.Role, len(workers))
	summaries := make(map[string]*summaryAcc, len(workers))
	for _, w := range workers {
		roles[w.ID] = w.Role
		summaries[w.ID] = &summaryAcc{counts: report.StatusCounts{}}
	}
	total := &summaryAcc{counts: report.StatusCounts{}}

	entries := make([]report.TimelineEntry, 0, len(rows))
	for _, row := range rows {
		score := Score(row)
		entries = append(entries, report.TimelineEntry{
			AttendanceResponse: attendanceService.MapAttendanceToResponse(row, loc),
			Role:               string(roles[row.WorkerID]),
			Score:              score,
		})
		if acc, ok := summaries[row.WorkerID]; ok {
			acc.add(row, score)
		}
		total.add(row, score)
	}

	workerSummaries := make([]report.WorkerSummary, 0, len(workers))
	for _, w := range workers {
		acc := summaries[w.ID]
		workerSummaries = append(workerSummaries, report.WorkerSummary{
			WorkerID:     w.ID,
			WorkerName:   w.FullName,
			Role:         string(w.Role),
			Records:      acc.records,
			Counts:       acc.counts,
			LateMinutes:  acc.lateMinutes,
			EarlyMinutes: acc.earlyMinutes,
			AverageScore: acc.average(),
		})
	}

	return report.TimelineResponse{
		From:        dateRange.From.String(),
		To:          dateRange.To.String(),
		Timezone:    loc.String(),
		GeneratedAt: now.In(loc).Format(time.RFC3339),
		Records:     entries,
		Workers:     workerSummaries,
		Summary: report.TimelineSummary{
			Workers:      len(workers),
			Records:      total.records,
			Counts:       total.counts,
			AverageScore: total.average(),
		},
	}
}

type summaryAcc struct {
	records      int
	counts       report.StatusCounts
	lateMinutes  int
	earlyMinutes int
	scoreSum     int64
}

func (a *summaryAcc) add(row attendance.Attendance, score int) {
	a.records++
	a.counts[row.Status]++
	a.lateMinutes += row.LateMinutes
	a.earlyMinutes += row.EarlyLeaveMinutes
	a.scoreSum += int64(score)
}

// average is the mean score with two decimals, "0.00" when empty.
func (a *summaryAcc) average() string {
	if a.records == 0 {
		return decimal.Zero.StringFixed(2)
	}
	return decimal.NewFromInt(a.scoreSum).
		Div(decimal.NewFromInt(int64(a.records))).
		StringFixed(2)
}
