package report

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/permit"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
	scheduleService "github.com/cmlabs-hris/estate-attendance-go/internal/service/schedule"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// virtualNamespace seeds the deterministic IDs of synthesized records.
var virtualNamespace = uuid.MustParse("6f1c2d3e-4b5a-5c6d-8e7f-9a0b1c2d3e4f")

// VirtualID is stable for a (worker, day) pair.
func VirtualID(workerID string, day calendar.Date) string {
	return uuid.NewSHA1(virtualNamespace, []byte(workerID+"/"+day.String())).String()
}

// TimelineInput is everything the reconciler needs; it does no I/O.
type TimelineInput struct {
	Workers []worker.Worker
	Range   calendar.Range
	Records []attendance.Attendance
	Permits []permit.Permit
	Now     time.Time
}

// Reconciler merges real records with inferred absences.
type Reconciler struct {
	engine *scheduleService.Engine
}

// NewReconciler expects an engine with the range's overrides loaded.
func NewReconciler(engine *scheduleService.Engine) Reconciler {
	return Reconciler{engine: engine}
}

// Timeline returns real and virtual records for every worker-day in the
// range, newest clock-in first. Workers are processed in parallel.
func (r Reconciler) Timeline(in TimelineInput) []attendance.Attendance {
	loc := r.engine.Location()

	recordsByWorker := make(map[string][]attendance.Attendance)
	for _, rec := range in.Records {
		recordsByWorker[rec.WorkerID] = append(recordsByWorker[rec.WorkerID], rec)
	}
	permitsByWorker := make(map[string][]permit.Permit)
	for _, p := range in.Permits {
		permitsByWorker[p.WorkerID] = append(permitsByWorker[p.WorkerID], p)
	}

	days := in.Range.Days()
	today := calendar.DateIn(in.Now, loc)

	var (
		mu  sync.Mutex
		out []attendance.Attendance
		g   errgroup.Group
	)
	g.SetLimit(8)

	for _, w := range in.Workers {
		g.Go(func() error {
			rows := r.workerTimeline(w, days, today, in.Now, recordsByWorker[w.ID], permitsByWorker[w.ID])
			mu.Lock()
			out = append(out, rows...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ClockIn.Equal(out[j].ClockIn) {
			return out[i].WorkerID < out[j].WorkerID
		}
		return out[i].ClockIn.After(out[j].ClockIn)
	})
	return out
}

func (r Reconciler) workerTimeline(
	w worker.Worker,
	days []calendar.Date,
	today calendar.Date,
	now time.Time,
	records []attendance.Attendance,
	permits []permit.Permit,
) []attendance.Attendance {
	loc := r.engine.Location()
	gate := r.engine.Settings.WindowHalfWidth

	realByDay := make(map[calendar.Date][]attendance.Attendance)
	for _, rec := range records {
		realByDay[rec.Day(loc)] = append(realByDay[rec.Day(loc)], rec)
	}

	var out []attendance.Attendance
	for _, day := range days {
		if recs, ok := realByDay[day]; ok {
			for _, rec := range recs {
				if rec.WorkerName == nil {
					name := w.FullName
					rec.WorkerName = &name
				}
				out = append(out, rec)
			}
			continue
		}

		code := r.engine.Resolver.Resolve(w, day)
		timings, ok, err := r.engine.Timing.Timings(code, day)
		if err != nil {
			slog.Warn("skipping worker-day in timeline", "worker_id", w.ID, "date", day.String(), "code", code, "error", err)
			continue
		}
		if !ok {
			continue
		}

		status := attendance.StatusAbsent
		covering, hasPermit := permit.FindCovering(permits, day)
		if hasPermit {
			status = attendance.StatusPermit
			if covering.Type.IsIllness() {
				status = attendance.StatusSick
			}
		}

		emit := day.Before(today) ||
			(day.Equal(today) && now.After(timings.Start.Add(gate))) ||
			hasPermit
		if !emit {
			continue
		}

		name := w.FullName
		shift := code
		start, end := timings.Start, timings.End
		out = append(out, attendance.Attendance{
			ID:                VirtualID(w.ID, day),
			WorkerID:          w.ID,
			WorkerName:        &name,
			ClockIn:           start,
			ScheduledClockIn:  &start,
			ScheduledClockOut: &end,
			ShiftType:         &shift,
			Status:            status,
			IsVirtual:         true,
		})
	}
	return out
}
