package schedule

import (
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
)

// RosterEntry is one resolved day of a worker's roster.
type RosterEntry struct {
	Date       calendar.Date
	Code       schedule.Code
	Definition schedule.Definition
	Timings    schedule.Timings
	Scheduled  bool
	Override   bool
}

// BuildRoster resolves every day of the range for w.
func BuildRoster(engine *Engine, w worker.Worker, dateRange calendar.Range) ([]RosterEntry, error) {
	days := dateRange.Days()
	entries := make([]RosterEntry, 0, len(days))

	for _, day := range days {
		code := engine.Resolver.Resolve(w, day)
		timings, ok, err := engine.Timing.Timings(code, day)
		if err != nil {
			return nil, err
		}
		def, _, _ := engine.Timing.Catalog().Lookup(code)
		entries = append(entries, RosterEntry{
			Date:       day,
			Code:       code,
			Definition: def,
			Timings:    timings,
			Scheduled:  ok,
			Override:   engine.Resolver.IsOverridden(w, day),
		})
	}
	return entries, nil
}

func mapRosterResponse(w worker.Worker, dateRange calendar.Range, entries []RosterEntry, loc *time.Location) schedule.RosterResponse {
	days := make([]schedule.RosterDay, 0, len(entries))
	for _, e := range entries {
		d := schedule.RosterDay{
			Date:       e.Date.String(),
			Weekday:    e.Date.Weekday().String(),
			ShiftCode:  e.Code,
			Label:      "Off",
			IsOverride: e.Override,
		}
		if e.Scheduled {
			start := e.Timings.Start.In(loc).Format(time.RFC3339)
			end := e.Timings.End.In(loc).Format(time.RFC3339)
			d.Label = e.Definition.Label
			d.ScheduledStart = &start
			d.ScheduledEnd = &end
			d.IsOvernight = e.Definition.IsOvernight()
		}
		days = append(days, d)
	}

	return schedule.RosterResponse{
		WorkerID:       w.ID,
		WorkerName:     w.FullName,
		Role:           string(w.Role),
		RotationOffset: w.RotationOffset,
		From:           dateRange.From.String(),
		To:             dateRange.To.String(),
		Days:           days,
	}
}
