package schedule

import (
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
)

// DutyResolver decides which shift a worker is serving at an instant,
// carrying last night's shift over into the early morning.
type DutyResolver struct {
	resolver *Resolver
	catalog  schedule.Catalog
	loc      *time.Location
}

func NewDutyResolver(resolver *Resolver, catalog schedule.Catalog, loc *time.Location) DutyResolver {
	return DutyResolver{resolver: resolver, catalog: catalog, loc: loc}
}

// EffectiveShiftNow returns the open record's shift when there is one,
// yesterday's overnight shift before MorningCutoverHour, else today's shift.
func (d DutyResolver) EffectiveShiftNow(w worker.Worker, open *attendance.Attendance, now time.Time) schedule.Code {
	if open != nil && open.IsOpen() && open.ShiftType != nil {
		return *open.ShiftType
	}

	local := now.In(d.loc)
	today := calendar.DateOf(local)

	if local.Hour() < schedule.MorningCutoverHour {
		prev := d.resolver.Resolve(w, today.AddDays(-1))
		if d.catalog.IsOvernight(prev) {
			return prev
		}
	}
	return d.resolver.Resolve(w, today)
}

// ShiftDay returns the day whose shift EffectiveShiftNow would pick.
func (d DutyResolver) ShiftDay(w worker.Worker, open *attendance.Attendance, now time.Time) calendar.Date {
	if open != nil && open.IsOpen() && open.ScheduledClockIn != nil {
		return calendar.DateIn(*open.ScheduledClockIn, d.loc)
	}

	local := now.In(d.loc)
	today := calendar.DateOf(local)
	if local.Hour() < schedule.MorningCutoverHour {
		if d.catalog.IsOvernight(d.resolver.Resolve(w, today.AddDays(-1))) {
			return today.AddDays(-1)
		}
	}
	return today
}
