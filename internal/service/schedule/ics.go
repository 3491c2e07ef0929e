package schedule

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
)

const icsProductID = "-//Estate Attendance//Roster//EN"

// RenderCalendar turns the scheduled days of a roster into an iCalendar
// feed. OFF days produce no event.
func RenderCalendar(w worker.Worker, entries []RosterEntry, loc *time.Location, stamp time.Time) []byte {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(fmt.Sprintf("Roster %s", w.FullName))
	cal.SetXWRTimezone(loc.String())

	for _, e := range entries {
		if !e.Scheduled {
			continue
		}
		event := cal.AddEvent(fmt.Sprintf("%s-%s@roster", w.ID, e.Date.String()))
		event.SetDtStampTime(stamp.UTC())
		event.SetStartAt(e.Timings.Start.UTC())
		event.SetEndAt(e.Timings.End.UTC())
		event.SetSummary(fmt.Sprintf("Shift %s (%s)", e.Code, e.Definition.Label))

		desc := fmt.Sprintf("%s %s - %s", e.Date.String(), e.Definition.Start, e.Definition.End)
		if e.Override {
			desc += ", manual override"
		}
		event.SetDescription(desc)
	}

	return []byte(cal.Serialize())
}
