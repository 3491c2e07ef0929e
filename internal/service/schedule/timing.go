package schedule

import (
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
)

// TimingCalculator places a shift code on a concrete day.
type TimingCalculator struct {
	catalog schedule.Catalog
	loc     *time.Location
}

func NewTimingCalculator(catalog schedule.Catalog, loc *time.Location) TimingCalculator {
	return TimingCalculator{catalog: catalog, loc: loc}
}

// Timings returns the start and end instants of code on day. Overnight shifts
// end on day+1. ok is false for OFF, the no-shift outcome, which callers must
// never read as an absence. An unknown code is ErrInvalidShiftCode.
func (c TimingCalculator) Timings(code schedule.Code, day calendar.Date) (schedule.Timings, bool, error) {
	def, ok, err := c.catalog.Lookup(code)
	if err != nil || !ok {
		return schedule.Timings{}, false, err
	}

	endDay := day
	if def.IsOvernight() {
		endDay = day.AddDays(1)
	}

	return schedule.Timings{
		Code:  code,
		Date:  day,
		Start: day.At(def.Start, c.loc),
		End:   endDay.At(def.End, c.loc),
	}, true, nil
}

func (c TimingCalculator) Catalog() schedule.Catalog {
	return c.catalog
}

func (c TimingCalculator) Location() *time.Location {
	return c.loc
}
