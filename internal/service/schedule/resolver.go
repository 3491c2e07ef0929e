package schedule

import (
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
)

// Strategy derives a worker's shift on a day.
type Strategy interface {
	Resolve(w worker.Worker, day calendar.Date) schedule.Code
}

// WeekdayStrategy serves roles with a fixed week. Index 0 is Monday.
type WeekdayStrategy map[worker.Role][7]schedule.Code

func DefaultWeekdayStrategy() WeekdayStrategy {
	p, off := schedule.CodeP, schedule.CodeOff
	return WeekdayStrategy{
		worker.RoleLingkungan: {p, p, p, p, p, off, off},
		worker.RoleKebersihan: {p, p, p, p, p, p, off},
	}
}

func (s WeekdayStrategy) Resolve(w worker.Worker, day calendar.Date) schedule.Code {
	week, ok := s[w.Role]
	if !ok {
		return schedule.CodeOff
	}
	return week[day.ISOWeekday()-1]
}

// RotationCycle is the security rotation, indexed by cycle position.
var RotationCycle = [worker.RotationCycleLength]schedule.Code{
	schedule.CodeP,
	schedule.CodePM,
	schedule.CodeM,
	schedule.CodeOff,
	schedule.CodeOff,
}

// RotationStrategy walks RotationCycle from a fixed epoch. Days are counted
// on the civil calendar so DST and zone changes cannot shift the cycle.
type RotationStrategy struct {
	Epoch calendar.Date
}

// Position returns the cycle index of day for a worker offset.
func (s RotationStrategy) Position(offset int, day calendar.Date) int {
	n := worker.RotationCycleLength
	return ((day.DaysSince(s.Epoch)+offset)%n + n) % n
}

func (s RotationStrategy) Resolve(w worker.Worker, day calendar.Date) schedule.Code {
	return RotationCycle[s.Position(w.RotationOffset, day)]
}

// roleStrategy dispatches on the closed role set.
type roleStrategy struct {
	weekday  Strategy
	rotation Strategy
}

func (s roleStrategy) Resolve(w worker.Worker, day calendar.Date) schedule.Code {
	switch w.Role {
	case worker.RoleSecurity:
		return s.rotation.Resolve(w, day)
	case worker.RoleLingkungan, worker.RoleKebersihan:
		return s.weekday.Resolve(w, day)
	default:
		return schedule.CodeOff
	}
}

// OverrideSource answers manual override lookups from memory.
type OverrideSource interface {
	Lookup(workerID string, day calendar.Date) (schedule.Code, bool)
}

type overrideKey struct {
	workerID string
	day      calendar.Date
}

// Overrides is a loaded snapshot of manual overrides.
type Overrides map[overrideKey]schedule.Code

func NewOverrides(list []schedule.Override) Overrides {
	o := make(Overrides, len(list))
	for _, ov := range list {
		o[overrideKey{workerID: ov.WorkerID, day: ov.Date}] = ov.Code
	}
	return o
}

func (o Overrides) Lookup(workerID string, day calendar.Date) (schedule.Code, bool) {
	code, ok := o[overrideKey{workerID: workerID, day: day}]
	return code, ok
}

// overrideStrategy puts manual overrides in front of another strategy.
type overrideStrategy struct {
	source OverrideSource
	next   Strategy
}

func (s overrideStrategy) Resolve(w worker.Worker, day calendar.Date) schedule.Code {
	if s.source != nil {
		if code, ok := s.source.Lookup(w.ID, day); ok {
			return code
		}
	}
	return s.next.Resolve(w, day)
}

// Resolver answers "which shift does this worker have on this day".
// It never fails and has no side effects.
type Resolver struct {
	base     Strategy
	strategy Strategy
	override OverrideSource
}

func NewResolver(epoch calendar.Date) *Resolver {
	base := roleStrategy{
		weekday:  DefaultWeekdayStrategy(),
		rotation: RotationStrategy{Epoch: epoch},
	}
	return &Resolver{base: base, strategy: base}
}

// WithOverrides returns a resolver that consults src first.
func (r *Resolver) WithOverrides(src OverrideSource) *Resolver {
	return &Resolver{
		base:     r.base,
		strategy: overrideStrategy{source: src, next: r.base},
		override: src,
	}
}

func (r *Resolver) Resolve(w worker.Worker, day calendar.Date) schedule.Code {
	return r.strategy.Resolve(w, day)
}

// IsOverridden reports whether the day is pinned by a manual override.
func (r *Resolver) IsOverridden(w worker.Worker, day calendar.Date) bool {
	if r.override == nil {
		return false
	}
	_, ok := r.override.Lookup(w.ID, day)
	return ok
}
