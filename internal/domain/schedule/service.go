package schedule

import "context"

type ScheduleService interface {
	// Roster resolves one worker's shift for every day of the range.
	Roster(ctx context.Context, filter RosterFilter) (RosterResponse, error)
	// RosterCalendar renders the roster as an iCalendar feed.
	RosterCalendar(ctx context.Context, filter RosterFilter) ([]byte, error)

	SetOverride(ctx context.Context, req SetOverrideRequest) (OverrideResponse, error)
	DeleteOverride(ctx context.Context, req DeleteOverrideRequest) error
}
