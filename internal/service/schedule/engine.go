package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/config"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
)

// Engine bundles the pure shift calculations for one site configuration.
type Engine struct {
	Resolver *Resolver
	Timing   TimingCalculator
	Duty     DutyResolver
	Settings config.Settings
}

func NewEngine(settings config.Settings) *Engine {
	loc := settings.Location
	if loc == nil {
		loc = time.UTC
	}
	catalog := schedule.DefaultCatalog()
	resolver := NewResolver(calendar.DateOf(settings.ScheduleEpoch.In(loc)))

	return &Engine{
		Resolver: resolver,
		Timing:   NewTimingCalculator(catalog, loc),
		Duty:     NewDutyResolver(resolver, catalog, loc),
		Settings: settings,
	}
}

// WithOverrides returns an engine whose resolver consults src first.
func (e *Engine) WithOverrides(src OverrideSource) *Engine {
	resolver := e.Resolver.WithOverrides(src)
	return &Engine{
		Resolver: resolver,
		Timing:   e.Timing,
		Duty:     NewDutyResolver(resolver, e.Timing.Catalog(), e.Timing.Location()),
		Settings: e.Settings,
	}
}

func (e *Engine) Location() *time.Location {
	return e.Timing.Location()
}

// Today returns the local calendar day of now.
func (e *Engine) Today(now time.Time) calendar.Date {
	return calendar.DateIn(now, e.Location())
}

// LoadOverrides snapshots the overrides of workerIDs over dateRange.
func LoadOverrides(ctx context.Context, repo schedule.OverrideRepository, workerIDs []string, dateRange calendar.Range) (Overrides, error) {
	list, err := repo.ListByRange(ctx, workerIDs, dateRange)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule overrides: %w", err)
	}
	return NewOverrides(list), nil
}
