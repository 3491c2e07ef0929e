package schedule

import (
	"context"

	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
)

type OverrideRepository interface {
	// Get returns the override for one worker-day, or ErrOverrideNotFound.
	Get(ctx context.Context, workerID string, date calendar.Date) (Override, error)
	ListByRange(ctx context.Context, workerIDs []string, dateRange calendar.Range) ([]Override, error)
	Upsert(ctx context.Context, override Override) (Override, error)
	Delete(ctx context.Context, workerID string, date calendar.Date) error
}
