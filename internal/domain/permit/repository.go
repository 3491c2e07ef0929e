package permit

import (
	"context"

	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
)

type Filter struct {
	WorkerID *string
	Status   *Status
	Range    *calendar.Range
}

type Repository interface {
	Create(ctx context.Context, permit Permit) (Permit, error)
	GetByID(ctx context.Context, id string) (Permit, error)
	UpdateStatus(ctx context.Context, permit Permit) error
	List(ctx context.Context, filter Filter) ([]Permit, error)

	// ListApproved returns approved permits overlapping the range.
	ListApproved(ctx context.Context, workerIDs []string, dateRange calendar.Range) ([]Permit, error)

	// HasOverlap reports whether a pending or approved permit overlaps the range.
	HasOverlap(ctx context.Context, workerID string, dateRange calendar.Range) (bool, error)
}
