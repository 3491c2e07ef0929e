package dashboard

import (
	"context"
	"time"
)

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// DutyBoard returns the cached board, building it on a miss
	DutyBoard(ctx context.Context) (*DutyBoardResponse, error)

	// RefreshDutyBoard rebuilds the board, stores it and announces it
	RefreshDutyBoard(ctx context.Context) (*DutyBoardResponse, error)

	// InvalidateDutyBoard drops the cached board so the next read rebuilds it
	InvalidateDutyBoard(ctx context.Context)
}

// Cache stores rendered dashboards between refreshes.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
