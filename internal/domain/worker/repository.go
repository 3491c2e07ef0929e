package worker

import "context"

type Filter struct {
	IDs        []string
	Role       *Role
	FieldOnly  bool
	ActiveOnly bool
}

type Repository interface {
	GetByID(ctx context.Context, id string) (Worker, error)
	// ListFieldWorkers returns active workers whose role works shifts.
	ListFieldWorkers(ctx context.Context) ([]Worker, error)
	List(ctx context.Context, filter Filter) ([]Worker, error)

	// Save inserts w, or updates it when a worker with the same ID exists.
	Save(ctx context.Context, w Worker) (Worker, error)
}
