package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
)

type workerRow = worker.Worker

type WorkerRepository struct {
	store *Store
}

var _ worker.Repository = (*WorkerRepository)(nil)

func NewWorkerRepository(store *Store) *WorkerRepository {
	return &WorkerRepository{store: store}
}

// Save inserts or replaces w. An empty ID is assigned.
func (r *WorkerRepository) Save(_ context.Context, w worker.Worker) (worker.Worker, error) {
	if err := w.Validate(); err != nil {
		return worker.Worker{}, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.store.now()
	if w.ID == "" {
		w.ID = r.store.nextID("worker")
	}
	if existing, ok := r.store.workers[w.ID]; ok {
		w.CreatedAt = existing.CreatedAt
	} else {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
	r.store.workers[w.ID] = w
	return w, nil
}

func (r *WorkerRepository) GetByID(_ context.Context, id string) (worker.Worker, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	w, ok := r.store.workers[id]
	if !ok {
		return worker.Worker{}, worker.ErrWorkerNotFound
	}
	return w, nil
}

func (r *WorkerRepository) ListFieldWorkers(ctx context.Context) ([]worker.Worker, error) {
	return r.List(ctx, worker.Filter{FieldOnly: true, ActiveOnly: true})
}

func (r *WorkerRepository) List(_ context.Context, filter worker.Filter) ([]worker.Worker, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var ids map[string]bool
	if len(filter.IDs) > 0 {
		ids = make(map[string]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			ids[id] = true
		}
	}

	var out []worker.Worker
	for _, w := range r.store.workers {
		if ids != nil && !ids[w.ID] {
			continue
		}
		if filter.Role != nil && w.Role != *filter.Role {
			continue
		}
		if filter.FieldOnly && !w.Role.IsField() {
			continue
		}
		if filter.ActiveOnly && !w.IsActive {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName == out[j].FullName {
			return out[i].ID < out[j].ID
		}
		return out[i].FullName < out[j].FullName
	})
	return out, nil
}
