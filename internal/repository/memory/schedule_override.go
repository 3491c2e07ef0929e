package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
)

type overrideKey struct {
	workerID string
	date     calendar.Date
}

type overrideRow = schedule.Override

type ScheduleOverrideRepository struct {
	store *Store
}

var _ schedule.OverrideRepository = (*ScheduleOverrideRepository)(nil)

func NewScheduleOverrideRepository(store *Store) *ScheduleOverrideRepository {
	return &ScheduleOverrideRepository{store: store}
}

func (r *ScheduleOverrideRepository) Get(_ context.Context, workerID string, date calendar.Date) (schedule.Override, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	o, ok := r.store.overrides[overrideKey{workerID: workerID, date: date}]
	if !ok {
		return schedule.Override{}, schedule.ErrOverrideNotFound
	}
	return o, nil
}

func (r *ScheduleOverrideRepository) ListByRange(_ context.Context, workerIDs []string, dateRange calendar.Range) ([]schedule.Override, error) {
	ids := make(map[string]bool, len(workerIDs))
	for _, id := range workerIDs {
		ids[id] = true
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []schedule.Override
	for key, o := range r.store.overrides {
		if ids[key.workerID] && dateRange.Contains(key.date) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *ScheduleOverrideRepository) Upsert(_ context.Context, o schedule.Override) (schedule.Override, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := overrideKey{workerID: o.WorkerID, date: o.Date}
	now := r.store.now()
	if existing, ok := r.store.overrides[key]; ok {
		o.ID = existing.ID
		o.CreatedAt = existing.CreatedAt
	} else {
		o.ID = r.store.nextID("override")
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	r.store.overrides[key] = o
	return o, nil
}

func (r *ScheduleOverrideRepository) Delete(_ context.Context, workerID string, date calendar.Date) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := overrideKey{workerID: workerID, date: date}
	if _, ok := r.store.overrides[key]; !ok {
		return schedule.ErrOverrideNotFound
	}
	delete(r.store.overrides, key)
	return nil
}
