package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/permit"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
)

type permitRow = permit.Permit

type PermitRepository struct {
	store *Store
}

var _ permit.Repository = (*PermitRepository)(nil)

func NewPermitRepository(store *Store) *PermitRepository {
	return &PermitRepository{store: store}
}

// Create rejects a permit that overlaps a live one, like the locked insert
// of the SQL repository.
func (r *PermitRepository) Create(_ context.Context, p permit.Permit) (permit.Permit, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.overlaps(p.WorkerID, calendar.Range{From: p.StartDate, To: p.EndDate}) {
		return permit.Permit{}, permit.ErrOverlappingPermit
	}

	now := r.store.now()
	p.ID = r.store.nextID("permit")
	p.CreatedAt = now
	p.UpdatedAt = now
	p.WorkerName = nil
	r.store.permits[p.ID] = p

	p.WorkerName = r.store.workerName(p.WorkerID)
	return p, nil
}

func (r *PermitRepository) GetByID(_ context.Context, id string) (permit.Permit, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.permits[id]
	if !ok {
		return permit.Permit{}, permit.ErrPermitNotFound
	}
	p.WorkerName = r.store.workerName(p.WorkerID)
	return p, nil
}

func (r *PermitRepository) UpdateStatus(_ context.Context, p permit.Permit) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.permits[p.ID]
	if !ok {
		return permit.ErrPermitNotFound
	}
	if existing.Status != permit.StatusPending {
		return permit.ErrPermitAlreadyProcessed
	}

	existing.Status = p.Status
	existing.ReviewedBy = p.ReviewedBy
	existing.ReviewedAt = p.ReviewedAt
	existing.RejectionReason = p.RejectionReason
	existing.UpdatedAt = r.store.now()
	r.store.permits[p.ID] = existing
	return nil
}

func (r *PermitRepository) List(_ context.Context, filter permit.Filter) ([]permit.Permit, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []permit.Permit
	for _, p := range r.store.permits {
		if filter.WorkerID != nil && p.WorkerID != *filter.WorkerID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.Range != nil && !rangesOverlap(*filter.Range, p) {
			continue
		}
		p.WorkerName = r.store.workerName(p.WorkerID)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate == out[j].StartDate {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDate.After(out[j].StartDate)
	})
	return out, nil
}

func (r *PermitRepository) ListApproved(ctx context.Context, workerIDs []string, dateRange calendar.Range) ([]permit.Permit, error) {
	approved := permit.StatusApproved
	all, err := r.List(ctx, permit.Filter{Status: &approved, Range: &dateRange})
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(workerIDs))
	for _, id := range workerIDs {
		ids[id] = true
	}

	var out []permit.Permit
	for _, p := range all {
		if ids[p.WorkerID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PermitRepository) HasOverlap(_ context.Context, workerID string, dateRange calendar.Range) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.overlaps(workerID, dateRange), nil
}

// overlaps must be called with mu held.
func (r *PermitRepository) overlaps(workerID string, dateRange calendar.Range) bool {
	for _, p := range r.store.permits {
		if p.WorkerID != workerID || p.Status == permit.StatusRejected {
			continue
		}
		if rangesOverlap(dateRange, p) {
			return true
		}
	}
	return false
}

func rangesOverlap(dateRange calendar.Range, p permit.Permit) bool {
	return !p.EndDate.Before(dateRange.From) && !p.StartDate.After(dateRange.To)
}
