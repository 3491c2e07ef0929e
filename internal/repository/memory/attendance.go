package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/attendance"
)

type attendanceRow = attendance.Attendance

type AttendanceRepository struct {
	store *Store
}

var _ attendance.AttendanceRepository = (*AttendanceRepository)(nil)

func NewAttendanceRepository(store *Store) *AttendanceRepository {
	return &AttendanceRepository{store: store}
}

func (r *AttendanceRepository) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if a.ClockOut == nil {
		for _, existing := range r.store.attendances {
			if existing.WorkerID == a.WorkerID && existing.IsOpen() {
				return attendance.Attendance{}, attendance.ErrDuplicateClockIn
			}
		}
	}

	now := r.store.now()
	a.ID = r.store.nextID("attendance")
	a.CreatedAt = now
	a.UpdatedAt = now
	a.IsVirtual = false
	a.WorkerName = nil
	r.store.attendances[a.ID] = a

	a.WorkerName = r.store.workerName(a.WorkerID)
	return a, nil
}

// Update only touches open records, mirroring the SQL guard.
func (r *AttendanceRepository) Update(_ context.Context, a attendance.Attendance) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.attendances[a.ID]
	if !ok || !existing.IsOpen() {
		return attendance.ErrAttendanceNotFound
	}

	existing.ClockOut = a.ClockOut
	existing.ClockOutLatitude = a.ClockOutLatitude
	existing.ClockOutLongitude = a.ClockOutLongitude
	existing.IsEarlyLeave = a.IsEarlyLeave
	existing.EarlyLeaveMinutes = a.EarlyLeaveMinutes
	existing.AutoClosed = a.AutoClosed
	existing.Notes = a.Notes
	existing.UpdatedAt = r.store.now()
	r.store.attendances[a.ID] = existing
	return nil
}

func (r *AttendanceRepository) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	a.WorkerName = r.store.workerName(a.WorkerID)
	return a, nil
}

func (r *AttendanceRepository) GetOpenByWorker(_ context.Context, workerID string) (attendance.Attendance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, a := range r.store.attendances {
		if a.WorkerID == workerID && a.IsOpen() {
			a.WorkerName = r.store.workerName(a.WorkerID)
			return a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (r *AttendanceRepository) ListByRange(_ context.Context, workerIDs []string, from, to time.Time) ([]attendance.Attendance, error) {
	if len(workerIDs) == 0 {
		return nil, nil
	}
	ids := make(map[string]bool, len(workerIDs))
	for _, id := range workerIDs {
		ids[id] = true
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []attendance.Attendance
	for _, a := range r.store.attendances {
		if !ids[a.WorkerID] || a.ClockIn.Before(from) || !a.ClockIn.Before(to) {
			continue
		}
		a.WorkerName = r.store.workerName(a.WorkerID)
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClockIn.After(out[j].ClockIn) })
	return out, nil
}

func (r *AttendanceRepository) ListStaleOpen(_ context.Context, before time.Time) ([]attendance.Attendance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []attendance.Attendance
	for _, a := range r.store.attendances {
		if a.IsOpen() && a.ClockIn.Before(before) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClockIn.Before(out[j].ClockIn) })
	return out, nil
}
