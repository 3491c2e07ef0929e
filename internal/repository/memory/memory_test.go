package memory

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/permit"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkerRepository(NewStore())

	_, err := repo.Save(ctx, worker.Worker{FullName: "Bad", Role: worker.RoleSecurity, RotationOffset: 5})
	assert.ErrorIs(t, err, worker.ErrInvalidRotationOffset)

	guard, err := repo.Save(ctx, worker.Worker{FullName: "Budi", Role: worker.RoleSecurity, IsActive: true})
	require.NoError(t, err)
	assert.NotEmpty(t, guard.ID)

	_, err = repo.Save(ctx, worker.Worker{FullName: "Ani", Role: worker.RoleKebersihan, IsActive: false})
	require.NoError(t, err)
	_, err = repo.Save(ctx, worker.Worker{FullName: "Sri", Role: worker.RoleSupervisor, IsActive: true})
	require.NoError(t, err)

	field, err := repo.ListFieldWorkers(ctx)
	require.NoError(t, err)
	require.Len(t, field, 1)
	assert.Equal(t, "Budi", field[0].FullName)

	all, err := repo.List(ctx, worker.Filter{})
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, w := range all {
		names[i] = w.FullName
	}
	assert.Equal(t, []string{"Ani", "Budi", "Sri"}, names)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, worker.ErrWorkerNotFound)
}

func TestAttendanceRepository_OpenRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	workers := NewWorkerRepository(store)
	repo := NewAttendanceRepository(store)

	w, err := workers.Save(ctx, worker.Worker{FullName: "Budi", Role: worker.RoleSecurity, IsActive: true})
	require.NoError(t, err)

	clockIn := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	created, err := repo.Create(ctx, attendance.Attendance{WorkerID: w.ID, ClockIn: clockIn, Status: attendance.StatusPresent})
	require.NoError(t, err)
	require.NotNil(t, created.WorkerName)
	assert.Equal(t, "Budi", *created.WorkerName)

	_, err = repo.Create(ctx, attendance.Attendance{WorkerID: w.ID, ClockIn: clockIn.Add(time.Minute)})
	assert.ErrorIs(t, err, attendance.ErrDuplicateClockIn)

	open, err := repo.GetOpenByWorker(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, open.ID)

	stale, err := repo.ListStaleOpen(ctx, clockIn.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	out := clockIn.Add(8 * time.Hour)
	open.ClockOut = &out
	require.NoError(t, repo.Update(ctx, open))
	assert.ErrorIs(t, repo.Update(ctx, open), attendance.ErrAttendanceNotFound, "closed records are immutable")

	_, err = repo.GetOpenByWorker(ctx, w.ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAttendanceRepository_ListByRange(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(NewStore())
	base := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		out := base.AddDate(0, 0, i).Add(16 * time.Hour)
		_, err := repo.Create(ctx, attendance.Attendance{
			WorkerID: "w1",
			ClockIn:  base.AddDate(0, 0, i).Add(8 * time.Hour),
			ClockOut: &out,
		})
		require.NoError(t, err)
	}

	got, err := repo.ListByRange(ctx, []string{"w1"}, base, base.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].ClockIn.After(got[1].ClockIn))

	none, err := repo.ListByRange(ctx, nil, base, base.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPermitRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPermitRepository(NewStore())
	jan := func(d int) calendar.Date { return calendar.NewDate(2025, time.January, d) }

	first, err := repo.Create(ctx, permit.Permit{WorkerID: "w1", StartDate: jan(6), EndDate: jan(8), Type: permit.TypeSakit, Status: permit.StatusPending})
	require.NoError(t, err)

	_, err = repo.Create(ctx, permit.Permit{WorkerID: "w1", StartDate: jan(8), EndDate: jan(9), Type: permit.TypeIzin, Status: permit.StatusPending})
	assert.ErrorIs(t, err, permit.ErrOverlappingPermit)

	_, err = repo.Create(ctx, permit.Permit{WorkerID: "w2", StartDate: jan(8), EndDate: jan(9), Type: permit.TypeIzin, Status: permit.StatusPending})
	require.NoError(t, err)

	first.Status = permit.StatusRejected
	require.NoError(t, repo.UpdateStatus(ctx, first))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, first), permit.ErrPermitAlreadyProcessed)

	overlap, err := repo.HasOverlap(ctx, "w1", calendar.Range{From: jan(7), To: jan(7)})
	require.NoError(t, err)
	assert.False(t, overlap, "rejected permits free their days")

	second, err := repo.Create(ctx, permit.Permit{WorkerID: "w1", StartDate: jan(7), EndDate: jan(7), Type: permit.TypeCuti, Status: permit.StatusPending})
	require.NoError(t, err)
	second.Status = permit.StatusApproved
	require.NoError(t, repo.UpdateStatus(ctx, second))

	approved, err := repo.ListApproved(ctx, []string{"w1", "w2"}, calendar.Range{From: jan(1), To: jan(31)})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, second.ID, approved[0].ID)

	all, err := repo.List(ctx, permit.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.False(t, all[0].StartDate.Before(all[1].StartDate))
}
