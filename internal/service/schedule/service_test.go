package schedule

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/estate-attendance-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
}

func (r *recordingNotifier) QueueNotification(_ context.Context, req notification.CreateNotificationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, req)
	return nil
}

func (r *recordingNotifier) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, req := range reqs {
		_ = r.QueueNotification(ctx, req)
	}
	return nil
}

func (r *recordingNotifier) GetNotifications(context.Context, string, int, int, bool) (*notification.NotificationListResponse, error) {
	return &notification.NotificationListResponse{}, nil
}

func (r *recordingNotifier) MarkAllAsRead(context.Context, string) error { return nil }

func (r *recordingNotifier) Stop() {}

type scheduleFixture struct {
	svc       schedule.ScheduleService
	workers   *memory.WorkerRepository
	overrides *memory.ScheduleOverrideRepository
	notifier  *recordingNotifier
}

func newScheduleFixture(t *testing.T) scheduleFixture {
	t.Helper()
	store := memory.NewStore()
	f := scheduleFixture{
		workers:   memory.NewWorkerRepository(store),
		overrides: memory.NewScheduleOverrideRepository(store),
		notifier:  &recordingNotifier{},
	}
	f.svc = NewScheduleService(testEngine(), f.workers, f.overrides, f.notifier)
	return f
}

func (f scheduleFixture) addWorker(t *testing.T, w worker.Worker) worker.Worker {
	t.Helper()
	saved, err := f.workers.Save(context.Background(), w)
	require.NoError(t, err)
	return saved
}

func TestScheduleService_Roster(t *testing.T) {
	ctx := context.Background()
	f := newScheduleFixture(t)
	w := f.addWorker(t, worker.Worker{FullName: "Guard Two", Role: worker.RoleSecurity, RotationOffset: 2, IsActive: true})

	resp, err := f.svc.Roster(ctx, schedule.RosterFilter{WorkerID: w.ID, From: "2025-01-01", To: "2025-01-05"})
	require.NoError(t, err)

	require.Len(t, resp.Days, 5)
	assert.Equal(t, "Guard Two", resp.WorkerName)
	// offset 2 starts the cycle at M
	assert.Equal(t, schedule.CodeM, resp.Days[0].ShiftCode)
	assert.True(t, resp.Days[0].IsOvernight)
	require.NotNil(t, resp.Days[0].ScheduledStart)
	assert.Equal(t, "2025-01-01T22:00:00+07:00", *resp.Days[0].ScheduledStart)
	assert.Equal(t, "2025-01-02T06:00:00+07:00", *resp.Days[0].ScheduledEnd)

	assert.Equal(t, schedule.CodeOff, resp.Days[1].ShiftCode)
	assert.Nil(t, resp.Days[1].ScheduledStart)
	assert.Equal(t, "Off", resp.Days[1].Label)
}

func TestScheduleService_Roster_Validation(t *testing.T) {
	ctx := context.Background()
	f := newScheduleFixture(t)

	_, err := f.svc.Roster(ctx, schedule.RosterFilter{WorkerID: "w", From: "2025-02-01", To: "2025-01-01"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = f.svc.Roster(ctx, schedule.RosterFilter{WorkerID: "w", From: "2025-01-01", To: "2025-12-31"})
	assert.ErrorAs(t, err, &verrs)

	_, err = f.svc.Roster(ctx, schedule.RosterFilter{WorkerID: "missing", From: "2025-01-01", To: "2025-01-02"})
	assert.ErrorIs(t, err, worker.ErrWorkerNotFound)
}

func TestScheduleService_SetOverride(t *testing.T) {
	ctx := context.Background()
	f := newScheduleFixture(t)
	w := f.addWorker(t, worker.Worker{FullName: "Ground", Role: worker.RoleLingkungan, IsActive: true})
	supervisor := "supervisor-1"

	saved, err := f.svc.SetOverride(ctx, schedule.SetOverrideRequest{
		WorkerID:  w.ID,
		Date:      "2025-01-05",
		ShiftCode: " m ",
		CreatedBy: &supervisor,
	})
	require.NoError(t, err)
	assert.Equal(t, schedule.CodeM, saved.ShiftCode)
	assert.Equal(t, "2025-01-05", saved.Date)

	resp, err := f.svc.Roster(ctx, schedule.RosterFilter{WorkerID: w.ID, From: "2025-01-05", To: "2025-01-05"})
	require.NoError(t, err)
	require.Len(t, resp.Days, 1)
	assert.Equal(t, schedule.CodeM, resp.Days[0].ShiftCode)
	assert.True(t, resp.Days[0].IsOverride)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, w.ID, f.notifier.sent[0].RecipientID)
	assert.Equal(t, notification.TypeScheduleOverride, f.notifier.sent[0].Type)

	// a second write replaces the first
	again, err := f.svc.SetOverride(ctx, schedule.SetOverrideRequest{WorkerID: w.ID, Date: "2025-01-05", ShiftCode: "OFF"})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)
	assert.Equal(t, schedule.CodeOff, again.ShiftCode)
}

func TestScheduleService_SetOverride_Rejects(t *testing.T) {
	ctx := context.Background()
	f := newScheduleFixture(t)
	sup := f.addWorker(t, worker.Worker{FullName: "Boss", Role: worker.RoleSupervisor, IsActive: true})
	w := f.addWorker(t, worker.Worker{FullName: "Guard", Role: worker.RoleSecurity, IsActive: true})

	_, err := f.svc.SetOverride(ctx, schedule.SetOverrideRequest{WorkerID: sup.ID, Date: "2025-01-05", ShiftCode: "P"})
	assert.ErrorIs(t, err, worker.ErrNotFieldWorker)

	_, err = f.svc.SetOverride(ctx, schedule.SetOverrideRequest{WorkerID: w.ID, Date: "2025-01-05", ShiftCode: "NIGHT"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = f.svc.SetOverride(ctx, schedule.SetOverrideRequest{WorkerID: w.ID, Date: "05/01/2025", ShiftCode: "P"})
	assert.ErrorAs(t, err, &verrs)
}

func TestScheduleService_DeleteOverride(t *testing.T) {
	ctx := context.Background()
	f := newScheduleFixture(t)
	w := f.addWorker(t, worker.Worker{FullName: "Guard", Role: worker.RoleSecurity, IsActive: true})

	_, err := f.svc.SetOverride(ctx, schedule.SetOverrideRequest{WorkerID: w.ID, Date: "2025-01-01", ShiftCode: "OFF"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteOverride(ctx, schedule.DeleteOverrideRequest{WorkerID: w.ID, Date: "2025-01-01"}))

	_, err = f.overrides.Get(ctx, w.ID, calendar.NewDate(2025, time.January, 1))
	assert.ErrorIs(t, err, schedule.ErrOverrideNotFound)

	err = f.svc.DeleteOverride(ctx, schedule.DeleteOverrideRequest{WorkerID: w.ID, Date: "2025-01-01"})
	assert.ErrorIs(t, err, schedule.ErrOverrideNotFound)
}

func TestScheduleService_RosterCalendar(t *testing.T) {
	ctx := context.Background()
	f := newScheduleFixture(t)
	w := f.addWorker(t, worker.Worker{FullName: "Cleaner", Role: worker.RoleKebersihan, IsActive: true})

	// 2025-01-06 (Mon) to 2025-01-12 (Sun): six P shifts
	out, err := f.svc.RosterCalendar(ctx, schedule.RosterFilter{WorkerID: w.ID, From: "2025-01-06", To: "2025-01-12"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "Roster Cleaner")
	assert.Equal(t, 6, strings.Count(string(out), "BEGIN:VEVENT"))
}
