package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/config"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/estate-attendance-go/internal/repository/memory"
	scheduleService "github.com/cmlabs-hris/estate-attendance-go/internal/service/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*60*60)

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

type countingDutyBoard struct {
	invalidations int
}

func (c *countingDutyBoard) InvalidateDutyBoard(context.Context) { c.invalidations++ }

type attendanceFixture struct {
	svc       *AttendanceServiceImpl
	store     *memory.Store
	workers   *memory.WorkerRepository
	records   *memory.AttendanceRepository
	overrides *memory.ScheduleOverrideRepository
	notifier  *recordingNotifier
	dutyBoard *countingDutyBoard
	clock     time.Time
}

func newAttendanceFixture(t *testing.T, tweak func(*config.Settings)) *attendanceFixture {
	t.Helper()
	settings := config.DefaultSettings(wib)
	if tweak != nil {
		tweak(&settings)
	}

	store := memory.NewStore()
	f := &attendanceFixture{
		store:     store,
		workers:   memory.NewWorkerRepository(store),
		records:   memory.NewAttendanceRepository(store),
		overrides: memory.NewScheduleOverrideRepository(store),
		notifier:  &recordingNotifier{},
		dutyBoard: &countingDutyBoard{},
	}
	svc := NewAttendanceService(scheduleService.NewEngine(settings), f.records, f.workers, f.overrides, f.notifier, f.dutyBoard)
	f.svc = svc.(*AttendanceServiceImpl)
	f.svc.now = func() time.Time { return f.clock }
	store.SetClock(func() time.Time { return f.clock })
	return f
}

func (f *attendanceFixture) at(year int, month time.Month, day, hour, minute int) {
	f.clock = time.Date(year, month, day, hour, minute, 0, 0, wib)
}

func (f *attendanceFixture) addWorker(t *testing.T, w worker.Worker) worker.Worker {
	t.Helper()
	saved, err := f.workers.Save(context.Background(), w)
	require.NoError(t, err)
	return saved
}

// guard0 works P on 2025-01-01, then PM, M, OFF, OFF.
func (f *attendanceFixture) guard0(t *testing.T) worker.Worker {
	return f.addWorker(t, worker.Worker{FullName: "Guard Zero", Role: worker.RoleSecurity, RotationOffset: 0, IsActive: true})
}

func TestClockIn_DayShiftScenario(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t, nil)
	w := f.guard0(t)

	f.at(2025, 1, 1, 5, 59)
	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	assert.ErrorIs(t, err, attendance.ErrWindowClosed)

	f.at(2025, 1, 1, 8, 5)
	resp, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, resp.Status)
	assert.True(t, resp.IsLate)
	assert.Equal(t, 5, resp.LateMinutes)
	require.NotNil(t, resp.ShiftType)
	assert.Equal(t, schedule.CodeP, *resp.ShiftType)
	assert.Equal(t, "2025-01-01T08:00:00+07:00", *resp.ScheduledClockIn)
	assert.Equal(t, "2025-01-01T16:00:00+07:00", *resp.ScheduledClockOut)
	assert.Equal(t, "2025-01-01", resp.Date)
	require.NotNil(t, resp.WorkerName)
	assert.Equal(t, "Guard Zero", *resp.WorkerName)

	f.at(2025, 1, 1, 8, 6)
	_, err = f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	assert.ErrorIs(t, err, attendance.ErrDuplicateClockIn)

	f.at(2025, 1, 1, 16, 10)
	out, err := f.svc.ClockOut(ctx, attendance.ClockOutRequest{WorkerID: w.ID})
	require.NoError(t, err)
	assert.False(t, out.IsEarlyLeave)
	assert.Equal(t, 0, out.EarlyLeaveMinutes)
	require.NotNil(t, out.ClockOut)
	assert.Equal(t, "2025-01-01T16:10:00+07:00", *out.ClockOut)

	_, err = f.svc.ClockOut(ctx, attendance.ClockOutRequest{WorkerID: w.ID})
	assert.ErrorIs(t, err, attendance.ErrNotClockedIn)
}

func TestClockIn_OnTimeInsideWindow(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t, nil)
	w := f.guard0(t)

	f.at(2025, 1, 1, 7, 59)
	resp, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, resp.Status)
	assert.False(t, resp.IsLate)
}

func TestClockIn_AfterWindowExpired(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t, nil)
	w := f.guard0(t)

	f.at(2025, 1, 1, 10, 1)
	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	assert.ErrorIs(t, err, attendance.ErrWindowExpired)
}

func TestClockOut_EarlyLeave(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t, nil)
	w := f.guard0(t)

	f.at(2025, 1, 1, 8, 0)
	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	require.NoError(t, err)

	f.at(2025, 1, 1, 15, 54)
	out, err := f.svc.ClockOut(ctx, attendance.ClockOutRequest{WorkerID: w.ID})
	require.NoError(t, err)
	assert.True(t, out.IsEarlyLeave)
	assert.Equal(t, 6, out.EarlyLeaveMinutes)
}

func TestClockOut_OutsideWindow(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t, nil)
	w := f.guard0(t)

	f.at(2025, 1, 1, 8, 0)
	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	require.NoError(t, err)

	f.at(2025, 1, 1, 13, 59)
	_, err = f.svc.ClockOut(ctx, attendance.ClockOutRequest{WorkerID: w.ID})
	assert.ErrorIs(t, err, attendance.ErrWindowClosed)

	f.at(2025, 1, 1, 18, 1)
	_, err = f.svc.ClockOut(ctx, attendance.ClockOutRequest{WorkerID: w.ID})
	assert.ErrorIs(t, err, attendance.ErrWindowExpired)

	// the record stays open after rejected attempts
	_, err = f.records.GetOpenByWorker(ctx, w.ID)
	assert.NoError(t, err)
}

func TestClockInOut_NightShiftCrossesMidnight(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t, nil)
	w := f.guard0(t) // M on 2025-01-03, 22:00 to 06:00

	f.at(2025, 1, 3, 21, 50)
	in, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	require.NoError(t, err)
	assert.Equal(t, schedule.CodeM, *in.ShiftType)
	assert.Equal(t, "2025-01-04T06:00:00+07:00", *in.ScheduledClockOut)

	f.at(2025, 1, 4, 6, 2)
	out, err := f.svc.ClockOut(ctx, attendance.ClockOutRequest{WorkerID: w.ID})
	require.NoError(t, err)
	assert.False(t, out.IsEarlyLeave)
	assert.Equal(t, "2025-01-03", out.Date)
}

func TestClockIn_UnscheduledDayAwaitsPermit(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t, nil)
	w := f.guard0(t)

	f.at(2025, 1, 4, 10, 0)
	resp, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPermitPending, resp.Status)
	assert.Nil(t, resp.ShiftType)
	assert.Nil(t, resp.ScheduledClockIn)

	// no scheduled end means no window on the way out
	f.at(2025, 1, 4, 11, 0)
	out, err := f.svc.ClockOut(ctx, attendance.ClockOutRequest{WorkerID: w.ID})
	require.NoError(t, err)
	assert.False(t, out.IsEarlyLeave)
}

func TestClockIn_OverrideReplacesRotation(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t, nil)
	w := f.guard0(t)

	_, err := f.overrides.Upsert(ctx, schedule.Override{WorkerID: w.ID, Date: calendar.NewDate(2025, 1, 4), Code: schedule.CodeP})
	require.NoError(t, err)

	f.at(2025, 1, 4, 8, 0)
	resp, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, resp.Status)
	assert.Equal(t, schedule.CodeP, *resp.ShiftType)
}

func TestClockIn_RejectsIneligibleWorkers(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t, nil)
	sup := f.addWorker(t, worker.Worker{FullName: "Boss", Role: worker.RoleSupervisor, IsActive: true})
	gone := f.addWorker(t, worker.Worker{FullName: "Former", Role: worker.RoleSecurity, IsActive: false})
	f.at(2025, 1, 1, 8, 0)

	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: sup.ID})
	assert.ErrorIs(t, err, worker.ErrNotFieldWorker)

	_, err = f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: gone.ID})
	assert.ErrorIs(t, err, worker.ErrWorkerInactive)

	_, err = f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: "nobody"})
	assert.ErrorIs(t, err, worker.ErrWorkerNotFound)
}

func TestClockIn_Geofence(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t, func(s *config.Settings) {
		s.EnforceGeofence = true
		s.SiteLatitude = -6.2
		s.SiteLongitude = 106.8
		s.SiteRadiusMeters = 100
	})
	w := f.guard0(t)
	f.at(2025, 1, 1, 8, 0)

	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	assert.ErrorIs(t, err, attendance.ErrLocationRequired)

	farLat, farLng := -6.21, 106.8
	_, err = f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID, Latitude: &farLat, Longitude: &farLng})
	assert.ErrorIs(t, err, attendance.ErrOutsideAllowedRadius)

	nearLat, nearLng := -6.2004, 106.8
	_, err = f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID, Latitude: &nearLat, Longitude: &nearLng})
	assert.NoError(t, err)
}

func TestClockIn_NotifiesSupervisors(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t, func(s *config.Settings) { s.NotifyClockEvents = true })
	sup := f.addWorker(t, worker.Worker{FullName: "Boss", Role: worker.RoleSupervisor, IsActive: true})
	w := f.guard0(t)

	f.at(2025, 1, 1, 8, 5)
	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	require.NoError(t, err)

	require.Len(t, f.notifier.sent, 1)
	sent := f.notifier.sent[0]
	assert.Equal(t, sup.ID, sent.RecipientID)
	assert.Equal(t, notification.TypeAttendanceClockIn, sent.Type)
	assert.Contains(t, sent.Message, "late 5 min")
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t, nil)
	w := f.guard0(t)

	f.at(2025, 1, 1, 5, 0)
	st, err := f.svc.Status(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, schedule.CodeP, st.ShiftCode)
	assert.False(t, st.CanClockIn)
	assert.Equal(t, "2025-01-01T06:00:00+07:00", *st.WindowOpensAt)

	f.at(2025, 1, 1, 7, 0)
	st, err = f.svc.Status(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, st.CanClockIn)
	assert.False(t, st.CanClockOut)

	_, err = f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	require.NoError(t, err)

	st, err = f.svc.Status(ctx, w.ID)
	require.NoError(t, err)
	require.NotNil(t, st.OpenRecord)
	assert.False(t, st.CanClockIn)
	assert.False(t, st.CanClockOut, "clock-out window opens at 14:00")
	assert.Equal(t, "2025-01-01T14:00:00+07:00", *st.WindowOpensAt)
}

func TestStatus_NightShiftAfterMidnight(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t, nil)
	w := f.guard0(t)

	f.at(2025, 1, 4, 3, 0)
	st, err := f.svc.Status(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, schedule.CodeOff, st.ShiftCode)
	assert.Equal(t, schedule.CodeM, st.EffectiveShift)
}

func TestMyAttendance(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t, nil)
	w := f.guard0(t)

	f.at(2025, 1, 1, 8, 0)
	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	require.NoError(t, err)
	f.at(2025, 1, 1, 16, 0)
	_, err = f.svc.ClockOut(ctx, attendance.ClockOutRequest{WorkerID: w.ID})
	require.NoError(t, err)

	list, err := f.svc.MyAttendance(ctx, attendance.MyAttendanceFilter{WorkerID: w.ID, From: "2025-01-01", To: "2025-01-01"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, attendance.StatusPresent, list[0].Status)

	list, err = f.svc.MyAttendance(ctx, attendance.MyAttendanceFilter{WorkerID: w.ID, From: "2025-01-02", To: "2025-01-03"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAutoCloseStale(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t, nil)
	w := f.guard0(t)
	other := f.addWorker(t, worker.Worker{FullName: "Guard Three", Role: worker.RoleSecurity, RotationOffset: 3, IsActive: true})

	f.at(2025, 1, 1, 8, 5)
	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	require.NoError(t, err)

	// offset 3 is OFF on 2025-01-01, so this record has no scheduled end
	f.at(2025, 1, 1, 10, 0)
	_, err = f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: other.ID})
	require.NoError(t, err)

	// shift end 16:00 + window 2h + grace 1h
	f.at(2025, 1, 1, 18, 59)
	closed, err := f.svc.AutoCloseStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)

	f.at(2025, 1, 1, 19, 0)
	closed, err = f.svc.AutoCloseStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	_, err = f.records.GetOpenByWorker(ctx, w.ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	list, err := f.records.ListByRange(ctx, []string{w.ID}, time.Date(2025, 1, 1, 0, 0, 0, 0, wib), time.Date(2025, 1, 2, 0, 0, 0, 0, wib))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].AutoClosed)
	assert.True(t, list[0].ClockOut.Equal(time.Date(2025, 1, 1, 16, 0, 0, 0, wib)))

	// the unscheduled record closes 16h after clock-in: 02:00, swept from 05:00
	f.at(2025, 1, 2, 5, 0)
	closed, err = f.svc.AutoCloseStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	_, err = f.records.GetOpenByWorker(ctx, other.ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestClockEvents_InvalidateDutyBoard(t *testing.T) {
	ctx := context.Background()
	f := newAttendanceFixture(t, nil)
	w := f.guard0(t)

	f.at(2025, 1, 1, 8, 0)
	_, err := f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, f.dutyBoard.invalidations)

	_, err = f.svc.ClockIn(ctx, attendance.ClockInRequest{WorkerID: w.ID})
	assert.ErrorIs(t, err, attendance.ErrDuplicateClockIn)
	assert.Equal(t, 1, f.dutyBoard.invalidations, "rejected clock-in leaves the board alone")

	f.at(2025, 1, 1, 16, 0)
	_, err = f.svc.ClockOut(ctx, attendance.ClockOutRequest{WorkerID: w.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, f.dutyBoard.invalidations)

	closed, err := f.svc.AutoCloseStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)
	assert.Equal(t, 2, f.dutyBoard.invalidations)
}
