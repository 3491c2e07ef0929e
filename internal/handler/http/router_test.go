package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/config"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/permit"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAttendanceService struct {
	attendance.AttendanceService
	clockInErr error
	lastReq    attendance.ClockInRequest
}

func (s *stubAttendanceService) ClockIn(_ context.Context, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	s.lastReq = req
	if s.clockInErr != nil {
		return attendance.AttendanceResponse{}, s.clockInErr
	}
	return attendance.AttendanceResponse{ID: "att-1", WorkerID: req.WorkerID, Status: attendance.StatusPresent}, nil
}

type stubDashboardService struct {
	dashboard.DashboardService
	refreshed bool
}

func (s *stubDashboardService) DutyBoard(context.Context) (*dashboard.DutyBoardResponse, error) {
	return &dashboard.DutyBoardResponse{TotalOnDuty: 4}, nil
}

func (s *stubDashboardService) RefreshDutyBoard(context.Context) (*dashboard.DutyBoardResponse, error) {
	s.refreshed = true
	return &dashboard.DutyBoardResponse{TotalOnDuty: 5}, nil
}

type stubReportService struct{ report.ReportService }
type stubScheduleService struct{ schedule.ScheduleService }
type stubPermitService struct{ permit.PermitService }
type stubNotificationService struct{ notification.Service }

type routerFixture struct {
	router     http.Handler
	jwt        jwt.Service
	attendance *stubAttendanceService
	dashboard  *stubDashboardService
}

func newRouterFixture(t *testing.T) routerFixture {
	t.Helper()
	jwtService, err := jwt.NewJWTService("handler-test-secret", "1h")
	require.NoError(t, err)

	f := routerFixture{
		jwt:        jwtService,
		attendance: &stubAttendanceService{},
		dashboard:  &stubDashboardService{},
	}
	hub := sse.NewHub()
	f.router = NewRouter(config.AppConfig{Env: "test"}, jwtService, Handlers{
		Attendance:   NewAttendanceHandler(f.attendance),
		Report:       NewReportHandler(&stubReportService{}),
		Dashboard:    NewDashboardHandler(f.dashboard),
		Schedule:     NewScheduleHandler(&stubScheduleService{}),
		Permit:       NewPermitHandler(&stubPermitService{}),
		Notification: NewNotificationHandler(&stubNotificationService{}, jwtService, hub),
	})
	return f
}

func (f routerFixture) token(t *testing.T, workerID string, role worker.Role) string {
	t.Helper()
	token, _, err := f.jwt.GenerateAccessToken(workerID, role)
	require.NoError(t, err)
	return token
}

func (f routerFixture) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var resp response.Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestRouter_RequiresToken(t *testing.T) {
	f := newRouterFixture(t)

	rec, resp := f.do(t, http.MethodPost, "/api/v1/attendance/clock-in", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, resp.Success)
}

func TestRouter_ClockIn(t *testing.T) {
	f := newRouterFixture(t)
	token := f.token(t, "worker-1", worker.RoleSecurity)

	rec, resp := f.do(t, http.MethodPost, "/api/v1/attendance/clock-in", token, `{"latitude": -6.2, "longitude": 106.8}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "worker-1", f.attendance.lastReq.WorkerID, "worker comes from the token, not the body")
	require.NotNil(t, f.attendance.lastReq.Latitude)
	assert.InDelta(t, -6.2, *f.attendance.lastReq.Latitude, 1e-9)
}

func TestRouter_ClockInWithoutBody(t *testing.T) {
	f := newRouterFixture(t)
	token := f.token(t, "worker-1", worker.RoleSecurity)

	rec, _ := f.do(t, http.MethodPost, "/api/v1/attendance/clock-in", token, "")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRouter_ClockInErrors(t *testing.T) {
	boundary := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name: "window closed",
			err: &attendance.WindowError{
				Err:      attendance.ErrWindowClosed,
				Boundary: boundary,
				OpensAt:  boundary.Add(-2 * time.Hour),
				ClosesAt: boundary.Add(2 * time.Hour),
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "WINDOW_CLOSED",
		},
		{
			name: "window expired",
			err: &attendance.WindowError{
				Err:      attendance.ErrWindowExpired,
				Boundary: boundary,
				OpensAt:  boundary.Add(-2 * time.Hour),
				ClosesAt: boundary.Add(2 * time.Hour),
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "WINDOW_EXPIRED",
		},
		{
			name:       "duplicate",
			err:        fmt.Errorf("clock in: %w", attendance.ErrDuplicateClockIn),
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
		},
		{
			name:       "not a field worker",
			err:        worker.ErrNotFieldWorker,
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
		},
		{
			name:       "outside radius",
			err:        attendance.ErrOutsideAllowedRadius,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "OUTSIDE_RADIUS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			f.attendance.clockInErr = tt.err
			token := f.token(t, "worker-1", worker.RoleSecurity)

			rec, resp := f.do(t, http.MethodPost, "/api/v1/attendance/clock-in", token, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestRouter_WindowErrorDetails(t *testing.T) {
	f := newRouterFixture(t)
	boundary := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)
	f.attendance.clockInErr = &attendance.WindowError{
		Err:      attendance.ErrWindowClosed,
		Boundary: boundary,
		OpensAt:  boundary.Add(-2 * time.Hour),
		ClosesAt: boundary.Add(2 * time.Hour),
	}

	_, resp := f.do(t, http.MethodPost, "/api/v1/attendance/clock-in", f.token(t, "worker-1", worker.RoleSecurity), "")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "2025-01-06T06:00:00Z", resp.Error.Details["opens_at"])
	assert.Equal(t, "2025-01-06T10:00:00Z", resp.Error.Details["closes_at"])
}

func TestRouter_DutyBoardRequiresSupervisor(t *testing.T) {
	f := newRouterFixture(t)

	rec, resp := f.do(t, http.MethodGet, "/api/v1/dashboard/duty", f.token(t, "guard", worker.RoleSecurity), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, resp.Success)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/dashboard/duty", f.token(t, "boss", worker.RoleSupervisor), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, f.dashboard.refreshed)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/dashboard/duty?refresh=true", f.token(t, "admin", worker.RoleAdmin), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.dashboard.refreshed)
}

func TestRouter_SSETokenNotAcceptedAsAccessToken(t *testing.T) {
	f := newRouterFixture(t)
	sseToken, _, err := f.jwt.GenerateSSEToken("worker-1")
	require.NoError(t, err)

	rec, _ := f.do(t, http.MethodGet, "/api/v1/attendance/status", sseToken, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_EventStreamRejectsAccessToken(t *testing.T) {
	f := newRouterFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/v1/events", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	access := f.token(t, "worker-1", worker.RoleSecurity)
	rec, _ = f.do(t, http.MethodGet, "/api/v1/events?token="+access, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_IssueSSEToken(t *testing.T) {
	f := newRouterFixture(t)

	rec, resp := f.do(t, http.MethodPost, "/api/v1/events/token", f.token(t, "worker-9", worker.RoleKebersihan), "")
	require.Equal(t, http.StatusOK, rec.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	workerID, err := f.jwt.ValidateSSEToken(data["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "worker-9", workerID)
}

func TestRouter_Healthz(t *testing.T) {
	f := newRouterFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
