package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/estate-attendance-go/internal/config"
	"github.com/cmlabs-hris/estate-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	Attendance   AttendanceHandler
	Report       ReportHandler
	Dashboard    DashboardHandler
	Schedule     ScheduleHandler
	Permit       PermitHandler
	Notification NotificationHandler
	// Archive serves stored report exports; nil when archiving is off.
	Archive http.Handler
}

func NewRouter(app config.AppConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(app.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "estate-attendance"),
		slog.String("env", app.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
		// SSE streams stay open for minutes; log them on connect only.
		Skip: func(req *http.Request, respStatus int) bool {
			return req.URL.Path == "/api/v1/events"
		},
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot send headers; the stream authenticates with a
		// short-lived query token instead.
		r.Get("/events", h.Notification.Stream)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Post("/events/token", h.Notification.GetSSEToken)

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/clock-in", h.Attendance.ClockIn)
				r.Post("/clock-out", h.Attendance.ClockOut)
				r.Get("/status", h.Attendance.Status)
				r.Get("/my", h.Attendance.GetMyAttendance)
			})

			r.Route("/schedule", func(r chi.Router) {
				r.Get("/roster", h.Schedule.Roster)
				r.Get("/roster.ics", h.Schedule.RosterCalendar)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireSupervisor)
					r.Put("/overrides", h.Schedule.SetOverride)
					r.Delete("/overrides", h.Schedule.DeleteOverride)
				})
			})

			r.Route("/permits", func(r chi.Router) {
				r.Post("/", h.Permit.Submit)
				r.Get("/my", h.Permit.ListMine)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireSupervisor)
					r.Get("/", h.Permit.List)
					r.Post("/{id}/approve", h.Permit.Approve)
					r.Post("/{id}/reject", h.Permit.Reject)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Post("/read-all", h.Notification.MarkAllAsRead)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSupervisor)
				r.Get("/reports/timeline", h.Report.Timeline)
				r.Get("/reports/timeline/export", h.Report.ExportTimeline)
				r.Get("/dashboard/duty", h.Dashboard.DutyBoard)
				if h.Archive != nil {
					r.Handle("/archive/*", http.StripPrefix("/api/v1/archive", h.Archive))
				}
			})
		})
	})
	return r
}
