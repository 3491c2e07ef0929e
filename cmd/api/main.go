package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/config"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/dashboard"
	appHTTP "github.com/cmlabs-hris/estate-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/cache"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/storage"
	"github.com/cmlabs-hris/estate-attendance-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/estate-attendance-go/internal/service/attendance"
	dashboardService "github.com/cmlabs-hris/estate-attendance-go/internal/service/dashboard"
	notificationService "github.com/cmlabs-hris/estate-attendance-go/internal/service/notification"
	permitService "github.com/cmlabs-hris/estate-attendance-go/internal/service/permit"
	reportService "github.com/cmlabs-hris/estate-attendance-go/internal/service/report"
	scheduleService "github.com/cmlabs-hris/estate-attendance-go/internal/service/schedule"
)

type dutyCache interface {
	dashboard.Cache
	Close() error
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	var duty dutyCache
	if redisClient, err := cache.NewClient(cfg.Redis); err != nil {
		slog.Warn("redis unavailable, using in-process duty board cache", "addr", cfg.Redis.Addr, "error", err)
		duty = cache.NewMemory()
	} else {
		duty = redisClient
	}
	defer duty.Close()

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return err
	}
	hub := sse.NewHub()

	workerRepo := postgresql.NewWorkerRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	overrideRepo := postgresql.NewScheduleOverrideRepository(db)
	permitRepo := postgresql.NewPermitRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	engine := scheduleService.NewEngine(cfg.Attendance)

	var (
		archive        storage.FileStorage
		archiveHandler http.Handler
	)
	if cfg.Archive.Dir != "" {
		local, err := storage.NewLocalStorage(cfg.Archive.Dir, cfg.Archive.BaseURL)
		if err != nil {
			return err
		}
		archive = local
		archiveHandler = http.FileServer(http.Dir(cfg.Archive.Dir))
		slog.Info("report archive enabled", "dir", cfg.Archive.Dir)
	}

	notificationSvc := notificationService.NewNotificationService(notificationRepo, hub, cfg.Notification)
	defer notificationSvc.Stop()

	scheduleSvc := scheduleService.NewScheduleService(engine, workerRepo, overrideRepo, notificationSvc)
	reportSvc := reportService.NewReportService(engine, workerRepo, attendanceRepo, overrideRepo, permitRepo, archive)
	dashboardSvc := dashboardService.NewDashboardService(engine, workerRepo, attendanceRepo, overrideRepo, duty, hub, cfg.Redis.DutyTTL)
	attendanceSvc := attendanceService.NewAttendanceService(engine, attendanceRepo, workerRepo, overrideRepo, notificationSvc, dashboardSvc)
	permitSvc := permitService.NewPermitService(permitRepo, workerRepo, notificationSvc, engine.Location())

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc, dashboardSvc).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(cfg.App, JWTService, appHTTP.Handlers{
		Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
		Report:       appHTTP.NewReportHandler(reportSvc),
		Dashboard:    appHTTP.NewDashboardHandler(dashboardSvc),
		Schedule:     appHTTP.NewScheduleHandler(scheduleSvc),
		Permit:       appHTTP.NewPermitHandler(permitSvc),
		Notification: appHTTP.NewNotificationHandler(notificationSvc, JWTService, hub),
		Archive:      archiveHandler,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "timezone", cfg.App.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
