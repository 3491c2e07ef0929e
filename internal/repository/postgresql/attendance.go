package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	openAttendanceIndex = "uq_attendances_open_per_worker"
)

const attendanceColumns = `
	a.id, a.worker_id, a.clock_in, a.clock_out,
	a.scheduled_clock_in, a.scheduled_clock_out, a.shift_type,
	a.is_late, a.late_minutes, a.is_early_leave, a.early_leave_minutes, a.status,
	a.clock_in_latitude, a.clock_in_longitude, a.clock_out_latitude, a.clock_out_longitude,
	a.notes, a.auto_closed, a.created_at, a.updated_at, w.full_name`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row rowScanner) (attendance.Attendance, error) {
	var (
		att    attendance.Attendance
		shift  *string
		status string
	)
	err := row.Scan(
		&att.ID, &att.WorkerID, &att.ClockIn, &att.ClockOut,
		&att.ScheduledClockIn, &att.ScheduledClockOut, &shift,
		&att.IsLate, &att.LateMinutes, &att.IsEarlyLeave, &att.EarlyLeaveMinutes, &status,
		&att.ClockInLatitude, &att.ClockInLongitude, &att.ClockOutLatitude, &att.ClockOutLongitude,
		&att.Notes, &att.AutoClosed, &att.CreatedAt, &att.UpdatedAt, &att.WorkerName,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if shift != nil {
		code := schedule.Code(*shift)
		att.ShiftType = &code
	}
	att.Status = attendance.Status(status)
	return att, nil
}

func scanAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	var out []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		out = append(out, att)
	}
	return out, rows.Err()
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	var shift *string
	if att.ShiftType != nil {
		s := string(*att.ShiftType)
		shift = &s
	}

	query := `
		INSERT INTO attendances (
			worker_id, clock_in, scheduled_clock_in, scheduled_clock_out, shift_type,
			is_late, late_minutes, status, clock_in_latitude, clock_in_longitude, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		att.WorkerID,
		att.ClockIn,
		att.ScheduledClockIn,
		att.ScheduledClockOut,
		shift,
		att.IsLate,
		att.LateMinutes,
		string(att.Status),
		att.ClockInLatitude,
		att.ClockInLongitude,
		att.Notes,
	).Scan(&att.ID, &att.CreatedAt, &att.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == openAttendanceIndex {
			return attendance.Attendance{}, attendance.ErrDuplicateClockIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return att, nil
}

// Update implements attendance.AttendanceRepository. Only open records are
// written, so a concurrent clock-out loses with ErrAttendanceNotFound.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			clock_out = $2,
			clock_out_latitude = $3,
			clock_out_longitude = $4,
			is_early_leave = $5,
			early_leave_minutes = $6,
			notes = $7,
			auto_closed = $8,
			updated_at = NOW()
		WHERE id = $1 AND clock_out IS NULL
	`

	tag, err := q.Exec(ctx, query,
		att.ID,
		att.ClockOut,
		att.ClockOutLatitude,
		att.ClockOutLongitude,
		att.IsEarlyLeave,
		att.EarlyLeaveMinutes,
		att.Notes,
		att.AutoClosed,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN workers w ON w.id = a.worker_id
		WHERE a.id = $1`

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return att, nil
}

// GetOpenByWorker implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetOpenByWorker(ctx context.Context, workerID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN workers w ON w.id = a.worker_id
		WHERE a.worker_id = $1 AND a.clock_out IS NULL
		ORDER BY a.clock_in DESC
		LIMIT 1`

	att, err := scanAttendance(q.QueryRow(ctx, query, workerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get open attendance: %w", err)
	}
	return att, nil
}

// ListByRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByRange(ctx context.Context, workerIDs []string, from, to time.Time) ([]attendance.Attendance, error) {
	if len(workerIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN workers w ON w.id = a.worker_id
		WHERE a.worker_id = ANY($1::uuid[])
		  AND a.clock_in >= $2 AND a.clock_in < $3
		ORDER BY a.clock_in DESC, a.worker_id`

	rows, err := q.Query(ctx, query, workerIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return scanAttendances(rows)
}

// ListStaleOpen implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListStaleOpen(ctx context.Context, before time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN workers w ON w.id = a.worker_id
		WHERE a.clock_out IS NULL AND a.clock_in < $1
		ORDER BY a.clock_in`

	rows, err := q.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale attendance: %w", err)
	}
	return scanAttendances(rows)
}
