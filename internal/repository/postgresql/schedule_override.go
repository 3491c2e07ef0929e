package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/schedule"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const overrideColumns = `id, worker_id, date, shift_code, note, created_by, created_at, updated_at`

type scheduleOverrideRepository struct {
	db *database.DB
}

func NewScheduleOverrideRepository(db *database.DB) schedule.OverrideRepository {
	return &scheduleOverrideRepository{db: db}
}

func scanOverride(row rowScanner) (schedule.Override, error) {
	var (
		o    schedule.Override
		date time.Time
		code string
	)
	if err := row.Scan(&o.ID, &o.WorkerID, &date, &code, &o.Note, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return schedule.Override{}, err
	}
	o.Date = calendar.DateOf(date)
	o.Code = schedule.Code(code)
	return o, nil
}

// Get implements schedule.OverrideRepository.
func (r *scheduleOverrideRepository) Get(ctx context.Context, workerID string, date calendar.Date) (schedule.Override, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + overrideColumns + ` FROM schedule_overrides WHERE worker_id = $1 AND date = $2`
	o, err := scanOverride(q.QueryRow(ctx, query, workerID, date.Time()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Override{}, schedule.ErrOverrideNotFound
		}
		return schedule.Override{}, fmt.Errorf("failed to get schedule override: %w", err)
	}
	return o, nil
}

// ListByRange implements schedule.OverrideRepository.
func (r *scheduleOverrideRepository) ListByRange(ctx context.Context, workerIDs []string, dateRange calendar.Range) ([]schedule.Override, error) {
	if len(workerIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + overrideColumns + `
		FROM schedule_overrides
		WHERE worker_id = ANY($1::uuid[]) AND date BETWEEN $2 AND $3
		ORDER BY date, worker_id`

	rows, err := q.Query(ctx, query, workerIDs, dateRange.From.Time(), dateRange.To.Time())
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule overrides: %w", err)
	}
	defer rows.Close()

	var out []schedule.Override
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule override: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Upsert implements schedule.OverrideRepository. A second override for the
// same worker-day replaces the first.
func (r *scheduleOverrideRepository) Upsert(ctx context.Context, o schedule.Override) (schedule.Override, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO schedule_overrides (worker_id, date, shift_code, note, created_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (worker_id, date) DO UPDATE SET
			shift_code = EXCLUDED.shift_code,
			note = EXCLUDED.note,
			created_by = EXCLUDED.created_by,
			updated_at = NOW()
		RETURNING ` + overrideColumns

	saved, err := scanOverride(q.QueryRow(ctx, query, o.WorkerID, o.Date.Time(), string(o.Code), o.Note, o.CreatedBy))
	if err != nil {
		return schedule.Override{}, fmt.Errorf("failed to upsert schedule override: %w", err)
	}
	return saved, nil
}

// Delete implements schedule.OverrideRepository.
func (r *scheduleOverrideRepository) Delete(ctx context.Context, workerID string, date calendar.Date) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM schedule_overrides WHERE worker_id = $1 AND date = $2`, workerID, date.Time())
	if err != nil {
		return fmt.Errorf("failed to delete schedule override: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrOverrideNotFound
	}
	return nil
}
