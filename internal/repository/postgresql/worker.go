package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/worker"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const workerColumns = `id, full_name, phone_number, role, rotation_offset, is_active, created_at, updated_at`

type workerRepository struct {
	db *database.DB
}

func NewWorkerRepository(db *database.DB) worker.Repository {
	return &workerRepository{db: db}
}

func scanWorker(row rowScanner) (worker.Worker, error) {
	var (
		w    worker.Worker
		role string
	)
	err := row.Scan(&w.ID, &w.FullName, &w.PhoneNumber, &role, &w.RotationOffset, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return worker.Worker{}, err
	}
	w.Role = worker.Role(role)
	return w, nil
}

// GetByID implements worker.Repository.
func (r *workerRepository) GetByID(ctx context.Context, id string) (worker.Worker, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workerColumns + ` FROM workers WHERE id = $1`
	w, err := scanWorker(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worker.Worker{}, worker.ErrWorkerNotFound
		}
		return worker.Worker{}, fmt.Errorf("failed to get worker: %w", err)
	}
	return w, nil
}

// Save implements worker.Repository.
func (r *workerRepository) Save(ctx context.Context, w worker.Worker) (worker.Worker, error) {
	if err := w.Validate(); err != nil {
		return worker.Worker{}, err
	}
	q := GetQuerier(ctx, r.db)

	var row pgx.Row
	if w.ID == "" {
		query := `
			INSERT INTO workers (full_name, phone_number, role, rotation_offset, is_active)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING ` + workerColumns
		row = q.QueryRow(ctx, query, w.FullName, w.PhoneNumber, string(w.Role), w.RotationOffset, w.IsActive)
	} else {
		query := `
			INSERT INTO workers (id, full_name, phone_number, role, rotation_offset, is_active)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				full_name = EXCLUDED.full_name,
				phone_number = EXCLUDED.phone_number,
				role = EXCLUDED.role,
				rotation_offset = EXCLUDED.rotation_offset,
				is_active = EXCLUDED.is_active,
				updated_at = NOW()
			RETURNING ` + workerColumns
		row = q.QueryRow(ctx, query, w.ID, w.FullName, w.PhoneNumber, string(w.Role), w.RotationOffset, w.IsActive)
	}

	saved, err := scanWorker(row)
	if err != nil {
		return worker.Worker{}, fmt.Errorf("failed to save worker: %w", err)
	}
	return saved, nil
}

// ListFieldWorkers implements worker.Repository.
func (r *workerRepository) ListFieldWorkers(ctx context.Context) ([]worker.Worker, error) {
	return r.List(ctx, worker.Filter{FieldOnly: true, ActiveOnly: true})
}

// List implements worker.Repository.
func (r *workerRepository) List(ctx context.Context, filter worker.Filter) ([]worker.Worker, error) {
	q := GetQuerier(ctx, r.db)

	var (
		conditions []string
		args       []interface{}
	)
	if len(filter.IDs) > 0 {
		args = append(args, filter.IDs)
		conditions = append(conditions, fmt.Sprintf("id = ANY($%d::uuid[])", len(args)))
	}
	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.FieldOnly {
		args = append(args, []string{string(worker.RoleSecurity), string(worker.RoleLingkungan), string(worker.RoleKebersihan)})
		conditions = append(conditions, fmt.Sprintf("role = ANY($%d)", len(args)))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}

	query := `SELECT ` + workerColumns + ` FROM workers`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY full_name, id"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	defer rows.Close()

	var workers []worker.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan worker: %w", err)
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}
