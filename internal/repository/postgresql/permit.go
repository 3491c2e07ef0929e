package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/estate-attendance-go/internal/domain/permit"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const permitColumns = `
	p.id, p.worker_id, p.start_date, p.end_date, p.type, p.status, p.reason,
	p.reviewed_by, p.reviewed_at, p.rejection_reason, p.created_at, p.updated_at, w.full_name`

type permitRepository struct {
	db *database.DB
}

func NewPermitRepository(db *database.DB) permit.Repository {
	return &permitRepository{db: db}
}

func scanPermit(row rowScanner) (permit.Permit, error) {
	var (
		p            permit.Permit
		start, end   time.Time
		kind, status string
	)
	err := row.Scan(
		&p.ID, &p.WorkerID, &start, &end, &kind, &status, &p.Reason,
		&p.ReviewedBy, &p.ReviewedAt, &p.RejectionReason, &p.CreatedAt, &p.UpdatedAt, &p.WorkerName,
	)
	if err != nil {
		return permit.Permit{}, err
	}
	p.StartDate = calendar.DateOf(start)
	p.EndDate = calendar.DateOf(end)
	p.Type = permit.Type(kind)
	p.Status = permit.Status(status)
	return p, nil
}

func scanPermits(rows pgx.Rows) ([]permit.Permit, error) {
	defer rows.Close()

	var out []permit.Permit
	for rows.Next() {
		p, err := scanPermit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan permit: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create implements permit.Repository. The overlap check is repeated under a
// lock on the worker row so two concurrent submissions cannot both pass.
func (r *permitRepository) Create(ctx context.Context, p permit.Permit) (permit.Permit, error) {
	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		if _, err := q.Exec(ctx, `SELECT 1 FROM workers WHERE id = $1 FOR UPDATE`, p.WorkerID); err != nil {
			return fmt.Errorf("failed to lock worker: %w", err)
		}

		overlap, err := r.HasOverlap(ctx, p.WorkerID, calendar.Range{From: p.StartDate, To: p.EndDate})
		if err != nil {
			return err
		}
		if overlap {
			return permit.ErrOverlappingPermit
		}

		query := `
			INSERT INTO permits (worker_id, start_date, end_date, type, status, reason)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at
		`
		return q.QueryRow(ctx, query,
			p.WorkerID,
			p.StartDate.Time(),
			p.EndDate.Time(),
			string(p.Type),
			string(p.Status),
			p.Reason,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, permit.ErrOverlappingPermit) {
			return permit.Permit{}, err
		}
		return permit.Permit{}, fmt.Errorf("failed to create permit: %w", err)
	}
	return p, nil
}

// GetByID implements permit.Repository.
func (r *permitRepository) GetByID(ctx context.Context, id string) (permit.Permit, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + permitColumns + `
		FROM permits p
		JOIN workers w ON w.id = p.worker_id
		WHERE p.id = $1`

	p, err := scanPermit(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return permit.Permit{}, permit.ErrPermitNotFound
		}
		return permit.Permit{}, fmt.Errorf("failed to get permit: %w", err)
	}
	return p, nil
}

// UpdateStatus implements permit.Repository. Only pending permits change.
func (r *permitRepository) UpdateStatus(ctx context.Context, p permit.Permit) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE permits SET
			status = $2,
			reviewed_by = $3,
			reviewed_at = $4,
			rejection_reason = $5,
			updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'
	`
	tag, err := q.Exec(ctx, query, p.ID, string(p.Status), p.ReviewedBy, p.ReviewedAt, p.RejectionReason)
	if err != nil {
		return fmt.Errorf("failed to update permit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return permit.ErrPermitAlreadyProcessed
	}
	return nil
}

// List implements permit.Repository.
func (r *permitRepository) List(ctx context.Context, filter permit.Filter) ([]permit.Permit, error) {
	q := GetQuerier(ctx, r.db)

	var (
		conditions []string
		args       []interface{}
	)
	if filter.WorkerID != nil {
		args = append(args, *filter.WorkerID)
		conditions = append(conditions, fmt.Sprintf("p.worker_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if filter.Range != nil {
		args = append(args, filter.Range.From.Time(), filter.Range.To.Time())
		conditions = append(conditions, fmt.Sprintf("p.start_date <= $%d AND p.end_date >= $%d", len(args), len(args)-1))
	}

	query := `SELECT ` + permitColumns + `
		FROM permits p
		JOIN workers w ON w.id = p.worker_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.start_date DESC, p.created_at DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list permits: %w", err)
	}
	return scanPermits(rows)
}

// ListApproved implements permit.Repository.
func (r *permitRepository) ListApproved(ctx context.Context, workerIDs []string, dateRange calendar.Range) ([]permit.Permit, error) {
	if len(workerIDs) == 0 {
		return nil, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + permitColumns + `
		FROM permits p
		JOIN workers w ON w.id = p.worker_id
		WHERE p.worker_id = ANY($1::uuid[])
		  AND p.status = 'APPROVED'
		  AND p.start_date <= $3 AND p.end_date >= $2
		ORDER BY p.start_date`

	rows, err := q.Query(ctx, query, workerIDs, dateRange.From.Time(), dateRange.To.Time())
	if err != nil {
		return nil, fmt.Errorf("failed to list approved permits: %w", err)
	}
	return scanPermits(rows)
}

// HasOverlap implements permit.Repository.
func (r *permitRepository) HasOverlap(ctx context.Context, workerID string, dateRange calendar.Range) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM permits
			WHERE worker_id = $1
			  AND status IN ('PENDING', 'APPROVED')
			  AND start_date <= $3 AND end_date >= $2
		)
	`
	var exists bool
	if err := q.QueryRow(ctx, query, workerID, dateRange.From.Time(), dateRange.To.Time()).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check overlapping permits: %w", err)
	}
	return exists, nil
}
