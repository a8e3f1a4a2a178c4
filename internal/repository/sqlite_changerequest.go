package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
)

// SQLiteChangeRequestRepo implements ChangeRequestRepo using a SQLite
// database.
type SQLiteChangeRequestRepo struct {
	db db.DBTX
}

// NewSQLiteChangeRequestRepo creates a new SQLiteChangeRequestRepo.
func NewSQLiteChangeRequestRepo(conn db.DBTX) *SQLiteChangeRequestRepo {
	return &SQLiteChangeRequestRepo{db: conn}
}

const requestColumns = `id, project_id, request_number, request_date, requestor, change_type,
	description, status, approver, resolution, resolved_at, budget_impact, timeline_impact, risk_level`

func (r *SQLiteChangeRequestRepo) Create(ctx context.Context, cr *domain.ChangeRequest) error {
	query := `INSERT INTO change_requests (` + requestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		cr.ID,
		cr.ProjectID,
		cr.RequestNumber,
		cr.RequestDate.Format(time.RFC3339),
		cr.Requestor,
		string(cr.ChangeType),
		cr.Description,
		string(cr.Status),
		cr.Approver,
		cr.Resolution,
		nullableTimeToString(cr.ResolvedAt, time.RFC3339),
		nullableInt64ToValue(cr.BudgetImpact),
		cr.TimelineImpact,
		cr.RiskLevel,
	)
	if err != nil {
		return fmt.Errorf("inserting change request: %w", err)
	}

	for i, f := range cr.AffectedFields {
		query := `INSERT INTO request_fields (request_id, position, field, old_value, new_value)
			VALUES (?, ?, ?, ?, ?)`
		if _, err := r.db.ExecContext(ctx, query, cr.ID, i, f.Field, f.OldValue, f.NewValue); err != nil {
			return fmt.Errorf("inserting request field %d: %w", i, err)
		}
	}
	return nil
}

func (r *SQLiteChangeRequestRepo) GetByID(ctx context.Context, id string) (*domain.ChangeRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM change_requests WHERE id = ?`
	cr, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadFields(ctx, cr); err != nil {
		return nil, err
	}
	return cr, nil
}

func (r *SQLiteChangeRequestRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.ChangeRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM change_requests
		WHERE project_id = ? ORDER BY request_number DESC`
	return r.list(ctx, query, projectID)
}

func (r *SQLiteChangeRequestRepo) ListPending(ctx context.Context, projectID string) ([]*domain.ChangeRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM change_requests
		WHERE project_id = ? AND status = 'pending' ORDER BY request_number`
	return r.list(ctx, query, projectID)
}

func (r *SQLiteChangeRequestRepo) list(ctx context.Context, query string, args ...any) ([]*domain.ChangeRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing change requests: %w", err)
	}
	defer rows.Close()

	var requests []*domain.ChangeRequest
	for rows.Next() {
		cr, err := scanRequestRow(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating change requests: %w", err)
	}
	for _, cr := range requests {
		if err := r.loadFields(ctx, cr); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

func (r *SQLiteChangeRequestRepo) Update(ctx context.Context, cr *domain.ChangeRequest) error {
	query := `UPDATE change_requests SET status = ?, approver = ?, resolution = ?, resolved_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(cr.Status),
		cr.Approver,
		cr.Resolution,
		nullableTimeToString(cr.ResolvedAt, time.RFC3339),
		cr.ID,
	)
	if err != nil {
		return fmt.Errorf("updating change request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("change request: %w", ErrNotFound)
	}
	return nil
}

func (r *SQLiteChangeRequestRepo) loadFields(ctx context.Context, cr *domain.ChangeRequest) error {
	query := `SELECT field, old_value, new_value FROM request_fields
		WHERE request_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, cr.ID)
	if err != nil {
		return fmt.Errorf("listing request fields: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f domain.AffectedField
		if err := rows.Scan(&f.Field, &f.OldValue, &f.NewValue); err != nil {
			return fmt.Errorf("scanning request field: %w", err)
		}
		cr.AffectedFields = append(cr.AffectedFields, f)
	}
	return rows.Err()
}

func scanRequest(row *sql.Row) (*domain.ChangeRequest, error) {
	cr, err := scanRequestRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("change request: %w", ErrNotFound)
	}
	return cr, err
}

func scanRequestRow(row rowScanner) (*domain.ChangeRequest, error) {
	var cr domain.ChangeRequest
	var dateStr, changeTypeStr, statusStr string
	var resolvedStr sql.NullString
	var budgetImpact sql.NullInt64

	err := row.Scan(
		&cr.ID, &cr.ProjectID, &cr.RequestNumber, &dateStr, &cr.Requestor,
		&changeTypeStr, &cr.Description, &statusStr, &cr.Approver,
		&cr.Resolution, &resolvedStr, &budgetImpact, &cr.TimelineImpact, &cr.RiskLevel,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning change request: %w", err)
	}

	cr.RequestDate, _ = time.Parse(time.RFC3339, dateStr)
	cr.ChangeType = domain.RequestChangeType(changeTypeStr)
	cr.Status = domain.RequestStatus(statusStr)
	cr.ResolvedAt = parseNullableTime(resolvedStr, time.RFC3339)
	if budgetImpact.Valid {
		v := budgetImpact.Int64
		cr.BudgetImpact = &v
	}
	return &cr, nil
}
