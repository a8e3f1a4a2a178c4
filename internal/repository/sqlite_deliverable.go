package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
)

// SQLiteDeliverableRepo implements DeliverableRepo using a SQLite database.
type SQLiteDeliverableRepo struct {
	db db.DBTX
}

// NewSQLiteDeliverableRepo creates a new SQLiteDeliverableRepo.
func NewSQLiteDeliverableRepo(conn db.DBTX) *SQLiteDeliverableRepo {
	return &SQLiteDeliverableRepo{db: conn}
}

const deliverableColumns = `id, project_id, phase_id, title, duration_days, delivery_date,
	coefficient, predecessor_id, relation_type, created_at, updated_at`

func (r *SQLiteDeliverableRepo) Create(ctx context.Context, d *domain.Deliverable) error {
	query := `INSERT INTO deliverables (` + deliverableColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ID,
		d.ProjectID,
		d.PhaseID,
		d.Title,
		d.DurationDays,
		d.DeliveryDate.Format(dateLayout),
		d.Coefficient,
		nullableString(d.PredecessorID),
		string(d.RelationType),
		d.CreatedAt.Format(time.RFC3339),
		d.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting deliverable: %w", err)
	}
	return nil
}

func (r *SQLiteDeliverableRepo) GetByID(ctx context.Context, id string) (*domain.Deliverable, error) {
	query := `SELECT ` + deliverableColumns + ` FROM deliverables WHERE id = ?`
	d, err := scanDeliverable(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("deliverable: %w", ErrNotFound)
	}
	return d, err
}

func (r *SQLiteDeliverableRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Deliverable, error) {
	query := `SELECT ` + deliverableColumns + ` FROM deliverables
		WHERE project_id = ? ORDER BY delivery_date, title`
	return r.listWhere(ctx, query, projectID)
}

func (r *SQLiteDeliverableRepo) ListByPhase(ctx context.Context, phaseID string) ([]*domain.Deliverable, error) {
	query := `SELECT ` + deliverableColumns + ` FROM deliverables
		WHERE phase_id = ? ORDER BY delivery_date, title`
	return r.listWhere(ctx, query, phaseID)
}

func (r *SQLiteDeliverableRepo) listWhere(ctx context.Context, query string, arg any) ([]*domain.Deliverable, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("listing deliverables: %w", err)
	}
	defer rows.Close()

	var deliverables []*domain.Deliverable
	for rows.Next() {
		d, err := scanDeliverable(rows)
		if err != nil {
			return nil, err
		}
		deliverables = append(deliverables, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deliverables: %w", err)
	}
	return deliverables, nil
}

func (r *SQLiteDeliverableRepo) Update(ctx context.Context, d *domain.Deliverable) error {
	query := `UPDATE deliverables SET phase_id = ?, title = ?, duration_days = ?, delivery_date = ?,
		coefficient = ?, predecessor_id = ?, relation_type = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		d.PhaseID,
		d.Title,
		d.DurationDays,
		d.DeliveryDate.Format(dateLayout),
		d.Coefficient,
		nullableString(d.PredecessorID),
		string(d.RelationType),
		d.UpdatedAt.Format(time.RFC3339),
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("updating deliverable: %w", err)
	}
	return nil
}

func (r *SQLiteDeliverableRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM deliverables WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting deliverable: %w", err)
	}
	return nil
}

// ClearPredecessorsOf detaches every deliverable whose predecessor is the
// given id. Used as the cascade when a deliverable is removed.
func (r *SQLiteDeliverableRepo) ClearPredecessorsOf(ctx context.Context, predecessorID string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE deliverables SET predecessor_id = NULL, relation_type = '' WHERE predecessor_id = ?`,
		predecessorID)
	if err != nil {
		return 0, fmt.Errorf("clearing predecessors: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func scanDeliverable(row rowScanner) (*domain.Deliverable, error) {
	var d domain.Deliverable
	var deliveryStr, relationStr, createdStr, updatedStr string
	var predecessor sql.NullString

	err := row.Scan(
		&d.ID, &d.ProjectID, &d.PhaseID, &d.Title, &d.DurationDays, &deliveryStr,
		&d.Coefficient, &predecessor, &relationStr, &createdStr, &updatedStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning deliverable: %w", err)
	}

	if predecessor.Valid {
		d.PredecessorID = predecessor.String
	}
	d.RelationType = domain.RelationType(relationStr)
	d.DeliveryDate, _ = time.Parse(dateLayout, deliveryStr)
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
	return &d, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
