package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
)

// SQLiteProtectionRepo implements ProtectionRepo using a SQLite database.
type SQLiteProtectionRepo struct {
	db db.DBTX
}

// NewSQLiteProtectionRepo creates a new SQLiteProtectionRepo.
func NewSQLiteProtectionRepo(conn db.DBTX) *SQLiteProtectionRepo {
	return &SQLiteProtectionRepo{db: conn}
}

func (r *SQLiteProtectionRepo) Upsert(ctx context.Context, s *domain.FieldProtectionState) error {
	query := `INSERT INTO field_protections (project_id, field_name, is_auto, is_baseline, is_pending, pending_value)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id, field_name) DO UPDATE SET
			is_auto = excluded.is_auto,
			is_baseline = excluded.is_baseline,
			is_pending = excluded.is_pending,
			pending_value = excluded.pending_value`
	_, err := r.db.ExecContext(ctx, query,
		s.ProjectID,
		s.FieldName,
		boolToInt(s.IsAuto),
		boolToInt(s.IsBaseline),
		boolToInt(s.IsPending),
		s.PendingValue,
	)
	if err != nil {
		return fmt.Errorf("upserting field protection: %w", err)
	}
	return nil
}

func (r *SQLiteProtectionRepo) Get(ctx context.Context, projectID, field string) (*domain.FieldProtectionState, error) {
	query := `SELECT project_id, field_name, is_auto, is_baseline, is_pending, pending_value
		FROM field_protections WHERE project_id = ? AND field_name = ?`
	row := r.db.QueryRowContext(ctx, query, projectID, field)

	s, err := scanProtection(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("field protection: %w", ErrNotFound)
	}
	return s, err
}

func (r *SQLiteProtectionRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.FieldProtectionState, error) {
	query := `SELECT project_id, field_name, is_auto, is_baseline, is_pending, pending_value
		FROM field_protections WHERE project_id = ? ORDER BY field_name`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing field protections: %w", err)
	}
	defer rows.Close()

	var states []*domain.FieldProtectionState
	for rows.Next() {
		s, err := scanProtection(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating field protections: %w", err)
	}
	return states, nil
}

func scanProtection(row rowScanner) (*domain.FieldProtectionState, error) {
	var s domain.FieldProtectionState
	var autoInt, baselineInt, pendingInt int

	err := row.Scan(&s.ProjectID, &s.FieldName, &autoInt, &baselineInt, &pendingInt, &s.PendingValue)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning field protection: %w", err)
	}

	s.IsAuto = intToBool(autoInt)
	s.IsBaseline = intToBool(baselineInt)
	s.IsPending = intToBool(pendingInt)
	return &s, nil
}
