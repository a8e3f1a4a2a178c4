package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
)

// SQLiteVersionRepo implements VersionRepo using a SQLite database.
// Version records are immutable once written except for their status.
type SQLiteVersionRepo struct {
	db db.DBTX
}

// NewSQLiteVersionRepo creates a new SQLiteVersionRepo.
func NewSQLiteVersionRepo(conn db.DBTX) *SQLiteVersionRepo {
	return &SQLiteVersionRepo{db: conn}
}

func (r *SQLiteVersionRepo) Create(ctx context.Context, v *domain.BaselineVersion) error {
	query := `INSERT INTO baseline_versions
		(id, project_id, version_number, created_at, created_by, change_type, justification, status, business_impact)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		v.ID,
		v.ProjectID,
		int(v.VersionNumber),
		v.CreatedAt.Format(time.RFC3339),
		v.CreatedBy,
		string(v.ChangeType),
		v.Justification,
		string(v.Status),
		v.BusinessImpact,
	)
	if err != nil {
		return fmt.Errorf("inserting baseline version: %w", err)
	}

	for i, item := range v.ModifiedItems {
		query := `INSERT INTO version_items (version_id, position, element, old_value, new_value)
			VALUES (?, ?, ?, ?, ?)`
		if _, err := r.db.ExecContext(ctx, query, v.ID, i, item.Element, item.OldValue, item.NewValue); err != nil {
			return fmt.Errorf("inserting version item %d: %w", i, err)
		}
	}
	return nil
}

func (r *SQLiteVersionRepo) GetByID(ctx context.Context, id string) (*domain.BaselineVersion, error) {
	query := `SELECT id, project_id, version_number, created_at, created_by, change_type, justification, status, business_impact
		FROM baseline_versions WHERE id = ?`
	v, err := scanVersion(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *SQLiteVersionRepo) GetActive(ctx context.Context, projectID string) (*domain.BaselineVersion, error) {
	query := `SELECT id, project_id, version_number, created_at, created_by, change_type, justification, status, business_impact
		FROM baseline_versions WHERE project_id = ? AND status = 'active'`
	v, err := scanVersion(r.db.QueryRowContext(ctx, query, projectID))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *SQLiteVersionRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.BaselineVersion, error) {
	query := `SELECT id, project_id, version_number, created_at, created_by, change_type, justification, status, business_impact
		FROM baseline_versions WHERE project_id = ? ORDER BY version_number DESC`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing baseline versions: %w", err)
	}
	defer rows.Close()

	var versions []*domain.BaselineVersion
	for rows.Next() {
		v, err := scanVersionRow(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating baseline versions: %w", err)
	}
	for _, v := range versions {
		if err := r.loadItems(ctx, v); err != nil {
			return nil, err
		}
	}
	return versions, nil
}

func (r *SQLiteVersionRepo) SetStatus(ctx context.Context, id string, status domain.VersionStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE baseline_versions SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("updating version status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("baseline version: %w", ErrNotFound)
	}
	return nil
}

// SaveSnapshot persists the full protected-field snapshot taken when the
// version was minted. Restore reads it back to copy real values onto the
// project.
func (r *SQLiteVersionRepo) SaveSnapshot(ctx context.Context, versionID string, fields map[string]string) error {
	for field, value := range fields {
		query := `INSERT INTO version_snapshots (version_id, field, value) VALUES (?, ?, ?)
			ON CONFLICT (version_id, field) DO UPDATE SET value = excluded.value`
		if _, err := r.db.ExecContext(ctx, query, versionID, field, value); err != nil {
			return fmt.Errorf("saving version snapshot field %s: %w", field, err)
		}
	}
	return nil
}

// Snapshot returns the field snapshot stored with a version.
func (r *SQLiteVersionRepo) Snapshot(ctx context.Context, versionID string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT field, value FROM version_snapshots WHERE version_id = ?`, versionID)
	if err != nil {
		return nil, fmt.Errorf("loading version snapshot: %w", err)
	}
	defer rows.Close()

	fields := make(map[string]string)
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("scanning snapshot field: %w", err)
		}
		fields[field] = value
	}
	return fields, rows.Err()
}

func (r *SQLiteVersionRepo) loadItems(ctx context.Context, v *domain.BaselineVersion) error {
	query := `SELECT element, old_value, new_value FROM version_items
		WHERE version_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, v.ID)
	if err != nil {
		return fmt.Errorf("listing version items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.VersionItem
		if err := rows.Scan(&item.Element, &item.OldValue, &item.NewValue); err != nil {
			return fmt.Errorf("scanning version item: %w", err)
		}
		v.ModifiedItems = append(v.ModifiedItems, item)
	}
	return rows.Err()
}

func scanVersion(row *sql.Row) (*domain.BaselineVersion, error) {
	v, err := scanVersionRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("baseline version: %w", ErrNotFound)
	}
	return v, err
}

func scanVersionRow(row rowScanner) (*domain.BaselineVersion, error) {
	var v domain.BaselineVersion
	var versionInt int
	var createdStr, changeTypeStr, statusStr string

	err := row.Scan(
		&v.ID, &v.ProjectID, &versionInt, &createdStr, &v.CreatedBy,
		&changeTypeStr, &v.Justification, &statusStr, &v.BusinessImpact,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning baseline version: %w", err)
	}

	v.VersionNumber = domain.VersionNumber(versionInt)
	v.ChangeType = domain.VersionChangeType(changeTypeStr)
	v.Status = domain.VersionStatus(statusStr)
	v.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	return &v, nil
}
