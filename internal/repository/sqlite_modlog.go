package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
)

// SQLiteModificationLogRepo implements ModificationLogRepo. The log is
// append-only; there is no update or delete path.
type SQLiteModificationLogRepo struct {
	db db.DBTX
}

// NewSQLiteModificationLogRepo creates a new SQLiteModificationLogRepo.
func NewSQLiteModificationLogRepo(conn db.DBTX) *SQLiteModificationLogRepo {
	return &SQLiteModificationLogRepo{db: conn}
}

func (r *SQLiteModificationLogRepo) Append(ctx context.Context, e *domain.ModificationLogEntry) error {
	if err := e.ValidateEntry(); err != nil {
		return err
	}
	query := `INSERT INTO modification_log
		(id, project_id, timestamp, changed_by, changed_by_role, action_type,
		 modified_element, old_value, new_value, has_baseline_impact, justification)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.ProjectID,
		e.Timestamp.Format(time.RFC3339Nano),
		e.ChangedBy,
		e.ChangedByRole,
		string(e.ActionType),
		e.ModifiedElement,
		e.OldValue,
		e.NewValue,
		boolToInt(e.HasBaselineImpact),
		e.Justification,
	)
	if err != nil {
		return fmt.Errorf("appending log entry: %w", err)
	}
	return nil
}

// Query returns entries matching the filter, stable-sorted by timestamp
// descending (rowid breaks ties in insertion order).
func (r *SQLiteModificationLogRepo) Query(ctx context.Context, projectID string, f domain.LogFilter) ([]*domain.ModificationLogEntry, error) {
	var conds []string
	var args []any

	conds = append(conds, "project_id = ?")
	args = append(args, projectID)

	if f.Actor != "" {
		conds = append(conds, "changed_by = ?")
		args = append(args, f.Actor)
	}
	if f.ActionType != "" {
		conds = append(conds, "action_type = ?")
		args = append(args, string(f.ActionType))
	}
	if f.ElementPrefix != "" {
		conds = append(conds, "modified_element LIKE ?")
		args = append(args, f.ElementPrefix+"%")
	}
	if f.From != nil {
		conds = append(conds, "timestamp >= ?")
		args = append(args, f.From.Format(time.RFC3339Nano))
	}
	if f.To != nil {
		conds = append(conds, "timestamp <= ?")
		args = append(args, f.To.Format(time.RFC3339Nano))
	}

	query := `SELECT id, project_id, timestamp, changed_by, changed_by_role, action_type,
		modified_element, old_value, new_value, has_baseline_impact, justification
		FROM modification_log
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY timestamp DESC, rowid DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying modification log: %w", err)
	}
	defer rows.Close()

	var entries []*domain.ModificationLogEntry
	for rows.Next() {
		var e domain.ModificationLogEntry
		var tsStr, actionStr string
		var impactInt int
		if err := rows.Scan(
			&e.ID, &e.ProjectID, &tsStr, &e.ChangedBy, &e.ChangedByRole, &actionStr,
			&e.ModifiedElement, &e.OldValue, &e.NewValue, &impactInt, &e.Justification,
		); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, tsStr)
		e.ActionType = domain.ActionType(actionStr)
		e.HasBaselineImpact = intToBool(impactInt)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating log entries: %w", err)
	}
	return entries, nil
}
