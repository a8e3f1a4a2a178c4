package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/baseline/internal/db"
)

// SQLiteRequestSequenceRepo allocates project-scoped change request numbers
// atomically using the request_sequences table.
type SQLiteRequestSequenceRepo struct {
	db db.DBTX
}

// NewSQLiteRequestSequenceRepo creates a new SQLiteRequestSequenceRepo.
func NewSQLiteRequestSequenceRepo(conn db.DBTX) *SQLiteRequestSequenceRepo {
	return &SQLiteRequestSequenceRepo{db: conn}
}

// NextRequestNumber returns the next request number for a project.
// Allocation is atomic and safe under concurrent writes.
func (r *SQLiteRequestSequenceRepo) NextRequestNumber(ctx context.Context, projectID string) (int, error) {
	seedQuery := `INSERT OR IGNORE INTO request_sequences (project_id, next_number)
		SELECT ?, COALESCE(MAX(request_number), 0) + 1
		FROM change_requests WHERE project_id = ?`
	if _, err := r.db.ExecContext(ctx, seedQuery, projectID, projectID); err != nil {
		return 0, fmt.Errorf("seeding request sequence for %s: %w", projectID, err)
	}

	var next int
	allocQuery := `UPDATE request_sequences
		SET next_number = next_number + 1
		WHERE project_id = ?
		RETURNING next_number - 1`
	if err := r.db.QueryRowContext(ctx, allocQuery, projectID).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocating request number for project %s: %w", projectID, err)
	}

	return next, nil
}
