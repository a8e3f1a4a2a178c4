package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
)

// SQLiteTeamRepo implements TeamRepo using a SQLite database.
type SQLiteTeamRepo struct {
	db db.DBTX
}

// NewSQLiteTeamRepo creates a new SQLiteTeamRepo.
func NewSQLiteTeamRepo(conn db.DBTX) *SQLiteTeamRepo {
	return &SQLiteTeamRepo{db: conn}
}

func (r *SQLiteTeamRepo) Add(ctx context.Context, m *domain.TeamMember) error {
	query := `INSERT INTO team_members (id, project_id, employee_id, role, added_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.ProjectID, m.EmployeeID, m.Role, m.AddedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting team member: %w", err)
	}
	return nil
}

func (r *SQLiteTeamRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.TeamMember, error) {
	query := `SELECT id, project_id, employee_id, role, added_at
		FROM team_members WHERE project_id = ? ORDER BY added_at, employee_id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing team members: %w", err)
	}
	defer rows.Close()

	var members []*domain.TeamMember
	for rows.Next() {
		var m domain.TeamMember
		var addedStr string
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.EmployeeID, &m.Role, &addedStr); err != nil {
			return nil, fmt.Errorf("scanning team member: %w", err)
		}
		m.AddedAt, _ = time.Parse(time.RFC3339, addedStr)
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team members: %w", err)
	}
	return members, nil
}

func (r *SQLiteTeamRepo) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM team_members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("removing team member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("team member: %w", ErrNotFound)
	}
	return nil
}

// SnapshotBaseline replaces the stored baseline team set, taken at
// validation time and used for composition-drift checks.
func (r *SQLiteTeamRepo) SnapshotBaseline(ctx context.Context, projectID string, employeeIDs []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM baseline_team WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("clearing baseline team: %w", err)
	}
	for _, id := range employeeIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO baseline_team (project_id, employee_id) VALUES (?, ?)`, projectID, id); err != nil {
			return fmt.Errorf("inserting baseline team member: %w", err)
		}
	}
	return nil
}

func (r *SQLiteTeamRepo) BaselineEmployees(ctx context.Context, projectID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT employee_id FROM baseline_team WHERE project_id = ? ORDER BY employee_id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing baseline team: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning baseline team member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
