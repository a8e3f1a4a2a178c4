package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
)

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

const projectColumns = `id, code, title, short_title, start_date, end_date, total_budget,
	initial_budget, project_manager_id, sponsor_id, baseline_status, current_version,
	has_modifications, created_at, updated_at`

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Code,
		p.Title,
		p.ShortTitle,
		nullableDate(p.StartDate),
		nullableDate(p.EndDate),
		p.TotalBudget,
		p.InitialBudget,
		p.ProjectManagerID,
		p.SponsorID,
		string(p.BaselineStatus),
		int(p.CurrentVersion),
		boolToInt(p.HasModifications),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	return r.scanProject(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteProjectRepo) GetByCode(ctx context.Context, code string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE UPPER(code) = UPPER(?)`
	return r.scanProject(r.db.QueryRowContext(ctx, query, code))
}

func (r *SQLiteProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProjectRow(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	query := `UPDATE projects SET code = ?, title = ?, short_title = ?, start_date = ?,
		end_date = ?, total_budget = ?, initial_budget = ?, project_manager_id = ?,
		sponsor_id = ?, baseline_status = ?, current_version = ?, has_modifications = ?,
		updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		p.Code,
		p.Title,
		p.ShortTitle,
		nullableDate(p.StartDate),
		nullableDate(p.EndDate),
		p.TotalBudget,
		p.InitialBudget,
		p.ProjectManagerID,
		p.SponsorID,
		string(p.BaselineStatus),
		int(p.CurrentVersion),
		boolToInt(p.HasModifications),
		p.UpdatedAt.Format(time.RFC3339),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteProjectRepo) scanProject(row *sql.Row) (*domain.Project, error) {
	p, err := scanProjectRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project: %w", ErrNotFound)
	}
	return p, err
}

func scanProjectRow(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var startStr, endStr sql.NullString
	var statusStr, createdStr, updatedStr string
	var versionInt, hasModsInt int

	err := row.Scan(
		&p.ID, &p.Code, &p.Title, &p.ShortTitle, &startStr, &endStr,
		&p.TotalBudget, &p.InitialBudget, &p.ProjectManagerID, &p.SponsorID,
		&statusStr, &versionInt, &hasModsInt, &createdStr, &updatedStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	if t := parseNullableTime(startStr, dateLayout); t != nil {
		p.StartDate = *t
	}
	if t := parseNullableTime(endStr, dateLayout); t != nil {
		p.EndDate = *t
	}
	p.BaselineStatus = domain.BaselineStatus(statusStr)
	p.CurrentVersion = domain.VersionNumber(versionInt)
	p.HasModifications = intToBool(hasModsInt)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
	return &p, nil
}

func nullableDate(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}
