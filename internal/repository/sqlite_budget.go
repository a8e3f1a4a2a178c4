package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
)

// SQLiteBudgetRepo implements BudgetRepo using a SQLite database.
type SQLiteBudgetRepo struct {
	db db.DBTX
}

// NewSQLiteBudgetRepo creates a new SQLiteBudgetRepo.
func NewSQLiteBudgetRepo(conn db.DBTX) *SQLiteBudgetRepo {
	return &SQLiteBudgetRepo{db: conn}
}

func (r *SQLiteBudgetRepo) CreateEnvelope(ctx context.Context, e *domain.BudgetEnvelope) error {
	query := `INSERT INTO budget_envelopes (id, project_id, type_id, amount, funding_source_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.ProjectID,
		e.TypeID,
		e.Amount,
		e.FundingSourceID,
		e.CreatedAt.Format(time.RFC3339),
		e.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting budget envelope: %w", err)
	}
	return nil
}

func (r *SQLiteBudgetRepo) ListEnvelopes(ctx context.Context, projectID string) ([]*domain.BudgetEnvelope, error) {
	query := `SELECT id, project_id, type_id, amount, funding_source_id, created_at, updated_at
		FROM budget_envelopes WHERE project_id = ? ORDER BY type_id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing budget envelopes: %w", err)
	}
	defer rows.Close()

	var envelopes []*domain.BudgetEnvelope
	for rows.Next() {
		var e domain.BudgetEnvelope
		var createdStr, updatedStr string
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.TypeID, &e.Amount, &e.FundingSourceID, &createdStr, &updatedStr); err != nil {
			return nil, fmt.Errorf("scanning budget envelope: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
		envelopes = append(envelopes, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budget envelopes: %w", err)
	}
	return envelopes, nil
}

func (r *SQLiteBudgetRepo) UpdateEnvelope(ctx context.Context, e *domain.BudgetEnvelope) error {
	query := `UPDATE budget_envelopes SET type_id = ?, amount = ?, funding_source_id = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		e.TypeID, e.Amount, e.FundingSourceID, e.UpdatedAt.Format(time.RFC3339), e.ID)
	if err != nil {
		return fmt.Errorf("updating budget envelope: %w", err)
	}
	return nil
}

func (r *SQLiteBudgetRepo) DeleteEnvelope(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM budget_envelopes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting budget envelope: %w", err)
	}
	return nil
}

func (r *SQLiteBudgetRepo) UpsertMonthly(ctx context.Context, m *domain.MonthlyBudget) error {
	query := `INSERT INTO monthly_budgets (id, project_id, month, amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id, month) DO UPDATE SET
			amount = excluded.amount,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.ProjectID,
		m.Month,
		m.Amount,
		m.CreatedAt.Format(time.RFC3339),
		m.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting monthly budget: %w", err)
	}
	return nil
}

func (r *SQLiteBudgetRepo) ListMonthly(ctx context.Context, projectID string) ([]*domain.MonthlyBudget, error) {
	query := `SELECT id, project_id, month, amount, created_at, updated_at
		FROM monthly_budgets WHERE project_id = ? ORDER BY month`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing monthly budgets: %w", err)
	}
	defer rows.Close()

	var months []*domain.MonthlyBudget
	for rows.Next() {
		var m domain.MonthlyBudget
		var createdStr, updatedStr string
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Month, &m.Amount, &createdStr, &updatedStr); err != nil {
			return nil, fmt.Errorf("scanning monthly budget: %w", err)
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
		months = append(months, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating monthly budgets: %w", err)
	}
	return months, nil
}
