package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/baseline/internal/db"
	"github.com/alexanderramin/baseline/internal/domain"
)

// SQLiteMasterDataRepo implements MasterDataRepo over seeded reference
// tables. Lookups are read-only; rows are loaded by migration or external
// tooling.
type SQLiteMasterDataRepo struct {
	db db.DBTX
}

// NewSQLiteMasterDataRepo creates a new SQLiteMasterDataRepo.
func NewSQLiteMasterDataRepo(conn db.DBTX) *SQLiteMasterDataRepo {
	return &SQLiteMasterDataRepo{db: conn}
}

func (r *SQLiteMasterDataRepo) Lookup(ctx context.Context, kind, id string) (*domain.MasterDataRef, error) {
	query := `SELECT id, code, label FROM master_data WHERE kind = ? AND id = ?`
	var ref domain.MasterDataRef
	err := r.db.QueryRowContext(ctx, query, kind, id).Scan(&ref.ID, &ref.Code, &ref.Label)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
		}
		return nil, fmt.Errorf("looking up %s: %w", kind, err)
	}
	return &ref, nil
}

func (r *SQLiteMasterDataRepo) ListKind(ctx context.Context, kind string) ([]*domain.MasterDataRef, error) {
	query := `SELECT id, code, label FROM master_data WHERE kind = ? ORDER BY code`
	rows, err := r.db.QueryContext(ctx, query, kind)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", kind, err)
	}
	defer rows.Close()

	var refs []*domain.MasterDataRef
	for rows.Next() {
		var ref domain.MasterDataRef
		if err := rows.Scan(&ref.ID, &ref.Code, &ref.Label); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", kind, err)
		}
		refs = append(refs, &ref)
	}
	return refs, rows.Err()
}

// Seed inserts reference rows, ignoring ids already present.
func (r *SQLiteMasterDataRepo) Seed(ctx context.Context, kind string, refs []domain.MasterDataRef) error {
	for _, ref := range refs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO master_data (kind, id, code, label) VALUES (?, ?, ?, ?)`,
			kind, ref.ID, ref.Code, ref.Label); err != nil {
			return fmt.Errorf("seeding %s: %w", kind, err)
		}
	}
	return nil
}
