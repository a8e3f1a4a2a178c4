package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent so the full
// list re-runs safely on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" from ALTER TABLE since the
			// migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id                 TEXT PRIMARY KEY,
		code               TEXT NOT NULL DEFAULT '',
		title              TEXT NOT NULL DEFAULT '',
		short_title        TEXT NOT NULL DEFAULT '',
		start_date         TEXT,
		end_date           TEXT,
		total_budget       INTEGER NOT NULL DEFAULT 0,
		initial_budget     INTEGER NOT NULL DEFAULT 0,
		project_manager_id TEXT NOT NULL DEFAULT '',
		sponsor_id         TEXT NOT NULL DEFAULT '',
		baseline_status    TEXT NOT NULL DEFAULT 'draft'
		                   CHECK(baseline_status IN ('draft','modified','validated')),
		current_version    INTEGER NOT NULL DEFAULT 0,
		has_modifications  INTEGER NOT NULL DEFAULT 0,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS baseline_versions (
		id              TEXT PRIMARY KEY,
		project_id      TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		version_number  INTEGER NOT NULL,
		created_at      TEXT NOT NULL,
		created_by      TEXT NOT NULL,
		change_type     TEXT NOT NULL
		                CHECK(change_type IN ('structural','budgetary','planning','governance','mixed')),
		justification   TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL DEFAULT 'active'
		                CHECK(status IN ('active','archived','suspended','rejected')),
		business_impact INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_versions_project ON baseline_versions(project_id)`,

	`CREATE TABLE IF NOT EXISTS version_items (
		version_id TEXT NOT NULL REFERENCES baseline_versions(id) ON DELETE CASCADE,
		position   INTEGER NOT NULL,
		element    TEXT NOT NULL,
		old_value  TEXT NOT NULL DEFAULT '',
		new_value  TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (version_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS version_snapshots (
		version_id TEXT NOT NULL REFERENCES baseline_versions(id) ON DELETE CASCADE,
		field      TEXT NOT NULL,
		value      TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (version_id, field)
	)`,

	`CREATE TABLE IF NOT EXISTS change_requests (
		id              TEXT PRIMARY KEY,
		project_id      TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		request_number  INTEGER NOT NULL,
		request_date    TEXT NOT NULL,
		requestor       TEXT NOT NULL,
		change_type     TEXT NOT NULL CHECK(change_type IN ('minor','major','critical')),
		description     TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL DEFAULT 'pending'
		                CHECK(status IN ('pending','approved','rejected')),
		approver        TEXT NOT NULL DEFAULT '',
		resolution      TEXT NOT NULL DEFAULT '',
		resolved_at     TEXT,
		budget_impact   INTEGER,
		timeline_impact TEXT NOT NULL DEFAULT '',
		risk_level      INTEGER NOT NULL DEFAULT 0,
		UNIQUE (project_id, request_number)
	)`,

	`CREATE TABLE IF NOT EXISTS request_fields (
		request_id TEXT NOT NULL REFERENCES change_requests(id) ON DELETE CASCADE,
		position   INTEGER NOT NULL,
		field      TEXT NOT NULL,
		old_value  TEXT NOT NULL DEFAULT '',
		new_value  TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (request_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS request_sequences (
		project_id  TEXT PRIMARY KEY REFERENCES projects(id) ON DELETE CASCADE,
		next_number INTEGER NOT NULL DEFAULT 1
	)`,

	`CREATE TABLE IF NOT EXISTS modification_log (
		id                  TEXT PRIMARY KEY,
		project_id          TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		timestamp           TEXT NOT NULL,
		changed_by          TEXT NOT NULL,
		changed_by_role     TEXT NOT NULL DEFAULT '',
		action_type         TEXT NOT NULL
		                    CHECK(action_type IN ('created','modified','deleted','validated','rejected')),
		modified_element    TEXT NOT NULL,
		old_value           TEXT NOT NULL DEFAULT '',
		new_value           TEXT NOT NULL DEFAULT '',
		has_baseline_impact INTEGER NOT NULL DEFAULT 0,
		justification       TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_modlog_project_ts ON modification_log(project_id, timestamp)`,

	`CREATE TABLE IF NOT EXISTS field_protections (
		project_id    TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		field_name    TEXT NOT NULL,
		is_auto       INTEGER NOT NULL DEFAULT 0,
		is_baseline   INTEGER NOT NULL DEFAULT 0,
		is_pending    INTEGER NOT NULL DEFAULT 0,
		pending_value TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (project_id, field_name)
	)`,

	`CREATE TABLE IF NOT EXISTS phases (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		start_date  TEXT NOT NULL,
		end_date    TEXT NOT NULL,
		coefficient INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS deliverables (
		id             TEXT PRIMARY KEY,
		project_id     TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		phase_id       TEXT NOT NULL REFERENCES phases(id) ON DELETE CASCADE,
		title          TEXT NOT NULL,
		duration_days  INTEGER NOT NULL DEFAULT 1,
		delivery_date  TEXT NOT NULL,
		coefficient    INTEGER NOT NULL DEFAULT 1,
		predecessor_id TEXT,
		relation_type  TEXT NOT NULL DEFAULT '',
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_deliverables_project ON deliverables(project_id)`,

	`CREATE TABLE IF NOT EXISTS budget_envelopes (
		id                TEXT PRIMARY KEY,
		project_id        TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		type_id           TEXT NOT NULL,
		amount            INTEGER NOT NULL,
		funding_source_id TEXT NOT NULL DEFAULT '',
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL,
		UNIQUE (project_id, type_id)
	)`,

	`CREATE TABLE IF NOT EXISTS monthly_budgets (
		id         TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		month      TEXT NOT NULL,
		amount     INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (project_id, month)
	)`,

	`CREATE TABLE IF NOT EXISTS team_members (
		id          TEXT PRIMARY KEY,
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		employee_id TEXT NOT NULL,
		role        TEXT NOT NULL DEFAULT '',
		added_at    TEXT NOT NULL,
		UNIQUE (project_id, employee_id)
	)`,

	`CREATE TABLE IF NOT EXISTS baseline_team (
		project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		employee_id TEXT NOT NULL,
		PRIMARY KEY (project_id, employee_id)
	)`,

	`CREATE TABLE IF NOT EXISTS master_data (
		kind  TEXT NOT NULL,
		id    TEXT NOT NULL,
		code  TEXT NOT NULL DEFAULT '',
		label TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (kind, id)
	)`,

	// Reference data the engine consults by id. Employees are added through
	// the refdata command; the type kinds ship with a usable default set.
	`INSERT OR IGNORE INTO master_data (kind, id, code, label) VALUES
		('envelope_type',  'internal',    'INT', 'Internal'),
		('envelope_type',  'external',    'EXT', 'External'),
		('envelope_type',  'contingency', 'CTG', 'Contingency'),
		('budget_type',    'capex',       'CPX', 'Capital expenditure'),
		('budget_type',    'opex',        'OPX', 'Operating expenditure'),
		('funding_source', 'internal',    'INT', 'Internal funding'),
		('funding_source', 'client',      'CLI', 'Client funded'),
		('funding_source', 'grant',       'GRT', 'Grant funded')`,
}
