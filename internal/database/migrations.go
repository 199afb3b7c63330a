package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS cases (
    case_id TEXT PRIMARY KEY,
    slug TEXT UNIQUE,
    category TEXT,
    title TEXT,
    h1 TEXT,
    target_user TEXT,
    pain_summary TEXT,
    intro_copy TEXT,
    keywords TEXT,
    faq1_q TEXT,
    faq1_a TEXT,
    faq2_q TEXT,
    faq2_a TEXT,
    faq3_q TEXT,
    faq3_a TEXT,
    status TEXT DEFAULT 'todo',
    batch_date TEXT,
    user_intent TEXT,
    relationship TEXT,
    legal_strategy TEXT,
    amount_band TEXT,
    structure_type TEXT,
    created_at TEXT DEFAULT (datetime('now')),
    updated_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_cases_status ON cases(status);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
