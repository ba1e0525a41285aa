package store

import (
	"database/sql"
	"golang.org/x/xerrors"
)

/*
Migrate creates the models schema if it does not exist
*/
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS models (
			name        TEXT PRIMARY KEY,
			solver      TEXT NOT NULL,
			dim         INTEGER NOT NULL,
			classes     TEXT NOT NULL,
			meta        TEXT NOT NULL DEFAULT '{}',
			artifact    BLOB NOT NULL,
			created_at  INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_models_solver ON models(solver);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return xerrors.Errorf("failed to run migration statement: %w", err)
		}
	}
	return nil
}
