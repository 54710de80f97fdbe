package migrations

import "github.com/jmoiron/sqlx"

func init() {
	m.addMigration(&migration{
		version: "20260301101500",
		up:      mig_20260301101500_columns_up,
		down:    mig_20260301101500_columns_down,
	})
}

func mig_20260301101500_columns_up(tx *sqlx.Tx) error {
	// The position unique is deferred so a single-statement range shift
	// inside a transaction never trips a transient duplicate.
	_, err := tx.Exec(`
        CREATE TABLE IF NOT EXISTS columns (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
            name VARCHAR(255) NOT NULL,
            position INTEGER NOT NULL CHECK (position > 0),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            UNIQUE (project_id, position) DEFERRABLE INITIALLY DEFERRED
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE INDEX IF NOT EXISTS idx_columns_project_id ON columns(project_id);
    `)
	return err
}

func mig_20260301101500_columns_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS columns;`)
	return err
}
