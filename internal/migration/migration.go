package migration

import (
	"context"

	"gorandtest/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// step is one idempotent schema change
type step struct {
	name string
	sql  string
}

func (r *MigrationRunner) steps() []step {
	return []step{
		{"create randtest_outcomes table", `
			CREATE TABLE IF NOT EXISTS randtest_outcomes (
				run_id UUID PRIMARY KEY,
				method VARCHAR(32) NOT NULL,
				alternative VARCHAR(16) NOT NULL,
				mct_a DOUBLE PRECISION NOT NULL,
				mct_b DOUBLE PRECISION NOT NULL,
				statistic DOUBLE PRECISION NOT NULL,
				hits INTEGER NOT NULL CHECK (hits >= 0),
				permutations INTEGER NOT NULL CHECK (permutations >= 0),
				p_value DOUBLE PRECISION,
				seed BIGINT,
				workers INTEGER NOT NULL,
				data_hash VARCHAR(64) NOT NULL,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				duration_ms BIGINT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)
		`},
		{"create started_at index", `
			CREATE INDEX IF NOT EXISTS idx_randtest_outcomes_started_at
			ON randtest_outcomes (started_at DESC)
		`},
		{"create data_hash index", `
			CREATE INDEX IF NOT EXISTS idx_randtest_outcomes_data_hash
			ON randtest_outcomes (data_hash)
		`},
	}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, s := range r.steps() {
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			return errors.Wrapf(errors.DatabaseError(s.name, err), "migration %s failed", r.version)
		}
	}
	return nil
}
