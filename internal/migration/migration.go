package migration

import (
	"context"

	"gotrial/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations.
// The DDL sticks to types shared by postgres and sqlite.
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

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSchemaVersionTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create schema_version table", err)
	}

	if err := r.createAllocationsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create allocations table", err)
	}

	if err := r.createEnrollmentLedgerTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create enrollment_ledger table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	if err := r.recordVersion(ctx, db); err != nil {
		return errors.DatabaseError("failed to record schema version", err)
	}

	return nil
}

func (r *MigrationRunner) createSchemaVersionTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version VARCHAR(20) PRIMARY KEY
		)
	`)
	return err
}

func (r *MigrationRunner) createAllocationsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS allocations (
			id VARCHAR(64) PRIMARY KEY,
			design_id VARCHAR(128) NOT NULL,
			requested_method VARCHAR(32) NOT NULL,
			applied_method VARCHAR(32) NOT NULL,
			seed BIGINT NOT NULL,
			participant_count INTEGER NOT NULL,
			fingerprint VARCHAR(64) NOT NULL,
			config TEXT NOT NULL,
			resolution TEXT NOT NULL,
			entries TEXT NOT NULL,
			balance TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createEnrollmentLedgerTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS enrollment_ledger (
			allocation_id VARCHAR(64) NOT NULL,
			slot INTEGER NOT NULL,
			arm_id VARCHAR(128) NOT NULL,
			enrolled_at BIGINT NOT NULL,
			PRIMARY KEY (allocation_id, slot)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_allocations_design ON allocations(design_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_enrollment_ledger_arm ON enrollment_ledger(allocation_id, arm_id)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *MigrationRunner) recordVersion(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx,
		db.Rebind(`INSERT INTO schema_version (version) VALUES (?) ON CONFLICT (version) DO NOTHING`),
		r.version)
	return err
}
