package sqlstore

import (
	"context"
	"time"

	"gotrial/domain/core"
	"gotrial/internal/errors"
	"gotrial/ports"

	"github.com/jmoiron/sqlx"
)

// EnrollmentLedgerImpl implements EnrollmentLedger over sqlx
type EnrollmentLedgerImpl struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewEnrollmentLedger creates a new SQL enrollment ledger
func NewEnrollmentLedger(db *sqlx.DB) ports.EnrollmentLedger {
	return &EnrollmentLedgerImpl{db: db, now: time.Now}
}

// Record appends an enrollment in the next slot. Concurrent writers racing for the
// same slot collide on the primary key; one of them gets an error.
func (l *EnrollmentLedgerImpl) Record(ctx context.Context, allocationID core.AllocationID, armID core.ArmID) (int, error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.DatabaseError("failed to begin enrollment", err)
	}
	defer tx.Rollback()

	var slot int
	err = tx.GetContext(ctx, &slot, tx.Rebind(`
		SELECT COALESCE(MAX(slot), 0) + 1
		FROM enrollment_ledger
		WHERE allocation_id = ?
	`), allocationID.String())
	if err != nil {
		return 0, errors.DatabaseError("failed to read enrollment position", err)
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO enrollment_ledger (allocation_id, slot, arm_id, enrolled_at)
		VALUES (?, ?, ?, ?)
	`), allocationID.String(), slot, armID.String(), l.now().UnixNano())
	if err != nil {
		return 0, errors.DatabaseError("failed to record enrollment", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.DatabaseError("failed to commit enrollment", err)
	}
	return slot, nil
}

// Counts returns enrollments per arm
func (l *EnrollmentLedgerImpl) Counts(ctx context.Context, allocationID core.AllocationID) (map[core.ArmID]int, error) {
	var rows []struct {
		ArmID string `db:"arm_id"`
		Count int    `db:"n"`
	}
	err := l.db.SelectContext(ctx, &rows, l.db.Rebind(`
		SELECT arm_id, COUNT(*) AS n
		FROM enrollment_ledger
		WHERE allocation_id = ?
		GROUP BY arm_id
	`), allocationID.String())
	if err != nil {
		return nil, errors.DatabaseError("failed to count enrollments", err)
	}

	counts := make(map[core.ArmID]int, len(rows))
	for _, row := range rows {
		counts[core.ArmID(row.ArmID)] = row.Count
	}
	return counts, nil
}

// Total returns the number of enrollments for an allocation
func (l *EnrollmentLedgerImpl) Total(ctx context.Context, allocationID core.AllocationID) (int, error) {
	var total int
	err := l.db.GetContext(ctx, &total, l.db.Rebind(`
		SELECT COUNT(*)
		FROM enrollment_ledger
		WHERE allocation_id = ?
	`), allocationID.String())
	if err != nil {
		return 0, errors.DatabaseError("failed to total enrollments", err)
	}
	return total, nil
}
