package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"gotrial/domain/core"
	"gotrial/domain/design"
	"gotrial/internal/errors"
	"gotrial/ports"

	"github.com/jmoiron/sqlx"
)

// AllocationRepositoryImpl implements AllocationRepository over sqlx.
// Queries use ? placeholders and are rebound for the connected driver.
type AllocationRepositoryImpl struct {
	db *sqlx.DB
}

// NewAllocationRepository creates a new SQL allocation repository
func NewAllocationRepository(db *sqlx.DB) ports.AllocationRepository {
	return &AllocationRepositoryImpl{db: db}
}

type allocationRow struct {
	ID               string `db:"id"`
	DesignID         string `db:"design_id"`
	RequestedMethod  string `db:"requested_method"`
	AppliedMethod    string `db:"applied_method"`
	Seed             int64  `db:"seed"`
	ParticipantCount int    `db:"participant_count"`
	Fingerprint      string `db:"fingerprint"`
	Config           string `db:"config"`
	Resolution       string `db:"resolution"`
	Entries          string `db:"entries"`
	Balance          string `db:"balance"`
	CreatedAt        int64  `db:"created_at"`
}

const allocationColumns = `id, design_id, requested_method, applied_method, seed, participant_count,
	fingerprint, config, resolution, entries, balance, created_at`

// Save upserts an allocation record
func (r *AllocationRepositoryImpl) Save(ctx context.Context, record *design.AllocationRecord) error {
	row, err := toRow(record)
	if err != nil {
		return errors.Wrap(err, "failed to encode allocation")
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO allocations (`+allocationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			design_id = excluded.design_id,
			requested_method = excluded.requested_method,
			applied_method = excluded.applied_method,
			seed = excluded.seed,
			participant_count = excluded.participant_count,
			fingerprint = excluded.fingerprint,
			config = excluded.config,
			resolution = excluded.resolution,
			entries = excluded.entries,
			balance = excluded.balance,
			created_at = excluded.created_at
	`), row.ID, row.DesignID, row.RequestedMethod, row.AppliedMethod, row.Seed, row.ParticipantCount,
		row.Fingerprint, row.Config, row.Resolution, row.Entries, row.Balance, row.CreatedAt)
	if err != nil {
		return errors.DatabaseError("failed to save allocation", err)
	}
	return nil
}

// Get retrieves an allocation by ID
func (r *AllocationRepositoryImpl) Get(ctx context.Context, id core.AllocationID) (*design.AllocationRecord, error) {
	var row allocationRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT `+allocationColumns+`
		FROM allocations
		WHERE id = ?
	`), id.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, core.NewAllocationNotFoundError(id)
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to load allocation", err)
	}
	return fromRow(row)
}

// ListByDesign returns a design's allocations, newest first
func (r *AllocationRepositoryImpl) ListByDesign(ctx context.Context, designID core.DesignID, limit int) ([]*design.AllocationRecord, error) {
	query := `
		SELECT ` + allocationColumns + `
		FROM allocations
		WHERE design_id = ?
		ORDER BY created_at DESC, id DESC
	`
	args := []interface{}{designID.String()}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows []allocationRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, errors.DatabaseError("failed to list allocations", err)
	}

	records := make([]*design.AllocationRecord, 0, len(rows))
	for _, row := range rows {
		record, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func toRow(record *design.AllocationRecord) (allocationRow, error) {
	config, err := json.Marshal(record.Config)
	if err != nil {
		return allocationRow{}, err
	}
	resolution, err := json.Marshal(record.Resolution)
	if err != nil {
		return allocationRow{}, err
	}
	entries, err := json.Marshal(record.Entries)
	if err != nil {
		return allocationRow{}, err
	}
	balance, err := json.Marshal(record.Balance)
	if err != nil {
		return allocationRow{}, err
	}
	return allocationRow{
		ID:               record.ID.String(),
		DesignID:         record.DesignID.String(),
		RequestedMethod:  string(record.Resolution.Requested),
		AppliedMethod:    string(record.Resolution.Applied),
		Seed:             record.Seed,
		ParticipantCount: record.ParticipantCount,
		Fingerprint:      string(record.Fingerprint),
		Config:           string(config),
		Resolution:       string(resolution),
		Entries:          string(entries),
		Balance:          string(balance),
		CreatedAt:        record.CreatedAt.Time().UnixNano(),
	}, nil
}

func fromRow(row allocationRow) (*design.AllocationRecord, error) {
	record := &design.AllocationRecord{
		ID:               core.AllocationID(row.ID),
		DesignID:         core.DesignID(row.DesignID),
		ParticipantCount: row.ParticipantCount,
		Seed:             row.Seed,
		Fingerprint:      core.Fingerprint(row.Fingerprint),
		CreatedAt:        core.NewTimestamp(time.Unix(0, row.CreatedAt).UTC()),
	}
	if err := json.Unmarshal([]byte(row.Config), &record.Config); err != nil {
		return nil, errors.DatabaseError("corrupt allocation config", err)
	}
	if err := json.Unmarshal([]byte(row.Resolution), &record.Resolution); err != nil {
		return nil, errors.DatabaseError("corrupt allocation resolution", err)
	}
	if err := json.Unmarshal([]byte(row.Entries), &record.Entries); err != nil {
		return nil, errors.DatabaseError("corrupt allocation entries", err)
	}
	if err := json.Unmarshal([]byte(row.Balance), &record.Balance); err != nil {
		return nil, errors.DatabaseError("corrupt allocation balance", err)
	}
	return record, nil
}
