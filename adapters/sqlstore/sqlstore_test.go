package sqlstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"gotrial/domain/core"
	"gotrial/domain/design"
	"gotrial/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migration.NewRunner().Run(context.Background(), db))
	return db
}

func sampleRecord(id string, designID string, createdAt time.Time) *design.AllocationRecord {
	seed := int64(42)
	cfg := design.RandomizationConfig{
		Method:    design.MethodBlock,
		Ratio:     []int{1, 1},
		BlockSize: []int{4},
		Seed:      &seed,
	}
	resolution := design.Applied(design.MethodBlock)
	return &design.AllocationRecord{
		ID:               core.AllocationID(id),
		DesignID:         core.DesignID(designID),
		Config:           cfg,
		ParticipantCount: 2,
		Resolution:       resolution,
		Seed:             seed,
		Fingerprint:      design.SequenceFingerprint(cfg, resolution, seed, 2),
		Entries: []design.AllocationEntry{
			{ParticipantID: 1, ArmIndex: 1, ArmID: "control", ArmName: "Control"},
			{ParticipantID: 2, ArmIndex: 0, ArmID: "treatment", ArmName: "Treatment"},
		},
		Balance: design.BalanceReport{
			ArmCounts:      []int{1, 1},
			ExpectedCounts: []float64{1, 1},
		},
		CreatedAt: core.NewTimestamp(createdAt.UTC()),
	}
}

func TestAllocationRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewAllocationRepository(openTestDB(t))
	record := sampleRecord("alloc-1", "design-1", time.Date(2026, 3, 1, 12, 0, 0, 500, time.UTC))

	require.NoError(t, repo.Save(ctx, record))

	got, err := repo.Get(ctx, "alloc-1")
	require.NoError(t, err)
	assert.Equal(t, record.DesignID, got.DesignID)
	assert.Equal(t, record.Fingerprint, got.Fingerprint)
	assert.Equal(t, record.Entries, got.Entries)
	assert.Equal(t, record.Resolution, got.Resolution)
	assert.Equal(t, record.Config.Ratio, got.Config.Ratio)
	require.NotNil(t, got.Config.Seed)
	assert.Equal(t, int64(42), *got.Config.Seed)
	assert.True(t, record.CreatedAt.Time().Equal(got.CreatedAt.Time()))
}

func TestAllocationRepository_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewAllocationRepository(openTestDB(t))
	record := sampleRecord("alloc-1", "design-1", time.Now())
	require.NoError(t, repo.Save(ctx, record))

	record.Entries = record.Entries[:1]
	record.ParticipantCount = 1
	require.NoError(t, repo.Save(ctx, record))

	got, err := repo.Get(ctx, "alloc-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ParticipantCount)
	assert.Len(t, got.Entries, 1)
}

func TestAllocationRepository_GetMissing(t *testing.T) {
	repo := NewAllocationRepository(openTestDB(t))

	_, err := repo.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrAllocationNotFound)
	assert.True(t, core.IsNotFoundError(err))
}

func TestAllocationRepository_ListByDesign(t *testing.T) {
	ctx := context.Background()
	repo := NewAllocationRepository(openTestDB(t))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, sampleRecord(fmt.Sprintf("a-%d", i), "design-1", base.Add(time.Duration(i)*time.Hour))))
	}
	require.NoError(t, repo.Save(ctx, sampleRecord("other", "design-2", base)))

	all, err := repo.ListByDesign(ctx, "design-1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, core.AllocationID("a-2"), all[0].ID)
	assert.Equal(t, core.AllocationID("a-0"), all[2].ID)

	limited, err := repo.ListByDesign(ctx, "design-1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := repo.ListByDesign(ctx, "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEnrollmentLedger_RecordAndCount(t *testing.T) {
	ctx := context.Background()
	ledger := NewEnrollmentLedger(openTestDB(t))

	arms := []core.ArmID{"treatment", "control", "treatment"}
	for i, arm := range arms {
		pos, err := ledger.Record(ctx, "alloc-1", arm)
		require.NoError(t, err)
		assert.Equal(t, i+1, pos)
	}
	pos, err := ledger.Record(ctx, "alloc-2", "control")
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	counts, err := ledger.Counts(ctx, "alloc-1")
	require.NoError(t, err)
	assert.Equal(t, map[core.ArmID]int{"treatment": 2, "control": 1}, counts)

	total, err := ledger.Total(ctx, "alloc-1")
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	empty, err := ledger.Counts(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEnrollmentLedger_ConcurrentRecords(t *testing.T) {
	ctx := context.Background()
	ledger := NewEnrollmentLedger(openTestDB(t))

	var wg sync.WaitGroup
	var mu sync.Mutex
	positions := make(map[int]bool)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pos, err := ledger.Record(ctx, "alloc-1", "arm")
			if assert.NoError(t, err) {
				mu.Lock()
				positions[pos] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, positions, 10)
	total, err := ledger.Total(ctx, "alloc-1")
	require.NoError(t, err)
	assert.Equal(t, 10, total)
}
