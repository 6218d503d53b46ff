package testkit

import (
	"context"
	"testing"
	"time"

	"gotrial/domain/core"
	"gotrial/domain/design"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryAllocationRepository(t *testing.T) {
	ctx := context.Background()
	kit := NewTestKit()
	repo := kit.AllocationRepository()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []core.AllocationID{"a", "b", "c"} {
		require.NoError(t, repo.Save(ctx, &design.AllocationRecord{
			ID:        id,
			DesignID:  "d1",
			Config:    design.RandomizationConfig{Ratio: []int{1, 1}, Seed: Seed(7)},
			Entries:   []design.AllocationEntry{{ParticipantID: 1}},
			CreatedAt: core.NewTimestamp(base.Add(time.Duration(i) * time.Minute)),
		}))
	}

	got, err := repo.Get(ctx, "b")
	require.NoError(t, err)
	got.Entries[0].ArmName = "mutated"
	got.Config.Ratio[0] = 9

	again, err := repo.Get(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, again.Entries[0].ArmName)
	assert.Equal(t, []int{1, 1}, again.Config.Ratio)

	list, err := repo.ListByDesign(ctx, "d1", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, core.AllocationID("c"), list[0].ID)
	assert.Equal(t, core.AllocationID("b"), list[1].ID)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrAllocationNotFound)
}

func TestInMemoryEnrollmentLedger(t *testing.T) {
	ctx := context.Background()
	ledger := NewTestKit().EnrollmentLedger()

	pos, err := ledger.Record(ctx, "a", "treatment")
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	pos, err = ledger.Record(ctx, "a", "placebo")
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	counts, err := ledger.Counts(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, map[core.ArmID]int{"treatment": 1, "placebo": 1}, counts)

	total, err := ledger.Total(ctx, "other")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestFixturesAreValid(t *testing.T) {
	require.NoError(t, TwoArmDesign().Validate())
	require.NoError(t, ThreeArmDesign().Validate())
}
