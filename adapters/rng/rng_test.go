package rng

import (
	"context"
	"errors"
	"testing"
	"time"

	"gotrial/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceSource replays fixed values, for exercising boundaries
type sliceSource struct {
	values []float64
	pos    int
}

func (s *sliceSource) Float64() float64 {
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

func TestNext_KnownRecurrence(t *testing.T) {
	wantStates := []int64{206659, 190736, 223713, 179590, 131087}
	wantValues := []float64{0.8858839163237311, 0.8176268861454047, 0.9589891975308642, 0.7698473936899863, 0.5619298696844993}

	state := NormalizeSeed(42)
	for i := range wantStates {
		var v float64
		v, state = Next(state)
		assert.Equal(t, wantStates[i], state, "state %d", i)
		assert.InDelta(t, wantValues[i], v, 1e-15, "value %d", i)
	}
}

func TestNormalizeSeed(t *testing.T) {
	assert.Equal(t, int64(0), NormalizeSeed(0))
	assert.Equal(t, int64(233279), NormalizeSeed(-1))
	assert.Equal(t, int64(42), NormalizeSeed(42+233280*5))

	big := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	state := NormalizeSeed(big)
	assert.GreaterOrEqual(t, state, int64(0))
	assert.Less(t, state, int64(lcgModulus))
}

func TestLCG_Reproducible(t *testing.T) {
	a := NewLCG(12345)
	b := NewLCG(12345)
	for i := 0; i < 1000; i++ {
		va, vb := a.Float64(), b.Float64()
		require.Equal(t, va, vb, "draw %d diverged", i)
		require.GreaterOrEqual(t, va, 0.0)
		require.Less(t, va, 1.0)
	}
}

func TestShuffle_IsPermutation(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7}
	Shuffle(items, NewLCG(7))

	seen := make(map[int]bool)
	for _, v := range items {
		seen[v] = true
	}
	assert.Len(t, seen, 8)

	again := []int{0, 1, 2, 3, 4, 5, 6, 7}
	Shuffle(again, NewLCG(7))
	assert.Equal(t, items, again)
}

func TestShuffle_DrawsOncePerIndexAboveZero(t *testing.T) {
	src := &sliceSource{values: []float64{0.0}}
	items := []string{"a", "b", "c", "d"}
	Shuffle(items, src)

	assert.Equal(t, 3, src.pos)
	// j is always 0: i=3 swaps with 0, then i=2, then i=1
	assert.Equal(t, []string{"b", "c", "d", "a"}, items)
}

func TestShuffle_EmptyAndSingle(t *testing.T) {
	src := &sliceSource{values: []float64{0.5}}
	var empty []int
	Shuffle(empty, src)
	one := []int{9}
	Shuffle(one, src)
	assert.Equal(t, []int{9}, one)
	assert.Equal(t, 0, src.pos)
}

func TestWeightedSelect(t *testing.T) {
	weights := []int{2, 1}
	tests := []struct {
		draw float64
		want int
	}{
		{0.0, 0},
		{0.5, 0},
		{0.6666, 0},
		{0.6667, 1},
		{0.9999999, 1},
	}
	for _, tt := range tests {
		got := WeightedSelect(weights, 3, &sliceSource{values: []float64{tt.draw}})
		assert.Equal(t, tt.want, got, "draw %v", tt.draw)
	}
}

func TestWeightedSelect_BoundaryFallsBackToLast(t *testing.T) {
	// A total larger than the weight sum pushes r past every bucket
	got := WeightedSelect([]int{1, 1}, 3, &sliceSource{values: []float64{0.99}})
	assert.Equal(t, 1, got)
}

func TestWeightedSelect_Distribution(t *testing.T) {
	src := NewLCG(99)
	counts := make([]int, 3)
	const draws = 30000
	for i := 0; i < draws; i++ {
		counts[WeightedSelect([]int{1, 2, 3}, 6, src)]++
	}
	assert.InDelta(t, 1.0/6, float64(counts[0])/draws, 0.02)
	assert.InDelta(t, 2.0/6, float64(counts[1])/draws, 0.02)
	assert.InDelta(t, 3.0/6, float64(counts[2])/draws, 0.02)
}

func TestSeedSources(t *testing.T) {
	fixed := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	clock := &ClockSeedSource{now: func() time.Time { return fixed }}
	assert.Equal(t, fixed.UnixMilli(), clock.NextSeed())

	assert.Equal(t, int64(42), FixedSeedSource{Seed: 42}.NextSeed())

	assert.Equal(t, DeriveSeed(42, "design-a"), DeriveSeed(42, "design-a"))
	assert.NotEqual(t, DeriveSeed(42, "design-a"), DeriveSeed(42, "design-b"))
	assert.Equal(t, int64(42), DeriveSeed(42, ""))
}

func TestRNGAdapter_ValidateSeed(t *testing.T) {
	ctx := context.Background()
	adapter := NewRNGAdapter()

	require.NoError(t, adapter.ValidateSeed(ctx, "allocation", 42, []float64{0.8858839163237311, 0.8176268861454047}))

	err := adapter.ValidateSeed(ctx, "allocation", 43, []float64{0.8858839163237311})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSeedMismatch))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = adapter.SeededStream(cancelled, "allocation", 1)
	assert.ErrorIs(t, err, context.Canceled)
}
