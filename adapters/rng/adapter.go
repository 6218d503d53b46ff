package rng

import (
	"context"
	"fmt"
	"math"

	"gotrial/domain/core"
	"gotrial/ports"
)

// RNGAdapter implements ports.RNGPort over the allocation LCG
type RNGAdapter struct{}

// NewRNGAdapter creates the default RNG port
func NewRNGAdapter() *RNGAdapter {
	return &RNGAdapter{}
}

// SeededStream returns a fresh LCG stream for seed
func (a *RNGAdapter) SeededStream(ctx context.Context, name string, seed int64) (ports.RandomSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewLCG(seed), nil
}

// ValidateSeed regenerates the leading values for seed and compares them
func (a *RNGAdapter) ValidateSeed(ctx context.Context, name string, seed int64, expected []float64) error {
	stream, err := a.SeededStream(ctx, name, seed)
	if err != nil {
		return err
	}
	for i, want := range expected {
		got := stream.Float64()
		if math.Abs(got-want) > 1e-12 {
			return fmt.Errorf("%w: %s seed %d value %d: got %v, want %v", core.ErrSeedMismatch, name, seed, i, got, want)
		}
	}
	return nil
}
