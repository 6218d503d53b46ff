package ports

import (
	"context"
)

// RandomSource is a reproducible stream of floats in [0,1)
type RandomSource interface {
	Float64() float64
}

// RNGPort provides seeded random streams for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic stream for a named operation.
	// The same seed must yield the same stream forever.
	SeededStream(ctx context.Context, name string, seed int64) (RandomSource, error)

	// ValidateSeed checks that seed reproduces the expected leading values
	ValidateSeed(ctx context.Context, name string, seed int64, expected []float64) error
}

// SeedSource supplies a seed when a caller does not pin one
type SeedSource interface {
	NextSeed() int64
}
