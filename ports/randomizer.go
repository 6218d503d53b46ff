package ports

import (
	"context"

	"gotrial/domain/design"
)

// RandomizerPort generates allocation sequences
type RandomizerPort interface {
	GenerateSequence(ctx context.Context, cfg design.RandomizationConfig, participantCount int) (*design.Sequence, error)
}

// SampleSizePort computes minimum sample sizes
type SampleSizePort interface {
	Calculate(ctx context.Context, req design.SampleSizeRequest) (int, error)
}
