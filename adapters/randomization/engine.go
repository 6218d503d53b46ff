package randomization

import (
	"context"
	"fmt"

	"gotrial/adapters/rng"
	"gotrial/domain/core"
	"gotrial/domain/design"
	"gotrial/ports"
)

// Engine generates reproducible allocation sequences.
// It holds no mutable state; each call builds its own stream from the seed.
type Engine struct {
	rngPort ports.RNGPort
	seeds   ports.SeedSource
}

// NewEngine creates an engine. seeds is consulted only when a config has no seed.
func NewEngine(rngPort ports.RNGPort, seeds ports.SeedSource) *Engine {
	if rngPort == nil {
		rngPort = rng.NewRNGAdapter()
	}
	if seeds == nil {
		seeds = rng.NewClockSeedSource()
	}
	return &Engine{rngPort: rngPort, seeds: seeds}
}

// GenerateSequence assigns participants 1..participantCount to 0-based arm indices.
//
// The returned Sequence reports the seed actually used and how the requested
// method was resolved; fallbacks are never silent.
func (e *Engine) GenerateSequence(ctx context.Context, cfg design.RandomizationConfig, participantCount int) (*design.Sequence, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if participantCount < 0 {
		return nil, core.NewConfigurationError("participant_count", fmt.Sprintf("must be >= 0, got %d", participantCount))
	}

	method, err := design.ParseMethod(string(cfg.Method))
	if err != nil {
		return nil, err
	}
	resolution := Resolve(method)

	seed := e.seedFor(cfg)
	seq := &design.Sequence{
		Assignments: make([]design.Assignment, 0, participantCount),
		Resolution:  resolution,
		Seed:        seed,
	}
	if participantCount == 0 {
		return seq, nil
	}

	src, err := e.rngPort.SeededStream(ctx, "allocation", seed)
	if err != nil {
		return nil, fmt.Errorf("failed to open seeded stream: %w", err)
	}

	ratio := cfg.EffectiveRatio()
	total := cfg.TotalRatio()

	var arms []int
	switch resolution.Applied {
	case design.MethodBlock:
		arms = blockSequence(ratio, total, cfg.EffectiveBlockSize(), participantCount, src)
	default:
		arms = simpleSequence(ratio, total, participantCount, src)
	}

	for i, arm := range arms {
		seq.Assignments = append(seq.Assignments, design.Assignment{ParticipantID: i + 1, ArmIndex: arm})
	}
	return seq, nil
}

// Resolve maps a requested method onto the algorithm that will run it
func Resolve(method design.Method) design.Resolution {
	switch method {
	case design.MethodSimple, design.MethodBlock:
		return design.Applied(method)
	case design.MethodStratified:
		return design.FellBackTo(method, design.MethodBlock,
			"stratification needs participant covariates; block randomization applied per config")
	default:
		return design.FellBackTo(method, design.MethodSimple,
			fmt.Sprintf("no allocation algorithm for %s; simple randomization applied", method))
	}
}

func (e *Engine) seedFor(cfg design.RandomizationConfig) int64 {
	if cfg.Seed != nil {
		return *cfg.Seed
	}
	return e.seeds.NextSeed()
}
