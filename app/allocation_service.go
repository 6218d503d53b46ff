package app

import (
	"context"
	"fmt"
	"strconv"

	"gotrial/adapters/randomization"
	"gotrial/adapters/rng"
	"gotrial/domain/core"
	"gotrial/domain/design"
	"gotrial/internal"
	"gotrial/internal/errors"
	"gotrial/internal/metrics"
	"gotrial/ports"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// AllocationRequest asks for an allocation table of ParticipantCount rows for Design
type AllocationRequest struct {
	Design           design.StudyDesign
	ParticipantCount int
}

// Verification is the outcome of regenerating a stored allocation
type Verification struct {
	AllocationID core.AllocationID `json:"allocation_id"`
	Fingerprint  core.Fingerprint  `json:"fingerprint"`
	Seed         int64             `json:"seed"`
	Verified     bool              `json:"verified"`
	Mismatch     string            `json:"mismatch,omitempty"`
}

// AllocationService turns study designs into persisted allocation tables
type AllocationService struct {
	randomizer ports.RandomizerPort
	repo       ports.AllocationRepository
	seeds      ports.SeedSource
	metrics    *metrics.Metrics
	logger     *internal.Logger
	batchLimit int64
}

func NewAllocationService(
	randomizer ports.RandomizerPort,
	repo ports.AllocationRepository,
	seeds ports.SeedSource,
	m *metrics.Metrics,
	logger *internal.Logger,
	batchLimit int,
) *AllocationService {
	if seeds == nil {
		seeds = rng.NewClockSeedSource()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if batchLimit < 1 {
		batchLimit = 1
	}
	return &AllocationService{
		randomizer: randomizer,
		repo:       repo,
		seeds:      seeds,
		metrics:    m,
		logger:     logger.With("allocation"),
		batchLimit: int64(batchLimit),
	}
}

// Allocate generates, annotates and stores the allocation table for d
func (s *AllocationService) Allocate(ctx context.Context, d design.StudyDesign, participantCount int) (*design.AllocationRecord, error) {
	if err := d.Validate(); err != nil {
		s.metrics.RecordError(errors.GetCode(err))
		return nil, err
	}
	cfg := d.EffectiveConfig()

	seq, err := s.randomizer.GenerateSequence(ctx, cfg, participantCount)
	if err != nil {
		s.metrics.RecordError(errors.GetCode(err))
		return nil, fmt.Errorf("failed to generate sequence for design %s: %w", d.ID, err)
	}

	if seq.Resolution.FellBack {
		s.logger.Warn("design %s: %s requested, %s applied: %s",
			d.ID, seq.Resolution.Requested, seq.Resolution.Applied, seq.Resolution.Reason)
	}
	s.metrics.RecordSequence(string(seq.Resolution.Requested), string(seq.Resolution.Applied), len(seq.Assignments))

	cfg = cfg.WithSeed(seq.Seed)
	record := &design.AllocationRecord{
		ID:               core.NewAllocationID(),
		DesignID:         d.ID,
		Config:           cfg,
		ParticipantCount: participantCount,
		Resolution:       seq.Resolution,
		Seed:             seq.Seed,
		Fingerprint:      design.SequenceFingerprint(cfg, seq.Resolution, seq.Seed, participantCount),
		Entries:          annotate(d, seq),
		Balance:          randomization.Balance(seq, cfg),
		CreatedAt:        core.Now(),
	}

	if err := s.repo.Save(ctx, record); err != nil {
		s.metrics.RecordError(errors.GetCode(err))
		return nil, errors.Wrapf(err, "failed to save allocation for design %s", d.ID)
	}

	s.logger.Info("allocation %s: design %s, %d participants, method %s, seed %d",
		record.ID, d.ID, participantCount, seq.Resolution.Applied, seq.Seed)
	return record, nil
}

// AllocateBatch runs the requests concurrently, at most batchLimit at a time.
// Results keep request order. The first failure cancels the rest.
//
// Requests without a pinned seed get one derived from a single batch seed,
// the design ID and the request index, so concurrent items never share a stream.
func (s *AllocationService) AllocateBatch(ctx context.Context, reqs []AllocationRequest) ([]*design.AllocationRecord, error) {
	done := s.metrics.BatchStarted()
	defer done()

	results := make([]*design.AllocationRecord, len(reqs))
	if len(reqs) == 0 {
		return results, nil
	}

	batchSeed := s.seeds.NextSeed()
	sem := semaphore.NewWeighted(s.batchLimit)
	g, gctx := errgroup.WithContext(ctx)

	for i, req := range reqs {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}

		i, req := i, req
		if req.Design.Randomization.Seed == nil {
			req.Design.Randomization = req.Design.Randomization.WithSeed(
				rng.DeriveSeed(batchSeed, req.Design.ID.String(), strconv.Itoa(i)))
		}

		g.Go(func() error {
			defer sem.Release(1)
			record, err := s.Allocate(gctx, req.Design, req.ParticipantCount)
			if err != nil {
				return fmt.Errorf("batch item %d: %w", i, err)
			}
			results[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Get returns a stored allocation
func (s *AllocationService) Get(ctx context.Context, id core.AllocationID) (*design.AllocationRecord, error) {
	return s.repo.Get(ctx, id)
}

// ListByDesign returns a design's allocations, newest first
func (s *AllocationService) ListByDesign(ctx context.Context, designID core.DesignID, limit int) ([]*design.AllocationRecord, error) {
	return s.repo.ListByDesign(ctx, designID, limit)
}

// Verify regenerates a stored allocation from its config and seed and checks
// that the fingerprint and every assignment still match. A mismatch returns
// the Verification alongside a determinism error.
func (s *AllocationService) Verify(ctx context.Context, id core.AllocationID) (*Verification, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &Verification{
		AllocationID: record.ID,
		Fingerprint:  record.Fingerprint,
		Seed:         record.Seed,
	}

	cfg := record.Config.WithSeed(record.Seed)
	seq, err := s.randomizer.GenerateSequence(ctx, cfg, record.ParticipantCount)
	if err != nil {
		return nil, fmt.Errorf("failed to regenerate allocation %s: %w", id, err)
	}

	fingerprint := design.SequenceFingerprint(cfg, seq.Resolution, seq.Seed, record.ParticipantCount)
	if fingerprint != record.Fingerprint {
		result.Mismatch = fmt.Sprintf("fingerprint %s, stored %s", fingerprint, record.Fingerprint)
		s.logger.Error("allocation %s failed verification: %s", id, result.Mismatch)
		return result, fmt.Errorf("%w: allocation %s", core.ErrHashMismatch, id)
	}

	stored := record.Assignments()
	if len(stored) != len(seq.Assignments) {
		result.Mismatch = fmt.Sprintf("regenerated %d assignments, stored %d", len(seq.Assignments), len(stored))
		s.logger.Error("allocation %s failed verification: %s", id, result.Mismatch)
		return result, fmt.Errorf("%w: allocation %s", core.ErrNonDeterministic, id)
	}
	for i, a := range seq.Assignments {
		if a != stored[i] {
			result.Mismatch = fmt.Sprintf("participant %d: regenerated arm %d, stored arm %d",
				a.ParticipantID, a.ArmIndex, stored[i].ArmIndex)
			s.logger.Error("allocation %s failed verification: %s", id, result.Mismatch)
			return result, fmt.Errorf("%w: allocation %s", core.ErrNonDeterministic, id)
		}
	}

	result.Verified = true
	return result, nil
}

func annotate(d design.StudyDesign, seq *design.Sequence) []design.AllocationEntry {
	entries := make([]design.AllocationEntry, len(seq.Assignments))
	for i, a := range seq.Assignments {
		entries[i] = design.AllocationEntry{ParticipantID: a.ParticipantID, ArmIndex: a.ArmIndex}
		if arm, ok := d.Arm(a.ArmIndex); ok {
			entries[i].ArmID = arm.ID
			entries[i].ArmName = arm.Name
		}
	}
	return entries
}
