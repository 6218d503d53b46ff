package app

import (
	"context"
	"fmt"
	"sync"

	"gotrial/domain/core"
	"gotrial/internal"
	"gotrial/internal/metrics"
	"gotrial/ports"
)

// Enrollment is one participant taken off a stored allocation table
type Enrollment struct {
	AllocationID  core.AllocationID `json:"allocation_id"`
	Position      int               `json:"position"`
	ParticipantID int               `json:"participant_id"`
	ArmIndex      int               `json:"arm_index"`
	ArmID         core.ArmID        `json:"arm_id"`
	ArmName       string            `json:"arm_name"`
}

// EnrollmentStatus reports how far an allocation table has been consumed
type EnrollmentStatus struct {
	AllocationID core.AllocationID  `json:"allocation_id"`
	Enrolled     int                `json:"enrolled"`
	Capacity     int                `json:"capacity"`
	ByArm        map[core.ArmID]int `json:"by_arm"`
}

// EnrollmentService hands out allocation rows in order and keeps per-arm
// counts in the ledger. Enrollments are serialized across all allocations.
type EnrollmentService struct {
	repo    ports.AllocationRepository
	ledger  ports.EnrollmentLedger
	metrics *metrics.Metrics
	logger  *internal.Logger
	mu      sync.Mutex
}

func NewEnrollmentService(repo ports.AllocationRepository, ledger ports.EnrollmentLedger, m *metrics.Metrics, logger *internal.Logger) *EnrollmentService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &EnrollmentService{
		repo:    repo,
		ledger:  ledger,
		metrics: m,
		logger:  logger.With("enrollment"),
	}
}

// Enroll assigns the next unenrolled row of the allocation.
// Returns core.ErrAllocationExhausted once every row is taken.
func (s *EnrollmentService) Enroll(ctx context.Context, allocationID core.AllocationID) (*Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.repo.Get(ctx, allocationID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.ledger.Total(ctx, allocationID)
	if err != nil {
		return nil, fmt.Errorf("failed to read enrollment total: %w", err)
	}
	if enrolled >= len(record.Entries) {
		return nil, fmt.Errorf("%w: allocation %s has %d rows, all enrolled",
			core.ErrAllocationExhausted, allocationID, len(record.Entries))
	}

	entry := record.Entries[enrolled]
	position, err := s.ledger.Record(ctx, allocationID, entry.ArmID)
	if err != nil {
		return nil, fmt.Errorf("failed to record enrollment: %w", err)
	}
	s.metrics.RecordEnrollment(entry.ArmID.String())
	s.logger.Debug("allocation %s: participant %d enrolled to %s (position %d)",
		allocationID, entry.ParticipantID, entry.ArmID, position)

	return &Enrollment{
		AllocationID:  allocationID,
		Position:      position,
		ParticipantID: entry.ParticipantID,
		ArmIndex:      entry.ArmIndex,
		ArmID:         entry.ArmID,
		ArmName:       entry.ArmName,
	}, nil
}

// Counts returns ledger counts keyed by arm id
func (s *EnrollmentService) Counts(ctx context.Context, allocationID core.AllocationID) (map[core.ArmID]int, error) {
	if _, err := s.repo.Get(ctx, allocationID); err != nil {
		return nil, err
	}
	return s.ledger.Counts(ctx, allocationID)
}

// Status returns counts together with the table's capacity
func (s *EnrollmentService) Status(ctx context.Context, allocationID core.AllocationID) (*EnrollmentStatus, error) {
	record, err := s.repo.Get(ctx, allocationID)
	if err != nil {
		return nil, err
	}
	counts, err := s.ledger.Counts(ctx, allocationID)
	if err != nil {
		return nil, err
	}
	status := &EnrollmentStatus{
		AllocationID: allocationID,
		Capacity:     len(record.Entries),
		ByArm:        counts,
	}
	for _, n := range counts {
		status.Enrolled += n
	}
	return status, nil
}
