package ports

import (
	"context"

	"gotrial/domain/core"
	"gotrial/domain/design"
)

// AllocationRepository persists generated allocation tables
type AllocationRepository interface {
	// Save stores an allocation record; saving the same ID twice overwrites it
	Save(ctx context.Context, record *design.AllocationRecord) error

	// Get returns the record or an error matching core.ErrAllocationNotFound
	Get(ctx context.Context, id core.AllocationID) (*design.AllocationRecord, error)

	// ListByDesign returns a design's allocations, newest first
	ListByDesign(ctx context.Context, designID core.DesignID, limit int) ([]*design.AllocationRecord, error)
}

// EnrollmentLedger tracks enrollment per arm outside the engine
type EnrollmentLedger interface {
	// Record appends one enrollment and returns its 1-based position within the allocation
	Record(ctx context.Context, allocationID core.AllocationID, armID core.ArmID) (int, error)

	// Counts returns enrollments per arm for an allocation
	Counts(ctx context.Context, allocationID core.AllocationID) (map[core.ArmID]int, error)

	// Total returns the number of enrollments recorded for an allocation
	Total(ctx context.Context, allocationID core.AllocationID) (int, error)
}
