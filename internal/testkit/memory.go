package testkit

import (
	"context"
	"sort"
	"sync"

	"gotrial/domain/core"
	"gotrial/domain/design"
)

// InMemoryAllocationRepository implements AllocationRepository with in-memory storage.
// Records are copied on the way in and out.
type InMemoryAllocationRepository struct {
	records map[core.AllocationID]*design.AllocationRecord
	mu      sync.RWMutex
}

func NewInMemoryAllocationRepository() *InMemoryAllocationRepository {
	return &InMemoryAllocationRepository{
		records: make(map[core.AllocationID]*design.AllocationRecord),
	}
}

func (s *InMemoryAllocationRepository) Save(ctx context.Context, record *design.AllocationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = cloneRecord(record)
	return nil
}

func (s *InMemoryAllocationRepository) Get(ctx context.Context, id core.AllocationID) (*design.AllocationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, core.NewAllocationNotFoundError(id)
	}
	return cloneRecord(record), nil
}

func (s *InMemoryAllocationRepository) ListByDesign(ctx context.Context, designID core.DesignID, limit int) ([]*design.AllocationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*design.AllocationRecord
	for _, record := range s.records {
		if record.DesignID == designID {
			out = append(out, cloneRecord(record))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].CreatedAt.Time(), out[j].CreatedAt.Time()
		if ti.Equal(tj) {
			return out[i].ID > out[j].ID
		}
		return ti.After(tj)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneRecord(r *design.AllocationRecord) *design.AllocationRecord {
	c := *r
	c.Config.Ratio = append([]int(nil), r.Config.Ratio...)
	c.Config.BlockSize = append([]int(nil), r.Config.BlockSize...)
	c.Config.StratificationFactors = append([]string(nil), r.Config.StratificationFactors...)
	if r.Config.Seed != nil {
		seed := *r.Config.Seed
		c.Config.Seed = &seed
	}
	c.Entries = append([]design.AllocationEntry(nil), r.Entries...)
	c.Balance.ArmCounts = append([]int(nil), r.Balance.ArmCounts...)
	c.Balance.ExpectedCounts = append([]float64(nil), r.Balance.ExpectedCounts...)
	return &c
}

// InMemoryEnrollmentLedger implements EnrollmentLedger with in-memory storage
type InMemoryEnrollmentLedger struct {
	entries map[core.AllocationID][]core.ArmID
	mu      sync.RWMutex
}

func NewInMemoryEnrollmentLedger() *InMemoryEnrollmentLedger {
	return &InMemoryEnrollmentLedger{
		entries: make(map[core.AllocationID][]core.ArmID),
	}
}

func (l *InMemoryEnrollmentLedger) Record(ctx context.Context, allocationID core.AllocationID, armID core.ArmID) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[allocationID] = append(l.entries[allocationID], armID)
	return len(l.entries[allocationID]), nil
}

func (l *InMemoryEnrollmentLedger) Counts(ctx context.Context, allocationID core.AllocationID) (map[core.ArmID]int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	counts := make(map[core.ArmID]int)
	for _, arm := range l.entries[allocationID] {
		counts[arm]++
	}
	return counts, nil
}

func (l *InMemoryEnrollmentLedger) Total(ctx context.Context, allocationID core.AllocationID) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries[allocationID]), nil
}
