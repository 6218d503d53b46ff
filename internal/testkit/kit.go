package testkit

import (
	"gotrial/adapters/rng"
	"gotrial/domain/core"
	"gotrial/domain/design"
	"gotrial/ports"
)

// TestKit bundles in-memory adapters and fixtures. The server also uses it
// when no database is configured.
type TestKit struct {
	allocations *InMemoryAllocationRepository
	ledger      *InMemoryEnrollmentLedger
}

// NewTestKit creates a test kit with empty in-memory stores
func NewTestKit() *TestKit {
	return &TestKit{
		allocations: NewInMemoryAllocationRepository(),
		ledger:      NewInMemoryEnrollmentLedger(),
	}
}

// AllocationRepository returns the shared in-memory allocation store
func (t *TestKit) AllocationRepository() ports.AllocationRepository {
	return t.allocations
}

// EnrollmentLedger returns the shared in-memory ledger
func (t *TestKit) EnrollmentLedger() ports.EnrollmentLedger {
	return t.ledger
}

// RNGAdapter returns the production LCG adapter; it is already deterministic
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return rng.NewRNGAdapter()
}

// FixedSeeds returns a seed source that always yields seed
func (t *TestKit) FixedSeeds(seed int64) ports.SeedSource {
	return rng.FixedSeedSource{Seed: seed}
}

// Seed returns a pointer for RandomizationConfig.Seed
func Seed(v int64) *int64 {
	return &v
}

// TwoArmDesign is a 1:1 block-randomized drug vs placebo trial
func TwoArmDesign() design.StudyDesign {
	return design.StudyDesign{
		ID:      core.DesignID("design-two-arm"),
		StudyID: core.StudyID("study-001"),
		Type:    design.DesignRCT,
		Arms: []design.StudyArm{
			{ID: "treatment", Name: "Treatment", Kind: design.ArmExperimental, TargetSize: 50},
			{ID: "placebo", Name: "Placebo", Kind: design.ArmPlacebo, TargetSize: 50},
		},
		Randomization: design.RandomizationConfig{
			Method:    design.MethodBlock,
			Ratio:     []int{1, 1},
			BlockSize: []int{4},
			Seed:      Seed(42),
		},
		Blinding:        design.BlindingDouble,
		PrimaryOutcomes: []design.Outcome{{Name: "systolic_bp", Measure: "mmHg", Timepoint: "week 12"}},
	}
}

// ThreeArmDesign is a 2:1:1 design with no pinned seed
func ThreeArmDesign() design.StudyDesign {
	return design.StudyDesign{
		ID:      core.DesignID("design-three-arm"),
		StudyID: core.StudyID("study-002"),
		Type:    design.DesignRCT,
		Arms: []design.StudyArm{
			{ID: "high", Name: "High dose", Kind: design.ArmExperimental},
			{ID: "low", Name: "Low dose", Kind: design.ArmExperimental},
			{ID: "control", Name: "Standard care", Kind: design.ArmStandardCare},
		},
		Randomization: design.RandomizationConfig{
			Method:    design.MethodBlock,
			Ratio:     []int{2, 1, 1},
			BlockSize: []int{8},
		},
		Blinding: design.BlindingOpen,
	}
}
