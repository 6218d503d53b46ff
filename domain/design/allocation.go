package design

import (
	"gotrial/domain/core"
)

// AllocationEntry is one row of an allocation table
type AllocationEntry struct {
	ParticipantID int        `json:"participant_id"`
	ArmIndex      int        `json:"arm_index"`
	ArmID         core.ArmID `json:"arm_id"`
	ArmName       string     `json:"arm_name"`
}

// BalanceReport summarizes how closely a sequence tracks its ratio
type BalanceReport struct {
	ArmCounts      []int     `json:"arm_counts"`
	ExpectedCounts []float64 `json:"expected_counts"`
	MaxDeviation   float64   `json:"max_deviation"`

	// Complete blocks only; zero for non-block methods
	CompleteBlocks int `json:"complete_blocks"`
	BalancedBlocks int `json:"balanced_blocks"`

	// Largest per-arm deviation from the expected share, over every prefix
	PrefixImbalanceMean   float64 `json:"prefix_imbalance_mean"`
	PrefixImbalanceMax    float64 `json:"prefix_imbalance_max"`
	PrefixImbalanceStdDev float64 `json:"prefix_imbalance_stddev"`
}

// AllocationRecord is a persisted, reproducible allocation for one design.
// Config always carries the seed that was used.
type AllocationRecord struct {
	ID               core.AllocationID   `json:"id"`
	DesignID         core.DesignID       `json:"design_id"`
	Config           RandomizationConfig `json:"config"`
	ParticipantCount int                 `json:"participant_count"`
	Resolution       Resolution          `json:"resolution"`
	Seed             int64               `json:"seed"`
	Fingerprint      core.Fingerprint    `json:"fingerprint"`
	Entries          []AllocationEntry   `json:"entries"`
	Balance          BalanceReport       `json:"balance"`
	CreatedAt        core.Timestamp      `json:"created_at"`
}

// Assignments strips arm identity from the entries
func (r *AllocationRecord) Assignments() []Assignment {
	out := make([]Assignment, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = Assignment{ParticipantID: e.ParticipantID, ArmIndex: e.ArmIndex}
	}
	return out
}

// SequenceFingerprint is the fingerprint stored with every allocation
func SequenceFingerprint(cfg RandomizationConfig, resolution Resolution, seed int64, participantCount int) core.Fingerprint {
	return core.ComputeFingerprint(
		resolution.Requested,
		resolution.Applied,
		cfg.EffectiveRatio(),
		cfg.EffectiveBlockSize(),
		seed,
		participantCount,
	)
}
