package design

import (
	"fmt"

	"gotrial/domain/core"
)

// StudyDesign is the aggregate the orchestration layer hands to the core.
// The core reads it and never mutates or persists it.
type StudyDesign struct {
	ID                core.DesignID         `json:"id" yaml:"id"`
	StudyID           core.StudyID          `json:"study_id" yaml:"study_id"`
	Type              DesignType            `json:"type" yaml:"type"`
	Arms              []StudyArm            `json:"arms" yaml:"arms"`
	Randomization     RandomizationConfig   `json:"randomization" yaml:"randomization"`
	Blinding          Blinding              `json:"blinding,omitempty" yaml:"blinding,omitempty"`
	PrimaryOutcomes   []Outcome             `json:"primary_outcomes,omitempty" yaml:"primary_outcomes,omitempty"`
	SecondaryOutcomes []Outcome             `json:"secondary_outcomes,omitempty" yaml:"secondary_outcomes,omitempty"`
	PowerAnalysis     *PowerAnalysisSummary `json:"power_analysis,omitempty" yaml:"-"`
}

// Validate checks arms and their agreement with the randomization ratio
func (d StudyDesign) Validate() error {
	if core.ID(d.ID).IsEmpty() {
		return core.NewDesignError("id", "cannot be empty")
	}
	if len(d.Arms) == 0 {
		return core.NewDesignError("arms", "at least one arm is required")
	}
	seen := make(map[core.ArmID]bool, len(d.Arms))
	for _, arm := range d.Arms {
		if err := arm.Validate(); err != nil {
			return err
		}
		if seen[arm.ID] {
			return core.NewDesignError("arms", fmt.Sprintf("duplicate arm id %s", arm.ID))
		}
		seen[arm.ID] = true
	}
	if d.Randomization.Ratio != nil && len(d.Randomization.Ratio) != len(d.Arms) {
		return core.NewDesignError("randomization.ratio",
			fmt.Sprintf("has %d entries for %d arms", len(d.Randomization.Ratio), len(d.Arms)))
	}
	return d.Randomization.Validate()
}

// EffectiveConfig returns the randomization config with an absent ratio expanded to
// one share per arm, so a three-arm design defaults to 1:1:1 rather than 1:1.
func (d StudyDesign) EffectiveConfig() RandomizationConfig {
	cfg := d.Randomization
	if cfg.Ratio == nil && len(d.Arms) > 0 {
		cfg.Ratio = make([]int, len(d.Arms))
		for i := range cfg.Ratio {
			cfg.Ratio[i] = 1
		}
	}
	return cfg
}

// Arm returns the arm at index, if any
func (d StudyDesign) Arm(index int) (StudyArm, bool) {
	if index < 0 || index >= len(d.Arms) {
		return StudyArm{}, false
	}
	return d.Arms[index], true
}
