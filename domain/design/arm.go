package design

import (
	"fmt"

	"gotrial/domain/core"
)

// ArmKind classifies an allocation group
type ArmKind string

const (
	ArmExperimental ArmKind = "experimental"
	ArmControl      ArmKind = "control"
	ArmPlacebo      ArmKind = "placebo"
	ArmStandardCare ArmKind = "standard_care"
)

// IsKnown reports whether the kind is one of the defined arm kinds
func (k ArmKind) IsKnown() bool {
	switch k {
	case ArmExperimental, ArmControl, ArmPlacebo, ArmStandardCare:
		return true
	}
	return false
}

// StudyArm is one allocation group within a study.
// CurrentSize is owned by the orchestration layer; the engine never reads or writes it.
type StudyArm struct {
	ID          core.ArmID `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Kind        ArmKind    `json:"kind" yaml:"kind"`
	TargetSize  int        `json:"target_size" yaml:"target_size"`
	CurrentSize int        `json:"current_size" yaml:"current_size"`
}

// Validate checks the arm's own fields
func (a StudyArm) Validate() error {
	if core.ID(a.ID).IsEmpty() {
		return core.NewDesignError("arm.id", "cannot be empty")
	}
	if !a.Kind.IsKnown() {
		return core.NewDesignError(fmt.Sprintf("arm %s kind", a.ID), fmt.Sprintf("unknown kind %q", a.Kind))
	}
	if a.TargetSize < 0 || a.CurrentSize < 0 {
		return core.NewDesignError(fmt.Sprintf("arm %s size", a.ID), "sizes must be >= 0")
	}
	return nil
}

// Blinding describes who is masked to allocation
type Blinding string

const (
	BlindingOpen   Blinding = "open"
	BlindingSingle Blinding = "single"
	BlindingDouble Blinding = "double"
	BlindingTriple Blinding = "triple"
)

// Outcome is a measured study endpoint
type Outcome struct {
	Name      string `json:"name" yaml:"name"`
	Measure   string `json:"measure,omitempty" yaml:"measure,omitempty"`
	Timepoint string `json:"timepoint,omitempty" yaml:"timepoint,omitempty"`
}
