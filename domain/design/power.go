package design

import (
	"gotrial/domain/core"
)

// ArmTarget is the enrollment target for one arm
type ArmTarget struct {
	ArmID   core.ArmID `json:"arm_id"`
	ArmName string     `json:"arm_name"`
	Target  int        `json:"target"`
}

// NormalApproximation is the alpha/power-sensitive two-sample reference size
type NormalApproximation struct {
	Alpha         float64 `json:"alpha"`
	AdjustedAlpha float64 `json:"adjusted_alpha"`
	Power         float64 `json:"power"`
	ZAlpha        float64 `json:"z_alpha"`
	ZBeta         float64 `json:"z_beta"`
	PerGroup      int     `json:"per_group"`
	Total         int     `json:"total"`
}

// PowerAnalysisSummary combines the calculator result with its derived views
type PowerAnalysisSummary struct {
	Request       SampleSizeRequest    `json:"request"`
	SampleSize    int                  `json:"sample_size"`
	ArmTargets    []ArmTarget          `json:"arm_targets,omitempty"`
	Reference     *NormalApproximation `json:"reference,omitempty"`
	AchievedPower float64              `json:"achieved_power"`
	Notes         []string             `json:"notes,omitempty"`
}
