package design

import (
	"fmt"
	"math"
	"strings"

	"gotrial/domain/core"
)

// DesignType is the study design family used for sample-size adjustment
type DesignType string

const (
	DesignObservational DesignType = "OBSERVATIONAL"
	DesignCaseControl   DesignType = "CASE_CONTROL"
	DesignCohort        DesignType = "COHORT"
	DesignRCT           DesignType = "RCT"
	DesignCrossover     DesignType = "CROSSOVER"
	DesignFactorial     DesignType = "FACTORIAL"
	DesignAdaptive      DesignType = "ADAPTIVE"
	DesignNOf1          DesignType = "N_OF_1"
)

// Conventional defaults for the request
const (
	DefaultAlpha   = 0.05
	DefaultPower   = 0.8
	DefaultFactors = 2

	// MaxFactors bounds the 2^(k-1) factorial multiplier
	MaxFactors = 16
)

// ParseDesignType normalizes a design type name
func ParseDesignType(s string) (DesignType, error) {
	d := DesignType(strings.ToUpper(strings.TrimSpace(s)))
	if !d.IsKnown() {
		return "", core.NewConfigurationError("design_type", fmt.Sprintf("unknown design type %q", s))
	}
	return d, nil
}

// IsKnown reports whether the design type is part of the enumeration
func (d DesignType) IsKnown() bool {
	switch d {
	case DesignObservational, DesignCaseControl, DesignCohort, DesignRCT,
		DesignCrossover, DesignFactorial, DesignAdaptive, DesignNOf1:
		return true
	}
	return false
}

// AdditionalParams carries optional design-specific adjustments.
// Pointer fields distinguish "absent" from an explicit zero.
type AdditionalParams struct {
	Factors             *int     `json:"factors,omitempty" yaml:"factors,omitempty"`
	MultipleComparisons bool     `json:"multiple_comparisons,omitempty" yaml:"multiple_comparisons,omitempty"`
	Comparisons         *int     `json:"comparisons,omitempty" yaml:"comparisons,omitempty"`
	DropoutRate         *float64 `json:"dropout_rate,omitempty" yaml:"dropout_rate,omitempty"`
}

// SampleSizeRequest is the immutable input to the calculator
type SampleSizeRequest struct {
	EffectSize       float64          `json:"effect_size" yaml:"effect_size"`
	Alpha            float64          `json:"alpha,omitempty" yaml:"alpha,omitempty"`
	Power            float64          `json:"power,omitempty" yaml:"power,omitempty"`
	DesignType       DesignType       `json:"design_type" yaml:"design_type"`
	AdditionalParams AdditionalParams `json:"additional_params,omitempty" yaml:"additional_params,omitempty"`
}

// WithDefaults fills alpha and power when they are left at zero
func (r SampleSizeRequest) WithDefaults() SampleSizeRequest {
	if r.Alpha == 0 {
		r.Alpha = DefaultAlpha
	}
	if r.Power == 0 {
		r.Power = DefaultPower
	}
	return r
}

// FactorCount returns the factorial factor count, defaulting to 2
func (r SampleSizeRequest) FactorCount() int {
	if r.AdditionalParams.Factors == nil {
		return DefaultFactors
	}
	return *r.AdditionalParams.Factors
}

// ComparisonCount returns the number of comparisons, at least 1
func (r SampleSizeRequest) ComparisonCount() int {
	if r.AdditionalParams.Comparisons == nil || *r.AdditionalParams.Comparisons < 1 {
		return 1
	}
	return *r.AdditionalParams.Comparisons
}

// Validate checks the request after defaults have been applied
func (r SampleSizeRequest) Validate() error {
	if math.IsNaN(r.EffectSize) || math.IsInf(r.EffectSize, 0) || r.EffectSize <= 0 {
		return core.NewEffectSizeError(r.EffectSize)
	}
	if d := r.AdditionalParams.DropoutRate; d != nil {
		if math.IsNaN(*d) || *d < 0 || *d >= 1 {
			return core.NewDropoutRateError(*d)
		}
	}
	if r.Alpha <= 0 || r.Alpha >= 1 {
		return core.NewConfigurationError("alpha", fmt.Sprintf("must be in (0,1), got %v", r.Alpha))
	}
	if r.Power <= 0 || r.Power >= 1 {
		return core.NewConfigurationError("power", fmt.Sprintf("must be in (0,1), got %v", r.Power))
	}
	if r.DesignType != "" && !r.DesignType.IsKnown() {
		return core.NewConfigurationError("design_type", fmt.Sprintf("unknown design type %q", r.DesignType))
	}
	if f := r.AdditionalParams.Factors; f != nil && (*f < 1 || *f > MaxFactors) {
		return core.NewConfigurationError("factors", fmt.Sprintf("must be in [1, %d], got %d", MaxFactors, *f))
	}
	return nil
}
