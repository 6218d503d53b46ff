package samplesize

import (
	"context"
	"fmt"
	"math"

	"gotrial/domain/core"
	"gotrial/domain/design"
)

// Design multipliers applied to the base size
const (
	rctMultiplier       = 2.0
	crossoverMultiplier = 0.6
	adaptiveMultiplier  = 0.7

	// Flat inflation standing in for a multiple-comparisons correction
	MultipleComparisonsInflation = 1.2

	// Numerator of the 16/d^2 rule (alpha 0.05, power 0.80, two-sided)
	baseNumerator = 16.0

	// Absorbs float noise such as 100.00000000000001 before rounding up
	ceilTolerance = 1e-9
)

// Calculator computes minimum sample sizes. It is stateless.
type Calculator struct{}

// NewCalculator creates a sample-size calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate returns the minimum total sample size for req, always >= 1.
//
// base = ceil(16/d^2), then the design multiplier, then the multiple-comparisons
// inflation, then dropout inflation 1/(1-d). Alpha and power are validated but do
// not move the base; NormalApproximation is the sensitive alternative.
func (c *Calculator) Calculate(ctx context.Context, req design.SampleSizeRequest) (int, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return 0, err
	}

	base := BaseSize(req.EffectSize)
	if !representable(base) {
		return 0, fmt.Errorf("%w: effect size %v yields a non-finite sample size", core.ErrInvalidEffectSize, req.EffectSize)
	}

	n := base * DesignMultiplier(req)
	if req.AdditionalParams.MultipleComparisons {
		n *= MultipleComparisonsInflation
	}
	if !representable(n) {
		field := "design_type"
		if req.DesignType == design.DesignFactorial {
			field = "factors"
		}
		return 0, core.NewConfigurationError(field, fmt.Sprintf("adjustments for %s push the sample size past %d", req.DesignType, math.MaxInt32))
	}
	if d := req.AdditionalParams.DropoutRate; d != nil {
		n /= 1 - *d
		if !representable(n) {
			return 0, fmt.Errorf("%w: dropout %v pushes the sample size past %d", core.ErrInvalidDropoutRate, *d, math.MaxInt32)
		}
	}

	return toSampleSize(n), nil
}

// BaseSize is ceil(16/d^2)
func BaseSize(effectSize float64) float64 {
	return ceilTolerant(baseNumerator / (effectSize * effectSize))
}

// DesignMultiplier returns the adjustment for req's design type
func DesignMultiplier(req design.SampleSizeRequest) float64 {
	switch req.DesignType {
	case design.DesignRCT:
		return rctMultiplier
	case design.DesignCrossover:
		return crossoverMultiplier
	case design.DesignFactorial:
		return math.Pow(2, float64(req.FactorCount()-1))
	case design.DesignAdaptive:
		return adaptiveMultiplier
	default:
		return 1
	}
}

func ceilTolerant(x float64) float64 {
	return math.Ceil(x - ceilTolerance)
}

func representable(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0) && n <= math.MaxInt32
}

// toSampleSize rounds a representable size up, never below 1
func toSampleSize(n float64) int {
	size := int(ceilTolerant(n))
	if size < 1 {
		size = 1
	}
	return size
}
