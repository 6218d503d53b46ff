package samplesize

import (
	"fmt"
	"math"

	"gotrial/domain/core"
	"gotrial/domain/design"

	"gonum.org/v1/gonum/stat/distuv"
)

// NormalApproximation computes the two-sample normal-theory size that does
// respond to alpha and power:
//
//	n per group = 2 * ((z(1-a/2) + z(power)) / d)^2
//
// With multiple comparisons, alpha is Bonferroni-adjusted by the comparison count.
// Total covers two groups and is inflated for dropout like Calculate.
func NormalApproximation(req design.SampleSizeRequest) (*design.NormalApproximation, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	adjusted := AdjustedAlpha(req)
	zAlpha := distuv.UnitNormal.Quantile(1 - adjusted/2)
	zBeta := distuv.UnitNormal.Quantile(req.Power)

	perGroup := ceilTolerant(2 * math.Pow((zAlpha+zBeta)/req.EffectSize, 2))
	total := 2 * perGroup
	if d := req.AdditionalParams.DropoutRate; d != nil {
		total /= 1 - *d
	}

	if !representable(total) {
		return nil, fmt.Errorf("%w: effect size %v yields a non-finite sample size", core.ErrInvalidEffectSize, req.EffectSize)
	}
	perGroupSize, totalSize := toSampleSize(perGroup), toSampleSize(total)

	return &design.NormalApproximation{
		Alpha:         req.Alpha,
		AdjustedAlpha: adjusted,
		Power:         req.Power,
		ZAlpha:        zAlpha,
		ZBeta:         zBeta,
		PerGroup:      perGroupSize,
		Total:         totalSize,
	}, nil
}

// AdjustedAlpha applies a Bonferroni split when multiple comparisons are declared
func AdjustedAlpha(req design.SampleSizeRequest) float64 {
	alpha := req.WithDefaults().Alpha
	if req.AdditionalParams.MultipleComparisons {
		return alpha / float64(req.ComparisonCount())
	}
	return alpha
}

// AchievedPower is the two-sided two-sample power for perGroup evaluable
// participants per arm: Phi(d*sqrt(n/2) - z(1-a/2)).
func AchievedPower(effectSize float64, perGroup int, alpha float64) float64 {
	if perGroup <= 0 || effectSize <= 0 || alpha <= 0 || alpha >= 1 {
		return 0
	}
	zAlpha := distuv.UnitNormal.Quantile(1 - alpha/2)
	return distuv.UnitNormal.CDF(effectSize*math.Sqrt(float64(perGroup)/2) - zAlpha)
}
