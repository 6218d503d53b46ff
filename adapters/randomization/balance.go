package randomization

import (
	"math"

	"gotrial/domain/design"

	"github.com/montanaflynn/stats"
)

// Balance measures how a sequence tracks the configured ratio
func Balance(seq *design.Sequence, cfg design.RandomizationConfig) design.BalanceReport {
	ratio := cfg.EffectiveRatio()
	total := float64(cfg.TotalRatio())
	n := len(seq.Assignments)

	report := design.BalanceReport{
		ArmCounts:      seq.ArmCounts(len(ratio)),
		ExpectedCounts: make([]float64, len(ratio)),
	}
	for i, share := range ratio {
		report.ExpectedCounts[i] = float64(n) * float64(share) / total
		dev := math.Abs(float64(report.ArmCounts[i]) - report.ExpectedCounts[i])
		if dev > report.MaxDeviation {
			report.MaxDeviation = dev
		}
	}

	if seq.Resolution.Applied == design.MethodBlock {
		report.CompleteBlocks, report.BalancedBlocks = blockBalance(seq, ratio, cfg.TotalRatio(), cfg.EffectiveBlockSize())
	}

	imbalance := prefixImbalance(seq, ratio, total)
	if len(imbalance) == 0 {
		return report
	}
	report.PrefixImbalanceMean, _ = stats.Mean(imbalance)
	report.PrefixImbalanceMax, _ = stats.Max(imbalance)
	report.PrefixImbalanceStdDev, _ = stats.StandardDeviation(imbalance)
	return report
}

// blockBalance counts complete blocks and those meeting every arm quota
func blockBalance(seq *design.Sequence, ratio []int, total, blockSize int) (int, int) {
	complete := len(seq.Assignments) / blockSize
	balanced := 0
	for b := 0; b < complete; b++ {
		counts := make([]int, len(ratio))
		for _, a := range seq.Assignments[b*blockSize : (b+1)*blockSize] {
			if a.ArmIndex >= 0 && a.ArmIndex < len(counts) {
				counts[a.ArmIndex]++
			}
		}
		ok := true
		for arm, share := range ratio {
			if counts[arm] < blockQuota(share, total, blockSize) {
				ok = false
				break
			}
		}
		if ok {
			balanced++
		}
	}
	return complete, balanced
}

// prefixImbalance returns, for every prefix length k, the largest per-arm
// distance between the observed count and k*share/total
func prefixImbalance(seq *design.Sequence, ratio []int, total float64) stats.Float64Data {
	out := make(stats.Float64Data, 0, len(seq.Assignments))
	counts := make([]int, len(ratio))
	for k, a := range seq.Assignments {
		if a.ArmIndex >= 0 && a.ArmIndex < len(counts) {
			counts[a.ArmIndex]++
		}
		worst := 0.0
		for arm, share := range ratio {
			expected := float64(k+1) * float64(share) / total
			if dev := math.Abs(float64(counts[arm]) - expected); dev > worst {
				worst = dev
			}
		}
		out = append(out, worst)
	}
	return out
}
