package randomization

import (
	"gotrial/adapters/rng"
	"gotrial/ports"
)

// simpleSequence draws every participant independently by ratio weight
func simpleSequence(ratio []int, total, n int, src ports.RandomSource) []int {
	arms := make([]int, n)
	for i := range arms {
		arms[i] = rng.WeightedSelect(ratio, total, src)
	}
	return arms
}

// blockSequence concatenates ceil(n/blockSize) shuffled blocks and trims the last one
func blockSequence(ratio []int, total, blockSize, n int, src ports.RandomSource) []int {
	arms := make([]int, 0, n)
	for len(arms) < n {
		block := buildBlock(ratio, total, blockSize, src)
		remaining := n - len(arms)
		if remaining < len(block) {
			block = block[:remaining]
		}
		arms = append(arms, block...)
	}
	return arms
}

// buildBlock seeds arm i with floor(ratio[i]*blockSize/total) slots in ratio
// order, pads any remainder by weighted draw, then shuffles.
func buildBlock(ratio []int, total, blockSize int, src ports.RandomSource) []int {
	block := make([]int, 0, blockSize)
	for arm, share := range ratio {
		for k := 0; k < blockQuota(share, total, blockSize); k++ {
			block = append(block, arm)
		}
	}
	for len(block) < blockSize {
		block = append(block, rng.WeightedSelect(ratio, total, src))
	}
	rng.Shuffle(block, src)
	return block
}

// blockQuota is the guaranteed count of an arm in a complete block
func blockQuota(share, total, blockSize int) int {
	return share * blockSize / total
}
