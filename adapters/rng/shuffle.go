package rng

import (
	"gotrial/ports"
)

// Intn draws a uniform index in [0, n) from src
func Intn(src ports.RandomSource, n int) int {
	if n <= 1 {
		return 0
	}
	j := int(src.Float64() * float64(n))
	if j >= n {
		j = n - 1
	}
	return j
}

// Shuffle performs an in-place Fisher-Yates shuffle, walking from the last
// index down to 1 and swapping i with a uniform j in [0, i].
func Shuffle[T any](items []T, src ports.RandomSource) {
	for i := len(items) - 1; i > 0; i-- {
		j := Intn(src, i+1)
		items[i], items[j] = items[j], items[i]
	}
}

// WeightedSelect returns index k with probability weights[k]/totalWeight.
// Rounding at the upper boundary falls back to the last index.
func WeightedSelect(weights []int, totalWeight int, src ports.RandomSource) int {
	r := src.Float64() * float64(totalWeight)
	sum := 0.0
	for i, w := range weights {
		sum += float64(w)
		if r < sum {
			return i
		}
	}
	return len(weights) - 1
}
