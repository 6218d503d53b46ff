package rng

import (
	"time"
)

// ClockSeedSource derives seeds from wall-clock milliseconds
type ClockSeedSource struct {
	now func() time.Time
}

// NewClockSeedSource creates a seed source backed by time.Now
func NewClockSeedSource() *ClockSeedSource {
	return &ClockSeedSource{now: time.Now}
}

// NextSeed returns the current Unix time in milliseconds
func (s *ClockSeedSource) NextSeed() int64 {
	return s.now().UnixMilli()
}

// FixedSeedSource always returns the same seed
type FixedSeedSource struct {
	Seed int64
}

// NextSeed returns the fixed seed
func (s FixedSeedSource) NextSeed() int64 {
	return s.Seed
}

// DeriveSeed mixes keys into a base seed so that each key gets its own
// reproducible stream. Uses djb2 over each key.
func DeriveSeed(base int64, keys ...string) int64 {
	seed := base
	for _, key := range keys {
		if key != "" {
			seed += int64(hashString(key))
		}
	}
	return seed
}

func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c)
	}
	return hash
}
