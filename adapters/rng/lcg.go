package rng

// Linear congruential recurrence used for allocation sequences:
//
//	state' = (state*9301 + 49297) mod 233280
//	value  = state' / 233280
//
// The constants are part of the reproducibility contract. Changing them changes
// every sequence ever generated from a stored seed.
const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// Next advances state once and returns the value in [0,1) with the new state.
// state must already be reduced into [0, 233280).
func Next(state int64) (float64, int64) {
	next := (state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(next) / lcgModulus, next
}

// NormalizeSeed reduces any int64 seed into the generator's state space.
// Reduction happens before multiplication so large wall-clock seeds cannot overflow.
func NormalizeSeed(seed int64) int64 {
	state := seed % lcgModulus
	if state < 0 {
		state += lcgModulus
	}
	return state
}

// LCG is a stateful stream over Next. Not safe for concurrent use; each
// sequence generation owns its own instance.
type LCG struct {
	state int64
}

// NewLCG creates a stream starting from seed
func NewLCG(seed int64) *LCG {
	return &LCG{state: NormalizeSeed(seed)}
}

// Float64 returns the next value in [0,1)
func (g *LCG) Float64() float64 {
	var v float64
	v, g.state = Next(g.state)
	return v
}

// State returns the current internal state
func (g *LCG) State() int64 {
	return g.state
}
