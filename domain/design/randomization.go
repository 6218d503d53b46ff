package design

import (
	"fmt"
	"strings"

	"gotrial/domain/core"
)

// Method is a randomization scheme
type Method string

const (
	MethodSimple            Method = "SIMPLE"
	MethodBlock             Method = "BLOCK"
	MethodStratified        Method = "STRATIFIED"
	MethodMinimization      Method = "MINIMIZATION"
	MethodCluster           Method = "CLUSTER"
	MethodCovariateAdaptive Method = "COVARIATE_ADAPTIVE"
)

// Defaults applied when the config leaves a field absent
const (
	DefaultBlockSize = 4
)

// Upper bounds on config fields. A block is built in full before the final
// one is trimmed, so block size bounds the work of every sequence.
const (
	MaxBlockSize    = 1000
	MaxRatioElement = 1000
	MaxArms         = 100
)

// DefaultRatio is the 1:1 allocation used when no ratio is given
func DefaultRatio() []int {
	return []int{1, 1}
}

// ParseMethod normalizes a method name. An empty name selects SIMPLE.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if m == "" {
		return MethodSimple, nil
	}
	if !m.IsKnown() {
		return "", core.NewConfigurationError("method", fmt.Sprintf("unknown method %q", s))
	}
	return m, nil
}

// IsKnown reports whether the method is part of the enumeration
func (m Method) IsKnown() bool {
	switch m {
	case MethodSimple, MethodBlock, MethodStratified, MethodMinimization, MethodCluster, MethodCovariateAdaptive:
		return true
	}
	return false
}

// RandomizationConfig is the immutable input to the engine.
//
// A nil Ratio means "absent" and resolves to 1:1; a non-nil empty Ratio is rejected.
// Seed is optional; when nil the engine draws one from its SeedSource and reports it.
type RandomizationConfig struct {
	Method                Method   `json:"method" yaml:"method"`
	Ratio                 []int    `json:"ratio,omitempty" yaml:"ratio,omitempty"`
	BlockSize             []int    `json:"block_size,omitempty" yaml:"block_size,omitempty"`
	StratificationFactors []string `json:"stratification_factors,omitempty" yaml:"stratification_factors,omitempty"`
	Seed                  *int64   `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// EffectiveRatio returns the ratio with the 1:1 default applied
func (c RandomizationConfig) EffectiveRatio() []int {
	if c.Ratio == nil {
		return DefaultRatio()
	}
	return c.Ratio
}

// EffectiveBlockSize returns the first block size, or the default
func (c RandomizationConfig) EffectiveBlockSize() int {
	if len(c.BlockSize) == 0 {
		return DefaultBlockSize
	}
	return c.BlockSize[0]
}

// TotalRatio sums the effective ratio
func (c RandomizationConfig) TotalRatio() int {
	total := 0
	for _, r := range c.EffectiveRatio() {
		total += r
	}
	return total
}

// ArmCount is the number of arms implied by the ratio
func (c RandomizationConfig) ArmCount() int {
	return len(c.EffectiveRatio())
}

// WithSeed returns a copy of the config pinned to seed
func (c RandomizationConfig) WithSeed(seed int64) RandomizationConfig {
	out := c
	out.Seed = &seed
	out.Ratio = cloneInts(c.Ratio)
	out.BlockSize = cloneInts(c.BlockSize)
	if c.StratificationFactors != nil {
		out.StratificationFactors = append([]string{}, c.StratificationFactors...)
	}
	return out
}

func cloneInts(in []int) []int {
	if in == nil {
		return nil
	}
	out := make([]int, len(in))
	copy(out, in)
	return out
}

// Validate checks the configuration and returns ErrInvalidConfiguration on failure
func (c RandomizationConfig) Validate() error {
	if _, err := ParseMethod(string(c.Method)); err != nil {
		return err
	}
	if c.Ratio != nil && len(c.Ratio) == 0 {
		return core.NewConfigurationError("ratio", "must not be empty")
	}
	if len(c.Ratio) > MaxArms {
		return core.NewConfigurationError("ratio", fmt.Sprintf("at most %d arms, got %d", MaxArms, len(c.Ratio)))
	}
	for i, r := range c.EffectiveRatio() {
		if r <= 0 || r > MaxRatioElement {
			return core.NewConfigurationError("ratio", fmt.Sprintf("element %d must be in [1, %d], got %d", i, MaxRatioElement, r))
		}
	}
	if len(c.BlockSize) > 0 {
		if bs := c.BlockSize[0]; bs <= 0 || bs > MaxBlockSize {
			return core.NewConfigurationError("block_size", fmt.Sprintf("must be in [1, %d], got %d", MaxBlockSize, bs))
		}
	}
	return nil
}

// Assignment maps one participant (1-based) to an arm index (0-based)
type Assignment struct {
	ParticipantID int `json:"participant_id"`
	ArmIndex      int `json:"arm_index"`
}

// Resolution records which algorithm actually produced a sequence.
// FellBack is set whenever Applied differs from Requested.
type Resolution struct {
	Requested Method `json:"requested"`
	Applied   Method `json:"applied"`
	FellBack  bool   `json:"fell_back"`
	Reason    string `json:"reason,omitempty"`
}

// Applied builds a resolution for a method that ran as asked
func Applied(m Method) Resolution {
	return Resolution{Requested: m, Applied: m}
}

// FellBackTo builds a resolution for an approximated method
func FellBackTo(requested, actual Method, reason string) Resolution {
	return Resolution{Requested: requested, Applied: actual, FellBack: true, Reason: reason}
}

// Notice returns ErrUnsupportedMethod when the requested method has no algorithm of
// its own, nil otherwise. STRATIFIED has a defined BLOCK contract and yields nil.
func (r Resolution) Notice() error {
	switch r.Requested {
	case MethodMinimization, MethodCluster, MethodCovariateAdaptive:
		return core.NewUnsupportedMethodError(string(r.Requested))
	}
	return nil
}

// String renders the resolution for logs
func (r Resolution) String() string {
	if !r.FellBack {
		return string(r.Applied)
	}
	return fmt.Sprintf("%s->%s (%s)", r.Requested, r.Applied, r.Reason)
}

// Sequence is the engine output for one call
type Sequence struct {
	Assignments []Assignment `json:"assignments"`
	Resolution  Resolution   `json:"resolution"`
	Seed        int64        `json:"seed"`
}

// ArmCounts tallies assignments per arm index
func (s Sequence) ArmCounts(arms int) []int {
	counts := make([]int, arms)
	for _, a := range s.Assignments {
		if a.ArmIndex >= 0 && a.ArmIndex < arms {
			counts[a.ArmIndex]++
		}
	}
	return counts
}
