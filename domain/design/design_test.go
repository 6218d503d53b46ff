package design

import (
	"errors"
	"math"
	"testing"

	"gotrial/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func equalShares(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func TestRandomizationConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  RandomizationConfig
		wantErr bool
	}{
		{"absent ratio defaults", RandomizationConfig{Method: MethodBlock}, false},
		{"empty method is simple", RandomizationConfig{Ratio: []int{2, 1}}, false},
		{"explicit empty ratio", RandomizationConfig{Method: MethodSimple, Ratio: []int{}}, true},
		{"zero ratio element", RandomizationConfig{Method: MethodSimple, Ratio: []int{1, 0}}, true},
		{"negative ratio element", RandomizationConfig{Method: MethodSimple, Ratio: []int{-1, 1}}, true},
		{"zero block size", RandomizationConfig{Method: MethodBlock, BlockSize: []int{0}}, true},
		{"block size at max", RandomizationConfig{Method: MethodBlock, BlockSize: []int{MaxBlockSize}}, false},
		{"block size over max", RandomizationConfig{Method: MethodBlock, BlockSize: []int{MaxBlockSize + 1}}, true},
		{"huge block size", RandomizationConfig{Method: MethodBlock, BlockSize: []int{200_000_000}}, true},
		{"ratio element over max", RandomizationConfig{Method: MethodSimple, Ratio: []int{MaxRatioElement + 1, 1}}, true},
		{"ratio sum would overflow", RandomizationConfig{Method: MethodSimple, Ratio: []int{math.MaxInt, 1}}, true},
		{"too many arms", RandomizationConfig{Method: MethodSimple, Ratio: equalShares(MaxArms + 1)}, true},
		{"unknown method", RandomizationConfig{Method: "RANDOM_WALK"}, true},
		{"lowercase method", RandomizationConfig{Method: "block", BlockSize: []int{6}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, core.ErrInvalidConfiguration))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRandomizationConfig_Defaults(t *testing.T) {
	cfg := RandomizationConfig{}
	assert.Equal(t, []int{1, 1}, cfg.EffectiveRatio())
	assert.Equal(t, 4, cfg.EffectiveBlockSize())
	assert.Equal(t, 2, cfg.TotalRatio())

	cfg = RandomizationConfig{Ratio: []int{2, 1}, BlockSize: []int{6, 9}}
	assert.Equal(t, 6, cfg.EffectiveBlockSize())
	assert.Equal(t, 3, cfg.TotalRatio())
}

func TestRandomizationConfig_WithSeedCopies(t *testing.T) {
	cfg := RandomizationConfig{Method: MethodBlock, Ratio: []int{1, 1}}
	pinned := cfg.WithSeed(7)
	pinned.Ratio[0] = 9

	require.NotNil(t, pinned.Seed)
	assert.Equal(t, int64(7), *pinned.Seed)
	assert.Nil(t, cfg.Seed)
	assert.Equal(t, 1, cfg.Ratio[0])
}

func TestResolution_Notice(t *testing.T) {
	assert.NoError(t, Applied(MethodBlock).Notice())
	assert.NoError(t, FellBackTo(MethodStratified, MethodBlock, "no covariates").Notice())

	notice := FellBackTo(MethodCluster, MethodSimple, "not implemented").Notice()
	require.Error(t, notice)
	assert.True(t, errors.Is(notice, core.ErrUnsupportedMethod))
}

func TestSampleSizeRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     SampleSizeRequest
		wantErr error
	}{
		{"valid defaults", SampleSizeRequest{EffectSize: 0.5, DesignType: DesignRCT}, nil},
		{"zero effect", SampleSizeRequest{EffectSize: 0}, core.ErrInvalidEffectSize},
		{"negative effect", SampleSizeRequest{EffectSize: -0.2}, core.ErrInvalidEffectSize},
		{"dropout one", SampleSizeRequest{EffectSize: 0.5, AdditionalParams: AdditionalParams{DropoutRate: floatPtr(1)}}, core.ErrInvalidDropoutRate},
		{"dropout negative", SampleSizeRequest{EffectSize: 0.5, AdditionalParams: AdditionalParams{DropoutRate: floatPtr(-0.1)}}, core.ErrInvalidDropoutRate},
		{"dropout zero", SampleSizeRequest{EffectSize: 0.5, AdditionalParams: AdditionalParams{DropoutRate: floatPtr(0)}}, nil},
		{"alpha out of range", SampleSizeRequest{EffectSize: 0.5, Alpha: 1.5}, core.ErrInvalidConfiguration},
		{"zero factors", SampleSizeRequest{EffectSize: 0.5, DesignType: DesignFactorial, AdditionalParams: AdditionalParams{Factors: intPtr(0)}}, core.ErrInvalidConfiguration},
		{"max factors", SampleSizeRequest{EffectSize: 0.5, DesignType: DesignFactorial, AdditionalParams: AdditionalParams{Factors: intPtr(MaxFactors)}}, nil},
		{"too many factors", SampleSizeRequest{EffectSize: 0.5, DesignType: DesignFactorial, AdditionalParams: AdditionalParams{Factors: intPtr(40)}}, core.ErrInvalidConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.WithDefaults().Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestStudyDesign_Validate(t *testing.T) {
	base := StudyDesign{
		ID: "design-1",
		Arms: []StudyArm{
			{ID: "arm-a", Name: "Training", Kind: ArmExperimental},
			{ID: "arm-b", Name: "Control", Kind: ArmControl},
		},
		Randomization: RandomizationConfig{Method: MethodBlock, Ratio: []int{1, 1}},
	}
	require.NoError(t, base.Validate())

	mismatched := base
	mismatched.Randomization.Ratio = []int{1, 1, 1}
	assert.True(t, errors.Is(mismatched.Validate(), core.ErrInvalidDesign))

	duplicate := base
	duplicate.Arms = []StudyArm{base.Arms[0], base.Arms[0]}
	assert.True(t, errors.Is(duplicate.Validate(), core.ErrInvalidDesign))

	badKind := base
	badKind.Arms = []StudyArm{{ID: "arm-x", Kind: "sham"}, base.Arms[1]}
	assert.True(t, errors.Is(badKind.Validate(), core.ErrInvalidDesign))
}

func TestStudyDesign_EffectiveConfigExpandsRatio(t *testing.T) {
	d := StudyDesign{
		ID: "design-3",
		Arms: []StudyArm{
			{ID: "a", Kind: ArmExperimental},
			{ID: "b", Kind: ArmExperimental},
			{ID: "c", Kind: ArmPlacebo},
		},
		Randomization: RandomizationConfig{Method: MethodBlock},
	}
	assert.Equal(t, []int{1, 1, 1}, d.EffectiveConfig().Ratio)
	assert.Nil(t, d.Randomization.Ratio)
}
