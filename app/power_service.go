package app

import (
	"context"
	"fmt"
	"math"

	"gotrial/adapters/randomization"
	"gotrial/adapters/samplesize"
	"gotrial/domain/design"
	"gotrial/internal"
	"gotrial/internal/errors"
	"gotrial/internal/metrics"
	"gotrial/ports"
)

// PowerService sizes a study design and splits the total across its arms
type PowerService struct {
	calculator ports.SampleSizePort
	metrics    *metrics.Metrics
	logger     *internal.Logger
}

func NewPowerService(calculator ports.SampleSizePort, m *metrics.Metrics, logger *internal.Logger) *PowerService {
	if calculator == nil {
		calculator = samplesize.NewCalculator()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PowerService{
		calculator: calculator,
		metrics:    m,
		logger:     logger.With("power"),
	}
}

// Calculate runs the calculator and records the outcome
func (s *PowerService) Calculate(ctx context.Context, req design.SampleSizeRequest) (int, error) {
	n, err := s.calculator.Calculate(ctx, req)
	s.metrics.RecordSampleSize(string(req.DesignType), n, err)
	if err != nil {
		s.metrics.RecordError(errors.GetCode(err))
	}
	return n, err
}

// Analyze sizes d for req. An empty request design type takes the design's type.
//
// Arm targets split the total by the randomization ratio, rounding each arm up.
// Achieved power is evaluated for the smallest arm after dropout.
func (s *PowerService) Analyze(ctx context.Context, d design.StudyDesign, req design.SampleSizeRequest) (*design.PowerAnalysisSummary, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if req.DesignType == "" {
		req.DesignType = d.Type
	}
	req = req.WithDefaults()

	total, err := s.Calculate(ctx, req)
	if err != nil {
		return nil, err
	}

	reference, err := samplesize.NormalApproximation(req)
	if err != nil {
		return nil, err
	}

	summary := &design.PowerAnalysisSummary{
		Request:    req,
		SampleSize: total,
		Reference:  reference,
	}

	cfg := d.EffectiveConfig()
	ratio := cfg.EffectiveRatio()
	shares := float64(cfg.TotalRatio())
	dropout := 0.0
	if req.AdditionalParams.DropoutRate != nil {
		dropout = *req.AdditionalParams.DropoutRate
	}

	smallest := math.MaxInt
	for i, arm := range d.Arms {
		target := int(math.Ceil(float64(total) * float64(ratio[i]) / shares))
		summary.ArmTargets = append(summary.ArmTargets, design.ArmTarget{
			ArmID:   arm.ID,
			ArmName: arm.Name,
			Target:  target,
		})
		if evaluable := int(math.Floor(float64(target) * (1 - dropout))); evaluable < smallest {
			smallest = evaluable
		}
	}
	summary.AchievedPower = samplesize.AchievedPower(req.EffectSize, smallest, samplesize.AdjustedAlpha(req))

	summary.Notes = s.notes(d, req, summary)
	return summary, nil
}

func (s *PowerService) notes(d design.StudyDesign, req design.SampleSizeRequest, summary *design.PowerAnalysisSummary) []string {
	var notes []string
	if method, err := design.ParseMethod(string(d.Randomization.Method)); err == nil {
		if resolution := randomization.Resolve(method); resolution.FellBack {
			notes = append(notes, resolution.String())
		}
	}
	if req.AdditionalParams.DropoutRate != nil && *req.AdditionalParams.DropoutRate > 0 {
		notes = append(notes, fmt.Sprintf("total inflated for %.0f%% dropout", *req.AdditionalParams.DropoutRate*100))
	}
	if req.AdditionalParams.MultipleComparisons {
		notes = append(notes, fmt.Sprintf("multiple comparisons: size inflated by %.1f, reference alpha split over %d comparisons",
			samplesize.MultipleComparisonsInflation, req.ComparisonCount()))
	}
	if summary.AchievedPower < req.Power {
		notes = append(notes, fmt.Sprintf("achieved power %.3f is below the requested %.2f under the normal approximation",
			summary.AchievedPower, req.Power))
	}
	return notes
}
