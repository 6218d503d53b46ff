package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"gotrial/adapters/randomization"
	"gotrial/adapters/rng"
	"gotrial/adapters/samplesize"
	"gotrial/domain/design"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gotrial",
		Short:         "Allocation sequences and sample sizes for clinical study designs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRandomizeCmd(),
		newSampleSizeCmd(),
		newPlanCmd(),
	)
	return rootCmd
}

func newRandomizeCmd() *cobra.Command {
	var (
		method       string
		ratio        []int
		blockSize    []int
		strata       []string
		seed         int64
		participants int
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "randomize",
		Short: "Generate an allocation sequence",
		Long: `Generate a reproducible allocation sequence.

Without --seed the seed is taken from the clock and printed, so the run can be repeated.

Example: gotrial randomize --method BLOCK --ratio 2,1 --block-size 6 --participants 24 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := design.RandomizationConfig{
				Method:                design.Method(method),
				Ratio:                 ratio,
				BlockSize:             blockSize,
				StratificationFactors: strata,
			}
			if cmd.Flags().Changed("seed") {
				cfg = cfg.WithSeed(seed)
			}

			engine := randomization.NewEngine(rng.NewRNGAdapter(), rng.NewClockSeedSource())
			seq, err := engine.GenerateSequence(cmd.Context(), cfg, participants)
			if err != nil {
				return err
			}
			balance := randomization.Balance(seq, cfg)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]interface{}{
					"assignments": seq.Assignments,
					"resolution":  seq.Resolution,
					"seed":        seq.Seed,
					"balance":     balance,
				})
			}
			printSequence(out, seq, balance)
			return nil
		},
	}

	cmd.Flags().StringVar(&method, "method", string(design.MethodSimple), "SIMPLE, BLOCK, STRATIFIED, MINIMIZATION, CLUSTER or COVARIATE_ADAPTIVE")
	cmd.Flags().IntSliceVar(&ratio, "ratio", nil, "Allocation ratio, one positive weight per arm (default 1,1)")
	cmd.Flags().IntSliceVar(&blockSize, "block-size", nil, "Block size for BLOCK randomization (default 4)")
	cmd.Flags().StringSliceVar(&strata, "strata", nil, "Stratification factors (recorded only)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for a reproducible sequence")
	cmd.Flags().IntVar(&participants, "participants", 20, "Number of participants")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}

func newSampleSizeCmd() *cobra.Command {
	var (
		req         design.SampleSizeRequest
		designType  string
		factors     int
		comparisons int
		dropout     float64
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "sample-size",
		Short: "Compute the minimum total sample size",
		Long: `Compute the minimum total sample size for a standardized effect size.

Example: gotrial sample-size --effect-size 0.5 --design-type RCT --dropout 0.2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.DesignType = design.DesignType(strings.ToUpper(designType))
			if cmd.Flags().Changed("factors") {
				req.AdditionalParams.Factors = &factors
			}
			if cmd.Flags().Changed("comparisons") {
				req.AdditionalParams.Comparisons = &comparisons
			}
			if cmd.Flags().Changed("dropout") {
				req.AdditionalParams.DropoutRate = &dropout
			}

			n, err := samplesize.NewCalculator().Calculate(cmd.Context(), req)
			if err != nil {
				return err
			}
			reference, err := samplesize.NormalApproximation(req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]interface{}{
					"sample_size": n,
					"request":     req.WithDefaults(),
					"reference":   reference,
				})
			}
			fmt.Fprintf(out, "Sample size: %d\n", n)
			fmt.Fprintf(out, "Normal approximation (alpha %.4g, power %.2f): %d per group, %d total\n",
				reference.AdjustedAlpha, reference.Power, reference.PerGroup, reference.Total)
			return nil
		},
	}

	cmd.Flags().Float64Var(&req.EffectSize, "effect-size", 0, "Standardized effect size (Cohen's d), > 0")
	cmd.Flags().Float64Var(&req.Alpha, "alpha", design.DefaultAlpha, "Significance level")
	cmd.Flags().Float64Var(&req.Power, "power", design.DefaultPower, "Target power")
	cmd.Flags().StringVar(&designType, "design-type", string(design.DesignRCT), "Study design type")
	cmd.Flags().IntVar(&factors, "factors", design.DefaultFactors, "Factor count for FACTORIAL designs")
	cmd.Flags().BoolVar(&req.AdditionalParams.MultipleComparisons, "multiple-comparisons", false, "Inflate for multiple comparisons")
	cmd.Flags().IntVar(&comparisons, "comparisons", 1, "Comparison count for the alpha split")
	cmd.Flags().Float64Var(&dropout, "dropout", 0, "Expected dropout rate in [0,1)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	_ = cmd.MarkFlagRequired("effect-size")

	return cmd
}

func printSequence(out io.Writer, seq *design.Sequence, balance design.BalanceReport) {
	fmt.Fprintf(out, "Method: %s\n", seq.Resolution)
	if notice := seq.Resolution.Notice(); notice != nil {
		fmt.Fprintf(out, "Notice: %v\n", notice)
	}
	fmt.Fprintf(out, "Seed: %d\n\n", seq.Seed)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PARTICIPANT\tARM")
	for _, a := range seq.Assignments {
		fmt.Fprintf(tw, "%d\t%d\n", a.ParticipantID, a.ArmIndex)
	}
	tw.Flush()

	fmt.Fprintf(out, "\nArm counts: %v (expected %v)\n", balance.ArmCounts, formatFloats(balance.ExpectedCounts))
	if balance.CompleteBlocks > 0 {
		fmt.Fprintf(out, "Balanced blocks: %d/%d\n", balance.BalancedBlocks, balance.CompleteBlocks)
	}
}

func formatFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.1f", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
