package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"gotrial/adapters/randomization"
	"gotrial/adapters/rng"
	"gotrial/adapters/samplesize"
	"gotrial/app"
	"gotrial/domain/design"
	"gotrial/internal"
	"gotrial/internal/testkit"

	"gopkg.in/yaml.v3"
	"github.com/spf13/cobra"
)

// planFile is the YAML layout read by the plan command
type planFile struct {
	Design       design.StudyDesign       `yaml:"design"`
	SampleSize   design.SampleSizeRequest `yaml:"sample_size"`
	Participants int                      `yaml:"participants"`
}

func loadPlan(path string) (*planFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read design file: %w", err)
	}
	var plan planFile
	if err := yaml.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse design file %s: %w", path, err)
	}
	return &plan, nil
}

func newPlanCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan [design.yaml]",
		Short: "Size a study design and generate its allocation table",
		Long: `Read a study design from YAML, compute its sample size and per-arm targets,
then generate the allocation table. participants defaults to the computed sample size.

Example: gotrial plan trial.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(args[0])
			if err != nil {
				return err
			}

			logger := internal.NewLogger(internal.LogLevelWarn)
			kit := testkit.NewTestKit()
			seeds := rng.NewClockSeedSource()
			engine := randomization.NewEngine(kit.RNGAdapter(), seeds)
			power := app.NewPowerService(samplesize.NewCalculator(), nil, logger)
			allocations := app.NewAllocationService(engine, kit.AllocationRepository(), seeds, nil, logger, 1)

			summary, err := power.Analyze(cmd.Context(), plan.Design, plan.SampleSize)
			if err != nil {
				return err
			}

			participants := plan.Participants
			if participants == 0 {
				participants = summary.SampleSize
			}
			record, err := allocations.Allocate(cmd.Context(), plan.Design, participants)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]interface{}{
					"power_analysis": summary,
					"allocation":     record,
				})
			}

			fmt.Fprintf(out, "Design %s (%s): sample size %d\n", plan.Design.ID, summary.Request.DesignType, summary.SampleSize)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ARM\tNAME\tTARGET\tALLOCATED")
			for i, target := range summary.ArmTargets {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", target.ArmID, target.ArmName, target.Target, record.Balance.ArmCounts[i])
			}
			tw.Flush()
			fmt.Fprintf(out, "Achieved power: %.3f\n", summary.AchievedPower)
			for _, note := range summary.Notes {
				fmt.Fprintf(out, "Note: %s\n", note)
			}
			fmt.Fprintf(out, "Allocation %s: method %s, seed %d, fingerprint %s\n",
				record.ID, record.Resolution, record.Seed, record.Fingerprint)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
