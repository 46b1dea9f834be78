package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/horizon0210/PID-Controller-With-FPGA/analysis"
	"github.com/horizon0210/PID-Controller-With-FPGA/datarecording"
)

var analyzeOpts = analysis.DefaultStepOptions()

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Print the step-response metrics of a recorded run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyzeRecording(cmd.Context(), args[0], analyzeOpts,
			cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	f := analyzeCmd.Flags()
	f.Float64Var(&analyzeOpts.Band, "band", analyzeOpts.Band,
		"Settling band as a fraction of the step.")
	f.Float64Var(&analyzeOpts.SteadyFraction, "steady", analyzeOpts.SteadyFraction,
		"Trailing fraction of the run treated as steady state.")
	f.BoolVar(&analyzeOpts.UseSpeed, "true-speed", false,
		"Analyze the true shaft speed instead of the measured one.")
}

func analyzeRecording(
	ctx context.Context,
	file string,
	opts analysis.StepOptions,
	w io.Writer,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	r, err := datarecording.NewReader(file)
	if err != nil {
		return err
	}
	defer r.Close()

	points, target, err := analysis.LoadResponse(ctx, r)
	if err != nil {
		return err
	}

	m, err := analysis.StepResponse(points, target, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, m)

	return nil
}
