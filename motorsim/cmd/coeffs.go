package cmd

import (
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/horizon0210/PID-Controller-With-FPGA/coeff"
	"github.com/horizon0210/PID-Controller-With-FPGA/ctrl"
	"github.com/horizon0210/PID-Controller-With-FPGA/regfile"
)

var (
	coeffGains     = coeff.DefaultGains()
	coeffLimit     float32
	coeffTargetRPM float32
	coeffReference bool
)

var coeffsCmd = &cobra.Command{
	Use:   "coeffs",
	Short: "Print the register values for a set of PID gains.",
	Long: "`coeffs --kp 0.25 --ki 0.08` derives the discrete coefficients " +
		"and prints what a driver writes into each parameter register.",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		k := coeff.Compute(coeffGains)
		if coeffReference {
			k = ctrl.ReferenceCoefficients()
		}

		k = coeff.WithLimit(k, coeffLimit)
		k = coeff.WithTargetRPM(k, coeffTargetRPM)

		printCoefficients(cmd.OutOrStdout(), k)
	},
}

func init() {
	rootCmd.AddCommand(coeffsCmd)

	f := coeffsCmd.Flags()
	f.Float64Var(&coeffGains.Kp, "kp", coeffGains.Kp, "Proportional gain.")
	f.Float64Var(&coeffGains.Ki, "ki", coeffGains.Ki, "Integral gain.")
	f.Float64Var(&coeffGains.Kd, "kd", coeffGains.Kd, "Derivative gain.")
	f.Float64Var(&coeffGains.N, "n", coeffGains.N, "Derivative filter factor.")
	f.Float64Var(&coeffGains.B, "b", coeffGains.B,
		"Setpoint weight of the proportional path.")
	f.Float64Var(&coeffGains.C, "c", coeffGains.C,
		"Setpoint weight of the derivative path.")
	f.Float64Var(&coeffGains.Kb, "kb", coeffGains.Kb, "Anti-windup gain.")
	f.Float64Var(&coeffGains.Ts, "ts", coeffGains.Ts, "Sample period in seconds.")
	f.Float32Var(&coeffLimit, "limit", 12, "Output limit.")
	f.Float32Var(&coeffTargetRPM, "target-rpm", 955, "Target speed in RPM.")
	f.BoolVar(&coeffReference, "reference", false,
		"Print the fixed reference coefficient set instead.")
}

func printCoefficients(w io.Writer, k ctrl.Coefficients) {
	fmt.Fprintf(w, "%-10s %-6s %-14s %s\n", "register", "offset", "value", "bits")

	for _, reg := range regfile.Registers()[:ctrl.NumCoeffs] {
		v := k.Coefficient(ctrl.CoeffID(reg.Offset / 4))
		fmt.Fprintf(w, "%-10s 0x%02X   %-14.9g 0x%08X\n",
			reg.Name, uint32(reg.Offset), v, math.Float32bits(v))
	}
}
