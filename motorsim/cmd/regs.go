package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/horizon0210/PID-Controller-With-FPGA/regfile"
)

var regsCmd = &cobra.Command{
	Use:   "regs",
	Short: "Print the register map.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		printRegisterMap(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(regsCmd)
}

func printRegisterMap(w io.Writer) {
	fmt.Fprintf(w, "%-6s %-10s %-4s %s\n", "offset", "register", "mode", "format")

	for _, reg := range regfile.Registers() {
		mode := "RW"
		if reg.ReadOnly {
			mode = "RO"
		}

		format := "u32"
		switch {
		case reg.Float:
			format = "f32"
		case reg.Offset == regfile.OffStatus:
			format = "15:0 count, 16 forward"
		case reg.Offset == regfile.OffPWM:
			format = "30:0 compare, 31 forward"
		}

		fmt.Fprintf(w, "0x%02X   %-10s %-4s %s\n",
			uint32(reg.Offset), reg.Name, mode, format)
	}
}
