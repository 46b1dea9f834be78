// Package cmd provides the command-line interface of motorsim.
package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Environment variables read after the env file is loaded.
const (
	EnvConfig      = "MOTORSIM_CONFIG"
	EnvMonitorPort = "MOTORSIM_MONITOR_PORT"
)

var envFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "motorsim",
	Short: "motorsim simulates a delta-form PID speed controller driving a motor.",
	Long: `motorsim simulates, tick by tick, a speed controller core that ` +
		`decodes a quadrature encoder, runs a delta-form PID on shared ` +
		`arithmetic units, and drives a motor through PWM.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return loadEnv(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env",
		"File with environment variables. A missing file is ignored.")
}

func loadEnv(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
