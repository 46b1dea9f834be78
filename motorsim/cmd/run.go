package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/horizon0210/PID-Controller-With-FPGA/simulation"
)

type runOptions struct {
	configPath  string
	duration    float64
	record      string
	perfPeriod  float64
	perfCSV     string
	monitor     bool
	port        int
	openBrowser bool
	verbose     bool
	sampling    string
	target      float64
	hasTarget   bool
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the closed loop for a while.",
	Long: "`run --duration 2 --record out` runs two seconds of motor time " +
		"and records every control cycle into out.sqlite3.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := runOpts

		if opts.configPath == "" {
			opts.configPath = os.Getenv(EnvConfig)
		}

		if !cmd.Flags().Changed("port") {
			if p := os.Getenv(EnvMonitorPort); p != "" {
				port, err := strconv.Atoi(p)
				if err != nil {
					return fmt.Errorf("%s: %w", EnvMonitorPort, err)
				}

				opts.port = port
			}
		}

		opts.hasTarget = cmd.Flags().Changed("target")

		return runSimulation(opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVarP(&runOpts.configPath, "config", "c", "",
		"YAML configuration file. Defaults to $"+EnvConfig+".")
	f.Float64VarP(&runOpts.duration, "duration", "d", 2,
		"Simulated time in seconds.")
	f.StringVar(&runOpts.record, "record", "",
		"Record every cycle into the given SQLite file, without extension.")
	f.Float64Var(&runOpts.perfPeriod, "perf", 0,
		"Record unit utilization over periods of this many seconds.")
	f.StringVar(&runOpts.perfCSV, "perf-csv", "",
		"Write the utilization rows into this CSV file instead of the recording.")
	f.BoolVar(&runOpts.monitor, "monitor", false,
		"Serve the monitoring API while running.")
	f.IntVar(&runOpts.port, "port", 0,
		"Monitor port. Defaults to $"+EnvMonitorPort+" or a random port.")
	f.BoolVar(&runOpts.openBrowser, "open", false,
		"Open the monitor in the default browser.")
	f.BoolVarP(&runOpts.verbose, "verbose", "v", false,
		"Print every control cycle.")
	f.StringVar(&runOpts.sampling, "sampling", "",
		"Coefficient sampling, live or latch. Overrides the configuration.")
	f.Float64Var(&runOpts.target, "target", 0,
		"Target speed in rad/s. Overrides the configuration.")
}

func runSimulation(opts runOptions, out io.Writer) error {
	cfg := simulation.Default()
	if opts.configPath != "" {
		var err error

		cfg, err = simulation.Load(opts.configPath)
		if err != nil {
			return err
		}
	}

	if opts.sampling != "" {
		cfg.Control.Sampling = opts.sampling
	}

	if opts.hasTarget {
		cfg.Control.TargetRadPerSec = float32(opts.target)
	}

	b := simulation.MakeBuilder().WithConfig(cfg)

	if opts.record != "" {
		b = b.WithRecording(opts.record)
	}

	if opts.perfPeriod > 0 {
		b = b.WithPerfAnalysis(opts.perfPeriod)
	}

	if opts.perfCSV != "" {
		f, err := os.Create(opts.perfCSV)
		if err != nil {
			return err
		}
		defer f.Close()

		b = b.WithPerfCSV(f)
	}

	if opts.monitor {
		b = b.WithMonitor(opts.port)
	}

	if opts.openBrowser {
		b = b.WithBrowser()
	}

	if opts.verbose {
		b = b.WithCycleLogger(log.New(out, "", 0))
	}

	s, err := b.Build()
	if err != nil {
		return err
	}

	if err := s.Run(opts.duration); err != nil {
		return errors.Join(err, s.Terminate())
	}

	printSummary(out, s)

	return s.Terminate()
}

func printSummary(w io.Writer, s *simulation.Simulation) {
	core := s.Core()
	out := core.Ctrl().LastOutput()
	cmd := core.Duty().LastCommand()

	fmt.Fprintf(w, "simulated %.6f s in %d ticks\n",
		float64(s.Engine().CurrentTime()), core.NumTicks())
	fmt.Fprintf(w, "speed %.3f rad/s (target %g)\n",
		core.Motor().Speed(), s.Config().Control.TargetRadPerSec)
	fmt.Fprintf(w, "cycles %d, dropped %d, illegal transitions %d\n",
		core.Ctrl().NumCycles(), core.Ctrl().NumDropped(),
		core.Decoder().IllegalCount())
	fmt.Fprintf(w, "last output %g V, pwm %s\n", out, cmd)

	for _, u := range core.Units() {
		st := u.Stats()
		fmt.Fprintf(w, "%s: %d issued, busy %.2f%%\n", u.Name(), st.Issued,
			100*float64(st.BusyTicks)/float64(core.NumTicks()))
	}
}
