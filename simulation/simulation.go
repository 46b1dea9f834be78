// Package simulation assembles the controller core, its register file and a
// motor into a closed loop driven by the event engine.
package simulation

import (
	"fmt"
	"math"

	"github.com/horizon0210/PID-Controller-With-FPGA/analysis"
	"github.com/horizon0210/PID-Controller-With-FPGA/datarecording"
	"github.com/horizon0210/PID-Controller-With-FPGA/monitoring"
	"github.com/horizon0210/PID-Controller-With-FPGA/regfile"
	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// A Simulation is a closed-loop run of the controller core.
type Simulation struct {
	id     string
	config *Config
	engine *sim.SerialEngine
	regs   *regfile.File
	core   *Core

	recorder datarecording.DataRecorder
	exec     *datarecording.ExecRecorder
	perf     *analysis.PerfAnalyzer
	monitor  *monitoring.Monitor
}

// ID returns the unique ID of the run.
func (s *Simulation) ID() string {
	return s.id
}

// Config returns the configuration the run was built from.
func (s *Simulation) Config() *Config {
	return s.config
}

// Engine returns the engine that drives the run.
func (s *Simulation) Engine() sim.Engine {
	return s.engine
}

// Registers returns the register file of the core.
func (s *Simulation) Registers() *regfile.File {
	return s.regs
}

// Core returns the ticking core.
func (s *Simulation) Core() *Core {
	return s.core
}

// Monitor returns the monitor, or nil when the run is not monitored.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Recorder returns the data recorder, or nil when the run is not recorded.
func (s *Simulation) Recorder() datarecording.DataRecorder {
	return s.recorder
}

// Run advances the simulation by the given number of seconds. It may be
// called again to continue from where the last call stopped.
func (s *Simulation) Run(seconds float64) error {
	if seconds <= 0 || math.IsNaN(seconds) {
		return fmt.Errorf("duration must be positive, got %g", seconds)
	}

	ticks := uint64(math.Round(seconds * s.config.Clock.FreqHz))
	s.core.stopTick = s.core.numTicks + ticks

	if s.monitor != nil {
		s.core.progress = s.monitor.CreateProgressBar("Run", ticks)
		defer func() {
			s.monitor.CompleteProgressBar(s.core.progress)
			s.core.progress = nil
		}()
	}

	s.core.TickLater()

	if err := s.engine.Run(); err != nil {
		return err
	}

	if s.recorder != nil {
		s.recorder.Flush()
	}

	return nil
}

// Terminate writes the run information and closes the recorder and the
// monitor.
func (s *Simulation) Terminate() error {
	s.engine.Finished()

	if s.monitor != nil {
		if err := s.monitor.StopServer(); err != nil {
			return err
		}
	}

	if s.recorder == nil {
		return nil
	}

	return s.recorder.Close()
}
