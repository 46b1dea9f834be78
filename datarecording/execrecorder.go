package datarecording

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// ExecInfo is one property of a simulation run.
type ExecInfo struct {
	Property string
	Value    string
}

// ExecTable is the table that holds the run properties.
const ExecTable = "exec_info"

// ExecRecorder records how and when a simulation was run.
type ExecRecorder struct {
	recorder DataRecorder
	entries  []ExecInfo
}

// NewExecRecorder creates the run property table in the recorder.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	recorder.CreateTable(ExecTable, ExecInfo{})

	return &ExecRecorder{
		recorder: recorder,
	}
}

// Start records the start time, the command line, and the working directory.
func (e *ExecRecorder) Start() {
	e.Add("Start Time", time.Now().Format("2006-01-02 15:04:05.000000000"))
	e.Add("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "unknown"
	}

	e.Add("Working Directory", cwd)
}

// Add records an extra property, such as a configuration value.
func (e *ExecRecorder) Add(property, value string) {
	e.entries = append(e.entries, ExecInfo{property, value})
}

// End writes the properties along with the end time.
func (e *ExecRecorder) End() {
	e.Add("End Time", time.Now().Format("2006-01-02 15:04:05.000000000"))

	for _, entry := range e.entries {
		e.recorder.InsertData(ExecTable, entry)
	}

	e.entries = nil

	e.recorder.Flush()
}

// Handle records the simulated time and ends the recording when the engine
// reports the end of the simulation.
func (e *ExecRecorder) Handle(now sim.VTimeInSec) {
	e.Add("Simulated Seconds", strconv.FormatFloat(float64(now), 'f', 6, 64))
	e.End()
}
