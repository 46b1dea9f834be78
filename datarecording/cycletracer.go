package datarecording

import (
	"github.com/horizon0210/PID-Controller-With-FPGA/ctrl"
	"github.com/horizon0210/PID-Controller-With-FPGA/duty"
	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// Tables written by the CycleTracer.
const (
	CycleTable   = "cycles"
	CommandTable = "commands"
)

// CycleEntry is one row of the cycle table.
type CycleEntry struct {
	Cycle    uint64
	Time     float64
	Sample   int32
	Target   float32
	Measured float32
	X        float32
	DeltaY   float32
	YUnsat   float32
	YSat     float32
	Above    bool
	Below    bool
	Ticks    int
	Speed    float64
}

// CommandEntry is one row of the command table.
type CommandEntry struct {
	Time    float64
	Output  float32
	Compare uint32
	Forward bool
}

// SpeedProbe reports the true shaft speed, for comparison against the
// measured value.
type SpeedProbe interface {
	Speed() float64
}

// CycleTracer is a hook that records control cycles and duty commands.
type CycleTracer struct {
	recorder DataRecorder
	timer    sim.TimeTeller
	probe    SpeedProbe
}

// NewCycleTracer creates the cycle and command tables in the recorder. The
// probe may be nil.
func NewCycleTracer(
	recorder DataRecorder,
	timer sim.TimeTeller,
	probe SpeedProbe,
) *CycleTracer {
	recorder.CreateTable(CycleTable, CycleEntry{})
	recorder.CreateTable(CommandTable, CommandEntry{})

	return &CycleTracer{
		recorder: recorder,
		timer:    timer,
		probe:    probe,
	}
}

// Func records the item of a cycle or command hook.
func (t *CycleTracer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case ctrl.HookPosCycleDone:
		t.recordCycle(ctx.Item.(ctrl.Cycle))
	case duty.HookPosCommand:
		t.recordCommand(ctx.Item.(duty.Command), ctx.Detail.(float32))
	}
}

func (t *CycleTracer) recordCycle(c ctrl.Cycle) {
	entry := CycleEntry{
		Cycle:    c.Index,
		Time:     float64(t.timer.CurrentTime()),
		Sample:   c.Sample,
		Target:   c.Target,
		Measured: c.Measured,
		X:        c.X,
		DeltaY:   c.DeltaY,
		YUnsat:   c.YUnsat,
		YSat:     c.YSat,
		Above:    c.Above,
		Below:    c.Below,
		Ticks:    c.Ticks,
	}

	if t.probe != nil {
		entry.Speed = t.probe.Speed()
	}

	t.recorder.InsertData(CycleTable, entry)
}

func (t *CycleTracer) recordCommand(cmd duty.Command, output float32) {
	t.recorder.InsertData(CommandTable, CommandEntry{
		Time:    float64(t.timer.CurrentTime()),
		Output:  output,
		Compare: cmd.Compare,
		Forward: cmd.Forward,
	})
}
