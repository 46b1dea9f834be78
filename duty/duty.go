// Package duty turns the bounded controller output into a PWM compare value
// and a direction.
package duty

import (
	"fmt"

	"github.com/horizon0210/PID-Controller-With-FPGA/ctrl"
	"github.com/horizon0210/PID-Controller-With-FPGA/fpu"
	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// HookPosCommand is invoked on the tick a new command is published. The item
// is the Command.
var HookPosCommand = &sim.HookPos{Name: "DutyCommand"}

// OutputSource provides the controller output and its validity pulse.
type OutputSource interface {
	Output() (float32, bool)
}

// Command is the waveform setting derived from one controller output.
type Command struct {
	Compare uint32

	// Forward is set when the sign bit of the output is clear, so -0 drives
	// the reverse line.
	Forward bool
}

func (c Command) String() string {
	dir := "fwd"
	if !c.Forward {
		dir = "rev"
	}

	return fmt.Sprintf("%d %s", c.Compare, dir)
}

// Stage is a step of the duty computation.
type Stage int

// Stages in the order they run.
const (
	StageIdle Stage = iota
	StageScale
	StageTicks
	StageTruncate
	StageUpdate
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "Idle"
	case StageScale:
		return "Scale"
	case StageTicks:
		return "Ticks"
	case StageTruncate:
		return "Truncate"
	case StageUpdate:
		return "Update"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Comp is the duty scheduler.
type Comp struct {
	sim.HookableBase

	name        string
	input       OutputSource
	source      ctrl.CoefficientSource
	unit        fpu.Unit
	periodTicks uint32

	stage   Stage
	waiting bool

	v         float32
	forward   bool
	scale     float32
	raw       float32
	converted int32

	cmd      Command
	cmdValid bool
}

// Name returns the name of the scheduler.
func (c *Comp) Name() string {
	return c.name
}

// Stage returns the stage the scheduler is in.
func (c *Comp) Stage() Stage {
	return c.stage
}

// PeriodTicks returns the length of one PWM period.
func (c *Comp) PeriodTicks() uint32 {
	return c.periodTicks
}

// Command returns the latest command. The second value is true only on the
// tick the command is published.
func (c *Comp) Command() (Command, bool) {
	return c.cmd, c.cmdValid
}

// LastCommand returns the latest command regardless of the pulse.
func (c *Comp) LastCommand() Command {
	return c.cmd
}

// CycleTicks returns the number of ticks from latching an output to
// publishing the command, both included.
func (c *Comp) CycleTicks() int {
	return 2 +
		2*(c.unit.Latency(fpu.OpMul)+1) +
		c.unit.Latency(fpu.OpFloatToInt) + 1
}

// Tick advances the scheduler by one clock.
func (c *Comp) Tick() bool {
	c.cmdValid = false

	switch c.stage {
	case StageIdle:
		v, ok := c.input.Output()
		if !ok {
			return false
		}

		c.v = v
		c.forward = !fpu.SignBit(v)
		c.stage = StageScale

		return true
	case StageUpdate:
		c.update()
		return true
	default:
		return c.step()
	}
}

func (c *Comp) request() fpu.Request {
	switch c.stage {
	case StageScale:
		return fpu.Mul(fpu.Abs(c.v), c.source.Coefficient(ctrl.CoeffRecipLimit))
	case StageTicks:
		return fpu.Mul(c.scale, float32(c.periodTicks))
	default:
		return fpu.FloatToInt(c.raw)
	}
}

func (c *Comp) retire(r fpu.Result) {
	switch c.stage {
	case StageScale:
		c.scale = r.F
	case StageTicks:
		c.raw = r.F
	default:
		c.converted = r.I
	}
}

func (c *Comp) step() bool {
	if !c.waiting {
		if !c.unit.Ready() {
			return false
		}

		c.unit.Issue(c.request())
		c.waiting = true

		return true
	}

	res, ok := c.unit.Result()
	if !ok {
		return false
	}

	c.unit.AcceptResult()
	c.retire(res)
	c.waiting = false
	c.stage++

	return true
}

func (c *Comp) update() {
	compare := uint32(0)

	switch {
	case c.converted <= 0:
	case uint32(c.converted) > c.periodTicks-1:
		compare = c.periodTicks - 1
	default:
		compare = uint32(c.converted)
	}

	c.cmd = Command{Compare: compare, Forward: c.forward}
	c.cmdValid = true
	c.stage = StageIdle

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosCommand,
			Item:   c.cmd,
			Detail: c.v,
		})
	}
}
