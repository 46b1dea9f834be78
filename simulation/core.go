package simulation

import (
	"github.com/horizon0210/PID-Controller-With-FPGA/ctrl"
	"github.com/horizon0210/PID-Controller-With-FPGA/duty"
	"github.com/horizon0210/PID-Controller-With-FPGA/fpu"
	"github.com/horizon0210/PID-Controller-With-FPGA/monitoring"
	"github.com/horizon0210/PID-Controller-With-FPGA/plant"
	"github.com/horizon0210/PID-Controller-With-FPGA/pwm"
	"github.com/horizon0210/PID-Controller-With-FPGA/qdec"
	"github.com/horizon0210/PID-Controller-With-FPGA/regfile"
	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

const progressStride = 1000

// Core is the controller clock domain. Each tick it ticks the decoder, the
// control scheduler, the duty scheduler, the PWM generator, the motor and
// finally the arithmetic units, then publishes the status registers.
type Core struct {
	*sim.TickingComponent

	regs    *regfile.File
	decoder *qdec.Comp
	ctrl    *ctrl.Comp
	duty    *duty.Comp
	pwm     *pwm.Comp
	motor   *plant.Motor
	units   []*fpu.Comp

	numTicks uint64
	stopTick uint64
	progress *monitoring.ProgressBar
}

// Tick advances the whole loop by one clock period.
func (c *Core) Tick() bool {
	if c.numTicks >= c.stopTick {
		return false
	}

	c.decoder.Tick()
	c.ctrl.Tick()
	c.duty.Tick()
	c.pwm.Tick()
	c.motor.Tick()

	for _, u := range c.units {
		u.Tick()
	}

	c.publish()
	c.numTicks++

	if c.progress != nil && c.numTicks%progressStride == 0 {
		c.progress.IncrementFinished(progressStride)
	}

	return c.numTicks < c.stopTick
}

func (c *Core) publish() {
	c.regs.SetStatus(c.decoder.LastSample(),
		c.decoder.Direction() == qdec.Forward)
	c.regs.SetIllegalCount(c.decoder.IllegalCount())
	c.regs.SetOutput(c.ctrl.LastOutput())
	c.regs.SetCommand(c.duty.LastCommand())
}

// NumTicks returns how many ticks have run.
func (c *Core) NumTicks() uint64 {
	return c.numTicks
}

// Decoder returns the quadrature decoder.
func (c *Core) Decoder() *qdec.Comp {
	return c.decoder
}

// Ctrl returns the control scheduler.
func (c *Core) Ctrl() *ctrl.Comp {
	return c.ctrl
}

// Duty returns the duty scheduler.
func (c *Core) Duty() *duty.Comp {
	return c.duty
}

// PWM returns the PWM generator.
func (c *Core) PWM() *pwm.Comp {
	return c.pwm
}

// Motor returns the plant.
func (c *Core) Motor() *plant.Motor {
	return c.motor
}

// Units returns the arithmetic units.
func (c *Core) Units() []*fpu.Comp {
	return c.units
}

// bridge breaks the construction cycle between the motor and the PWM
// generator that drives it.
type bridge struct {
	pwm *pwm.Comp
}

func (b *bridge) Lines() (forward, reverse bool) {
	return b.pwm.Lines()
}
