// Package pwm generates the switching waveform from a compare value and a
// direction.
package pwm

import (
	"log"

	"github.com/horizon0210/PID-Controller-With-FPGA/duty"
	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// CommandSource provides waveform settings and their validity pulse.
type CommandSource interface {
	Command() (duty.Command, bool)
}

// Comp is a free-running PWM generator with two mutually exclusive outputs.
// A new command takes effect at the start of the next period.
type Comp struct {
	name   string
	input  CommandSource
	period uint32

	counter uint32
	active  duty.Command
	shadow  duty.Command
	pending bool

	forward bool
	reverse bool

	numPeriods uint64
}

// NewComp creates a generator with the given period in ticks.
func NewComp(name string, period uint32, input CommandSource) *Comp {
	sim.NameMustBeValid(name)

	if period < 2 {
		log.Panicf("pwm %s: period must be at least 2 ticks", name)
	}

	if input == nil {
		log.Panicf("pwm %s has no input", name)
	}

	return &Comp{
		name:   name,
		input:  input,
		period: period,
	}
}

// Name returns the name of the generator.
func (c *Comp) Name() string {
	return c.name
}

// Lines returns the level of the forward and the reverse output.
func (c *Comp) Lines() (forward, reverse bool) {
	return c.forward, c.reverse
}

// Active returns the command that shapes the current period.
func (c *Comp) Active() duty.Command {
	return c.active
}

// Counter returns the position inside the current period.
func (c *Comp) Counter() uint32 {
	return c.counter
}

// NumPeriods returns how many full periods have been generated.
func (c *Comp) NumPeriods() uint64 {
	return c.numPeriods
}

// Tick produces the output levels for one clock.
func (c *Comp) Tick() bool {
	if cmd, ok := c.input.Command(); ok {
		c.shadow = cmd
		c.pending = true
	}

	if c.counter == 0 && c.pending {
		c.active = c.shadow
		c.pending = false
	}

	on := c.counter < c.active.Compare
	c.forward = on && c.active.Forward
	c.reverse = on && !c.active.Forward

	c.counter++
	if c.counter == c.period {
		c.counter = 0
		c.numPeriods++
	}

	return true
}
