// Package qdec decodes a pair of quadrature lines into a signed count per
// gate window.
package qdec

import (
	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// HookPosSample is invoked on the tick that a new sample is latched.
var HookPosSample = &sim.HookPos{Name: "QDecSample"}

// Lines provides the raw level of the two encoder channels.
type Lines interface {
	Lines() (a, b bool)
}

// Direction is the last decoded direction of rotation.
type Direction int

// Directions of rotation. Forward is the 00, 01, 11, 10 sequence with A as the
// high bit.
const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "Reverse"
	}

	return "Forward"
}

const (
	lineA = 0
	lineB = 1
)

// Comp is a quadrature decoder that samples its input once per tick.
type Comp struct {
	sim.HookableBase

	name     string
	input    Lines
	window   uint64
	minPulse int

	sampleMax  int32
	sampleMin  int32
	illegalMax uint32

	sync     [2][2]bool
	filtered [2]bool
	hold     [2]int
	state    uint8

	gate     uint64
	acc      int32
	sample   int32
	valid    bool
	dir      Direction
	illegal  uint32
	lastStep int
}

// Name returns the name of the decoder.
func (c *Comp) Name() string {
	return c.name
}

// Window returns the number of ticks in one gate window.
func (c *Comp) Window() uint64 {
	return c.window
}

// Sample returns the latest latched count. The second value is true only on
// the tick the count is latched.
func (c *Comp) Sample() (int32, bool) {
	return c.sample, c.valid
}

// LastSample returns the latest latched count regardless of the pulse.
func (c *Comp) LastSample() int32 {
	return c.sample
}

// Direction returns the direction of the last legal transition.
func (c *Comp) Direction() Direction {
	return c.dir
}

// IllegalCount returns how many two-bit jumps have been seen.
func (c *Comp) IllegalCount() uint32 {
	return c.illegal
}

// Accumulator returns the count gathered so far in the current window.
func (c *Comp) Accumulator() int32 {
	return c.acc
}

// Step returns the step decoded in the last tick.
func (c *Comp) Step() int {
	return c.lastStep
}

// Tick samples the lines and advances the gate window by one tick.
func (c *Comp) Tick() bool {
	a, b := c.input.Lines()

	c.synchronize(a, b)
	c.filter()

	step := c.decode()
	c.lastStep = step
	c.accumulate(step)
	c.advanceGate()

	return true
}

func (c *Comp) synchronize(a, b bool) {
	c.sync[lineA][1] = c.sync[lineA][0]
	c.sync[lineA][0] = a
	c.sync[lineB][1] = c.sync[lineB][0]
	c.sync[lineB][0] = b
}

func (c *Comp) filter() {
	for line := range c.filtered {
		level := c.sync[line][1]

		if level == c.filtered[line] {
			c.hold[line] = 0
			continue
		}

		c.hold[line]++
		if c.hold[line] >= c.minPulse {
			c.filtered[line] = level
			c.hold[line] = 0
		}
	}
}

// forwardNext maps a 2-bit state to the state that follows it when turning
// forward.
var forwardNext = [4]uint8{
	0b00: 0b01,
	0b01: 0b11,
	0b11: 0b10,
	0b10: 0b00,
}

func (c *Comp) decode() int {
	var cur uint8
	if c.filtered[lineA] {
		cur |= 0b10
	}

	if c.filtered[lineB] {
		cur |= 0b01
	}

	prev := c.state
	c.state = cur

	switch {
	case cur == prev:
		return 0
	case forwardNext[prev] == cur:
		c.dir = Forward
		return 1
	case forwardNext[cur] == prev:
		c.dir = Reverse
		return -1
	default:
		if c.illegal < c.illegalMax {
			c.illegal++
		}

		return 0
	}
}

func (c *Comp) accumulate(step int) {
	next := int64(c.acc) + int64(step)

	switch {
	case next > int64(c.sampleMax):
		c.acc = c.sampleMax
	case next < int64(c.sampleMin):
		c.acc = c.sampleMin
	default:
		c.acc = int32(next)
	}
}

func (c *Comp) advanceGate() {
	if c.gate < c.window-1 {
		c.gate++
		c.valid = false

		return
	}

	c.gate = 0
	c.sample = c.acc
	c.valid = true
	c.acc = 0

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosSample,
			Item:   c.sample,
		})
	}
}
