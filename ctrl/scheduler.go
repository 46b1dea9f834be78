// Package ctrl implements the control-cycle scheduler of a delta-form PID
// speed controller. A cycle runs the whole controller equation as a sequence
// of requests to shared arithmetic units.
package ctrl

import (
	"log"

	"github.com/horizon0210/PID-Controller-With-FPGA/fpu"
	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// HookPosCycleDone is invoked on the tick a cycle publishes its output. The
// item of the hook context is a Cycle.
var HookPosCycleDone = &sim.HookPos{Name: "CtrlCycleDone"}

// HookPosStage is invoked each time the scheduler enters a new stage. The item
// is the Stage entered.
var HookPosStage = &sim.HookPos{Name: "CtrlStage"}

// SampleSource provides the measured count and its validity pulse.
type SampleSource interface {
	Sample() (int32, bool)
}

// SamplingMode selects when coefficients are read.
type SamplingMode int

const (
	// SampleLive reads each coefficient when the request that uses it is
	// issued. A write in the middle of a cycle is seen by the remaining
	// requests of that cycle.
	SampleLive SamplingMode = iota

	// SampleAtLatch copies every coefficient when a cycle starts and uses the
	// copy for the whole cycle.
	SampleAtLatch
)

func (m SamplingMode) String() string {
	if m == SampleAtLatch {
		return "latch"
	}

	return "live"
}

// Comp is the control scheduler.
type Comp struct {
	sim.HookableBase

	name       string
	input      SampleSource
	source     CoefficientSource
	mode       SamplingMode
	conversion float32
	units      [numRoles]fpu.Unit

	stage    Stage
	waiting  bool
	snapshot Coefficients
	cur      work
	state    State

	output      float32
	outputValid bool

	cycleTicks int
	numCycles  uint64
	numDropped uint64
	lastCycle  Cycle
}

// Name returns the name of the scheduler.
func (c *Comp) Name() string {
	return c.name
}

// Stage returns the stage the scheduler is in.
func (c *Comp) Stage() Stage {
	return c.stage
}

// State returns a copy of the filter memory.
func (c *Comp) State() State {
	return c.state
}

// Reset clears the filter memory and abandons any cycle in progress. It must
// only be called while no request is outstanding.
func (c *Comp) Reset() {
	c.state = State{}
	c.cur = work{}
	c.stage = StageIdle
	c.waiting = false
	c.output = 0
	c.outputValid = false
}

// Output returns the latest bounded output. The second value is true only on
// the tick the output is published.
func (c *Comp) Output() (float32, bool) {
	return c.output, c.outputValid
}

// LastOutput returns the latest bounded output regardless of the pulse.
func (c *Comp) LastOutput() float32 {
	return c.output
}

// LastCycle returns the record of the last completed cycle.
func (c *Comp) LastCycle() Cycle {
	return c.lastCycle
}

// NumCycles returns how many cycles have completed.
func (c *Comp) NumCycles() uint64 {
	return c.numCycles
}

// NumDropped returns how many samples arrived while a cycle was running.
func (c *Comp) NumDropped() uint64 {
	return c.numDropped
}

// Unit returns the unit serving a role.
func (c *Comp) Unit(r Role) fpu.Unit {
	return c.units[r]
}

// CycleTicks returns the number of ticks from the tick that latches a sample
// to the tick that publishes the output, both included.
func (c *Comp) CycleTicks() int {
	ticks := 3

	for s := StageConvert; s <= StageCmpLow; s++ {
		def := stageTable[s]
		ticks += c.units[def.role].Latency(def.op) + 1
	}

	return ticks
}

// Tick advances the scheduler by one clock.
func (c *Comp) Tick() bool {
	c.outputValid = false

	sample, valid := c.input.Sample()

	switch c.stage {
	case StageIdle:
		if !valid {
			return false
		}

		c.latch(sample)

		return true
	case StageFinalize:
		c.countDropped(valid)
		c.finalize()

		return true
	case StageUpdate:
		c.countDropped(valid)
		c.update()

		return true
	default:
		c.countDropped(valid)

		return c.step()
	}
}

func (c *Comp) countDropped(valid bool) {
	if valid {
		c.numDropped++
	}
}

func (c *Comp) latch(sample int32) {
	if c.mode == SampleAtLatch {
		c.snapshot = Snapshot(c.source)
	}

	c.cur = work{
		sample: sample,
		w:      c.coeff(CoeffTarget),
	}
	c.cycleTicks = 1
	c.enter(StageConvert)
}

// step runs the issue or the retire half of an arithmetic stage.
func (c *Comp) step() bool {
	c.cycleTicks++

	def := stageTable[c.stage]
	unit := c.units[def.role]

	if !c.waiting {
		if !unit.Ready() {
			return false
		}

		unit.Issue(def.issue(c))
		c.waiting = true

		return true
	}

	res, ok := unit.Result()
	if !ok {
		return false
	}

	unit.AcceptResult()
	def.retire(c, res)
	c.waiting = false
	c.enter(c.stage + 1)

	return true
}

func (c *Comp) finalize() {
	c.cycleTicks++

	switch {
	case c.cur.above:
		c.cur.ySat = c.cur.hiLimit
	case c.cur.below:
		c.cur.ySat = c.cur.loLimit
	default:
		c.cur.ySat = c.cur.yUnsat
	}

	c.enter(StageUpdate)
}

func (c *Comp) update() {
	c.cycleTicks++

	cur := c.cur
	c.state = c.state.advance(cur.w, cur.x, cur.dy, cur.yUnsat, cur.ySat)
	c.output = cur.ySat
	c.outputValid = true

	c.lastCycle = Cycle{
		Index:    c.numCycles,
		Sample:   cur.sample,
		Target:   cur.w,
		Measured: cur.measured,
		X:        cur.x,
		DeltaY:   cur.dy,
		YUnsat:   cur.yUnsat,
		YSat:     cur.ySat,
		Above:    cur.above,
		Below:    cur.below,
		Ticks:    c.cycleTicks,
	}
	c.numCycles++

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosCycleDone,
			Item:   c.lastCycle,
		})
	}

	c.enter(StageIdle)
}

func (c *Comp) enter(s Stage) {
	c.stage = s

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosStage,
			Item:   s,
		})
	}
}

func (c *Comp) coeff(id CoeffID) float32 {
	if c.mode == SampleAtLatch {
		return c.snapshot.Coefficient(id)
	}

	return c.source.Coefficient(id)
}

func mustSupport(name string, u fpu.Unit, r Role, op fpu.Op) {
	if u == nil {
		log.Panicf("scheduler %s has no %s unit", name, r)
	}

	if !u.Supports(op) {
		log.Panicf("scheduler %s: %s unit %s cannot run %s",
			name, r, u.Name(), op)
	}
}
