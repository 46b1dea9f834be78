package fpu

import (
	"log"

	"github.com/horizon0210/PID-Controller-With-FPGA/pipelining"
	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// Hook positions invoked by a unit.
var (
	HookPosIssue    = &sim.HookPos{Name: "FPUIssue"}
	HookPosComplete = &sim.HookPos{Name: "FPUComplete"}
)

// A Unit is one arithmetic execution resource. A caller may only Issue while
// Ready reports true, and must call AcceptResult once Result reports a valid
// value before the unit becomes ready again.
type Unit interface {
	sim.Named
	sim.Hookable

	// Supports tells if the operation is part of the unit's repertoire.
	Supports(op Op) bool

	// Latency returns the number of ticks between issue and result.
	Latency(op Op) int

	// Ready reports whether the unit can accept a request.
	Ready() bool

	// Issue hands a request to the unit.
	Issue(req Request)

	// Result returns the completed result, if there is one.
	Result() (Result, bool)

	// AcceptResult releases the completed result.
	AcceptResult()

	// Tick advances the unit by one clock.
	Tick() bool
}

// inflight is a request travelling through a unit.
type inflight struct {
	id  string
	req Request
	res Result
}

func (i *inflight) TaskID() string {
	return i.id
}

// Comp is an arithmetic unit with a fixed latency per operation. Results are
// computed when the request is issued and become visible after the latency
// has elapsed.
type Comp struct {
	sim.HookableBase

	name      string
	pipelines map[Op]pipelining.Pipeline
	latency   map[Op]int
	out       sim.Buffer
	busy      bool

	numIssued    uint64
	numCompleted uint64
	busyTicks    uint64
}

// Name returns the name of the unit.
func (c *Comp) Name() string {
	return c.name
}

// Supports tells if the operation is part of the unit's repertoire.
func (c *Comp) Supports(op Op) bool {
	_, ok := c.pipelines[op]
	return ok
}

// Latency returns the number of ticks between issue and result.
func (c *Comp) Latency(op Op) int {
	l, ok := c.latency[op]
	if !ok {
		log.Panicf("unit %s does not support %s", c.name, op)
	}

	return l
}

// Ready reports whether the unit can accept a request.
func (c *Comp) Ready() bool {
	return !c.busy
}

// Issue hands a request to the unit.
func (c *Comp) Issue(req Request) {
	if c.busy {
		log.Panicf("unit %s is busy", c.name)
	}

	p, ok := c.pipelines[req.Op]
	if !ok {
		log.Panicf("unit %s does not support %s", c.name, req.Op)
	}

	item := &inflight{
		id:  sim.GetIDGenerator().Generate(),
		req: req,
		res: Execute(req),
	}

	p.Accept(item)
	c.busy = true
	c.numIssued++

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosIssue,
			Item:   req,
		})
	}
}

// Result returns the completed result, if there is one.
func (c *Comp) Result() (Result, bool) {
	item := c.out.Peek()
	if item == nil {
		return Result{}, false
	}

	return item.(*inflight).res, true
}

// AcceptResult releases the completed result.
func (c *Comp) AcceptResult() {
	item := c.out.Pop()
	if item == nil {
		log.Panicf("unit %s has no result to accept", c.name)
	}

	c.busy = false
	c.numCompleted++

	if c.NumHooks() > 0 {
		f := item.(*inflight)
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosComplete,
			Item:   f.req,
			Detail: f.res,
		})
	}
}

// Tick advances the unit by one clock.
func (c *Comp) Tick() bool {
	madeProgress := false

	for op := Op(0); op < numOps; op++ {
		p, ok := c.pipelines[op]
		if !ok {
			continue
		}

		madeProgress = p.Tick() || madeProgress
	}

	if c.busy {
		c.busyTicks++
	}

	return madeProgress
}

// Stats summarizes how much the unit has been used.
type Stats struct {
	Issued    uint64
	Completed uint64
	BusyTicks uint64
}

// Stats returns the usage counters of the unit.
func (c *Comp) Stats() Stats {
	return Stats{
		Issued:    c.numIssued,
		Completed: c.numCompleted,
		BusyTicks: c.busyTicks,
	}
}
