package fpu

import (
	"log"

	"github.com/horizon0210/PID-Controller-With-FPGA/pipelining"
	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// Repertoires of the three unit flavours wired into the controller.
var (
	MACRepertoire       = []Op{OpFMA, OpFMS, OpIntToFloat}
	CompareRepertoire   = []Op{OpCompare}
	ConverterRepertoire = []Op{OpMul, OpIntToFloat, OpFloatToInt}
)

// DefaultLatency returns the latency, in ticks, used for an operation unless
// the builder is told otherwise.
func DefaultLatency(op Op) int {
	switch op {
	case OpFMA, OpFMS:
		return 4
	case OpCompare:
		return 2
	default:
		return 3
	}
}

// Builder builds arithmetic units.
type Builder struct {
	ops     []Op
	latency map[Op]int
}

// MakeBuilder creates a builder for a unit with the MAC repertoire.
func MakeBuilder() Builder {
	return Builder{
		ops: MACRepertoire,
	}
}

// WithOps sets the repertoire of the unit.
func (b Builder) WithOps(ops ...Op) Builder {
	b.ops = append([]Op(nil), ops...)
	return b
}

// WithLatency overrides the latency of one operation.
func (b Builder) WithLatency(op Op, ticks int) Builder {
	latency := make(map[Op]int, len(b.latency)+1)
	for k, v := range b.latency {
		latency[k] = v
	}

	latency[op] = ticks
	b.latency = latency

	return b
}

// Build creates the unit.
func (b Builder) Build(name string) *Comp {
	if len(b.ops) == 0 {
		log.Panicf("unit %s has an empty repertoire", name)
	}

	c := &Comp{
		name:      name,
		pipelines: make(map[Op]pipelining.Pipeline),
		latency:   make(map[Op]int),
		out:       sim.NewBuffer(name+".Out", 1),
	}

	for _, op := range b.ops {
		if op >= numOps {
			log.Panicf("unit %s: unknown operation %s", name, op)
		}

		l := DefaultLatency(op)
		if override, ok := b.latency[op]; ok {
			l = override
		}

		if l < 1 {
			log.Panicf("unit %s: latency of %s must be at least 1", name, op)
		}

		c.latency[op] = l
		c.pipelines[op] = pipelining.MakeBuilder().
			WithNumStage(l).
			WithCyclePerStage(1).
			WithPostPipelineBuffer(c.out).
			Build(name + ".Pipe" + op.String())
	}

	return c
}
