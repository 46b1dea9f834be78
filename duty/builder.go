package duty

import (
	"log"

	"github.com/horizon0210/PID-Controller-With-FPGA/ctrl"
	"github.com/horizon0210/PID-Controller-With-FPGA/fpu"
	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// Builder builds duty schedulers.
type Builder struct {
	input       OutputSource
	source      ctrl.CoefficientSource
	unit        fpu.Unit
	periodTicks uint32
}

// MakeBuilder returns a builder for a 5000-tick PWM period.
func MakeBuilder() Builder {
	return Builder{
		periodTicks: 5000,
	}
}

// WithInput sets where controller outputs come from.
func (b Builder) WithInput(input OutputSource) Builder {
	b.input = input
	return b
}

// WithCoefficientSource sets where the reciprocal limit is read from.
func (b Builder) WithCoefficientSource(src ctrl.CoefficientSource) Builder {
	b.source = src
	return b
}

// WithUnit sets the unit that multiplies and truncates.
func (b Builder) WithUnit(u fpu.Unit) Builder {
	b.unit = u
	return b
}

// WithPeriodTicks sets the length of one PWM period.
func (b Builder) WithPeriodTicks(n uint32) Builder {
	b.periodTicks = n
	return b
}

// Build creates the scheduler.
func (b Builder) Build(name string) *Comp {
	sim.NameMustBeValid(name)

	switch {
	case b.input == nil:
		log.Panicf("duty scheduler %s has no input", name)
	case b.source == nil:
		log.Panicf("duty scheduler %s has no coefficient source", name)
	case b.unit == nil:
		log.Panicf("duty scheduler %s has no unit", name)
	case b.periodTicks < 2:
		log.Panicf("duty scheduler %s: period must be at least 2 ticks", name)
	}

	for _, op := range []fpu.Op{fpu.OpMul, fpu.OpFloatToInt} {
		if !b.unit.Supports(op) {
			log.Panicf("duty scheduler %s: unit %s cannot run %s",
				name, b.unit.Name(), op)
		}
	}

	return &Comp{
		name:        name,
		input:       b.input,
		source:      b.source,
		unit:        b.unit,
		periodTicks: b.periodTicks,
	}
}
