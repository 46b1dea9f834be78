package ctrl

import (
	"log"
	"math"

	"github.com/horizon0210/PID-Controller-With-FPGA/fpu"
	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// DefaultConversionFactor converts one count per 5 ms gate of a 1336
// count-per-revolution encoder into rad/s.
var DefaultConversionFactor = math.Float32frombits(0x3F70CAF0)

// Builder builds control schedulers.
type Builder struct {
	input      SampleSource
	source     CoefficientSource
	mode       SamplingMode
	conversion float32
	mac        fpu.Unit
	comparator fpu.Unit
	converter  fpu.Unit
}

// MakeBuilder returns a builder with live coefficient sampling.
func MakeBuilder() Builder {
	return Builder{
		mode:       SampleLive,
		conversion: DefaultConversionFactor,
	}
}

// WithInput sets where samples come from.
func (b Builder) WithInput(input SampleSource) Builder {
	b.input = input
	return b
}

// WithCoefficientSource sets where coefficients are read from.
func (b Builder) WithCoefficientSource(src CoefficientSource) Builder {
	b.source = src
	return b
}

// WithSamplingMode sets when coefficients are read.
func (b Builder) WithSamplingMode(mode SamplingMode) Builder {
	b.mode = mode
	return b
}

// WithConversionFactor sets the factor from counts per window to rad/s.
func (b Builder) WithConversionFactor(k float32) Builder {
	b.conversion = k
	return b
}

// WithMAC sets the unit that runs the multiply-accumulate chain.
func (b Builder) WithMAC(u fpu.Unit) Builder {
	b.mac = u
	return b
}

// WithComparator sets the unit that runs the saturation compares.
func (b Builder) WithComparator(u fpu.Unit) Builder {
	b.comparator = u
	return b
}

// WithConverter sets the unit that converts the count to a float. The MAC
// unit is used when none is given.
func (b Builder) WithConverter(u fpu.Unit) Builder {
	b.converter = u
	return b
}

// Build creates the scheduler.
func (b Builder) Build(name string) *Comp {
	sim.NameMustBeValid(name)

	if b.input == nil {
		log.Panicf("scheduler %s has no input", name)
	}

	if b.source == nil {
		log.Panicf("scheduler %s has no coefficient source", name)
	}

	c := &Comp{
		name:       name,
		input:      b.input,
		source:     b.source,
		mode:       b.mode,
		conversion: b.conversion,
	}

	c.units[RoleMAC] = b.mac
	c.units[RoleCompare] = b.comparator
	c.units[RoleConvert] = b.converter

	if c.units[RoleConvert] == nil {
		c.units[RoleConvert] = b.mac
	}

	for s := StageConvert; s <= StageCmpLow; s++ {
		def := stageTable[s]
		mustSupport(name, c.units[def.role], def.role, def.op)
	}

	return c
}
