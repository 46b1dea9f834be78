package qdec

import (
	"log"

	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// Builder builds quadrature decoders.
type Builder struct {
	freq          sim.Freq
	gateFreq      sim.Freq
	minPulseTicks int
	sampleBits    uint
	illegalBits   uint
	input         Lines
}

// MakeBuilder returns a builder with a 100 MHz clock and a 200 Hz gate.
func MakeBuilder() Builder {
	return Builder{
		freq:          100 * sim.MHz,
		gateFreq:      200 * sim.Hz,
		minPulseTicks: 4,
		sampleBits:    16,
		illegalBits:   16,
	}
}

// WithFreq sets the clock that samples the lines.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithGateFreq sets how often a sample is reported.
func (b Builder) WithGateFreq(freq sim.Freq) Builder {
	b.gateFreq = freq
	return b
}

// WithMinPulseTicks sets how long a line must hold a new level before the
// level is accepted.
func (b Builder) WithMinPulseTicks(n int) Builder {
	b.minPulseTicks = n
	return b
}

// WithSampleBits sets the width of the signed accumulator.
func (b Builder) WithSampleBits(n uint) Builder {
	b.sampleBits = n
	return b
}

// WithIllegalCounterBits sets the width of the illegal-transition counter.
func (b Builder) WithIllegalCounterBits(n uint) Builder {
	b.illegalBits = n
	return b
}

// WithInput sets where the raw lines are read from.
func (b Builder) WithInput(input Lines) Builder {
	b.input = input
	return b
}

// Build creates a decoder.
func (b Builder) Build(name string) *Comp {
	sim.NameMustBeValid(name)

	if b.input == nil {
		log.Panicf("decoder %s has no input", name)
	}

	window, exact := b.freq.Window(b.gateFreq)
	if !exact {
		log.Panicf("decoder %s: gate %.3f Hz does not divide clock %.3f Hz",
			name, float64(b.gateFreq), float64(b.freq))
	}

	if b.minPulseTicks < 1 {
		log.Panicf("decoder %s: minimum pulse must be at least one tick", name)
	}

	if b.sampleBits < 2 || b.sampleBits > 32 {
		log.Panicf("decoder %s: sample width %d out of range", name,
			b.sampleBits)
	}

	if b.illegalBits < 1 || b.illegalBits > 32 {
		log.Panicf("decoder %s: counter width %d out of range", name,
			b.illegalBits)
	}

	c := &Comp{
		name:       name,
		input:      b.input,
		window:     window,
		minPulse:   b.minPulseTicks,
		sampleMax:  int32(int64(1)<<(b.sampleBits-1) - 1),
		sampleMin:  int32(-(int64(1) << (b.sampleBits - 1))),
		illegalMax: uint32(uint64(1)<<b.illegalBits - 1),
	}

	return c
}
