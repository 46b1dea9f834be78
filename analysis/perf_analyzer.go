// Package analysis summarizes a simulation: how busy the arithmetic units are
// while it runs, and how the speed responds once it is recorded.
package analysis

import (
	"log"

	"github.com/horizon0210/PID-Controller-With-FPGA/fpu"
	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// PerfAnalyzerEntry is a single entry in the performance database.
type PerfAnalyzerEntry struct {
	Start     sim.VTimeInSec
	End       sim.VTimeInSec
	Where     string
	What      string
	EntryType string
	Value     float64
	Unit      string
}

// PerfLogger is the interface that provide the service that can record
// performance data entries.
type PerfLogger interface {
	AddDataEntry(entry PerfAnalyzerEntry)
}

// PerfAnalyzer attaches a UnitAnalyzer to every unit registered and forwards
// their entries to a backend.
type PerfAnalyzer struct {
	period    sim.VTimeInSec
	engine    sim.TimeTeller
	backend   PerfAnalyzerBackend
	analyzers []*UnitAnalyzer
}

// RegisterEngine registers the engine that is used in the simulation.
func (p *PerfAnalyzer) RegisterEngine(e sim.TimeTeller) {
	p.engine = e
}

// RegisterUnit starts tracking an arithmetic unit.
func (p *PerfAnalyzer) RegisterUnit(u fpu.Unit) {
	if p.engine == nil {
		log.Panic("register the engine before the units")
	}

	a := MakeUnitAnalyzerBuilder().
		WithTimeTeller(p.engine).
		WithPerfLogger(p).
		WithPeriod(p.period).
		WithUnit(u).
		Build()

	u.AcceptHook(a)
	p.analyzers = append(p.analyzers, a)
}

// AddDataEntry passes an entry to the backend.
func (p *PerfAnalyzer) AddDataEntry(entry PerfAnalyzerEntry) {
	p.backend.AddDataEntry(entry)
}

// Flush summarizes the period in progress and flushes the backend.
func (p *PerfAnalyzer) Flush() {
	for _, a := range p.analyzers {
		a.Flush()
	}

	p.backend.Flush()
}

// Handle flushes the partial periods when the simulation ends.
func (p *PerfAnalyzer) Handle(_ sim.VTimeInSec) {
	p.Flush()
}

// PerfAnalyzerBuilder is a builder that can build a PerfAnalyzer.
type PerfAnalyzerBuilder struct {
	period  sim.VTimeInSec
	backend PerfAnalyzerBackend
}

// MakePerfAnalyzerBuilder creates a new PerfAnalyzerBuilder that summarizes
// every 10 ms of simulated time.
func MakePerfAnalyzerBuilder() PerfAnalyzerBuilder {
	return PerfAnalyzerBuilder{
		period: 0.01,
	}
}

// WithPeriod sets the length of a summarized period.
func (b PerfAnalyzerBuilder) WithPeriod(
	period sim.VTimeInSec,
) PerfAnalyzerBuilder {
	b.period = period
	return b
}

// WithBackend sets where the entries are written.
func (b PerfAnalyzerBuilder) WithBackend(
	backend PerfAnalyzerBackend,
) PerfAnalyzerBuilder {
	b.backend = backend
	return b
}

// Build creates a PerfAnalyzer.
func (b PerfAnalyzerBuilder) Build() *PerfAnalyzer {
	if b.backend == nil {
		log.Panic("perf analyzer has no backend")
	}

	if b.period <= 0 {
		log.Panicf("period must be positive, got %g", b.period)
	}

	return &PerfAnalyzer{
		period:  b.period,
		backend: b.backend,
	}
}
