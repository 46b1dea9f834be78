package analysis

import (
	"log"
	"math"

	"github.com/horizon0210/PID-Controller-With-FPGA/fpu"
	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// UnitAnalyzer is a hook that measures, period by period, the fraction of
// time an arithmetic unit holds a request and how many requests it takes.
type UnitAnalyzer struct {
	PerfLogger
	sim.TimeTeller

	unit   fpu.Unit
	period sim.VTimeInSec

	periodStart sim.VTimeInSec
	busy        bool
	busySince   sim.VTimeInSec
	busyTime    sim.VTimeInSec
	numIssued   int
}

// Func accounts for a request entering or leaving the unit.
func (a *UnitAnalyzer) Func(ctx sim.HookCtx) {
	if ctx.Pos != fpu.HookPosIssue && ctx.Pos != fpu.HookPosComplete {
		return
	}

	now := a.CurrentTime()
	a.closePeriodsBefore(now)

	switch ctx.Pos {
	case fpu.HookPosIssue:
		a.busy = true
		a.busySince = now
		a.numIssued++
	case fpu.HookPosComplete:
		if a.busy {
			a.busyTime += now - a.busySince
			a.busy = false
		}
	}
}

// Flush reports the period in progress up to the current time.
func (a *UnitAnalyzer) Flush() {
	now := a.CurrentTime()
	a.closePeriodsBefore(now)

	if now <= a.periodStart {
		return
	}

	a.closePeriod(now)
}

func (a *UnitAnalyzer) closePeriodsBefore(now sim.VTimeInSec) {
	for now >= a.periodEndTime() {
		a.closePeriod(a.periodEndTime())
	}
}

func (a *UnitAnalyzer) closePeriod(end sim.VTimeInSec) {
	if a.busy {
		a.busyTime += end - a.busySince
		a.busySince = end
	}

	if a.numIssued > 0 || a.busyTime > 0 {
		a.summarizePeriod(a.periodStart, end)
	}

	a.periodStart = end
	a.busyTime = 0
	a.numIssued = 0
}

func (a *UnitAnalyzer) summarizePeriod(start, end sim.VTimeInSec) {
	a.PerfLogger.AddDataEntry(PerfAnalyzerEntry{
		Start:     start,
		End:       end,
		Where:     a.unit.Name(),
		What:      "Utilization",
		EntryType: "Unit",
		Value:     float64(a.busyTime / (end - start)),
		Unit:      "",
	})

	a.PerfLogger.AddDataEntry(PerfAnalyzerEntry{
		Start:     start,
		End:       end,
		Where:     a.unit.Name(),
		What:      "IssueRate",
		EntryType: "Unit",
		Value:     float64(a.numIssued) / float64(end-start),
		Unit:      "1/s",
	})
}

func (a *UnitAnalyzer) periodEndTime() sim.VTimeInSec {
	return a.periodStart + a.period
}

// UnitAnalyzerBuilder builds UnitAnalyzers.
type UnitAnalyzerBuilder struct {
	timeTeller sim.TimeTeller
	perfLogger PerfLogger
	period     sim.VTimeInSec
	unit       fpu.Unit
}

// MakeUnitAnalyzerBuilder creates a builder with a one-second period.
func MakeUnitAnalyzerBuilder() UnitAnalyzerBuilder {
	return UnitAnalyzerBuilder{
		period: 1,
	}
}

// WithTimeTeller sets where the current time is read.
func (b UnitAnalyzerBuilder) WithTimeTeller(
	t sim.TimeTeller,
) UnitAnalyzerBuilder {
	b.timeTeller = t
	return b
}

// WithPerfLogger sets where the entries are reported.
func (b UnitAnalyzerBuilder) WithPerfLogger(
	l PerfLogger,
) UnitAnalyzerBuilder {
	b.perfLogger = l
	return b
}

// WithPeriod sets the length of a summarized period.
func (b UnitAnalyzerBuilder) WithPeriod(
	period sim.VTimeInSec,
) UnitAnalyzerBuilder {
	b.period = period
	return b
}

// WithUnit sets the unit that is analyzed.
func (b UnitAnalyzerBuilder) WithUnit(u fpu.Unit) UnitAnalyzerBuilder {
	b.unit = u
	return b
}

// Build creates the UnitAnalyzer.
func (b UnitAnalyzerBuilder) Build() *UnitAnalyzer {
	if b.timeTeller == nil || b.perfLogger == nil || b.unit == nil {
		log.Panic("unit analyzer needs a time teller, a logger and a unit")
	}

	if b.period <= 0 || math.IsInf(float64(b.period), 0) {
		log.Panicf("period must be positive and finite, got %g", b.period)
	}

	return &UnitAnalyzer{
		PerfLogger: b.perfLogger,
		TimeTeller: b.timeTeller,
		unit:       b.unit,
		period:     b.period,
	}
}
