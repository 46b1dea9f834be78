package ctrl

import (
	"log"
	"math"

	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// CycleLogger is a hook that prints every completed control cycle.
type CycleLogger struct {
	sim.LogHookBase
}

// NewCycleLogger returns a CycleLogger that writes into the logger.
func NewCycleLogger(logger *log.Logger) *CycleLogger {
	h := new(CycleLogger)
	h.Logger = logger

	return h
}

// Func prints the cycle carried by the hook context.
func (h *CycleLogger) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosCycleDone {
		return
	}

	c, ok := ctx.Item.(Cycle)
	if !ok {
		return
	}

	clamp := "-"
	switch {
	case c.Above:
		clamp = "hi"
	case c.Below:
		clamp = "lo"
	}

	h.Logger.Printf("cycle %d: n=%d x=%.4f dy=%.6f y=%.6f (%08x) clamp=%s",
		c.Index, c.Sample, c.X, c.DeltaY, c.YSat,
		math.Float32bits(c.YSat), clamp)
}
