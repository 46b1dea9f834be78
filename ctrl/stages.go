package ctrl

import (
	"fmt"

	"github.com/horizon0210/PID-Controller-With-FPGA/fpu"
)

// Stage is a step of the control cycle.
type Stage int

// Stages in the order they run. Every stage between StageConvert and
// StageCmpLow issues exactly one arithmetic request.
const (
	StageIdle Stage = iota
	StageConvert
	StageScale
	StageMac0
	StageMac1
	StageMac2
	StageMac3
	StageMac4
	StageMac5
	StageMac6
	StageAwErr1
	StageAwTap1
	StageAwErr2
	StageAwTap2
	StageIntegrate
	StageCmpHigh
	StageCmpLow
	StageFinalize
	StageUpdate
	numStages
)

var stageNames = [numStages]string{
	"Idle", "Convert", "Scale",
	"Mac0", "Mac1", "Mac2", "Mac3", "Mac4", "Mac5", "Mac6",
	"AwErr1", "AwTap1", "AwErr2", "AwTap2",
	"Integrate", "CmpHigh", "CmpLow", "Finalize", "Update",
}

func (s Stage) String() string {
	if s < 0 || s >= numStages {
		return fmt.Sprintf("Stage(%d)", int(s))
	}

	return stageNames[s]
}

// Role names the arithmetic unit a stage is served by.
type Role int

// Roles of the units driven by the scheduler.
const (
	RoleMAC Role = iota
	RoleCompare
	RoleConvert
	numRoles
)

func (r Role) String() string {
	switch r {
	case RoleMAC:
		return "MAC"
	case RoleCompare:
		return "Compare"
	case RoleConvert:
		return "Convert"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// work holds the operands latched and the partial results produced during
// one cycle.
type work struct {
	sample   int32
	w        float32
	measured float32
	x        float32
	sum      float32
	e1       float32
	e2       float32
	dy       float32
	yUnsat   float32
	hiLimit  float32
	loLimit  float32
	above    bool
	below    bool
	ySat     float32
}

type stageDef struct {
	role   Role
	op     fpu.Op
	issue  func(c *Comp) fpu.Request
	retire func(c *Comp, r fpu.Result)
}

// macTerm builds the stage that adds coeff*operand to the running sum. The
// first term starts the sum from zero.
func macTerm(id CoeffID, operand func(c *Comp) float32, first bool) stageDef {
	return stageDef{
		role: RoleMAC,
		op:   fpu.OpFMA,
		issue: func(c *Comp) fpu.Request {
			addend := c.cur.sum
			if first {
				addend = 0
			}

			return fpu.FMA(c.coeff(id), operand(c), addend)
		},
		retire: func(c *Comp, r fpu.Result) { c.cur.sum = r.F },
	}
}

var stageTable = map[Stage]stageDef{
	StageConvert: {
		role:   RoleConvert,
		op:     fpu.OpIntToFloat,
		issue:  func(c *Comp) fpu.Request { return fpu.IntToFloat(c.cur.sample) },
		retire: func(c *Comp, r fpu.Result) { c.cur.measured = r.F },
	},
	StageScale: {
		role: RoleMAC,
		op:   fpu.OpFMA,
		issue: func(c *Comp) fpu.Request {
			return fpu.FMA(c.cur.measured, c.conversion, 0)
		},
		retire: func(c *Comp, r fpu.Result) { c.cur.x = r.F },
	},
	StageMac0: macTerm(CoeffC1,
		func(c *Comp) float32 { return c.cur.w }, true),
	StageMac1: macTerm(CoeffA0,
		func(c *Comp) float32 { return c.state.DeltaY1 }, false),
	StageMac2: macTerm(CoeffC2,
		func(c *Comp) float32 { return c.state.W1 }, false),
	StageMac3: macTerm(CoeffC3,
		func(c *Comp) float32 { return c.state.W2 }, false),
	StageMac4: macTerm(CoeffC4,
		func(c *Comp) float32 { return c.cur.x }, false),
	StageMac5: macTerm(CoeffC5,
		func(c *Comp) float32 { return c.state.X1 }, false),
	StageMac6: macTerm(CoeffC6,
		func(c *Comp) float32 { return c.state.X2 }, false),
	StageAwErr1: {
		role: RoleMAC,
		op:   fpu.OpFMS,
		issue: func(c *Comp) fpu.Request {
			return fpu.FMS(c.state.YSat1, 1, c.state.YUnsat1)
		},
		retire: func(c *Comp, r fpu.Result) { c.cur.e1 = r.F },
	},
	StageAwTap1: {
		role: RoleMAC,
		op:   fpu.OpFMA,
		issue: func(c *Comp) fpu.Request {
			return fpu.FMA(c.coeff(CoeffC7a), c.cur.e1, c.cur.sum)
		},
		retire: func(c *Comp, r fpu.Result) { c.cur.sum = r.F },
	},
	StageAwErr2: {
		role: RoleMAC,
		op:   fpu.OpFMS,
		issue: func(c *Comp) fpu.Request {
			return fpu.FMS(c.state.YSat2, 1, c.state.YUnsat2)
		},
		retire: func(c *Comp, r fpu.Result) { c.cur.e2 = r.F },
	},
	StageAwTap2: {
		role: RoleMAC,
		op:   fpu.OpFMA,
		issue: func(c *Comp) fpu.Request {
			return fpu.FMA(c.coeff(CoeffC7b), c.cur.e2, c.cur.sum)
		},
		retire: func(c *Comp, r fpu.Result) { c.cur.dy = r.F },
	},
	StageIntegrate: {
		role: RoleMAC,
		op:   fpu.OpFMA,
		issue: func(c *Comp) fpu.Request {
			return fpu.FMA(c.cur.dy, 1, c.state.YUnsat1)
		},
		retire: func(c *Comp, r fpu.Result) { c.cur.yUnsat = r.F },
	},
	StageCmpHigh: {
		role: RoleCompare,
		op:   fpu.OpCompare,
		issue: func(c *Comp) fpu.Request {
			c.cur.hiLimit = c.coeff(CoeffLimit)
			return fpu.Compare(c.cur.yUnsat, c.cur.hiLimit)
		},
		retire: func(c *Comp, r fpu.Result) { c.cur.above = r.Cmp.Greater() },
	},
	StageCmpLow: {
		role: RoleCompare,
		op:   fpu.OpCompare,
		issue: func(c *Comp) fpu.Request {
			c.cur.loLimit = fpu.NegateSign(c.coeff(CoeffLimit))
			return fpu.Compare(c.cur.yUnsat, c.cur.loLimit)
		},
		retire: func(c *Comp, r fpu.Result) { c.cur.below = r.Cmp.Less() },
	},
}
