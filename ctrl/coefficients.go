package ctrl

import (
	"fmt"
)

// CoeffID identifies one externally supplied parameter of the controller.
type CoeffID int

// Parameters read by the scheduler. Target is the setpoint in rad/s.
const (
	CoeffA0 CoeffID = iota
	CoeffC1
	CoeffC2
	CoeffC3
	CoeffC4
	CoeffC5
	CoeffC6
	CoeffC7a
	CoeffC7b
	CoeffLimit
	CoeffRecipLimit
	CoeffTarget
	NumCoeffs
)

var coeffNames = [NumCoeffs]string{
	"a0", "c1", "c2", "c3", "c4", "c5", "c6", "c7a", "c7b",
	"ysat", "recip_ysat", "target",
}

func (id CoeffID) String() string {
	if id < 0 || id >= NumCoeffs {
		return fmt.Sprintf("CoeffID(%d)", int(id))
	}

	return coeffNames[id]
}

// A CoefficientSource provides the current value of a parameter. Values are
// read at the moment a request that uses them is issued.
type CoefficientSource interface {
	Coefficient(id CoeffID) float32
}

// Coefficients is a full parameter set of the controller.
type Coefficients struct {
	A0, C1, C2, C3, C4, C5, C6 float32
	C7a, C7b                   float32
	Limit, RecipLimit          float32
	Target                     float32
}

// Coefficient returns one parameter of the set, which makes a fixed set usable
// as a CoefficientSource.
func (c Coefficients) Coefficient(id CoeffID) float32 {
	switch id {
	case CoeffA0:
		return c.A0
	case CoeffC1:
		return c.C1
	case CoeffC2:
		return c.C2
	case CoeffC3:
		return c.C3
	case CoeffC4:
		return c.C4
	case CoeffC5:
		return c.C5
	case CoeffC6:
		return c.C6
	case CoeffC7a:
		return c.C7a
	case CoeffC7b:
		return c.C7b
	case CoeffLimit:
		return c.Limit
	case CoeffRecipLimit:
		return c.RecipLimit
	case CoeffTarget:
		return c.Target
	default:
		panic(fmt.Sprintf("unknown coefficient %d", int(id)))
	}
}

// Set returns a copy of the set with one parameter replaced.
func (c Coefficients) Set(id CoeffID, v float32) Coefficients {
	switch id {
	case CoeffA0:
		c.A0 = v
	case CoeffC1:
		c.C1 = v
	case CoeffC2:
		c.C2 = v
	case CoeffC3:
		c.C3 = v
	case CoeffC4:
		c.C4 = v
	case CoeffC5:
		c.C5 = v
	case CoeffC6:
		c.C6 = v
	case CoeffC7a:
		c.C7a = v
	case CoeffC7b:
		c.C7b = v
	case CoeffLimit:
		c.Limit = v
	case CoeffRecipLimit:
		c.RecipLimit = v
	case CoeffTarget:
		c.Target = v
	default:
		panic(fmt.Sprintf("unknown coefficient %d", int(id)))
	}

	return c
}

// Snapshot reads every parameter from a source.
func Snapshot(src CoefficientSource) Coefficients {
	var c Coefficients
	for id := CoeffID(0); id < NumCoeffs; id++ {
		c = c.Set(id, src.Coefficient(id))
	}

	return c
}

// ReferenceCoefficients returns the tuning used to validate the hardware:
// a 12 V limit and a 100 rad/s setpoint.
func ReferenceCoefficients() Coefficients {
	return Coefficients{
		A0:         0.016393443,
		C1:         0.110400000,
		C2:         -0.254104918,
		C3:         0.004098361,
		C4:         -0.742203279,
		C5:         1.237711475,
		C6:         -0.495901639,
		C7a:        0.040000000,
		C7b:        -0.000655738,
		Limit:      12,
		RecipLimit: 1.0 / 12,
		Target:     100,
	}
}
