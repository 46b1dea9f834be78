// Package coeff derives the discrete controller coefficients from continuous
// PID gains. It is a pure function of its inputs.
package coeff

import (
	"math"

	"github.com/horizon0210/PID-Controller-With-FPGA/ctrl"
)

// Gains are the continuous-time tuning parameters.
type Gains struct {
	Kp float64 `yaml:"kp" json:"kp"`
	Ki float64 `yaml:"ki" json:"ki"`
	Kd float64 `yaml:"kd" json:"kd"`

	// N is the derivative filter factor. The filter time constant is Td/N.
	N float64 `yaml:"n" json:"n"`

	// B and C weight the setpoint in the proportional and derivative paths.
	B float64 `yaml:"b" json:"b"`
	C float64 `yaml:"c" json:"c"`

	// Kb is the back-calculation gain of the anti-windup path, in 1/s.
	Kb float64 `yaml:"kb" json:"kb"`

	// Ts is the sample period in seconds.
	Ts float64 `yaml:"ts" json:"ts"`
}

// DefaultGains returns the tuning the reference coefficients were derived
// from, at a 200 Hz sample rate.
func DefaultGains() Gains {
	return Gains{
		Kp: 0.25,
		Ki: 0.08,
		Kd: 0.0025,
		N:  120,
		B:  0.44,
		C:  0,
		Kb: 100,
		Ts: 1.0 / 200,
	}
}

// TimeConstants returns the integral time, the derivative time, and the
// derivative filter ratio. Ti is +Inf when there is no integral action.
func (g Gains) TimeConstants() (ti, td, a float64) {
	ti = math.Inf(1)
	if g.Ki > 0 && g.Kp > 0 {
		ti = g.Kp / g.Ki
	}

	if g.Kp > 0 {
		td = g.Kd / g.Kp
	}

	if g.N > 0 {
		a = 1 / g.N
	}

	return ti, td, a
}

// Compute returns the coefficients of the delta-form controller. The limit,
// its reciprocal and the target are left zero. Every value is computed in
// float64 and rounded to float32 once.
func Compute(g Gains) ctrl.Coefficients {
	ts := g.Ts
	ti, td, a := g.TimeConstants()

	den := ts + a*td

	tsOverTi := 0.0
	if !math.IsInf(ti, 1) {
		tsOverTi = ts / ti
	}

	a0 := 0.0
	if den > 0 {
		a0 = a * td / den
	}

	c1 := g.Kp * (g.B + tsOverTi + td*g.C/den)
	c2 := -g.Kp * (g.B*(ts+2*a*td) + a*td*tsOverTi + 2*td*g.C) / den
	c3 := g.Kp * td * (a*g.B + g.C) / den
	c4 := -g.Kp * (1 + tsOverTi + td/den)
	c5 := g.Kp * (ts + 2*a*td + a*td*tsOverTi + 2*td) / den
	c6 := -g.Kp * td * (a + 1) / den
	c7a := g.Ki * g.Kb * ts
	c7b := -c7a * a0

	return ctrl.Coefficients{
		A0:  float32(a0),
		C1:  float32(c1),
		C2:  float32(c2),
		C3:  float32(c3),
		C4:  float32(c4),
		C5:  float32(c5),
		C6:  float32(c6),
		C7a: float32(c7a),
		C7b: float32(c7b),
	}
}

// WithLimit sets the saturation limit and its reciprocal.
func WithLimit(k ctrl.Coefficients, limit float32) ctrl.Coefficients {
	k.Limit = limit
	k.RecipLimit = 1 / limit

	return k
}

// WithTargetRPM sets the setpoint from a speed in revolutions per minute.
func WithTargetRPM(k ctrl.Coefficients, rpm float32) ctrl.Coefficients {
	k.Target = RPMToRadPerSec(rpm)
	return k
}

// RPMToRadPerSec converts revolutions per minute to rad/s.
func RPMToRadPerSec(rpm float32) float32 {
	return rpm * float32(2*math.Pi/60)
}

// CountToRadPerSec returns the speed in rad/s represented by one count per
// gate window of an encoder with cpr counts per revolution.
func CountToRadPerSec(cpr int, gateHz float64) float32 {
	return float32(2 * math.Pi * gateHz / float64(cpr))
}

// CountToRPM returns the speed in RPM represented by one count per gate
// window.
func CountToRPM(cpr int, gateHz float64) float32 {
	return float32(60 * gateHz / float64(cpr))
}
