// Package plant models the motor driven by the controller and the quadrature
// encoder mounted on its shaft.
package plant

import (
	"log"
	"math"
	"math/rand"

	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// Bridge provides the levels of the two switching outputs.
type Bridge interface {
	Lines() (forward, reverse bool)
}

// grayCode lists the encoder states in forward order. A is the high bit.
var grayCode = [4]uint8{0b00, 0b01, 0b11, 0b10}

// Motor is a first-order motor, speed' = Ku*v - lambda*speed, integrated once
// per clock tick.
type Motor struct {
	name   string
	bridge Bridge
	dt     float64
	ku     float64
	lambda float64
	supply float64
	cpr    int

	speed float64
	angle float64
	count int64

	rng         *rand.Rand
	glitchRate  float64
	glitchTicks int
	glitchLeft  int
	glitchLine  int
	numGlitches uint64
}

// Name returns the name of the motor.
func (m *Motor) Name() string {
	return m.name
}

// Speed returns the shaft speed in rad/s.
func (m *Motor) Speed() float64 {
	return m.speed
}

// Angle returns the shaft angle in rad.
func (m *Motor) Angle() float64 {
	return m.angle
}

// Count returns the number of encoder counts since start.
func (m *Motor) Count() int64 {
	return m.count
}

// NumGlitches returns how many glitches have been injected.
func (m *Motor) NumGlitches() uint64 {
	return m.numGlitches
}

// Voltage returns the voltage the bridge applies in the current tick.
func (m *Motor) Voltage() float64 {
	fwd, rev := m.bridge.Lines()

	switch {
	case fwd && !rev:
		return m.supply
	case rev && !fwd:
		return -m.supply
	default:
		return 0
	}
}

// SteadySpeed returns the speed reached under a constant voltage.
func (m *Motor) SteadySpeed(v float64) float64 {
	return m.ku / m.lambda * v
}

// Tick integrates the motor over one clock period.
func (m *Motor) Tick() bool {
	v := m.Voltage()

	m.speed += (m.ku*v - m.lambda*m.speed) * m.dt
	m.angle += m.speed * m.dt
	m.count = int64(math.Floor(m.angle * float64(m.cpr) / (2 * math.Pi)))

	m.injectGlitch()

	return true
}

func (m *Motor) injectGlitch() {
	if m.glitchLeft > 0 {
		m.glitchLeft--
		return
	}

	if m.rng == nil || m.rng.Float64() >= m.glitchRate {
		return
	}

	m.glitchLeft = m.glitchTicks
	m.glitchLine = m.rng.Intn(2)
	m.numGlitches++
}

// Lines returns the encoder levels.
func (m *Motor) Lines() (a, b bool) {
	state := grayCode[((m.count%4)+4)%4]

	if m.glitchLeft > 0 {
		state ^= 1 << m.glitchLine
	}

	return state&0b10 != 0, state&0b01 != 0
}

// Builder builds motors.
type Builder struct {
	freq        sim.Freq
	ku          float64
	lambda      float64
	supply      float64
	cpr         int
	speed       float64
	seed        int64
	glitchRate  float64
	glitchTicks int
}

// MakeBuilder returns a builder for a motor with a 10 rad/s per volt steady
// gain and a 0.2 s time constant, fed from 12 V.
func MakeBuilder() Builder {
	return Builder{
		freq:        1 * sim.MHz,
		ku:          50,
		lambda:      5,
		supply:      12,
		cpr:         1336,
		glitchTicks: 1,
	}
}

// WithFreq sets the integration clock.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithGain sets Ku.
func (b Builder) WithGain(ku float64) Builder {
	b.ku = ku
	return b
}

// WithPole sets lambda.
func (b Builder) WithPole(lambda float64) Builder {
	b.lambda = lambda
	return b
}

// WithSupply sets the bridge voltage.
func (b Builder) WithSupply(v float64) Builder {
	b.supply = v
	return b
}

// WithCPR sets the encoder counts per revolution, counting every edge.
func (b Builder) WithCPR(cpr int) Builder {
	b.cpr = cpr
	return b
}

// WithInitialSpeed sets the speed at time zero.
func (b Builder) WithInitialSpeed(speed float64) Builder {
	b.speed = speed
	return b
}

// WithGlitches makes the encoder flip a random line for the given number of
// ticks, with the given probability per tick.
func (b Builder) WithGlitches(rate float64, ticks int, seed int64) Builder {
	b.glitchRate = rate
	b.glitchTicks = ticks
	b.seed = seed

	return b
}

// Build creates the motor.
func (b Builder) Build(name string, bridge Bridge) *Motor {
	sim.NameMustBeValid(name)

	if bridge == nil {
		log.Panicf("motor %s has no bridge", name)
	}

	if b.cpr < 4 {
		log.Panicf("motor %s: encoder needs at least 4 counts per turn", name)
	}

	m := &Motor{
		name:        name,
		bridge:      bridge,
		dt:          float64(b.freq.Period()),
		ku:          b.ku,
		lambda:      b.lambda,
		supply:      b.supply,
		cpr:         b.cpr,
		speed:       b.speed,
		glitchRate:  b.glitchRate,
		glitchTicks: b.glitchTicks,
	}

	if b.glitchRate > 0 {
		m.rng = rand.New(rand.NewSource(b.seed))
	}

	return m
}
