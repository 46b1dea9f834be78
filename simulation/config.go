package simulation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/horizon0210/PID-Controller-With-FPGA/coeff"
	"github.com/horizon0210/PID-Controller-With-FPGA/ctrl"
	"github.com/horizon0210/PID-Controller-With-FPGA/fpu"
)

// Config describes a closed-loop run: the controller core, its register
// contents and the motor it drives.
type Config struct {
	Clock   ClockConfig   `yaml:"clock"`
	Decoder DecoderConfig `yaml:"decoder"`
	Units   UnitConfig    `yaml:"units"`
	Control ControlConfig `yaml:"control"`
	PWM     PWMConfig     `yaml:"pwm"`
	Motor   MotorConfig   `yaml:"motor"`
}

// ClockConfig sets the core clock and the sample gate.
type ClockConfig struct {
	FreqHz float64 `yaml:"freq_hz"`
	GateHz float64 `yaml:"gate_hz"`
}

// DecoderConfig sets the quadrature decoder parameters.
type DecoderConfig struct {
	MinPulseTicks int  `yaml:"min_pulse_ticks"`
	SampleBits    uint `yaml:"sample_bits"`
	IllegalBits   uint `yaml:"illegal_bits"`
}

// UnitConfig sets per-operation latencies in ticks. Zero keeps the default.
type UnitConfig struct {
	FMA        int `yaml:"fma"`
	FMS        int `yaml:"fms"`
	Compare    int `yaml:"compare"`
	IntToFloat int `yaml:"i2f"`
	Mul        int `yaml:"mul"`
	FloatToInt int `yaml:"f2i"`
}

// ControlConfig sets what is loaded into the register file.
type ControlConfig struct {
	// Sampling is "live" or "latch".
	Sampling string `yaml:"sampling"`

	// Reference loads the fixed reference coefficient set instead of the
	// coefficients derived from Gains.
	Reference bool `yaml:"reference"`

	Gains           coeff.Gains `yaml:"gains"`
	Limit           float32     `yaml:"limit"`
	TargetRadPerSec float32     `yaml:"target_rad_per_sec"`
}

// PWMConfig sets the PWM period.
type PWMConfig struct {
	PeriodTicks uint32 `yaml:"period_ticks"`
}

// MotorConfig sets the plant and its encoder.
type MotorConfig struct {
	Gain        float64 `yaml:"gain"`
	Pole        float64 `yaml:"pole"`
	Supply      float64 `yaml:"supply"`
	CPR         int     `yaml:"cpr"`
	GlitchRate  float64 `yaml:"glitch_rate"`
	GlitchTicks int     `yaml:"glitch_ticks"`
	Seed        int64   `yaml:"seed"`

	// InitialSpeed is the shaft speed in rad/s when the run starts.
	InitialSpeed float64 `yaml:"initial_speed"`
}

// Default returns the configuration of the reference setup.
func Default() *Config {
	return &Config{
		Clock: ClockConfig{
			FreqHz: 1e6,
			GateHz: 200,
		},
		Decoder: DecoderConfig{
			MinPulseTicks: 4,
			SampleBits:    16,
			IllegalBits:   16,
		},
		Control: ControlConfig{
			Sampling:        ctrl.SampleLive.String(),
			Gains:           coeff.DefaultGains(),
			Limit:           12,
			TargetRadPerSec: 100,
		},
		PWM: PWMConfig{
			PeriodTicks: 500,
		},
		Motor: MotorConfig{
			Gain:        50,
			Pole:        5,
			Supply:      12,
			CPR:         1336,
			GlitchTicks: 1,
		},
	}
}

// Load reads a YAML configuration and fills what it leaves out.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML configuration and fills what it leaves out.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&c)

	return &c, nil
}

func applyDefaults(c *Config) {
	d := Default()

	if c.Clock.FreqHz == 0 {
		c.Clock.FreqHz = d.Clock.FreqHz
	}
	if c.Clock.GateHz == 0 {
		c.Clock.GateHz = d.Clock.GateHz
	}
	if c.Decoder.MinPulseTicks == 0 {
		c.Decoder.MinPulseTicks = d.Decoder.MinPulseTicks
	}
	if c.Decoder.SampleBits == 0 {
		c.Decoder.SampleBits = d.Decoder.SampleBits
	}
	if c.Decoder.IllegalBits == 0 {
		c.Decoder.IllegalBits = d.Decoder.IllegalBits
	}
	if c.Control.Sampling == "" {
		c.Control.Sampling = d.Control.Sampling
	}
	if c.Control.Gains == (coeff.Gains{}) {
		c.Control.Gains = d.Control.Gains
	}
	if c.Control.Gains.Ts == 0 {
		c.Control.Gains.Ts = 1 / c.Clock.GateHz
	}
	if c.Control.Limit == 0 {
		c.Control.Limit = d.Control.Limit
	}
	if c.PWM.PeriodTicks == 0 {
		c.PWM.PeriodTicks = d.PWM.PeriodTicks
	}
	if c.Motor.Gain == 0 {
		c.Motor.Gain = d.Motor.Gain
	}
	if c.Motor.Pole == 0 {
		c.Motor.Pole = d.Motor.Pole
	}
	if c.Motor.Supply == 0 {
		c.Motor.Supply = d.Motor.Supply
	}
	if c.Motor.CPR == 0 {
		c.Motor.CPR = d.Motor.CPR
	}
	if c.Motor.GlitchTicks == 0 {
		c.Motor.GlitchTicks = d.Motor.GlitchTicks
	}
}

// SamplingMode decodes the sampling setting.
func (c *Config) SamplingMode() (ctrl.SamplingMode, error) {
	switch c.Control.Sampling {
	case "live":
		return ctrl.SampleLive, nil
	case "latch":
		return ctrl.SampleAtLatch, nil
	default:
		return 0, fmt.Errorf("unknown sampling mode %q", c.Control.Sampling)
	}
}

// Coefficients returns the register contents the configuration asks for.
func (c *Config) Coefficients() ctrl.Coefficients {
	var k ctrl.Coefficients
	if c.Control.Reference {
		k = ctrl.ReferenceCoefficients()
	} else {
		k = coeff.Compute(c.Control.Gains)
	}

	k = coeff.WithLimit(k, c.Control.Limit)
	k.Target = c.Control.TargetRadPerSec

	return k
}

// ConversionFactor returns the rad/s represented by one count per gate.
func (c *Config) ConversionFactor() float32 {
	return coeff.CountToRadPerSec(c.Motor.CPR, c.Clock.GateHz)
}

// Latency returns the configured latency of an operation.
func (c *Config) Latency(op fpu.Op) int {
	l := 0

	switch op {
	case fpu.OpFMA:
		l = c.Units.FMA
	case fpu.OpFMS:
		l = c.Units.FMS
	case fpu.OpCompare:
		l = c.Units.Compare
	case fpu.OpIntToFloat:
		l = c.Units.IntToFloat
	case fpu.OpMul:
		l = c.Units.Mul
	case fpu.OpFloatToInt:
		l = c.Units.FloatToInt
	}

	if l == 0 {
		return fpu.DefaultLatency(op)
	}

	return l
}

// Validate checks the values that no builder can check on its own.
func (c *Config) Validate() error {
	if _, err := c.SamplingMode(); err != nil {
		return err
	}

	if c.Clock.GateHz <= 0 || c.Clock.FreqHz < c.Clock.GateHz {
		return fmt.Errorf("gate %g Hz must be positive and below the clock %g Hz",
			c.Clock.GateHz, c.Clock.FreqHz)
	}

	if c.Control.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %g", c.Control.Limit)
	}

	if c.PWM.PeriodTicks < 2 {
		return fmt.Errorf("pwm period must be at least 2 ticks, got %d",
			c.PWM.PeriodTicks)
	}

	if c.Motor.CPR < 4 {
		return fmt.Errorf("encoder needs at least 4 counts per turn, got %d",
			c.Motor.CPR)
	}

	for _, op := range []fpu.Op{
		fpu.OpFMA, fpu.OpFMS, fpu.OpCompare,
		fpu.OpIntToFloat, fpu.OpMul, fpu.OpFloatToInt,
	} {
		if c.Latency(op) < 1 {
			return fmt.Errorf("latency of %s must be at least 1", op)
		}
	}

	return nil
}
