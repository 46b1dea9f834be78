package simulation

import (
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/rs/xid"

	"github.com/horizon0210/PID-Controller-With-FPGA/analysis"
	"github.com/horizon0210/PID-Controller-With-FPGA/ctrl"
	"github.com/horizon0210/PID-Controller-With-FPGA/datarecording"
	"github.com/horizon0210/PID-Controller-With-FPGA/duty"
	"github.com/horizon0210/PID-Controller-With-FPGA/fpu"
	"github.com/horizon0210/PID-Controller-With-FPGA/monitoring"
	"github.com/horizon0210/PID-Controller-With-FPGA/plant"
	"github.com/horizon0210/PID-Controller-With-FPGA/pwm"
	"github.com/horizon0210/PID-Controller-With-FPGA/qdec"
	"github.com/horizon0210/PID-Controller-With-FPGA/regfile"
	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

// Builder can be used to build a simulation.
type Builder struct {
	config      *Config
	record      bool
	recordPath  string
	monitorOn   bool
	monitorPort int
	openBrowser bool
	cycleLogger *log.Logger
	perfPeriod  float64
	perfCSV     io.Writer
}

// MakeBuilder creates a new builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		config: Default(),
	}
}

// WithConfig sets the configuration of the run.
func (b Builder) WithConfig(c *Config) Builder {
	b.config = c
	return b
}

// WithRecording records every control cycle into an SQLite file. An empty
// path picks a unique name.
func (b Builder) WithRecording(path string) Builder {
	b.record = true
	b.recordPath = path

	return b
}

// WithMonitor starts the monitoring server. A zero port picks a random one.
func (b Builder) WithMonitor(port int) Builder {
	b.monitorOn = true
	b.monitorPort = port

	return b
}

// WithBrowser opens the monitor in the default browser.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithPerfAnalysis records the utilization of each arithmetic unit over
// periods of the given length in seconds. The rows go into the recording
// unless WithPerfCSV names another destination.
func (b Builder) WithPerfAnalysis(period float64) Builder {
	b.perfPeriod = period
	return b
}

// WithPerfCSV writes the perf analysis rows as CSV into w instead of the
// recording.
func (b Builder) WithPerfCSV(w io.Writer) Builder {
	b.perfCSV = w
	return b
}

// WithCycleLogger prints every control cycle into the logger.
func (b Builder) WithCycleLogger(logger *log.Logger) Builder {
	b.cycleLogger = logger
	return b
}

// Build builds the simulation. It fails if the configuration is invalid or if
// a sample could arrive while the previous one is still being processed.
func (b Builder) Build() (*Simulation, error) {
	if b.openBrowser && !b.monitorOn {
		return nil, fmt.Errorf("browser requires the monitor")
	}

	if b.perfPeriod < 0 || (b.perfPeriod > 0 && !b.record && b.perfCSV == nil) {
		return nil, fmt.Errorf(
			"perf analysis requires a positive period and a recording or a CSV writer")
	}

	if b.perfCSV != nil && b.perfPeriod == 0 {
		return nil, fmt.Errorf("a perf CSV writer requires perf analysis")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mode, _ := cfg.SamplingMode()

	freq := sim.Freq(cfg.Clock.FreqHz)
	window, exact := freq.Window(sim.Freq(cfg.Clock.GateHz))
	if !exact {
		return nil, fmt.Errorf("gate %g Hz does not divide clock %g Hz",
			cfg.Clock.GateHz, cfg.Clock.FreqHz)
	}

	s := &Simulation{
		id:     xid.New().String(),
		config: cfg,
		engine: sim.NewSerialEngine(),
		regs:   regfile.New(),
	}
	s.regs.Load(cfg.Coefficients())

	core := b.buildCore(s, freq, mode)
	s.core = core

	worst := uint64(core.ctrl.CycleTicks() + core.duty.CycleTicks())
	if worst > window {
		return nil, fmt.Errorf(
			"a sample every %d ticks cannot be served by a %d-tick cycle",
			window, worst)
	}

	if b.cycleLogger != nil {
		core.ctrl.AcceptHook(ctrl.NewCycleLogger(b.cycleLogger))
	}

	if b.record {
		if err := b.attachRecorder(s); err != nil {
			return nil, err
		}
	}

	if b.perfPeriod > 0 {
		b.attachPerfAnalyzer(s)
	}

	if b.monitorOn {
		b.attachMonitor(s)
	}

	return s, nil
}

func (b Builder) buildCore(
	s *Simulation,
	freq sim.Freq,
	mode ctrl.SamplingMode,
) *Core {
	cfg := b.config
	c := &Core{regs: s.regs}

	mac := buildUnit(cfg, "Core.MAC", fpu.MACRepertoire)
	cmp := buildUnit(cfg, "Core.CMP", fpu.CompareRepertoire)
	conv := buildUnit(cfg, "Core.CONV", fpu.ConverterRepertoire)
	c.units = []*fpu.Comp{mac, cmp, conv}

	br := &bridge{}

	mb := plant.MakeBuilder().
		WithFreq(freq).
		WithGain(cfg.Motor.Gain).
		WithPole(cfg.Motor.Pole).
		WithSupply(cfg.Motor.Supply).
		WithCPR(cfg.Motor.CPR).
		WithInitialSpeed(cfg.Motor.InitialSpeed)
	if cfg.Motor.GlitchRate > 0 {
		mb = mb.WithGlitches(
			cfg.Motor.GlitchRate, cfg.Motor.GlitchTicks, cfg.Motor.Seed)
	}
	c.motor = mb.Build("Core.Motor", br)

	c.decoder = qdec.MakeBuilder().
		WithFreq(freq).
		WithGateFreq(sim.Freq(cfg.Clock.GateHz)).
		WithMinPulseTicks(cfg.Decoder.MinPulseTicks).
		WithSampleBits(cfg.Decoder.SampleBits).
		WithIllegalCounterBits(cfg.Decoder.IllegalBits).
		WithInput(c.motor).
		Build("Core.Decoder")

	c.ctrl = ctrl.MakeBuilder().
		WithInput(c.decoder).
		WithCoefficientSource(s.regs).
		WithSamplingMode(mode).
		WithConversionFactor(cfg.ConversionFactor()).
		WithMAC(mac).
		WithComparator(cmp).
		Build("Core.Ctrl")

	c.duty = duty.MakeBuilder().
		WithInput(c.ctrl).
		WithCoefficientSource(s.regs).
		WithUnit(conv).
		WithPeriodTicks(cfg.PWM.PeriodTicks).
		Build("Core.Duty")

	c.pwm = pwm.NewComp("Core.PWM", cfg.PWM.PeriodTicks, c.duty)
	br.pwm = c.pwm

	c.TickingComponent = sim.NewTickingComponent("Core", s.engine, freq, c)

	return c
}

func buildUnit(cfg *Config, name string, ops []fpu.Op) *fpu.Comp {
	ub := fpu.MakeBuilder().WithOps(ops...)
	for _, op := range ops {
		ub = ub.WithLatency(op, cfg.Latency(op))
	}

	return ub.Build(name)
}

func (b Builder) attachRecorder(s *Simulation) error {
	path := b.recordPath
	if path == "" {
		path = "motorsim_" + s.id
	}

	recorder, err := datarecording.New(path)
	if err != nil {
		return err
	}

	s.recorder = recorder
	s.exec = datarecording.NewExecRecorder(recorder)
	s.exec.Start()
	s.exec.Add("Simulation ID", s.id)
	s.exec.Add("Sampling", b.config.Control.Sampling)
	s.exec.Add("Clock Hz", strconv.FormatFloat(b.config.Clock.FreqHz, 'g', -1, 64))
	s.exec.Add("Gate Hz", strconv.FormatFloat(b.config.Clock.GateHz, 'g', -1, 64))
	s.engine.RegisterSimulationEndHandler(s.exec)

	tracer := datarecording.NewCycleTracer(recorder, s.engine, s.core.motor)
	s.core.ctrl.AcceptHook(tracer)
	s.core.duty.AcceptHook(tracer)

	return nil
}

func (b Builder) attachPerfAnalyzer(s *Simulation) {
	var backend analysis.PerfAnalyzerBackend
	if b.perfCSV != nil {
		backend = analysis.NewCSVPerfAnalyzerBackend(b.perfCSV)
	} else {
		backend = analysis.NewRecorderPerfAnalyzerBackend(s.recorder)
	}

	s.perf = analysis.MakePerfAnalyzerBuilder().
		WithPeriod(sim.VTimeInSec(b.perfPeriod)).
		WithBackend(backend).
		Build()
	s.perf.RegisterEngine(s.engine)

	for _, u := range s.core.units {
		s.perf.RegisterUnit(u)
	}

	s.engine.RegisterSimulationEndHandler(s.perf)
}

func (b Builder) attachMonitor(s *Simulation) {
	m := monitoring.NewMonitor()
	if b.monitorPort > 0 {
		m.WithPortNumber(b.monitorPort)
	}

	if b.openBrowser {
		m.WithBrowser()
	}

	m.RegisterEngine(s.engine)
	m.RegisterRegisters(s.regs)
	m.RegisterComponent(s.core)
	m.RegisterComponent(s.core.decoder)
	m.RegisterComponent(s.core.ctrl)
	m.RegisterComponent(s.core.duty)
	m.RegisterComponent(s.core.pwm)
	m.RegisterComponent(s.core.motor)

	for _, u := range s.core.units {
		m.RegisterComponent(u)
	}

	m.StartServer()
	s.monitor = m
}
