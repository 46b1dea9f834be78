package simulation

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/horizon0210/PID-Controller-With-FPGA/coeff"
	"github.com/horizon0210/PID-Controller-With-FPGA/ctrl"
	"github.com/horizon0210/PID-Controller-With-FPGA/fpu"
)

var _ = Describe("Config", func() {
	It("should accept the default configuration", func() {
		c := Default()

		gomega.Expect(c.Validate()).To(gomega.Succeed())
		gomega.Expect(c.ConversionFactor()).To(gomega.Equal(ctrl.DefaultConversionFactor))
	})

	It("should fill what a file leaves out", func() {
		c, err := Parse([]byte(`
clock:
  freq_hz: 200000
control:
  sampling: latch
  target_rad_per_sec: 50
units:
  fma: 6
`))

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(c.Clock.FreqHz).To(gomega.Equal(200e3))
		gomega.Expect(c.Clock.GateHz).To(gomega.Equal(200.0))
		gomega.Expect(c.Control.Gains).To(gomega.Equal(coeff.DefaultGains()))
		gomega.Expect(c.Control.Limit).To(gomega.Equal(float32(12)))
		gomega.Expect(c.PWM.PeriodTicks).To(gomega.Equal(uint32(500)))
		gomega.Expect(c.Motor.CPR).To(gomega.Equal(1336))
		gomega.Expect(c.Latency(fpu.OpFMA)).To(gomega.Equal(6))
		gomega.Expect(c.Latency(fpu.OpFMS)).To(gomega.Equal(4))

		mode, err := c.SamplingMode()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(mode).To(gomega.Equal(ctrl.SampleAtLatch))
	})

	It("should derive the sample period from the gate", func() {
		c, err := Parse([]byte(`
clock:
  gate_hz: 100
control:
  gains: {kp: 0.5, ki: 1}
`))

		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(c.Control.Gains.Ts).To(gomega.Equal(0.01))
	})

	It("should load the register contents", func() {
		c := Default()
		c.Control.Reference = true

		k := c.Coefficients()
		ref := ctrl.ReferenceCoefficients()

		gomega.Expect(k.C1).To(gomega.Equal(ref.C1))
		gomega.Expect(k.Limit).To(gomega.Equal(float32(12)))
		gomega.Expect(k.RecipLimit).To(gomega.Equal(float32(1) / 12))
		gomega.Expect(k.Target).To(gomega.Equal(float32(100)))
	})

	It("should reject bad values", func() {
		c := Default()
		c.Control.Sampling = "sometimes"
		gomega.Expect(c.Validate()).To(gomega.MatchError(gomega.ContainSubstring("sampling")))

		c = Default()
		c.PWM.PeriodTicks = 1
		gomega.Expect(c.Validate()).To(gomega.HaveOccurred())

		c = Default()
		c.Units.Compare = -1
		gomega.Expect(c.Validate()).To(gomega.MatchError(gomega.ContainSubstring("CMP")))

		c = Default()
		c.Control.Limit = -3
		gomega.Expect(c.Validate()).To(gomega.HaveOccurred())
	})

	It("should report files that cannot be read or parsed", func() {
		dir := GinkgoT().TempDir()

		_, err := Load(filepath.Join(dir, "missing.yaml"))
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("read config")))

		bad := filepath.Join(dir, "bad.yaml")
		gomega.Expect(os.WriteFile(bad, []byte("clock: [1, 2"), 0o600)).To(gomega.Succeed())

		_, err = Load(bad)
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("parse config")))
	})
})
