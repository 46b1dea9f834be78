package plant

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

type bridge struct {
	fwd, rev bool
}

func (b *bridge) Lines() (forward, reverse bool) {
	return b.fwd, b.rev
}

var _ = Describe("Motor", func() {
	var (
		drive *bridge
		m     *Motor
	)

	BeforeEach(func() {
		drive = &bridge{}
		m = MakeBuilder().WithFreq(10*sim.KHz).Build("Motor", drive)
	})

	run := func(seconds float64) {
		for i := 0; i < int(seconds*10000); i++ {
			m.Tick()
		}
	}

	It("should stay still without drive", func() {
		run(0.1)

		Expect(m.Speed()).To(BeZero())
		Expect(m.Count()).To(BeZero())
	})

	It("should approach the steady speed", func() {
		drive.fwd = true

		run(0.2)
		Expect(m.Speed()).To(BeNumerically("~", 120*(1-math.Exp(-1)), 0.1))

		run(2)
		Expect(m.Speed()).To(BeNumerically("~", m.SteadySpeed(12), 0.01))
	})

	It("should turn backwards on the reverse line", func() {
		drive.rev = true

		run(0.5)

		Expect(m.Speed()).To(BeNumerically("<", 0))
		Expect(m.Count()).To(BeNumerically("<", 0))
	})

	It("should produce gray code in the forward order", func() {
		m = MakeBuilder().WithFreq(10*sim.KHz).WithCPR(64).Build("Motor", drive)
		drive.fwd = true

		prev := uint8(0)
		forward := 0
		for i := 0; i < 20000; i++ {
			m.Tick()

			a, b := m.Lines()
			cur := uint8(0)
			if a {
				cur |= 0b10
			}
			if b {
				cur |= 0b01
			}

			if cur == prev {
				continue
			}

			Expect(cur ^ prev).NotTo(Equal(uint8(0b11)))
			if grayCode[(indexOf(prev)+1)%4] == cur {
				forward++
			}

			prev = cur
		}

		Expect(int64(forward)).To(Equal(m.Count()))
	})

	It("should inject reproducible glitches", func() {
		sample := func() []bool {
			g := MakeBuilder().
				WithFreq(10*sim.KHz).
				WithGlitches(0.01, 1, 42).
				Build("Motor", &bridge{})

			var levels []bool
			for i := 0; i < 1000; i++ {
				g.Tick()
				a, b := g.Lines()
				levels = append(levels, a, b)
			}

			Expect(g.NumGlitches()).NotTo(BeZero())

			return levels
		}

		Expect(sample()).To(Equal(sample()))
	})

	It("should refuse a motor without a bridge", func() {
		Expect(func() { MakeBuilder().Build("Motor", nil) }).To(Panic())
	})
})

func indexOf(state uint8) int {
	for i, s := range grayCode {
		if s == state {
			return i
		}
	}

	return -1
}
