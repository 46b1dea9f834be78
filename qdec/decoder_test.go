package qdec

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/horizon0210/PID-Controller-With-FPGA/sim"
)

type levels struct {
	state uint8
}

func (l *levels) Lines() (a, b bool) {
	return l.state&0b10 != 0, l.state&0b01 != 0
}

var forwardSeq = []uint8{0b00, 0b01, 0b11, 0b10}

var _ = Describe("Decoder", func() {
	var (
		in  *levels
		dec *Comp
	)

	// newBuilder gives a 10-tick window unless the caller sets another gate.
	newBuilder := func() Builder {
		return MakeBuilder().
			WithFreq(1 * sim.KHz).
			WithGateFreq(100 * sim.Hz)
	}

	build := func(b Builder) {
		dec = b.WithInput(in).Build("QDec")
	}

	BeforeEach(func() {
		in = &levels{}
	})

	hold := func(state uint8, ticks int) {
		in.state = state
		for i := 0; i < ticks; i++ {
			dec.Tick()
		}
	}

	It("should compute the window from the clock and the gate", func() {
		build(newBuilder())

		Expect(dec.Window()).To(Equal(uint64(10)))
	})

	It("should refuse a gate that does not divide the clock", func() {
		Expect(func() {
			MakeBuilder().
				WithFreq(1 * sim.KHz).
				WithGateFreq(300 * sim.Hz).
				WithInput(in).
				Build("QDec")
		}).To(Panic())
	})

	It("should pulse valid once per window", func() {
		build(newBuilder().WithMinPulseTicks(1))

		var pulses []int
		for tick := 1; tick <= 35; tick++ {
			dec.Tick()

			if _, ok := dec.Sample(); ok {
				pulses = append(pulses, tick)
			}
		}

		Expect(pulses).To(Equal([]int{10, 20, 30}))
	})

	It("should count forward and reverse steps", func() {
		build(newBuilder().WithMinPulseTicks(1).WithSampleBits(16))

		total := 0
		walk := func(states ...uint8) {
			for _, s := range append(states, states[len(states)-1]) {
				in.state = s
				dec.Tick()
				total += dec.Step()
			}
		}

		walk(0b01, 0b11, 0b10, 0b00)

		Expect(total).To(Equal(4))
		Expect(dec.Direction()).To(Equal(Forward))

		walk(0b10, 0b11, 0b01, 0b00, 0b10)

		Expect(total).To(Equal(-1))
		Expect(dec.Direction()).To(Equal(Reverse))
		Expect(dec.IllegalCount()).To(BeZero())
	})

	It("should reject pulses shorter than the minimum", func() {
		build(newBuilder().WithMinPulseTicks(3))

		hold(0b01, 2)
		hold(0b00, 10)

		Expect(dec.Step()).To(Equal(0))
		Expect(dec.LastSample()).To(BeZero())

		in.state = 0b01
		steps := 0
		for i := 0; i < 6; i++ {
			dec.Tick()
			steps += dec.Step()
		}

		Expect(steps).To(Equal(1))
	})

	It("should count every simultaneous change of both lines", func() {
		build(newBuilder().WithMinPulseTicks(1))

		rng := rand.New(rand.NewSource(7))
		var prev, prevPrev uint8
		var expected uint32

		for tick := 0; tick < 2000; tick++ {
			in.state = uint8(rng.Intn(4))
			dec.Tick()

			// With a single-tick filter the decoder sees the raw level
			// one tick late.
			if prev^prevPrev == 0b11 {
				expected++
			}

			Expect(dec.IllegalCount()).To(Equal(expected))

			prevPrev = prev
			prev = in.state
		}

		Expect(expected).NotTo(BeZero())
	})

	It("should latch the accumulator including the boundary step", func() {
		build(newBuilder().WithMinPulseTicks(1))

		rng := rand.New(rand.NewSource(11))
		pos := 0
		latched := 0

		for tick := 0; tick < 500; tick++ {
			pos = (pos + rng.Intn(3) - 1 + 4) % 4
			in.state = forwardSeq[pos]

			before := dec.Accumulator()
			dec.Tick()

			sample, ok := dec.Sample()
			if !ok {
				Expect(dec.Accumulator()).
					To(Equal(before + int32(dec.Step())))
				continue
			}

			latched++
			Expect(sample).To(Equal(before + int32(dec.Step())))
			Expect(dec.Accumulator()).To(BeZero())
		}

		Expect(latched).To(Equal(50))
	})

	It("should saturate the accumulator", func() {
		build(newBuilder().
			WithMinPulseTicks(1).
			WithGateFreq(10 * sim.Hz).
			WithSampleBits(4))
		Expect(dec.Window()).To(Equal(uint64(100)))

		for i := 1; i <= 40; i++ {
			hold(forwardSeq[i%4], 1)
		}

		Expect(dec.Accumulator()).To(Equal(int32(7)))

		for i := 39; i >= 0; i-- {
			hold(forwardSeq[i%4], 1)
		}

		Expect(dec.Accumulator()).To(Equal(int32(-8)))
	})

	It("should saturate the illegal counter", func() {
		build(newBuilder().WithMinPulseTicks(1).WithIllegalCounterBits(2))

		for i := 0; i < 10; i++ {
			hold(0b11, 1)
			hold(0b00, 1)
		}

		Expect(dec.IllegalCount()).To(Equal(uint32(3)))
	})

	It("should invoke the sample hook", func() {
		build(newBuilder().WithMinPulseTicks(1))

		var got []int32
		dec.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			Expect(ctx.Pos).To(Equal(HookPosSample))
			got = append(got, ctx.Item.(int32))
		}))

		hold(0b01, 12)
		hold(0b11, 8)

		Expect(got).To(Equal([]int32{1, 1}))
	})
})
