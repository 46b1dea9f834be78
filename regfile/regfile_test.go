package regfile

import (
	"math"
	"sync"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/horizon0210/PID-Controller-With-FPGA/ctrl"
	"github.com/horizon0210/PID-Controller-With-FPGA/duty"
)

var _ = ginkgo.Describe("Register file", func() {
	var f *File

	ginkgo.BeforeEach(func() {
		f = New()
	})

	ginkgo.It("should place the parameters at the driver offsets", func() {
		f.Load(ctrl.ReferenceCoefficients())

		c1, err := f.Read32(OffC1)
		Expect(err).NotTo(HaveOccurred())
		Expect(c1).To(Equal(uint32(0x3DE21965)))

		ysat, _ := f.Read32(0x24)
		Expect(ysat).To(Equal(uint32(0x41400000)))

		target, _ := f.ReadFloat(0x2C)
		Expect(target).To(Equal(float32(100)))

		Expect(f.Coefficients()).To(Equal(ctrl.ReferenceCoefficients()))
	})

	ginkgo.It("should serve coefficients to the scheduler", func() {
		Expect(f.WriteFloat(OffC7b, -0.5)).To(Succeed())

		var src ctrl.CoefficientSource = f
		Expect(src.Coefficient(ctrl.CoeffC7b)).To(Equal(float32(-0.5)))
	})

	ginkgo.It("should reject writes to read-only registers", func() {
		for _, off := range []Offset{OffStatus, OffIllegal, OffOutput, OffPWM} {
			err := f.Write32(off, 1)
			Expect(err).To(MatchError(ErrReadOnly))
		}
	})

	ginkgo.It("should reject unaligned and unknown offsets", func() {
		_, err := f.Read32(0x05)
		Expect(err).To(MatchError(ErrUnaligned))

		Expect(f.Write32(0x40, 0)).To(MatchError(ErrUnknown))
	})

	ginkgo.It("should pack the status word", func() {
		f.SetStatus(-3, true)

		status, _ := f.Read32(OffStatus)

		Expect(status & StatusCountMask).To(Equal(uint32(0xFFFD)))
		Expect(StatusCount(status)).To(Equal(int16(-3)))
		Expect(StatusForward(status)).To(BeTrue())

		f.SetStatus(7, false)
		status, _ = f.Read32(OffStatus)
		Expect(status).To(Equal(uint32(7)))
	})

	ginkgo.It("should publish the diagnostics", func() {
		f.SetIllegalCount(9)
		f.SetOutput(11.04)
		f.SetCommand(duty.Command{Compare: 2500, Forward: true})

		illegal, _ := f.Read32(OffIllegal)
		out, _ := f.ReadFloat(OffOutput)
		pwm, _ := f.Read32(OffPWM)

		Expect(illegal).To(Equal(uint32(9)))
		Expect(out).To(Equal(float32(11.04)))
		Expect(pwm).To(Equal(uint32(2500 | PWMForwardBit)))
	})

	ginkgo.It("should find registers by name", func() {
		r, ok := Lookup("YSAT")
		Expect(ok).To(BeTrue())
		Expect(r.Offset).To(Equal(OffLimit))

		_, ok = Lookup("c9")
		Expect(ok).To(BeFalse())

		Expect(Registers()).To(HaveLen(16))
	})

	ginkgo.It("should never tear a word under concurrent access", func() {
		a := math.Float32bits(1.5)
		b := math.Float32bits(-2.25)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10000; i++ {
				v := a
				if i%2 == 1 {
					v = b
				}
				_ = f.Write32(OffC3, v)
			}
		}()

		for i := 0; i < 10000; i++ {
			v, _ := f.Read32(OffC3)
			Expect(v == 0 || v == a || v == b).To(BeTrue())
		}

		wg.Wait()
	})
})
