package analysis

import (
	"context"
	"math"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/horizon0210/PID-Controller-With-FPGA/datarecording"
)

// firstOrder samples 100·(1 − e^(−t/τ)) at 200 Hz.
func firstOrder(tau, seconds float64) []Point {
	var points []Point

	for i := 0; i <= int(seconds*200); i++ {
		t := float64(i) / 200
		y := 100 * (1 - math.Exp(-t/tau))
		points = append(points, Point{Time: t, Measured: y, Speed: y})
	}

	return points
}

var _ = Describe("StepResponse", func() {
	It("should measure a first-order response", func() {
		points := firstOrder(0.2, 3)
		points[0].Saturated = true
		points[1].Saturated = true

		m, err := StepResponse(points, 100, DefaultStepOptions())

		Expect(err).NotTo(HaveOccurred())
		Expect(m.NumPoints).To(Equal(601))
		Expect(m.RiseTime).To(BeNumerically("~", 0.2*math.Log(9), 0.006))
		Expect(m.Overshoot).To(BeZero())
		Expect(m.SettlingTime).To(BeNumerically("~", 0.2*math.Log(50), 0.006))
		Expect(m.SteadyMean).To(BeNumerically("~", 100, 0.01))
		Expect(m.SteadyStdDev).To(BeNumerically("<", 0.01))
		Expect(m.Saturated).To(Equal(2))
	})

	It("should measure the overshoot", func() {
		ys := []float64{0, 50, 120, 105, 99, 100, 100, 100}

		points := make([]Point, len(ys))
		for i, y := range ys {
			points[i] = Point{Time: float64(i) * 0.1, Measured: y}
		}

		m, err := StepResponse(points, 100, DefaultStepOptions())

		Expect(err).NotTo(HaveOccurred())
		Expect(m.Overshoot).To(BeNumerically("~", 0.2, 1e-12))
		Expect(m.RiseTime).To(BeNumerically("~", 0.1, 1e-12))
		Expect(m.SettlingTime).To(BeNumerically("~", 0.4, 1e-12))
		Expect(m.String()).To(ContainSubstring("overshoot 20.00%"))
	})

	It("should handle a step downwards", func() {
		points := firstOrder(0.2, 3)
		for i := range points {
			points[i].Measured = 100 - points[i].Measured
		}

		m, err := StepResponse(points, 0, DefaultStepOptions())

		Expect(err).NotTo(HaveOccurred())
		Expect(m.RiseTime).To(BeNumerically("~", 0.2*math.Log(9), 0.006))
		Expect(m.Overshoot).To(BeZero())
	})

	It("should report a response that never settles", func() {
		points := firstOrder(10, 1)

		m, err := StepResponse(points, 100, DefaultStepOptions())

		Expect(err).NotTo(HaveOccurred())
		Expect(math.IsNaN(m.RiseTime)).To(BeTrue())
		Expect(math.IsNaN(m.SettlingTime)).To(BeTrue())
	})

	It("should analyze the true speed on request", func() {
		points := firstOrder(0.2, 3)
		for i := range points {
			points[i].Measured = 0
		}

		opts := DefaultStepOptions()
		opts.UseSpeed = true

		m, err := StepResponse(points, 100, opts)

		Expect(err).NotTo(HaveOccurred())
		Expect(m.SteadyMean).To(BeNumerically("~", 100, 0.01))
	})

	It("should refuse degenerate input", func() {
		_, err := StepResponse([]Point{{}}, 100, DefaultStepOptions())
		Expect(err).To(HaveOccurred())

		_, err = StepResponse(
			[]Point{{Measured: 5}, {Measured: 5}}, 5, DefaultStepOptions())
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("LoadResponse", func() {
	It("should read the recorded cycles in order", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run")

		w, err := datarecording.New(path)
		Expect(err).NotTo(HaveOccurred())

		w.CreateTable(datarecording.CycleTable, datarecording.CycleEntry{})
		for _, i := range []uint64{1, 0, 2} {
			w.InsertData(datarecording.CycleTable, datarecording.CycleEntry{
				Cycle:  i,
				Time:   float64(i) * 0.005,
				Target: 100,
				X:      float32(i) * 10,
				Speed:  float64(i) * 11,
				Above:  i == 2,
			})
		}
		Expect(w.Close()).To(Succeed())

		r, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		points, target, err := LoadResponse(context.Background(), r)

		Expect(err).NotTo(HaveOccurred())
		Expect(target).To(Equal(100.0))
		Expect(points).To(Equal([]Point{
			{Time: 0, Measured: 0, Speed: 0},
			{Time: 0.005, Measured: 10, Speed: 11},
			{Time: 0.01, Measured: 20, Speed: 22, Saturated: true},
		}))
	})
})
