package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/horizon0210/PID-Controller-With-FPGA/datarecording"
)

// Point is one control cycle of a run.
type Point struct {
	Time float64

	// Measured is the speed the controller saw, in rad/s.
	Measured float64

	// Speed is the true shaft speed.
	Speed float64

	Saturated bool
}

// StepOptions tune the step-response metrics.
type StepOptions struct {
	// Band is the settling band as a fraction of the step size.
	Band float64

	// SteadyFraction is the trailing share of the points treated as steady
	// state.
	SteadyFraction float64

	// UseSpeed analyzes the true shaft speed instead of the measured one.
	UseSpeed bool
}

// DefaultStepOptions uses a 2 % band and the last fifth of the run.
func DefaultStepOptions() StepOptions {
	return StepOptions{
		Band:           0.02,
		SteadyFraction: 0.2,
	}
}

// Metrics describe a step response. Times are in seconds from the first
// point. A time is NaN when the response never gets there.
type Metrics struct {
	Target       float64
	NumPoints    int
	RiseTime     float64
	Overshoot    float64
	SettlingTime float64
	SteadyMean   float64
	SteadyStdDev float64
	Saturated    int
}

func (m Metrics) String() string {
	return fmt.Sprintf(
		"target %.4g, %d cycles, rise %.4gs, overshoot %.2f%%, "+
			"settling %.4gs, steady %.4g±%.3g, %d saturated",
		m.Target, m.NumPoints, m.RiseTime, m.Overshoot*100,
		m.SettlingTime, m.SteadyMean, m.SteadyStdDev, m.Saturated)
}

// StepResponse computes the metrics of the step from the first point to the
// target.
func StepResponse(
	points []Point,
	target float64,
	opts StepOptions,
) (Metrics, error) {
	if len(points) < 2 {
		return Metrics{}, errors.New("need at least two points")
	}

	ys := make([]float64, len(points))
	for i, p := range points {
		ys[i] = p.Measured
		if opts.UseSpeed {
			ys[i] = p.Speed
		}
	}

	span := target - ys[0]
	if span == 0 {
		return Metrics{}, errors.New("the run starts at the target")
	}

	// Work on the normalized response, which rises from 0 to 1.
	norm := make([]float64, len(ys))
	for i, y := range ys {
		norm[i] = (y - ys[0]) / span
	}

	t0 := points[0].Time
	m := Metrics{
		Target:       target,
		NumPoints:    len(points),
		RiseTime:     math.NaN(),
		SettlingTime: math.NaN(),
	}

	if t10, ok := firstReach(points, norm, 0.1); ok {
		if t90, ok := firstReach(points, norm, 0.9); ok {
			m.RiseTime = t90 - t10
		}
	}

	m.Overshoot = math.Max(0, floats.Max(norm)-1)

	lastOut := -1
	for i, v := range norm {
		if math.Abs(v-1) > opts.Band {
			lastOut = i
		}
	}

	switch {
	case lastOut < 0:
		m.SettlingTime = 0
	case lastOut < len(points)-1:
		m.SettlingTime = points[lastOut+1].Time - t0
	}

	n := int(math.Ceil(float64(len(ys)) * opts.SteadyFraction))
	if n < 1 {
		n = 1
	}
	m.SteadyMean, m.SteadyStdDev = stat.MeanStdDev(ys[len(ys)-n:], nil)

	for _, p := range points {
		if p.Saturated {
			m.Saturated++
		}
	}

	return m, nil
}

func firstReach(points []Point, norm []float64, level float64) (float64, bool) {
	for i, v := range norm {
		if v >= level {
			return points[i].Time - points[0].Time, true
		}
	}

	return 0, false
}

// LoadResponse reads the recorded cycles in order and returns them with the
// target of the last cycle.
func LoadResponse(
	ctx context.Context,
	r datarecording.DataReader,
) ([]Point, float64, error) {
	r.MapTable(datarecording.CycleTable, datarecording.CycleEntry{})

	rows, _, err := r.Query(ctx, datarecording.CycleTable,
		datarecording.QueryParams{OrderBy: "Cycle"})
	if err != nil {
		return nil, 0, fmt.Errorf("read cycles: %w", err)
	}

	if len(rows) == 0 {
		return nil, 0, errors.New("no cycle was recorded")
	}

	points := make([]Point, 0, len(rows))
	for _, row := range rows {
		e := row.(*datarecording.CycleEntry)
		points = append(points, Point{
			Time:      e.Time,
			Measured:  float64(e.X),
			Speed:     e.Speed,
			Saturated: e.Above || e.Below,
		})
	}

	last := rows[len(rows)-1].(*datarecording.CycleEntry)

	return points, float64(last.Target), nil
}
