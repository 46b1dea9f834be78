package ctrl

// State is the filter memory carried from one control cycle to the next.
type State struct {
	// YUnsat1 and YUnsat2 are the unsaturated outputs of the last two cycles.
	YUnsat1, YUnsat2 float32

	// YSat1 and YSat2 are the saturated outputs of the last two cycles.
	YSat1, YSat2 float32

	// DeltaY1 is the output increment of the last cycle.
	DeltaY1 float32

	// W1 and W2 are the delayed setpoints.
	W1, W2 float32

	// X1 and X2 are the delayed measurements in rad/s.
	X1, X2 float32
}

// advance returns the state after a cycle that saw setpoint w and
// measurement x and produced the given increment and outputs.
func (s State) advance(w, x, dy, yUnsat, ySat float32) State {
	return State{
		YUnsat1: yUnsat,
		YUnsat2: s.YUnsat1,
		YSat1:   ySat,
		YSat2:   s.YSat1,
		DeltaY1: dy,
		W1:      w,
		W2:      s.W1,
		X1:      x,
		X2:      s.X1,
	}
}

// Cycle describes one completed control cycle.
type Cycle struct {
	Index    uint64
	Sample   int32
	Target   float32
	Measured float32
	X        float32
	DeltaY   float32
	YUnsat   float32
	YSat     float32
	Above    bool
	Below    bool
	Ticks    int
}

// Saturated tells if the output was clamped.
func (c Cycle) Saturated() bool {
	return c.Above || c.Below
}
