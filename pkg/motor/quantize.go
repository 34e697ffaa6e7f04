package motor

import "math"

// Quantization breakpoints in pixels of error. |e| below the first step is a
// stop; at or above the last step the command saturates at ±5.
var breakpoints = [...]float64{50, 100, 150, 200, 250}

const (
	// PositionPerStep is how far the dead-reckoned position advances per unit
	// of command on a successful transmission.
	PositionPerStep = 2.0

	// SpeedPerStep scales the last command into the speed readout.
	SpeedPerStep = 10.0
)

// Quantize maps a signed pixel error to a command in [-5, 5]. The magnitude is
// a non-decreasing step function of |e| and the sign follows e.
func Quantize(e float64) int {
	if math.IsNaN(e) {
		return 0
	}
	mag := math.Abs(e)
	level := 0
	for _, bp := range breakpoints {
		if mag < bp {
			break
		}
		level++
	}
	if e < 0 {
		return -level
	}
	return level
}

// StateFor returns the motor state implied by a command.
func StateFor(command int) State {
	switch {
	case command > 0:
		return MovingRight
	case command < 0:
		return MovingLeft
	default:
		return Stopped
	}
}
