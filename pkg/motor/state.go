package motor

// State is the coarse motor state derived from the last command.
type State int

const (
	Idle State = iota
	MovingLeft
	MovingRight
	Stopped
	Calibrating // reserved; nothing drives the motor into calibration yet
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case MovingLeft:
		return "MOVING_LEFT"
	case MovingRight:
		return "MOVING_RIGHT"
	case Stopped:
		return "STOPPED"
	case Calibrating:
		return "CALIBRATING"
	default:
		return "UNKNOWN"
	}
}
