package operator

import "fmt"

// Handler is the set of operations the operator can reach.
type Handler interface {
	ToggleAutoAlign()
	SetThreshold(px float64) error
	SetPort(path string) error
	PrintStatus()
	ResetAll()
	SetCircularity(v float64)
	StepCircularity(delta float64)
	CycleMode()
	ToggleDebug()
	ToggleGrid()
	Snapshot() error
	Help()
	Hint(msg string)
	Quit()
}

// Hints shown for window keys whose action needs an argument.
const (
	ThresholdHint = "⌨️  type 'threshold <1-20>' in the console to change the alignment threshold"
	PortHint      = "⌨️  type 'port <path>' in the console to switch serial device"
)

// Dispatch invokes the operation for cmd on h. It returns the handler's
// error, if any; the loop logs it and carries on.
func Dispatch(h Handler, cmd Command) error {
	switch cmd.Op {
	case OpNone:
	case OpToggleAlign:
		h.ToggleAutoAlign()
	case OpSetThreshold:
		return h.SetThreshold(cmd.Value)
	case OpThresholdHint:
		h.Hint(ThresholdHint)
	case OpSetPort:
		return h.SetPort(cmd.Arg)
	case OpPortHint:
		h.Hint(PortHint)
	case OpStatus:
		h.PrintStatus()
	case OpReset:
		h.ResetAll()
	case OpCircularityUp, OpCircularityDown:
		h.StepCircularity(cmd.Value)
	case OpSetCircularity:
		h.SetCircularity(cmd.Value)
	case OpCycleMode:
		h.CycleMode()
	case OpToggleDebug:
		h.ToggleDebug()
	case OpToggleGrid:
		h.ToggleGrid()
	case OpSave:
		return h.Snapshot()
	case OpHelp:
		h.Help()
	case OpQuit:
		h.Quit()
	default:
		return fmt.Errorf("operator: unhandled op %d", cmd.Op)
	}
	return nil
}
