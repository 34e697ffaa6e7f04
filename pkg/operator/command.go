// Package operator maps window keys and console lines onto the operations an
// operator can invoke while the loop runs.
package operator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/teslashibe/go-beacon/pkg/detection"
)

// Op identifies an operator operation.
type Op int

const (
	OpNone Op = iota
	OpToggleAlign
	OpSetThreshold
	OpThresholdHint
	OpSetPort
	OpPortHint
	OpStatus
	OpReset
	OpCircularityUp
	OpCircularityDown
	OpSetCircularity
	OpCycleMode
	OpToggleDebug
	OpToggleGrid
	OpSave
	OpHelp
	OpQuit
)

// Command is one parsed operator request.
type Command struct {
	Op    Op
	Value float64 // threshold or circularity
	Arg   string  // port path
}

// ErrUnknownCommand is returned by Parse for lines it does not understand.
var ErrUnknownCommand = errors.New("operator: unknown command")

// Parse reads one console line.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{Op: OpNone}, nil
	}

	name := strings.ToLower(fields[0])
	args := fields[1:]

	switch name {
	case "align", "a":
		return Command{Op: OpToggleAlign}, nil
	case "status", "p":
		return Command{Op: OpStatus}, nil
	case "reset", "r":
		return Command{Op: OpReset}, nil
	case "mode", "m":
		return Command{Op: OpCycleMode}, nil
	case "debug", "d":
		return Command{Op: OpToggleDebug}, nil
	case "grid", "c":
		return Command{Op: OpToggleGrid}, nil
	case "save", "s":
		return Command{Op: OpSave}, nil
	case "help", "h", "?":
		return Command{Op: OpHelp}, nil
	case "quit", "q", "exit":
		return Command{Op: OpQuit}, nil
	case "circ+", "+":
		return Command{Op: OpCircularityUp, Value: detection.CircularityStep}, nil
	case "circ-", "-":
		return Command{Op: OpCircularityDown, Value: -detection.CircularityStep}, nil

	case "threshold", "t":
		v, err := number(name, args)
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpSetThreshold, Value: v}, nil

	case "circ", "circularity":
		v, err := number(name, args)
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpSetCircularity, Value: v}, nil

	case "port", "o":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("operator: usage: port <path>")
		}
		return Command{Op: OpSetPort, Arg: args[0]}, nil
	}

	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
}

func number(name string, args []string) (float64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("operator: usage: %s <value>", name)
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("operator: %s: %q is not a number", name, args[0])
	}
	return v, nil
}

// KeyEsc is the value WaitKey returns for the escape key.
const KeyEsc = 27

// FromKey maps a window key press. Keys that need an argument map to hint
// commands that point the operator at the console.
func FromKey(key int) (Command, bool) {
	switch key {
	case KeyEsc, 'q', 'Q':
		return Command{Op: OpQuit}, true
	case 's', 'S':
		return Command{Op: OpSave}, true
	case 'r', 'R':
		return Command{Op: OpReset}, true
	case '+', '=':
		return Command{Op: OpCircularityUp, Value: detection.CircularityStep}, true
	case '-', '_':
		return Command{Op: OpCircularityDown, Value: -detection.CircularityStep}, true
	case 'm', 'M':
		return Command{Op: OpCycleMode}, true
	case 'd', 'D':
		return Command{Op: OpToggleDebug}, true
	case 'c', 'C':
		return Command{Op: OpToggleGrid}, true
	case 'a', 'A':
		return Command{Op: OpToggleAlign}, true
	case 't', 'T':
		return Command{Op: OpThresholdHint}, true
	case 'p', 'P':
		return Command{Op: OpStatus}, true
	case 'o', 'O':
		return Command{Op: OpPortHint}, true
	case 'h', 'H':
		return Command{Op: OpHelp}, true
	}
	return Command{}, false
}

// HelpText lists keys and console commands.
const HelpText = `==========================================
 keys (window)        console
  q / ESC  quit         quit
  s        save frame   save
  r        reset        reset
  + / -    circularity  circ+ | circ- | circ <0.1-1.0>
  m        cycle mode   mode
  d        debug trace  debug
  c        grid         grid
  a        auto-align   align
  t        threshold    threshold <1-20>
  p        status       status
  o        serial port  port <path>
  h        help         help
==========================================`
