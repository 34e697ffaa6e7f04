// Package motor turns a signed pixel error into discrete motor commands and
// tracks the motor's coarse state and dead-reckoned position.
package motor

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/teslashibe/go-beacon/internal/log"
	"github.com/teslashibe/go-beacon/pkg/serialport"
)

// DefaultBaud is used by AutoConnect.
const DefaultBaud = 115200

// ProbePaths are tried in order by AutoConnect before enumerated ports.
var ProbePaths = []string{"/dev/ttyUSB0", "/dev/ttyUSB1", "/dev/ttyACM0", "/dev/ttyACM1"}

// Link maps errors to commands and sends them over a serial channel.
// All methods are safe for concurrent use.
type Link struct {
	ch *serialport.Channel

	mu          sync.Mutex
	state       State
	lastCommand int
	position    float64

	// probe settings used by AutoConnect
	probeGap  time.Duration
	listPorts func() ([]string, error)
}

// NewLink wraps ch. The motor starts Idle at position 0.
func NewLink(ch *serialport.Channel) *Link {
	return &Link{
		ch:        ch,
		state:     Idle,
		probeGap:  100 * time.Millisecond,
		listPorts: serialport.ListPorts,
	}
}

// Connect opens the serial link at path. A fresh link starts Idle with no
// command sent.
func (l *Link) Connect(path string, baud int) error {
	if err := l.ch.Connect(path, baud); err != nil {
		return err
	}
	l.resetState()
	return nil
}

func (l *Link) resetState() {
	l.mu.Lock()
	l.state = Idle
	l.lastCommand = 0
	l.mu.Unlock()
}

// Disconnect stops the motor and releases the link.
func (l *Link) Disconnect() {
	if !l.ch.IsConnected() {
		return
	}
	l.ch.Disconnect()
	l.mu.Lock()
	l.state = Stopped
	l.lastCommand = 0
	l.mu.Unlock()
}

// AutoConnect tries ProbePaths and then every enumerated port at DefaultBaud,
// pausing between attempts. It returns the path that opened.
func (l *Link) AutoConnect(ctx context.Context) (string, error) {
	candidates := append([]string(nil), ProbePaths...)
	if l.listPorts != nil {
		if listed, err := l.listPorts(); err == nil {
			for _, p := range listed {
				if !slices.Contains(candidates, p) {
					candidates = append(candidates, p)
				}
			}
		} else {
			log.Debug("port enumeration failed", "error", err)
		}
	}

	for i, path := range candidates {
		if i > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(l.probeGap):
			}
		}
		if err := l.ch.Connect(path, DefaultBaud); err != nil {
			log.Debug("probe failed", "port", path, "error", err)
			continue
		}
		l.resetState()
		return path, nil
	}
	return "", fmt.Errorf("motor: no controller found on %d ports: %w", len(candidates), serialport.ErrNotConnected)
}

// SendError quantizes e and transmits the command. On a disconnected link it
// logs a warning and returns serialport.ErrNotConnected without sending.
func (l *Link) SendError(e float64) error {
	if !l.ch.IsConnected() {
		log.Warn("motor link not connected, command dropped", "error_px", e)
		return serialport.ErrNotConnected
	}
	return l.send(Quantize(e))
}

// Stop transmits command 0 when connected.
func (l *Link) Stop() error {
	if !l.ch.IsConnected() {
		return serialport.ErrNotConnected
	}
	return l.send(0)
}

// send records the state for command, transmits it, and only advances the
// last command and position when the frame was written in full.
func (l *Link) send(command int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state = StateFor(command)
	if err := l.ch.Transmit(command); err != nil {
		log.Warn("motor command not delivered", "command", command, "error", err)
		return err
	}
	l.lastCommand = command
	l.position += float64(command) * PositionPerStep
	return nil
}

// IsConnected reports whether the serial link is open.
func (l *Link) IsConnected() bool {
	return l.ch.IsConnected()
}

// Port returns the path of the open link, or "".
func (l *Link) Port() string {
	return l.ch.Port()
}

// State returns the current motor state.
func (l *Link) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// LastCommand returns the last command written successfully.
func (l *Link) LastCommand() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastCommand
}

// Position returns the dead-reckoned position. It is advisory only.
func (l *Link) Position() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

// Speed returns the last command scaled by SpeedPerStep.
func (l *Link) Speed() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return float64(l.lastCommand) * SpeedPerStep
}
