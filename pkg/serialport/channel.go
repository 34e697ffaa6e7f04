// Package serialport owns the point-to-point serial link to the motor
// controller. Every outgoing command is a 5-byte protocol frame; closing the
// link always tries to send a stop frame first.
package serialport

import (
	"fmt"
	"sync"

	"github.com/teslashibe/go-beacon/internal/log"
	"github.com/teslashibe/go-beacon/pkg/protocol"
)

// logEvery controls how often successful transmissions are logged.
const logEvery = 20

// Channel is a mutex-guarded serial link. It is safe for concurrent use by the
// frame loop and the operator console.
type Channel struct {
	mu     sync.Mutex
	open   Opener
	port   Porter
	path   string
	baud   int
	frames uint64
}

// NewChannel creates a disconnected channel. A nil opener selects OpenDevice.
func NewChannel(open Opener) *Channel {
	if open == nil {
		open = OpenDevice
	}
	return &Channel{open: open}
}

// Connect opens path at baud. An unsupported baud fails before any device is
// touched. An existing link is torn down (with its stop frame) first.
func (c *Channel) Connect(path string, baud int) error {
	if !SupportedBaud(baud) {
		return fmt.Errorf("%w: %d", ErrUnsupportedBaud, baud)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port != nil {
		c.closeLocked()
	}

	port, err := c.open(path, RawMode(baud))
	if err != nil {
		return &OpenError{Path: path, Baud: baud, Err: err}
	}
	if port == nil {
		return &OpenError{Path: path, Baud: baud, Err: fmt.Errorf("opener returned no port")}
	}

	c.port = port
	c.path = path
	c.baud = baud
	c.frames = 0
	log.Info("serial link open", "port", path, "baud", baud)
	return nil
}

// Disconnect sends a best-effort stop frame and releases the device.
// It is a no-op when not connected.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Channel) closeLocked() {
	if c.port == nil {
		return
	}
	if err := c.writeLocked(0); err != nil {
		log.Warn("fail-safe stop not delivered", "port", c.path, "error", err)
	}
	if err := c.port.Close(); err != nil {
		log.Warn("serial close failed", "port", c.path, "error", err)
	}
	log.Info("serial link closed", "port", c.path)
	c.port = nil
	c.path = ""
	c.baud = 0
}

// Transmit frames command (clamped to [-5, 5]) and writes it to the link.
func (c *Channel) Transmit(command int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil {
		return ErrNotConnected
	}
	return c.writeLocked(command)
}

func (c *Channel) writeLocked(command int) error {
	frame := protocol.Encode(command)
	n, err := c.port.Write(frame[:])
	if err != nil {
		return fmt.Errorf("serialport: write %s: %w", c.path, err)
	}
	if n != protocol.FrameSize {
		return fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, protocol.FrameSize)
	}
	if d, ok := c.port.(drainer); ok {
		if err := d.Drain(); err != nil {
			log.Debug("serial drain failed", "port", c.path, "error", err)
		}
	}

	c.frames++
	if c.frames%logEvery == 0 {
		log.Debug("serial tx", "port", c.path, "command", protocol.Clamp(command), "frames", c.frames)
	}
	return nil
}

// IsConnected reports whether a device is currently open.
func (c *Channel) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.port != nil
}

// Port returns the path of the open device, or "" when disconnected.
func (c *Channel) Port() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

// Baud returns the configured rate, or 0 when disconnected.
func (c *Channel) Baud() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baud
}

// Frames returns the number of frames written since the last Connect.
func (c *Channel) Frames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}
