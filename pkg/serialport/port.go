package serialport

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// Porter is the minimal surface the channel needs from an open serial device.
// Tests substitute TestablePort.
type Porter interface {
	io.Writer
	io.Closer
}

// drainer is implemented by ports that can block until queued output is sent.
type drainer interface {
	Drain() error
}

// Opener opens a device at path configured with mode.
type Opener func(path string, mode *serial.Mode) (Porter, error)

// ReadTimeout bounds reads on the link. The motor controller sends nothing back today.
const ReadTimeout = 500 * time.Millisecond

// supportedBauds is the closed set of rates accepted by Connect.
var supportedBauds = map[int]struct{}{
	9600:   {},
	19200:  {},
	38400:  {},
	57600:  {},
	115200: {},
	230400: {},
	460800: {},
	921600: {},
}

// SupportedBaud reports whether baud is one of the accepted rates.
func SupportedBaud(baud int) bool {
	_, ok := supportedBauds[baud]
	return ok
}

// RawMode returns the 8N1 mode used for the motor controller link.
// go.bug.st/serial opens ports raw with hardware flow control disabled.
func RawMode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenDevice is the production Opener backed by go.bug.st/serial.
func OpenDevice(path string, mode *serial.Mode) (Porter, error) {
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return port, nil
}

// ListPorts returns the serial devices known to the OS.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
