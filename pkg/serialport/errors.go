package serialport

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedBaud is returned by Connect for a rate outside the accepted set.
	ErrUnsupportedBaud = errors.New("serialport: unsupported baud rate")

	// ErrNotConnected is returned when transmitting without an open link.
	ErrNotConnected = errors.New("serialport: not connected")

	// ErrShortWrite is returned when fewer than FrameSize bytes reach the port.
	// The frame is lost and is not retried.
	ErrShortWrite = errors.New("serialport: short write")
)

// OpenError reports a device that could not be opened or configured.
type OpenError struct {
	Path string
	Baud int
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("serialport: open %s at %d baud: %v", e.Path, e.Baud, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}
