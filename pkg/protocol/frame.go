package protocol

import (
	"errors"
	"fmt"
)

// Command frame layout: [0xAA][0x55][int8 command][0x0D][0x0A].
// There is no checksum; the fixed header and footer are the only framing.
const (
	HeaderByte0 byte = 0xAA
	HeaderByte1 byte = 0x55
	FooterByte0 byte = 0x0D // CR
	FooterByte1 byte = 0x0A // LF

	// FrameSize is the exact length of every command frame on the wire.
	FrameSize = 5

	// MinCommand and MaxCommand bound the motor command space.
	MinCommand = -5
	MaxCommand = 5
)

var (
	// ErrFrameLength is returned when decoding a buffer that is not FrameSize bytes.
	ErrFrameLength = errors.New("protocol: command frame must be 5 bytes")

	// ErrFrameHeader is returned when the 0xAA 0x55 header is missing.
	ErrFrameHeader = errors.New("protocol: bad command frame header")

	// ErrFrameFooter is returned when the CR LF footer is missing.
	ErrFrameFooter = errors.New("protocol: bad command frame footer")

	// ErrCommandRange is returned when a decoded command lies outside [-5, 5].
	ErrCommandRange = errors.New("protocol: command out of range")
)

// Clamp limits a command to [MinCommand, MaxCommand].
func Clamp(command int) int8 {
	if command < MinCommand {
		return MinCommand
	}
	if command > MaxCommand {
		return MaxCommand
	}
	return int8(command)
}

// Encode builds the 5-byte frame for a command. Out-of-range commands are
// clamped before framing, so Encode never fails.
func Encode(command int) [FrameSize]byte {
	return [FrameSize]byte{
		HeaderByte0,
		HeaderByte1,
		byte(Clamp(command)),
		FooterByte0,
		FooterByte1,
	}
}

// AppendFrame appends the encoded frame for command to dst.
func AppendFrame(dst []byte, command int) []byte {
	f := Encode(command)
	return append(dst, f[:]...)
}

// Decode parses a single command frame.
func Decode(frame []byte) (int8, error) {
	if len(frame) != FrameSize {
		return 0, fmt.Errorf("%w: got %d", ErrFrameLength, len(frame))
	}
	if frame[0] != HeaderByte0 || frame[1] != HeaderByte1 {
		return 0, fmt.Errorf("%w: % X", ErrFrameHeader, frame[:2])
	}
	if frame[3] != FooterByte0 || frame[4] != FooterByte1 {
		return 0, fmt.Errorf("%w: % X", ErrFrameFooter, frame[3:])
	}
	cmd := int8(frame[2])
	if cmd < MinCommand || cmd > MaxCommand {
		return 0, fmt.Errorf("%w: %d", ErrCommandRange, cmd)
	}
	return cmd, nil
}

// DecodeStream splits a byte stream into consecutive frames and decodes each.
// Used by tests and bench tools that capture what was written to a port.
func DecodeStream(stream []byte) ([]int8, error) {
	if len(stream)%FrameSize != 0 {
		return nil, fmt.Errorf("%w: stream of %d bytes", ErrFrameLength, len(stream))
	}
	cmds := make([]int8, 0, len(stream)/FrameSize)
	for off := 0; off < len(stream); off += FrameSize {
		cmd, err := Decode(stream[off : off+FrameSize])
		if err != nil {
			return cmds, fmt.Errorf("frame %d: %w", off/FrameSize, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}
