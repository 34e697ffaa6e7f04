package serialport

import (
	"bytes"
	"errors"
	"sync"

	"go.bug.st/serial"
)

// TestablePort implements Porter with configurable behaviour for tests in
// this and other packages.
type TestablePort struct {
	mu sync.Mutex

	// WriteBuffer captures data written to the port
	WriteBuffer *bytes.Buffer

	// WriteError is returned by the next Write call if set
	WriteError error

	// ShortWrite truncates the next Write to this many bytes if > 0
	ShortWrite int

	// CloseError is returned by Close if set
	CloseError error

	// Closed indicates whether Close was called
	Closed bool

	// WriteCalls records the number of Write calls
	WriteCalls int

	// Drains records the number of Drain calls
	Drains int
}

// NewTestablePort creates an empty TestablePort.
func NewTestablePort() *TestablePort {
	return &TestablePort{WriteBuffer: bytes.NewBuffer(nil)}
}

// Write appends p to WriteBuffer, honouring WriteError and ShortWrite.
func (t *TestablePort) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.WriteCalls++

	if t.Closed {
		return 0, errors.New("serial port closed")
	}
	if t.WriteError != nil {
		err := t.WriteError
		t.WriteError = nil
		return 0, err
	}
	if t.ShortWrite > 0 && t.ShortWrite < len(p) {
		n := t.ShortWrite
		t.ShortWrite = 0
		return t.WriteBuffer.Write(p[:n])
	}
	return t.WriteBuffer.Write(p)
}

// Drain counts calls so tests can assert the channel flushes.
func (t *TestablePort) Drain() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Drains++
	return nil
}

// Close marks the port as closed.
func (t *TestablePort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Closed = true
	return t.CloseError
}

// Written returns a copy of everything written so far.
func (t *TestablePort) Written() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]byte(nil), t.WriteBuffer.Bytes()...)
}

// IsClosed reports whether Close was called.
func (t *TestablePort) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Closed
}

// SetWriteError makes the next Write fail with err.
func (t *TestablePort) SetWriteError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.WriteError = err
}

// SetShortWrite makes the next Write accept only n bytes.
func (t *TestablePort) SetShortWrite(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ShortWrite = n
}

// OpenCall records one call made through a MockOpener.
type OpenCall struct {
	Path string
	Mode *serial.Mode
}

// MockOpener hands out Port (or fails with Err) and records every call.
type MockOpener struct {
	mu    sync.Mutex
	Port  *TestablePort
	Err   error
	Calls []OpenCall

	// FailPaths fail with Err (or a default error) while other paths succeed
	FailPaths map[string]bool
}

// NewMockOpener returns a MockOpener that succeeds with a fresh TestablePort.
func NewMockOpener() *MockOpener {
	return &MockOpener{Port: NewTestablePort()}
}

// Open implements Opener.
func (m *MockOpener) Open(path string, mode *serial.Mode) (Porter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, OpenCall{Path: path, Mode: mode})

	if m.FailPaths[path] {
		if m.Err != nil {
			return nil, m.Err
		}
		return nil, errors.New("no such device")
	}
	if m.Err != nil && m.FailPaths == nil {
		return nil, m.Err
	}
	return m.Port, nil
}

// CallCount returns how many times Open was called.
func (m *MockOpener) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Paths returns the paths passed to Open, in order.
func (m *MockOpener) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		out = append(out, c.Path)
	}
	return out
}
