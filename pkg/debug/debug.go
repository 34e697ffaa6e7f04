// Package debug provides runtime-toggled trace output
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// Gate gates verbose trace lines behind a flag that can be flipped while the
// loop is running (the operator's "debug" command).
type Gate struct {
	on atomic.Bool

	mu sync.Mutex
	w  io.Writer
}

// NewGate returns a disabled gate writing to stdout.
func NewGate() *Gate {
	return &Gate{w: os.Stdout}
}

// SetOutput redirects trace output. Used by tests.
func (g *Gate) SetOutput(w io.Writer) {
	g.mu.Lock()
	g.w = w
	g.mu.Unlock()
}

// Enabled reports whether tracing is on. A nil gate is always off.
func (g *Gate) Enabled() bool {
	return g != nil && g.on.Load()
}

// Set turns tracing on or off.
func (g *Gate) Set(on bool) {
	g.on.Store(on)
}

// Toggle flips tracing and returns the new value.
func (g *Gate) Toggle() bool {
	for {
		old := g.on.Load()
		if g.on.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Log prints a message only if tracing is enabled
func (g *Gate) Log(format string, args ...interface{}) {
	if !g.Enabled() {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	fmt.Fprintf(g.w, format, args...)
}

// Logln prints a message with newline only if tracing is enabled
func (g *Gate) Logln(msg string) {
	if !g.Enabled() {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	fmt.Fprintln(g.w, msg)
}
