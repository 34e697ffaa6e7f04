// Package alignment decides, frame by frame, whether the target is centered
// and drives the motor toward it when it is not.
package alignment

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/teslashibe/go-beacon/internal/log"
	"github.com/teslashibe/go-beacon/pkg/detection"
	"github.com/teslashibe/go-beacon/pkg/motor"
)

const (
	// DefaultThreshold is the centered band half-width in pixels.
	DefaultThreshold = 5.0

	MinThreshold = 1.0
	MaxThreshold = 20.0

	// AlignFrames in-threshold frames in a row confirm alignment.
	AlignFrames = 5

	// warnEvery throttles the "not connected" warning.
	warnEvery = 2 * time.Second
)

// ErrThresholdOutOfRange is returned by SetThreshold for values outside
// [MinThreshold, MaxThreshold]. The previous threshold is kept.
var ErrThresholdOutOfRange = errors.New("alignment: threshold out of range")

// Motor is what the engine needs from the motor link.
type Motor interface {
	SendError(e float64) error
	Stop() error
	IsConnected() bool
}

// Status is a read-only snapshot of the engine.
type Status struct {
	Enabled     bool    `json:"enabled"`
	Aligned     bool    `json:"aligned"`
	PixelError  float64 `json:"pixel_error"`
	Consecutive int     `json:"consecutive"`
	Threshold   float64 `json:"threshold"`
	LastCommand int     `json:"last_command"`
}

// Engine is the debounced alignment state machine. It is owned by the frame
// loop and is not safe for concurrent use.
type Engine struct {
	motor Motor

	enabled     bool
	pixelError  float64
	aligned     bool
	consecutive int
	threshold   float64
	lastCommand int

	lastWarn time.Time
	now      func() time.Time
}

// NewEngine returns a disabled engine with the default threshold.
func NewEngine(m Motor) *Engine {
	return &Engine{
		motor:     m,
		threshold: DefaultThreshold,
		now:       time.Now,
	}
}

// Step consumes the best candidate of one frame (nil when nothing was
// detected) and reports whether a command was sent.
func (e *Engine) Step(target *detection.Candidate, frameWidth int) bool {
	if !e.enabled || target == nil {
		return false
	}

	e.pixelError = target.X - float64(frameWidth)/2

	if math.Abs(e.pixelError) <= e.threshold {
		e.consecutive++
		if e.consecutive < AlignFrames || e.aligned {
			return false
		}
		e.aligned = true
		e.lastCommand = 0
		err := e.motor.Stop()
		log.Info("target aligned", "pixel_error", e.pixelError, "frames", e.consecutive)
		return err == nil
	}

	e.consecutive = 0
	e.aligned = false

	if !e.motor.IsConnected() {
		if e.now().Sub(e.lastWarn) >= warnEvery {
			e.lastWarn = e.now()
			log.Warn("motor not connected, alignment paused", "pixel_error", e.pixelError)
		}
		return false
	}

	if err := e.motor.SendError(e.pixelError); err != nil {
		return false
	}
	e.lastCommand = motor.Quantize(e.pixelError)
	return true
}

// Enabled reports whether auto-align is on.
func (e *Engine) Enabled() bool { return e.enabled }

// Toggle flips auto-align and returns the new value.
func (e *Engine) Toggle() bool {
	e.SetEnabled(!e.enabled)
	return e.enabled
}

// SetEnabled turns auto-align on or off. Turning it off stops the motor and
// clears the alignment state.
func (e *Engine) SetEnabled(on bool) {
	if on == e.enabled {
		return
	}
	e.enabled = on
	if on {
		log.Info("auto-align enabled", "threshold", e.threshold)
		return
	}
	e.halt()
	log.Info("auto-align disabled")
}

// Reset disables auto-align, stops the motor and clears all state.
func (e *Engine) Reset() {
	e.enabled = false
	e.halt()
	e.pixelError = 0
}

func (e *Engine) halt() {
	if e.motor.IsConnected() {
		if err := e.motor.Stop(); err != nil {
			log.Warn("stop on disable failed", "error", err)
		}
	}
	e.aligned = false
	e.consecutive = 0
	e.lastCommand = 0
}

// Threshold returns the centered band half-width in pixels.
func (e *Engine) Threshold() float64 { return e.threshold }

// SetThreshold accepts values in [MinThreshold, MaxThreshold].
func (e *Engine) SetThreshold(px float64) error {
	if math.IsNaN(px) || px < MinThreshold || px > MaxThreshold {
		return fmt.Errorf("%w: %.1f not in [%.0f, %.0f]", ErrThresholdOutOfRange, px, MinThreshold, MaxThreshold)
	}
	e.threshold = px
	return nil
}

// Aligned reports whether alignment has been confirmed.
func (e *Engine) Aligned() bool { return e.aligned }

// PixelError returns the last measured horizontal offset.
func (e *Engine) PixelError() float64 { return e.pixelError }

// LastCommand returns the last command the engine issued.
func (e *Engine) LastCommand() int { return e.lastCommand }

// Status returns a snapshot of the engine state.
func (e *Engine) Status() Status {
	return Status{
		Enabled:     e.enabled,
		Aligned:     e.aligned,
		PixelError:  e.pixelError,
		Consecutive: e.consecutive,
		Threshold:   e.threshold,
		LastCommand: e.lastCommand,
	}
}
