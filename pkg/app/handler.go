package app

import (
	"fmt"
	"path/filepath"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-beacon/pkg/alignment"
	"github.com/teslashibe/go-beacon/pkg/camera"
	"github.com/teslashibe/go-beacon/pkg/detection"
	"github.com/teslashibe/go-beacon/pkg/operator"
)

// note prints an operator-facing line and mirrors it to the dashboard log.
func (a *App) note(level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(a.out, msg)
	if a.webServer != nil {
		a.webServer.AddLog(level, msg)
	}
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

// ToggleAutoAlign flips auto-align. Turning it off stops the motor.
func (a *App) ToggleAutoAlign() {
	on := a.engine.Toggle()
	a.note("align", "🎯 Auto-align: %s", onOff(on))
}

// SetThreshold changes the alignment band half-width.
func (a *App) SetThreshold(px float64) error {
	if err := a.engine.SetThreshold(px); err != nil {
		return fmt.Errorf("threshold %.1f: %w (allowed %.0f-%.0f px)", px, err,
			alignment.MinThreshold, alignment.MaxThreshold)
	}
	a.note("align", "🎯 Alignment threshold: %.1f px", px)
	return nil
}

// SetPort switches the motor controller to path at the configured baud.
func (a *App) SetPort(path string) error {
	if err := a.link.Connect(path, a.config.Baud); err != nil {
		return err
	}
	a.note("serial", "🔌 Motor controller on %s @ %d", path, a.config.Baud)
	return nil
}

// PrintStatus prints the alignment, motor and serial readouts.
func (a *App) PrintStatus() {
	s := a.Status()
	port := s.Port
	if port == "" {
		port = "-"
	}
	fmt.Fprintln(a.out, "\n📋 Status")
	fmt.Fprintf(a.out, "   Auto-align:   %s\n", onOff(s.AutoAlign))
	fmt.Fprintf(a.out, "   Aligned:      %v\n", s.Aligned)
	fmt.Fprintf(a.out, "   Pixel error:  %.1f px\n", s.PixelError)
	fmt.Fprintf(a.out, "   Threshold:    %.1f px\n", s.Threshold)
	fmt.Fprintf(a.out, "   Motor:        %s\n", s.MotorState)
	fmt.Fprintf(a.out, "   Motor data:   %d\n", s.LastCommand)
	fmt.Fprintf(a.out, "   Position:     %.1f\n", s.Position)
	fmt.Fprintf(a.out, "   Serial:       %s (%s)\n", connected(s.Connected), port)
	fmt.Fprintf(a.out, "   Detection:    %s, circularity >= %.2f\n", s.DetectionMode, s.Circularity)
}

func connected(ok bool) string {
	if ok {
		return "connected"
	}
	return "disconnected"
}

// ResetAll restores circularity, mode, debug, alignment, threshold and grid
// to their startup defaults.
func (a *App) ResetAll() {
	def := detection.DefaultConfig()
	a.pipeline.SetCircularity(def.Circularity)
	a.pipeline.SetMode(detection.ModeHybrid)
	a.trace.Set(false)
	a.engine.Reset()
	if err := a.engine.SetThreshold(alignment.DefaultThreshold); err != nil {
		a.logger.Error("reset threshold", "error", err)
	}
	a.showGrid = true
	a.note("info", "🔄 Parameters reset")
}

// SetCircularity sets the minimum circularity, clamped to [0.1, 1.0].
func (a *App) SetCircularity(v float64) {
	got := a.pipeline.SetCircularity(v)
	a.note("info", "⭕ Circularity threshold: %.2f", got)
}

// StepCircularity nudges the minimum circularity by delta.
func (a *App) StepCircularity(delta float64) {
	got := a.pipeline.StepCircularity(delta)
	a.note("info", "⭕ Circularity threshold: %.2f", got)
}

// CycleMode advances bright -> gradient -> hybrid -> bright.
func (a *App) CycleMode() {
	m := a.pipeline.CycleMode()
	a.note("info", "🔍 Detection mode: %s", m)
}

// ToggleDebug flips the per-candidate trace.
func (a *App) ToggleDebug() {
	on := a.trace.Toggle()
	a.note("info", "🐛 Debug trace: %s", onOff(on))
}

// ToggleGrid flips the grid overlay.
func (a *App) ToggleGrid() {
	a.showGrid = !a.showGrid
	a.note("info", "📐 Grid: %s", onOff(a.showGrid))
}

// Snapshot writes the last raw frame to detection_<n>.jpg.
func (a *App) Snapshot() error {
	if a.raw.Empty() {
		return fmt.Errorf("snapshot: %w", camera.ErrNoFrame)
	}
	name := filepath.Join(a.config.SnapshotDir, fmt.Sprintf("detection_%d.jpg", a.snapshots))
	if !gocv.IMWrite(name, a.raw) {
		return fmt.Errorf("snapshot: cannot write %s", name)
	}
	a.snapshots++
	a.note("info", "💾 Saved %s", name)
	return nil
}

// Quit stops the loop after the current iteration.
// Help prints the key and console reference.
func (a *App) Help() {
	fmt.Fprintln(a.out, operator.HelpText)
}

func (a *App) Hint(msg string) {
	a.note("info", msg)
}

func (a *App) Quit() {
	a.quit = true
	a.note("info", "⏹️  Quit requested")
}
