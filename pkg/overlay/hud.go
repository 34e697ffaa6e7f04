package overlay

import (
	"fmt"
	"image"
	"image/color"
)

var (
	green   = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 0}
	steel   = color.RGBA{R: 100, G: 200, B: 200, A: 0}
	magenta = color.RGBA{R: 255, G: 100, B: 200, A: 0}
)

// HUD is the per-frame status shown on the result window.
type HUD struct {
	FPS          float64
	ProcessingMS float64
	AutoAlign    bool
	Aligned      bool
	PixelError   float64
	MotorState   string
	Connected    bool
	MotorData    int
	Mode         string
}

// Lines lays the HUD out for a frame w pixels wide.
func (h HUD) Lines(w int) []Text {
	out := []Text{
		{fmt.Sprintf("FPS: %d", int(h.FPS)), image.Pt(10, 30), 0.7, green, true},
		{fmt.Sprintf("Time: %.1fms", h.ProcessingMS), image.Pt(10, 60), 0.6, cyan, false},
		onOff("AUTO-ALIGN", h.AutoAlign, image.Pt(10, 90)),
		{fmt.Sprintf("Error: %dpx", int(h.PixelError)), image.Pt(10, 120), 0.6, cyan, false},
		{fmt.Sprintf("Motor Data: %d", h.MotorData), image.Pt(10, 150), 0.6, magenta, false},
		{"Motor: " + h.MotorState, image.Pt(w-150, 60), 0.6, steel, false},
	}
	if h.Mode != "" {
		out = append(out, Text{"Mode: " + h.Mode, image.Pt(10, 180), 0.6, cyan, false})
	}

	serial := Text{"Serial: Disconnected", image.Pt(w-200, 90), 0.6, red, false}
	if h.Connected {
		serial.Value = "Serial: Connected"
		serial.Color = green
	}
	out = append(out, serial)

	if h.Aligned {
		out = append(out, Text{"ALIGNED!", image.Pt(w-100, 30), 0.7, green, true})
	}
	return out
}

func onOff(label string, on bool, at image.Point) Text {
	if on {
		return Text{label + ": ON", at, 0.6, green, false}
	}
	return Text{label + ": OFF", at, 0.6, red, false}
}
