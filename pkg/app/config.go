// Package app wires the camera, detection pipeline, alignment engine, motor
// link and dashboard into the per-frame loop.
package app

import (
	"fmt"
	"strings"

	"github.com/teslashibe/go-beacon/pkg/alignment"
	"github.com/teslashibe/go-beacon/pkg/camera"
	"github.com/teslashibe/go-beacon/pkg/detection"
	"github.com/teslashibe/go-beacon/pkg/motor"
	"github.com/teslashibe/go-beacon/pkg/serialport"
)

// Defaults.
const (
	DefaultWindow = "Detection Result"
)

// Config holds all configuration for a beacon run.
// Flag parsing is done in cmd/beacon; this struct is data only.
type Config struct {
	// SerialPort is the motor controller device. Empty probes the usual
	// USB serial paths.
	SerialPort string
	Baud       int

	Camera    camera.Config
	Detection detection.Config

	// Threshold is the alignment band half-width in pixels.
	Threshold float64
	// AutoAlign starts with alignment enabled.
	AutoAlign bool

	// Headless skips the result window; commands come from the console.
	Headless bool
	// Console reads operator commands from stdin.
	Console bool
	// Dashboard is the listen address of the read-only dashboard. Empty
	// disables it.
	Dashboard string

	// SnapshotDir is where the save command writes detection_<n>.jpg.
	SnapshotDir string

	// Debug starts with the detection trace on.
	Debug bool

	Window string
}

// DefaultConfig returns the bench defaults: 640x480 camera 0, auto-probed
// serial at 115200, threshold 5px, window and console on.
func DefaultConfig() Config {
	return Config{
		Baud:        motor.DefaultBaud,
		Camera:      camera.DefaultConfig(),
		Detection:   detection.DefaultConfig(),
		Threshold:   alignment.DefaultThreshold,
		Console:     true,
		SnapshotDir: ".",
		Window:      DefaultWindow,
	}
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if !serialport.SupportedBaud(c.Baud) {
		problems = append(problems, fmt.Sprintf("baud %d is not supported", c.Baud))
	}
	if c.Threshold < alignment.MinThreshold || c.Threshold > alignment.MaxThreshold {
		problems = append(problems, fmt.Sprintf("threshold must be between %.0f and %.0f pixels",
			alignment.MinThreshold, alignment.MaxThreshold))
	}
	for _, p := range c.Camera.Validate() {
		problems = append(problems, "camera: "+p)
	}
	for _, p := range c.Detection.Validate() {
		problems = append(problems, "detection: "+p)
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

// ConfigError lists configuration problems.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}
