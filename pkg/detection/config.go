// Package detection finds green circular light sources in BGR frames.
// Each frame is analyzed independently: nothing carries over between frames
// except the retained debug masks.
package detection

import "fmt"

// HSV is a hue/saturation/value triple in OpenCV's 8-bit ranges
// (H 0-179, S and V 0-255).
type HSV struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	V float64 `json:"v"`
}

// Config holds the tunable detection parameters.
type Config struct {
	// === Color band ===
	GreenLow  HSV `json:"green_low"`
	GreenHigh HSV `json:"green_high"`

	// === Intensity bands (lower bound, upper bound is 255) ===
	BrightLow   float64 `json:"bright_low"`   // grayscale level for the bright core
	GradientLow float64 `json:"gradient_low"` // Laplacian magnitude for rims

	// === Contour filters ===
	MinArea     float64 `json:"min_area"`
	MaxArea     float64 `json:"max_area"`
	MinRadius   float64 `json:"min_radius"`
	MaxRadius   float64 `json:"max_radius"`
	Circularity float64 `json:"circularity"` // minimum 4πA/P²
	MinAspect   float64 `json:"min_aspect"`
	MaxAspect   float64 `json:"max_aspect"`

	// MorphKernel is the elliptical structuring element size (odd, pixels).
	MorphKernel int `json:"morph_kernel"`

	Mode      Mode      `json:"mode"`
	Selection Selection `json:"selection"`
}

// Circularity threshold stepping limits used by the operator controls.
const (
	CircularityStep = 0.05
	CircularityMin  = 0.1
	CircularityMax  = 1.0
)

// DefaultConfig returns parameters tuned for a green LED at 1-3 m.
func DefaultConfig() Config {
	return Config{
		GreenLow:  HSV{H: 35, S: 50, V: 50},
		GreenHigh: HSV{H: 85, S: 255, V: 255},

		BrightLow:   120,
		GradientLow: 15,

		MinArea:     20,
		MaxArea:     5000,
		MinRadius:   3,
		MaxRadius:   80,
		Circularity: 0.5,
		MinAspect:   0.6,
		MaxAspect:   1.4,

		MorphKernel: 3,

		Mode:      ModeHybrid,
		Selection: SelectMostCircular,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.GreenLow.H < 0 || c.GreenHigh.H > 179 || c.GreenLow.H > c.GreenHigh.H {
		errors = append(errors, "green hue band must satisfy 0 <= low <= high <= 179")
	}
	if c.GreenLow.S < 0 || c.GreenHigh.S > 255 || c.GreenLow.S > c.GreenHigh.S {
		errors = append(errors, "green saturation band must satisfy 0 <= low <= high <= 255")
	}
	if c.GreenLow.V < 0 || c.GreenHigh.V > 255 || c.GreenLow.V > c.GreenHigh.V {
		errors = append(errors, "green value band must satisfy 0 <= low <= high <= 255")
	}
	if c.BrightLow < 0 || c.BrightLow > 255 {
		errors = append(errors, "bright_low must be between 0 and 255")
	}
	if c.GradientLow < 0 || c.GradientLow > 255 {
		errors = append(errors, "gradient_low must be between 0 and 255")
	}
	if c.MinArea < 0 || c.MinArea > c.MaxArea {
		errors = append(errors, "area bounds must satisfy 0 <= min_area <= max_area")
	}
	if c.MinRadius < 0 || c.MinRadius > c.MaxRadius {
		errors = append(errors, "radius bounds must satisfy 0 <= min_radius <= max_radius")
	}
	if c.Circularity < CircularityMin || c.Circularity > CircularityMax {
		errors = append(errors, fmt.Sprintf("circularity must be between %.2f and %.2f", CircularityMin, CircularityMax))
	}
	if c.MinAspect <= 0 || c.MinAspect > c.MaxAspect {
		errors = append(errors, "aspect bounds must satisfy 0 < min_aspect <= max_aspect")
	}
	if c.MorphKernel < 1 || c.MorphKernel%2 == 0 {
		errors = append(errors, "morph_kernel must be a positive odd number")
	}
	if !c.Mode.valid() {
		errors = append(errors, "mode must be bright, gradient or hybrid")
	}
	if !c.Selection.valid() {
		errors = append(errors, "selection must be most_circular or last")
	}

	return errors
}

// clamp restricts v to the range [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
