package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/teslashibe/go-beacon/pkg/detection"
)

// Tuning is the on-disk parameter override file. Only fields present in
// the file are applied.
type Tuning struct {
	GreenLow    *detection.HSV       `json:"green_low,omitempty"`
	GreenHigh   *detection.HSV       `json:"green_high,omitempty"`
	BrightLow   *float64             `json:"bright_low,omitempty"`
	GradientLow *float64             `json:"gradient_low,omitempty"`
	MinArea     *float64             `json:"min_area,omitempty"`
	MaxArea     *float64             `json:"max_area,omitempty"`
	MinRadius   *float64             `json:"min_radius,omitempty"`
	MaxRadius   *float64             `json:"max_radius,omitempty"`
	Circularity *float64             `json:"circularity,omitempty"`
	MinAspect   *float64             `json:"min_aspect,omitempty"`
	MaxAspect   *float64             `json:"max_aspect,omitempty"`
	MorphKernel *int                 `json:"morph_kernel,omitempty"`
	Mode        *detection.Mode      `json:"mode,omitempty"`
	Selection   *detection.Selection `json:"selection,omitempty"`

	// Threshold is the alignment threshold in pixels.
	Threshold *float64 `json:"threshold,omitempty"`
}

// LoadTuning reads and decodes a tuning file. Unknown keys are rejected so
// typos don't silently fall back to defaults.
func LoadTuning(path string) (*Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read tuning: %w", err)
	}
	return ParseTuning(data)
}

// ParseTuning decodes tuning JSON.
func ParseTuning(data []byte) (*Tuning, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var t Tuning
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("config: parse tuning: %w", err)
	}
	return &t, nil
}

// Apply overlays the present fields onto cfg and returns the resulting
// config's validation problems.
func (t *Tuning) Apply(cfg *detection.Config) []string {
	if t == nil {
		return cfg.Validate()
	}
	setHSV(&cfg.GreenLow, t.GreenLow)
	setHSV(&cfg.GreenHigh, t.GreenHigh)
	set(&cfg.BrightLow, t.BrightLow)
	set(&cfg.GradientLow, t.GradientLow)
	set(&cfg.MinArea, t.MinArea)
	set(&cfg.MaxArea, t.MaxArea)
	set(&cfg.MinRadius, t.MinRadius)
	set(&cfg.MaxRadius, t.MaxRadius)
	set(&cfg.Circularity, t.Circularity)
	set(&cfg.MinAspect, t.MinAspect)
	set(&cfg.MaxAspect, t.MaxAspect)
	if t.MorphKernel != nil {
		cfg.MorphKernel = *t.MorphKernel
	}
	if t.Mode != nil {
		cfg.Mode = *t.Mode
	}
	if t.Selection != nil {
		cfg.Selection = *t.Selection
	}
	return cfg.Validate()
}

// ThresholdOr returns the file's threshold or fallback.
func (t *Tuning) ThresholdOr(fallback float64) float64 {
	if t == nil || t.Threshold == nil {
		return fallback
	}
	return *t.Threshold
}

func set(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setHSV(dst *detection.HSV, v *detection.HSV) {
	if v != nil {
		*dst = *v
	}
}
