package detection

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-beacon/pkg/debug"
)

var (
	green = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	red   = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	// dimGreen sits inside the HSV band but its gray level (~112) stays
	// under the default BrightLow of 120.
	dimGreen = color.RGBA{R: 0, G: 190, B: 0, A: 0}
)

func blankFrame() gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
}

func frameWithDisk(center image.Point, radius int, c color.RGBA) gocv.Mat {
	frame := blankFrame()
	gocv.Circle(&frame, center, radius, c, -1)
	return frame
}

func TestAnalyze_SingleGreenDisk(t *testing.T) {
	for _, mode := range []Mode{ModeBrightCore, ModeHybrid} {
		t.Run(mode.String(), func(t *testing.T) {
			p := NewPipeline(DefaultConfig(), nil)
			defer p.Close()

			frame := frameWithDisk(image.Pt(320, 240), 20, green)
			defer frame.Close()

			res, err := p.AnalyzeMode(frame, mode)
			if err != nil {
				t.Fatalf("AnalyzeMode() error = %v", err)
			}
			defer res.Close()

			if len(res.Candidates) != 1 {
				t.Fatalf("candidates = %d, want 1 (rejected %v)", len(res.Candidates), res.Rejected)
			}
			target := res.Target()
			if target == nil {
				t.Fatal("Target() = nil")
			}
			if math.Abs(target.X-320) > 2 || math.Abs(target.Y-240) > 2 {
				t.Errorf("center = (%.1f, %.1f), want ~(320, 240)", target.X, target.Y)
			}
			if target.Radius < 16 || target.Radius > 24 {
				t.Errorf("radius = %.1f, want ~20", target.Radius)
			}
			if target.Circularity < 0.5 {
				t.Errorf("circularity = %.3f, want >= 0.5", target.Circularity)
			}
			if math.Abs(target.CentroidX-target.X) > 2 {
				t.Errorf("centroid x = %.1f, enclosing x = %.1f", target.CentroidX, target.X)
			}
			if res.Width != 640 || res.Height != 480 {
				t.Errorf("size = %dx%d", res.Width, res.Height)
			}
			if res.Annotated.Cols() != 640 || res.Annotated.Rows() != 480 {
				t.Errorf("annotated size = %dx%d", res.Annotated.Cols(), res.Annotated.Rows())
			}
		})
	}
}

func TestAnalyze_ModeCombination(t *testing.T) {
	tests := []struct {
		name string
		disk color.RGBA
		mode Mode
		want int
	}{
		{"bright disk/bright", green, ModeBrightCore, 1},
		{"bright disk/gradient", green, ModeGradient, 1},
		{"bright disk/hybrid", green, ModeHybrid, 1},
		{"dim disk/bright", dimGreen, ModeBrightCore, 0},
		{"dim disk/gradient", dimGreen, ModeGradient, 1},
		{"dim disk/hybrid", dimGreen, ModeHybrid, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPipeline(DefaultConfig(), nil)
			defer p.Close()

			frame := frameWithDisk(image.Pt(320, 240), 25, tc.disk)
			defer frame.Close()

			res, err := p.AnalyzeMode(frame, tc.mode)
			if err != nil {
				t.Fatalf("AnalyzeMode() error = %v", err)
			}
			defer res.Close()

			if len(res.Candidates) != tc.want {
				t.Fatalf("candidates = %d, want %d (rejected %v)", len(res.Candidates), tc.want, res.Rejected)
			}
			if tc.want == 0 {
				return
			}
			target := res.Target()
			if math.Abs(target.X-320) > 3 || math.Abs(target.Y-240) > 3 {
				t.Errorf("center = (%.1f, %.1f), want ~(320, 240)", target.X, target.Y)
			}
			if math.Abs(target.CentroidX-320) > 3 || math.Abs(target.CentroidY-240) > 3 {
				t.Errorf("centroid = (%.1f, %.1f), want ~(320, 240)", target.CentroidX, target.CentroidY)
			}
		})
	}
}

func TestAnalyze_NoTargets(t *testing.T) {
	tests := []struct {
		name  string
		frame func() gocv.Mat
	}{
		{"black", blankFrame},
		{"red disk", func() gocv.Mat { return frameWithDisk(image.Pt(320, 240), 20, red) }},
		{"tiny green", func() gocv.Mat { return frameWithDisk(image.Pt(100, 100), 1, green) }},
		{"green bar", func() gocv.Mat {
			f := blankFrame()
			gocv.Rectangle(&f, image.Rect(200, 200, 320, 216), green, -1)
			return f
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPipeline(DefaultConfig(), nil)
			defer p.Close()

			frame := tc.frame()
			defer frame.Close()

			res, err := p.Analyze(frame)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			defer res.Close()

			if len(res.Candidates) != 0 {
				t.Errorf("candidates = %+v, want none", res.Candidates)
			}
			if res.Best != -1 || res.Target() != nil {
				t.Errorf("Best = %d, want -1", res.Best)
			}
		})
	}
}

func TestAnalyze_EmptyFrame(t *testing.T) {
	p := NewPipeline(DefaultConfig(), nil)
	defer p.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	res, err := p.Analyze(empty)
	if !errors.Is(err, ErrEmptyFrame) {
		t.Fatalf("Analyze() error = %v, want ErrEmptyFrame", err)
	}
	if res.Target() != nil {
		t.Error("empty frame should have no target")
	}
}

func TestAnalyze_SelectionPolicies(t *testing.T) {
	frame := frameWithDisk(image.Pt(160, 240), 20, green)
	defer frame.Close()
	gocv.Circle(&frame, image.Pt(480, 240), 26, green, -1)

	for _, sel := range []Selection{SelectMostCircular, SelectLast} {
		t.Run(sel.String(), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Selection = sel
			p := NewPipeline(cfg, nil)
			defer p.Close()

			res, err := p.Analyze(frame)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			defer res.Close()

			if len(res.Candidates) != 2 {
				t.Fatalf("candidates = %d, want 2", len(res.Candidates))
			}

			want := len(res.Candidates) - 1
			if sel == SelectMostCircular {
				want = 0
				if res.Candidates[1].Circularity > res.Candidates[0].Circularity {
					want = 1
				}
			}
			if res.Best != want {
				t.Errorf("Best = %d, want %d (candidates %+v)", res.Best, want, res.Candidates)
			}
		})
	}
}

func TestAnalyze_DebugTrace(t *testing.T) {
	var buf bytes.Buffer
	gate := debug.NewGate()
	gate.SetOutput(&buf)

	p := NewPipeline(DefaultConfig(), gate)
	defer p.Close()

	frame := frameWithDisk(image.Pt(320, 240), 20, green)
	defer frame.Close()

	res, _ := p.Analyze(frame)
	res.Close()
	if buf.Len() != 0 {
		t.Fatalf("trace written while disabled: %q", buf.String())
	}

	gate.Set(true)
	res, _ = p.Analyze(frame)
	res.Close()
	if !strings.Contains(buf.String(), "candidate #1") {
		t.Errorf("trace = %q, want a candidate line", buf.String())
	}
}

func TestMasks_RetainLastFrame(t *testing.T) {
	p := NewPipeline(DefaultConfig(), nil)
	defer p.Close()

	frame := frameWithDisk(image.Pt(320, 240), 20, green)
	defer frame.Close()

	res, err := p.Analyze(frame)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	res.Close()

	m := p.Masks()
	defer m.Close()

	for name, mask := range map[string]gocv.Mat{"color": m.Color, "bright": m.Bright, "combined": m.Combined} {
		if mask.Empty() {
			t.Errorf("%s mask is empty", name)
			continue
		}
		if gocv.CountNonZero(mask) == 0 {
			t.Errorf("%s mask has no set pixels", name)
		}
	}
}

func TestPipeline_CircularityAndMode(t *testing.T) {
	p := NewPipeline(DefaultConfig(), nil)
	defer p.Close()

	if got := p.StepCircularity(CircularityStep); !floatEquals(got, 0.55) {
		t.Errorf("StepCircularity(+) = %v, want 0.55", got)
	}
	if got := p.SetCircularity(3); got != CircularityMax {
		t.Errorf("SetCircularity(3) = %v, want %v", got, CircularityMax)
	}
	if got := p.SetCircularity(-1); got != CircularityMin {
		t.Errorf("SetCircularity(-1) = %v, want %v", got, CircularityMin)
	}

	if p.Mode() != ModeHybrid {
		t.Fatalf("default mode = %v", p.Mode())
	}
	if got := p.CycleMode(); got != ModeBrightCore {
		t.Errorf("CycleMode() = %v, want bright", got)
	}
	p.SetMode(Mode(9))
	if p.Mode() != ModeBrightCore {
		t.Errorf("invalid SetMode changed mode to %v", p.Mode())
	}
}
