package detection

import (
	"encoding/json"
	"image"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

// roundShape is a well-formed measurement of a radius-r disk centered at (cx, cy).
func roundShape(cx, cy, r float64) shape {
	area := math.Pi * r * r
	ri := int(r)
	return shape{
		area:      area,
		cx:        cx,
		cy:        cy,
		radius:    r,
		perimeter: 2 * math.Pi * r * 1.05,
		bounds:    image.Rect(int(cx)-ri, int(cy)-ri, int(cx)+ri, int(cy)+ri),
		m00:       area,
		m10:       area * cx,
		m01:       area * cy,
	}
}

func TestCheck_AcceptsRoundShape(t *testing.T) {
	cfg := DefaultConfig()

	cand, reason := cfg.check(roundShape(100, 50, 10))
	if reason != Accepted {
		t.Fatalf("check() = %v, want accepted", reason)
	}
	if !floatEquals(cand.X, 100) || !floatEquals(cand.Y, 50) {
		t.Errorf("center = (%v, %v), want (100, 50)", cand.X, cand.Y)
	}
	if !floatEquals(cand.CentroidX, 100) || !floatEquals(cand.CentroidY, 50) {
		t.Errorf("centroid = (%v, %v), want (100, 50)", cand.CentroidX, cand.CentroidY)
	}
	if cand.Circularity < 0.9 || cand.Circularity > 1 {
		t.Errorf("circularity = %v, want ~0.907", cand.Circularity)
	}
	if !floatEquals(cand.Aspect, 1) {
		t.Errorf("aspect = %v, want 1", cand.Aspect)
	}
}

func TestCheck_RejectReasons(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name   string
		mutate func(s *shape)
		want   Reject
	}{
		{"too small", func(s *shape) { s.area = 19 }, RejectArea},
		{"too large", func(s *shape) { s.area = 5001 }, RejectArea},
		{"radius small", func(s *shape) { s.radius = 2.9 }, RejectRadius},
		{"radius large", func(s *shape) { s.radius = 81 }, RejectRadius},
		{"zero perimeter", func(s *shape) { s.perimeter = 0 }, RejectCircularity},
		{"jagged", func(s *shape) { s.perimeter *= 2 }, RejectCircularity},
		{"wide", func(s *shape) { s.bounds = image.Rect(0, 0, 30, 20) }, RejectAspect},
		{"tall", func(s *shape) { s.bounds = image.Rect(0, 0, 20, 30) }, RejectAspect},
		{"flat", func(s *shape) { s.bounds = image.Rect(0, 0, 20, 0) }, RejectAspect},
		{"degenerate", func(s *shape) { s.m00 = 0 }, RejectDegenerate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := roundShape(100, 100, 10)
			tc.mutate(&s)
			if _, got := cfg.check(s); got != tc.want {
				t.Errorf("check() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCheck_OrderCheapestFirst(t *testing.T) {
	cfg := DefaultConfig()
	s := roundShape(0, 0, 10)
	s.area = 1
	s.radius = 500
	s.perimeter = 0
	s.m00 = 0

	if _, got := cfg.check(s); got != RejectArea {
		t.Errorf("check() = %v, want area to be reported first", got)
	}
}

func TestCircularity(t *testing.T) {
	r := 12.0
	if got := Circularity(math.Pi*r*r, 2*math.Pi*r); !floatEquals(got, 1) {
		t.Errorf("perfect circle circularity = %v, want 1", got)
	}
	if got := Circularity(100, 40); !floatEquals(got, math.Pi/4) {
		t.Errorf("square circularity = %v, want π/4", got)
	}
	if got := Circularity(100, 0); got != 0 {
		t.Errorf("zero perimeter circularity = %v, want 0", got)
	}
}

func TestMeasure_ContourMoments(t *testing.T) {
	square := []image.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	reversed := []image.Point{{0, 10}, {10, 10}, {10, 0}, {0, 0}}

	for name, pts := range map[string][]image.Point{"ccw": square, "cw": reversed} {
		pv := gocv.NewPointVectorFromPoints(pts)
		s := measure(pv)
		pv.Close()

		if math.Abs(s.m00-100) > 1e-6 {
			t.Errorf("%s: m00 = %v, want 100", name, s.m00)
		}
		if math.Abs(s.m10/s.m00-5) > 1e-6 || math.Abs(s.m01/s.m00-5) > 1e-6 {
			t.Errorf("%s: centroid = (%v, %v), want (5, 5)", name, s.m10/s.m00, s.m01/s.m00)
		}
	}

	pv := gocv.NewPointVectorFromPoints([]image.Point{{0, 0}, {5, 5}, {10, 10}})
	defer pv.Close()
	if s := measure(pv); s.m00 != 0 {
		t.Errorf("collinear m00 = %v, want 0", s.m00)
	}
}

func TestSelection_Pick(t *testing.T) {
	cands := []Candidate{
		{X: 1, Circularity: 0.7},
		{X: 2, Circularity: 0.9},
		{X: 3, Circularity: 0.9},
		{X: 4, Circularity: 0.6},
	}

	if got := SelectMostCircular.pick(cands); got != 1 {
		t.Errorf("most circular pick = %d, want 1 (earliest of the tie)", got)
	}
	if got := SelectLast.pick(cands); got != 3 {
		t.Errorf("last pick = %d, want 3", got)
	}
	if got := SelectMostCircular.pick(nil); got != -1 {
		t.Errorf("empty pick = %d, want -1", got)
	}
	if got := SelectLast.pick(nil); got != -1 {
		t.Errorf("empty last pick = %d, want -1", got)
	}
}

func TestMode_NextCycles(t *testing.T) {
	m := ModeBrightCore
	want := []Mode{ModeGradient, ModeHybrid, ModeBrightCore, ModeGradient}
	for i, w := range want {
		m = m.Next()
		if m != w {
			t.Fatalf("step %d: Next() = %v, want %v", i, m, w)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"bright", ModeBrightCore, false},
		{"Gradient", ModeGradient, false},
		{" hybrid ", ModeHybrid, false},
		{"0", ModeBrightCore, false},
		{"2", ModeHybrid, false},
		{"3", 0, true},
		{"laser", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseMode(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestConfig_JSONOverlay(t *testing.T) {
	cfg := DefaultConfig()
	if err := json.Unmarshal([]byte(`{"mode": "gradient", "selection": "last", "circularity": 0.7}`), &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Mode != ModeGradient || cfg.Selection != SelectLast || !floatEquals(cfg.Circularity, 0.7) {
		t.Errorf("overlay = %+v", cfg)
	}
	if cfg.MinArea != 20 {
		t.Errorf("untouched field changed: MinArea = %v", cfg.MinArea)
	}

	if err := json.Unmarshal([]byte(`{"mode": 1}`), &cfg); err != nil || cfg.Mode != ModeGradient {
		t.Errorf("numeric mode: mode = %v, err = %v", cfg.Mode, err)
	}
	if err := json.Unmarshal([]byte(`{"selection": "first"}`), &cfg); err == nil {
		t.Error("unknown selection should fail")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("DefaultConfig().Validate() = %v", errs)
	}

	bad := DefaultConfig()
	bad.MinArea = 6000
	bad.Circularity = 0
	bad.MorphKernel = 4
	bad.Mode = Mode(7)
	if errs := bad.Validate(); len(errs) != 4 {
		t.Errorf("Validate() = %v, want 4 problems", errs)
	}
}

func TestBoxFor_ClipsToFrame(t *testing.T) {
	c := Candidate{X: 5, Y: 5, Radius: 10}
	box := boxFor(c, 640, 480)
	if box.Min.X != 0 || box.Min.Y != 0 || box.Max.X != 20 || box.Max.Y != 20 {
		t.Errorf("boxFor() = %v, want (0,0)-(20,20)", box)
	}

	far := boxFor(Candidate{X: 635, Y: 475, Radius: 10}, 640, 480)
	if far.Max.X != 639 || far.Max.Y != 479 {
		t.Errorf("boxFor() = %v, want max clipped to (639,479)", far)
	}
}

func TestLabel(t *testing.T) {
	if got := Label(Candidate{Radius: 12.7, Circularity: 0.876}); got != "R:12 C:87%" {
		t.Errorf("Label() = %q", got)
	}
}
