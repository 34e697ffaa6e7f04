package detection

import (
	"errors"
	"image"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-beacon/pkg/debug"
)

// ErrEmptyFrame is returned by Analyze for an empty Mat.
var ErrEmptyFrame = errors.New("detection: empty frame")

// Result is the outcome of analyzing one frame.
type Result struct {
	// Annotated is a copy of the input with detections drawn on it.
	// The caller owns it and must Close it.
	Annotated gocv.Mat

	// Candidates are the accepted contours in contour order.
	Candidates []Candidate

	// Best indexes Candidates, or is -1 when nothing was accepted.
	Best int

	// Rejected counts dropped contours by reason.
	Rejected map[Reject]int

	Width, Height int
}

// Target returns the selected candidate, or nil.
func (r *Result) Target() *Candidate {
	if r.Best < 0 || r.Best >= len(r.Candidates) {
		return nil
	}
	return &r.Candidates[r.Best]
}

// Close releases the annotated frame.
func (r *Result) Close() error {
	return r.Annotated.Close()
}

// MaskSet holds copies of the intermediate masks of the last analyzed frame.
type MaskSet struct {
	Color, Bright, Gradient, Combined gocv.Mat
}

// Close releases every mask.
func (m *MaskSet) Close() {
	m.Color.Close()
	m.Bright.Close()
	m.Gradient.Close()
	m.Combined.Close()
}

// Pipeline turns BGR frames into circular target candidates. It reuses its
// working Mats between frames and is not safe for concurrent use.
type Pipeline struct {
	cfg   Config
	trace *debug.Gate

	kernel gocv.Mat

	blurred  gocv.Mat
	hsv      gocv.Mat
	gray     gocv.Mat
	smooth   gocv.Mat
	lap      gocv.Mat
	lapAbs   gocv.Mat
	color    gocv.Mat
	bright   gocv.Mat
	gradient gocv.Mat
	scratch  gocv.Mat
	combined gocv.Mat
	contour  gocv.Mat // post-morphology mask kept for Masks()
}

// NewPipeline allocates a pipeline for cfg. trace may be nil.
func NewPipeline(cfg Config, trace *debug.Gate) *Pipeline {
	if trace == nil {
		trace = debug.NewGate()
	}
	p := &Pipeline{
		cfg:      cfg,
		trace:    trace,
		blurred:  gocv.NewMat(),
		hsv:      gocv.NewMat(),
		gray:     gocv.NewMat(),
		smooth:   gocv.NewMat(),
		lap:      gocv.NewMat(),
		lapAbs:   gocv.NewMat(),
		color:    gocv.NewMat(),
		bright:   gocv.NewMat(),
		gradient: gocv.NewMat(),
		scratch:  gocv.NewMat(),
		combined: gocv.NewMat(),
		contour:  gocv.NewMat(),
	}
	p.kernel = gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(cfg.MorphKernel, cfg.MorphKernel))
	return p
}

// Close releases the pipeline's working Mats.
func (p *Pipeline) Close() {
	for _, m := range []*gocv.Mat{
		&p.kernel, &p.blurred, &p.hsv, &p.gray, &p.smooth, &p.lap, &p.lapAbs,
		&p.color, &p.bright, &p.gradient, &p.scratch, &p.combined, &p.contour,
	} {
		m.Close()
	}
}

// Config returns a copy of the current parameters.
func (p *Pipeline) Config() Config { return p.cfg }

// Mode returns the active combination mode.
func (p *Pipeline) Mode() Mode { return p.cfg.Mode }

// SetMode switches the combination mode. Invalid modes are ignored.
func (p *Pipeline) SetMode(m Mode) {
	if m.valid() {
		p.cfg.Mode = m
	}
}

// CycleMode advances to the next mode and returns it.
func (p *Pipeline) CycleMode() Mode {
	p.cfg.Mode = p.cfg.Mode.Next()
	return p.cfg.Mode
}

// Circularity returns the minimum accepted circularity.
func (p *Pipeline) Circularity() float64 { return p.cfg.Circularity }

// SetCircularity sets the circularity threshold, clamped to
// [CircularityMin, CircularityMax], and returns the applied value.
func (p *Pipeline) SetCircularity(v float64) float64 {
	p.cfg.Circularity = clamp(v, CircularityMin, CircularityMax)
	return p.cfg.Circularity
}

// StepCircularity moves the threshold by delta within its limits.
func (p *Pipeline) StepCircularity(delta float64) float64 {
	return p.SetCircularity(p.cfg.Circularity + delta)
}

// Trace returns the gate controlling per-candidate trace output.
func (p *Pipeline) Trace() *debug.Gate { return p.trace }

// Analyze runs the pipeline on frame with the active mode.
func (p *Pipeline) Analyze(frame gocv.Mat) (Result, error) {
	return p.AnalyzeMode(frame, p.cfg.Mode)
}

// AnalyzeMode runs the pipeline on frame with an explicit mode.
func (p *Pipeline) AnalyzeMode(frame gocv.Mat, mode Mode) (Result, error) {
	if frame.Empty() {
		return Result{Best: -1}, ErrEmptyFrame
	}
	if !mode.valid() {
		mode = ModeHybrid
	}

	p.buildMask(frame, mode)
	p.combined.CopyTo(&p.contour)

	contours := gocv.FindContours(p.combined, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	res := Result{
		Annotated: frame.Clone(),
		Best:      -1,
		Rejected:  make(map[Reject]int),
		Width:     frame.Cols(),
		Height:    frame.Rows(),
	}

	for i := 0; i < contours.Size(); i++ {
		cand, reason := p.cfg.check(measure(contours.At(i)))
		if reason != Accepted {
			res.Rejected[reason]++
			continue
		}
		res.Candidates = append(res.Candidates, cand)
		drawCandidate(&res.Annotated, cand)
		p.trace.Log("✓ candidate #%d radius=%.1f circularity=%.3f area=%.0f center=(%.1f, %.1f)\n",
			len(res.Candidates), cand.Radius, cand.Circularity, cand.Area, cand.X, cand.Y)
	}

	res.Best = p.cfg.Selection.pick(res.Candidates)
	drawCount(&res.Annotated, len(res.Candidates))
	return res, nil
}

// buildMask runs the blur, color, intensity and morphology stages into
// p.combined.
func (p *Pipeline) buildMask(frame gocv.Mat, mode Mode) {
	gocv.GaussianBlur(frame, &p.blurred, image.Pt(5, 5), 1.5, 1.5, gocv.BorderDefault)

	gocv.CvtColor(p.blurred, &p.hsv, gocv.ColorBGRToHSV)
	lo := gocv.NewScalar(p.cfg.GreenLow.H, p.cfg.GreenLow.S, p.cfg.GreenLow.V, 0)
	hi := gocv.NewScalar(p.cfg.GreenHigh.H, p.cfg.GreenHigh.S, p.cfg.GreenHigh.V, 0)
	gocv.InRangeWithScalar(p.hsv, lo, hi, &p.color)

	if mode.needsBright() || mode.needsGradient() {
		gocv.CvtColor(p.blurred, &p.gray, gocv.ColorBGRToGray)
	}
	if mode.needsBright() {
		p.brightCore()
	}
	if mode.needsGradient() {
		p.edges()
	}

	combiners[mode](masks{
		color:    p.color,
		bright:   p.bright,
		gradient: p.gradient,
		scratch:  &p.scratch,
	}, &p.combined)

	gocv.MorphologyEx(p.combined, &p.combined, gocv.MorphClose, p.kernel)
	gocv.MorphologyEx(p.combined, &p.combined, gocv.MorphOpen, p.kernel)
}

// brightCore isolates the saturated center of the light.
func (p *Pipeline) brightCore() {
	gocv.GaussianBlur(p.gray, &p.smooth, image.Pt(3, 3), 0.5, 0.5, gocv.BorderDefault)
	gocv.InRangeWithScalar(p.smooth, gocv.NewScalar(p.cfg.BrightLow, 0, 0, 0), gocv.NewScalar(255, 0, 0, 0), &p.bright)
	gocv.MorphologyEx(p.bright, &p.bright, gocv.MorphClose, p.kernel)
}

// edges marks pixels with a strong Laplacian response.
func (p *Pipeline) edges() {
	gocv.GaussianBlur(p.gray, &p.smooth, image.Pt(3, 3), 0, 0, gocv.BorderDefault)
	gocv.Laplacian(p.smooth, &p.lap, gocv.MatTypeCV16S, 3, 1, 0, gocv.BorderDefault)
	gocv.ConvertScaleAbs(p.lap, &p.lapAbs, 1, 0)
	gocv.InRangeWithScalar(p.lapAbs, gocv.NewScalar(p.cfg.GradientLow, 0, 0, 0), gocv.NewScalar(255, 0, 0, 0), &p.gradient)
}

// measure extracts the geometry the filters need from one contour.
func measure(pv gocv.PointVector) shape {
	s := shape{area: gocv.ContourArea(pv)}
	x, y, r := gocv.MinEnclosingCircle(pv)
	s.cx, s.cy, s.radius = float64(x), float64(y), float64(r)
	s.perimeter = gocv.ArcLength(pv, true)
	s.bounds = gocv.BoundingRect(pv)

	pts := gocv.NewMatFromPointVector(pv, true)
	defer pts.Close()
	m := gocv.Moments(pts, false)
	s.m00, s.m10, s.m01 = m["m00"], m["m10"], m["m01"]
	return s
}

// Masks returns copies of the masks from the last analyzed frame. Masks a
// mode did not compute hold whatever an earlier frame left in them.
func (p *Pipeline) Masks() MaskSet {
	return MaskSet{
		Color:    p.color.Clone(),
		Bright:   p.bright.Clone(),
		Gradient: p.gradient.Clone(),
		Combined: p.contour.Clone(),
	}
}
