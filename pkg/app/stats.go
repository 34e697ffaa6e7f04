package app

import (
	"fmt"
	"io"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// maxSamples bounds the processing-time history kept for the exit summary.
const maxSamples = 1 << 16

// Stats accumulates per-frame processing times.
type Stats struct {
	start   time.Time
	frames  uint64
	samples []float64 // milliseconds
}

// Summary is the end-of-run report.
type Summary struct {
	Frames   uint64
	Elapsed  time.Duration
	AvgFPS   float64
	MeanMS   float64
	StdDevMS float64
	P95MS    float64
}

// NewStats starts the clock at start.
func NewStats(start time.Time) *Stats {
	return &Stats{start: start, samples: make([]float64, 0, 1024)}
}

// Add records one processed frame.
func (s *Stats) Add(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	if len(s.samples) < maxSamples {
		s.samples = append(s.samples, ms)
	} else {
		s.samples[s.frames%maxSamples] = ms
	}
	s.frames++
}

// Frames returns the number of processed frames.
func (s *Stats) Frames() uint64 { return s.frames }

// Summarize computes the report as of now.
func (s *Stats) Summarize(now time.Time) Summary {
	sum := Summary{Frames: s.frames, Elapsed: now.Sub(s.start)}
	if sum.Elapsed > 0 {
		sum.AvgFPS = float64(s.frames) / sum.Elapsed.Seconds()
	}
	if len(s.samples) == 0 {
		return sum
	}

	sum.MeanMS, sum.StdDevMS = stat.MeanStdDev(s.samples, nil)
	if len(s.samples) == 1 {
		sum.StdDevMS = 0
	}
	sorted := slices.Clone(s.samples)
	slices.Sort(sorted)
	sum.P95MS = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return sum
}

// Print writes the report the way the loop prints it at exit.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "\n📊 Run statistics")
	fmt.Fprintf(w, "   Total frames: %d\n", s.Frames)
	fmt.Fprintf(w, "   Total time:   %dms\n", s.Elapsed.Milliseconds())
	fmt.Fprintf(w, "   Average FPS:  %.1f\n", s.AvgFPS)
	if s.Frames > 0 {
		fmt.Fprintf(w, "   Processing:   %.2fms mean, %.2fms stddev, %.2fms p95\n", s.MeanMS, s.StdDevMS, s.P95MS)
	}
}
