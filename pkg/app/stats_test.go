package app

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"
)

func TestStats_Summarize(t *testing.T) {
	start := time.Unix(0, 0)
	s := NewStats(start)

	for _, ms := range []int{10, 10, 20, 20} {
		s.Add(time.Duration(ms) * time.Millisecond)
	}

	sum := s.Summarize(start.Add(2 * time.Second))
	if sum.Frames != 4 {
		t.Errorf("Frames = %d, want 4", sum.Frames)
	}
	if math.Abs(sum.AvgFPS-2) > 1e-9 {
		t.Errorf("AvgFPS = %v, want 2", sum.AvgFPS)
	}
	if math.Abs(sum.MeanMS-15) > 1e-9 {
		t.Errorf("MeanMS = %v, want 15", sum.MeanMS)
	}
	// sample stddev of {10,10,20,20}
	if want := math.Sqrt(100.0 / 3); math.Abs(sum.StdDevMS-want) > 1e-9 {
		t.Errorf("StdDevMS = %v, want %v", sum.StdDevMS, want)
	}
	if sum.P95MS != 20 {
		t.Errorf("P95MS = %v, want 20", sum.P95MS)
	}
}

func TestStats_EmptyAndSingle(t *testing.T) {
	start := time.Now()
	s := NewStats(start)

	if sum := s.Summarize(start); sum.Frames != 0 || sum.AvgFPS != 0 || sum.MeanMS != 0 {
		t.Errorf("empty summary = %+v", sum)
	}

	s.Add(5 * time.Millisecond)
	sum := s.Summarize(start.Add(time.Second))
	if sum.StdDevMS != 0 || sum.MeanMS != 5 {
		t.Errorf("single-sample summary = %+v", sum)
	}
}

func TestStats_BoundedHistory(t *testing.T) {
	s := NewStats(time.Now())
	for i := 0; i < maxSamples+10; i++ {
		s.Add(time.Millisecond)
	}
	if len(s.samples) != maxSamples {
		t.Errorf("samples = %d, want %d", len(s.samples), maxSamples)
	}
	if s.Frames() != maxSamples+10 {
		t.Errorf("Frames = %d", s.Frames())
	}
}

func TestSummary_Print(t *testing.T) {
	var buf bytes.Buffer
	Summary{Frames: 30, Elapsed: time.Second, AvgFPS: 30, MeanMS: 4.2}.Print(&buf)

	for _, want := range []string{"Total frames: 30", "Total time:   1000ms", "Average FPS:  30.0", "4.20ms mean"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}
