package detection

import (
	"image"
	"math"
)

// Candidate is one contour that passed every filter.
type Candidate struct {
	X, Y        float64 // minimum enclosing circle center
	Radius      float64
	Area        float64
	Perimeter   float64
	Circularity float64
	Aspect      float64 // bounding box width / height
	CentroidX   float64
	CentroidY   float64
	Bounds      image.Rectangle
}

// Center returns the enclosing circle center rounded to pixels.
func (c Candidate) Center() image.Point {
	return image.Pt(int(math.Round(c.X)), int(math.Round(c.Y)))
}

// Reject explains why a contour was dropped.
type Reject int

const (
	Accepted Reject = iota
	RejectArea
	RejectRadius
	RejectCircularity
	RejectAspect
	RejectDegenerate // zero zeroth moment
)

func (r Reject) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectArea:
		return "area"
	case RejectRadius:
		return "radius"
	case RejectCircularity:
		return "circularity"
	case RejectAspect:
		return "aspect"
	case RejectDegenerate:
		return "degenerate"
	default:
		return "unknown"
	}
}

// shape is the measured geometry of one contour.
type shape struct {
	area      float64
	cx, cy    float64 // enclosing circle
	radius    float64
	perimeter float64
	bounds    image.Rectangle
	m00       float64
	m10, m01  float64
}

// Circularity returns 4π·area/perimeter², or 0 for a zero perimeter.
func Circularity(area, perimeter float64) float64 {
	if perimeter <= 0 {
		return 0
	}
	return 4 * math.Pi * area / (perimeter * perimeter)
}

// check applies the filters in order, cheapest first.
func (c *Config) check(s shape) (Candidate, Reject) {
	if s.area < c.MinArea || s.area > c.MaxArea {
		return Candidate{}, RejectArea
	}
	if s.radius < c.MinRadius || s.radius > c.MaxRadius {
		return Candidate{}, RejectRadius
	}
	circ := Circularity(s.area, s.perimeter)
	if circ == 0 || circ < c.Circularity {
		return Candidate{}, RejectCircularity
	}
	if s.bounds.Dy() == 0 {
		return Candidate{}, RejectAspect
	}
	aspect := float64(s.bounds.Dx()) / float64(s.bounds.Dy())
	if aspect < c.MinAspect || aspect > c.MaxAspect {
		return Candidate{}, RejectAspect
	}
	if s.m00 == 0 {
		return Candidate{}, RejectDegenerate
	}

	return Candidate{
		X:           s.cx,
		Y:           s.cy,
		Radius:      s.radius,
		Area:        s.area,
		Perimeter:   s.perimeter,
		Circularity: circ,
		Aspect:      aspect,
		CentroidX:   s.m10 / s.m00,
		CentroidY:   s.m01 / s.m00,
		Bounds:      s.bounds,
	}, Accepted
}
