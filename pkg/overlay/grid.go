// Package overlay draws the reference grid and the status HUD on display
// frames. Geometry is computed separately from drawing so it can be tested
// without OpenCV.
package overlay

import (
	"image"
	"image/color"
	"strconv"
)

// Grid geometry in pixels
const (
	GridSpacing = 50
	DashLength  = 10
	GapLength   = 5
)

var (
	gridColor   = color.RGBA{R: 0, G: 255, B: 255, A: 0}
	centerColor = color.RGBA{R: 255, G: 255, B: 0, A: 0}
	white       = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	red         = color.RGBA{R: 255, G: 0, B: 0, A: 0}
)

// Segment is one straight line to draw.
type Segment struct {
	From, To  image.Point
	Color     color.RGBA
	Thickness int
}

// Text is one string to draw with its baseline origin.
type Text struct {
	Value string
	At    image.Point
	Scale float64
	Color color.RGBA
	Bold  bool
}

// Grid is the full reference overlay for one frame size.
type Grid struct {
	Dashes []Segment
	Axes   []Segment
	Labels []Text
	Center image.Point
}

// NewGrid computes the dashed grid for a w×h frame. Grid lines sit every
// GridSpacing pixels out from the center; the center lines are solid.
func NewGrid(w, h int) Grid {
	cx, cy := w/2, h/2
	g := Grid{Center: image.Pt(cx, cy)}

	for _, x := range offsets(cx, w) {
		for y := 0; y < h; y += DashLength + GapLength {
			g.Dashes = append(g.Dashes, Segment{image.Pt(x, y), image.Pt(x, min(y+DashLength, h)), gridColor, 1})
		}
		g.Labels = append(g.Labels, Text{strconv.Itoa(x - cx), image.Pt(x, cy-15), 0.4, gridColor, false})
	}
	for _, y := range offsets(cy, h) {
		for x := 0; x < w; x += DashLength + GapLength {
			g.Dashes = append(g.Dashes, Segment{image.Pt(x, y), image.Pt(min(x+DashLength, w), y), gridColor, 1})
		}
		g.Labels = append(g.Labels, Text{strconv.Itoa(y - cy), image.Pt(cx+10, y+5), 0.4, gridColor, false})
	}

	g.Axes = []Segment{
		{image.Pt(0, cy), image.Pt(w, cy), centerColor, 2},
		{image.Pt(cx, 0), image.Pt(cx, h), centerColor, 2},
	}
	g.Labels = append(g.Labels,
		Text{"Center: (" + strconv.Itoa(cx) + ", " + strconv.Itoa(cy) + ")", image.Pt(10, h-10), 0.5, white, false},
		Text{"Grid: " + strconv.Itoa(GridSpacing) + "px spacing", image.Pt(10, h-30), 0.5, white, false},
		Text{"X", image.Pt(w-40, cy-20), 0.5, gridColor, false},
		Text{"Y", image.Pt(cx+10, 20), 0.5, gridColor, false},
	)
	return g
}

// offsets returns the grid line positions on one axis of length n with
// center c, right/down side first.
func offsets(c, n int) []int {
	var out []int
	for v := c + GridSpacing; v < n; v += GridSpacing {
		out = append(out, v)
	}
	for v := c - GridSpacing; v >= 0; v -= GridSpacing {
		out = append(out, v)
	}
	return out
}
