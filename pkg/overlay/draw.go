package overlay

import (
	"gocv.io/x/gocv"
)

// DrawGrid renders the reference grid onto img.
func DrawGrid(img *gocv.Mat) {
	g := NewGrid(img.Cols(), img.Rows())
	drawSegments(img, g.Dashes)
	drawSegments(img, g.Axes)
	gocv.Circle(img, g.Center, 8, centerColor, 2)
	gocv.Circle(img, g.Center, 4, red, -1)
	drawTexts(img, g.Labels)
}

// DrawHUD renders h onto img.
func DrawHUD(img *gocv.Mat, h HUD) {
	drawTexts(img, h.Lines(img.Cols()))
}

func drawSegments(img *gocv.Mat, segs []Segment) {
	for _, s := range segs {
		gocv.Line(img, s.From, s.To, s.Color, s.Thickness)
	}
}

func drawTexts(img *gocv.Mat, texts []Text) {
	for _, t := range texts {
		thickness := 1
		if t.Bold {
			thickness = 2
		}
		gocv.PutText(img, t.Value, t.At, gocv.FontHersheySimplex, t.Scale, t.Color, thickness)
	}
}
