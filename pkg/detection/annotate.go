package detection

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	boxColor    = color.RGBA{R: 0, G: 0, B: 255, A: 0}
	rayColor    = color.RGBA{R: 255, G: 100, B: 0, A: 0}
	centerColor = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	dotColor    = color.RGBA{R: 255, G: 255, B: 0, A: 0}
	labelColor  = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	countColor  = color.RGBA{R: 0, G: 255, B: 0, A: 0}
)

// boxFor returns the square marker around c, 1.5 radii from the center on
// each side, clipped to a w×h frame.
func boxFor(c Candidate, w, h int) image.Rectangle {
	half := int(c.Radius * 1.5)
	cx, cy := int(c.X), int(c.Y)
	r := image.Rect(cx-half, cy-half, cx+half, cy+half)
	return r.Intersect(image.Rect(0, 0, w-1, h-1))
}

// Label is the text drawn above a candidate: radius and circularity percent.
func Label(c Candidate) string {
	return fmt.Sprintf("R:%d C:%d%%", int(c.Radius), int(c.Circularity*100))
}

func drawCandidate(img *gocv.Mat, c Candidate) {
	box := boxFor(c, img.Cols(), img.Rows())
	center := c.Center()

	gocv.Rectangle(img, box, boxColor, 2)
	for _, corner := range []image.Point{
		box.Min,
		{X: box.Max.X, Y: box.Min.Y},
		{X: box.Min.X, Y: box.Max.Y},
		box.Max,
	} {
		gocv.Line(img, center, corner, rayColor, 1)
	}
	gocv.Circle(img, center, 3, centerColor, -1)

	textY := box.Min.Y - 10
	if textY < 0 {
		textY = 0
	}
	gocv.PutText(img, Label(c), image.Pt(box.Min.X, textY), gocv.FontHersheySimplex, 0.5, labelColor, 1)
	gocv.Circle(img, center, 1, dotColor, -1)
}

func drawCount(img *gocv.Mat, n int) {
	text := fmt.Sprintf("Detected %d green light(s)", n)
	gocv.PutText(img, text, image.Pt(10, img.Rows()-50), gocv.FontHersheySimplex, 0.7, countColor, 2)
}
