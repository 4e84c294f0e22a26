// Package annotate renders verified face regions onto photos: a green
// bounding box with the emotion label and confidence drawn next to it.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/jkalivoda/moodreel/internal/facematch"
)

const lineWidth = 2

var (
	boxColor  = color.RGBA{0, 255, 0, 255}
	textBack  = color.RGBA{255, 255, 255, 255}
	labelFont = basicfont.Face7x13
)

// Render returns a copy of the photo with every annotated region drawn
// onto it. The source image is never modified.
func Render(img image.Image, regions []facematch.AnnotatedRegion) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)

	for _, r := range regions {
		drawRegion(dst, r)
	}
	return dst
}

// Label formats the text drawn next to a region.
func Label(r facematch.AnnotatedRegion) string {
	return fmt.Sprintf("%s (%.1f%%)", r.Emotion, r.Confidence)
}

func drawRegion(dst *image.RGBA, r facematch.AnnotatedRegion) {
	x1 := r.Region.X
	y1 := r.Region.Y
	x2 := r.Region.X + r.Region.W
	y2 := r.Region.Y + r.Region.H

	for w := 0; w < lineWidth; w++ {
		drawHLine(dst, x1, x2, y1+w, boxColor)
		drawHLine(dst, x1, x2, y2-w, boxColor)
		drawVLine(dst, y1, y2, x1+w, boxColor)
		drawVLine(dst, y1, y2, x2-w, boxColor)
	}

	drawLabel(dst, Label(r), x2+10, y1+r.Region.H/2)
}

// drawLabel draws text over a white background block so it stays
// readable on busy photos. Text that would land outside the image is
// clipped by the underlying draw calls.
func drawLabel(dst *image.RGBA, text string, x, y int) {
	width := font.MeasureString(labelFont, text).Ceil()
	ascent := labelFont.Metrics().Ascent.Ceil()
	descent := labelFont.Metrics().Descent.Ceil()

	back := image.Rect(x-2, y-ascent-2, x+width+2, y+descent+2)
	draw.Draw(dst, back.Intersect(dst.Bounds()), &image.Uniform{textBack}, image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  dst,
		Src:  &image.Uniform{boxColor},
		Face: labelFont,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// drawHLine draws a horizontal line clipped to the image bounds.
func drawHLine(dst *image.RGBA, x1, x2, y int, c color.RGBA) {
	bounds := dst.Bounds()
	if y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	for x := x1; x <= x2; x++ {
		if x >= bounds.Min.X && x < bounds.Max.X {
			dst.Set(x, y, c)
		}
	}
}

// drawVLine draws a vertical line clipped to the image bounds.
func drawVLine(dst *image.RGBA, y1, y2, x int, c color.RGBA) {
	bounds := dst.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X {
		return
	}
	for y := y1; y <= y2; y++ {
		if y >= bounds.Min.Y && y < bounds.Max.Y {
			dst.Set(x, y, c)
		}
	}
}
