package annotate

import (
	"image"
	"image/color"
	"testing"

	"github.com/jkalivoda/moodreel/internal/emotion"
	"github.com/jkalivoda/moodreel/internal/facematch"
)

func grayImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	gray := color.RGBA{128, 128, 128, 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, gray)
		}
	}
	return img
}

func TestRenderDrawsBox(t *testing.T) {
	src := grayImage(200, 200)
	region := facematch.AnnotatedRegion{
		Region:     facematch.Region{X: 50, Y: 50, W: 60, H: 60},
		Emotion:    emotion.Happy,
		Confidence: 68.0,
	}

	out := Render(src, []facematch.AnnotatedRegion{region})

	green := color.RGBA{0, 255, 0, 255}
	// Top edge of the box.
	if got := out.RGBAAt(80, 50); got != green {
		t.Errorf("pixel at top edge = %v, want green", got)
	}
	// Left edge.
	if got := out.RGBAAt(50, 80); got != green {
		t.Errorf("pixel at left edge = %v, want green", got)
	}
	// Inside the box stays untouched.
	if got := out.RGBAAt(80, 80); got != (color.RGBA{128, 128, 128, 255}) {
		t.Errorf("pixel inside box = %v, want gray", got)
	}
}

func TestRenderDoesNotModifySource(t *testing.T) {
	src := grayImage(100, 100)
	region := facematch.AnnotatedRegion{
		Region:  facematch.Region{X: 10, Y: 10, W: 30, H: 30},
		Emotion: emotion.Sad,
	}

	Render(src, []facematch.AnnotatedRegion{region})

	if got := src.RGBAAt(25, 10); got != (color.RGBA{128, 128, 128, 255}) {
		t.Errorf("source pixel = %v, renderer must not mutate its input", got)
	}
}

func TestRenderNoRegions(t *testing.T) {
	src := grayImage(50, 50)
	out := Render(src, nil)

	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			if out.RGBAAt(x, y) != src.RGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d) changed with no regions", x, y)
			}
		}
	}
}

func TestRenderRegionAtImageEdge(t *testing.T) {
	src := grayImage(100, 100)
	region := facematch.AnnotatedRegion{
		Region:  facematch.Region{X: 70, Y: 70, W: 30, H: 30},
		Emotion: emotion.Fear,
	}

	// Label lands outside the image; must not panic.
	out := Render(src, []facematch.AnnotatedRegion{region})
	if out == nil {
		t.Fatal("expected rendered image")
	}
}

func TestLabel(t *testing.T) {
	r := facematch.AnnotatedRegion{Emotion: emotion.Surprise, Confidence: 42.349}
	if got, want := Label(r), "surprise (42.3%)"; got != want {
		t.Errorf("Label = %q, want %q", got, want)
	}
}
