package backend

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	pigo "github.com/esimov/pigo/core"

	"github.com/jkalivoda/moodreel/internal/facematch"
)

// PigoParams tunes the pigo cascade detector.
type PigoParams struct {
	MinSize          int
	MaxSize          int
	ShiftFactor      float64
	ScaleFactor      float64
	QualityThreshold float32
}

// DefaultPigoParams returns detector parameters that work well for
// group photos.
func DefaultPigoParams() PigoParams {
	return PigoParams{
		MinSize:          40,
		MaxSize:          1000,
		ShiftFactor:      0.1,
		ScaleFactor:      1.1,
		QualityThreshold: 5.0,
	}
}

// PigoLocalizer detects faces locally with the pigo cascade
// classifier, avoiding the HTTP round trip when no detection service
// is configured. It only implements facematch.Localizer; verification
// and classification still need the HTTP service.
type PigoLocalizer struct {
	classifier *pigo.Pigo
	params     PigoParams
}

// NewPigoLocalizer loads a pigo cascade file (the stock facefinder
// cascade works fine).
func NewPigoLocalizer(cascadePath string, params PigoParams) (*PigoLocalizer, error) {
	cascade, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("could not read pigo cascade: %w", err)
	}
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("could not unpack pigo cascade: %w", err)
	}
	return &PigoLocalizer{classifier: classifier, params: params}, nil
}

// Localize decodes the image and runs the cascade over its grayscale
// pixels. Detection is compute-bound and cannot be preempted; callers
// racing a deadline discard the result instead.
func (p *PigoLocalizer) Localize(ctx context.Context, img []byte) ([]facematch.Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decoded, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("could not decode image: %w", err)
	}

	bounds := decoded.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pixels := grayscale(decoded)

	dets := p.classifier.RunCascade(pigo.CascadeParams{
		MinSize:     p.params.MinSize,
		MaxSize:     p.params.MaxSize,
		ShiftFactor: p.params.ShiftFactor,
		ScaleFactor: p.params.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   height,
			Cols:   width,
			Dim:    width,
		},
	}, 0.0)
	dets = p.classifier.ClusterDetections(dets, 0.2)

	regions := make([]facematch.Region, 0, len(dets))
	for _, det := range dets {
		if det.Q <= p.params.QualityThreshold {
			continue
		}
		regions = append(regions, facematch.Region{
			X: det.Col - det.Scale/2,
			Y: det.Row - det.Scale/2,
			W: det.Scale,
			H: det.Scale,
		})
	}
	return regions, nil
}

// grayscale converts an image to the flat luminance buffer pigo
// expects.
func grayscale(img image.Image) []uint8 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	pixels := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			pixels[y*width+x] = uint8((r*299 + g*587 + b*114) / 1000 / 256)
		}
	}
	return pixels
}
