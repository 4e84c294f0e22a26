package slideshow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"math"

	"golang.org/x/image/draw"
)

// ErrNoFrames is returned when assembly is attempted without frames.
var ErrNoFrames = errors.New("no frames to assemble")

// Options configure frame pacing.
type Options struct {
	FPS         int     // output frame rate
	HoldSeconds float64 // on-screen time per photo
}

func (o Options) fillDefaults() Options {
	if o.FPS <= 0 {
		o.FPS = 2
	}
	if o.HoldSeconds <= 0 {
		o.HoldSeconds = 3
	}
	return o
}

// Duration returns the total video duration in seconds for a frame
// count.
func (o Options) Duration(frames int) float64 {
	o = o.fillDefaults()
	repeats := int(math.Round(float64(o.FPS) * o.HoldSeconds))
	return float64(frames*repeats) / float64(o.FPS)
}

// Assembler builds slideshow videos through an FFmpeg runner.
type Assembler struct {
	FFmpeg *FFmpeg
	Opts   Options
}

// Assemble encodes the ordered frames into a silent video at outPath.
// Every frame is held on screen by writing it round(fps*holdSeconds)
// times. Frames whose dimensions differ from the first frame are
// resized to it; validation-instead-of-resize would reject inputs the
// rest of the pipeline accepts, since candidate photos come in mixed
// sizes. A failure here is fatal for the run.
func (a *Assembler) Assemble(ctx context.Context, frames []image.Image, outPath string) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	opts := a.Opts.fillDefaults()

	target := frames[0].Bounds()
	// libx264 with yuv420p needs even dimensions.
	targetW := target.Dx() &^ 1
	targetH := target.Dy() &^ 1
	if targetW == 0 || targetH == 0 {
		return fmt.Errorf("first frame too small: %dx%d", target.Dx(), target.Dy())
	}

	repeats := int(math.Round(float64(opts.FPS) * opts.HoldSeconds))
	if repeats < 1 {
		repeats = 1
	}

	pr, pw := io.Pipe()
	writeErr := make(chan error, 1)
	go func() {
		writeErr <- writeFrames(pw, frames, targetW, targetH, repeats)
	}()

	encodeErr := a.FFmpeg.EncodeJPEGStream(ctx, pr, opts.FPS, outPath)
	// Unblock the writer if encoding stopped early.
	pr.CloseWithError(encodeErr)

	if encodeErr != nil {
		<-writeErr
		return encodeErr
	}
	if err := <-writeErr; err != nil {
		return fmt.Errorf("could not stream frames: %w", err)
	}
	return nil
}

// writeFrames encodes each frame once and writes the JPEG bytes
// repeatedly into the pipe feeding ffmpeg.
func writeFrames(pw *io.PipeWriter, frames []image.Image, w, h, repeats int) error {
	defer pw.Close()

	for _, frame := range frames {
		resized := resizeTo(frame, w, h)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 92}); err != nil {
			return err
		}
		for i := 0; i < repeats; i++ {
			if _, err := pw.Write(buf.Bytes()); err != nil {
				return err
			}
		}
	}
	return nil
}

// resizeTo scales an image to exactly w x h, skipping the copy when it
// already fits.
func resizeTo(img image.Image, w, h int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() == w && bounds.Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// Mux attaches the soundtrack to an assembled video. Callers treat a
// mux failure as recoverable: the silent video is still a valid
// deliverable.
func (a *Assembler) Mux(ctx context.Context, videoPath, audioPath, outPath string) error {
	return a.FFmpeg.Mux(ctx, videoPath, audioPath, outPath)
}
