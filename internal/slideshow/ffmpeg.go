// Package slideshow turns ordered annotated frames into a fixed-pace
// video and muxes it with a composed soundtrack. Encoding and muxing
// are delegated to an external ffmpeg binary.
package slideshow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpeg runs the external ffmpeg binary for encode and mux
// operations.
type FFmpeg struct {
	Bin string // binary name or path, "ffmpeg" by default
}

func (f *FFmpeg) bin() string {
	if f == nil || f.Bin == "" {
		return "ffmpeg"
	}
	return f.Bin
}

// EncodeJPEGStream encodes a stream of concatenated JPEG frames read
// from r into an H.264 video at the given frame rate.
func (f *FFmpeg) EncodeJPEGStream(ctx context.Context, r io.Reader, fps int, outPath string) error {
	cmd := exec.CommandContext(ctx, f.bin(),
		"-y",
		"-v", "error",
		"-f", "image2pipe",
		"-framerate", strconv.Itoa(fps),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		outPath,
	)
	cmd.Stdin = r

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg encode failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Mux combines a video file and an audio file into outPath, copying
// the video stream and encoding the audio as AAC. The output stops at
// the shorter input.
func (f *FFmpeg) Mux(ctx context.Context, videoPath, audioPath, outPath string) error {
	cmd := exec.CommandContext(ctx, f.bin(),
		"-y",
		"-v", "error",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg mux failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
