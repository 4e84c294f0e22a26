package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/png"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"

	"github.com/jkalivoda/moodreel/internal/annotate"
	"github.com/jkalivoda/moodreel/internal/backend"
	"github.com/jkalivoda/moodreel/internal/compose"
	"github.com/jkalivoda/moodreel/internal/config"
	"github.com/jkalivoda/moodreel/internal/emotion"
	"github.com/jkalivoda/moodreel/internal/facematch"
	"github.com/jkalivoda/moodreel/internal/scheduler"
	"github.com/jkalivoda/moodreel/internal/slideshow"
)

var (
	// ErrEmptyCandidateSet is returned when no candidate photos load.
	ErrEmptyCandidateSet = errors.New("candidate set is empty")
	// ErrUndecodableImage wraps decode failures on input photos.
	ErrUndecodableImage = errors.New("could not decode image")
)

// Runner wires the matching, composition and slideshow stages into one
// end to end run.
type Runner struct {
	cfg        *config.Config
	localizer  facematch.Localizer
	verifier   facematch.Verifier
	classifier facematch.Classifier
	cache      *facematch.Cache
	assembler  *slideshow.Assembler
	log        *logrus.Logger
}

// NewRunner builds a runner from configuration. Face verification and
// emotion classification always go through the HTTP backend; face
// localization runs locally when a pigo cascade is configured.
func NewRunner(cfg *config.Config, log *logrus.Logger) (*Runner, error) {
	if log == nil {
		log = logrus.New()
	}
	svc := backend.NewService(cfg.Backend.URL)

	var localizer facematch.Localizer = svc
	if cfg.Backend.PigoCascade != "" {
		pl, err := backend.NewPigoLocalizer(cfg.Backend.PigoCascade, backend.DefaultPigoParams())
		if err != nil {
			return nil, fmt.Errorf("could not load pigo cascade: %w", err)
		}
		localizer = pl
	}

	return &Runner{
		cfg:        cfg,
		localizer:  localizer,
		verifier:   svc,
		classifier: svc,
		cache:      facematch.NewCache(32),
		assembler: &slideshow.Assembler{
			FFmpeg: &slideshow.FFmpeg{Bin: cfg.FFmpeg.Bin},
			Opts: slideshow.Options{
				FPS:         cfg.Slideshow.FPS,
				HoldSeconds: cfg.Slideshow.HoldSeconds,
			},
		},
		log: log,
	}, nil
}

// RunMatching loads the inputs and evaluates every candidate photo
// against the reference set. Unreadable or undecodable inputs are
// fatal. The returned diagnostics carry the recoverable failures and
// should be reused for the slideshow stage.
func (r *Runner) RunMatching(ctx context.Context, refPaths, photoPaths []string) ([]facematch.AnnotatedPhoto, *Diagnostics, error) {
	refs, err := loadReferences(refPaths)
	if err != nil {
		return nil, nil, err
	}
	if len(refs) == 0 {
		return nil, nil, facematch.ErrEmptyReferenceSet
	}

	photos, err := loadPhotos(photoPaths)
	if err != nil {
		return nil, nil, err
	}
	if len(photos) == 0 {
		return nil, nil, ErrEmptyCandidateSet
	}

	diag := NewDiagnostics()
	matcher := facematch.NewMatcher(
		r.localizer, r.verifier, r.classifier,
		facematch.ModelParams{
			Model:           r.cfg.Matching.Model,
			Metric:          r.cfg.Matching.Metric,
			Threshold:       r.cfg.Matching.Threshold,
			RequiredMatches: r.cfg.Matching.RequiredMatches,
		},
		r.cache, diag, r.log,
	)

	r.log.WithFields(logrus.Fields{
		"references": len(refs),
		"candidates": len(photos),
	}).Info("matching started")

	matched, err := scheduler.Run(ctx, photos, refs, matcher, scheduler.Options{
		BatchSize:      r.cfg.Scheduler.BatchSize,
		WorkerCount:    r.cfg.Scheduler.Workers,
		PerItemTimeout: r.cfg.Scheduler.ItemTimeout,
		BatchDelay:     r.cfg.Scheduler.BatchDelay,
		ShowProgress:   true,
		Recorder:       diag,
		Log:            r.log,
	})
	if err != nil {
		return nil, diag, err
	}

	r.log.WithField("matched", len(matched)).Info("matching finished")
	return matched, diag, nil
}

// ComposeSoundtrack aggregates one emotion vote per matched photo and
// synthesizes a soundtrack long enough to cover the slideshow.
func (r *Runner) ComposeSoundtrack(matched []facematch.AnnotatedPhoto) (compose.Waveform, emotion.Label, emotion.Tally) {
	votes := make([]emotion.Label, len(matched))
	for i, p := range matched {
		votes[i] = p.Vote()
	}
	dominant, tally := emotion.Aggregate(votes)

	duration := r.assembler.Opts.Duration(len(matched))
	wave := compose.Compose(dominant, secondsToDuration(duration))

	r.log.WithFields(logrus.Fields{
		"emotion":  dominant,
		"duration": wave.Duration(),
	}).Info("soundtrack composed")
	return wave, dominant, tally
}

// BuildSlideshow writes the annotated photos, assembles the silent
// video and muxes in the soundtrack. A mux failure degrades to the
// silent video with the soundtrack kept beside it; an assembly failure
// is fatal.
func (r *Runner) BuildSlideshow(ctx context.Context, matched []facematch.AnnotatedPhoto, wave compose.Waveform, outDir string, diag *Diagnostics) (string, error) {
	if len(matched) == 0 {
		return "", slideshow.ErrNoFrames
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("could not create output directory: %w", err)
	}

	frames := make([]image.Image, len(matched))
	for i, p := range matched {
		frame := annotate.Render(p.Photo.Image, p.Regions)
		frames[i] = frame
		if err := writeMarked(outDir, p.Photo.ID, frame); err != nil {
			return "", err
		}
	}

	silentPath := filepath.Join(outDir, "slideshow_"+uuid.NewString()+".mp4")
	if err := r.assembler.Assemble(ctx, frames, silentPath); err != nil {
		os.Remove(silentPath)
		return "", fmt.Errorf("could not assemble slideshow: %w", err)
	}

	wavPath := filepath.Join(outDir, "soundtrack.wav")
	if err := wave.WriteWAV(wavPath); err != nil {
		os.Remove(silentPath)
		return "", fmt.Errorf("could not write soundtrack: %w", err)
	}

	finalPath := filepath.Join(outDir, "slideshow.mp4")
	if err := r.assembler.Mux(ctx, silentPath, wavPath, finalPath); err != nil {
		// The silent video is still a valid deliverable. Keep the
		// soundtrack next to it so the user can mux by hand.
		diag.Record(facematch.StageMux, "slideshow")
		r.log.WithError(err).Warn("mux failed, delivering silent video")
		if err := os.Rename(silentPath, finalPath); err != nil {
			return "", fmt.Errorf("could not deliver silent video: %w", err)
		}
		return finalPath, nil
	}

	os.Remove(silentPath)
	os.Remove(wavPath)
	return finalPath, nil
}

// WriteMarkedPhotos renders and saves the annotated copy of every
// matched photo, returning the written paths in photo order.
func WriteMarkedPhotos(outDir string, matched []facematch.AnnotatedPhoto) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create output directory: %w", err)
	}
	paths := make([]string, 0, len(matched))
	for _, p := range matched {
		frame := annotate.Render(p.Photo.Image, p.Regions)
		if err := writeMarked(outDir, p.Photo.ID, frame); err != nil {
			return nil, err
		}
		paths = append(paths, markedPath(outDir, p.Photo.ID))
	}
	return paths, nil
}

func markedPath(outDir, photoID string) string {
	base := strings.TrimSuffix(photoID, filepath.Ext(photoID))
	return filepath.Join(outDir, "marked_"+base+".jpg")
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// writeMarked saves an annotated copy of a photo as marked_<id>.jpg.
func writeMarked(outDir, photoID string, frame image.Image) error {
	path := markedPath(outDir, photoID)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, frame, &jpeg.Options{Quality: 92}); err != nil {
		return fmt.Errorf("could not encode %s: %w", path, err)
	}
	return nil
}

func loadPhotos(paths []string) ([]facematch.Photo, error) {
	photos := make([]facematch.Photo, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read %s: %w", path, err)
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUndecodableImage, path, err)
		}
		photos = append(photos, facematch.Photo{
			ID:    filepath.Base(path),
			Data:  data,
			Image: img,
		})
	}
	return photos, nil
}

func loadReferences(paths []string) ([]facematch.Reference, error) {
	refs := make([]facematch.Reference, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read %s: %w", path, err)
		}
		if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUndecodableImage, path, err)
		}
		refs = append(refs, facematch.Reference{
			ID:   filepath.Base(path),
			Data: data,
		})
	}
	return refs, nil
}
