// Package facematch implements the matching pipeline core: localizing
// faces in candidate photos, verifying them against a reference set by
// majority voting, and labeling verified regions with an emotion.
package facematch

import (
	"context"
	"errors"
	"image"

	"github.com/jkalivoda/moodreel/internal/emotion"
)

// ErrEmptyReferenceSet is returned when matching is attempted without
// any reference images.
var ErrEmptyReferenceSet = errors.New("reference set is empty")

// Recoverable failure stages recorded into the run diagnostics.
const (
	StageLocalize = "localize"
	StageVerify   = "verify"
	StageClassify = "classify"
	StageMatch    = "match"
	StageTimeout  = "timeout"
	StageMux      = "mux"
)

// Recorder accumulates recoverable per-item failures for the run
// summary. Implementations must be safe for concurrent use.
type Recorder interface {
	Record(stage, photoID string)
}

// NopRecorder discards all records.
type NopRecorder struct{}

func (NopRecorder) Record(stage, photoID string) {}

// Region is a face bounding box in pixel coordinates.
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Clip restricts the region to an image of the given dimensions. The
// second return value is false when nothing remains after clipping.
func (r Region) Clip(imgW, imgH int) (Region, bool) {
	if r.X < 0 {
		r.W += r.X
		r.X = 0
	}
	if r.Y < 0 {
		r.H += r.Y
		r.Y = 0
	}
	if r.X+r.W > imgW {
		r.W = imgW - r.X
	}
	if r.Y+r.H > imgH {
		r.H = imgH - r.Y
	}
	if r.W <= 0 || r.H <= 0 || r.X >= imgW || r.Y >= imgH {
		return Region{}, false
	}
	return r, true
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Vote is the outcome of verifying one region against one reference
// image.
type Vote struct {
	Verified bool
	Distance float64
}

// Decision aggregates the votes of one region against the whole
// reference set.
type Decision struct {
	MatchCount   int
	BestDistance float64
}

// Verified reports whether the region collected enough matching votes.
// The requirement is capped at the reference set size so a small set
// can still produce matches.
func (d Decision) Verified(required, refCount int) bool {
	if refCount < required {
		required = refCount
	}
	return refCount > 0 && d.MatchCount >= required
}

// Confidence converts the best verification distance into a 0-100
// display score.
func Confidence(bestDistance float64) float64 {
	c := (1 - bestDistance) * 100
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// Photo is a candidate photo: its identity, raw encoded bytes for the
// capability backends, and the decoded image for cropping and
// annotation.
type Photo struct {
	ID    string
	Data  []byte
	Image image.Image
}

// Reference is one curated image of the identity being searched for.
type Reference struct {
	ID   string
	Data []byte
}

// AnnotatedRegion is a verified face region with its emotion label and
// display confidence.
type AnnotatedRegion struct {
	Region     Region        `json:"region"`
	Emotion    emotion.Label `json:"emotion"`
	Confidence float64       `json:"confidence"`
}

// AnnotatedPhoto is a candidate photo with at least one verified
// region.
type AnnotatedPhoto struct {
	Photo   Photo
	Regions []AnnotatedRegion
}

// Vote returns the photo's single emotion vote: the label of its
// highest-confidence region, vocabulary order breaking confidence
// ties. A photo without regions votes neutral.
func (p AnnotatedPhoto) Vote() emotion.Label {
	if len(p.Regions) == 0 {
		return emotion.Neutral
	}
	scores := make(map[string]float64, len(p.Regions))
	for _, r := range p.Regions {
		s, ok := scores[string(r.Emotion)]
		if !ok || r.Confidence > s {
			scores[string(r.Emotion)] = r.Confidence
		}
	}
	return emotion.DominantScore(scores)
}

// Capability contracts consumed by the matcher. Implementations live in
// internal/backend; tests supply in-memory fakes.

// Localizer finds face regions in an encoded image. An empty result is
// valid.
type Localizer interface {
	Localize(ctx context.Context, img []byte) ([]Region, error)
}

// Verifier judges whether two face images show the same person.
type Verifier interface {
	Verify(ctx context.Context, refImage, faceCrop []byte, model, metric string) (Vote, error)
}

// Classifier returns an emotion probability distribution for a face
// crop.
type Classifier interface {
	Classify(ctx context.Context, faceCrop []byte) (map[string]float64, error)
}
