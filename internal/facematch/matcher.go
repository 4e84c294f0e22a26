package facematch

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/jkalivoda/moodreel/internal/emotion"
)

// ModelParams selects the verification backbone and decision
// thresholds for a matching run.
type ModelParams struct {
	Model           string  // verification backbone, e.g. "ArcFace"
	Metric          string  // distance metric, e.g. "cosine"
	Threshold       float64 // maximum distance counting as a match
	RequiredMatches int     // votes needed before a region is verified
}

// Matcher evaluates candidate photos against a reference set. It is
// cheap to construct per run; the localization cache is the only state
// worth sharing across runs.
type Matcher struct {
	localizer  Localizer
	verifier   Verifier
	classifier Classifier
	params     ModelParams
	cache      *Cache
	rec        Recorder
	log        *logrus.Logger
}

// NewMatcher wires a matcher from its capabilities. A nil recorder
// discards failure records.
func NewMatcher(loc Localizer, ver Verifier, cls Classifier, params ModelParams, cache *Cache, rec Recorder, log *logrus.Logger) *Matcher {
	if rec == nil {
		rec = NopRecorder{}
	}
	if log == nil {
		log = logrus.New()
	}
	if cache == nil {
		cache = NewCache(32)
	}
	return &Matcher{
		localizer:  loc,
		verifier:   ver,
		classifier: cls,
		params:     params,
		cache:      cache,
		rec:        rec,
		log:        log,
	}
}

// Match localizes faces in the photo and returns the regions verified
// against the reference set, each labeled with an emotion and a
// confidence score. A photo without verified regions yields an empty
// slice, not an error. Individual backend failures degrade to
// non-match or neutral and are recorded; only an empty reference set
// or context cancellation is an error.
func (m *Matcher) Match(ctx context.Context, photo Photo, refs []Reference) ([]AnnotatedRegion, error) {
	if len(refs) == 0 {
		return nil, ErrEmptyReferenceSet
	}

	regions, err := m.localize(ctx, photo)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		m.rec.Record(StageLocalize, photo.ID)
		m.log.WithFields(logrus.Fields{"photo": photo.ID, "stage": StageLocalize}).WithError(err).Warn("face localization failed")
		return nil, nil
	}

	bounds := photo.Image.Bounds()
	var annotated []AnnotatedRegion
	for _, raw := range regions {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		region, ok := raw.Clip(bounds.Dx(), bounds.Dy())
		if !ok {
			continue
		}

		crop, err := cropJPEG(photo.Image, region)
		if err != nil {
			m.rec.Record(StageMatch, photo.ID)
			continue
		}

		decision := m.decide(ctx, photo, crop, refs)
		if !decision.Verified(m.params.RequiredMatches, len(refs)) {
			continue
		}

		annotated = append(annotated, AnnotatedRegion{
			Region:     region,
			Emotion:    m.classify(ctx, photo, crop),
			Confidence: Confidence(decision.BestDistance),
		})
	}
	return annotated, ctx.Err()
}

// localize returns cached face regions for the photo, calling the
// localization capability on a cache miss.
func (m *Matcher) localize(ctx context.Context, photo Photo) ([]Region, error) {
	key := CacheKey(photo.Data)
	if regions, ok := m.cache.Get(key); ok {
		return regions, nil
	}
	regions, err := m.localizer.Localize(ctx, photo.Data)
	if err != nil {
		return nil, err
	}
	m.cache.Put(key, regions)
	return regions, nil
}

// decide compares a face crop sequentially against the reference set,
// short-circuiting once enough votes are collected. Reference order
// affects latency, never the verdict. A failed verification call
// counts as a non-match for that pair.
func (m *Matcher) decide(ctx context.Context, photo Photo, crop []byte, refs []Reference) Decision {
	decision := Decision{BestDistance: math.Inf(1)}
	for _, ref := range refs {
		if ctx.Err() != nil {
			return decision
		}
		vote, err := m.verifier.Verify(ctx, ref.Data, crop, m.params.Model, m.params.Metric)
		if err != nil {
			m.rec.Record(StageVerify, photo.ID)
			m.log.WithFields(logrus.Fields{"photo": photo.ID, "stage": StageVerify, "reference": ref.ID}).WithError(err).Warn("verification call failed")
			continue
		}
		if vote.Verified && vote.Distance <= m.params.Threshold {
			decision.MatchCount++
			if vote.Distance < decision.BestDistance {
				decision.BestDistance = vote.Distance
			}
			if decision.MatchCount >= m.params.RequiredMatches {
				break
			}
		}
	}
	return decision
}

// classify labels a verified crop, degrading to neutral when the
// classification capability fails.
func (m *Matcher) classify(ctx context.Context, photo Photo, crop []byte) emotion.Label {
	scores, err := m.classifier.Classify(ctx, crop)
	if err != nil {
		m.rec.Record(StageClassify, photo.ID)
		m.log.WithFields(logrus.Fields{"photo": photo.ID, "stage": StageClassify}).WithError(err).Warn("emotion classification failed")
		return emotion.Neutral
	}
	return emotion.DominantScore(scores)
}

// cropJPEG extracts a region from the photo and encodes it as JPEG for
// the verification and classification backends.
func cropJPEG(img image.Image, region Region) ([]byte, error) {
	rect := region.Rect().Add(img.Bounds().Min)
	cropped := image.NewRGBA(image.Rect(0, 0, region.W, region.H))
	for y := 0; y < region.H; y++ {
		for x := 0; x < region.W; x++ {
			cropped.Set(x, y, img.At(rect.Min.X+x, rect.Min.Y+y))
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cropped, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
