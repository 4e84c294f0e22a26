package compose

import (
	"math"
	"time"

	"github.com/jkalivoda/moodreel/internal/emotion"
)

const (
	// SampleRate of every composed waveform, in Hz.
	SampleRate = 44100

	// minDuration is the floor applied to every composition; shorter
	// requests are stretched so the result is a minimally satisfying
	// listen.
	minDuration = 30 * time.Second

	// fadeDuration is the linear fade applied at both ends when the
	// signal is long enough.
	fadeDuration = 2 * time.Second

	// headroom is the peak amplitude fraction after normalization.
	headroom = 0.8
)

// Waveform is a mono sampled signal.
type Waveform struct {
	SampleRate int
	Samples    []float64
}

// Duration returns the length of the waveform.
func (w Waveform) Duration() time.Duration {
	if w.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(len(w.Samples)) / float64(w.SampleRate) * float64(time.Second))
}

// Peak returns the maximum absolute sample value.
func (w Waveform) Peak() float64 {
	peak := 0.0
	for _, s := range w.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// Compose renders the theme for an emotion label into a waveform of at
// least the requested duration. Unknown labels fall back to the
// neutral theme, so Compose never fails. The result is deterministic:
// the same label and duration always produce the identical signal.
func Compose(label emotion.Label, duration time.Duration) Waveform {
	theme := ThemeFor(label)

	if duration < minDuration {
		duration = minDuration
	}
	// Ceil so a fractional duration never comes out a sample short.
	n := int(math.Ceil(duration.Seconds() * SampleRate))

	samples := synthesizeLayers(theme.Style, theme, n)
	applyFades(samples)
	normalize(samples, headroom)

	return Waveform{SampleRate: SampleRate, Samples: samples}
}

// applyFades puts a linear fade-in and fade-out on the signal ends,
// skipped when the signal is too short to hold both.
func applyFades(samples []float64) {
	fade := int(fadeDuration.Seconds() * SampleRate)
	if len(samples) <= 2*fade {
		return
	}
	for i := 0; i < fade; i++ {
		gain := float64(i) / float64(fade)
		samples[i] *= gain
		samples[len(samples)-1-i] *= gain
	}
}

// normalize scales the signal so its peak sits at the given fraction
// of full scale. Silent signals are left untouched.
func normalize(samples []float64, target float64) {
	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return
	}
	scale := target / peak
	for i := range samples {
		samples[i] *= scale
	}
}
