package compose

import "math"

// Each layer style is a distinct recipe: its own harmonic density,
// rhythmic density and envelope shape. The constants below define the
// sonic signature per emotion and are not interchangeable.

const twoPi = 2 * math.Pi

// synthesizeLayers renders the style's layers into a fresh signal of n
// samples.
func synthesizeLayers(style LayerStyle, theme Theme, n int) []float64 {
	out := make([]float64, n)
	switch style {
	case OrchestralUpbeat:
		orchestralLayer(out, theme, true)
	case PianoBallad:
		pianoLayer(out, theme)
	case OrchestralDramatic:
		dramaticLayer(out, theme)
	case AtmosphericDark:
		atmosphericLayer(out, theme)
	case OrchestralWhimsical:
		whimsicalLayer(out, theme)
	case AtonalUnsettling:
		unsettlingLayer(out, theme)
	case AmbientPeaceful:
		ambientLayer(out, theme)
	default:
		ambientLayer(out, theme)
	}
	return out
}

// addWindow adds f(t) to every sample with start <= t < start+dur,
// where t is the absolute time of the sample. Phases are computed from
// absolute time, so overlapping notes stay coherent.
func addWindow(out []float64, start, dur float64, f func(t float64) float64) {
	lo := int(math.Ceil(start * SampleRate))
	hi := int(math.Ceil((start + dur) * SampleRate))
	if lo < 0 {
		lo = 0
	}
	if hi > len(out) {
		hi = len(out)
	}
	for i := lo; i < hi; i++ {
		t := float64(i) / SampleRate
		out[i] += f(t)
	}
}

// addFull adds f(t) across the entire signal.
func addFull(out []float64, f func(t float64) float64) {
	for i := range out {
		t := float64(i) / SampleRate
		out[i] += f(t)
	}
}

// orchestralLayer: sustained string chords with overtone stack, plus a
// vibrato melody line. The upbeat variant pulses the chord envelope at
// the beat rate.
func orchestralLayer(out []float64, th Theme, upbeat bool) {
	beat := th.BeatDuration()

	for i, chordFreq := range th.Chords {
		f := chordFreq
		start := float64(i) * beat * 2
		addWindow(out, start, beat*2, func(t float64) float64 {
			wave := 0.3*math.Sin(twoPi*f*t) +
				0.2*math.Sin(twoPi*f*1.25*t) + // major third
				0.15*math.Sin(twoPi*f*1.5*t) + // perfect fifth
				0.1*math.Sin(twoPi*f*2*t) // octave
			envelope := 1.0
			if upbeat {
				envelope += 0.1 * math.Sin(twoPi*th.TempoBPM/60*t)
			}
			return wave * envelope
		})
	}

	for i, noteFreq := range th.Melody {
		f := noteFreq
		start := float64(i) * beat / 2
		addWindow(out, start, beat/2, func(t float64) float64 {
			vibrato := 1 + 0.05*math.Sin(twoPi*6*t)
			wave := 0.25 * math.Sin(twoPi*f*t) * vibrato
			wave += 0.1 * math.Sin(twoPi*f*2*t)
			wave += 0.05 * math.Sin(twoPi*f*3*t)
			return wave
		})
	}
}

// pianoLayer: arpeggiated chords and an expressive melody, both with
// exponential decay envelopes.
func pianoLayer(out []float64, th Theme) {
	beat := th.BeatDuration()

	for i, chordFreq := range th.Chords {
		chordStart := float64(i) * beat * 4
		arpeggio := [4]float64{chordFreq, chordFreq * 1.25, chordFreq * 1.5, chordFreq * 2}
		for j, arpFreq := range arpeggio {
			f := arpFreq
			noteStart := chordStart + float64(j)*beat
			addWindow(out, noteStart, beat*2, func(t float64) float64 {
				decay := math.Exp(-(t - noteStart) / (beat * 0.8))
				wave := 0.4*math.Sin(twoPi*f*t) +
					0.2*math.Sin(twoPi*f*2*t) +
					0.1*math.Sin(twoPi*f*3*t)
				return wave * decay
			})
		}
	}

	for i, noteFreq := range th.Melody {
		f := noteFreq
		noteStart := float64(i) * beat
		noteDur := beat * 1.5
		addWindow(out, noteStart, noteDur, func(t float64) float64 {
			decay := math.Exp(-(t - noteStart) / noteDur)
			wave := 0.3*math.Sin(twoPi*f*t) + 0.15*math.Sin(twoPi*f*2*t)
			return wave * decay
		})
	}
}

// dramaticLayer: brass-like chords with swells and an accented melody.
func dramaticLayer(out []float64, th Theme) {
	beat := th.BeatDuration()

	for i, chordFreq := range th.Chords {
		f := chordFreq
		start := float64(i) * beat * 2
		addWindow(out, start, beat*2, func(t float64) float64 {
			wave := 0.4*math.Sin(twoPi*f*t) +
				0.3*math.Sin(twoPi*f*1.5*t) +
				0.2*math.Sin(twoPi*f*2*t) +
				0.1*math.Sin(twoPi*f*3*t)
			swell := 1 + 0.3*math.Sin(twoPi*0.5*(t-start))
			return wave * swell
		})
	}

	for i, noteFreq := range th.Melody {
		f := noteFreq
		start := float64(i) * beat / 2
		addWindow(out, start, beat, func(t float64) float64 {
			attack := (t - start) / 0.1
			if attack > 1 {
				attack = 1
			}
			wave := 0.35*math.Sin(twoPi*f*t) +
				0.2*math.Sin(twoPi*f*1.5*t) +
				0.15*math.Sin(twoPi*f*2*t)
			return wave * attack
		})
	}
}

// atmosphericLayer: sub-octave pads with tremolo across the whole
// track and a sparse, slowly swelling melody with slight detune.
func atmosphericLayer(out []float64, th Theme) {
	beat := th.BeatDuration()

	for _, chordFreq := range th.Chords {
		low := chordFreq / 4
		addFull(out, func(t float64) float64 {
			pad := 0.2*math.Sin(twoPi*low*t) + 0.15*math.Sin(twoPi*low*1.5*t)
			tremolo := 1 + 0.1*math.Sin(twoPi*4*t)
			return pad * tremolo
		})
	}

	for i, noteFreq := range th.Melody {
		if i%3 != 0 { // every third note only, for sparseness
			continue
		}
		f := noteFreq
		start := float64(i) * beat * 2
		addWindow(out, start, beat*3, func(t float64) float64 {
			attack := t - start // 1 second attack
			if attack > 1 {
				attack = 1
			}
			wave := 0.15*math.Sin(twoPi*f*t) + 0.1*math.Sin(twoPi*f*1.1*t)
			return wave * attack
		})
	}
}

// whimsicalLayer: staccato chord stabs and a playful melody with
// grace-note ornaments.
func whimsicalLayer(out []float64, th Theme) {
	beat := th.BeatDuration()

	for i, chordFreq := range th.Chords {
		f := chordFreq
		chordStart := float64(i) * beat * 2
		for b := 0; b < 4; b++ {
			start := chordStart + float64(b)*beat/2
			addWindow(out, start, beat/4, func(t float64) float64 {
				return 0.25*math.Sin(twoPi*f*t) + 0.15*math.Sin(twoPi*f*2*t)
			})
		}
	}

	for i, noteFreq := range th.Melody {
		f := noteFreq
		grace := f * 1.125 // major second above
		start := float64(i) * beat / 2
		addWindow(out, start, beat/2, func(t float64) float64 {
			return 0.3 * math.Sin(twoPi*f*t)
		})
		addWindow(out, start, beat/16, func(t float64) float64 {
			return 0.2 * math.Sin(twoPi*grace*t)
		})
	}
}

// unsettlingLayer: dissonant clusters (minor second, tritone, minor
// seventh) with a beating LFO, and a microtonally detuned melody.
func unsettlingLayer(out []float64, th Theme) {
	beat := th.BeatDuration()

	for i, chordFreq := range th.Chords {
		f := chordFreq
		start := float64(i) * beat * 3
		addWindow(out, start, beat*3, func(t float64) float64 {
			cluster := 0.2*math.Sin(twoPi*f*t) +
				0.2*math.Sin(twoPi*f*1.1*t) +
				0.15*math.Sin(twoPi*f*1.4*t) +
				0.1*math.Sin(twoPi*f*1.7*t)
			beating := 1 + 0.2*math.Sin(twoPi*2*t)
			return cluster * beating
		})
	}

	for i, noteFreq := range th.Melody {
		f := noteFreq
		start := float64(i) * beat
		addWindow(out, start, beat*1.5, func(t float64) float64 {
			return 0.2*math.Sin(twoPi*f*1.03*t) + 0.15*math.Sin(twoPi*f*0.97*t)
		})
	}
}

// ambientLayer: gentle pads with a breathing LFO and a soft melody
// with long attack and release.
func ambientLayer(out []float64, th Theme) {
	beat := th.BeatDuration()

	for _, chordFreq := range th.Chords {
		f := chordFreq
		addFull(out, func(t float64) float64 {
			pad := 0.15*math.Sin(twoPi*f*t) +
				0.1*math.Sin(twoPi*f*1.5*t) +
				0.08*math.Sin(twoPi*f*2*t)
			breath := 1 + 0.05*math.Sin(twoPi*0.2*t)
			return pad * breath
		})
	}

	for i, noteFreq := range th.Melody {
		f := noteFreq
		start := float64(i) * beat * 2
		dur := beat * 4
		addWindow(out, start, dur, func(t float64) float64 {
			attack := (t - start) / 2
			if attack > 1 {
				attack = 1
			}
			release := 1.0
			if t >= start+dur-2 {
				release = 1 - (t-(start+dur-2))/2
			}
			wave := 0.2*math.Sin(twoPi*f*t) + 0.1*math.Sin(twoPi*f*2*t)
			return wave * attack * release
		})
	}
}
