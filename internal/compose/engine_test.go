package compose

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"

	"github.com/jkalivoda/moodreel/internal/emotion"
)

func TestComposeDeterministic(t *testing.T) {
	a := Compose(emotion.Happy, 30*time.Second)
	b := Compose(emotion.Happy, 30*time.Second)

	if len(a.Samples) != len(b.Samples) {
		t.Fatalf("lengths differ: %d vs %d", len(a.Samples), len(b.Samples))
	}
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("samples differ at %d: %v vs %v", i, a.Samples[i], b.Samples[i])
		}
	}
}

func TestComposeDurationFloor(t *testing.T) {
	for _, label := range emotion.Vocabulary {
		t.Run(string(label), func(t *testing.T) {
			w := Compose(label, 5*time.Second)
			if w.Duration() < 30*time.Second {
				t.Errorf("duration = %v, want >= 30s", w.Duration())
			}
		})
	}
}

func TestComposeLongerThanFloor(t *testing.T) {
	w := Compose(emotion.Sad, 45*time.Second)
	if got := w.Duration(); got < 45*time.Second {
		t.Errorf("duration = %v, want >= 45s", got)
	}
}

func TestComposeFractionalDurationNotShort(t *testing.T) {
	// A duration whose sample count is non-integral must round up,
	// never truncate below the request.
	req := 30*time.Second + 333*time.Millisecond
	w := Compose(emotion.Neutral, req)
	if got := w.Duration(); got < req {
		t.Errorf("duration = %v, want >= %v", got, req)
	}
}

func TestComposeNormalizedPeak(t *testing.T) {
	for _, label := range emotion.Vocabulary {
		t.Run(string(label), func(t *testing.T) {
			w := Compose(label, 30*time.Second)
			if peak := w.Peak(); math.Abs(peak-0.8) > 1e-9 {
				t.Errorf("peak = %v, want 0.8", peak)
			}
		})
	}
}

func TestComposeUnknownLabelFallsBackToNeutral(t *testing.T) {
	unknown := Compose(emotion.Label("ecstatic"), 30*time.Second)
	neutral := Compose(emotion.Neutral, 30*time.Second)

	if len(unknown.Samples) != len(neutral.Samples) {
		t.Fatalf("lengths differ: %d vs %d", len(unknown.Samples), len(neutral.Samples))
	}
	for i := range unknown.Samples {
		if unknown.Samples[i] != neutral.Samples[i] {
			t.Fatal("unknown label must compose the neutral theme")
		}
	}
}

func TestComposeStylesDiffer(t *testing.T) {
	happy := Compose(emotion.Happy, 30*time.Second)
	sad := Compose(emotion.Sad, 30*time.Second)

	same := true
	for i := range happy.Samples {
		if happy.Samples[i] != sad.Samples[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different emotions must yield different compositions")
	}
}

func TestComposeFadeEnds(t *testing.T) {
	w := Compose(emotion.Happy, 30*time.Second)

	// The very first and last samples sit at the bottom of the fade
	// ramps and must be (near) silent.
	if math.Abs(w.Samples[0]) > 1e-6 {
		t.Errorf("first sample = %v, want ~0 after fade-in", w.Samples[0])
	}
	if last := w.Samples[len(w.Samples)-1]; math.Abs(last) > 1e-3 {
		t.Errorf("last sample = %v, want ~0 after fade-out", last)
	}

	// Energy inside the sounding part of the theme must survive the
	// fade-in. The upbeat recipe plays its chords and melody at the
	// start of the track, so sample the second second.
	sounding := w.Samples[SampleRate : 2*SampleRate]
	peak := 0.0
	for _, s := range sounding {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		t.Error("sounding window is silent")
	}
}

func TestThemeTable(t *testing.T) {
	tests := []struct {
		label emotion.Label
		tempo float64
		style LayerStyle
	}{
		{emotion.Happy, 120, OrchestralUpbeat},
		{emotion.Sad, 60, PianoBallad},
		{emotion.Angry, 140, OrchestralDramatic},
		{emotion.Fear, 80, AtmosphericDark},
		{emotion.Surprise, 110, OrchestralWhimsical},
		{emotion.Disgust, 90, AtonalUnsettling},
		{emotion.Neutral, 80, AmbientPeaceful},
	}

	for _, tt := range tests {
		t.Run(string(tt.label), func(t *testing.T) {
			theme := ThemeFor(tt.label)
			if theme.TempoBPM != tt.tempo {
				t.Errorf("tempo = %v, want %v", theme.TempoBPM, tt.tempo)
			}
			if theme.Style != tt.style {
				t.Errorf("style = %v, want %v", theme.Style, tt.style)
			}
			for _, f := range theme.Chords {
				if f <= 0 {
					t.Errorf("non-positive chord frequency %v", f)
				}
			}
			for _, f := range theme.Melody {
				if f <= 0 {
					t.Errorf("non-positive melody frequency %v", f)
				}
			}
		})
	}
}

func TestWriteWAV(t *testing.T) {
	w := Compose(emotion.Neutral, 30*time.Second)
	path := filepath.Join(t.TempDir(), "out.wav")

	if err := w.WriteWAV(path); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening wav: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("output is not a valid wav file")
	}
	dur, err := dec.Duration()
	if err != nil {
		t.Fatalf("reading duration: %v", err)
	}
	if dur < 29*time.Second {
		t.Errorf("wav duration = %v, want ~30s", dur)
	}
	if dec.SampleRate != SampleRate {
		t.Errorf("sample rate = %d, want %d", dec.SampleRate, SampleRate)
	}
}
