package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jkalivoda/moodreel/internal/emotion"
	"github.com/jkalivoda/moodreel/internal/facematch"
)

// Analysis is the machine readable run summary written next to the
// slideshow.
type Analysis struct {
	TotalCandidates int            `json:"total_candidates"`
	MatchedPhotos   int            `json:"matched_photos"`
	DominantEmotion string         `json:"dominant_emotion"`
	EmotionCounts   map[string]int `json:"emotion_counts"`
	Photos          []PhotoReport  `json:"photos"`
	Failures        map[string]int `json:"failures,omitempty"`
	SkippedPhotos   []string       `json:"skipped_photos,omitempty"`
}

// PhotoReport describes one matched photo.
type PhotoReport struct {
	Photo   string                      `json:"photo"`
	Emotion string                      `json:"emotion"`
	Regions []facematch.AnnotatedRegion `json:"regions"`
}

// BuildAnalysis assembles the run summary from the matching results.
func BuildAnalysis(totalCandidates int, matched []facematch.AnnotatedPhoto, dominant emotion.Label, tally emotion.Tally, diag *Diagnostics) Analysis {
	counts := make(map[string]int, len(tally))
	for label, n := range tally {
		counts[string(label)] = n
	}

	photos := make([]PhotoReport, len(matched))
	for i, p := range matched {
		photos[i] = PhotoReport{
			Photo:   p.Photo.ID,
			Emotion: string(p.Vote()),
			Regions: p.Regions,
		}
	}

	a := Analysis{
		TotalCandidates: totalCandidates,
		MatchedPhotos:   len(matched),
		DominantEmotion: string(dominant),
		EmotionCounts:   counts,
		Photos:          photos,
	}
	if diag != nil && diag.Total() > 0 {
		a.Failures = diag.Counts()
		a.SkippedPhotos = diag.Skipped()
	}
	return a
}

// WriteAnalysis saves the summary as emotion_analysis.json in outDir.
func WriteAnalysis(outDir string, a Analysis) (string, error) {
	path := filepath.Join(outDir, "emotion_analysis.json")
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("could not marshal analysis: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("could not write %s: %w", path, err)
	}
	return path, nil
}
