// Package compose turns a single emotion label into a multi-layer
// procedural composition. The engine is table-driven: a static
// per-emotion theme selects chord and melody frequencies, tempo and a
// layering style, and the synthesis is a pure function of that table,
// the label and the requested duration.
package compose

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jkalivoda/moodreel/internal/emotion"
)

//go:embed themes.yaml
var themesYAML []byte

// LayerStyle selects the layering recipe for a theme. The set is
// closed: every style has its own synthesis variant, there is no
// generic formula.
type LayerStyle int

const (
	OrchestralUpbeat LayerStyle = iota
	PianoBallad
	OrchestralDramatic
	AtmosphericDark
	OrchestralWhimsical
	AtonalUnsettling
	AmbientPeaceful
)

var styleNames = map[string]LayerStyle{
	"orchestral_upbeat":    OrchestralUpbeat,
	"piano_ballad":         PianoBallad,
	"orchestral_dramatic":  OrchestralDramatic,
	"atmospheric_dark":     AtmosphericDark,
	"orchestral_whimsical": OrchestralWhimsical,
	"atonal_unsettling":    AtonalUnsettling,
	"ambient_peaceful":     AmbientPeaceful,
}

func (s LayerStyle) String() string {
	for name, style := range styleNames {
		if style == s {
			return name
		}
	}
	return fmt.Sprintf("LayerStyle(%d)", int(s))
}

// Theme is the static musical parameter record for one emotion.
type Theme struct {
	Name        string
	Description string
	Key         string
	Chords      [4]float64
	Melody      [5]float64
	TempoBPM    float64
	Style       LayerStyle
	Dynamics    string
}

// BeatDuration returns the length of one beat in seconds.
func (t Theme) BeatDuration() float64 {
	return 60.0 / t.TempoBPM
}

type themeYAML struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Key         string     `yaml:"key"`
	Chords      []float64  `yaml:"chords"`
	Melody      []float64  `yaml:"melody"`
	Tempo       float64    `yaml:"tempo"`
	Style       string     `yaml:"style"`
	Dynamics    string     `yaml:"dynamics"`
}

type themesFile struct {
	Themes map[string]themeYAML `yaml:"themes"`
}

var themes map[emotion.Label]Theme

func init() {
	var file themesFile
	if err := yaml.Unmarshal(themesYAML, &file); err != nil {
		// Embedded file, cannot fail in practice.
		panic("failed to unmarshal embedded themes.yaml: " + err.Error())
	}

	themes = make(map[emotion.Label]Theme, len(file.Themes))
	for name, raw := range file.Themes {
		label, ok := emotion.Parse(name)
		if !ok {
			panic("themes.yaml contains unknown emotion: " + name)
		}
		style, ok := styleNames[raw.Style]
		if !ok {
			panic("themes.yaml contains unknown style: " + raw.Style)
		}
		if len(raw.Chords) != 4 || len(raw.Melody) != 5 {
			panic("themes.yaml theme " + name + " has wrong chord/melody count")
		}
		theme := Theme{
			Name:        raw.Name,
			Description: raw.Description,
			Key:         raw.Key,
			TempoBPM:    raw.Tempo,
			Style:       style,
			Dynamics:    raw.Dynamics,
		}
		copy(theme.Chords[:], raw.Chords)
		copy(theme.Melody[:], raw.Melody)
		themes[label] = theme
	}

	for _, label := range emotion.Vocabulary {
		if _, ok := themes[label]; !ok {
			panic("themes.yaml is missing emotion: " + string(label))
		}
	}
}

// ThemeFor returns the theme for a label, falling back to the neutral
// theme for anything outside the vocabulary. It never fails.
func ThemeFor(label emotion.Label) Theme {
	if theme, ok := themes[label]; ok {
		return theme
	}
	return themes[emotion.Neutral]
}
