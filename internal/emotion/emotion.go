// Package emotion defines the fixed emotion vocabulary shared by the
// matching pipeline and the composition engine, and the aggregation
// logic that turns per-photo emotions into a single dominant label.
package emotion

// Label is one of the seven recognized emotion labels.
type Label string

const (
	Angry    Label = "angry"
	Disgust  Label = "disgust"
	Fear     Label = "fear"
	Happy    Label = "happy"
	Sad      Label = "sad"
	Surprise Label = "surprise"
	Neutral  Label = "neutral"
)

// Vocabulary is the fixed ordered label set. The order doubles as the
// tie-break priority: when two labels have equal counts or scores, the
// one appearing earlier wins. Changing this order changes results.
var Vocabulary = [7]Label{Angry, Disgust, Fear, Happy, Sad, Surprise, Neutral}

// Parse maps a string onto a vocabulary label. The second return value
// is false for strings outside the vocabulary.
func Parse(s string) (Label, bool) {
	for _, l := range Vocabulary {
		if string(l) == s {
			return l, true
		}
	}
	return Neutral, false
}

// Tally counts votes per emotion label.
type Tally map[Label]int

// Total returns the sum of all counts.
func (t Tally) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// Dominant returns the label with the highest count. Ties are broken by
// vocabulary order. An empty or all-zero tally yields Neutral.
func Dominant(t Tally) Label {
	best := Neutral
	bestCount := 0
	for _, l := range Vocabulary {
		if t[l] > bestCount {
			best = l
			bestCount = t[l]
		}
	}
	return best
}

// DominantScore returns the label with the highest probability in a
// classifier distribution, with vocabulary-order tie-break. Labels
// outside the vocabulary are ignored. An empty distribution yields
// Neutral.
func DominantScore(scores map[string]float64) Label {
	best := Neutral
	bestScore := 0.0
	found := false
	for _, l := range Vocabulary {
		s, ok := scores[string(l)]
		if !ok {
			continue
		}
		if !found || s > bestScore {
			best = l
			bestScore = s
			found = true
		}
	}
	return best
}

// Aggregate tallies one vote per input label and returns the dominant
// emotion. Every vote counts, so Tally.Total() always equals len(votes).
func Aggregate(votes []Label) (Label, Tally) {
	tally := make(Tally, len(Vocabulary))
	for _, l := range Vocabulary {
		tally[l] = 0
	}
	for _, v := range votes {
		if _, ok := Parse(string(v)); !ok {
			v = Neutral
		}
		tally[v]++
	}
	return Dominant(tally), tally
}
