package emotion

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Label
		ok    bool
	}{
		{"happy", Happy, true},
		{"angry", Angry, true},
		{"neutral", Neutral, true},
		{"joyful", Neutral, false},
		{"", Neutral, false},
		{"HAPPY", Neutral, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Parse(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDominant(t *testing.T) {
	tests := []struct {
		name  string
		tally Tally
		want  Label
	}{
		{
			name:  "clear winner",
			tally: Tally{Happy: 1, Sad: 3},
			want:  Sad,
		},
		{
			name:  "tie broken by vocabulary order",
			tally: Tally{Happy: 2, Sad: 2},
			want:  Happy,
		},
		{
			name:  "angry precedes everything on full tie",
			tally: Tally{Angry: 1, Disgust: 1, Fear: 1, Happy: 1, Sad: 1, Surprise: 1, Neutral: 1},
			want:  Angry,
		},
		{
			name:  "empty tally defaults to neutral",
			tally: Tally{},
			want:  Neutral,
		},
		{
			name:  "all-zero tally defaults to neutral",
			tally: Tally{Happy: 0, Sad: 0},
			want:  Neutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dominant(tt.tally); got != tt.want {
				t.Errorf("Dominant(%v) = %v, want %v", tt.tally, got, tt.want)
			}
		})
	}
}

func TestDominantScore(t *testing.T) {
	tests := []struct {
		name   string
		scores map[string]float64
		want   Label
	}{
		{
			name:   "highest probability wins",
			scores: map[string]float64{"happy": 0.2, "sad": 0.7, "neutral": 0.1},
			want:   Sad,
		},
		{
			name:   "score tie broken by vocabulary order",
			scores: map[string]float64{"surprise": 0.5, "fear": 0.5},
			want:   Fear,
		},
		{
			name:   "unknown labels ignored",
			scores: map[string]float64{"joyful": 0.9, "sad": 0.1},
			want:   Sad,
		},
		{
			name:   "empty distribution defaults to neutral",
			scores: map[string]float64{},
			want:   Neutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DominantScore(tt.scores); got != tt.want {
				t.Errorf("DominantScore(%v) = %v, want %v", tt.scores, got, tt.want)
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	votes := []Label{Happy, Sad, Happy, Label("bogus"), Neutral}
	dominant, tally := Aggregate(votes)

	if tally.Total() != len(votes) {
		t.Errorf("tally total = %d, want %d", tally.Total(), len(votes))
	}
	if dominant != Happy {
		t.Errorf("dominant = %v, want %v", dominant, Happy)
	}
	if tally[Neutral] != 2 {
		t.Errorf("unknown vote should count as neutral, got %d neutral votes", tally[Neutral])
	}
}

func TestAggregateEmpty(t *testing.T) {
	dominant, tally := Aggregate(nil)
	if tally.Total() != 0 {
		t.Errorf("tally total = %d, want 0", tally.Total())
	}
	if dominant != Neutral {
		t.Errorf("dominant = %v, want %v", dominant, Neutral)
	}
}
