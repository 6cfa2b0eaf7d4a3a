package similarity

import (
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "The Great Gatsby", "the great gatsby"},
		{"punctuation stripped", "Moby-Dick; or, The Whale!", "mobydick or the whale"},
		{"whitespace collapsed", "  war   and\tpeace  ", "war and peace"},
		{"empty", "", ""},
		{"already normalized", "dune", "dune"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.input); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical", "The Great Gatsby", "The Great Gatsby", 1.0, 1.0},
		{"case and punctuation only", "the great gatsby!", "The Great Gatsby", 1.0, 1.0},
		{"close variants", "The Great Gatsby", "Great Gatsby", 0.7, 0.99},
		{"unrelated", "The Great Gatsby", "Moby Dick", 0.0, 0.4},
		{"one empty", "Dune", "", 0.0, 0.0},
		{"both empty", "", "", 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := String(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Errorf("String(%q, %q) = %.3f, want in [%.2f, %.2f]", tt.a, tt.b, got, tt.min, tt.max)
			}
			// Symmetry.
			if rev := String(tt.b, tt.a); rev != got {
				t.Errorf("String not symmetric: %.3f vs %.3f", got, rev)
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"book", "back", 2},
	}

	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestStringSet(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		min  float64
		max  float64
	}{
		{"identical reordered", []string{"Neil Gaiman", "Terry Pratchett"}, []string{"Terry Pratchett", "Neil Gaiman"}, 1.0, 1.0},
		{"subset penalized", []string{"Neil Gaiman"}, []string{"Neil Gaiman", "Terry Pratchett"}, 0.45, 0.55},
		{"disjoint", []string{"Jane Austen"}, []string{"Mark Twain"}, 0.0, 0.4},
		{"both empty", nil, nil, 1.0, 1.0},
		{"one empty", []string{"Jane Austen"}, nil, 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StringSet(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Errorf("StringSet(%v, %v) = %.3f, want in [%.2f, %.2f]", tt.a, tt.b, got, tt.min, tt.max)
			}
		})
	}
}

func TestSubset(t *testing.T) {
	tests := []struct {
		name      string
		a, b      []string
		threshold float64
		want      bool
	}{
		{"true subset", []string{"fiction"}, []string{"fiction", "classics"}, 0.9, true},
		{"equal sets are not subsets", []string{"fiction"}, []string{"fiction"}, 0.9, false},
		{"element missing", []string{"fiction", "poetry"}, []string{"fiction", "classics", "drama"}, 0.9, false},
		{"empty a", nil, []string{"fiction"}, 0.9, false},
		{"fuzzy containment", []string{"Science Fiction"}, []string{"science fiction.", "classics"}, 0.9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Subset(tt.a, tt.b, tt.threshold); got != tt.want {
				t.Errorf("Subset(%v, %v, %.2f) = %v, want %v", tt.a, tt.b, tt.threshold, got, tt.want)
			}
		})
	}
}
