package normalize

import (
	"testing"
)

func TestPublisher(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Scribner", "scribner"},
		{"suffix stripped", "Scribner Book Company", "scribner"},
		{"stacked suffixes", "Penguin Publishing Group", "penguin"},
		{"the prefix", "The Viking Press", "viking press"},
		{"ampersand", "Farrar, Straus & Giroux", "farrar straus and giroux"},
		{"region qualifier", "Penguin (UK)", "penguin"},
		{"abbreviated suffix", "HarperCollins Pub.", "harpercollins"},
		{"empty", "", ""},
		{"suffix only survives", "Books", "books"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Publisher(tt.input)
			if got != tt.want {
				t.Errorf("Publisher(%q) = %q, want %q", tt.input, got, tt.want)
			}
			// Normalizing an already-normalized value must be a no-op.
			if again := Publisher(got); again != got {
				t.Errorf("Publisher not idempotent: %q -> %q -> %q", tt.input, got, again)
			}
		})
	}
}

func TestPublisherEquivalence(t *testing.T) {
	pairs := [][2]string{
		{"Scribner", "Scribner Book Company"},
		{"Penguin Books", "Penguin Publishing Group"},
		{"Farrar, Straus and Giroux", "Farrar Straus & Giroux"},
		{"The Viking Press", "Viking Press, Inc."},
	}

	for _, pair := range pairs {
		if a, b := Publisher(pair[0]), Publisher(pair[1]); a != b {
			t.Errorf("Publisher(%q) = %q but Publisher(%q) = %q; expected equal", pair[0], a, pair[1], b)
		}
	}
}

func TestPlace(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"New York", "new york"},
		{"New York, NY", "new york"},
		{"London ; New York", "london"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Place(tt.input); got != tt.want {
			t.Errorf("Place(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
