package normalize

import (
	"testing"

	"github.com/openshelf/enricher/internal/metadata"
)

func TestSubjectText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Science Fiction", "science fiction"},
		{"Sci-Fi", "science fiction"},
		{"SF", "science fiction"},
		{"YA", "young adult"},
		{"Detective fiction", "mystery"},
		{"American fiction.", "american fiction"},
		{"Fiction--History and criticism", "fiction -- history and criticism"},
		{"  Poetry  ", "poetry"},
	}

	for _, tt := range tests {
		got := SubjectText(tt.input)
		if got != tt.want {
			t.Errorf("SubjectText(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if again := SubjectText(got); again != got {
			t.Errorf("SubjectText is not idempotent: %q -> %q", got, again)
		}
	}
}

func TestClassificationCode(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		scheme string
		want   string
	}{
		{"dewey literature", "813.52", "ddc", "literature"},
		{"dewey science", "500", "dewey", "science"},
		{"lcc language and literature", "PS3511.I9", "lcc", "language and literature"},
		{"lcc science", "QA76.73", "lcc", "science"},
		{"scheme inferred numeric", "973.7", "", "history and geography"},
		{"scheme inferred alpha", "HM851", "", "social sciences"},
		{"unknown lcc letter", "X123", "lcc", ""},
		{"out of range dewey", "1200", "ddc", ""},
		{"empty", "", "ddc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassificationCode(tt.code, tt.scheme); got != tt.want {
				t.Errorf("ClassificationCode(%q, %q) = %q, want %q", tt.code, tt.scheme, got, tt.want)
			}
		})
	}
}

func TestCodedSubject(t *testing.T) {
	tests := []struct {
		name           string
		subjectName    string
		code           string
		scheme         string
		wantNormalized string
	}{
		{"name wins over code", "American Literature", "813.52", "ddc", "american literature"},
		{"code resolved when nameless", "", "813.52", "ddc", "literature"},
		{"unresolvable code kept", "", "XX999", "custom", "xx999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CodedSubject(tt.subjectName, tt.code, tt.scheme, metadata.SubjectKindSubject)
			if got.Normalized != tt.wantNormalized {
				t.Errorf("Normalized = %q, want %q", got.Normalized, tt.wantNormalized)
			}
			if got.Code != tt.code {
				t.Errorf("Code = %q, want %q", got.Code, tt.code)
			}
		})
	}
}
