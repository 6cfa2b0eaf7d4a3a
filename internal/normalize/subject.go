package normalize

import (
	"strconv"
	"strings"

	"github.com/openshelf/enricher/internal/metadata"
)

// Genre synonyms collapse the spelling variants catalogs use for the same
// genre. Keys and values are already in normalized (lowercase) form.
var genreSynonyms = map[string]string{
	"sci-fi":                  "science fiction",
	"scifi":                   "science fiction",
	"sf":                      "science fiction",
	"speculative fiction":     "science fiction",
	"ya":                      "young adult",
	"young adult fiction":     "young adult",
	"juvenile fiction":        "children's fiction",
	"kids":                    "children's fiction",
	"detective":               "mystery",
	"detective fiction":       "mystery",
	"crime fiction":           "mystery",
	"whodunit":                "mystery",
	"horror fiction":          "horror",
	"romantic fiction":        "romance",
	"love stories":            "romance",
	"bio":                     "biography",
	"autobiographies":         "autobiography",
	"memoirs":                 "memoir",
	"historical novel":        "historical fiction",
	"self improvement":        "self-help",
	"self help":               "self-help",
	"graphic novels":          "graphic novel",
	"comics":                  "graphic novel",
	"poems":                   "poetry",
	"short story collections": "short stories",
	"thrillers":               "thriller",
	"suspense":                "thriller",
	"fantasy fiction":         "fantasy",
}

// Coarse Dewey hundreds classes mapped to subject terms.
var deweyClasses = map[int]string{
	0: "computer science, information and general works",
	1: "philosophy and psychology",
	2: "religion",
	3: "social sciences",
	4: "language",
	5: "science",
	6: "technology",
	7: "arts and recreation",
	8: "literature",
	9: "history and geography",
}

// LCC top-level classes mapped to subject terms.
var lccClasses = map[byte]string{
	'A': "general works",
	'B': "philosophy, psychology, religion",
	'C': "auxiliary sciences of history",
	'D': "world history",
	'E': "history of the americas",
	'F': "history of the americas",
	'G': "geography, anthropology, recreation",
	'H': "social sciences",
	'J': "political science",
	'K': "law",
	'L': "education",
	'M': "music",
	'N': "fine arts",
	'P': "language and literature",
	'Q': "science",
	'R': "medicine",
	'S': "agriculture",
	'T': "technology",
	'U': "military science",
	'V': "naval science",
	'Z': "bibliography, library science",
}

// SubjectText canonicalizes free-text subject wording: lowercase, trimmed,
// inner whitespace collapsed, trailing periods from MARC headings removed,
// genre synonyms mapped to their canonical term.
func SubjectText(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSuffix(s, ".")
	s = strings.ReplaceAll(s, "--", " -- ")
	s = strings.Join(strings.Fields(s), " ")
	if canonical, ok := genreSynonyms[s]; ok {
		return canonical
	}
	return s
}

// ClassificationCode maps a Dewey or LCC classification code to a canonical
// subject term. Returns empty when the code is unrecognized.
func ClassificationCode(code, scheme string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}

	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "ddc", "dewey":
		return deweyClass(code)
	case "lcc":
		return lccClass(code)
	default:
		// Heuristic: numeric codes are Dewey, alphabetic prefixes are LCC.
		if code[0] >= '0' && code[0] <= '9' {
			return deweyClass(code)
		}
		return lccClass(code)
	}
}

func deweyClass(code string) string {
	head := code
	if idx := strings.IndexAny(head, "./ "); idx > 0 {
		head = head[:idx]
	}
	n, err := strconv.Atoi(head)
	if err != nil || n < 0 || n > 999 {
		return ""
	}
	return deweyClasses[n/100]
}

func lccClass(code string) string {
	letter := code[0]
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	return lccClasses[letter]
}

// Subject builds a normalized Subject value from free text.
func Subject(raw string, kind metadata.SubjectKind) metadata.Subject {
	return metadata.Subject{
		Raw:        raw,
		Normalized: SubjectText(raw),
		Kind:       kind,
	}
}

// CodedSubject builds a Subject from a structured classification entry,
// resolving the code to a canonical term when the name is missing.
func CodedSubject(name, code, scheme string, kind metadata.SubjectKind) metadata.Subject {
	s := metadata.Subject{
		Raw:    name,
		Kind:   kind,
		Code:   strings.TrimSpace(code),
		Scheme: strings.ToLower(strings.TrimSpace(scheme)),
	}
	if name != "" {
		s.Normalized = SubjectText(name)
	} else if mapped := ClassificationCode(code, scheme); mapped != "" {
		s.Raw = code
		s.Normalized = mapped
	} else {
		s.Raw = code
		s.Normalized = strings.ToLower(s.Code)
	}
	return s
}
