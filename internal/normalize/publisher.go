// Package normalize produces canonical forms for publishers, subjects,
// identifiers, and publication dates. Every normalization here is
// idempotent: normalizing an already-normalized value is a no-op.
package normalize

import (
	"regexp"
	"strings"
)

// Legal and trade suffixes that vary between catalogs for the same house.
var publisherSuffixes = []string{
	"incorporated", "inc", "corporation", "corp", "company", "co",
	"limited", "ltd", "llc", "plc", "gmbh",
	"publishers", "publishing", "publications", "pub",
	"books", "book", "group",
}

// Regional qualifiers appended by some catalogs ("Penguin (UK)").
var publisherRegion = regexp.MustCompile(`\s*\((?:uk|us|usa|canada|australia|india|international)\)\s*$`)

var publisherSeparators = regexp.MustCompile(`[.,;:]+`)

// Publisher reduces a publisher name to a canonical comparison form:
// lowercase, "The" prefix stripped, "&" unified to "and", legal and trade
// suffixes removed, regional qualifiers dropped.
func Publisher(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return ""
	}

	s = publisherSeparators.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&", "and")
	s = publisherRegion.ReplaceAllString(s, "")
	for strings.HasPrefix(s, "the ") {
		s = strings.TrimPrefix(s, "the ")
	}
	s = strings.Join(strings.Fields(s), " ")

	// Strip trailing suffix words repeatedly ("Scribner Book Company" →
	// "scribner") but never strip the whole name away.
	for {
		stripped := false
		for _, suffix := range publisherSuffixes {
			if rest, ok := strings.CutSuffix(s, " "+suffix); ok {
				s = rest
				stripped = true
				break
			}
		}
		if !stripped {
			break
		}
	}

	return strings.TrimSpace(s)
}

// Place canonicalizes a publication place: lowercase, punctuation unified,
// trailing country/state qualifiers after a comma dropped.
func Place(place string) string {
	s := strings.ToLower(strings.TrimSpace(place))
	if s == "" {
		return ""
	}
	if idx := strings.IndexAny(s, ",;"); idx > 0 {
		s = s[:idx]
	}
	s = publisherSeparators.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
