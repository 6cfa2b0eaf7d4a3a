package normalize

import (
	"regexp"
	"strings"

	"github.com/openshelf/enricher/internal/metadata"
)

var (
	isbnSeparators = regexp.MustCompile(`[\s\-–]+`)
	nonDigit       = regexp.MustCompile(`[^0-9X]`)
	doiPattern     = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)
	asinPattern    = regexp.MustCompile(`^[A-Z0-9]{10}$`)
	lccnPattern    = regexp.MustCompile(`^[a-z]{0,3}\d{8,10}$`)
)

// ISBN strips separators, URL prefixes, and scheme labels from an ISBN and
// uppercases a trailing check character.
func ISBN(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "urn:isbn:")
	for _, prefix := range []string{"isbn-13:", "isbn-10:", "isbn:", "isbn"} {
		if strings.HasPrefix(strings.ToLower(s), prefix) {
			s = s[len(prefix):]
			break
		}
	}
	s = isbnSeparators.ReplaceAllString(s, "")
	s = strings.ToUpper(strings.TrimSpace(s))
	return nonDigit.ReplaceAllString(s, "")
}

// ValidISBN10 checks the ISBN-10 checksum (X allowed as final digit).
func ValidISBN10(isbn string) bool {
	if len(isbn) != 10 {
		return false
	}
	sum := 0
	for i, r := range isbn {
		var value int
		switch {
		case r >= '0' && r <= '9':
			value = int(r - '0')
		case r == 'X' && i == 9:
			value = 10
		default:
			return false
		}
		sum += value * (10 - i)
	}
	return sum%11 == 0
}

// ValidISBN13 checks the ISBN-13 checksum.
func ValidISBN13(isbn string) bool {
	if len(isbn) != 13 {
		return false
	}
	sum := 0
	for i, r := range isbn {
		if r < '0' || r > '9' {
			return false
		}
		value := int(r - '0')
		if i%2 == 1 {
			value *= 3
		}
		sum += value
	}
	return sum%10 == 0
}

// DOI strips resolver URLs and the doi: scheme, lowercasing the registrant
// portion is deliberately avoided since DOI suffixes are case-sensitive.
func DOI(raw string) string {
	s := strings.TrimSpace(raw)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		if strings.HasPrefix(strings.ToLower(s), prefix) {
			s = s[len(prefix):]
			break
		}
	}
	return strings.TrimSpace(s)
}

// OCLC strips the ocm/ocn/on prefixes and leading zeros from an OCLC number.
func OCLC(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "(ocolc)")
	for _, prefix := range []string{"ocm", "ocn", "on", "oclc:", "oclc"} {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			s = rest
			break
		}
	}
	s = strings.TrimSpace(s)
	return strings.TrimLeft(s, "0")
}

// LCCN applies the Library of Congress normalization: drop spaces and
// hyphens, discard any suffix after a slash, zero-pad the serial portion.
func LCCN(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.Index(s, "/"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.ReplaceAll(s, " ", "")

	if idx := strings.Index(s, "-"); idx >= 0 {
		prefix, serial := s[:idx], s[idx+1:]
		for len(serial) < 6 {
			serial = "0" + serial
		}
		s = prefix + serial
	}
	return s
}

// ASIN uppercases and trims an Amazon identifier, stripping product URLs.
func ASIN(raw string) string {
	s := strings.TrimSpace(raw)
	if idx := strings.LastIndex(s, "/dp/"); idx >= 0 {
		s = s[idx+4:]
		if end := strings.IndexAny(s, "/?"); end >= 0 {
			s = s[:end]
		}
	}
	return strings.ToUpper(s)
}

// Identifier normalizes and validates a raw identifier of the given type.
func Identifier(idType metadata.IdentifierType, raw string) metadata.Identifier {
	id := metadata.Identifier{Type: idType, Raw: raw}

	switch idType {
	case metadata.IdentifierISBN10:
		id.Normalized = ISBN(raw)
		id.Valid = ValidISBN10(id.Normalized)
	case metadata.IdentifierISBN13:
		id.Normalized = ISBN(raw)
		id.Valid = ValidISBN13(id.Normalized)
	case metadata.IdentifierDOI:
		id.Normalized = DOI(raw)
		id.Valid = doiPattern.MatchString(id.Normalized)
	case metadata.IdentifierOCLC:
		id.Normalized = OCLC(raw)
		id.Valid = id.Normalized != "" && !strings.ContainsFunc(id.Normalized, func(r rune) bool { return r < '0' || r > '9' })
	case metadata.IdentifierLCCN:
		id.Normalized = LCCN(raw)
		id.Valid = lccnPattern.MatchString(id.Normalized)
	case metadata.IdentifierASIN:
		id.Normalized = ASIN(raw)
		id.Valid = asinPattern.MatchString(id.Normalized)
	default:
		id.Normalized = strings.TrimSpace(raw)
		id.Valid = id.Normalized != ""
	}

	return id
}

// ClassifyISBN normalizes a raw ISBN and returns it typed by length.
func ClassifyISBN(raw string) metadata.Identifier {
	normalized := ISBN(raw)
	if len(normalized) == 10 {
		return Identifier(metadata.IdentifierISBN10, raw)
	}
	return Identifier(metadata.IdentifierISBN13, raw)
}
