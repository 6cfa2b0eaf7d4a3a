// Package similarity provides the string and set comparison primitives used
// by reconciliation and duplicate detection.
package similarity

import (
	"regexp"
	"strings"
)

var punctuation = regexp.MustCompile(`[^\w\s]`)

// NormalizeText lowercases, collapses whitespace, and strips punctuation so
// cosmetic differences do not count as disagreement.
func NormalizeText(text string) string {
	text = strings.ToLower(text)
	text = strings.Join(strings.Fields(text), " ")
	text = punctuation.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// String returns a similarity score in [0,1] between two strings based on
// Levenshtein distance over their normalized forms. Two empty strings score 1.
func String(a, b string) float64 {
	an := NormalizeText(a)
	bn := NormalizeText(b)

	if an == bn {
		return 1.0
	}
	if an == "" || bn == "" {
		return 0.0
	}

	distance := Levenshtein(an, bn)
	maxLen := max(len(an), len(bn))
	return 1.0 - float64(distance)/float64(maxLen)
}

// Levenshtein computes the edit distance between two strings.
func Levenshtein(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

// StringSet scores two string slices by pairing each element of the smaller
// set with its best match in the other and averaging. Order does not matter.
func StringSet(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	smaller, larger := a, b
	if len(b) < len(a) {
		smaller, larger = b, a
	}

	total := 0.0
	for _, s := range smaller {
		best := 0.0
		for _, l := range larger {
			if score := String(s, l); score > best {
				best = score
			}
		}
		total += best
	}

	// Penalize size mismatch so a subset does not score as a full match.
	return total / float64(len(larger))
}

// Subset reports whether every element of a has a near-exact counterpart in
// b (similarity above threshold) while b has elements a lacks.
func Subset(a, b []string, threshold float64) bool {
	if len(a) == 0 || len(a) >= len(b) {
		return false
	}
	for _, s := range a {
		found := false
		for _, l := range b {
			if String(s, l) >= threshold {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
