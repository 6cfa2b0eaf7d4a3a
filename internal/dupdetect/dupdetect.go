// Package dupdetect screens a proposed catalog entry against existing
// entries using weighted multi-field similarity.
package dupdetect

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/openshelf/enricher/internal/catalog"
	"github.com/openshelf/enricher/internal/normalize"
	"github.com/openshelf/enricher/internal/similarity"
)

// MatchType classifies how a candidate relates to an existing entry.
type MatchType string

const (
	MatchExact            MatchType = "exact"
	MatchLikely           MatchType = "likely"
	MatchPossible         MatchType = "possible"
	MatchDifferentEdition MatchType = "different_edition"
	MatchRelatedWork      MatchType = "related_work"
)

// Recommendation is the suggested action for a match. It is a pure
// function of the similarity thresholds.
type Recommendation string

const (
	RecommendSkip     Recommendation = "skip"
	RecommendReview   Recommendation = "review_manually"
	RecommendAddAsNew Recommendation = "add_as_new"
)

// Match is one comparison outcome.
type Match struct {
	Entry          catalog.Entry  `json:"existing_entry" yaml:"existingentry"`
	Similarity     float64        `json:"similarity" yaml:"similarity"`
	MatchType      MatchType      `json:"match_type" yaml:"matchtype"`
	MatchingFields []string       `json:"matching_fields" yaml:"matchingfields"`
	Confidence     float64        `json:"confidence" yaml:"confidence"`
	Recommendation Recommendation `json:"recommendation" yaml:"recommendation"`
	Explanation    string         `json:"explanation" yaml:"explanation"`
}

// FieldWeights is the fixed weight table combining per-field similarities.
type FieldWeights struct {
	Title           float64 `mapstructure:"title"`
	Authors         float64 `mapstructure:"authors"`
	ISBN            float64 `mapstructure:"isbn"`
	PublicationDate float64 `mapstructure:"publication_date"`
	Publisher       float64 `mapstructure:"publisher"`
	Series          float64 `mapstructure:"series"`
}

// DefaultFieldWeights reflects cataloging importance: title and the two
// strong identity signals dominate.
func DefaultFieldWeights() FieldWeights {
	return FieldWeights{
		Title:           0.30,
		Authors:         0.25,
		ISBN:            0.25,
		PublicationDate: 0.10,
		Publisher:       0.05,
		Series:          0.05,
	}
}

// Config bounds duplicate detection.
type Config struct {
	// MinSimilarity is the floor below which matches are not reported.
	MinSimilarity float64 `mapstructure:"min_similarity"`
	Weights       FieldWeights
}

// DefaultConfig returns the tuned defaults (0.3 match floor).
func DefaultConfig() Config {
	return Config{MinSimilarity: 0.3, Weights: DefaultFieldWeights()}
}

// Classification thresholds.
const (
	exactThreshold    = 0.9
	likelyThreshold   = 0.7
	possibleThreshold = 0.5
	editionSignal     = 0.8
)

// Detector compares candidate entries against the catalog. Pure and
// stateless; safe for concurrent use.
type Detector struct {
	cfg Config
}

// NewDetector builds a detector; zero-valued config fields fall back to
// defaults.
func NewDetector(cfg Config) *Detector {
	defaults := DefaultConfig()
	if cfg.MinSimilarity <= 0 {
		cfg.MinSimilarity = defaults.MinSimilarity
	}
	if cfg.Weights == (FieldWeights{}) {
		cfg.Weights = defaults.Weights
	}
	return &Detector{cfg: cfg}
}

// Compare scores a candidate against one existing entry.
func (d *Detector) Compare(candidate, existing catalog.Entry) Match {
	weights := d.cfg.Weights

	var weightedSum, applicableWeight float64
	var matching []string
	fieldScores := make(map[string]float64)

	record := func(field string, score, weight float64) {
		fieldScores[field] = score
		weightedSum += score * weight
		applicableWeight += weight
		if score >= editionSignal {
			matching = append(matching, field)
		}
	}

	titleScore := -1.0
	if candidate.Title != "" && existing.Title != "" {
		titleScore = similarity.String(candidate.Title, existing.Title)
		record("title", titleScore, weights.Title)
	}

	authorScore := -1.0
	if len(candidate.Authors) > 0 && len(existing.Authors) > 0 {
		authorScore = similarity.StringSet(candidate.Authors, existing.Authors)
		record("authors", authorScore, weights.Authors)
	}

	isbnScore := -1.0
	if len(candidate.ISBN) > 0 && len(existing.ISBN) > 0 {
		isbnScore = isbnSimilarity(candidate.ISBN, existing.ISBN)
		record("isbn", isbnScore, weights.ISBN)
	}

	if candidate.PublicationDate != "" && existing.PublicationDate != "" {
		record("publication_date", dateSimilarity(candidate.PublicationDate, existing.PublicationDate), weights.PublicationDate)
	}
	if candidate.Publisher != "" && existing.Publisher != "" {
		record("publisher", similarity.String(normalize.Publisher(candidate.Publisher), normalize.Publisher(existing.Publisher)), weights.Publisher)
	}
	if candidate.Series != "" && existing.Series != "" {
		record("series", similarity.String(candidate.Series, existing.Series), weights.Series)
	}

	match := Match{Entry: existing, MatchingFields: matching}
	if applicableWeight > 0 {
		match.Similarity = weightedSum / applicableWeight
	}
	// Confidence discounts scores built from few comparable fields.
	match.Confidence = match.Similarity * math.Min(1.0, applicableWeight/0.8)

	match.MatchType, match.Recommendation = classify(match.Similarity, isbnScore, titleScore, authorScore)
	match.Explanation = explain(match, fieldScores)
	return match
}

// DetectDuplicates compares a candidate against every existing entry and
// returns matches above the floor, sorted by descending similarity.
func (d *Detector) DetectDuplicates(candidate catalog.Entry, existing []catalog.Entry) []Match {
	var matches []Match
	for _, entry := range existing {
		match := d.Compare(candidate, entry)
		if match.Similarity >= d.cfg.MinSimilarity {
			matches = append(matches, match)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// classify maps a similarity to match type and recommendation per the
// fixed thresholds.
func classify(sim, isbnScore, titleScore, authorScore float64) (MatchType, Recommendation) {
	switch {
	case sim >= exactThreshold:
		return MatchExact, RecommendSkip
	case sim >= likelyThreshold:
		return MatchLikely, RecommendReview
	case sim >= possibleThreshold:
		return MatchPossible, RecommendReview
	case isbnScore > editionSignal || (titleScore > editionSignal && authorScore > editionSignal):
		return MatchDifferentEdition, RecommendAddAsNew
	default:
		return MatchRelatedWork, RecommendAddAsNew
	}
}

// isbnSimilarity is exact-after-normalization: any shared normalized ISBN
// scores 1.
func isbnSimilarity(a, b []string) float64 {
	normalized := make(map[string]bool, len(a))
	for _, raw := range a {
		if n := normalize.ISBN(raw); n != "" {
			normalized[n] = true
		}
	}
	for _, raw := range b {
		if normalized[normalize.ISBN(raw)] {
			return 1.0
		}
	}
	return 0.0
}

// dateSimilarity compares publication years: identical scores 1, one year
// apart 0.7, within three 0.4, otherwise 0.
func dateSimilarity(a, b string) float64 {
	da := normalize.Date(a)
	db := normalize.Date(b)
	if da.Year == 0 || db.Year == 0 {
		return 0
	}
	switch gap := int(math.Abs(float64(da.Year - db.Year))); {
	case gap == 0:
		return 1.0
	case gap == 1:
		return 0.7
	case gap <= 3:
		return 0.4
	default:
		return 0
	}
}

func explain(match Match, fieldScores map[string]float64) string {
	var parts []string
	for _, field := range []string{"title", "authors", "isbn", "publication_date", "publisher", "series"} {
		if score, ok := fieldScores[field]; ok {
			parts = append(parts, fmt.Sprintf("%s %.2f", field, score))
		}
	}
	return fmt.Sprintf("%s match (similarity %.2f): %s", match.MatchType, match.Similarity, strings.Join(parts, ", "))
}
