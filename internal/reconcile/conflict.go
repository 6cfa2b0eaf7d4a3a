package reconcile

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/openshelf/enricher/internal/metadata"
	"github.com/openshelf/enricher/internal/similarity"
)

// DetectorConfig carries the named thresholds conflict detection depends
// on. Zero values fall back to defaults.
type DetectorConfig struct {
	// StringSimilarityThreshold is the edit-distance ratio below which two
	// strings count as distinct values.
	StringSimilarityThreshold float64 `mapstructure:"string_similarity_threshold"`
	// NumericTolerance is the relative difference below which two numbers
	// count as agreeing.
	NumericTolerance float64 `mapstructure:"numeric_tolerance"`
	// ReliabilityGapThreshold is the source-reliability spread above which
	// agreeing values still raise a quality_difference conflict.
	ReliabilityGapThreshold float64 `mapstructure:"reliability_gap_threshold"`
	// MaxConflictsPerField caps conflicts emitted per field; 0 = unbounded.
	MaxConflictsPerField int `mapstructure:"max_conflicts_per_field"`
}

// DefaultDetectorConfig returns the tuned defaults.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		StringSimilarityThreshold: 0.8,
		NumericTolerance:          0.05,
		ReliabilityGapThreshold:   0.3,
	}
}

func (c DetectorConfig) withDefaults() DetectorConfig {
	d := DefaultDetectorConfig()
	if c.StringSimilarityThreshold <= 0 {
		c.StringSimilarityThreshold = d.StringSimilarityThreshold
	}
	if c.NumericTolerance <= 0 {
		c.NumericTolerance = d.NumericTolerance
	}
	if c.ReliabilityGapThreshold <= 0 {
		c.ReliabilityGapThreshold = d.ReliabilityGapThreshold
	}
	return c
}

// Detector classifies disagreements between a reconciled value and its raw
// per-source inputs.
type Detector struct {
	cfg DetectorConfig
	now func() time.Time
}

// NewDetector builds a detector with the given configuration.
func NewDetector(cfg DetectorConfig) *Detector {
	return &Detector{cfg: cfg.withDefaults(), now: time.Now}
}

// severityFor derives a severity from the disagreement magnitude scaled by
// the inverse of the agreeing sources' reliability. Never assigned ad hoc.
func (d *Detector) severityFor(disagreement, agreeingReliability float64) metadata.Severity {
	score := d.impactScore(disagreement, agreeingReliability)
	switch {
	case score >= 0.75:
		return metadata.SeverityCritical
	case score >= 0.5:
		return metadata.SeverityMajor
	case score >= 0.25:
		return metadata.SeverityMinor
	default:
		return metadata.SeverityInformational
	}
}

func (d *Detector) impactScore(disagreement, agreeingReliability float64) float64 {
	inverse := 1.0 - clamp01(agreeingReliability)
	return clamp01(disagreement * (0.5 + inverse))
}

// DetectString compares the chosen string against every raw input and
// produces conflicts for dissimilar values, surface-only differences, and
// reliability gaps among agreeing sources. canon is the field's normalizer
// (nil for plain text); values that agree under it are surface variants of
// the same logical value, never mismatches.
func (d *Detector) DetectString(field, chosen string, inputs []Input[string], canon func(string) string) []metadata.Conflict {
	sameValue := func(a, b string) bool {
		if canon != nil && canon(a) == canon(b) {
			return true
		}
		return similarity.NormalizeText(a) == similarity.NormalizeText(b)
	}

	var conflicts []metadata.Conflict
	var agreeing []Input[string]

	for _, in := range inputs {
		if in.Value == "" || in.Value == chosen {
			agreeing = append(agreeing, in)
			continue
		}

		if sameValue(chosen, in.Value) {
			// Same logical value, different surface form.
			conflicts = append(conflicts, d.formatDifference(field, chosen, in))
			agreeing = append(agreeing, in)
			continue
		}

		sim := similarity.String(chosen, in.Value)
		if sim >= d.cfg.StringSimilarityThreshold {
			agreeing = append(agreeing, in)
			continue
		}

		conflicts = append(conflicts, d.valueMismatch(field, chosen, in, sim))
	}

	if c, ok := d.qualityDifference(field, agreeing); ok {
		conflicts = append(conflicts, c)
	}

	return d.cap(conflicts)
}

func (d *Detector) valueMismatch(field, chosen string, in Input[string], sim float64) metadata.Conflict {
	disagreement := 1.0 - sim
	return metadata.Conflict{
		Type:     metadata.ConflictValueMismatch,
		Severity: d.severityFor(disagreement, in.Source.Reliability),
		Field:    field,
		Values: []metadata.ConflictValue{
			{Value: chosen, Source: "reconciled"},
			{Value: in.Value, Source: in.Source.Name},
		},
		Explanation: fmt.Sprintf("%s from %s differs from the selected value (similarity %.2f)", field, in.Source.Name, sim),
		ResolutionSuggestions: []string{
			"verify against the physical item or publisher data",
			fmt.Sprintf("review %s's raw record", in.Source.Name),
		},
		AutoResolvable: false,
		Impact: metadata.Impact{
			Score:         d.impactScore(disagreement, in.Source.Reliability),
			AffectedAreas: []string{field},
		},
		Detection: metadata.Detection{
			Method:     "string_similarity",
			Threshold:  d.cfg.StringSimilarityThreshold,
			DetectedAt: d.now(),
		},
	}
}

func (d *Detector) formatDifference(field, chosen string, in Input[string]) metadata.Conflict {
	return metadata.Conflict{
		Type:     metadata.ConflictFormatDifference,
		Severity: metadata.SeverityInformational,
		Field:    field,
		Values: []metadata.ConflictValue{
			{Value: chosen, Source: "reconciled"},
			{Value: in.Value, Source: in.Source.Name},
		},
		Explanation:    fmt.Sprintf("%s values agree after normalization but differ in formatting", field),
		Resolution:     "normalized forms are identical; kept the selected surface form",
		AutoResolvable: true,
		Impact:         metadata.Impact{Score: 0.05, AffectedAreas: []string{field}},
		Detection: metadata.Detection{
			Method:     "normalized_equality",
			DetectedAt: d.now(),
		},
	}
}

// qualityDifference fires when sources agree on a value but their
// reliabilities are far apart.
func (d *Detector) qualityDifference(field string, agreeing []Input[string]) (metadata.Conflict, bool) {
	if len(agreeing) < 2 {
		return metadata.Conflict{}, false
	}

	lowest, highest := agreeing[0], agreeing[0]
	for _, in := range agreeing[1:] {
		if in.Source.Reliability < lowest.Source.Reliability {
			lowest = in
		}
		if in.Source.Reliability > highest.Source.Reliability {
			highest = in
		}
	}

	gap := highest.Source.Reliability - lowest.Source.Reliability
	if gap <= d.cfg.ReliabilityGapThreshold {
		return metadata.Conflict{}, false
	}

	return metadata.Conflict{
		Type:     metadata.ConflictQualityDifference,
		Severity: metadata.SeverityInformational,
		Field:    field,
		Values: []metadata.ConflictValue{
			{Value: highest.Value, Source: highest.Source.Name},
			{Value: lowest.Value, Source: lowest.Source.Name},
		},
		Explanation: fmt.Sprintf("sources agree on %s but reliability spreads %.2f between %s and %s",
			field, gap, highest.Source.Name, lowest.Source.Name),
		Resolution:     "agreement between sources of unequal reliability; value kept",
		AutoResolvable: true,
		Impact:         metadata.Impact{Score: 0.1, AffectedAreas: []string{field}},
		Detection: metadata.Detection{
			Method:     "reliability_gap",
			Threshold:  d.cfg.ReliabilityGapThreshold,
			DetectedAt: d.now(),
		},
	}, true
}

// DetectDates produces precision and temporal conflicts between the chosen
// date and the raw per-source dates.
func (d *Detector) DetectDates(field string, chosen metadata.PublicationDate, inputs []Input[metadata.PublicationDate]) []metadata.Conflict {
	var conflicts []metadata.Conflict

	for _, in := range inputs {
		if in.Value.Precision == metadata.PrecisionNone {
			continue
		}

		if in.Value.SameMoment(chosen) {
			if in.Value.Precision != chosen.Precision {
				conflicts = append(conflicts, metadata.Conflict{
					Type:     metadata.ConflictPrecisionDifference,
					Severity: metadata.SeverityInformational,
					Field:    field,
					Values: []metadata.ConflictValue{
						{Value: chosen.Canonical(), Source: "reconciled"},
						{Value: in.Value.Canonical(), Source: in.Source.Name},
					},
					Explanation: fmt.Sprintf("%s reports the date at %s precision; the selected value is %s precision",
						in.Source.Name, in.Value.Precision, chosen.Precision),
					Resolution:     "kept the most specific date",
					AutoResolvable: true,
					Impact:         metadata.Impact{Score: 0.05, AffectedAreas: []string{field}},
					Detection: metadata.Detection{
						Method:     "date_precision",
						DetectedAt: d.now(),
					},
				})
			}
			continue
		}

		yearGap := math.Abs(float64(chosen.Year - in.Value.Year))
		disagreement := clamp01(yearGap / 10)
		if yearGap == 0 {
			// Same year, different month or day.
			disagreement = 0.3
		}
		conflicts = append(conflicts, metadata.Conflict{
			Type:     metadata.ConflictTemporalDifference,
			Severity: d.severityFor(disagreement, in.Source.Reliability),
			Field:    field,
			Values: []metadata.ConflictValue{
				{Value: chosen.Canonical(), Source: "reconciled"},
				{Value: in.Value.Canonical(), Source: in.Source.Name},
			},
			Explanation: fmt.Sprintf("%s reports %s; the selected date is %s",
				in.Source.Name, in.Value.Canonical(), chosen.Canonical()),
			ResolutionSuggestions: []string{
				"check whether the sources describe different editions",
				"prefer the printing date on the copyright page",
			},
			AutoResolvable: false,
			Impact: metadata.Impact{
				Score:         d.impactScore(disagreement, in.Source.Reliability),
				AffectedAreas: []string{field, "edition_matching"},
			},
			Detection: metadata.Detection{
				Method:     "date_comparison",
				DetectedAt: d.now(),
			},
		})
	}

	return d.cap(conflicts)
}

// DetectArrays flags strict-subset relationships between per-source arrays
// as completeness differences.
func (d *Detector) DetectArrays(field string, inputs []Input[[]string]) []metadata.Conflict {
	var conflicts []metadata.Conflict

	for i, a := range inputs {
		for j, b := range inputs {
			if i == j {
				continue
			}
			if similarity.Subset(a.Value, b.Value, 0.9) {
				conflicts = append(conflicts, metadata.Conflict{
					Type:     metadata.ConflictCompletenessDifference,
					Severity: metadata.SeverityMinor,
					Field:    field,
					Values: []metadata.ConflictValue{
						{Value: a.Value, Source: a.Source.Name},
						{Value: b.Value, Source: b.Source.Name},
					},
					Explanation: fmt.Sprintf("%s from %s is a strict subset of %s's list (%d vs %d entries)",
						field, a.Source.Name, b.Source.Name, len(a.Value), len(b.Value)),
					Resolution:     "kept the more complete list",
					AutoResolvable: true,
					Impact:         metadata.Impact{Score: 0.15, AffectedAreas: []string{field}},
					Detection: metadata.Detection{
						Method:     "subset_check",
						Threshold:  0.9,
						DetectedAt: d.now(),
					},
				})
			}
		}
	}

	return d.cap(conflicts)
}

// DetectNumeric flags numeric values whose relative difference from the
// chosen value exceeds the tolerance.
func (d *Detector) DetectNumeric(field string, chosen float64, inputs []Input[float64]) []metadata.Conflict {
	var conflicts []metadata.Conflict

	for _, in := range inputs {
		if in.Value == 0 {
			continue
		}
		baseline := math.Max(math.Abs(chosen), math.Abs(in.Value))
		if baseline == 0 {
			continue
		}
		relative := math.Abs(chosen-in.Value) / baseline
		if relative <= d.cfg.NumericTolerance {
			continue
		}
		disagreement := clamp01(relative)
		conflicts = append(conflicts, metadata.Conflict{
			Type:     metadata.ConflictValueMismatch,
			Severity: d.severityFor(disagreement, in.Source.Reliability),
			Field:    field,
			Values: []metadata.ConflictValue{
				{Value: chosen, Source: "reconciled"},
				{Value: in.Value, Source: in.Source.Name},
			},
			Explanation: fmt.Sprintf("%s from %s differs by %.0f%% from the selected value",
				field, in.Source.Name, relative*100),
			AutoResolvable: false,
			Impact: metadata.Impact{
				Score:         d.impactScore(disagreement, in.Source.Reliability),
				AffectedAreas: []string{field},
			},
			Detection: metadata.Detection{
				Method:     "relative_difference",
				Threshold:  d.cfg.NumericTolerance,
				DetectedAt: d.now(),
			},
		})
	}

	return d.cap(conflicts)
}

func (d *Detector) cap(conflicts []metadata.Conflict) []metadata.Conflict {
	if d.cfg.MaxConflictsPerField > 0 && len(conflicts) > d.cfg.MaxConflictsPerField {
		return conflicts[:d.cfg.MaxConflictsPerField]
	}
	return conflicts
}

// Summary aggregates every field's conflicts into one reviewable report.
type Summary struct {
	Total           int                           `json:"total" yaml:"total"`
	BySeverity      map[metadata.Severity]int     `json:"by_severity" yaml:"byseverity"`
	ByType          map[metadata.ConflictType]int `json:"by_type" yaml:"bytype"`
	ByField         map[string]int                `json:"by_field" yaml:"byfield"`
	AutoResolvable  []metadata.Conflict           `json:"auto_resolvable,omitempty" yaml:"autoresolvable,omitempty"`
	ManualConflicts []metadata.Conflict           `json:"manual_conflicts,omitempty" yaml:"manualconflicts,omitempty"`
	OverallScore    float64                       `json:"overall_score" yaml:"overallscore"`
	Recommendations []string                      `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

// AnalyzeAllConflicts summarizes per-field conflict lists: counts by
// severity, type, and field, the auto/manual split, a weighted overall
// impact score, and free-text recommendations.
func (d *Detector) AnalyzeAllConflicts(byField map[string][]metadata.Conflict) Summary {
	summary := Summary{
		BySeverity: make(map[metadata.Severity]int),
		ByType:     make(map[metadata.ConflictType]int),
		ByField:    make(map[string]int),
	}

	totalImpact := 0.0
	fields := make([]string, 0, len(byField))
	for field := range byField {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		for _, conflict := range byField[field] {
			summary.Total++
			summary.BySeverity[conflict.Severity]++
			summary.ByType[conflict.Type]++
			summary.ByField[conflict.Field]++
			totalImpact += conflict.Impact.Score

			if conflict.AutoResolvable {
				summary.AutoResolvable = append(summary.AutoResolvable, conflict)
			} else {
				summary.ManualConflicts = append(summary.ManualConflicts, conflict)
			}
		}
	}

	if summary.Total > 0 {
		summary.OverallScore = totalImpact / float64(summary.Total)
	}

	if critical := summary.BySeverity[metadata.SeverityCritical]; critical > 0 {
		summary.Recommendations = append(summary.Recommendations,
			fmt.Sprintf("%d critical conflicts need manual review", critical))
	}
	if major := summary.BySeverity[metadata.SeverityMajor]; major > 0 {
		summary.Recommendations = append(summary.Recommendations,
			fmt.Sprintf("%d major conflicts should be reviewed before applying", major))
	}
	if auto := len(summary.AutoResolvable); auto > 0 {
		summary.Recommendations = append(summary.Recommendations,
			fmt.Sprintf("%d conflicts resolve automatically via normalization rules", auto))
	}
	if summary.Total == 0 {
		summary.Recommendations = append(summary.Recommendations, "sources agree; safe to auto-apply")
	}

	return summary
}
