package metadata

import "time"

// ReconciledField is the merged result for one semantic field: the winning
// value, how certain the engine is about it, which sources contributed, and
// a human-readable account of why this value won.
type ReconciledField[T any] struct {
	Value      T          `json:"value" yaml:"value"`
	Confidence float64    `json:"confidence" yaml:"confidence"`
	Sources    []Source   `json:"sources" yaml:"sources"`
	Reasoning  string     `json:"reasoning" yaml:"reasoning"`
	Conflicts  []Conflict `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
}

// ConflictType classifies how sources disagree about a field.
type ConflictType string

const (
	ConflictValueMismatch          ConflictType = "value_mismatch"
	ConflictFormatDifference       ConflictType = "format_difference"
	ConflictPrecisionDifference    ConflictType = "precision_difference"
	ConflictCompletenessDifference ConflictType = "completeness_difference"
	ConflictQualityDifference      ConflictType = "quality_difference"
	ConflictTemporalDifference     ConflictType = "temporal_difference"
	ConflictSourceDisagreement     ConflictType = "source_disagreement"
	ConflictNormalization          ConflictType = "normalization_conflict"
)

// Severity grades a conflict. It is derived from the numeric disagreement,
// never assigned ad hoc.
type Severity string

const (
	SeverityCritical      Severity = "critical"
	SeverityMajor         Severity = "major"
	SeverityMinor         Severity = "minor"
	SeverityInformational Severity = "informational"
)

// ConflictValue is one source's contested claim.
type ConflictValue struct {
	Value  any    `json:"value" yaml:"value"`
	Source string `json:"source" yaml:"source"`
}

// Impact estimates how much a conflict matters downstream.
type Impact struct {
	Score         float64  `json:"score" yaml:"score"`
	AffectedAreas []string `json:"affected_areas,omitempty" yaml:"affectedareas,omitempty"`
}

// Detection records how a conflict was found.
type Detection struct {
	Method     string    `json:"method" yaml:"method"`
	Threshold  float64   `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	DetectedAt time.Time `json:"detected_at" yaml:"detectedat"`
}

// Conflict is a typed disagreement between sources over one field.
type Conflict struct {
	Type                  ConflictType    `json:"type" yaml:"type"`
	Severity              Severity        `json:"severity" yaml:"severity"`
	Field                 string          `json:"field" yaml:"field"`
	Values                []ConflictValue `json:"values" yaml:"values"`
	Explanation           string          `json:"explanation" yaml:"explanation"`
	Resolution            string          `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	ResolutionSuggestions []string        `json:"resolution_suggestions,omitempty" yaml:"resolutionsuggestions,omitempty"`
	AutoResolvable        bool            `json:"auto_resolvable" yaml:"autoresolvable"`
	Impact                Impact          `json:"impact" yaml:"impact"`
	Detection             Detection       `json:"detection" yaml:"detection"`
}
