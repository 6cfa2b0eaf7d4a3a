package reconcile

import (
	"testing"

	"github.com/openshelf/enricher/internal/metadata"
	"github.com/openshelf/enricher/internal/normalize"
)

func src(name string, reliability float64) metadata.Source {
	return metadata.Source{Name: name, Reliability: reliability}
}

func stringInput(value, source string, reliability float64) Input[string] {
	return Input[string]{Value: value, Source: src(source, reliability)}
}

func TestSeverityDerivation(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())

	tests := []struct {
		name         string
		disagreement float64
		reliability  float64
		want         metadata.Severity
	}{
		{"total disagreement against unreliable source", 1.0, 0.2, metadata.SeverityCritical},
		{"half disagreement against middling source", 0.5, 0.5, metadata.SeverityMajor},
		{"moderate disagreement against decent source", 0.4, 0.7, metadata.SeverityMinor},
		{"small disagreement against reliable source", 0.3, 0.9, metadata.SeverityInformational},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.severityFor(tt.disagreement, tt.reliability); got != tt.want {
				t.Errorf("severityFor(%.2f, %.2f) = %s, want %s", tt.disagreement, tt.reliability, got, tt.want)
			}
		})
	}
}

func TestDetectStringValueMismatch(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())
	inputs := []Input[string]{
		stringInput("Dune", "openlibrary", 0.9),
		stringInput("Children of Dune", "googlebooks", 0.8),
	}

	conflicts := d.DetectString("title", "Dune", inputs, nil)
	if len(conflicts) != 1 {
		t.Fatalf("len(conflicts) = %d, want 1", len(conflicts))
	}
	c := conflicts[0]
	if c.Type != metadata.ConflictValueMismatch {
		t.Errorf("Type = %s, want %s", c.Type, metadata.ConflictValueMismatch)
	}
	if c.AutoResolvable {
		t.Error("a value mismatch must not be auto-resolvable")
	}
	if c.Explanation == "" || len(c.ResolutionSuggestions) == 0 {
		t.Error("mismatch conflicts need an explanation and suggestions")
	}
	if c.Impact.Score <= 0 {
		t.Error("mismatch conflicts carry a positive impact score")
	}
}

func TestDetectStringFormatDifference(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())
	inputs := []Input[string]{
		stringInput("The Great Gatsby", "openlibrary", 0.9),
		stringInput("the great gatsby!", "googlebooks", 0.85),
	}

	conflicts := d.DetectString("title", "The Great Gatsby", inputs, nil)
	if len(conflicts) != 1 {
		t.Fatalf("len(conflicts) = %d, want 1", len(conflicts))
	}
	c := conflicts[0]
	if c.Type != metadata.ConflictFormatDifference {
		t.Errorf("Type = %s, want %s", c.Type, metadata.ConflictFormatDifference)
	}
	if !c.AutoResolvable {
		t.Error("surface-form differences resolve automatically")
	}
	if c.Severity != metadata.SeverityInformational {
		t.Errorf("Severity = %s, want informational", c.Severity)
	}
}

func TestDetectStringQualityDifference(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())
	inputs := []Input[string]{
		stringInput("Dune", "openlibrary", 0.95),
		stringInput("Dune", "scraper", 0.5),
	}

	conflicts := d.DetectString("title", "Dune", inputs, nil)
	if len(conflicts) != 1 {
		t.Fatalf("len(conflicts) = %d, want 1", len(conflicts))
	}
	if conflicts[0].Type != metadata.ConflictQualityDifference {
		t.Errorf("Type = %s, want %s", conflicts[0].Type, metadata.ConflictQualityDifference)
	}
}

func TestDetectStringAgreementIsQuiet(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())
	inputs := []Input[string]{
		stringInput("Dune", "openlibrary", 0.9),
		stringInput("Dune", "googlebooks", 0.85),
		stringInput("", "sparse", 0.7),
	}

	if conflicts := d.DetectString("title", "Dune", inputs, nil); len(conflicts) != 0 {
		t.Errorf("agreeing sources produced %d conflicts, want 0", len(conflicts))
	}
}

func TestDetectDates(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())
	chosen := normalize.Date("1925-04-10")
	inputs := []Input[metadata.PublicationDate]{
		{Value: normalize.Date("1925-04-10"), Source: src("a", 0.9)},
		{Value: normalize.Date("1925"), Source: src("b", 0.85)},
		{Value: normalize.Date("1926"), Source: src("c", 0.95)},
		{Value: normalize.Date("forthcoming"), Source: src("d", 0.5)},
	}

	conflicts := d.DetectDates("publication_date", chosen, inputs)
	if len(conflicts) != 2 {
		t.Fatalf("len(conflicts) = %d, want 2", len(conflicts))
	}

	precision := conflicts[0]
	if precision.Type != metadata.ConflictPrecisionDifference {
		t.Errorf("first conflict = %s, want precision_difference", precision.Type)
	}
	if !precision.AutoResolvable {
		t.Error("precision differences resolve automatically")
	}

	temporal := conflicts[1]
	if temporal.Type != metadata.ConflictTemporalDifference {
		t.Errorf("second conflict = %s, want temporal_difference", temporal.Type)
	}
	if temporal.AutoResolvable {
		t.Error("a different year never auto-resolves")
	}
}

func TestDetectNumeric(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())
	inputs := []Input[float64]{
		{Value: 320, Source: src("a", 0.9)},
		{Value: 328, Source: src("b", 0.8)}, // within 5% tolerance
		{Value: 412, Source: src("c", 0.7)},
	}

	conflicts := d.DetectNumeric("page_count", 320, inputs)
	if len(conflicts) != 1 {
		t.Fatalf("len(conflicts) = %d, want 1", len(conflicts))
	}
	if conflicts[0].Values[1].Source != "c" {
		t.Errorf("conflicting source = %s, want c", conflicts[0].Values[1].Source)
	}
	if conflicts[0].Detection.Method != "relative_difference" {
		t.Errorf("Detection.Method = %s", conflicts[0].Detection.Method)
	}
}

func TestMaxConflictsPerField(t *testing.T) {
	cfg := DefaultDetectorConfig()
	cfg.MaxConflictsPerField = 1
	d := NewDetector(cfg)

	inputs := []Input[string]{
		stringInput("Dune", "a", 0.9),
		stringInput("Foundation", "b", 0.8),
		stringInput("Hyperion", "c", 0.7),
	}

	if conflicts := d.DetectString("title", "Dune", inputs, nil); len(conflicts) != 1 {
		t.Errorf("len(conflicts) = %d, want 1 (capped)", len(conflicts))
	}

	// Zero means unbounded.
	unbounded := NewDetector(DefaultDetectorConfig())
	if conflicts := unbounded.DetectString("title", "Dune", inputs, nil); len(conflicts) != 2 {
		t.Errorf("len(conflicts) = %d, want 2 (uncapped)", len(conflicts))
	}
}

func TestAnalyzeAllConflicts(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())

	byField := map[string][]metadata.Conflict{
		"title": {
			{Type: metadata.ConflictValueMismatch, Severity: metadata.SeverityCritical, Field: "title", Impact: metadata.Impact{Score: 0.9}},
			{Type: metadata.ConflictFormatDifference, Severity: metadata.SeverityInformational, Field: "title", AutoResolvable: true, Impact: metadata.Impact{Score: 0.05}},
		},
		"publisher": {
			{Type: metadata.ConflictValueMismatch, Severity: metadata.SeverityMajor, Field: "publisher", Impact: metadata.Impact{Score: 0.55}},
		},
	}

	summary := d.AnalyzeAllConflicts(byField)

	if summary.Total != 3 {
		t.Errorf("Total = %d, want 3", summary.Total)
	}
	if summary.BySeverity[metadata.SeverityCritical] != 1 {
		t.Errorf("critical count = %d, want 1", summary.BySeverity[metadata.SeverityCritical])
	}
	if summary.ByField["title"] != 2 {
		t.Errorf("title count = %d, want 2", summary.ByField["title"])
	}
	if len(summary.AutoResolvable) != 1 || len(summary.ManualConflicts) != 2 {
		t.Errorf("auto/manual split = %d/%d, want 1/2", len(summary.AutoResolvable), len(summary.ManualConflicts))
	}
	wantScore := (0.9 + 0.05 + 0.55) / 3
	if diff := summary.OverallScore - wantScore; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("OverallScore = %v, want %v", summary.OverallScore, wantScore)
	}

	foundCritical := false
	for _, rec := range summary.Recommendations {
		if rec == "1 critical conflicts need manual review" {
			foundCritical = true
		}
	}
	if !foundCritical {
		t.Errorf("missing critical-review recommendation, got %v", summary.Recommendations)
	}
}

func TestAnalyzeAllConflictsEmpty(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig())
	summary := d.AnalyzeAllConflicts(map[string][]metadata.Conflict{"title": nil})

	if summary.Total != 0 {
		t.Errorf("Total = %d, want 0", summary.Total)
	}
	if summary.OverallScore != 0 {
		t.Errorf("OverallScore = %v, want 0", summary.OverallScore)
	}
	if len(summary.Recommendations) != 1 || summary.Recommendations[0] != "sources agree; safe to auto-apply" {
		t.Errorf("Recommendations = %v", summary.Recommendations)
	}
}
