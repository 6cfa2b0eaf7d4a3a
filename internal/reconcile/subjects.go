package reconcile

import (
	"fmt"
	"sort"

	"github.com/openshelf/enricher/internal/metadata"
	"github.com/openshelf/enricher/internal/similarity"
)

// SubjectDedupThreshold is the similarity at or above which two normalized
// subjects count as the same heading.
const SubjectDedupThreshold = 0.9

// ReconcileSubjects merges per-source subject claims: near-duplicate
// headings collapse (the entry from the more reliable source survives),
// output is ordered subject > genre > keyword > tag, and confidence grows
// with coverage and the presence of classification codes.
func (r *Reconciler) ReconcileSubjects(inputs []Input[metadata.Subject]) metadata.ReconciledField[[]metadata.Subject] {
	var kept []Input[metadata.Subject]
	for _, in := range inputs {
		if in.Value.Normalized != "" {
			kept = append(kept, in)
		}
	}
	if len(kept) == 0 {
		return metadata.ReconciledField[[]metadata.Subject]{
			Reasoning: "no source supplied subjects",
		}
	}

	// Deduplicate by similarity, keeping the entry backed by the more
	// reliable source.
	var merged []Input[metadata.Subject]
	for _, in := range kept {
		replaced := false
		duplicate := false
		for i, existing := range merged {
			if similarity.String(in.Value.Normalized, existing.Value.Normalized) >= SubjectDedupThreshold {
				duplicate = true
				if in.Source.Reliability > existing.Source.Reliability {
					merged[i] = in
					replaced = true
				}
				break
			}
		}
		if !duplicate && !replaced {
			merged = append(merged, in)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i].Value, merged[j].Value
		if a.Kind.Rank() != b.Kind.Rank() {
			return a.Kind.Rank() < b.Kind.Rank()
		}
		return a.Normalized < b.Normalized
	})

	subjects := make([]metadata.Subject, 0, len(merged))
	coded := 0
	for _, in := range merged {
		subjects = append(subjects, in.Value)
		if in.Value.Code != "" {
			coded++
		}
	}

	// Confidence grows with subject coverage and classification codes.
	base := 0.5 + 0.04*float64(len(subjects))
	if base > 0.8 {
		base = 0.8
	}
	if coded > 0 {
		base += 0.1
	}
	confidence := consensusConfidence(base, len(sourcesOf(kept)))

	reasoning := fmt.Sprintf("merged %d subjects from %d sources (%d duplicates collapsed)",
		len(subjects), len(sourcesOf(kept)), len(kept)-len(merged))
	if coded > 0 {
		reasoning += fmt.Sprintf("; %d carry classification codes", coded)
	}

	return metadata.ReconciledField[[]metadata.Subject]{
		Value:      subjects,
		Confidence: confidence,
		Sources:    sourcesOf(kept),
		Reasoning:  reasoning,
	}
}
