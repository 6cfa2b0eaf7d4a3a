package reconcile

import (
	"fmt"

	"github.com/openshelf/enricher/internal/metadata"
	"github.com/openshelf/enricher/internal/normalize"
)

// ReconcileDate merges publication-date claims. The most specific date
// wins; among equally specific dates the more reliable source wins.
func (r *Reconciler) ReconcileDate(inputs []Input[metadata.PublicationDate]) metadata.ReconciledField[metadata.PublicationDate] {
	var kept []Input[metadata.PublicationDate]
	for _, in := range inputs {
		if in.Value.Precision != metadata.PrecisionNone {
			kept = append(kept, in)
		}
	}
	if len(kept) == 0 {
		return metadata.ReconciledField[metadata.PublicationDate]{
			Reasoning: "no source supplied a parseable publication date",
		}
	}

	chosen := kept[0]
	for _, in := range kept[1:] {
		switch {
		case in.Value.Precision > chosen.Value.Precision:
			chosen = in
		case in.Value.Precision == chosen.Value.Precision &&
			in.Source.Reliability > chosen.Source.Reliability:
			chosen = in
		}
	}

	agreeing := 0
	for _, in := range kept {
		if in.Value.SameMoment(chosen.Value) {
			agreeing++
		}
	}
	disagreeing := len(kept) - agreeing

	confidence := consensusConfidence(chosen.Source.Reliability, agreeing)
	confidence = clamp01(confidence - disagreementPenalty*float64(disagreeing))

	var agreeingSources []Input[metadata.PublicationDate]
	for _, in := range kept {
		if in.Value.SameMoment(chosen.Value) {
			agreeingSources = append(agreeingSources, in)
		}
	}

	reasoning := fmt.Sprintf("most specific date (%s precision) from %s; %d of %d sources agree",
		chosen.Value.Precision, chosen.Source.Name, agreeing, len(kept))

	return metadata.ReconciledField[metadata.PublicationDate]{
		Value:      chosen.Value,
		Confidence: confidence,
		Sources:    sourcesOf(agreeingSources),
		Reasoning:  reasoning,
		Conflicts:  r.detector.DetectDates("publication_date", chosen.Value, kept),
	}
}

// ReconcilePublisher merges publisher names. Names are normalized (legal
// suffixes, "The" prefix, ampersands, regional qualifiers) before
// comparison so equivalent names collapse to one canonical form.
func (r *Reconciler) ReconcilePublisher(inputs []Input[string]) metadata.ReconciledField[string] {
	return r.reconcileString("publisher", inputs, normalize.Publisher)
}

// ReconcilePlace merges publication places using place normalization.
func (r *Reconciler) ReconcilePlace(inputs []Input[string]) metadata.ReconciledField[string] {
	return r.reconcileString("publication_place", inputs, normalize.Place)
}
