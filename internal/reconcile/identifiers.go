package reconcile

import (
	"fmt"
	"sort"

	"github.com/openshelf/enricher/internal/metadata"
)

// identifier ordering: ISBNs first, then the rest alphabetically by type.
func identifierRank(t metadata.IdentifierType) int {
	switch t {
	case metadata.IdentifierISBN13:
		return 0
	case metadata.IdentifierISBN10:
		return 1
	default:
		return 2
	}
}

// ReconcileIdentifiers merges identifier claims: identical normalized
// values collapse to one entry, every identifier is format-validated, and
// the output is ordered valid-before-invalid with ISBNs first.
func (r *Reconciler) ReconcileIdentifiers(inputs []Input[metadata.Identifier]) metadata.ReconciledField[[]metadata.Identifier] {
	var kept []Input[metadata.Identifier]
	for _, in := range inputs {
		if in.Value.Normalized != "" {
			kept = append(kept, in)
		}
	}
	if len(kept) == 0 {
		return metadata.ReconciledField[[]metadata.Identifier]{
			Reasoning: "no source supplied identifiers",
		}
	}

	// Collapse identical normalized values. Sources that disagree only on
	// formatting contribute the same normalized identifier.
	byNormalized := make(map[string]Input[metadata.Identifier])
	var order []string
	duplicates := 0
	for _, in := range kept {
		key := string(in.Value.Type) + ":" + in.Value.Normalized
		if existing, ok := byNormalized[key]; ok {
			duplicates++
			if in.Source.Reliability > existing.Source.Reliability {
				byNormalized[key] = in
			}
			continue
		}
		byNormalized[key] = in
		order = append(order, key)
	}

	merged := make([]metadata.Identifier, 0, len(order))
	valid := 0
	for _, key := range order {
		id := byNormalized[key].Value
		merged = append(merged, id)
		if id.Valid {
			valid++
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Valid != b.Valid {
			return a.Valid
		}
		if identifierRank(a.Type) != identifierRank(b.Type) {
			return identifierRank(a.Type) < identifierRank(b.Type)
		}
		return a.Normalized < b.Normalized
	})

	// Validity ratio anchors confidence; corroboration boosts it.
	base := 0.4 + 0.5*float64(valid)/float64(len(merged))
	confidence := consensusConfidence(base, len(sourcesOf(kept)))

	return metadata.ReconciledField[[]metadata.Identifier]{
		Value:      merged,
		Confidence: confidence,
		Sources:    sourcesOf(kept),
		Reasoning: fmt.Sprintf("merged %d identifiers from %d sources (%d duplicate forms collapsed, %d valid)",
			len(merged), len(sourcesOf(kept)), duplicates, valid),
	}
}
