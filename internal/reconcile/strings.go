package reconcile

import (
	"fmt"
	"sort"

	"github.com/openshelf/enricher/internal/metadata"
	"github.com/openshelf/enricher/internal/similarity"
)

// stringCluster groups near-identical claims so voting happens over logical
// values rather than surface forms.
type stringCluster struct {
	inputs      []Input[string]
	reliability float64
}

// reconcileString merges free-text claims for one field. Values are
// clustered by similarity, the cluster with the most reliability weight
// behind it wins, and its most reliable member supplies the surface form.
func (r *Reconciler) reconcileString(field string, inputs []Input[string], normalize func(string) string) metadata.ReconciledField[string] {
	inputs = nonEmpty(inputs)
	if len(inputs) == 0 {
		return metadata.ReconciledField[string]{
			Reasoning: fmt.Sprintf("no source supplied a %s", field),
		}
	}

	clusters := clusterStrings(inputs, r.detector.cfg.StringSimilarityThreshold, normalize)

	winner := clusters[0]
	for _, c := range clusters[1:] {
		if c.reliability > winner.reliability {
			winner = c
		}
	}

	chosen := mostReliable(winner.inputs)
	disagreeing := len(inputs) - len(winner.inputs)

	confidence := consensusConfidence(chosen.Source.Reliability, len(winner.inputs))
	confidence = clamp01(confidence - disagreementPenalty*float64(disagreeing))

	reasoning := fmt.Sprintf("%d of %d sources agree; value taken from %s (reliability %.2f)",
		len(winner.inputs), len(inputs), chosen.Source.Name, chosen.Source.Reliability)
	if disagreeing == 0 && len(inputs) > 1 {
		reasoning = fmt.Sprintf("all %d sources agree; value taken from %s", len(inputs), chosen.Source.Name)
	} else if len(inputs) == 1 {
		reasoning = fmt.Sprintf("single source %s (reliability %.2f)", chosen.Source.Name, chosen.Source.Reliability)
	}

	return metadata.ReconciledField[string]{
		Value:      chosen.Value,
		Confidence: confidence,
		Sources:    sourcesOf(winner.inputs),
		Reasoning:  reasoning,
		Conflicts:  r.detector.DetectString(field, chosen.Value, inputs, normalize),
	}
}

// disagreementPenalty is subtracted per dissenting source so conflicting
// inputs can only lower confidence.
const disagreementPenalty = 0.1

func clusterStrings(inputs []Input[string], threshold float64, normalize func(string) string) []stringCluster {
	canon := func(s string) string {
		if normalize != nil {
			return normalize(s)
		}
		return s
	}

	var clusters []stringCluster
	for _, in := range inputs {
		placed := false
		for i := range clusters {
			representative := clusters[i].inputs[0]
			if canon(in.Value) == canon(representative.Value) ||
				similarity.String(canon(in.Value), canon(representative.Value)) >= threshold {
				clusters[i].inputs = append(clusters[i].inputs, in)
				clusters[i].reliability += in.Source.Reliability
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, stringCluster{
				inputs:      []Input[string]{in},
				reliability: in.Source.Reliability,
			})
		}
	}
	return clusters
}

func nonEmpty(inputs []Input[string]) []Input[string] {
	var kept []Input[string]
	for _, in := range inputs {
		if in.Value != "" {
			kept = append(kept, in)
		}
	}
	return kept
}

// reconcileStringArray merges per-source string lists (authors). The list
// carrying the most reliability weight wins; strict subsets of the winner
// are reported as completeness differences.
func (r *Reconciler) reconcileStringArray(field string, inputs []Input[[]string]) metadata.ReconciledField[[]string] {
	var kept []Input[[]string]
	for _, in := range inputs {
		if len(in.Value) > 0 {
			kept = append(kept, in)
		}
	}
	if len(kept) == 0 {
		return metadata.ReconciledField[[]string]{
			Reasoning: fmt.Sprintf("no source supplied %s", field),
		}
	}

	// Cluster lists that describe the same set.
	type arrayCluster struct {
		inputs      []Input[[]string]
		reliability float64
	}
	var clusters []arrayCluster
	for _, in := range kept {
		placed := false
		for i := range clusters {
			if similarity.StringSet(in.Value, clusters[i].inputs[0].Value) >= r.detector.cfg.StringSimilarityThreshold {
				clusters[i].inputs = append(clusters[i].inputs, in)
				clusters[i].reliability += in.Source.Reliability
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, arrayCluster{inputs: []Input[[]string]{in}, reliability: in.Source.Reliability})
		}
	}

	winner := clusters[0]
	for _, c := range clusters[1:] {
		if c.reliability > winner.reliability {
			winner = c
		}
	}

	// The longest list in the winning cluster is the most complete claim.
	chosen := winner.inputs[0]
	for _, in := range winner.inputs[1:] {
		if len(in.Value) > len(chosen.Value) ||
			(len(in.Value) == len(chosen.Value) && in.Source.Reliability > chosen.Source.Reliability) {
			chosen = in
		}
	}

	disagreeing := len(kept) - len(winner.inputs)
	confidence := consensusConfidence(chosen.Source.Reliability, len(winner.inputs))
	confidence = clamp01(confidence - disagreementPenalty*float64(disagreeing))

	conflicts := r.detector.DetectArrays(field, kept)
	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].Impact.Score > conflicts[j].Impact.Score
	})

	return metadata.ReconciledField[[]string]{
		Value:      chosen.Value,
		Confidence: confidence,
		Sources:    sourcesOf(winner.inputs),
		Reasoning: fmt.Sprintf("%d of %d sources agree on the %s list; most complete version from %s",
			len(winner.inputs), len(kept), field, chosen.Source.Name),
		Conflicts: conflicts,
	}
}
