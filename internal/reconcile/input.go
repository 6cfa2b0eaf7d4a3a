// Package reconcile merges the disagreeing answers of multiple sources
// into single field values with confidence scores, conflict records, and
// human-readable reasoning.
package reconcile

import (
	"math"
	"sort"

	"github.com/openshelf/enricher/internal/metadata"
)

// Input pairs one source's claim about a field with that source's identity.
type Input[T any] struct {
	Value  T
	Source metadata.Source
}

// MaxConsensusConfidence caps the agreement boost so unanimous sources
// never read as certainty.
const MaxConsensusConfidence = 0.98

// ConsensusBoostPerSource is the confidence increment per additional
// agreeing source.
const ConsensusBoostPerSource = 0.05

// consensusConfidence applies the shared aggregation rule: base confidence
// plus a per-source boost for agreement, capped.
func consensusConfidence(base float64, agreeing int) float64 {
	if agreeing < 1 {
		agreeing = 1
	}
	confidence := base + ConsensusBoostPerSource*float64(agreeing-1)
	return math.Min(MaxConsensusConfidence, clamp01(confidence))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// sourcesOf collects the distinct sources behind a set of inputs, most
// reliable first.
func sourcesOf[T any](inputs []Input[T]) []metadata.Source {
	seen := make(map[string]bool, len(inputs))
	var sources []metadata.Source
	for _, in := range inputs {
		if seen[in.Source.Name] {
			continue
		}
		seen[in.Source.Name] = true
		sources = append(sources, in.Source)
	}
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Reliability > sources[j].Reliability
	})
	return sources
}

// mostReliable returns the input whose source has the highest reliability.
func mostReliable[T any](inputs []Input[T]) Input[T] {
	best := inputs[0]
	for _, in := range inputs[1:] {
		if in.Source.Reliability > best.Source.Reliability {
			best = in
		}
	}
	return best
}
