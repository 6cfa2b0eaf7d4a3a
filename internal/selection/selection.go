// Package selection chooses which providers to query for a given search
// and in what order.
package selection

import (
	"sort"
	"time"

	"github.com/openshelf/enricher/internal/metadata"
	"github.com/openshelf/enricher/internal/providers"
)

// Strategy names the provider-ordering policies.
type Strategy string

const (
	StrategyAll       Strategy = "all"
	StrategyPriority  Strategy = "priority"
	StrategyFastest   Strategy = "fastest"
	StrategyConsensus Strategy = "consensus"
)

// DefaultConsensusMaxProviders bounds the consensus strategy when the
// caller sets no limit.
const DefaultConsensusMaxProviders = 3

// ConsensusDiversityGap is how much a provider's reliability for some
// relevant field must exceed the best already selected before the provider
// is considered complementary. Pinned by tests; see repo design notes.
const ConsensusDiversityGap = 0.1

// Options filter and bound the selection. MaxProviders semantics: negative
// means unlimited, zero selects nothing.
type Options struct {
	MaxProviders        int
	PreferredLanguages  []string
	RequiredDataTypes   []metadata.DataType
	ExcludeProviders    []string
	MinReliabilityScore float64
}

// DefaultOptions returns the option set used when a caller specifies no
// limit: unlimited for ordering strategies, capped at three for consensus.
func DefaultOptions(strategy Strategy) Options {
	if strategy == StrategyConsensus {
		return Options{MaxProviders: DefaultConsensusMaxProviders}
	}
	return Options{MaxProviders: -1}
}

// LatencyReader supplies historical average call durations for the fastest
// strategy. Providers without history fall back to priority order.
type LatencyReader interface {
	AverageLatency(provider string) (time.Duration, bool)
}

// Selector applies filters and a strategy to the registered provider set.
type Selector struct {
	latency LatencyReader
}

// NewSelector builds a selector. latency may be nil; the fastest strategy
// then degrades to priority order.
func NewSelector(latency LatencyReader) *Selector {
	return &Selector{latency: latency}
}

// Select filters the provider set, orders it per the strategy, and
// truncates to MaxProviders. MaxProviders < 0 means unlimited; 0 yields an
// empty result.
func (s *Selector) Select(all []providers.SearchProvider, query metadata.SearchQuery, strategy Strategy, opts Options) []providers.SearchProvider {
	if opts.MaxProviders == 0 {
		return nil
	}

	filtered := s.filter(all, opts)

	var ordered []providers.SearchProvider
	switch strategy {
	case StrategyFastest:
		ordered = s.orderByLatency(filtered)
	case StrategyConsensus:
		return s.selectConsensus(filtered, query, opts)
	default: // all, priority
		ordered = orderByPriority(filtered)
	}

	if opts.MaxProviders > 0 && len(ordered) > opts.MaxProviders {
		ordered = ordered[:opts.MaxProviders]
	}
	return ordered
}

// filter applies exclusions, required data types, and the reliability
// floor, then reorders (without filtering) by preferred-language overlap.
func (s *Selector) filter(all []providers.SearchProvider, opts Options) []providers.SearchProvider {
	excluded := make(map[string]bool, len(opts.ExcludeProviders))
	for _, name := range opts.ExcludeProviders {
		excluded[name] = true
	}

	var kept []providers.SearchProvider
	for _, p := range all {
		if excluded[p.Name()] {
			continue
		}
		if !supportsAll(p, opts.RequiredDataTypes) {
			continue
		}
		if opts.MinReliabilityScore > 0 && len(opts.RequiredDataTypes) > 0 {
			if averageReliability(p, opts.RequiredDataTypes) < opts.MinReliabilityScore {
				continue
			}
		}
		kept = append(kept, p)
	}

	if len(opts.PreferredLanguages) > 0 {
		sort.SliceStable(kept, func(i, j int) bool {
			return languageOverlap(kept[i], opts.PreferredLanguages) > languageOverlap(kept[j], opts.PreferredLanguages)
		})
	}
	return kept
}

func supportsAll(p providers.SearchProvider, types []metadata.DataType) bool {
	for _, t := range types {
		if !p.SupportsDataType(t) {
			return false
		}
	}
	return true
}

func averageReliability(p providers.SearchProvider, types []metadata.DataType) float64 {
	if len(types) == 0 {
		return 0
	}
	total := 0.0
	for _, t := range types {
		total += p.ReliabilityScore(t)
	}
	return total / float64(len(types))
}

func languageOverlap(p providers.SearchProvider, preferred []string) int {
	supported := make(map[string]bool)
	for _, lang := range p.SupportedLanguages() {
		supported[lang] = true
	}
	overlap := 0
	for _, lang := range preferred {
		if supported[lang] {
			overlap++
		}
	}
	return overlap
}

func orderByPriority(ps []providers.SearchProvider) []providers.SearchProvider {
	ordered := append([]providers.SearchProvider(nil), ps...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() > ordered[j].Priority()
	})
	return ordered
}

func (s *Selector) orderByLatency(ps []providers.SearchProvider) []providers.SearchProvider {
	// Providers with history come first, fastest to slowest; the rest keep
	// priority order behind them.
	var measured, unmeasured []providers.SearchProvider
	latencies := make(map[string]time.Duration)

	for _, p := range ps {
		if s.latency != nil {
			if avg, ok := s.latency.AverageLatency(p.Name()); ok {
				latencies[p.Name()] = avg
				measured = append(measured, p)
				continue
			}
		}
		unmeasured = append(unmeasured, p)
	}

	sort.SliceStable(measured, func(i, j int) bool {
		return latencies[measured[i].Name()] < latencies[measured[j].Name()]
	})
	return append(measured, orderByPriority(unmeasured)...)
}

// selectConsensus scores providers by average reliability across the
// query's relevant field types, always takes the best, then greedily adds
// providers that beat the selected set's best reliability for some relevant
// type by more than the diversity gap. May select fewer than the limit;
// quality over quantity.
func (s *Selector) selectConsensus(ps []providers.SearchProvider, query metadata.SearchQuery, opts Options) []providers.SearchProvider {
	maxProviders := opts.MaxProviders
	if maxProviders < 0 {
		maxProviders = DefaultConsensusMaxProviders
	}
	if len(ps) == 0 || maxProviders == 0 {
		return nil
	}

	relevant := query.RelevantTypes()

	candidates := append([]providers.SearchProvider(nil), ps...)
	sort.SliceStable(candidates, func(i, j int) bool {
		return averageReliability(candidates[i], relevant) > averageReliability(candidates[j], relevant)
	})

	selected := []providers.SearchProvider{candidates[0]}
	bestByType := make(map[metadata.DataType]float64, len(relevant))
	for _, t := range relevant {
		bestByType[t] = candidates[0].ReliabilityScore(t)
	}

	for _, candidate := range candidates[1:] {
		if len(selected) >= maxProviders {
			break
		}
		complementary := false
		for _, t := range relevant {
			if candidate.ReliabilityScore(t) > bestByType[t]+ConsensusDiversityGap {
				complementary = true
				break
			}
		}
		if !complementary {
			continue
		}
		selected = append(selected, candidate)
		for _, t := range relevant {
			if score := candidate.ReliabilityScore(t); score > bestByType[t] {
				bestByType[t] = score
			}
		}
	}

	return selected
}
