// Package engine wires the registry, rate limiter, retry policy,
// performance monitor, coordinator, reconciler, and duplicate detector
// behind the three operations the engine exposes.
package engine

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/openshelf/enricher/internal/catalog"
	"github.com/openshelf/enricher/internal/config"
	"github.com/openshelf/enricher/internal/coordinator"
	"github.com/openshelf/enricher/internal/dupdetect"
	"github.com/openshelf/enricher/internal/metadata"
	"github.com/openshelf/enricher/internal/perfmon"
	"github.com/openshelf/enricher/internal/providers"
	"github.com/openshelf/enricher/internal/ratelimit"
	"github.com/openshelf/enricher/internal/reconcile"
	"github.com/openshelf/enricher/internal/retry"
	"github.com/openshelf/enricher/internal/selection"
)

// Engine is the metadata discovery and reconciliation engine. Construct
// one per process and share it; all operations are safe for concurrent use.
type Engine struct {
	cfg         config.Config
	registry    *providers.Registry
	limiter     *ratelimit.Limiter
	monitor     *perfmon.Monitor
	selector    *selection.Selector
	coordinator *coordinator.Coordinator
	reconciler  *reconcile.Reconciler
	duplicates  *dupdetect.Detector
}

// New builds an engine with the built-in providers registered, applying
// per-provider configuration overrides. metrics may be nil to skip
// Prometheus registration.
func New(cfg config.Config, metrics prometheus.Registerer) *Engine {
	registry := providers.NewRegistry()
	registry.Register(providers.NewGoogleBooks())
	registry.Register(providers.NewOpenLibrary())

	limiter := ratelimit.NewLimiter()
	for _, name := range registry.Names() {
		p, err := registry.Get(name)
		if err != nil {
			continue
		}
		rl := p.RateLimit()
		if override, ok := cfg.Providers[name]; ok {
			if override.RateLimit.MaxRequests > 0 {
				rl = override.RateLimit
			}
			if override.Enabled != nil && !*override.Enabled {
				if err := registry.SetEnabled(name, false); err != nil {
					slog.Warn("failed to disable provider", "provider", name, "error", err)
				}
			}
		}
		limiter.Configure(name, rl)
	}

	monitor := perfmon.NewMonitor(metrics)

	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
	}

	return &Engine{
		cfg:         cfg,
		registry:    registry,
		limiter:     limiter,
		monitor:     monitor,
		selector:    selection.NewSelector(monitor),
		coordinator: coordinator.New(limiter, policy, monitor),
		reconciler:  reconcile.New(reconcile.NewDetector(cfg.Conflicts)),
		duplicates:  dupdetect.NewDetector(cfg.Duplicates),
	}
}

// Registry exposes the provider registry for enable/disable and listing.
func (e *Engine) Registry() *providers.Registry { return e.registry }

// Query selects providers per the strategy and options, fans the search
// out, and returns the deduplicated aggregate with per-provider outcomes.
// Provider failures never surface as an error; they appear only in the
// outcome list.
func (e *Engine) Query(ctx context.Context, query metadata.SearchQuery, strategy selection.Strategy, opts selection.Options) coordinator.QueryResult {
	selected := e.selector.Select(e.registry.Enabled(), query, strategy, opts)

	names := make([]string, 0, len(selected))
	for _, p := range selected {
		names = append(names, p.Name())
	}
	slog.Info("querying providers", "strategy", string(strategy), "providers", names)

	return e.coordinator.Query(ctx, selected, query)
}

// Reconcile merges raw records into one preview record with confidence,
// conflicts, and reasoning. Source reliability is taken from each
// provider's title reliability when the provider is registered.
func (e *Engine) Reconcile(records []metadata.Record) reconcile.Result {
	return e.reconciler.Reconcile(records, func(source string) float64 {
		p, err := e.registry.Get(source)
		if err != nil {
			return 0
		}
		return p.ReliabilityScore(metadata.DataTypeTitle)
	})
}

// DetectDuplicates screens a candidate entry against existing catalog
// entries, returning matches above the configured floor sorted by
// descending similarity.
func (e *Engine) DetectDuplicates(candidate catalog.Entry, existing []catalog.Entry) []dupdetect.Match {
	return e.duplicates.DetectDuplicates(candidate, existing)
}
