// Package coordinator fans a search query out to selected providers
// concurrently and merges their answers into one deduplicated, sorted list.
package coordinator

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openshelf/enricher/internal/metadata"
	"github.com/openshelf/enricher/internal/perfmon"
	"github.com/openshelf/enricher/internal/providers"
	"github.com/openshelf/enricher/internal/ratelimit"
	"github.com/openshelf/enricher/internal/retry"
	"github.com/openshelf/enricher/internal/similarity"
)

// ProviderOutcome reports one provider's result for diagnostics. Outcomes
// are ordered by call issuance, not completion.
type ProviderOutcome struct {
	Name     string            `json:"name" yaml:"name"`
	Success  bool              `json:"success" yaml:"success"`
	Duration time.Duration     `json:"duration" yaml:"duration"`
	Records  []metadata.Record `json:"records,omitempty" yaml:"records,omitempty"`
	Error    string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// QueryResult is the aggregate of one fan-out.
type QueryResult struct {
	AggregatedRecords []metadata.Record `json:"aggregated_records" yaml:"aggregatedrecords"`
	Providers         []ProviderOutcome `json:"providers" yaml:"providers"`
	TotalRecords      int               `json:"total_records" yaml:"totalrecords"`
	TotalDuration     time.Duration     `json:"total_duration" yaml:"totalduration"`
}

// Coordinator gates each provider call with the shared rate limiter and the
// retry policy, and reports timings to the performance monitor.
type Coordinator struct {
	limiter       *ratelimit.Limiter
	policy        retry.Policy
	monitor       *perfmon.Monitor
	maxConcurrent int
}

// New builds a coordinator. monitor may be nil.
func New(limiter *ratelimit.Limiter, policy retry.Policy, monitor *perfmon.Monitor) *Coordinator {
	return &Coordinator{
		limiter:       limiter,
		policy:        policy,
		monitor:       monitor,
		maxConcurrent: 8,
	}
}

// Query issues the search to every provider concurrently. Provider failures
// are isolated: they appear in the outcome list and never abort siblings.
func (c *Coordinator) Query(ctx context.Context, selected []providers.SearchProvider, query metadata.SearchQuery) QueryResult {
	start := time.Now()
	outcomes := make([]ProviderOutcome, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)

	for i, p := range selected {
		g.Go(func() error {
			outcomes[i] = c.queryProvider(gctx, p, query)
			return nil
		})
	}
	// Goroutines only write their own outcome slot and never return errors.
	_ = g.Wait()

	result := QueryResult{
		Providers:     outcomes,
		TotalDuration: time.Since(start),
	}
	result.AggregatedRecords = aggregate(outcomes)
	result.TotalRecords = len(result.AggregatedRecords)

	slog.Debug("query complete",
		"providers", len(selected),
		"records", result.TotalRecords,
		"duration", result.TotalDuration)

	return result
}

func (c *Coordinator) queryProvider(ctx context.Context, p providers.SearchProvider, query metadata.SearchQuery) ProviderOutcome {
	outcome := ProviderOutcome{Name: p.Name()}
	operation := operationFor(query)
	start := time.Now()

	if err := c.limiter.WaitForSlot(ctx, p.Name()); err != nil {
		outcome.Duration = time.Since(start)
		outcome.Error = err.Error()
		return outcome
	}

	records, err := retry.Do(ctx, c.policy, p.Name()+"."+operation, func(ctx context.Context) ([]metadata.Record, error) {
		callCtx := ctx
		if timeout := p.Timeout(); timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return dispatch(callCtx, p, operation, query)
	})

	outcome.Duration = time.Since(start)
	if c.monitor != nil {
		c.monitor.Observe(p.Name(), operation, outcome.Duration, err == nil)
	}

	if err != nil {
		slog.Warn("provider query failed", "provider", p.Name(), "operation", operation, "error", err)
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Success = true
	outcome.Records = records
	return outcome
}

// operationFor picks the narrowest provider operation the query supports.
func operationFor(query metadata.SearchQuery) string {
	switch {
	case query.ISBN != "" && query.Title == "" && len(query.Authors) == 0:
		return "isbn"
	case query.Title != "" && query.ISBN == "" && len(query.Authors) == 0 &&
		query.Publisher == "" && len(query.Subjects) == 0:
		return "title"
	case len(query.Authors) > 0 && query.Title == "" && query.ISBN == "" &&
		query.Publisher == "" && len(query.Subjects) == 0:
		return "creator"
	default:
		return "multi"
	}
}

func dispatch(ctx context.Context, p providers.SearchProvider, operation string, query metadata.SearchQuery) ([]metadata.Record, error) {
	switch operation {
	case "isbn":
		return p.SearchByISBN(ctx, query.ISBN)
	case "title":
		return p.SearchByTitle(ctx, query.Title)
	case "creator":
		return p.SearchByCreator(ctx, query.Authors[0])
	default:
		return p.SearchByMultiCriteria(ctx, query)
	}
}

// aggregate unions successful results, drops records whose normalized
// title+authors key was already seen (first seen wins), and sorts by
// descending confidence.
func aggregate(outcomes []ProviderOutcome) []metadata.Record {
	seen := make(map[string]bool)
	var merged []metadata.Record

	for _, outcome := range outcomes {
		if !outcome.Success {
			continue
		}
		for _, record := range outcome.Records {
			key := dedupKey(record)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, record)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})
	return merged
}

func dedupKey(record metadata.Record) string {
	authors := make([]string, 0, len(record.Authors))
	for _, author := range record.Authors {
		authors = append(authors, similarity.NormalizeText(author))
	}
	sort.Strings(authors)
	return similarity.NormalizeText(record.Title) + "|" + strings.Join(authors, ";")
}
