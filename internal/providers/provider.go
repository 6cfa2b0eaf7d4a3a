// Package providers defines the capability interface external metadata
// sources implement, plus the registry that holds configured providers.
package providers

import (
	"context"
	"time"

	"github.com/openshelf/enricher/internal/metadata"
	"github.com/openshelf/enricher/internal/ratelimit"
)

// SearchProvider adapts one external data source. Implementations describe
// their own capabilities so selection strategies can choose among them.
type SearchProvider interface {
	Name() string

	// Priority orders providers under the priority/all strategies.
	// Higher is preferred.
	Priority() int

	SupportsDataType(t metadata.DataType) bool

	// ReliabilityScore reports how trustworthy this source is for one
	// field type, in [0,1]. Unsupported types score 0.
	ReliabilityScore(t metadata.DataType) float64

	SupportedLanguages() []string

	RateLimit() ratelimit.Config
	Timeout() time.Duration

	SearchByTitle(ctx context.Context, title string) ([]metadata.Record, error)
	SearchByISBN(ctx context.Context, isbn string) ([]metadata.Record, error)
	SearchByCreator(ctx context.Context, creator string) ([]metadata.Record, error)
	SearchByMultiCriteria(ctx context.Context, query metadata.SearchQuery) ([]metadata.Record, error)
}
