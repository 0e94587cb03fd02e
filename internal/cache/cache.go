// Package cache provides the advisory result cache for similarity rankings.
package cache

import (
	"context"
	"fmt"

	"github.com/intellinews/newsrec/internal/models"
)

// keyPrefix namespaces all ranking cache keys; invalidation sweeps this
// prefix wholesale.
const keyPrefix = "rec:"

// Key builds the cache key for one query shape. An empty category filter is
// encoded as "all".
func Key(newsID int64, limit int, categoryFilter string) string {
	if categoryFilter == "" {
		categoryFilter = "all"
	}
	return fmt.Sprintf("%s%d:%d:%s", keyPrefix, newsID, limit, categoryFilter)
}

// ResultCache stores ranked similarity results keyed by query shape. The
// cache is advisory: implementations swallow backend failures, so Get
// degrades to a miss and Set and InvalidateAll to no-ops. A nil result list
// is a valid cached value (an empty ranking).
type ResultCache interface {
	Get(ctx context.Context, key string) ([]models.RecommendedItem, bool)
	Set(ctx context.Context, key string, items []models.RecommendedItem)
	// InvalidateAll removes every cached ranking. Called after each
	// successful index write; coarse-grained by design.
	InvalidateAll(ctx context.Context)
}

// Noop is a ResultCache that caches nothing. Used when caching is disabled.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, string) ([]models.RecommendedItem, bool) { return nil, false }

// Set does nothing.
func (Noop) Set(context.Context, string, []models.RecommendedItem) {}

// InvalidateAll does nothing.
func (Noop) InvalidateAll(context.Context) {}
