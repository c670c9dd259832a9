package upstream

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// DefaultTrendingQueries is the rotation used for the trending surface
// when no custom list is configured.
var DefaultTrendingQueries = []string{
	"trending music",
	"top hits",
	"new music this week",
	"popular songs",
	"viral songs",
}

// seedPicker rotates through trending seed queries. With a non-zero
// seed the rotation is reproducible across restarts.
type seedPicker struct {
	queries []string

	mu  sync.Mutex
	rng *rand.Rand
}

func newSeedPicker(queries []string, seed int64) *seedPicker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &seedPicker{
		queries: queries,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (p *seedPicker) pick() string {
	if len(p.queries) == 0 {
		return ""
	}
	if len(p.queries) == 1 {
		return p.queries[0]
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queries[p.rng.Intn(len(p.queries))]
}

// Trending returns up to limit currently popular items. The surface is
// backed by search over a rotating seed query, so consecutive calls may
// answer from different seeds.
func (c *Client) Trending(ctx context.Context, limit int) ([]SearchResult, error) {
	query := c.seeds.pick()
	if query == "" {
		return nil, &ValidationError{Field: "trending_queries", Message: "no trending seed queries configured"}
	}
	results, err := c.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("trending served", "seed_query", query, "results", len(results))
	return results, nil
}
