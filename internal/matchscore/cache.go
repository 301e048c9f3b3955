package matchscore

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	score   int
	expires time.Time
}

// CachingScorer wraps another Scorer with a TTL-based in-memory cache keyed
// by the image pair.
type CachingScorer struct {
	base Scorer
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingScorer returns a Scorer that caches scores for the provided TTL.
func NewCachingScorer(base Scorer, ttl time.Duration) *CachingScorer {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingScorer{
		base:  base,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// Score returns a cached score when available, otherwise it delegates to the
// underlying scorer and stores the result.
func (c *CachingScorer) Score(ctx context.Context, image1, image2 string) (int, error) {
	if c == nil || c.base == nil {
		return 0, ErrScorerUnavailable
	}

	key := image1 + "\x00" + image2
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.score, nil
	}

	score, err := c.base.Score(ctx, image1, image2)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.items[key] = cacheEntry{score: score, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return score, nil
}
