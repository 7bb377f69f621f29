package embeddings

import (
	"context"
	"log/slog"
	"time"

	"job-match/internal/cache"
)

// CachedClient decorates an embedding client with vector memoization.
// Cache failures degrade to provider calls; they never fail the embed.
type CachedClient struct {
	inner Client
	cache cache.Cache
	model string
	ttl   time.Duration
	log   *slog.Logger
}

// NewCachedClient wraps client so vectors for previously seen texts are
// served from the cache instead of the provider.
func NewCachedClient(client Client, c cache.Cache, model string, ttl time.Duration, log *slog.Logger) *CachedClient {
	if log == nil {
		log = slog.Default()
	}
	return &CachedClient{
		inner: client,
		cache: c,
		model: model,
		ttl:   ttl,
		log:   log.With("component", "embedding_cache"),
	}
}

func (c *CachedClient) EmbedOne(ctx context.Context, text string) (Vector, error) {
	key := cache.GenerateKey(c.model, text)
	if vec, err := c.cache.GetVector(ctx, key); err == nil && vec != nil {
		c.log.Debug("embedding cache hit")
		return Vector(vec), nil
	} else if err != nil {
		c.log.Warn("cache read failed", "err", err)
	}

	vec, err := c.inner.EmbedOne(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetVector(ctx, key, vec, c.ttl); err != nil {
		c.log.Warn("cache write failed", "err", err)
	}
	return vec, nil
}

// EmbedMany serves cached texts directly and forwards only the misses to
// the inner client in a single call. Failed items are never cached.
func (c *CachedClient) EmbedMany(ctx context.Context, texts []string) []Result {
	results := make([]Result, len(texts))
	if len(texts) == 0 {
		return results
	}

	var missIdx []int
	var missTexts []string
	for i, t := range texts {
		key := cache.GenerateKey(c.model, t)
		if vec, err := c.cache.GetVector(ctx, key); err == nil && vec != nil {
			results[i] = Result{Vector: Vector(vec)}
			continue
		} else if err != nil {
			c.log.Warn("cache read failed", "err", err)
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}
	if len(missIdx) == 0 {
		c.log.Debug("batch served from cache", "texts", len(texts))
		return results
	}

	fetched := c.inner.EmbedMany(ctx, missTexts)
	if len(fetched) != len(missIdx) {
		for _, i := range missIdx {
			results[i] = Result{Failed: true}
		}
		return results
	}
	for j, i := range missIdx {
		results[i] = fetched[j]
		if fetched[j].Failed {
			continue
		}
		key := cache.GenerateKey(c.model, texts[i])
		if err := c.cache.SetVector(ctx, key, fetched[j].Vector, c.ttl); err != nil {
			c.log.Warn("cache write failed", "err", err)
		}
	}
	return results
}
