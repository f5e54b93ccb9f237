package usda

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/labelpal/backend/internal/domain"
	"go.uber.org/zap"
)

// CachingGetter serves repeated GETs from a cache. Only successful JSON
// bodies are stored. Cache faults are logged and fall through to the next
// getter, and a stored body that is no longer valid JSON is evicted.
type CachingGetter struct {
	next   domain.FoodDataGetter
	cache  domain.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachingGetter wraps next with cache
func NewCachingGetter(next domain.FoodDataGetter, cache domain.CacheRepository, ttl time.Duration, logger *zap.Logger) *CachingGetter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingGetter{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("cache"),
	}
}

// Get implements domain.FoodDataGetter
func (g *CachingGetter) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	key := cacheKey(endpoint, params)

	body, err := g.cache.Get(ctx, key)
	switch {
	case err == nil && json.Valid(body):
		cacheHits.Inc()
		return body, nil
	case err == nil:
		g.logger.Warn("evicting corrupt cache entry", zap.String("key", key), zap.Int("bytes", len(body)))
		if err := g.cache.Delete(ctx, key); err != nil {
			g.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
		}
	case !errors.Is(err, domain.ErrCacheMiss):
		g.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	cacheMisses.Inc()

	body, err = g.next.Get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return body, nil
	}
	if err := g.cache.Set(ctx, key, body, g.ttl); err != nil {
		g.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}

	return body, nil
}

// cacheKey identifies a request. The API key is added later by the
// transport and never takes part in the key.
func cacheKey(endpoint string, params url.Values) string {
	return "fdc:" + endpoint + "?" + params.Encode()
}
