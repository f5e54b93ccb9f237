package usda

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/labelpal/backend/internal/domain"
	"github.com/labelpal/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenCache fails every operation
type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("connection reset")
}

func (brokenCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("connection reset")
}

func (brokenCache) Delete(ctx context.Context, key string) error {
	return errors.New("connection reset")
}

func TestCachingGetter(t *testing.T) {
	ctx := context.Background()
	params := url.Values{"query": []string{"bread"}}

	t.Run("second call is served from cache", func(t *testing.T) {
		next := &fakeGetter{body: []byte(`{"foods":[]}`)}
		memory := cache.NewMemoryCache()
		defer memory.Close()
		getter := NewCachingGetter(next, memory, time.Minute, nil)

		first, err := getter.Get(ctx, searchEndpoint, params)
		require.NoError(t, err)
		second, err := getter.Get(ctx, searchEndpoint, params)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, next.calls)
	})

	t.Run("different params miss", func(t *testing.T) {
		next := &fakeGetter{body: []byte(`{}`)}
		memory := cache.NewMemoryCache()
		defer memory.Close()
		getter := NewCachingGetter(next, memory, time.Minute, nil)

		_, _ = getter.Get(ctx, searchEndpoint, url.Values{"query": []string{"bread"}})
		_, _ = getter.Get(ctx, searchEndpoint, url.Values{"query": []string{"butter"}})

		assert.Equal(t, 2, next.calls)
	})

	t.Run("failures are not cached", func(t *testing.T) {
		next := &fakeGetter{err: domain.ErrUSDAAPIFailure}
		memory := cache.NewMemoryCache()
		defer memory.Close()
		getter := NewCachingGetter(next, memory, time.Minute, nil)

		_, err := getter.Get(ctx, "/v1/food/1", url.Values{})
		assert.ErrorIs(t, err, domain.ErrUSDAAPIFailure)

		_, err = memory.Get(ctx, cacheKey("/v1/food/1", url.Values{}))
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("corrupt entries are evicted and refetched", func(t *testing.T) {
		next := &fakeGetter{body: []byte(`{"fdcId":1}`)}
		memory := cache.NewMemoryCache()
		defer memory.Close()
		key := cacheKey("/v1/food/1", url.Values{})
		require.NoError(t, memory.Set(ctx, key, []byte(`{"fdcId":1,"descr`), time.Minute))
		getter := NewCachingGetter(next, memory, time.Minute, nil)

		body, err := getter.Get(ctx, "/v1/food/1", url.Values{})

		require.NoError(t, err)
		assert.JSONEq(t, `{"fdcId":1}`, string(body))
		assert.Equal(t, 1, next.calls)
		cached, err := memory.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `{"fdcId":1}`, string(cached))
	})

	t.Run("non-JSON bodies are passed on but not cached", func(t *testing.T) {
		next := &fakeGetter{body: []byte(`<html>maintenance</html>`)}
		memory := cache.NewMemoryCache()
		defer memory.Close()
		getter := NewCachingGetter(next, memory, time.Minute, nil)

		body, err := getter.Get(ctx, "/v1/food/1", url.Values{})
		require.NoError(t, err)
		assert.Equal(t, `<html>maintenance</html>`, string(body))

		_, err = memory.Get(ctx, cacheKey("/v1/food/1", url.Values{}))
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("cache faults fall through", func(t *testing.T) {
		next := &fakeGetter{body: []byte(`{"fdcId":1}`)}
		getter := NewCachingGetter(next, brokenCache{}, time.Minute, nil)

		body, err := getter.Get(ctx, "/v1/food/1", url.Values{})

		require.NoError(t, err)
		assert.JSONEq(t, `{"fdcId":1}`, string(body))
	})
}

func TestCacheKey(t *testing.T) {
	params := url.Values{}
	params.Set("query", "olive oil")
	params.Add("dataType", "Foundation")

	assert.Equal(t, "fdc:/v1/foods/search?dataType=Foundation&query=olive+oil", cacheKey(searchEndpoint, params))
	assert.NotContains(t, cacheKey(searchEndpoint, params), "api_key")
}
