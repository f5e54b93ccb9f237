package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/labelpal/backend/config"
	"github.com/labelpal/backend/internal/infrastructure/usda"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "0",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:3000"},
			SaveDir:        t.TempDir(),
		},
		USDA: config.USDAConfig{
			APIKey:   "test-api-key",
			BaseURL:  baseURL,
			Timeout:  time.Second,
			PageSize: 5,
		},
		Cache:     config.CacheConfig{Type: "none", TTL: time.Minute},
		RateLimit: config.RateLimitConfig{USDA: 3600},
	}
}

func TestNew_CacheSelection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var upstreamCalls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls.Add(1)
		w.Write([]byte(`{"foods":[{"fdcId":1,"description":"Rice, white"}]}`))
	}))
	defer upstream.Close()

	tests := []struct {
		name      string
		cacheType string
		wantCalls int32
	}{
		{"no cache", "none", 2},
		{"memory cache", "memory", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstreamCalls.Store(0)
			cfg := testConfig(t, upstream.URL)
			cfg.Cache.Type = tt.cacheType

			a, err := New(context.Background(), cfg, zap.NewNop())
			require.NoError(t, err)
			defer a.Close()

			for i := 0; i < 2; i++ {
				results, err := a.Recipes.SearchFoodsByName(context.Background(), "rice")
				require.NoError(t, err)
				require.Len(t, results, 1)
				assert.Equal(t, 1, results[0].FdcID)
				assert.Equal(t, "Rice, white", results[0].Description)
			}
			assert.Equal(t, tt.wantCalls, upstreamCalls.Load())
		})
	}
}

func TestNew_RedisUnavailable(t *testing.T) {
	cfg := testConfig(t, usda.DefaultBaseURL)
	cfg.Cache.Type = "redis"
	cfg.Cache.RedisURL = "redis://127.0.0.1:1/0?dial_timeout=200ms&max_retries=-1"

	a, err := New(context.Background(), cfg, nil)

	assert.Nil(t, a)
	assert.ErrorContains(t, err, "failed to initialize redis cache")
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, err := New(context.Background(), testConfig(t, usda.DefaultBaseURL), nil)
	require.NoError(t, err)
	defer a.Close()

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest("GET", "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServe_StopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, err := New(context.Background(), testConfig(t, usda.DefaultBaseURL), nil)
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestClose_Idempotent(t *testing.T) {
	cfg := testConfig(t, usda.DefaultBaseURL)
	cfg.Cache.Type = "memory"

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}
