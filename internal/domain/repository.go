package domain

import (
	"context"
	"net/url"
	"time"
)

// CacheRepository defines the interface for caching raw upstream bodies
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// FoodDataGetter is the outbound HTTP GET capability used to reach the
// food database. endpoint is relative to the configured base URL.
type FoodDataGetter interface {
	Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error)
}

// FoodLookup defines the fail-soft lookups against USDA FoodData Central.
// Implementations never return remote errors: a failed search is an empty
// slice and a failed detail fetch is nil.
type FoodLookup interface {
	SearchFood(ctx context.Context, query string, pageSize int) []FoodSearchResult
	GetFoodDetails(ctx context.Context, fdcID int) *FoodDetail
}

// TextRepository stores free-form text submitted by clients
type TextRepository interface {
	Save(text string) (string, error)
}
