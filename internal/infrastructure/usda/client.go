package usda

import (
	"context"
	"net/url"
	"strconv"

	"github.com/labelpal/backend/internal/domain"
	"go.uber.org/zap"
)

const (
	// DefaultPageSize is the number of search hits requested per query
	DefaultPageSize = 5

	searchEndpoint     = "/v1/foods/search"
	foodEndpointPrefix = "/v1/food/"
)

// searchDataTypes restricts searches to generic (non-branded) food data
var searchDataTypes = []string{"Survey (FNDDS)", "Foundation", "SR Legacy"}

// Client looks foods up in USDA FoodData Central. Every remote failure is
// logged and absorbed: searches degrade to no hits, details to no data.
type Client struct {
	getter domain.FoodDataGetter
	logger *zap.Logger
}

// NewClient creates a new USDA API client on top of a GET capability
func NewClient(getter domain.FoodDataGetter, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		getter: getter,
		logger: logger.Named("usda"),
	}
}

// SearchFood searches foods by free text. pageSize <= 0 selects
// DefaultPageSize. The result is never nil.
func (c *Client) SearchFood(ctx context.Context, query string, pageSize int) []domain.FoodSearchResult {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("pageSize", strconv.Itoa(pageSize))
	for _, dataType := range searchDataTypes {
		params.Add("dataType", dataType)
	}

	body, err := c.getter.Get(ctx, searchEndpoint, params)
	if err != nil {
		c.logger.Warn("error searching foods", zap.String("query", query), zap.Error(err))
		lookupsTotal.WithLabelValues("search", "error").Inc()
		return []domain.FoodSearchResult{}
	}

	results, skipped, err := domain.ParseFoodSearchResults(body)
	if err != nil {
		c.logger.Warn("failed to decode search response", zap.String("query", query), zap.Error(err))
		lookupsTotal.WithLabelValues("search", "error").Inc()
		return []domain.FoodSearchResult{}
	}
	if skipped > 0 {
		c.logger.Warn("dropped malformed search hits", zap.String("query", query), zap.Int("skipped", skipped))
	}

	if len(results) == 0 {
		c.logger.Debug("no foods found", zap.String("query", query))
		lookupsTotal.WithLabelValues("search", "empty").Inc()
		return results
	}

	c.logger.Debug("foods found", zap.String("query", query), zap.Int("count", len(results)))
	lookupsTotal.WithLabelValues("search", "ok").Inc()
	return results
}

// GetFoodDetails fetches the detail record of one food. It returns nil when
// the record cannot be fetched or decoded.
func (c *Client) GetFoodDetails(ctx context.Context, fdcID int) *domain.FoodDetail {
	body, err := c.getter.Get(ctx, foodEndpointPrefix+strconv.Itoa(fdcID), url.Values{})
	if err != nil {
		c.logger.Warn("error getting food details", zap.Int("fdcId", fdcID), zap.Error(err))
		lookupsTotal.WithLabelValues("details", "error").Inc()
		return nil
	}

	detail, err := domain.ParseFoodDetail(body)
	if err != nil {
		c.logger.Warn("failed to decode food details", zap.Int("fdcId", fdcID), zap.Error(err))
		lookupsTotal.WithLabelValues("details", "error").Inc()
		return nil
	}

	lookupsTotal.WithLabelValues("details", "ok").Inc()
	return detail
}
