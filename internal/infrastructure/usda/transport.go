package usda

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/labelpal/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public FoodData Central API root
	DefaultBaseURL = "https://api.nal.usda.gov/fdc"

	// DefaultTimeout bounds every outbound request
	DefaultTimeout = 10 * time.Second

	// DefaultRequestsPerHour is the USDA API key quota
	DefaultRequestsPerHour = 1000

	// DefaultBurst is how many requests go out before the hourly rate
	// paces them. At 1000/hour every request past the burst waits 3.6s.
	DefaultBurst = 10

	// maxBodyBytes caps how much of an upstream body is read
	maxBodyBytes = 10 << 20

	// maxErrorBodyBytes caps the body snippet kept in error messages
	maxErrorBodyBytes = 512

	userAgent = "NutritionLabelPal/1.0"
)

// TransportConfig configures the USDA HTTP transport
type TransportConfig struct {
	APIKey          string
	BaseURL         string
	Timeout         time.Duration
	RequestsPerHour int
	Burst           int
}

// Transport performs authenticated GET requests against FoodData Central.
// It implements domain.FoodDataGetter.
type Transport struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
	debug       bool
}

// NewTransport creates a new USDA API transport
func NewTransport(cfg TransportConfig, logger *zap.Logger) *Transport {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	perHour := cfg.RequestsPerHour
	if perHour <= 0 {
		perHour = DefaultRequestsPerHour
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = DefaultBurst
	}

	// rate.Limit is requests per second, so 1000/3600 ≈ 0.278 requests/sec
	limiter := rate.NewLimiter(rate.Limit(float64(perHour)/3600), burst)

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Transport{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
		logger:      logger.Named("usda"),
	}
}

// SetDebug toggles logging of every outbound request
func (t *Transport) SetDebug(debug bool) {
	t.debug = debug
}

func (t *Transport) debugLog(msg string, fields ...zap.Field) {
	if t.debug {
		t.logger.Debug(msg, fields...)
	}
}

// Get issues one GET to baseURL+endpoint with params plus the API key and
// returns the body of a 2xx response. Non-2xx statuses and transport
// failures are reported as errors wrapping domain.ErrUSDAAPIFailure.
func (t *Transport) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := t.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter error")
	}

	query := url.Values{}
	for key, values := range params {
		query[key] = append([]string(nil), values...)
	}
	query.Set("api_key", t.apiKey)
	reqURL := t.baseURL + endpoint + "?" + query.Encode()

	t.debugLog("request", zap.String("endpoint", endpoint), zap.String("params", params.Encode()))

	start := time.Now()
	resp, err := t.doRequest(ctx, reqURL)
	if err != nil {
		upstreamRequestDuration.WithLabelValues(endpointLabel(endpoint), "error").Observe(time.Since(start).Seconds())
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, maxBodyBytes)
	upstreamRequestDuration.WithLabelValues(endpointLabel(endpoint), strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, errors.Wrapf(domain.ErrUSDAAPIFailure, "failed to read response: %v", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet := body
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes]
		}
		return nil, errors.Wrapf(domain.ErrUSDAAPIFailure, "status %d, body: %s", resp.StatusCode, string(snippet))
	}

	t.debugLog("response", zap.String("endpoint", endpoint), zap.Int("status", resp.StatusCode), zap.Int("bytes", len(body)))
	return body, nil
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (t *Transport) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(stripURL(err), "failed to create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrUSDAAPIFailure, "%v", stripURL(err))
	}

	return resp, nil
}

// stripURL drops the request URL from err; the URL carries the API key
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}
