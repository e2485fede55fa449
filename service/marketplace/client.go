// Package marketplace fetches listing snapshots from the marketplace data
// service. It is a read-only collaborator: floorlink never mutates listings,
// it only prices whatever snapshot the data service reports.
package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/brojonat/floorlink/service/metrics"
	"github.com/hashicorp/go-retryablehttp"
	gocache "github.com/patrickmn/go-cache"
)

// Client is the interface for listing lookups. The HTTP implementation talks
// to the real data service; tests substitute MockClient.
type Client interface {
	GetListing(ctx context.Context, mint string) (*Listing, error)
}

// HTTPClient implements Client against the marketplace's REST API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *gocache.Cache
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Options configures an HTTPClient.
type Options struct {
	// APIKey is sent as a bearer token when non-empty.
	APIKey string
	// CacheTTL bounds how stale a served listing snapshot may be. Zero
	// disables caching. Quotes are always computed fresh; only the upstream
	// listing snapshot is cached, to stay under the data service's rate limits.
	CacheTTL time.Duration
	// RetryMax is the number of retries for transient upstream failures.
	RetryMax int
	// RequestTimeout bounds each attempt, including retries collectively.
	RequestTimeout time.Duration
}

// NewHTTPClient creates a listing client for the data service at baseURL.
// If m is nil, no metrics are recorded.
func NewHTTPClient(baseURL string, opts Options, m *metrics.Metrics, logger *slog.Logger) *HTTPClient {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = 250 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = nil // retries are logged through slog below

	httpClient := retryClient.StandardClient()
	if opts.RequestTimeout > 0 {
		httpClient.Timeout = opts.RequestTimeout
	}

	var listingCache *gocache.Cache
	if opts.CacheTTL > 0 {
		listingCache = gocache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}

	return &HTTPClient{
		baseURL:    baseURL,
		apiKey:     opts.APIKey,
		httpClient: httpClient,
		cache:      listingCache,
		metrics:    m,
		logger:     logger,
	}
}

// GetListing fetches the current listing snapshot for a mint.
// Returns ErrListingNotFound when the mint has no listing, and
// ErrInvalidListing when the data service returns a listing this service
// cannot price.
func (c *HTTPClient) GetListing(ctx context.Context, mint string) (*Listing, error) {
	if c.cache != nil {
		if cached, ok := c.cache.Get(mint); ok {
			c.metrics.RecordListingCacheLookup(true)
			c.logger.DebugContext(ctx, "listing cache hit", "mint", mint)
			return cached.(*Listing), nil
		}
		c.metrics.RecordListingCacheLookup(false)
	}

	u := fmt.Sprintf("%s/v2/listings/%s", c.baseURL, url.PathEscape(mint))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Seconds()

	if err != nil {
		c.metrics.RecordMarketplaceCall("GetListing", "error", duration)
		c.logger.ErrorContext(ctx, "marketplace request failed", "mint", mint, "error", err)
		return nil, fmt.Errorf("marketplace request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Fall through to decode.
	case http.StatusNotFound:
		c.metrics.RecordMarketplaceCall("GetListing", "not_found", duration)
		return nil, ErrListingNotFound
	default:
		c.metrics.RecordMarketplaceCall("GetListing", "error", duration)
		c.logger.ErrorContext(ctx, "marketplace returned unexpected status",
			"mint", mint,
			"status", resp.StatusCode,
		)
		return nil, fmt.Errorf("marketplace returned status %d", resp.StatusCode)
	}

	var wire listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		c.metrics.RecordMarketplaceCall("GetListing", "error", duration)
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	listing, err := wire.toDomain()
	if err != nil {
		c.metrics.RecordMarketplaceCall("GetListing", "invalid", duration)
		c.logger.WarnContext(ctx, "data service returned unusable listing",
			"mint", mint,
			"error", err,
		)
		return nil, err
	}

	c.metrics.RecordMarketplaceCall("GetListing", "success", duration)
	c.logger.DebugContext(ctx, "fetched listing",
		"mint", mint,
		"seller", listing.Seller,
		"price_lamports", listing.PriceLamports,
		"active", listing.Active,
	)

	if c.cache != nil {
		c.cache.Set(mint, listing, gocache.DefaultExpiration)
	}

	return listing, nil
}
