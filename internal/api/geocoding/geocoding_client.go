// Package geocoding resolves free-form address strings to coordinates via
// the external geocoding provider, under a strict shared rate limit, with
// response caching and a two-stage fallback. Every provider failure degrades
// to "no coordinate": address registration never fails because geocoding is
// unavailable.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/go-household-registry/app/observability/metrics"
	"github.com/FACorreiaa/go-household-registry/internal/types"
)

// Client defines the geocoding contract. A nil coordinate with a nil error
// means the provider had no answer for the address.
type Client interface {
	Resolve(ctx context.Context, fullAddress string) (*types.Coordinate, error)
}

// Config carries the provider settings.
type Config struct {
	BaseURL      string
	UserAgent    string
	Language     string
	CountryCodes string
	Timeout      time.Duration
	RateInterval time.Duration
	CacheTTL     time.Duration
}

var _ Client = (*HTTPClient)(nil)

// HTTPClient queries the geocoding provider over HTTP. The rate limiter and
// cache are shared by every caller of one instance; the application creates
// exactly one.
type HTTPClient struct {
	logger     *slog.Logger
	httpClient *http.Client
	cfg        Config
	limiter    *rateLimiter
	// cache entries are *types.Coordinate; nil marks a known-empty result so
	// repeated misses do not re-hit the provider or the rate limiter.
	cache *cache.Cache
	group singleflight.Group
}

// NewClient creates a geocoding client with TTL-bounded response caching.
func NewClient(cfg Config, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		logger:     logger,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		limiter:    newRateLimiter(cfg.RateInterval),
		cache:      cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
	}
}

// Resolve geocodes the assembled address. Stage one queries the normalized
// address; when it yields nothing, stage two retries once with the
// neighborhood segment stripped. Results, including empty ones, are cached
// by the exact queried string.
func (c *HTTPClient) Resolve(ctx context.Context, fullAddress string) (*types.Coordinate, error) {
	if fullAddress == "" {
		c.logger.WarnContext(ctx, "Geocoding skipped for blank address")
		return nil, nil
	}

	start := time.Now()
	defer func() {
		metrics.Get().GeocodeDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	query := NormalizeQuery(fullAddress)
	if query != "" {
		coordinate, err := c.lookupCached(ctx, query)
		if err != nil {
			return nil, err
		}
		if coordinate != nil {
			return coordinate, nil
		}
	}

	withoutNeighborhood, ok := StripNeighborhoodSegment(fullAddress)
	if !ok {
		return nil, nil
	}
	fallback := NormalizeQuery(withoutNeighborhood)
	if fallback == "" || fallback == query {
		return nil, nil
	}

	c.logger.InfoContext(ctx, "Retrying geocoding without neighborhood segment",
		slog.String("query", fallback),
	)
	metrics.Get().GeocodeFallbacksTotal.Add(ctx, 1)
	return c.lookupCached(ctx, fallback)
}

// lookupCached serves the query from the cache when possible; concurrent
// first lookups for the same key are collapsed into one provider call.
func (c *HTTPClient) lookupCached(ctx context.Context, query string) (*types.Coordinate, error) {
	if cached, found := c.cache.Get(query); found {
		c.logger.DebugContext(ctx, "Coordinate served from cache", slog.String("query", query))
		metrics.Get().GeocodeCacheHitsTotal.Add(ctx, 1)
		coordinate, _ := cached.(*types.Coordinate)
		return coordinate, nil
	}

	result, err, _ := c.group.Do(query, func() (interface{}, error) {
		coordinate, err := c.queryProvider(ctx, query)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(query, coordinate)
		return coordinate, nil
	})
	if err != nil {
		return nil, err
	}
	coordinate, _ := result.(*types.Coordinate)
	return coordinate, nil
}

type providerResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// queryProvider performs one rate-limited provider request. Transport
// errors, unexpected statuses, empty result arrays and unparsable
// coordinates all degrade to (nil, nil).
func (c *HTTPClient) queryProvider(ctx context.Context, query string) (*types.Coordinate, error) {
	if err := c.limiter.acquire(ctx); err != nil {
		return nil, fmt.Errorf("geocoding rate limit wait interrupted: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("addressdetails", "0")
	params.Set("countrycodes", c.cfg.CountryCodes)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}
	// Contact-identifying User-Agent required by the provider's usage policy
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept-Language", c.cfg.Language)

	c.logger.InfoContext(ctx, "Querying geocoding provider", slog.String("query", query))
	metrics.Get().GeocodeRequestsTotal.Add(ctx, 1)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Geocoding provider request failed",
			slog.String("query", query),
			slog.Any("error", err),
		)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "Geocoding provider returned unexpected status",
			slog.String("query", query),
			slog.Int("status", resp.StatusCode),
		)
		return nil, nil
	}

	var results []providerResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		c.logger.WarnContext(ctx, "Failed to decode geocoding response",
			slog.String("query", query),
			slog.Any("error", err),
		)
		return nil, nil
	}
	if len(results) == 0 {
		c.logger.WarnContext(ctx, "Geocoding provider returned no results", slog.String("query", query))
		return nil, nil
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		c.logger.WarnContext(ctx, "Geocoding provider returned invalid coordinates",
			slog.String("query", query),
		)
		return nil, nil
	}

	c.logger.InfoContext(ctx, "Geocoding provider returned coordinates",
		slog.Float64("latitude", lat),
		slog.Float64("longitude", lon),
	)
	return &types.Coordinate{Latitude: lat, Longitude: lon}, nil
}
