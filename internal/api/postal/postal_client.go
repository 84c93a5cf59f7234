// Package postal resolves sanitized postal codes against the external
// postal-code provider. The provider is best-effort: every failure is
// reported as a typed error so callers decide whether it is fatal.
package postal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/FACorreiaa/go-household-registry/app/observability/metrics"
	"github.com/FACorreiaa/go-household-registry/internal/types"
)

var nonDigits = regexp.MustCompile(`\D`)

// Client defines the postal lookup contract.
type Client interface {
	Lookup(ctx context.Context, rawPostalCode string) (*types.PostalRecord, error)
}

var _ Client = (*HTTPClient)(nil)

// HTTPClient queries the postal provider over HTTP.
type HTTPClient struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a postal lookup client with a request-level timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// SanitizePostalCode strips every non-digit character from the input.
func SanitizePostalCode(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

type lookupResponse struct {
	Cep          string `json:"cep"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	CityIBGE     string `json:"city_ibge"`
	Location     *struct {
		Coordinates *struct {
			Latitude  string `json:"latitude"`
			Longitude string `json:"longitude"`
		} `json:"coordinates"`
	} `json:"location"`
}

// Lookup resolves a raw postal code to its canonical record. It fails fast
// with ErrInvalidPostalCode before any outbound call, maps provider 404 to
// ErrPostalCodeNotFound and any transport/parse failure to
// ErrPostalUnavailable, logged at warning level.
func (c *HTTPClient) Lookup(ctx context.Context, rawPostalCode string) (*types.PostalRecord, error) {
	code := SanitizePostalCode(rawPostalCode)
	if len(code) != 8 {
		return nil, types.ErrInvalidPostalCode
	}

	metrics.Get().PostalLookupsTotal.Add(ctx, 1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+code, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build postal request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Postal provider request failed",
			slog.String("postal_code", code),
			slog.Any("error", err),
		)
		metrics.Get().PostalLookupErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("postal lookup for %s: %w", code, types.ErrPostalUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.DebugContext(ctx, "Postal code not found", slog.String("postal_code", code))
		return nil, types.ErrPostalCodeNotFound
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "Postal provider returned unexpected status",
			slog.String("postal_code", code),
			slog.Int("status", resp.StatusCode),
		)
		metrics.Get().PostalLookupErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("postal lookup for %s returned status %d: %w", code, resp.StatusCode, types.ErrPostalUnavailable)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.WarnContext(ctx, "Failed to decode postal provider response",
			slog.String("postal_code", code),
			slog.Any("error", err),
		)
		metrics.Get().PostalLookupErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("postal lookup for %s: %w", code, types.ErrPostalUnavailable)
	}

	record := &types.PostalRecord{
		PostalCode:   body.Cep,
		Street:       body.Street,
		Neighborhood: body.Neighborhood,
		City:         body.City,
		State:        body.State,
		CityIBGECode: body.CityIBGE,
		Coordinates:  parseEmbeddedCoordinates(body),
	}
	return record, nil
}

// parseEmbeddedCoordinates extracts coordinates when the provider embeds
// them; unparsable values are dropped rather than failing the lookup.
func parseEmbeddedCoordinates(body lookupResponse) *types.Coordinate {
	if body.Location == nil || body.Location.Coordinates == nil {
		return nil
	}
	lat, latErr := strconv.ParseFloat(body.Location.Coordinates.Latitude, 64)
	lon, lonErr := strconv.ParseFloat(body.Location.Coordinates.Longitude, 64)
	if latErr != nil || lonErr != nil {
		return nil
	}
	return &types.Coordinate{Latitude: lat, Longitude: lon}
}
