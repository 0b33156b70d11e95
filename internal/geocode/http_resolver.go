package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"dispatchmap/internal/domain/entities"
)

// searchResult is one entry of a Nominatim-style /search response. The
// provider encodes coordinates as strings.
type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// HTTPResolver queries a Nominatim-compatible search endpoint:
//
//	GET {baseURL}/search?q=<address>&format=json&limit=1
type HTTPResolver struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPResolver(baseURL, userAgent string, timeout time.Duration, logger *zap.Logger) *HTTPResolver {
	return &HTTPResolver{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Resolve performs a single lookup. Errors are logged and reported as no
// result.
func (r *HTTPResolver) Resolve(ctx context.Context, address string) (entities.Coordinate, bool) {
	norm := Normalize(address)
	if norm == "" {
		return entities.Coordinate{}, false
	}

	coord, found, err := r.lookup(ctx, norm)
	if err != nil {
		r.logger.Warn("geocode lookup failed",
			zap.String("address", norm),
			zap.Error(err),
		)
		return entities.Coordinate{}, false
	}
	if !found {
		r.logger.Debug("geocode returned no results", zap.String("address", norm))
	}
	return coord, found
}

func (r *HTTPResolver) lookup(ctx context.Context, address string) (entities.Coordinate, bool, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return entities.Coordinate{}, false, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return entities.Coordinate{}, false, fmt.Errorf("execute geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entities.Coordinate{}, false, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return entities.Coordinate{}, false, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return entities.Coordinate{}, false, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return entities.Coordinate{}, false, fmt.Errorf("parse latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return entities.Coordinate{}, false, fmt.Errorf("parse longitude %q: %w", results[0].Lon, err)
	}

	coord, err := entities.NewCoordinate(lat, lon)
	if err != nil {
		return entities.Coordinate{}, false, err
	}
	return coord, true, nil
}
