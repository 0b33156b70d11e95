// Package routing talks to the storefront's route-optimization endpoints and
// provides the straight-line fallback used when they cannot help.
//
// The Client reports exactly what the server said: a route, or the reason
// there is none. It never retries and never invents a route; synthesis is
// the job of a FallbackStrategy chosen by the caller.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"dispatchmap/internal/domain/entities"
)

const (
	optimizePath        = "/route/optimize"
	optimizeWithETAPath = "/route/optimize-with-eta"

	// maxErrorBody caps how much of a failed response is kept for logging.
	maxErrorBody = 512
)

// etaLayouts are tried in order. The backend emits ISO-8601 and may omit the
// zone; zone-less values are read as UTC.
var etaLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

type optimizeResponse struct {
	Route        []entities.Coordinate `json:"route"`
	WaypointETAs []struct {
		ETA *string `json:"eta"`
	} `json:"waypoint_etas"`
}

// Client calls POST /route/optimize and POST /route/optimize-with-eta.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a Client. baseURL includes the API prefix; token, when
// set, is sent as a bearer credential.
func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Optimize requests a route without ETAs.
func (c *Client) Optimize(ctx context.Context, waypoints []entities.Waypoint) entities.RouteOutcome {
	return c.optimize(ctx, optimizePath, waypoints)
}

// OptimizeWithETA requests a route plus per-waypoint ETAs.
func (c *Client) OptimizeWithETA(ctx context.Context, waypoints []entities.Waypoint) entities.RouteOutcome {
	return c.optimize(ctx, optimizeWithETAPath, waypoints)
}

func (c *Client) optimize(ctx context.Context, path string, waypoints []entities.Waypoint) entities.RouteOutcome {
	if len(waypoints) < 2 {
		return entities.RouteFailed(entities.RouteFailureInsufficientWaypoints,
			fmt.Errorf("need at least 2 waypoints, got %d", len(waypoints)))
	}

	body, err := json.Marshal(entities.Coordinates(waypoints))
	if err != nil {
		return entities.RouteFailed(entities.RouteFailureMalformedResponse, fmt.Errorf("encode waypoints: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return entities.RouteFailed(entities.RouteFailureNetwork, fmt.Errorf("build route request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entities.RouteFailed(entities.RouteFailureNetwork, fmt.Errorf("execute route request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return entities.RouteFailed(entities.RouteFailureHTTPStatus,
			fmt.Errorf("routing service returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet)))
	}

	var decoded optimizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return entities.RouteFailed(entities.RouteFailureMalformedResponse, fmt.Errorf("decode route response: %w", err))
	}
	if len(decoded.Route) == 0 {
		return entities.RouteFailed(entities.RouteFailureMalformedResponse, fmt.Errorf("response has no route"))
	}
	for i, coord := range decoded.Route {
		if err := coord.Validate(); err != nil {
			return entities.RouteFailed(entities.RouteFailureMalformedResponse, fmt.Errorf("route point %d: %w", i, err))
		}
	}

	result := entities.RouteResult{Polyline: decoded.Route}

	switch {
	case decoded.WaypointETAs == nil:
	case len(decoded.WaypointETAs) != len(waypoints):
		// ETAs that cannot be aligned with the request are worse than none.
		c.logger.Warn("dropping misaligned waypoint ETAs",
			zap.Int("waypoints", len(waypoints)),
			zap.Int("etas", len(decoded.WaypointETAs)),
		)
	default:
		result.WaypointETAs = make([]entities.WaypointETA, len(decoded.WaypointETAs))
		for i, raw := range decoded.WaypointETAs {
			result.WaypointETAs[i] = entities.WaypointETA{ETA: c.parseETA(raw.ETA)}
		}
	}

	return entities.RouteSucceeded(result)
}

func (c *Client) parseETA(raw *string) *time.Time {
	if raw == nil || *raw == "" {
		return nil
	}
	for _, layout := range etaLayouts {
		if t, err := time.Parse(layout, *raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	c.logger.Warn("unparsable waypoint ETA", zap.String("eta", *raw))
	return nil
}
