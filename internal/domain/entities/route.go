package entities

import (
	"errors"
	"time"
)

// WaypointETA is the estimated arrival for one waypoint. ETA is nil when the
// routing service could not estimate that stop.
type WaypointETA struct {
	ETA *time.Time `json:"eta"`
}

// RouteResult is a renderable path plus, optionally, per-waypoint ETAs. When
// WaypointETAs is non-nil it is index-aligned with the waypoint list the
// route was requested for, origin included.
type RouteResult struct {
	Polyline     []Coordinate  `json:"polyline"`
	WaypointETAs []WaypointETA `json:"waypoint_etas,omitempty"`
}

// HasETAs reports whether ETAs were supplied.
func (r RouteResult) HasETAs() bool {
	return r.WaypointETAs != nil
}

// RouteFailure classifies why the routing service produced no usable route.
type RouteFailure string

const (
	RouteFailureNetwork               RouteFailure = "network"
	RouteFailureHTTPStatus            RouteFailure = "http_status"
	RouteFailureMalformedResponse     RouteFailure = "malformed_response"
	RouteFailureInsufficientWaypoints RouteFailure = "insufficient_waypoints"
)

var ErrNoUsableRoute = errors.New("no usable route")

// RouteOutcome is either a successful RouteResult or a failure reason. Use
// RouteSucceeded and RouteFailed to build one; the zero value is a failure.
type RouteOutcome struct {
	result  *RouteResult
	failure RouteFailure
	err     error
}

func RouteSucceeded(result RouteResult) RouteOutcome {
	return RouteOutcome{result: &result}
}

// RouteFailed records the reason and the underlying error. A nil err is
// replaced with ErrNoUsableRoute so callers always have something to log.
func RouteFailed(reason RouteFailure, err error) RouteOutcome {
	if err == nil {
		err = ErrNoUsableRoute
	}
	return RouteOutcome{failure: reason, err: err}
}

// Result returns the route and true on success.
func (o RouteOutcome) Result() (RouteResult, bool) {
	if o.result == nil {
		return RouteResult{}, false
	}
	return *o.result, true
}

// Failure returns the failure reason and error. Both are zero on success.
func (o RouteOutcome) Failure() (RouteFailure, error) {
	if o.result != nil {
		return "", nil
	}
	if o.failure == "" {
		return RouteFailureMalformedResponse, ErrNoUsableRoute
	}
	return o.failure, o.err
}
