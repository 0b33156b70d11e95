package routing

import "dispatchmap/internal/domain/entities"

// FallbackStrategy produces a route for a waypoint list when the routing
// service could not. Implementations must be total for non-empty input.
type FallbackStrategy func(waypoints []entities.Waypoint) entities.RouteResult

// StraightLine connects the waypoints in their given order. ETAs are absent:
// they cannot be derived without the optimization service.
func StraightLine(waypoints []entities.Waypoint) entities.RouteResult {
	return entities.RouteResult{Polyline: entities.Coordinates(waypoints)}
}
