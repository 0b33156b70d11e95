package entities

// WaypointRole distinguishes the mover's own position from the stops it has
// to reach.
type WaypointRole string

const (
	WaypointOrigin      WaypointRole = "origin"
	WaypointDestination WaypointRole = "destination"
)

// Waypoint is a routing input point. Index 0 of a waypoint list is always the
// origin; destinations follow in the order their orders were gathered.
//
// OrderID is empty for the origin. Destinations carry the id of the order
// they were resolved from, so anything index-aligned with the waypoint list
// (ETAs in particular) can be mapped back to an order without consulting a
// second slice.
type Waypoint struct {
	Coordinate Coordinate   `json:"coordinate"`
	Role       WaypointRole `json:"role"`
	OrderID    string       `json:"order_id,omitempty"`
}

// Destination is an order whose delivery point has been resolved.
type Destination struct {
	Order      Order
	Coordinate Coordinate
}

// BuildWaypoints assembles [origin] + destinations in the given order. The
// returned slice is freshly allocated and must be treated as read-only by all
// consumers of a reconciliation pass.
func BuildWaypoints(origin Coordinate, destinations []Destination) []Waypoint {
	waypoints := make([]Waypoint, 0, len(destinations)+1)
	waypoints = append(waypoints, Waypoint{Coordinate: origin, Role: WaypointOrigin})
	for _, d := range destinations {
		waypoints = append(waypoints, Waypoint{
			Coordinate: d.Coordinate,
			Role:       WaypointDestination,
			OrderID:    d.Order.ID,
		})
	}
	return waypoints
}

// Coordinates projects the waypoint list onto its coordinates, keeping order.
func Coordinates(waypoints []Waypoint) []Coordinate {
	coords := make([]Coordinate, len(waypoints))
	for i, wp := range waypoints {
		coords[i] = wp.Coordinate
	}
	return coords
}
