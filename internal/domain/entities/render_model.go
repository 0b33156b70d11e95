package entities

import "time"

// RouteSource says where a render model's polyline came from.
type RouteSource string

const (
	RouteSourceOptimized  RouteSource = "optimized"
	RouteSourceFallback   RouteSource = "fallback"
	RouteSourceOriginOnly RouteSource = "origin_only"
)

// NoticeKind enumerates the soft failures a pass can degrade through.
type NoticeKind string

const (
	NoticeAddressUnresolvable NoticeKind = "address_unresolvable"
	NoticeRouteServiceFailure NoticeKind = "route_service_failure"
	NoticeOrdersUnavailable   NoticeKind = "orders_unavailable"
)

// Notice is a non-blocking message for the presentation layer.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	OrderID string     `json:"order_id,omitempty"`
	Message string     `json:"message"`
}

// Marker is a point of interest on the map. OrderID is empty for the origin.
type Marker struct {
	OrderID     string     `json:"order_id,omitempty"`
	Coordinate  Coordinate `json:"coordinate"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
}

// MapRenderModel is the complete, immutable output of one reconciliation
// pass. Everything the map screen draws comes from a single value, so the
// screen never shows a polyline from one pass with ETAs from another.
//
// The model deliberately carries no pass id or timestamp: running a pass
// twice against unchanged inputs yields equal models. Snapshot adds those.
type MapRenderModel struct {
	Origin             Marker                `json:"origin"`
	Destinations       []Marker              `json:"destinations"`
	Polyline           []Coordinate          `json:"polyline"`
	ETAByOrderID       map[string]*time.Time `json:"eta_by_order_id,omitempty"`
	RouteSource        RouteSource           `json:"route_source"`
	DistanceKm         float64               `json:"distance_km"`
	UnresolvedOrderIDs []string              `json:"unresolved_order_ids,omitempty"`
	Notices            []Notice              `json:"notices,omitempty"`
}

// HasLine reports whether the polyline has at least one segment to draw.
func (m *MapRenderModel) HasLine() bool {
	return len(m.Polyline) > 1
}

// Snapshot wraps a render model with the identity of the pass that produced
// it.
type Snapshot struct {
	PassID      string          `json:"pass_id"`
	AgentID     string          `json:"agent_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Model       *MapRenderModel `json:"model"`
}
