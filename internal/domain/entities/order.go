package entities

// OrderStatus mirrors the storefront backend's order lifecycle. The backend
// owns transitions; this service only reads snapshots.
//
//	pending → confirmed → preparing → out_for_delivery → delivered
//	     (any non-terminal state can also move to cancelled)
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// activeStatuses are the states in which an assigned order belongs on the
// delivery agent's map.
var activeStatuses = map[OrderStatus]bool{
	OrderStatusPreparing:      true,
	OrderStatusOutForDelivery: true,
}

// Order is the partial order view consumed by the map. DeliveryLocation is
// optional; orders without it have to go through geocoding of UserAddress.
type Order struct {
	ID               string      `json:"id"`
	UserID           string      `json:"user_id"`
	UserName         string      `json:"user_name"`
	UserAddress      string      `json:"user_address"`
	DeliveryLocation *Coordinate `json:"delivery_location,omitempty"`
	Status           OrderStatus `json:"status"`
	DeliveryAgentID  string      `json:"delivery_agent_id,omitempty"`
}

// IsActiveFor reports whether the order should be routed by agentID.
func (o Order) IsActiveFor(agentID string) bool {
	return o.DeliveryAgentID == agentID && activeStatuses[o.Status]
}

// KnownLocation returns the attached delivery location when present and in
// range.
func (o Order) KnownLocation() (Coordinate, bool) {
	if o.DeliveryLocation == nil {
		return Coordinate{}, false
	}
	if err := o.DeliveryLocation.Validate(); err != nil {
		return Coordinate{}, false
	}
	return *o.DeliveryLocation, true
}

// ActiveOrdersFor filters a snapshot down to the orders active for agentID,
// preserving the snapshot's order.
func ActiveOrdersFor(orders []Order, agentID string) []Order {
	var active []Order
	for _, o := range orders {
		if o.IsActiveFor(agentID) {
			active = append(active, o)
		}
	}
	return active
}
