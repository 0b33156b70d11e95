package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"dispatchmap/internal/domain/entities"
	"dispatchmap/internal/geocode"
	"dispatchmap/internal/routing"
	"dispatchmap/pkg/utils"
)

var (
	ErrNotAuthorized           = errors.New("not authorized to view this order")
	ErrDestinationUnresolvable = errors.New("delivery address could not be located")
)

// OrderLookup fetches a single order.
type OrderLookup interface {
	Get(ctx context.Context, orderID string) (*entities.Order, error)
}

// TrackingService builds the customer's view of one order: the delivery
// point and, while the order is out for delivery, the agent's position and
// the route between them.
type TrackingService struct {
	orders    OrderLookup
	positions PositionSource
	geocoder  geocode.Resolver
	router    RouteClient
	fallback  routing.FallbackStrategy
	timeout   time.Duration
	logger    *zap.Logger
}

func NewTrackingService(
	orders OrderLookup,
	positions PositionSource,
	geocoder geocode.Resolver,
	router RouteClient,
	routeTimeout time.Duration,
	logger *zap.Logger,
) *TrackingService {
	return &TrackingService{
		orders:    orders,
		positions: positions,
		geocoder:  geocoder,
		router:    router,
		fallback:  routing.StraightLine,
		timeout:   routeTimeout,
		logger:    logger,
	}
}

// Track returns the render model for customerID's order. With no agent
// position to route from, the model is the delivery point alone.
func (s *TrackingService) Track(ctx context.Context, customerID, orderID string) (*entities.MapRenderModel, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != customerID {
		return nil, ErrNotAuthorized
	}

	dest, ok := order.KnownLocation()
	if !ok {
		dest, ok = s.geocoder.Resolve(ctx, order.UserAddress)
		if !ok {
			return nil, ErrDestinationUnresolvable
		}
	}
	destMarker := entities.Marker{
		OrderID:     order.ID,
		Coordinate:  dest,
		Title:       "Delivery Location",
		Description: order.UserAddress,
	}

	agentPos := s.agentPosition(ctx, order)
	if agentPos == nil {
		return &entities.MapRenderModel{
			Origin:       destMarker,
			Destinations: []entities.Marker{},
			Polyline:     []entities.Coordinate{dest},
			RouteSource:  entities.RouteSourceOriginOnly,
		}, nil
	}

	waypoints := entities.BuildWaypoints(agentPos.Coordinate, []entities.Destination{
		{Order: *order, Coordinate: dest},
	})

	routeCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		routeCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	model := &entities.MapRenderModel{
		Origin: entities.Marker{
			Coordinate: agentPos.Coordinate,
			Title:      "Delivery Agent",
		},
		Destinations: []entities.Marker{destMarker},
	}

	outcome := s.router.Optimize(routeCtx, waypoints)
	if result, ok := outcome.Result(); ok {
		model.Polyline = result.Polyline
		model.RouteSource = entities.RouteSourceOptimized
	} else {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		reason, err := outcome.Failure()
		s.logger.Warn("customer route failed, using straight line",
			zap.String("order_id", order.ID),
			zap.String("reason", string(reason)),
			zap.Error(err),
		)
		model.Polyline = s.fallback(waypoints).Polyline
		model.RouteSource = entities.RouteSourceFallback
		model.Notices = []entities.Notice{{
			Kind:    entities.NoticeRouteServiceFailure,
			Message: "Failed to get optimized route from server.",
		}}
	}
	model.DistanceKm = utils.PolylineLengthKm(model.Polyline)

	return model, nil
}

func (s *TrackingService) agentPosition(ctx context.Context, order *entities.Order) *entities.AgentPosition {
	if order.Status != entities.OrderStatusOutForDelivery || order.DeliveryAgentID == "" {
		return nil
	}
	position, err := s.positions.CurrentPosition(ctx, order.DeliveryAgentID)
	if err != nil {
		s.logger.Debug("agent position unavailable for tracking",
			zap.String("order_id", order.ID),
			zap.String("agent_id", order.DeliveryAgentID),
			zap.Error(err),
		)
		return nil
	}
	return position
}
