package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dispatchmap/internal/domain/entities"
	"dispatchmap/internal/geocode"
	"dispatchmap/internal/repository/memory"
)

type trackingFixture struct {
	service   *TrackingService
	positions *PositionService
	orders    *fakeOrders
	router    *fakeRouter
}

func setupTrackingService(resolver geocode.Resolver) *trackingFixture {
	if resolver == nil {
		resolver = geocode.Disabled()
	}
	logger := zap.NewNop()
	positions := NewPositionService(memory.NewAgentRepository(), memory.NewPositionRepository(), 5*time.Minute, logger)
	orders := &fakeOrders{}
	router := &fakeRouter{outcome: func(ctx context.Context, wps []entities.Waypoint) entities.RouteOutcome {
		return entities.RouteSucceeded(entities.RouteResult{
			Polyline: []entities.Coordinate{wps[0].Coordinate, coord(12.005, 77.005), wps[1].Coordinate},
		})
	}}
	return &trackingFixture{
		service:   NewTrackingService(orders, positions, resolver, router, time.Second, logger),
		positions: positions,
		orders:    orders,
		router:    router,
	}
}

func TestTrackingService_RejectsOtherCustomers(t *testing.T) {
	f := setupTrackingService(nil)
	f.orders.orders = []entities.Order{activeOrder("o1", coordPtr(12.01, 77.01))}

	_, err := f.service.Track(context.Background(), "customer-someone-else", "o1")
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestTrackingService_UnknownOrder(t *testing.T) {
	f := setupTrackingService(nil)

	_, err := f.service.Track(context.Background(), "customer-o1", "missing")
	assert.ErrorIs(t, err, errOrderMissing)
}

func TestTrackingService_NotYetOutForDelivery(t *testing.T) {
	f := setupTrackingService(nil)
	order := activeOrder("o1", coordPtr(12.01, 77.01))
	order.Status = entities.OrderStatusPreparing
	f.orders.orders = []entities.Order{order}
	_, err := f.positions.UpdatePosition(context.Background(), "agent-1", 12.0, 77.0, 0)
	require.NoError(t, err)

	model, err := f.service.Track(context.Background(), "customer-o1", "o1")
	require.NoError(t, err)

	assert.Equal(t, "Delivery Location", model.Origin.Title)
	assert.Equal(t, coord(12.01, 77.01), model.Origin.Coordinate)
	assert.Empty(t, model.Destinations)
	assert.Equal(t, []entities.Coordinate{coord(12.01, 77.01)}, model.Polyline)
	assert.Equal(t, entities.RouteSourceOriginOnly, model.RouteSource)
	assert.Equal(t, 0, f.router.Calls())
}

func TestTrackingService_OutForDeliveryRoutesFromAgent(t *testing.T) {
	f := setupTrackingService(nil)
	f.orders.orders = []entities.Order{activeOrder("o1", coordPtr(12.01, 77.01))}
	_, err := f.positions.UpdatePosition(context.Background(), "agent-1", 12.0, 77.0, 0)
	require.NoError(t, err)

	model, err := f.service.Track(context.Background(), "customer-o1", "o1")
	require.NoError(t, err)

	assert.Equal(t, "Delivery Agent", model.Origin.Title)
	assert.Equal(t, coord(12.0, 77.0), model.Origin.Coordinate)
	require.Len(t, model.Destinations, 1)
	assert.Equal(t, "o1", model.Destinations[0].OrderID)
	assert.Len(t, model.Polyline, 3)
	assert.Equal(t, entities.RouteSourceOptimized, model.RouteSource)
	assert.Equal(t, 0, f.router.etaCalls)
}

func TestTrackingService_RouteFailureFallsBack(t *testing.T) {
	f := setupTrackingService(nil)
	f.orders.orders = []entities.Order{activeOrder("o1", coordPtr(12.01, 77.01))}
	f.router.outcome = func(ctx context.Context, wps []entities.Waypoint) entities.RouteOutcome {
		return entities.RouteFailed(entities.RouteFailureNetwork, errors.New("connection refused"))
	}
	_, err := f.positions.UpdatePosition(context.Background(), "agent-1", 12.0, 77.0, 0)
	require.NoError(t, err)

	model, err := f.service.Track(context.Background(), "customer-o1", "o1")
	require.NoError(t, err)

	assert.Equal(t, []entities.Coordinate{coord(12.0, 77.0), coord(12.01, 77.01)}, model.Polyline)
	assert.Equal(t, entities.RouteSourceFallback, model.RouteSource)
	require.Len(t, model.Notices, 1)
	assert.Equal(t, entities.NoticeRouteServiceFailure, model.Notices[0].Kind)
}

func TestTrackingService_GeocodesAddress(t *testing.T) {
	resolver := geocode.NewStaticResolver(map[string]entities.Coordinate{
		"o1 MG Road": coord(12.01, 77.01),
	})
	f := setupTrackingService(resolver)
	f.orders.orders = []entities.Order{activeOrder("o1", nil), activeOrder("o2", nil)}

	model, err := f.service.Track(context.Background(), "customer-o1", "o1")
	require.NoError(t, err)
	assert.Equal(t, coord(12.01, 77.01), model.Origin.Coordinate)

	_, err = f.service.Track(context.Background(), "customer-o2", "o2")
	assert.ErrorIs(t, err, ErrDestinationUnresolvable)
}
