package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dispatchmap/internal/config"
	"dispatchmap/internal/domain/entities"
	"dispatchmap/internal/geocode"
	"dispatchmap/internal/repository"
	"dispatchmap/internal/routing"
	"dispatchmap/pkg/utils"
)

var (
	ErrSuperseded = errors.New("reconciliation superseded by a newer trigger")
	ErrNoSnapshot = errors.New("no map snapshot yet")
)

// PositionSource supplies the mover's current position.
type PositionSource interface {
	CurrentPosition(ctx context.Context, agentID string) (*entities.AgentPosition, error)
}

// OrderSource supplies the order snapshot for a pass.
type OrderSource interface {
	List(ctx context.Context) ([]entities.Order, error)
}

// RouteClient asks the routing service for a route.
type RouteClient interface {
	Optimize(ctx context.Context, waypoints []entities.Waypoint) entities.RouteOutcome
	OptimizeWithETA(ctx context.Context, waypoints []entities.Waypoint) entities.RouteOutcome
}

// SnapshotSink receives every snapshot that becomes the agent's latest.
type SnapshotSink interface {
	Publish(snapshot *entities.Snapshot)
}

type inflightPass struct {
	gen    uint64
	cancel context.CancelFunc
}

// MapService is the map state reconciler for delivery agents. One pass:
//  1. Acquire the agent's position (missing → ErrPositionUnavailable, no model)
//  2. Fetch the order snapshot and keep the orders active for the agent
//  3. Resolve each order's delivery point, geocoding addresses when needed;
//     unresolvable orders are left off the map
//  4. Build the waypoint list [origin] + destinations once
//  5. Ask the routing service for a route, falling back to straight lines
//  6. Derive the render model
//
// Only step 1 aborts a pass. Everything else degrades the model and records
// a Notice.
type MapService struct {
	positions PositionSource
	orders    OrderSource
	geocoder  geocode.Resolver
	router    RouteClient
	fallback  routing.FallbackStrategy
	notices   *NoticeService
	snapshots repository.SnapshotRepository
	sink      SnapshotSink
	logger    *zap.Logger

	withETA            bool
	routeTimeout       time.Duration
	geocodeConcurrency int

	// inflight tracks the newest pass per agent. A new trigger cancels the
	// previous pass and bumps gen; a pass whose gen is no longer current has
	// its result discarded.
	inflightMu sync.Mutex
	inflight   map[string]*inflightPass
	gen        uint64
}

func NewMapService(
	cfg *config.Config,
	positions PositionSource,
	orders OrderSource,
	geocoder geocode.Resolver,
	router RouteClient,
	notices *NoticeService,
	snapshots repository.SnapshotRepository,
	sink SnapshotSink,
	logger *zap.Logger,
) *MapService {
	concurrency := cfg.Geocode.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &MapService{
		positions:          positions,
		orders:             orders,
		geocoder:           geocoder,
		router:             router,
		fallback:           routing.StraightLine,
		notices:            notices,
		snapshots:          snapshots,
		sink:               sink,
		logger:             logger,
		withETA:            cfg.Routing.WithETA,
		routeTimeout:       cfg.Routing.Timeout,
		geocodeConcurrency: concurrency,
		inflight:           make(map[string]*inflightPass),
	}
}

// WithFallback replaces the straight-line fallback strategy.
func (s *MapService) WithFallback(strategy routing.FallbackStrategy) *MapService {
	s.fallback = strategy
	return s
}

// Reconcile runs one pass for agentID and returns its render model. It does
// not store or publish anything; see Refresh.
func (s *MapService) Reconcile(ctx context.Context, agentID string) (*entities.MapRenderModel, error) {
	position, err := s.positions.CurrentPosition(ctx, agentID)
	if err != nil {
		return nil, err
	}
	origin := position.Coordinate

	var notices []entities.Notice

	snapshot, err := s.orders.List(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		notices = append(notices, s.notices.OrdersUnavailable(ctx, agentID, err))
	}
	active := entities.ActiveOrdersFor(snapshot, agentID)

	destinations, unresolved, err := s.resolveDestinations(ctx, active)
	if err != nil {
		return nil, err
	}
	var unresolvedIDs []string
	for _, order := range unresolved {
		unresolvedIDs = append(unresolvedIDs, order.ID)
		notices = append(notices, s.notices.AddressUnresolvable(ctx, agentID, order))
	}

	waypoints := entities.BuildWaypoints(origin, destinations)

	model := &entities.MapRenderModel{
		Origin: entities.Marker{
			Coordinate: origin,
			Title:      "My Location",
		},
		Destinations:       destinationMarkers(destinations),
		UnresolvedOrderIDs: unresolvedIDs,
	}

	if len(waypoints) < 2 {
		model.Polyline = []entities.Coordinate{origin}
		model.RouteSource = entities.RouteSourceOriginOnly
	} else {
		result, source, notice, err := s.route(ctx, agentID, waypoints)
		if err != nil {
			return nil, err
		}
		if notice != nil {
			notices = append(notices, *notice)
		}
		model.Polyline = result.Polyline
		model.RouteSource = source
		model.ETAByOrderID = etasByOrderID(waypoints, result)
	}

	model.DistanceKm = utils.PolylineLengthKm(model.Polyline)
	model.Notices = notices

	s.logger.Debug("reconciled map",
		zap.String("agent_id", agentID),
		zap.Int("active_orders", len(active)),
		zap.Int("destinations", len(destinations)),
		zap.String("route_source", string(model.RouteSource)),
	)

	return model, nil
}

// route calls the routing service under its own deadline and falls back on
// any failure. It only returns an error when the pass itself was cancelled.
func (s *MapService) route(ctx context.Context, agentID string, waypoints []entities.Waypoint) (entities.RouteResult, entities.RouteSource, *entities.Notice, error) {
	routeCtx := ctx
	if s.routeTimeout > 0 {
		var cancel context.CancelFunc
		routeCtx, cancel = context.WithTimeout(ctx, s.routeTimeout)
		defer cancel()
	}

	var outcome entities.RouteOutcome
	if s.withETA {
		outcome = s.router.OptimizeWithETA(routeCtx, waypoints)
	} else {
		outcome = s.router.Optimize(routeCtx, waypoints)
	}

	if result, ok := outcome.Result(); ok {
		return result, entities.RouteSourceOptimized, nil, nil
	}
	if ctx.Err() != nil {
		return entities.RouteResult{}, "", nil, ctx.Err()
	}

	reason, err := outcome.Failure()
	notice := s.notices.RouteServiceFailure(ctx, agentID, reason, err)
	return s.fallback(waypoints), entities.RouteSourceFallback, &notice, nil
}

// resolveDestinations keeps the input order: geocoding runs concurrently
// but results are written by index and collected after all lookups finish.
func (s *MapService) resolveDestinations(ctx context.Context, active []entities.Order) ([]entities.Destination, []entities.Order, error) {
	resolved := make([]*entities.Coordinate, len(active))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.geocodeConcurrency)
	for i, order := range active {
		if coord, ok := order.KnownLocation(); ok {
			resolved[i] = &coord
			continue
		}
		i, order := i, order
		g.Go(func() error {
			if coord, ok := s.geocoder.Resolve(gctx, order.UserAddress); ok {
				resolved[i] = &coord
			}
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var destinations []entities.Destination
	var unresolved []entities.Order
	for i, order := range active {
		if resolved[i] == nil {
			unresolved = append(unresolved, order)
			continue
		}
		destinations = append(destinations, entities.Destination{Order: order, Coordinate: *resolved[i]})
	}
	return destinations, unresolved, nil
}

func destinationMarkers(destinations []entities.Destination) []entities.Marker {
	markers := make([]entities.Marker, len(destinations))
	for i, d := range destinations {
		markers[i] = entities.Marker{
			OrderID:     d.Order.ID,
			Coordinate:  d.Coordinate,
			Title:       d.Order.UserName,
			Description: d.Order.UserAddress,
		}
	}
	return markers
}

// etasByOrderID maps each destination waypoint's ETA to its order id. Index
// 0 is the origin and is skipped.
func etasByOrderID(waypoints []entities.Waypoint, result entities.RouteResult) map[string]*time.Time {
	if !result.HasETAs() || len(result.WaypointETAs) != len(waypoints) {
		return nil
	}
	etas := make(map[string]*time.Time, len(waypoints)-1)
	for i := 1; i < len(waypoints); i++ {
		etas[waypoints[i].OrderID] = result.WaypointETAs[i].ETA
	}
	return etas
}

// Refresh runs a pass as the newest trigger for agentID. An older pass still
// in flight is cancelled and its caller gets ErrSuperseded. On success the
// snapshot becomes the agent's latest and is published to the sink.
func (s *MapService) Refresh(ctx context.Context, agentID string) (*entities.Snapshot, error) {
	passCtx, gen := s.beginPass(ctx, agentID)
	defer s.endPass(agentID, gen)

	model, err := s.Reconcile(passCtx, agentID)

	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()

	if !s.isCurrentLocked(agentID, gen) {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}

	snapshot := &entities.Snapshot{
		PassID:      utils.GenerateID(),
		AgentID:     agentID,
		GeneratedAt: time.Now().UTC(),
		Model:       model,
	}
	if err := s.snapshots.Put(ctx, snapshot); err != nil {
		return nil, err
	}
	if s.sink != nil {
		s.sink.Publish(snapshot)
	}
	return snapshot, nil
}

// Latest returns the agent's most recent snapshot.
func (s *MapService) Latest(ctx context.Context, agentID string) (*entities.Snapshot, error) {
	snapshot, err := s.snapshots.Latest(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return snapshot, nil
}

func (s *MapService) beginPass(ctx context.Context, agentID string) (context.Context, uint64) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()

	if prev, exists := s.inflight[agentID]; exists {
		prev.cancel()
	}

	s.gen++
	passCtx, cancel := context.WithCancel(ctx)
	s.inflight[agentID] = &inflightPass{gen: s.gen, cancel: cancel}
	return passCtx, s.gen
}

func (s *MapService) endPass(agentID string, gen uint64) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()

	if cur, exists := s.inflight[agentID]; exists && cur.gen == gen {
		cur.cancel()
		delete(s.inflight, agentID)
	}
}

func (s *MapService) isCurrentLocked(agentID string, gen uint64) bool {
	cur, exists := s.inflight[agentID]
	return exists && cur.gen == gen
}
