package services

import (
	"context"
	"sync"
	"time"

	"dispatchmap/internal/domain/entities"
	"dispatchmap/internal/events"
)

type fakeOrders struct {
	mu     sync.Mutex
	orders []entities.Order
	err    error
	calls  int
}

func (f *fakeOrders) List(ctx context.Context) ([]entities.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entities.Order, len(f.orders))
	copy(out, f.orders)
	return out, nil
}

func (f *fakeOrders) Get(ctx context.Context, orderID string) (*entities.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == orderID {
			cp := o
			return &cp, nil
		}
	}
	return nil, errOrderMissing
}

type fakeRouter struct {
	mu        sync.Mutex
	outcome   func(ctx context.Context, waypoints []entities.Waypoint) entities.RouteOutcome
	calls     int
	etaCalls  int
	waypoints [][]entities.Waypoint
}

func (f *fakeRouter) record(waypoints []entities.Waypoint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	cp := make([]entities.Waypoint, len(waypoints))
	copy(cp, waypoints)
	f.waypoints = append(f.waypoints, cp)
}

func (f *fakeRouter) Optimize(ctx context.Context, waypoints []entities.Waypoint) entities.RouteOutcome {
	f.record(waypoints)
	return f.outcome(ctx, waypoints)
}

func (f *fakeRouter) OptimizeWithETA(ctx context.Context, waypoints []entities.Waypoint) entities.RouteOutcome {
	f.record(waypoints)
	f.mu.Lock()
	f.etaCalls++
	f.mu.Unlock()
	return f.outcome(ctx, waypoints)
}

func (f *fakeRouter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSink struct {
	mu        sync.Mutex
	snapshots []*entities.Snapshot
}

func (f *fakeSink) Publish(snapshot *entities.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, snapshot)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.NoticeEvent
}

func (f *fakePublisher) Publish(ctx context.Context, evt events.NoticeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return nil
}

// delayedResolver resolves from a table after a per-address delay, so that
// lookups finish out of submission order.
type delayedResolver struct {
	table  map[string]entities.Coordinate
	delays map[string]time.Duration
}

func (r *delayedResolver) Resolve(ctx context.Context, address string) (entities.Coordinate, bool) {
	select {
	case <-time.After(r.delays[address]):
	case <-ctx.Done():
		return entities.Coordinate{}, false
	}
	coord, ok := r.table[address]
	return coord, ok
}
