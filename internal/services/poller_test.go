package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPoller_RefreshAllCoversOnlineAgents(t *testing.T) {
	f := setupMapService(t, nil, nil)
	ctx := context.Background()

	for _, id := range []string{"agent-1", "agent-2"} {
		_, err := f.positions.UpdatePosition(ctx, id, 12.0, 77.0, 0)
		require.NoError(t, err)
	}
	_, err := f.positions.UpdatePosition(ctx, "agent-3", 12.0, 77.0, 0)
	require.NoError(t, err)
	require.NoError(t, f.positions.ClearPosition(ctx, "agent-3"))

	poller := NewPoller(time.Minute, f.positions, f.service, zap.NewNop())
	poller.RefreshAll(ctx)

	for _, id := range []string{"agent-1", "agent-2"} {
		_, err := f.service.Latest(ctx, id)
		assert.NoError(t, err, id)
	}
	_, err = f.service.Latest(ctx, "agent-3")
	assert.ErrorIs(t, err, ErrNoSnapshot)
	assert.Len(t, f.sink.snapshots, 2)
}

func TestPoller_RunStopsOnCancel(t *testing.T) {
	f := setupMapService(t, nil, nil)
	_, err := f.positions.UpdatePosition(context.Background(), "agent-1", 12.0, 77.0, 0)
	require.NoError(t, err)

	poller := NewPoller(10*time.Millisecond, f.positions, f.service, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, err := f.service.Latest(context.Background(), "agent-1")
		return err == nil
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func TestPoller_NonPositiveIntervalReturns(t *testing.T) {
	f := setupMapService(t, nil, nil)
	poller := NewPoller(0, f.positions, f.service, zap.NewNop())

	done := make(chan struct{})
	go func() {
		poller.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller with zero interval should return immediately")
	}
}
