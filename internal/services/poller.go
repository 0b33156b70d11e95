package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Poller is the periodic refresh trigger: every interval it refreshes the
// map of every online agent, one after another.
type Poller struct {
	interval  time.Duration
	positions *PositionService
	maps      *MapService
	logger    *zap.Logger
}

func NewPoller(interval time.Duration, positions *PositionService, maps *MapService, logger *zap.Logger) *Poller {
	return &Poller{
		interval:  interval,
		positions: positions,
		maps:      maps,
		logger:    logger,
	}
}

// Run blocks until ctx is cancelled. A non-positive interval returns
// immediately.
func (p *Poller) Run(ctx context.Context) {
	if p.interval <= 0 {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.RefreshAll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RefreshAll runs one refresh per online agent.
func (p *Poller) RefreshAll(ctx context.Context) {
	agentIDs, err := p.positions.OnlineAgentIDs(ctx)
	if err != nil {
		p.logger.Error("list online agents", zap.Error(err))
		return
	}

	for _, agentID := range agentIDs {
		if ctx.Err() != nil {
			return
		}
		_, err := p.maps.Refresh(ctx, agentID)
		switch {
		case err == nil:
		case errors.Is(err, ErrSuperseded), errors.Is(err, ErrPositionUnavailable):
			p.logger.Debug("poll refresh skipped", zap.String("agent_id", agentID), zap.Error(err))
		default:
			p.logger.Warn("poll refresh failed", zap.String("agent_id", agentID), zap.Error(err))
		}
	}
}
