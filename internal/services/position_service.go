package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dispatchmap/internal/domain/entities"
	"dispatchmap/internal/repository"
)

var ErrPositionUnavailable = errors.New("position unavailable")

// PositionService tracks where each delivery agent currently is. Agents
// report positions from their devices; a pass can only run for an agent
// whose position is present, fresh and not withdrawn.
type PositionService struct {
	agentRepo    repository.AgentRepository
	positionRepo repository.PositionRepository
	maxAge       time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

func NewPositionService(
	agentRepo repository.AgentRepository,
	positionRepo repository.PositionRepository,
	maxAge time.Duration,
	logger *zap.Logger,
) *PositionService {
	return &PositionService{
		agentRepo:    agentRepo,
		positionRepo: positionRepo,
		maxAge:       maxAge,
		logger:       logger,
		now:          time.Now,
	}
}

// UpdatePosition records a device report. The agent is registered on first
// contact and brought online.
func (s *PositionService) UpdatePosition(ctx context.Context, agentID string, lat, lon, accuracy float64) (*entities.AgentPosition, error) {
	coord, err := entities.NewCoordinate(lat, lon)
	if err != nil {
		return nil, err
	}

	agent, err := s.agentRepo.GetOrCreate(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !agent.IsOnline() {
		agent.GoOnline()
		if err := s.agentRepo.Update(ctx, agent); err != nil {
			return nil, err
		}
		s.logger.Info("agent online", zap.String("agent_id", agentID))
	}

	position := entities.NewAgentPosition(agentID, coord, accuracy)
	position.UpdatedAt = s.now()
	if err := s.positionRepo.Upsert(ctx, position); err != nil {
		return nil, err
	}

	return position, nil
}

// ClearPosition handles a device that can no longer provide a position
// (permission revoked, hardware failure). The agent goes offline.
func (s *PositionService) ClearPosition(ctx context.Context, agentID string) error {
	if err := s.positionRepo.Remove(ctx, agentID); err != nil {
		return err
	}

	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		// Never reported a position; nothing else to clear.
		return nil
	}
	if agent.IsOnline() {
		agent.GoOffline()
		if err := s.agentRepo.Update(ctx, agent); err != nil {
			return err
		}
		s.logger.Info("agent offline", zap.String("agent_id", agentID))
	}
	return nil
}

// CurrentPosition returns the agent's usable position or an error wrapping
// ErrPositionUnavailable.
func (s *PositionService) CurrentPosition(ctx context.Context, agentID string) (*entities.AgentPosition, error) {
	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("%w: agent %s has not reported a position", ErrPositionUnavailable, agentID)
	}
	if !agent.IsOnline() {
		return nil, fmt.Errorf("%w: agent %s is offline", ErrPositionUnavailable, agentID)
	}

	position, err := s.positionRepo.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, fmt.Errorf("%w: no position for agent %s", ErrPositionUnavailable, agentID)
	}
	if position.IsStale(s.now(), s.maxAge) {
		return nil, fmt.Errorf("%w: position for agent %s is older than %s", ErrPositionUnavailable, agentID, s.maxAge)
	}
	return position, nil
}

// OnlineAgentIDs lists agents currently sharing a position.
func (s *PositionService) OnlineAgentIDs(ctx context.Context) ([]string, error) {
	agents, err := s.agentRepo.ListOnline(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(agents))
	for i, a := range agents {
		ids[i] = a.ID
	}
	return ids, nil
}
