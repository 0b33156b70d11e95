package memory

import (
	"context"
	"sync"

	"dispatchmap/internal/domain/entities"
)

// PositionRepository keeps the last reported position per agent. Positions
// are replaced wholesale on every report, never mutated in place, so readers
// may hold on to a returned pointer.
type PositionRepository struct {
	mu        sync.RWMutex
	positions map[string]*entities.AgentPosition
}

func NewPositionRepository() *PositionRepository {
	return &PositionRepository{
		positions: make(map[string]*entities.AgentPosition),
	}
}

func (r *PositionRepository) Upsert(ctx context.Context, position *entities.AgentPosition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.positions[position.AgentID] = position
	return nil
}

// Get returns the agent's position, or (nil, nil) if none was reported.
func (r *PositionRepository) Get(ctx context.Context, agentID string) (*entities.AgentPosition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	position, exists := r.positions[agentID]
	if !exists {
		return nil, nil
	}
	return position, nil
}

func (r *PositionRepository) Remove(ctx context.Context, agentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.positions, agentID)
	return nil
}
