package repository

import (
	"context"

	"dispatchmap/internal/domain/entities"
)

type AgentRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Agent, error)
	GetOrCreate(ctx context.Context, id string) (*entities.Agent, error)
	Update(ctx context.Context, agent *entities.Agent) error
	ListOnline(ctx context.Context) ([]*entities.Agent, error)
}

type PositionRepository interface {
	Upsert(ctx context.Context, position *entities.AgentPosition) error
	Get(ctx context.Context, agentID string) (*entities.AgentPosition, error)
	Remove(ctx context.Context, agentID string) error
}

type SnapshotRepository interface {
	Put(ctx context.Context, snapshot *entities.Snapshot) error
	Latest(ctx context.Context, agentID string) (*entities.Snapshot, error)
}
