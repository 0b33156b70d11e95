package memory

import (
	"context"
	"sync"

	"dispatchmap/internal/domain/entities"
)

// SnapshotRepository holds the most recent snapshot per agent for serving
// reads between passes. It is an output buffer, not an input to
// reconciliation: passes never read from it.
type SnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]*entities.Snapshot
}

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{
		snapshots: make(map[string]*entities.Snapshot),
	}
}

func (r *SnapshotRepository) Put(ctx context.Context, snapshot *entities.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[snapshot.AgentID] = snapshot
	return nil
}

// Latest returns (nil, nil) when the agent has no snapshot yet.
func (r *SnapshotRepository) Latest(ctx context.Context, agentID string) (*entities.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshots[agentID], nil
}
